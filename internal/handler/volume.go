package handler

import (
	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/registry"
	"github.com/graph-to-compose/composer/internal/result"
)

type volumeHandler struct{}

func init() {
	registry.Default.Register(volumeHandler{})
}

func (volumeHandler) Kind() diagram.Kind { return diagram.KindVolume }

func (volumeHandler) EntityName(n *diagram.Node) (string, bool) { return resourceName(n) }

func (volumeHandler) Declared(doc *compose.Document, name string) bool {
	return doc.Volumes.Has(name)
}

// Assemble ignores mount_path: it is a graph-only hint read by the services that
// mount the volume through an edge.
func (volumeHandler) Assemble(n *diagram.Node, name string, ctx *registry.Context) []result.Warning {
	ctx.Doc.Volumes.Set(name, compose.VolumeFromData(n.Data))
	return nil
}

func (volumeHandler) Entities(doc *compose.Document) []registry.Entity {
	var out []registry.Entity
	doc.Volumes.Each(func(name string, c compose.VolumeConfig) {
		out = append(out, registry.Entity{Name: name, Data: resourceData(name, c.Data())})
	})
	return out
}
