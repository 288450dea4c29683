package handler

import (
	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/registry"
	"github.com/graph-to-compose/composer/internal/result"
)

type networkHandler struct{}

func init() {
	registry.Default.Register(networkHandler{})
}

func (networkHandler) Kind() diagram.Kind { return diagram.KindNetwork }

func (networkHandler) EntityName(n *diagram.Node) (string, bool) { return resourceName(n) }

func (networkHandler) Declared(doc *compose.Document, name string) bool {
	return doc.Networks.Has(name)
}

func (networkHandler) Assemble(n *diagram.Node, name string, ctx *registry.Context) []result.Warning {
	ctx.Doc.Networks.Set(name, compose.NetworkFromData(n.Data))
	return nil
}

func (networkHandler) Entities(doc *compose.Document) []registry.Entity {
	var out []registry.Entity
	doc.Networks.Each(func(name string, c compose.NetworkConfig) {
		out = append(out, registry.Entity{Name: name, Data: resourceData(name, c.Data())})
	})
	return out
}
