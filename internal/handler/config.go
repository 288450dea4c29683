package handler

import (
	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/registry"
	"github.com/graph-to-compose/composer/internal/result"
)

type configHandler struct{}

func init() {
	registry.Default.Register(configHandler{})
}

func (configHandler) Kind() diagram.Kind { return diagram.KindConfig }

func (configHandler) EntityName(n *diagram.Node) (string, bool) { return resourceName(n) }

func (configHandler) Declared(doc *compose.Document, name string) bool {
	return doc.Configs.Has(name)
}

func (configHandler) Assemble(n *diagram.Node, name string, ctx *registry.Context) []result.Warning {
	ctx.Doc.Configs.Set(name, compose.ConfigFromData(n.Data))
	return nil
}

func (configHandler) Entities(doc *compose.Document) []registry.Entity {
	var out []registry.Entity
	doc.Configs.Each(func(name string, c compose.ConfigConfig) {
		out = append(out, registry.Entity{Name: name, Data: resourceData(name, c.Data())})
	})
	return out
}
