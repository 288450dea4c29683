package handler

import (
	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/registry"
	"github.com/graph-to-compose/composer/internal/result"
)

type secretHandler struct{}

func init() {
	registry.Default.Register(secretHandler{})
}

func (secretHandler) Kind() diagram.Kind { return diagram.KindSecret }

func (secretHandler) EntityName(n *diagram.Node) (string, bool) { return resourceName(n) }

func (secretHandler) Declared(doc *compose.Document, name string) bool {
	return doc.Secrets.Has(name)
}

func (secretHandler) Assemble(n *diagram.Node, name string, ctx *registry.Context) []result.Warning {
	ctx.Doc.Secrets.Set(name, compose.SecretFromData(n.Data))
	return nil
}

func (secretHandler) Entities(doc *compose.Document) []registry.Entity {
	var out []registry.Entity
	doc.Secrets.Each(func(name string, c compose.SecretConfig) {
		out = append(out, registry.Entity{Name: name, Data: resourceData(name, c.Data())})
	})
	return out
}
