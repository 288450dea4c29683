package registry

import (
	"sort"
	"sync"

	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/result"
)

// Context is shared by the handlers during one assembly.
type Context struct {
	Index            *diagram.Index
	Doc              *compose.Document
	DefaultMountPath string
	Registry         *Registry
}

// NameOf resolves the document name of any node through its kind's handler.
func (c *Context) NameOf(n *diagram.Node) (string, bool) {
	h, ok := c.Registry.Get(n.Type)
	if !ok {
		return "", false
	}
	return h.EntityName(n)
}

// Entity is one document entry as the synthesizer sees it: its name, its node data
// and the named references it makes to other entities.
type Entity struct {
	Name string
	Data map[string]any
	Refs []Reference
}

// Reference is a named reference from an entity to an entity of another section.
type Reference struct {
	Kind     diagram.Kind
	Name     string
	Relation string
}

// KindHandler is the interface each entity kind handler must implement.
type KindHandler interface {
	Kind() diagram.Kind
	// EntityName resolves the document name of a node of this kind.
	EntityName(n *diagram.Node) (string, bool)
	// Declared reports whether doc already has an entity of this kind named name.
	Declared(doc *compose.Document, name string) bool
	// Assemble adds the node's entity to ctx.Doc under name.
	Assemble(n *diagram.Node, name string, ctx *Context) []result.Warning
	// Entities lists the entities of this kind in doc, in document order.
	Entities(doc *compose.Document) []Entity
}

// Default is the global handler registry.
var Default = New()

// Registry holds entity kind handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[diagram.Kind]KindHandler
}

// New returns a new empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[diagram.Kind]KindHandler)}
}

// Register adds a handler for its kind, replacing any previous one.
func (r *Registry) Register(h KindHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Kind()] = h
}

// Get returns the handler for the kind, or nil and false.
func (r *Registry) Get(kind diagram.Kind) (KindHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[kind]
	return h, ok
}

// ListSupportedTypes returns all registered kinds, sorted.
func (r *Registry) ListSupportedTypes() []diagram.Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]diagram.Kind, 0, len(r.handlers))
	for t := range r.handlers {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
