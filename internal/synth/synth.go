// Package synth lays out a compose document as a graph: one node per entity in a
// layered layout, and one edge per named reference a service makes.
package synth

import (
	"log/slog"

	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
	_ "github.com/graph-to-compose/composer/internal/handler" // register handlers
	"github.com/graph-to-compose/composer/internal/idgen"
	"github.com/graph-to-compose/composer/internal/logger"
	"github.com/graph-to-compose/composer/internal/registry"
	"github.com/graph-to-compose/composer/internal/result"
)

// Result is the result of synthesizing a graph from a document.
type Result struct {
	Graph    diagram.Graph
	Warnings []result.Warning
}

// Synthesizer builds graphs from documents.
type Synthesizer struct {
	opts Options
	reg  *registry.Registry
	log  *slog.Logger
}

// New returns a new synthesizer with the given options. A zero Layout falls back
// to the default spacing.
func New(opts Options) *Synthesizer {
	def := DefaultOptions()
	if opts.IDs == nil {
		opts.IDs = idgen.NewUUID()
	}
	if opts.Layout.NodeSpacing == 0 {
		opts.Layout.NodeSpacing = def.Layout.NodeSpacing
	}
	if opts.Layout.LayerSpacing == 0 {
		opts.Layout.LayerSpacing = def.Layout.LayerSpacing
	}
	s := &Synthesizer{opts: opts, reg: opts.Registry, log: opts.Logger}
	if s.reg == nil {
		s.reg = registry.Default
	}
	if s.log == nil {
		s.log = logger.Default
	}
	return s
}

type pendingRefs struct {
	sourceID string
	entity   string
	refs     []registry.Reference
}

// Synthesize builds the graph for doc. Node positions depend only on the document,
// so the same document always yields the same layout. References to undeclared
// entities produce no edge and are reported in Result.Warnings.
func (s *Synthesizer) Synthesize(doc *compose.Document) *Result {
	out := &Result{}
	if doc == nil {
		return out
	}

	ids := make(map[diagram.Kind]map[string]string, len(diagram.Kinds))
	var pending []pendingRefs

	// 1. One node per entity, one layer per kind
	for layer, kind := range diagram.Kinds {
		h, ok := s.reg.Get(kind)
		if !ok {
			continue
		}
		entities := h.Entities(doc)
		ids[kind] = make(map[string]string, len(entities))
		for i, e := range entities {
			id := s.opts.IDs.Next()
			out.Graph.Nodes = append(out.Graph.Nodes, diagram.Node{
				ID:       id,
				Type:     kind,
				Position: s.opts.Layout.Position(layer, i, len(entities)),
				Data:     e.Data,
			})
			ids[kind][e.Name] = id
			if len(e.Refs) > 0 {
				pending = append(pending, pendingRefs{sourceID: id, entity: string(kind) + "/" + e.Name, refs: e.Refs})
			}
		}
	}

	// 2. Edges from named references
	for _, p := range pending {
		seen := make(map[string]bool)
		for _, ref := range p.refs {
			target, ok := ids[ref.Kind][ref.Name]
			if !ok {
				s.log.Debug("dropping unresolved reference", "entity", p.entity, "kind", ref.Kind, "name", ref.Name)
				out.Warnings = append(out.Warnings, result.WarnEntity(result.TypeUnresolvedReference, p.entity,
					ref.Relation+" reference to undeclared "+string(ref.Kind)+" "+ref.Name,
					"Declare "+ref.Name+" in the top-level "+string(ref.Kind)+"s section"))
				continue
			}
			if seen[target] {
				continue
			}
			seen[target] = true
			out.Graph.Edges = append(out.Graph.Edges, diagram.Edge{
				ID:     s.opts.IDs.Next(),
				Source: p.sourceID,
				Target: target,
				Type:   ref.Relation,
			})
		}
	}

	s.log.Debug("synthesized graph", "nodes", len(out.Graph.Nodes), "edges", len(out.Graph.Edges),
		"warnings", len(out.Warnings))
	return out
}

// SynthesizeYAML parses a compose document and synthesizes its graph. Parser
// warnings come first in the result.
func (s *Synthesizer) SynthesizeYAML(data []byte) (*Result, error) {
	doc, warns, err := compose.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	res := s.Synthesize(doc)
	res.Warnings = append(warns, res.Warnings...)
	return res, nil
}
