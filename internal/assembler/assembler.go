// Package assembler turns an edited graph into a compose document.
package assembler

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/dependency"
	"github.com/graph-to-compose/composer/internal/diagram"
	_ "github.com/graph-to-compose/composer/internal/handler" // register handlers
	"github.com/graph-to-compose/composer/internal/logger"
	"github.com/graph-to-compose/composer/internal/registry"
	"github.com/graph-to-compose/composer/internal/result"
)

// Result is the result of assembling a graph.
type Result struct {
	Document *compose.Document
	Warnings []result.Warning
}

// Assembler builds documents from graphs. It holds no per-call state and is safe for
// concurrent use.
type Assembler struct {
	opts Options
	reg  *registry.Registry
	log  *slog.Logger
}

// New returns a new assembler with the given options.
func New(opts Options) *Assembler {
	if opts.DefaultMountPath == "" {
		opts.DefaultMountPath = DefaultMountPath
	}
	a := &Assembler{opts: opts, reg: opts.Registry, log: opts.Logger}
	if a.reg == nil {
		a.reg = registry.Default
	}
	if a.log == nil {
		a.log = logger.Default
	}
	return a
}

// Assemble builds the document for g. It never fails: nodes that cannot be
// represented are skipped and reported in Result.Warnings. The input graph is not
// modified. Entities appear in node order, references in edge order.
func (a *Assembler) Assemble(g diagram.Graph) *Result {
	// 1. Structural validation
	warns := diagram.Validate(g)

	// 2. Classify and index
	ix := diagram.NewIndex(g)
	groups := diagram.Classify(g.Nodes)
	for _, n := range groups.Unknown {
		warns = append(warns, result.Warn(result.TypeUnknownKind, n.ID,
			"unsupported node type: "+string(n.Type),
			"Use one of: service, network, volume, secret, config"))
	}

	// 3. Build entities kind by kind
	doc := compose.NewDocument(a.opts.Name)
	ctx := &registry.Context{
		Index:            ix,
		Doc:              doc,
		DefaultMountPath: a.opts.DefaultMountPath,
		Registry:         a.reg,
	}
	for _, kind := range diagram.Kinds {
		nodes := groups.Of(kind)
		h, ok := a.reg.Get(kind)
		if !ok {
			for _, n := range nodes {
				warns = append(warns, result.Warn(result.TypeUnknownKind, n.ID,
					"no handler registered for node type: "+string(kind), ""))
			}
			continue
		}
		for _, n := range nodes {
			name, ok := h.EntityName(n)
			if !ok {
				a.log.Debug("skipping unnamed node", "node", n.ID, "type", kind)
				warns = append(warns, result.Warn(result.TypeUnnamedEntity, n.ID,
					string(kind)+" node has no name and was left out of the document",
					unnamedSuggestion(kind)))
				continue
			}
			if h.Declared(doc, name) {
				a.log.Debug("skipping duplicate entity", "node", n.ID, "type", kind, "name", name)
				warns = append(warns, result.Warn(result.TypeDuplicateName, n.ID,
					"another "+string(kind)+" is already named "+name+"; this node was left out",
					"Give each "+string(kind)+" a unique name"))
				continue
			}
			warns = append(warns, h.Assemble(n, name, ctx)...)
		}
	}

	// 4. depends_on must be acyclic for the orchestrator to start anything
	if _, err := dependency.Resolve(doc); err != nil {
		var cycle *dependency.CycleError
		msg := err.Error()
		if errors.As(err, &cycle) {
			msg = "depends_on cycle between services: " + strings.Join(cycle.Services, ", ")
		}
		warns = append(warns, result.WarnEntity(result.TypeDependencyCycle, compose.SectionServices, msg,
			"Remove one of the dependency edges"))
	}

	a.log.Debug("assembled document",
		"services", doc.Services.Len(), "networks", doc.Networks.Len(), "volumes", doc.Volumes.Len(),
		"secrets", doc.Secrets.Len(), "configs", doc.Configs.Len(), "warnings", len(warns))
	return &Result{Document: doc, Warnings: warns}
}

// AssembleYAML assembles g and serializes the document. Serializer warnings are
// appended to the returned Result's warnings. The Result is never nil.
func (a *Assembler) AssembleYAML(g diagram.Graph) ([]byte, *Result, error) {
	res := a.Assemble(g)
	out, swarns, err := compose.Marshal(res.Document)
	res.Warnings = append(res.Warnings, swarns...)
	if err != nil {
		return nil, res, err
	}
	return out, res, nil
}

func unnamedSuggestion(kind diagram.Kind) string {
	if kind == diagram.KindService {
		return "Set data.label or data.container_name"
	}
	return "Set data.name or data.label"
}
