package handler

import (
	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/registry"
	"github.com/graph-to-compose/composer/internal/result"
)

// Edge relations, also used as the synthesized edge type.
const (
	RelationNetwork   = "network"
	RelationVolume    = "volume"
	RelationSecret    = "secret"
	RelationConfig    = "config"
	RelationDependsOn = "depends_on"
)

type serviceHandler struct{}

func init() {
	registry.Default.Register(serviceHandler{})
}

func (serviceHandler) Kind() diagram.Kind { return diagram.KindService }

// EntityName prefers the label, then container_name, then name.
func (serviceHandler) EntityName(n *diagram.Node) (string, bool) {
	for _, key := range []string{diagram.DataLabel, diagram.DataContainerName, diagram.DataName} {
		if s, ok := compose.AsString(n.Data[key]); ok {
			return s, true
		}
	}
	return "", false
}

func (serviceHandler) Declared(doc *compose.Document, name string) bool {
	return doc.Services.Has(name)
}

func (serviceHandler) Assemble(n *diagram.Node, name string, ctx *registry.Context) []result.Warning {
	s, issues := compose.DecodeService(n.Data)
	var warns []result.Warning
	for _, issue := range issues {
		warns = append(warns, result.Warn(result.TypeInvalidNode, n.ID, issue, "Check the option against the compose file reference"))
	}
	// Without a label the container name is the service key; it is not repeated.
	if _, labeled := compose.AsString(n.Data[diagram.DataLabel]); !labeled {
		s.ContainerName = ""
	}

	d := deriveRefs(n, ctx)
	if len(s.Volumes) == 0 && len(s.LongVolumes) == 0 {
		s.Volumes = d.volumes
		warns = append(warns, d.warnings[diagram.KindVolume]...)
	}
	if s.Networks.Len() == 0 {
		s.Networks = compose.RefsFromNames(d.names[diagram.KindNetwork]...)
		warns = append(warns, d.warnings[diagram.KindNetwork]...)
	}
	if s.Secrets.Len() == 0 {
		s.Secrets = compose.RefsFromNames(d.names[diagram.KindSecret]...)
		warns = append(warns, d.warnings[diagram.KindSecret]...)
	}
	if s.Configs.Len() == 0 {
		s.Configs = compose.RefsFromNames(d.names[diagram.KindConfig]...)
		warns = append(warns, d.warnings[diagram.KindConfig]...)
	}
	if s.DependsOn.Len() == 0 {
		s.DependsOn = compose.RefsFromNames(d.names[diagram.KindService]...)
		warns = append(warns, d.warnings[diagram.KindService]...)
	}

	ctx.Doc.Services.Set(name, s)
	return warns
}

func (serviceHandler) Entities(doc *compose.Document) []registry.Entity {
	var out []registry.Entity
	doc.Services.Each(func(name string, s compose.ServiceConfig) {
		data := s.Data()
		data[diagram.DataLabel] = name

		e := registry.Entity{Name: name, Data: data}
		for _, ref := range s.Networks.Names() {
			e.Refs = append(e.Refs, registry.Reference{Kind: diagram.KindNetwork, Name: ref, Relation: RelationNetwork})
		}
		for _, ref := range s.NamedVolumes() {
			e.Refs = append(e.Refs, registry.Reference{Kind: diagram.KindVolume, Name: ref, Relation: RelationVolume})
		}
		for _, ref := range s.Secrets.Names() {
			e.Refs = append(e.Refs, registry.Reference{Kind: diagram.KindSecret, Name: ref, Relation: RelationSecret})
		}
		for _, ref := range s.Configs.Names() {
			e.Refs = append(e.Refs, registry.Reference{Kind: diagram.KindConfig, Name: ref, Relation: RelationConfig})
		}
		for _, ref := range s.DependsOn.Names() {
			e.Refs = append(e.Refs, registry.Reference{Kind: diagram.KindService, Name: ref, Relation: RelationDependsOn})
		}
		out = append(out, e)
	})
	return out
}

// derived holds the references a service node makes through its outgoing edges.
type derived struct {
	volumes  []string
	names    map[diagram.Kind][]string
	warnings map[diagram.Kind][]result.Warning
}

// deriveRefs walks the node's outgoing edges in order. Each referenced name is
// kept once, at its first occurrence. Edges to unknown node ids are reported by
// diagram.Validate and contribute nothing here.
func deriveRefs(n *diagram.Node, ctx *registry.Context) derived {
	d := derived{
		names:    make(map[diagram.Kind][]string),
		warnings: make(map[diagram.Kind][]result.Warning),
	}
	seen := make(map[diagram.Kind]map[string]bool)

	for _, e := range ctx.Index.EdgesWithSource(n.ID) {
		target := ctx.Index.Node(e.Target)
		if target == nil || target.ID == n.ID || !target.Type.Known() {
			continue
		}
		name, ok := ctx.NameOf(target)
		if !ok {
			d.warnings[target.Type] = append(d.warnings[target.Type], result.Warn(
				result.TypeUnresolvedReference, n.ID,
				"edge "+e.ID+" points at "+string(target.Type)+" node "+target.ID+" which has no name",
				"Set a name or label on node "+target.ID,
			))
			continue
		}
		if seen[target.Type] == nil {
			seen[target.Type] = make(map[string]bool)
		}
		if seen[target.Type][name] {
			continue
		}
		seen[target.Type][name] = true

		if target.Type == diagram.KindVolume {
			mount, ok := compose.AsString(target.Data[diagram.DataMountPath])
			if !ok {
				mount = ctx.DefaultMountPath
			}
			d.volumes = append(d.volumes, compose.FormatVolumeMapping(compose.VolumeMapping{Source: name, Target: mount}))
			continue
		}
		d.names[target.Type] = append(d.names[target.Type], name)
	}
	return d
}
