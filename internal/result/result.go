package result

// Warning types reported by the assembler, synthesizer, serializer and exporters.
const (
	TypeUnknownKind         = "unknown_kind"
	TypeUnnamedEntity       = "unnamed_entity"
	TypeDuplicateName       = "duplicate_name"
	TypeUnresolvedReference = "unresolved_reference"
	TypeDanglingEdge        = "dangling_edge"
	TypeDuplicateNodeID     = "duplicate_node_id"
	TypeInvalidNode         = "invalid_node"
	TypeDependencyCycle     = "dependency_cycle"
	TypeSerializationSkip   = "serialization_skip"
	TypeUnsupported         = "unsupported"
)

// Error represents a failure that prevented a conversion from producing output.
type Error struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	NodeID     string `json:"node_id,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warning is a non-fatal diagnostic. Conversions always finish; warnings describe
// what was skipped or could not be resolved on the way.
type Warning struct {
	Type       string `json:"type"`
	Severity   string `json:"severity"`
	NodeID     string `json:"node_id,omitempty"`
	Entity     string `json:"entity,omitempty"` // kind/name, when the warning is about a document entity
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

// Warn builds a node-scoped Warning.
func Warn(typ, nodeID, message, suggestion string) Warning {
	return Warning{Type: typ, Severity: "warning", NodeID: nodeID, Message: message, Suggestion: suggestion}
}

// WarnEntity builds a Warning about a named document entity (e.g. "service/web").
func WarnEntity(typ, entity, message, suggestion string) Warning {
	return Warning{Type: typ, Severity: "warning", Entity: entity, Message: message, Suggestion: suggestion}
}

// CountByType tallies warnings by their Type.
func CountByType(warnings []Warning) map[string]int {
	out := make(map[string]int)
	for _, w := range warnings {
		out[w.Type]++
	}
	return out
}
