// Package diagram models the editable graph: typed nodes, the edges between them,
// and the immutable operations the editing surface applies to it.
package diagram

// Kind is the entity kind a node represents.
type Kind string

const (
	KindService Kind = "service"
	KindNetwork Kind = "network"
	KindVolume  Kind = "volume"
	KindSecret  Kind = "secret"
	KindConfig  Kind = "config"
)

// Kinds lists the entity kinds in their fixed processing and layout order.
var Kinds = []Kind{KindService, KindNetwork, KindVolume, KindSecret, KindConfig}

// Known reports whether k is one of the entity kinds.
func (k Kind) Known() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// Graph is the root structure exchanged with the editing surface.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node is a single entity in the graph. Data is the untyped attribute record edited
// through forms; its keys follow the document keys of the node's kind plus the
// naming keys (label, name, container_name) and graph-only hints such as mount_path.
type Node struct {
	ID       string         `json:"id"`
	Type     Kind           `json:"type"`
	Position Position       `json:"position"`
	Data     map[string]any `json:"data"`
}

// Position holds x,y coordinates (used by the diagram UI).
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Edge is a reference from Source to Target. Type is a rendering hint; the
// synthesizer sets it to the relation the edge encodes (network, volume, ...).
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type,omitempty"`
}

// Node data keys used for naming and graph-only hints.
const (
	DataLabel         = "label"
	DataName          = "name"
	DataContainerName = "container_name"
	DataMountPath     = "mount_path"
)
