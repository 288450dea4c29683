package diagram

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownNode is returned when an operation names a node id that is not in the graph.
	ErrUnknownNode = errors.New("unknown node")
	// ErrDuplicateNode is returned when a node id is already taken.
	ErrDuplicateNode = errors.New("duplicate node id")
	// ErrUnknownEdge is returned when an operation names an edge id that is not in the graph.
	ErrUnknownEdge = errors.New("unknown edge")
)

// The operations below never modify the receiver; each returns a new Graph that
// shares unchanged nodes' data maps with the original.

// NodeByID returns the node with the given id, or nil.
func (g Graph) NodeByID(id string) *Node {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// AddNode returns a graph with n appended.
func (g Graph) AddNode(n Node) (Graph, error) {
	if g.NodeByID(n.ID) != nil {
		return g, fmt.Errorf("add node %q: %w", n.ID, ErrDuplicateNode)
	}
	out := g.clone()
	n.Data = copyData(n.Data)
	out.Nodes = append(out.Nodes, n)
	return out, nil
}

// ReplaceData returns a graph where the node's data is replaced by data, as a form
// submission does.
func (g Graph) ReplaceData(id string, data map[string]any) (Graph, error) {
	out := g.clone()
	n := out.NodeByID(id)
	if n == nil {
		return g, fmt.Errorf("replace data of %q: %w", id, ErrUnknownNode)
	}
	n.Data = copyData(data)
	return out, nil
}

// Move returns a graph with the node at a new position.
func (g Graph) Move(id string, pos Position) (Graph, error) {
	out := g.clone()
	n := out.NodeByID(id)
	if n == nil {
		return g, fmt.Errorf("move %q: %w", id, ErrUnknownNode)
	}
	n.Position = pos
	return out, nil
}

// Connect returns a graph with e appended. Both endpoints must exist.
func (g Graph) Connect(e Edge) (Graph, error) {
	if g.NodeByID(e.Source) == nil {
		return g, fmt.Errorf("connect source %q: %w", e.Source, ErrUnknownNode)
	}
	if g.NodeByID(e.Target) == nil {
		return g, fmt.Errorf("connect target %q: %w", e.Target, ErrUnknownNode)
	}
	out := g.clone()
	out.Edges = append(out.Edges, e)
	return out, nil
}

// Disconnect returns a graph without the edge.
func (g Graph) Disconnect(edgeID string) (Graph, error) {
	out := Graph{Nodes: g.clone().Nodes}
	found := false
	for _, e := range g.Edges {
		if e.ID == edgeID {
			found = true
			continue
		}
		out.Edges = append(out.Edges, e)
	}
	if !found {
		return g, fmt.Errorf("disconnect %q: %w", edgeID, ErrUnknownEdge)
	}
	return out, nil
}

// RemoveNode returns a graph without the node and without every edge touching it.
func (g Graph) RemoveNode(id string) (Graph, error) {
	if g.NodeByID(id) == nil {
		return g, fmt.Errorf("remove %q: %w", id, ErrUnknownNode)
	}
	var out Graph
	for _, n := range g.Nodes {
		if n.ID != id {
			out.Nodes = append(out.Nodes, n)
		}
	}
	for _, e := range g.Edges {
		if e.Source != id && e.Target != id {
			out.Edges = append(out.Edges, e)
		}
	}
	return out, nil
}

func (g Graph) clone() Graph {
	out := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	copy(out.Nodes, g.Nodes)
	copy(out.Edges, g.Edges)
	return out
}

func copyData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		out[k] = v
	}
	return out
}

// Index is a read-only lookup structure over a graph.
type Index struct {
	byID     map[string]*Node
	outgoing map[string][]Edge
}

// NewIndex indexes g. When ids repeat, the first node with the id is indexed.
// Outgoing edges keep their order in g.Edges.
func NewIndex(g Graph) *Index {
	ix := &Index{
		byID:     make(map[string]*Node, len(g.Nodes)),
		outgoing: make(map[string][]Edge),
	}
	for i := range g.Nodes {
		if _, ok := ix.byID[g.Nodes[i].ID]; !ok {
			ix.byID[g.Nodes[i].ID] = &g.Nodes[i]
		}
	}
	for _, e := range g.Edges {
		ix.outgoing[e.Source] = append(ix.outgoing[e.Source], e)
	}
	return ix
}

// Node returns the node with the given id, or nil.
func (ix *Index) Node(id string) *Node { return ix.byID[id] }

// EdgesWithSource returns edges whose source is the given node id.
func (ix *Index) EdgesWithSource(sourceID string) []Edge { return ix.outgoing[sourceID] }
