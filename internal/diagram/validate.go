package diagram

import (
	"fmt"

	"github.com/graph-to-compose/composer/internal/result"
)

// Validate checks the structure of the graph: node ids and edge endpoints.
// Problems are returned as warnings; the assembler works around every one of them
// (repeated ids resolve to the first node, dangling edges contribute nothing).
func Validate(g Graph) []result.Warning {
	var warns []result.Warning

	seenNodeIDs := make(map[string]bool)
	for i := range g.Nodes {
		n := &g.Nodes[i]
		if n.ID == "" {
			warns = append(warns, result.Warn(result.TypeInvalidNode, "",
				fmt.Sprintf("node at index %d has empty id", i), "Set node.id"))
		} else if seenNodeIDs[n.ID] {
			warns = append(warns, result.Warn(result.TypeDuplicateNodeID, n.ID,
				"duplicate node id: "+n.ID, "Use unique ids for each node"))
		} else {
			seenNodeIDs[n.ID] = true
		}
		if n.Type == "" {
			warns = append(warns, result.Warn(result.TypeInvalidNode, n.ID,
				"node.type is required", "Set node.type (e.g. service, network)"))
		}
	}

	for i := range g.Edges {
		e := &g.Edges[i]
		switch {
		case e.Source == "" || e.Target == "":
			warns = append(warns, result.Warn(result.TypeDanglingEdge, "",
				fmt.Sprintf("edge at index %d must have source and target", i),
				"Set edge.source and edge.target to node ids"))
		case !seenNodeIDs[e.Source]:
			warns = append(warns, result.Warn(result.TypeDanglingEdge, e.Source,
				"edge source node not found: "+e.Source, "Reference an existing node id"))
		case !seenNodeIDs[e.Target]:
			warns = append(warns, result.Warn(result.TypeDanglingEdge, e.Source,
				"edge target node not found: "+e.Target, "Reference an existing node id"))
		}
	}

	return warns
}
