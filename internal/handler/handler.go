// Package handler implements one registry.KindHandler per entity kind. Importing
// the package registers all of them in registry.Default.
package handler

import (
	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
)

// resourceName names a network, volume, secret or config node: its name, else its label.
func resourceName(n *diagram.Node) (string, bool) {
	if s, ok := compose.AsString(n.Data[diagram.DataName]); ok {
		return s, true
	}
	return compose.AsString(n.Data[diagram.DataLabel])
}

// resourceData is the node data of a synthesized resource node.
func resourceData(name string, data map[string]any) map[string]any {
	data[diagram.DataName] = name
	data[diagram.DataLabel] = name
	return data
}
