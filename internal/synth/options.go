package synth

import (
	"log/slog"

	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/idgen"
	"github.com/graph-to-compose/composer/internal/registry"
)

// Layout spacing defaults.
const (
	DefaultNodeSpacing  = 220
	DefaultLayerSpacing = 180
)

// Layout places nodes in one horizontal layer per entity kind. Nodes of a layer are
// centered on CenterX; layer i sits at OriginY + i*LayerSpacing.
type Layout struct {
	NodeSpacing  float64
	LayerSpacing float64
	CenterX      float64
	OriginY      float64
}

// Position returns the coordinate of the index-th of count nodes in layer.
func (l Layout) Position(layer, index, count int) diagram.Position {
	offset := float64(index) - float64(count-1)/2
	return diagram.Position{
		X: l.CenterX + offset*l.NodeSpacing,
		Y: l.OriginY + float64(layer)*l.LayerSpacing,
	}
}

// Options configures the synthesizer behavior.
type Options struct {
	// IDs generates node and edge ids. Nil uses random UUIDs.
	IDs idgen.Generator
	// Layout positions the nodes.
	Layout Layout
	// Logger receives debug records. Nil uses logger.Default.
	Logger *slog.Logger
	// Registry supplies the kind handlers. Nil uses registry.Default.
	Registry *registry.Registry
}

// DefaultOptions returns default synthesizer options.
func DefaultOptions() Options {
	return Options{
		IDs: idgen.NewUUID(),
		Layout: Layout{
			NodeSpacing:  DefaultNodeSpacing,
			LayerSpacing: DefaultLayerSpacing,
		},
	}
}
