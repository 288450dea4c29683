package assembler

import (
	"log/slog"

	"github.com/graph-to-compose/composer/internal/registry"
)

// DefaultMountPath is the container path used for a volume edge when the volume
// node does not set mount_path.
const DefaultMountPath = "/data"

// Options configures the assembler behavior.
type Options struct {
	// Name is the project name written as the document's top-level name. Empty omits it.
	Name string
	// DefaultMountPath replaces a missing mount_path on edge-derived volume mounts.
	DefaultMountPath string
	// Logger receives debug records for skipped entities. Nil uses logger.Default.
	Logger *slog.Logger
	// Registry supplies the kind handlers. Nil uses registry.Default.
	Registry *registry.Registry
}

// DefaultOptions returns default assembler options.
func DefaultOptions() Options {
	return Options{
		DefaultMountPath: DefaultMountPath,
	}
}
