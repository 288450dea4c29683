package dependency

import (
	"errors"
	"fmt"
	"strings"

	"github.com/graph-to-compose/composer/internal/compose"
)

// ErrCycle is returned when the depends_on graph contains a cycle.
var ErrCycle = errors.New("dependency cycle detected")

// CycleError names the services that could not be ordered.
type CycleError struct {
	Services []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s among services: %s", ErrCycle, strings.Join(e.Services, ", "))
}

func (e *CycleError) Unwrap() error { return ErrCycle }

// Resolve orders services by depends_on and groups them into startup tiers:
// tier 0 depends on nothing, tier 1 only on tier 0, and so on. Within a tier
// services keep document order. References to undeclared services are ignored.
func Resolve(doc *compose.Document) (tiers [][]string, err error) {
	if doc == nil || doc.Services.Len() == 0 {
		return nil, nil
	}
	names := doc.Services.Names()

	// dependency => dependents; inDegree[s] = number of declared dependencies of s
	dependents := make(map[string][]string)
	inDegree := make(map[string]int, len(names))
	for _, name := range names {
		inDegree[name] += 0
		s, _ := doc.Services.Get(name)
		seen := make(map[string]bool)
		for _, dep := range s.DependsOn.Names() {
			if seen[dep] || !doc.Services.Has(dep) {
				continue
			}
			seen[dep] = true
			dependents[dep] = append(dependents[dep], name)
			inDegree[name]++
		}
	}

	var queue []string
	for _, name := range names {
		if inDegree[name] == 0 {
			queue = append(queue, name)
		}
	}

	placed := 0
	for len(queue) > 0 {
		tier := make([]string, len(queue))
		copy(tier, queue)
		tiers = append(tiers, tier)
		placed += len(tier)

		ready := make(map[string]bool)
		for _, u := range queue {
			for _, v := range dependents[u] {
				inDegree[v]--
				if inDegree[v] == 0 {
					ready[v] = true
				}
			}
		}
		queue = queue[:0:0]
		for _, name := range names {
			if ready[name] {
				queue = append(queue, name)
			}
		}
	}

	if placed != len(names) {
		var stuck []string
		for _, name := range names {
			if inDegree[name] > 0 {
				stuck = append(stuck, name)
			}
		}
		return nil, &CycleError{Services: stuck}
	}
	return tiers, nil
}
