package dependency

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-to-compose/composer/internal/compose"
)

func docWith(deps ...[2]string) func(names ...string) *compose.Document {
	return func(names ...string) *compose.Document {
		doc := compose.NewDocument("")
		for _, name := range names {
			var on []string
			for _, d := range deps {
				if d[0] == name {
					on = append(on, d[1])
				}
			}
			doc.Services.Set(name, compose.ServiceConfig{DependsOn: compose.RefsFromNames(on...)})
		}
		return doc
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		doc   *compose.Document
		tiers [][]string
	}{
		{name: "nil document", doc: nil},
		{name: "no services", doc: compose.NewDocument("")},
		{
			name:  "independent services keep document order",
			doc:   docWith()("web", "api", "db"),
			tiers: [][]string{{"web", "api", "db"}},
		},
		{
			name:  "chain",
			doc:   docWith([2]string{"web", "api"}, [2]string{"api", "db"})("web", "api", "db"),
			tiers: [][]string{{"db"}, {"api"}, {"web"}},
		},
		{
			name: "diamond",
			doc: docWith(
				[2]string{"web", "api"}, [2]string{"web", "cache"},
				[2]string{"api", "db"}, [2]string{"cache", "db"},
			)("web", "api", "cache", "db"),
			tiers: [][]string{{"db"}, {"api", "cache"}, {"web"}},
		},
		{
			name:  "undeclared dependency is ignored",
			doc:   docWith([2]string{"web", "ghost"})("web"),
			tiers: [][]string{{"web"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiers, err := Resolve(tt.doc)
			require.NoError(t, err)
			assert.Equal(t, tt.tiers, tiers)
		})
	}
}

func TestResolve_Cycle(t *testing.T) {
	doc := docWith([2]string{"a", "b"}, [2]string{"b", "a"}, [2]string{"c", "a"})("a", "b", "c", "d")
	_, err := Resolve(doc)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))

	var cycle *CycleError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []string{"a", "b", "c"}, cycle.Services)
}

func TestResolve_SelfDependency(t *testing.T) {
	_, err := Resolve(docWith([2]string{"a", "a"})("a"))
	assert.ErrorIs(t, err, ErrCycle)
}
