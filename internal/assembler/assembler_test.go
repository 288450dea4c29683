package assembler_test

import (
	"bytes"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-to-compose/composer/internal/assembler"
	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/result"
)

func newAssembler(t *testing.T) *assembler.Assembler {
	t.Helper()
	opts := assembler.DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return assembler.New(opts)
}

func node(id string, kind diagram.Kind, data map[string]any) diagram.Node {
	return diagram.Node{ID: id, Type: kind, Data: data}
}

func edge(id, source, target string) diagram.Edge {
	return diagram.Edge{ID: id, Source: source, Target: target}
}

func warningTypes(warns []result.Warning) []string {
	var out []string
	for _, w := range warns {
		out = append(out, w.Type)
	}
	return out
}

func TestAssemble_EdgeInference(t *testing.T) {
	g := diagram.Graph{
		Nodes: []diagram.Node{
			node("s1", diagram.KindService, map[string]any{"container_name": "web"}),
			node("n1", diagram.KindNetwork, map[string]any{"name": "public"}),
		},
		Edges: []diagram.Edge{edge("e1", "s1", "n1")},
	}

	out, res, err := newAssembler(t).AssembleYAML(g)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 1, res.Document.Services.Len())
	assert.Equal(t, `services:
  web:
    networks:
      - public
networks:
  public: {}
`, string(out))
}

func TestAssemble_Deterministic(t *testing.T) {
	g := diagram.Graph{
		Nodes: []diagram.Node{
			node("s1", diagram.KindService, map[string]any{
				"label":       "web",
				"image":       "nginx",
				"environment": map[string]any{"B": "2", "A": "1", "C": "3"},
				"labels":      map[string]any{"z": "1", "a": "2"},
				"x-meta":      map[string]any{"k2": 1, "k1": []any{"a", "b"}},
			}),
			node("s2", diagram.KindService, map[string]any{"label": "api", "image": "api:1"}),
			node("n1", diagram.KindNetwork, map[string]any{"name": "front"}),
			node("n2", diagram.KindNetwork, map[string]any{"name": "back"}),
			node("v1", diagram.KindVolume, map[string]any{"name": "data"}),
		},
		Edges: []diagram.Edge{
			edge("e1", "s1", "n2"),
			edge("e2", "s1", "n1"),
			edge("e3", "s1", "s2"),
			edge("e4", "s2", "v1"),
		},
	}
	a := newAssembler(t)
	first, _, err := a.AssembleYAML(g)
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, _, err := a.AssembleYAML(g)
		require.NoError(t, err)
		require.True(t, bytes.Equal(first, again), "run %d differs:\n%s\n---\n%s", i, first, again)
	}
}

func TestAssemble_FieldStripping(t *testing.T) {
	g := diagram.Graph{Nodes: []diagram.Node{
		node("s1", diagram.KindService, map[string]any{
			"label":       "web",
			"ports":       []any{},
			"environment": map[string]any{},
			"user":        "",
		}),
	}}

	res := newAssembler(t).Assemble(g)
	web, ok := res.Document.Services.Get("web")
	require.True(t, ok)
	assert.Equal(t, compose.ServiceConfig{}, web)

	out, _, err := compose.Marshal(res.Document)
	require.NoError(t, err)
	for _, key := range []string{"ports", "environment", "user"} {
		assert.NotContains(t, string(out), key)
	}
}

func TestAssemble_ExplicitDataWins(t *testing.T) {
	g := diagram.Graph{
		Nodes: []diagram.Node{
			node("s1", diagram.KindService, map[string]any{"label": "web", "networks": []any{"net-a"}}),
			node("n1", diagram.KindNetwork, map[string]any{"name": "net-a"}),
			node("n2", diagram.KindNetwork, map[string]any{"name": "net-b"}),
		},
		Edges: []diagram.Edge{edge("e1", "s1", "n2")},
	}

	res := newAssembler(t).Assemble(g)
	web, _ := res.Document.Services.Get("web")
	assert.Equal(t, []string{"net-a"}, web.Networks.Names())
	assert.Equal(t, []string{"net-a", "net-b"}, res.Document.Networks.Names())
}

func TestAssemble_VolumeMounts(t *testing.T) {
	g := diagram.Graph{
		Nodes: []diagram.Node{
			node("s1", diagram.KindService, map[string]any{"label": "db"}),
			node("v1", diagram.KindVolume, map[string]any{"name": "pgdata"}),
			node("v2", diagram.KindVolume, map[string]any{"name": "backups", "mount_path": "/backups"}),
		},
		Edges: []diagram.Edge{edge("e1", "s1", "v1"), edge("e2", "s1", "v2"), edge("e3", "s1", "v1")},
	}

	res := newAssembler(t).Assemble(g)
	db, _ := res.Document.Services.Get("db")
	assert.Equal(t, []string{"pgdata:/data", "backups:/backups"}, db.Volumes)
	assert.Empty(t, res.Warnings)

	// mount_path does not leak into the volume definition.
	v, _ := res.Document.Volumes.Get("backups")
	assert.Equal(t, compose.VolumeConfig{}, v)
}

func TestAssemble_CustomDefaultMountPath(t *testing.T) {
	opts := assembler.DefaultOptions()
	opts.DefaultMountPath = "/mnt"
	opts.Name = "proj"
	g := diagram.Graph{
		Nodes: []diagram.Node{
			node("s1", diagram.KindService, map[string]any{"label": "app"}),
			node("v1", diagram.KindVolume, map[string]any{"label": "cache"}),
		},
		Edges: []diagram.Edge{edge("e1", "s1", "v1")},
	}

	res := assembler.New(opts).Assemble(g)
	assert.Equal(t, "proj", res.Document.Name)
	app, _ := res.Document.Services.Get("app")
	assert.Equal(t, []string{"cache:/mnt"}, app.Volumes)
}

func TestAssemble_AllReferenceKinds(t *testing.T) {
	g := diagram.Graph{
		Nodes: []diagram.Node{
			node("s1", diagram.KindService, map[string]any{"label": "web", "image": "nginx"}),
			node("s2", diagram.KindService, map[string]any{"label": "api", "image": "api"}),
			node("n1", diagram.KindNetwork, map[string]any{"name": "front", "driver": "bridge"}),
			node("sec", diagram.KindSecret, map[string]any{"name": "tls", "file": "./tls.pem"}),
			node("cfg", diagram.KindConfig, map[string]any{"label": "nginx_conf", "file": "./nginx.conf"}),
		},
		Edges: []diagram.Edge{
			edge("e1", "s1", "n1"),
			edge("e2", "s1", "sec"),
			edge("e3", "s1", "cfg"),
			edge("e4", "s1", "s2"),
			edge("e5", "s1", "n1"),
			edge("e6", "s1", "s1"),
		},
	}

	res := newAssembler(t).Assemble(g)
	require.Empty(t, res.Warnings)
	web, _ := res.Document.Services.Get("web")
	assert.Equal(t, []string{"front"}, web.Networks.Names())
	assert.Equal(t, []string{"tls"}, web.Secrets.Names())
	assert.Equal(t, []string{"nginx_conf"}, web.Configs.Names())
	assert.Equal(t, []string{"api"}, web.DependsOn.Names())

	n, _ := res.Document.Networks.Get("front")
	assert.Equal(t, "bridge", n.Driver)
	s, _ := res.Document.Secrets.Get("tls")
	assert.Equal(t, "./tls.pem", s.File)
	c, _ := res.Document.Configs.Get("nginx_conf")
	assert.Equal(t, "./nginx.conf", c.File)
}

func TestAssemble_ServiceNaming(t *testing.T) {
	g := diagram.Graph{Nodes: []diagram.Node{
		node("s1", diagram.KindService, map[string]any{"label": "web", "container_name": "web-1"}),
		node("s2", diagram.KindService, map[string]any{"container_name": "worker"}),
		node("s3", diagram.KindService, map[string]any{"name": "cron"}),
	}}

	res := newAssembler(t).Assemble(g)
	assert.Equal(t, []string{"web", "worker", "cron"}, res.Document.Services.Names())
	web, _ := res.Document.Services.Get("web")
	assert.Equal(t, "web-1", web.ContainerName)
	worker, _ := res.Document.Services.Get("worker")
	assert.Empty(t, worker.ContainerName)
}

func TestAssemble_DanglingEdge(t *testing.T) {
	g := diagram.Graph{
		Nodes: []diagram.Node{node("s1", diagram.KindService, map[string]any{"label": "web"})},
		Edges: []diagram.Edge{edge("e1", "s1", "ghost")},
	}

	var res *assembler.Result
	require.NotPanics(t, func() { res = newAssembler(t).Assemble(g) })
	web, ok := res.Document.Services.Get("web")
	require.True(t, ok)
	assert.Equal(t, compose.ServiceConfig{}, web)
	assert.Equal(t, []string{result.TypeDanglingEdge}, warningTypes(res.Warnings))
}

func TestAssemble_Skips(t *testing.T) {
	g := diagram.Graph{
		Nodes: []diagram.Node{
			node("s1", diagram.KindService, map[string]any{"image": "nginx"}),
			node("s2", diagram.KindService, map[string]any{"label": "web"}),
			node("s3", diagram.KindService, map[string]any{"label": "web", "image": "other"}),
			node("n1", diagram.KindNetwork, map[string]any{"driver": "bridge"}),
			node("x1", "database", map[string]any{"name": "pg"}),
		},
		Edges: []diagram.Edge{edge("e1", "s2", "n1")},
	}

	res := newAssembler(t).Assemble(g)
	assert.Equal(t, []string{"web"}, res.Document.Services.Names())
	web, _ := res.Document.Services.Get("web")
	assert.Empty(t, web.Image, "first node with a name wins")
	assert.Equal(t, 0, res.Document.Networks.Len())

	assert.ElementsMatch(t, []string{
		result.TypeUnknownKind,
		result.TypeUnnamedEntity,
		result.TypeDuplicateName,
		result.TypeUnnamedEntity,
		result.TypeUnresolvedReference,
	}, warningTypes(res.Warnings))
}

func TestAssemble_DependencyCycle(t *testing.T) {
	g := diagram.Graph{
		Nodes: []diagram.Node{
			node("a", diagram.KindService, map[string]any{"label": "a"}),
			node("b", diagram.KindService, map[string]any{"label": "b"}),
		},
		Edges: []diagram.Edge{edge("e1", "a", "b"), edge("e2", "b", "a")},
	}

	res := newAssembler(t).Assemble(g)
	assert.Equal(t, 2, res.Document.Services.Len())
	require.Equal(t, []string{result.TypeDependencyCycle}, warningTypes(res.Warnings))
	assert.Contains(t, res.Warnings[0].Message, "a, b")
}

func TestAssemble_DoesNotModifyInput(t *testing.T) {
	data := map[string]any{"label": "web", "container_name": "c"}
	g := diagram.Graph{Nodes: []diagram.Node{node("s1", diagram.KindService, data)}}

	newAssembler(t).Assemble(g)
	assert.Equal(t, map[string]any{"label": "web", "container_name": "c"}, data)
}

func TestAssemble_EmptyGraph(t *testing.T) {
	out, res, err := newAssembler(t).AssembleYAML(diagram.Graph{})
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, "services: {}\n", string(out))
}

func TestAssembleYAML_SerializerWarnings(t *testing.T) {
	g := diagram.Graph{Nodes: []diagram.Node{
		node("s1", diagram.KindService, map[string]any{"label": "web", "image": "nginx", "x-hook": func() {}}),
	}}

	out, res, err := newAssembler(t).AssembleYAML(g)
	require.NoError(t, err)
	assert.Equal(t, []string{result.TypeSerializationSkip}, warningTypes(res.Warnings))
	assert.Equal(t, "services:\n  web:\n    image: nginx\n", string(out))
}

func TestAssemble_InheritedEnvironment(t *testing.T) {
	g := diagram.Graph{Nodes: []diagram.Node{
		node("s1", diagram.KindService, map[string]any{
			"label":       "web",
			"image":       "nginx",
			"environment": map[string]any{"HOST_TOKEN": nil, "A": "1"},
		}),
	}}

	out, res, err := newAssembler(t).AssembleYAML(g)
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, `services:
  web:
    image: nginx
    environment:
      - A=1
      - HOST_TOKEN
`, string(out))
}

func TestAssemble_UnreadableOptions(t *testing.T) {
	g := diagram.Graph{Nodes: []diagram.Node{
		node("s1", diagram.KindService, map[string]any{
			"label":    "web",
			"restart":  "sometimes",
			"ports":    []any{"80:80", map[string]any{"published": 8080}},
			"profiles": []any{"debug"},
		}),
	}}

	res := newAssembler(t).Assemble(g)
	web, _ := res.Document.Services.Get("web")
	assert.Equal(t, []string{"80:80"}, web.Ports)
	assert.Equal(t, map[string]any{"profiles": []any{"debug"}}, web.Extras)

	require.Len(t, res.Warnings, 2)
	for _, w := range res.Warnings {
		assert.Equal(t, result.TypeInvalidNode, w.Type)
		assert.Equal(t, "s1", w.NodeID)
	}
	assert.Contains(t, res.Warnings[0].Message, "ports[1]")
	assert.Contains(t, res.Warnings[1].Message, "restart")
}
