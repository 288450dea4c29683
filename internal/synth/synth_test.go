package synth_test

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graph-to-compose/composer/internal/assembler"
	"github.com/graph-to-compose/composer/internal/compose"
	"github.com/graph-to-compose/composer/internal/diagram"
	"github.com/graph-to-compose/composer/internal/idgen"
	"github.com/graph-to-compose/composer/internal/result"
	"github.com/graph-to-compose/composer/internal/synth"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

const shop = `name: shop
services:
  web:
    image: nginx
    container_name: shop-web
    ports: ["80:80"]
    networks: [front]
    volumes:
      - static:/usr/share/nginx/html:ro
      - ./conf:/etc/nginx/conf.d
    depends_on:
      api:
        condition: service_started
  api:
    image: shop/api:1.4
    environment:
      DB_HOST: db
    networks: [front, back]
    secrets: [db_pass]
    configs: [api_conf]
    depends_on: [db]
  db:
    image: postgres:16
    networks: [back]
    volumes: [pgdata:/var/lib/postgresql/data]
    secrets:
      - source: db_pass
        target: postgres_password
networks:
  front: {}
  back:
    internal: true
volumes:
  static:
  pgdata:
    driver: local
secrets:
  db_pass:
    file: ./db_pass.txt
configs:
  api_conf:
    file: ./api.toml
`

func newSynth(prefix string) *synth.Synthesizer {
	opts := synth.DefaultOptions()
	opts.IDs = idgen.NewSequence(prefix)
	opts.Logger = quiet
	return synth.New(opts)
}

func nodeNamed(t *testing.T, g diagram.Graph, kind diagram.Kind, name string) diagram.Node {
	t.Helper()
	for _, n := range g.Nodes {
		if n.Type == kind && n.Data[diagram.DataLabel] == name {
			return n
		}
	}
	t.Fatalf("no %s node labelled %q", kind, name)
	return diagram.Node{}
}

func TestSynthesize_Nodes(t *testing.T) {
	res, err := newSynth("n").SynthesizeYAML([]byte(shop))
	require.NoError(t, err)
	assert.Empty(t, res.Warnings)

	g := res.Graph
	require.Len(t, g.Nodes, 9)
	var kinds []diagram.Kind
	for _, n := range g.Nodes {
		kinds = append(kinds, n.Type)
	}
	assert.Equal(t, []diagram.Kind{
		diagram.KindService, diagram.KindService, diagram.KindService,
		diagram.KindNetwork, diagram.KindNetwork,
		diagram.KindVolume, diagram.KindVolume,
		diagram.KindSecret,
		diagram.KindConfig,
	}, kinds)
	assert.Equal(t, "n-1", g.Nodes[0].ID)

	web := nodeNamed(t, g, diagram.KindService, "web")
	assert.Equal(t, "nginx", web.Data["image"])
	assert.Equal(t, "shop-web", web.Data["container_name"])

	back := nodeNamed(t, g, diagram.KindNetwork, "back")
	assert.Equal(t, map[string]any{"name": "back", "label": "back", "internal": true}, back.Data)
}

func TestSynthesize_Layout(t *testing.T) {
	res, err := newSynth("n").SynthesizeYAML([]byte(shop))
	require.NoError(t, err)

	pos := func(kind diagram.Kind, name string) diagram.Position {
		return nodeNamed(t, res.Graph, kind, name).Position
	}
	assert.Equal(t, diagram.Position{X: -220, Y: 0}, pos(diagram.KindService, "web"))
	assert.Equal(t, diagram.Position{X: 0, Y: 0}, pos(diagram.KindService, "api"))
	assert.Equal(t, diagram.Position{X: 220, Y: 0}, pos(diagram.KindService, "db"))
	assert.Equal(t, diagram.Position{X: -110, Y: 180}, pos(diagram.KindNetwork, "front"))
	assert.Equal(t, diagram.Position{X: 110, Y: 180}, pos(diagram.KindNetwork, "back"))
	assert.Equal(t, diagram.Position{X: 0, Y: 540}, pos(diagram.KindSecret, "db_pass"))
	assert.Equal(t, diagram.Position{X: 0, Y: 720}, pos(diagram.KindConfig, "api_conf"))

	// Layout depends on the document only.
	again, err := newSynth("other").SynthesizeYAML([]byte(shop))
	require.NoError(t, err)
	for i := range res.Graph.Nodes {
		assert.Equal(t, res.Graph.Nodes[i].Position, again.Graph.Nodes[i].Position)
	}
}

func TestSynthesize_Edges(t *testing.T) {
	res, err := newSynth("n").SynthesizeYAML([]byte(shop))
	require.NoError(t, err)
	g := res.Graph

	type link struct{ from, to, rel string }
	label := make(map[string]string)
	for _, n := range g.Nodes {
		label[n.ID] = string(n.Type) + "/" + n.Data[diagram.DataLabel].(string)
	}
	var got []link
	for _, e := range g.Edges {
		got = append(got, link{label[e.Source], label[e.Target], e.Type})
	}
	assert.Equal(t, []link{
		{"service/web", "network/front", "network"},
		{"service/web", "volume/static", "volume"},
		{"service/web", "service/api", "depends_on"},
		{"service/api", "network/front", "network"},
		{"service/api", "network/back", "network"},
		{"service/api", "secret/db_pass", "secret"},
		{"service/api", "config/api_conf", "config"},
		{"service/api", "service/db", "depends_on"},
		{"service/db", "network/back", "network"},
		{"service/db", "volume/pgdata", "volume"},
		{"service/db", "secret/db_pass", "secret"},
	}, got)
}

func TestSynthesize_UnresolvedReferences(t *testing.T) {
	res, err := newSynth("n").SynthesizeYAML([]byte(`services:
  web:
    networks: [ghost]
    volumes: [missing:/data, /anonymous]
`))
	require.NoError(t, err)
	assert.Len(t, res.Graph.Nodes, 1)
	assert.Empty(t, res.Graph.Edges)
	require.Len(t, res.Warnings, 2)
	for _, w := range res.Warnings {
		assert.Equal(t, result.TypeUnresolvedReference, w.Type)
		assert.Equal(t, "service/web", w.Entity)
	}
}

func TestSynthesize_ParserErrors(t *testing.T) {
	_, err := newSynth("n").SynthesizeYAML([]byte("[1, 2]"))
	assert.Error(t, err)

	res, err := newSynth("n").SynthesizeYAML([]byte("services:\n  bad: 3\n"))
	require.NoError(t, err)
	assert.Empty(t, res.Graph.Nodes)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, result.TypeInvalidNode, res.Warnings[0].Type)

	assert.Empty(t, newSynth("n").Synthesize(nil).Graph.Nodes)
}

func TestRoundTrip(t *testing.T) {
	first, err := newSynth("n").SynthesizeYAML([]byte(shop))
	require.NoError(t, err)

	opts := assembler.DefaultOptions()
	opts.Logger = quiet
	opts.Name = "shop"
	assembled := assembler.New(opts).Assemble(first.Graph)
	require.Empty(t, assembled.Warnings)

	second := newSynth("n").Synthesize(assembled.Document)
	if diff := cmp.Diff(first.Graph, second.Graph); diff != "" {
		t.Errorf("synthesize(assemble(synthesize(doc))) mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_KeepsOptionsWithoutTypedFields(t *testing.T) {
	src := `services:
  web:
    image: nginx
    profiles: [debug]
    mem_limit: 512m
    environment:
      HOST_TOKEN:
    ports:
      - target: 443
        published: 443
        mode: host
    volumes:
      - data:/data
      - type: tmpfs
        target: /run
    networks: [front]
networks:
  front:
    name: prod_front
volumes:
  data:
    external:
      name: legacy_data
`
	doc, warns, err := compose.Unmarshal([]byte(src))
	require.NoError(t, err)
	require.Empty(t, warns)
	want, _, err := compose.Marshal(doc)
	require.NoError(t, err)

	res := newSynth("n").Synthesize(doc)
	opts := assembler.DefaultOptions()
	opts.Logger = quiet
	got, assembled, err := assembler.New(opts).AssembleYAML(res.Graph)
	require.NoError(t, err)
	require.Empty(t, assembled.Warnings)
	assert.Equal(t, string(want), string(got))
	assert.Contains(t, string(got), "name: prod_front")
	assert.Contains(t, string(got), "- HOST_TOKEN")
}

func TestCustomLayout(t *testing.T) {
	opts := synth.DefaultOptions()
	opts.IDs = idgen.NewSequence("")
	opts.Logger = quiet
	opts.Layout = synth.Layout{NodeSpacing: 100, LayerSpacing: 50, CenterX: 500, OriginY: 10}
	res, err := synth.New(opts).SynthesizeYAML([]byte("services:\n  a: {}\n  b: {}\nnetworks:\n  n: {}\n"))
	require.NoError(t, err)

	require.Len(t, res.Graph.Nodes, 3)
	assert.Equal(t, "1", res.Graph.Nodes[0].ID)
	assert.Equal(t, diagram.Position{X: 450, Y: 10}, res.Graph.Nodes[0].Position)
	assert.Equal(t, diagram.Position{X: 550, Y: 10}, res.Graph.Nodes[1].Position)
	assert.Equal(t, diagram.Position{X: 500, Y: 60}, res.Graph.Nodes[2].Position)
}
