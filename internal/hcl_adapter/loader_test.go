package hcl_adapter

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/specialistvlad/pixelgrid/internal/engine"
	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/testutil"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const chainHCL = `
metadata = {
  title = "chain"
}

settings {
  memory_limit   = "256MiB"
  parallel       = false
  failure_policy = "fail-fast"
  node_timeout   = "2s"
}

node "src" {
  operation  = "constant_int"
  parameters = { value = 5 }
}

node "sum" {
  operation  = "add"
  parameters = { addend = 3 }
}

node "result" {
  operation = "output"
}

connection {
  from = "src.value"
  to   = "sum.value"
}

connection {
  from = "sum.result"
  to   = "result.value"
}
`

func TestParse_Chain(t *testing.T) {
	ctx := testutil.Context(t)
	l := NewLoader(testutil.Registry(t))

	f, err := l.Parse(ctx, []byte(chainHCL), "chain.hcl")
	require.NoError(t, err)

	g := f.Graph
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 2, g.ConnectionCount())
	assert.Equal(t, "chain", g.Metadata()["title"])

	sum := f.Nodes["sum"]
	n, ok := g.Node(sum)
	require.True(t, ok)
	assert.Equal(t, "sum", n.Label)
	assert.Equal(t, "add", n.OperationID)
	assert.True(t, n.Parameters["addend"].Equal(value.Int(3)))

	c, ok := g.InputConnection(f.Nodes["result"], "value")
	require.True(t, ok)
	assert.Equal(t, graph.Endpoint{Node: sum, Port: "result"}, c.From)

	s := f.Settings.Apply(engine.DefaultSettings())
	assert.Equal(t, int64(256<<20), s.MemoryLimit)
	assert.False(t, s.Parallel)
	assert.Equal(t, engine.FailFast, s.FailurePolicy)
	assert.Equal(t, 2*time.Second, s.NodeTimeout)
	assert.True(t, s.UseCache, "absent attributes keep the default")
}

func TestParse_ExecutesEndToEnd(t *testing.T) {
	ctx := testutil.Context(t)
	f, err := NewLoader(testutil.Registry(t)).Parse(ctx, []byte(chainHCL), "chain.hcl")
	require.NoError(t, err)

	res, err := engine.New().Execute(ctx, f.Graph, f.Settings.Apply(engine.DefaultSettings()), nil)
	require.NoError(t, err)
	v, ok := res.Output(f.Nodes["result"], "value")
	require.True(t, ok)
	assert.True(t, v.Equal(value.Int(8)))
}

func TestParse_CoercesLiterals(t *testing.T) {
	src := `
node "img" {
  operation  = "solid_image"
  parameters = {
    width  = 32
    height = 16
    color  = "#ff8000"
  }
}

node "bright" {
  operation  = "brightness"
  disabled   = true
  parameters = { factor = 2 }
}
`
	f, err := NewLoader(testutil.Registry(t)).Parse(testutil.Context(t), []byte(src), "coerce.hcl")
	require.NoError(t, err)

	img, _ := f.Graph.Node(f.Nodes["img"])
	assert.True(t, img.Parameters["color"].Equal(value.ColorValue(value.Color{R: 255, G: 128, B: 0, A: 255})))

	bright, _ := f.Graph.Node(f.Nodes["bright"])
	assert.True(t, bright.Disabled)
	assert.True(t, bright.Parameters["factor"].Equal(value.Float(2)))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		want    error
		message string
	}{
		{
			name:    "syntax",
			src:     `node "a" {`,
			message: "failed to parse",
		},
		{
			name:    "unknown block",
			src:     `pipeline "x" {}`,
			message: "failed to decode",
		},
		{
			name: "unknown operation",
			src:  `node "a" { operation = "teleport" }`,
			want: graph.ErrOperationNotFound,
		},
		{
			name: "duplicate label",
			src: `
node "a" { operation = "constant_int" }
node "a" { operation = "constant_int" }`,
			message: "declared twice",
		},
		{
			name: "unknown parameter",
			src: `
node "a" {
  operation  = "constant_int"
  parameters = { bogus = 1 }
}`,
			want:    graph.ErrParameterNotFound,
			message: "bogus",
		},
		{
			name: "wrong parameter type",
			src: `
node "a" {
  operation  = "constant_int"
  parameters = { value = "five" }
}`,
			message: "parameter 'value'",
		},
		{
			name: "dangling connection",
			src: `
node "a" { operation = "constant_int" }
connection {
  from = "a.value"
  to   = "nowhere.value"
}`,
			want: graph.ErrNodeNotFound,
		},
		{
			name: "malformed endpoint",
			src: `
node "a" { operation = "constant_int" }
connection {
  from = "a"
  to   = "a.value"
}`,
			message: "<node>.<port>",
		},
		{
			name: "cycle",
			src: `
node "a" { operation = "add" }
node "b" { operation = "add" }
connection {
  from = "a.result"
  to   = "b.value"
}
connection {
  from = "b.result"
  to   = "a.value"
}`,
			want: graph.ErrCycleWouldForm,
		},
		{
			name:    "bad memory limit",
			src:     `settings { memory_limit = "lots" }`,
			message: "memory_limit",
		},
		{
			name:    "bad policy",
			src:     `settings { failure_policy = "sometimes" }`,
			message: "failure policy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLoader(testutil.Registry(t)).Parse(testutil.Context(t), []byte(tt.src), "bad.hcl")
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			if tt.message != "" {
				assert.Contains(t, err.Error(), tt.message)
			}
		})
	}
}

func TestLoad_MergesDirectory(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644))
	}
	write("a_nodes.hcl", `
node "src" {
  operation  = "constant_int"
  parameters = { value = 1 }
}
node "out" { operation = "output" }
`)
	write("b_links.hcl", `
connection {
  from = "src.value"
  to   = "out.value"
}
settings { tile_size = 128 }
`)
	write("notes.txt", "ignored")

	f, err := NewLoader(testutil.Registry(t)).Load(testutil.Context(t), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, f.Graph.Len())
	assert.Equal(t, 1, f.Graph.ConnectionCount())
	require.NotNil(t, f.Settings.TileSize)
	assert.Equal(t, 128, *f.Settings.TileSize)
}

func TestLoad_DuplicateSettings(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.hcl", "b.hcl"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(`settings { parallel = true }`), 0o644))
	}
	_, err := NewLoader(testutil.Registry(t)).Load(testutil.Context(t), dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate settings block")
}

func TestLoad_NoFiles(t *testing.T) {
	_, err := NewLoader(testutil.Registry(t)).Load(testutil.Context(t), t.TempDir())
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = NewLoader(testutil.Registry(t)).Load(testutil.Context(t), filepath.Join(t.TempDir(), "missing.hcl"))
	assert.Error(t, err)
}
