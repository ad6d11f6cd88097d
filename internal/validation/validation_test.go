package validation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/testutil"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGraph(t *testing.T) *graph.Graph {
	t.Helper()
	return graph.New(testutil.Registry(t))
}

func node(t *testing.T, g *graph.Graph, op string) graph.NodeID {
	t.Helper()
	id, err := g.AddNode(op)
	require.NoError(t, err)
	return id
}

func link(t *testing.T, g *graph.Graph, src graph.NodeID, srcPort string, dst graph.NodeID, dstPort string) {
	t.Helper()
	_, err := g.Connect(src, srcPort, dst, dstPort)
	require.NoError(t, err)
}

func TestFull_ValidGraph(t *testing.T) {
	t.Parallel()
	g := newGraph(t)
	src := node(t, g, "constant_int")
	add := node(t, g, "add")
	out := node(t, g, "output")
	link(t, g, src, "value", add, "value")
	link(t, g, add, "result", out, "value")

	report := Full().Validate(testutil.Context(t), g)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	assert.Empty(t, report.Warnings)
	assert.Contains(t, report.Summary(), "Graph is valid")
}

func TestStructural_SingleMissingInput(t *testing.T) {
	t.Parallel()
	g := newGraph(t)
	src := node(t, g, "constant_int")
	add := node(t, g, "add")
	out := node(t, g, "output")
	link(t, g, add, "result", out, "value")

	report := Full().Validate(testutil.Context(t), g)
	require.False(t, report.Valid)
	require.Len(t, report.Errors, 1)

	e := report.Errors[0]
	assert.Equal(t, KindMissingInput, e.Kind)
	assert.Equal(t, add, e.Node)
	assert.Equal(t, "value", e.Port)
	assert.Empty(t, report.ErrorsFor(src))
	assert.Empty(t, report.ErrorsFor(out))

	// The unconnected constant forms an island, which is only a warning.
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, KindIsland, report.Warnings[0].Kind)
}

func TestStructural_DisabledNodes(t *testing.T) {
	t.Parallel()
	g := newGraph(t)
	add := node(t, g, "add")
	out := node(t, g, "output")
	link(t, g, add, "result", out, "value")
	require.NoError(t, g.SetDisabled(add, true))

	report := Minimal().Validate(testutil.Context(t), g)
	assert.True(t, report.Valid, "disabled nodes are not checked for inputs: %s", report.Summary())
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, KindDisabledDownstream, report.Warnings[0].Kind)
	assert.Equal(t, add, report.Warnings[0].Node)
}

func TestStructural_EmptyGraph(t *testing.T) {
	t.Parallel()
	report := Full().Validate(testutil.Context(t), newGraph(t))
	assert.True(t, report.Valid)
	require.Len(t, report.Warnings, 1)
	assert.Equal(t, KindEmptyGraph, report.Warnings[0].Kind)
}

func TestConstraint_OutOfRange(t *testing.T) {
	t.Parallel()
	g := newGraph(t)
	img := node(t, g, "solid_image")
	bright := node(t, g, "brightness")
	link(t, g, img, "image", bright, "image")
	require.NoError(t, g.SetParameter(bright, "factor", value.Float(20)))
	require.NoError(t, g.SetParameter(img, "width", value.Int(0)))

	report := Full().Validate(testutil.Context(t), g)
	require.False(t, report.Valid)
	require.Len(t, report.Errors, 2)
	for _, e := range report.Errors {
		assert.Equal(t, KindConstraint, e.Kind)
		assert.NotEmpty(t, e.Suggestion)
	}
	assert.Equal(t, "width", report.Errors[0].Param)
	assert.Equal(t, "factor", report.Errors[1].Param)

	minimal := Minimal().Validate(testutil.Context(t), g)
	assert.True(t, minimal.Valid, "constraints are not part of the minimal pipeline")
}

func TestCustom_DelegatesToOperation(t *testing.T) {
	t.Parallel()
	g := newGraph(t)
	img := node(t, g, "solid_image")
	save := node(t, g, "save_image")
	link(t, g, img, "image", save, "image")
	require.NoError(t, g.SetParameter(save, "path", value.String(filepath.Join(t.TempDir(), "out.xyz"))))

	report := Full().Validate(testutil.Context(t), g)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, KindCustom, report.Errors[0].Kind)
	assert.Equal(t, save, report.Errors[0].Node)
	assert.Contains(t, report.Errors[0].Message, "supported extensions")
}

func TestResources(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	existing := filepath.Join(dir, "in.png")
	require.NoError(t, os.WriteFile(existing, []byte("x"), 0o600))

	cases := []struct {
		name     string
		op       string
		path     string
		errors   int
		warnings int
	}{
		{"empty read path", "load_image", "", 1, 0},
		{"missing file", "load_image", filepath.Join(dir, "nope.png"), 1, 0},
		{"existing file", "load_image", existing, 0, 0},
		{"matching glob", "load_image", filepath.Join(dir, "*.png"), 0, 0},
		{"empty glob", "load_image", filepath.Join(dir, "*.tiff"), 1, 0},
		{"write into existing dir", "save_image", filepath.Join(dir, "out.png"), 0, 0},
		{"write into missing dir", "save_image", filepath.Join(dir, "missing", "out.png"), 0, 1},
		{"overwrite existing file", "save_image", existing, 0, 0},
		{"write onto a directory", "save_image", dir, 1, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := newGraph(t)
			id := node(t, g, tc.op)
			require.NoError(t, g.SetParameter(id, "path", value.String(tc.path)))

			report := &Report{Valid: true}
			Resources{}.Check(context.Background(), g, report)
			assert.Len(t, report.Errors, tc.errors)
			assert.Len(t, report.Warnings, tc.warnings)
		})
	}
}

func TestResources_ReadOnlyOutput(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores permission bits")
	}
	t.Parallel()
	dir := t.TempDir()
	locked := filepath.Join(dir, "locked.png")
	require.NoError(t, os.WriteFile(locked, []byte("x"), 0o400))
	readOnly := filepath.Join(dir, "ro")
	require.NoError(t, os.Mkdir(readOnly, 0o555))
	t.Cleanup(func() { _ = os.Chmod(readOnly, 0o755) })

	for name, path := range map[string]string{
		"read-only directory": filepath.Join(readOnly, "out.png"),
		"read-only file":      locked,
	} {
		t.Run(name, func(t *testing.T) {
			g := newGraph(t)
			id := node(t, g, "save_image")
			require.NoError(t, g.SetParameter(id, "path", value.String(path)))

			report := &Report{Valid: true}
			Resources{}.Check(context.Background(), g, report)
			require.Len(t, report.Errors, 1)
			assert.Equal(t, KindResource, report.Errors[0].Kind)
			assert.Contains(t, report.Errors[0].Message, "not writable")
		})
	}
}

type recordingStage struct {
	name  string
	calls *[]string
	fail  bool
}

func (s recordingStage) Name() string { return s.name }

func (s recordingStage) Check(_ context.Context, _ *graph.Graph, r *Report) {
	*s.calls = append(*s.calls, s.name)
	if s.fail {
		r.AddError(Error{Kind: KindCustom, Message: s.name + " failed"})
	}
}

func TestPipeline_AllStagesRun(t *testing.T) {
	t.Parallel()
	var calls []string
	p := New(
		recordingStage{name: "first", calls: &calls, fail: true},
		recordingStage{name: "second", calls: &calls},
		recordingStage{name: "third", calls: &calls, fail: true},
	)

	report := p.Validate(testutil.Context(t), newGraph(t))
	assert.Equal(t, []string{"first", "second", "third"}, calls)
	assert.False(t, report.Valid)
	assert.Len(t, report.Errors, 2)
	assert.Contains(t, report.Summary(), "2 errors")
}

func TestPipeline_DefaultCompositions(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"structural", "type", "constraint", "custom", "resource"}, Full().Stages())
	assert.Equal(t, []string{"structural", "type"}, Minimal().Stages())
}
