package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/cli"
	"github.com/specialistvlad/pixelgrid/internal/engine"
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/stretchr/testify/require"
)

type duplicatePorts struct{}

func (duplicatePorts) Register(r *registry.Registry) {
	r.Register(func() operation.Operation {
		return &operation.Func{
			Meta: operation.Metadata{
				ID: "twice",
				Inputs: []schema.PortDefinition{
					schema.Input("x", value.TypeInteger),
					schema.Input("x", value.TypeInteger),
				},
			},
			Run: func(*operation.ExecutionContext) error { return nil },
		}
	})
}

func TestRun_PanicRecovery(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"list"}, duplicatePorts{})

	require.Error(t, err, "run() should have returned an error after recovering from a panic")
	require.Contains(t, err.Error(), "application startup panicked")
	require.Contains(t, err.Error(), "input 'x' declared twice")
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(context.Background(), out, []string{"-h"})

	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(context.Background(), &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")
}

func TestRun_Graph(t *testing.T) {
	t.Parallel()

	src := `
node "a" {
  operation  = "constant_float"
  parameters = { value = 1.5 }
}

node "double" {
  operation  = "multiply"
  parameters = { factor = 2 }
}

connection {
  from = "a.value"
  to   = "double.value"
}
`
	path := filepath.Join(t.TempDir(), "graph.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o600))

	out := &bytes.Buffer{}
	require.NoError(t, run(context.Background(), out, []string{"-log-level", "warn", path}))
	require.Contains(t, out.String(), "double.result = 3")
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "graph.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`
node "a" {
  operation = "constant_int"
}
`), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := run(ctx, &bytes.Buffer{}, []string{path})
	require.Error(t, err)
	require.ErrorIs(t, err, engine.ErrCancelled)
}
