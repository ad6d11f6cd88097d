package app

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/hcl_adapter"
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/testutil"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupAppTest creates an App writing logs and command output into one
// buffer.
func setupAppTest(t *testing.T, cfg Config, mods ...registry.Module) (*App, *testutil.SafeBuffer) {
	t.Helper()

	cfg.LogLevel = "debug"
	c, err := NewConfig(cfg)
	require.NoError(t, err)

	out := &testutil.SafeBuffer{}
	a := NewApp(out, c, mods...)
	t.Cleanup(func() {
		if os.Getenv("PIXELGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), out.String())
		}
	})
	return a, out
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const chainHCL = `
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

func TestNewConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{name: "run defaults", cfg: Config{GraphPath: "g.hcl"}},
		{name: "run needs a graph", cfg: Config{}, wantErr: "GraphPath"},
		{name: "validate needs a graph", cfg: Config{Command: CommandValidate}, wantErr: "GraphPath"},
		{name: "list needs nothing", cfg: Config{Command: CommandList}},
		{name: "info needs an id", cfg: Config{Command: CommandInfo}, wantErr: "operation id"},
		{name: "unknown command", cfg: Config{Command: "dance"}, wantErr: "unknown command"},
		{name: "bad validation level", cfg: Config{GraphPath: "g.hcl", Validation: "some"}, wantErr: "validation"},
		{name: "negative port", cfg: Config{GraphPath: "g.hcl", HealthcheckPort: -1}, wantErr: "HealthcheckPort"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewConfig(tt.cfg)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, c.Command)
			assert.Equal(t, ValidationFull, c.Validation)
		})
	}
}

func TestRun_HCLChain(t *testing.T) {
	a, out := setupAppTest(t, Config{GraphPath: writeFile(t, "chain.hcl", chainHCL)})

	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "✅ Graph is valid")
	assert.Contains(t, out.String(), "result.value = 8")
	assert.Contains(t, out.String(), "executed 3, cached 0")
	assert.Contains(t, out.String(), "🏁 Execution finished.")
}

func TestRun_CacheAcrossRuns(t *testing.T) {
	a, out := setupAppTest(t, Config{GraphPath: writeFile(t, "chain.hcl", chainHCL)})

	require.NoError(t, a.Run(context.Background()))
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "executed 0, cached 3")
}

func TestRun_CommandLineSettingsWin(t *testing.T) {
	src := "settings {\n  use_cache = true\n}\n" + chainHCL
	noCache := false
	a, out := setupAppTest(t, Config{
		GraphPath: writeFile(t, "chain.hcl", src),
		Settings:  hcl_adapter.Overrides{UseCache: &noCache},
	})

	require.NoError(t, a.Run(context.Background()))
	require.NoError(t, a.Run(context.Background()))
	assert.NotContains(t, out.String(), "cached 3")
}

func TestRun_JSONAndYAML(t *testing.T) {
	for _, ext := range []string{".json", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			hclPath := writeFile(t, "chain.hcl", chainHCL)
			a, out := setupAppTest(t, Config{GraphPath: hclPath})

			file, err := hcl_adapter.NewLoader(a.Registry()).Load(testutil.Context(t), hclPath)
			require.NoError(t, err)

			path := filepath.Join(t.TempDir(), "chain"+ext)
			f, err := os.Create(path)
			require.NoError(t, err)
			if ext == ".json" {
				require.NoError(t, file.Graph.EncodeJSON(f))
			} else {
				require.NoError(t, file.Graph.EncodeYAML(f))
			}
			require.NoError(t, f.Close())

			a.config.GraphPath = path
			require.NoError(t, a.Run(context.Background()))
			assert.Contains(t, out.String(), "result.value = 8")
		})
	}
}

func TestRun_InvalidGraph(t *testing.T) {
	src := `
node "sum" {
  operation = "add"
}
`
	a, out := setupAppTest(t, Config{GraphPath: writeFile(t, "bad.hcl", src)})

	err := a.Run(context.Background())
	require.ErrorIs(t, err, ErrInvalidGraph)
	assert.Contains(t, out.String(), "❌ Graph is invalid")
	assert.NotContains(t, out.String(), "🚀 Starting execution...")
}

func TestRun_ExecutionFailure(t *testing.T) {
	target := filepath.Join(t.TempDir(), "missing", "out.png")
	src := `
node "img" {
  operation  = "solid_image"
  parameters = {
    width  = 4
    height = 4
  }
}

node "save" {
  operation  = "save_image"
  parameters = { path = "` + filepath.ToSlash(target) + `" }
}

connection {
  from = "img.image"
  to   = "save.image"
}
`
	a, out := setupAppTest(t, Config{GraphPath: writeFile(t, "save.hcl", src)})

	err := a.Run(context.Background())
	require.ErrorIs(t, err, ErrExecutionFailed)
	assert.Contains(t, out.String(), "warning:", "a missing parent directory is only a warning")
	assert.Contains(t, out.String(), "failed 1")
}

func TestRun_LoadError(t *testing.T) {
	a, _ := setupAppTest(t, Config{GraphPath: writeFile(t, "broken.hcl", `node "a" {`)})
	err := a.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func TestValidateCommand(t *testing.T) {
	a, out := setupAppTest(t, Config{
		Command:    CommandValidate,
		GraphPath:  writeFile(t, "chain.hcl", chainHCL),
		Validation: ValidationMinimal,
	})
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "✅ Graph is valid")
	assert.NotContains(t, out.String(), "result.value")
}

func TestListAndInfo(t *testing.T) {
	a, out := setupAppTest(t, Config{Command: CommandList})
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Math:")
	assert.Contains(t, out.String(), "box_blur")

	a, out = setupAppTest(t, Config{Command: CommandInfo, OperationID: "add"})
	require.NoError(t, a.Run(context.Background()))
	assert.Contains(t, out.String(), "Add (add)")
	assert.Contains(t, out.String(), "inputs:")
	assert.Contains(t, out.String(), "addend")

	a, _ = setupAppTest(t, Config{Command: CommandInfo, OperationID: "teleport"})
	assert.ErrorIs(t, a.Run(context.Background()), ErrUnknownOperation)
}

func TestHandler(t *testing.T) {
	a, _ := setupAppTest(t, Config{GraphPath: writeFile(t, "chain.hcl", chainHCL)})
	require.NoError(t, a.Run(context.Background()))

	srv := httptest.NewServer(a.Handler())
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	code, body := get("/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "OK\n", body)

	code, body = get("/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `pixelgrid_engine_runs_total{outcome="success"} 1`)
	assert.Contains(t, body, "pixelgrid_cache_lookups_total")
	assert.Contains(t, body, "go_goroutines")
}

type brokenModule struct{}

func (brokenModule) Register(r *registry.Registry) {
	r.Register(func() operation.Operation {
		return &operation.Func{
			Meta: operation.Metadata{
				ID:       "broken",
				Category: operation.CategoryCustom,
				Outputs: []schema.PortDefinition{
					schema.Output("value", value.TypeInteger),
					schema.Output("value", value.TypeInteger),
				},
			},
			Run: func(*operation.ExecutionContext) error { return nil },
		}
	})
}

func TestNewApp_PanicsOnInvalidRegistry(t *testing.T) {
	c, err := NewConfig(Config{Command: CommandList})
	require.NoError(t, err)
	assert.PanicsWithError(t, "registry validation failed:\n- operation 'broken': output 'value' declared twice", func() {
		NewApp(io.Discard, c, brokenModule{})
	})
}
