// Package testutil holds helpers shared by the package tests: captured
// loggers, a frozen registry with the builtin operations, and deterministic
// test images.
package testutil

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/registry"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/specialistvlad/pixelgrid/modules"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// Logger returns a debug-level logger writing into a SafeBuffer. Set
// PIXELGRID_TEST_LOGS=true to print the captured output after the test.
func Logger(t *testing.T) (*slog.Logger, *SafeBuffer) {
	t.Helper()

	buf := &SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	t.Cleanup(func() {
		if os.Getenv("PIXELGRID_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return logger, buf
}

// Context returns a background context carrying a captured logger.
func Context(t *testing.T) context.Context {
	t.Helper()
	logger, _ := Logger(t)
	return ctxlog.WithLogger(context.Background(), logger)
}

// Registry returns a validated, frozen registry holding the builtin
// operations plus any extra modules.
func Registry(t *testing.T, extra ...registry.Module) *registry.Registry {
	t.Helper()

	reg := registry.New()
	for _, mod := range append(modules.Core(), extra...) {
		mod.Register(reg)
	}
	require.NoError(t, reg.Validate(Context(t)))
	reg.Freeze()
	return reg
}

// Gradient returns a deterministic image whose samples vary with position
// and channel, so that misplaced tiles show up as pixel differences.
func Gradient(width, height, channels int) *value.Image {
	img := value.NewImage(width, height, channels)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < channels; c++ {
				img.Set(x, y, c, float32((x*7+y*13+c*29)%256)/255)
			}
		}
	}
	return img
}
