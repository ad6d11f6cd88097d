package engine

import (
	"fmt"
	"runtime"
	"time"

	"github.com/specialistvlad/pixelgrid/internal/chunked"
)

// FailurePolicy decides what happens to the rest of a run after a node fails.
type FailurePolicy int

const (
	// FailAggregate skips only the dependents of a failed node.
	FailAggregate FailurePolicy = iota
	// FailFast starts no new node after the first failure.
	FailFast
)

func (p FailurePolicy) String() string {
	if p == FailFast {
		return "fail-fast"
	}
	return "aggregate"
}

// ParseFailurePolicy accepts "aggregate" and "fail-fast".
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch s {
	case "aggregate", "":
		return FailAggregate, nil
	case "fail-fast", "failfast":
		return FailFast, nil
	}
	return 0, fmt.Errorf("unknown failure policy %q", s)
}

// Settings control one run.
type Settings struct {
	// MemoryLimit bounds the working set of tiled processing. Images whose
	// buffer exceeds half of it are tiled when AutoChunk is set.
	MemoryLimit int64
	AutoChunk   bool
	TileSize    int
	Parallel    bool
	UseCache    bool

	FailurePolicy FailurePolicy
	// MaxWorkers bounds concurrent nodes within a batch.
	MaxWorkers int
	// SkipDisabled skips disabled nodes and their dependents. When false,
	// the disabled flag is ignored.
	SkipDisabled bool
	// NodeTimeout bounds the context handed to each operation. Zero means
	// no limit.
	NodeTimeout time.Duration
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		MemoryLimit:   chunked.DefaultMemoryLimit,
		AutoChunk:     true,
		TileSize:      chunked.DefaultTileSize,
		Parallel:      true,
		UseCache:      true,
		FailurePolicy: FailAggregate,
		MaxWorkers:    runtime.NumCPU(),
		SkipDisabled:  true,
	}
}

func (s Settings) normalized() Settings {
	if s.MemoryLimit <= 0 {
		s.MemoryLimit = chunked.DefaultMemoryLimit
	}
	if s.TileSize <= 0 {
		s.TileSize = chunked.DefaultTileSize
	}
	if s.MaxWorkers <= 0 {
		s.MaxWorkers = runtime.NumCPU()
	}
	return s
}
