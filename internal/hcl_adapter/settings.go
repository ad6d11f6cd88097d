package hcl_adapter

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/specialistvlad/pixelgrid/internal/engine"
)

// Overrides are the settings a graph file sets explicitly. Nil fields leave
// the corresponding setting alone.
type Overrides struct {
	MemoryLimit   *int64
	TileSize      *int
	AutoChunk     *bool
	Parallel      *bool
	UseCache      *bool
	FailurePolicy *engine.FailurePolicy
	MaxWorkers    *int
	SkipDisabled  *bool
	NodeTimeout   *time.Duration
}

// Apply returns s with every present override applied.
func (o Overrides) Apply(s engine.Settings) engine.Settings {
	if o.MemoryLimit != nil {
		s.MemoryLimit = *o.MemoryLimit
	}
	if o.TileSize != nil {
		s.TileSize = *o.TileSize
	}
	if o.AutoChunk != nil {
		s.AutoChunk = *o.AutoChunk
	}
	if o.Parallel != nil {
		s.Parallel = *o.Parallel
	}
	if o.UseCache != nil {
		s.UseCache = *o.UseCache
	}
	if o.FailurePolicy != nil {
		s.FailurePolicy = *o.FailurePolicy
	}
	if o.MaxWorkers != nil {
		s.MaxWorkers = *o.MaxWorkers
	}
	if o.SkipDisabled != nil {
		s.SkipDisabled = *o.SkipDisabled
	}
	if o.NodeTimeout != nil {
		s.NodeTimeout = *o.NodeTimeout
	}
	return s
}

func translateSettings(b *SettingsBlock) (Overrides, error) {
	o := Overrides{
		TileSize:     b.TileSize,
		AutoChunk:    b.AutoChunk,
		Parallel:     b.Parallel,
		UseCache:     b.UseCache,
		MaxWorkers:   b.MaxWorkers,
		SkipDisabled: b.SkipDisabled,
	}
	if b.MemoryLimit != nil {
		n, err := humanize.ParseBytes(*b.MemoryLimit)
		if err != nil {
			return Overrides{}, fmt.Errorf("settings: invalid memory_limit %q: %w", *b.MemoryLimit, err)
		}
		limit := int64(n)
		o.MemoryLimit = &limit
	}
	if b.FailurePolicy != nil {
		p, err := engine.ParseFailurePolicy(*b.FailurePolicy)
		if err != nil {
			return Overrides{}, fmt.Errorf("settings: %w", err)
		}
		o.FailurePolicy = &p
	}
	if b.NodeTimeout != nil {
		d, err := time.ParseDuration(*b.NodeTimeout)
		if err != nil {
			return Overrides{}, fmt.Errorf("settings: invalid node_timeout %q: %w", *b.NodeTimeout, err)
		}
		o.NodeTimeout = &d
	}
	if o.TileSize != nil && *o.TileSize <= 0 {
		return Overrides{}, fmt.Errorf("settings: tile_size must be positive, got %d", *o.TileSize)
	}
	if o.MaxWorkers != nil && *o.MaxWorkers <= 0 {
		return Overrides{}, fmt.Errorf("settings: max_workers must be positive, got %d", *o.MaxWorkers)
	}
	return o, nil
}
