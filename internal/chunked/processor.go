package chunked

import (
	"context"
	"fmt"
	"image"

	"github.com/specialistvlad/pixelgrid/internal/ctxlog"
	"github.com/specialistvlad/pixelgrid/internal/metrics"
	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// TileFunc processes one tile. It must return an image of the same size.
type TileFunc func(ctx context.Context, tile *value.Image) (*value.Image, error)

// Stats summarizes one chunked run.
type Stats struct {
	Tiles  int
	Splits int
}

// Processor runs tile functions over sources. One Processor may serve
// several concurrent runs; they share its MemoryTracker.
type Processor struct {
	cfg     Config
	tracker *MemoryTracker
	metrics *metrics.Metrics
}

// NewProcessor creates a processor whose tracker is bounded by
// cfg.MemoryLimit. m may be nil.
func NewProcessor(cfg Config, m *metrics.Metrics) *Processor {
	cfg = NewConfig(cfg.TileWidth, cfg.TileHeight, cfg.MemoryLimit)
	return &Processor{cfg: cfg, tracker: NewMemoryTracker(cfg.MemoryLimit), metrics: m}
}

func (p *Processor) Config() Config { return p.cfg }

func (p *Processor) Tracker() *MemoryTracker { return p.tracker }

// Process runs fn over every tile of src, expanding each by the extent's
// overlap, and writes the core rectangles to dst.
func (p *Processor) Process(ctx context.Context, src Source, dst Sink, extent operation.SpatialExtent, fn TileFunc) (Stats, error) {
	if !extent.Chunkable() {
		return Stats{}, ErrNotChunkable
	}
	return p.run(ctx, src, dst, extent.Overlap(), fn)
}

// ProcessPointwise is the overlap-free path for pointwise operations.
func (p *Processor) ProcessPointwise(ctx context.Context, src Source, dst Sink, fn TileFunc) (Stats, error) {
	return p.run(ctx, src, dst, 0, fn)
}

// ProcessImage tiles img in memory and returns the stitched result.
func (p *Processor) ProcessImage(ctx context.Context, img *value.Image, extent operation.SpatialExtent, fn TileFunc) (*value.Image, Stats, error) {
	sink := NewImageSink(img)
	var (
		stats Stats
		err   error
	)
	if extent.Kind == operation.Pointwise {
		stats, err = p.ProcessPointwise(ctx, ImageSource{Image: img}, sink, fn)
	} else {
		stats, err = p.Process(ctx, ImageSource{Image: img}, sink, extent, fn)
	}
	if err != nil {
		return nil, stats, err
	}
	return sink.Image, stats, nil
}

func (p *Processor) run(ctx context.Context, src Source, dst Sink, overlap int, fn TileFunc) (Stats, error) {
	logger := ctxlog.FromContext(ctx)
	bounds := src.Bounds()
	it := NewTileIterator(bounds.Dx(), bounds.Dy(), p.cfg, overlap)
	logger.Debug("Starting tiled processing.",
		"width", bounds.Dx(), "height", bounds.Dy(),
		"tiles", it.Len(), "tile_width", p.cfg.TileWidth, "tile_height", p.cfg.TileHeight,
		"overlap", overlap,
	)

	var stats Stats
	for {
		r, ok := it.Next()
		if !ok {
			break
		}
		r.X += bounds.Min.X
		r.Y += bounds.Min.Y
		if err := p.region(ctx, src, dst, r, fn, &stats); err != nil {
			return stats, err
		}
	}
	logger.Debug("Tiled processing finished.", "tiles", stats.Tiles, "splits", stats.Splits, "peak_bytes", p.tracker.Peak())
	return stats, nil
}

func (p *Processor) region(ctx context.Context, src Source, dst Sink, r Region, fn TileFunc, stats *Stats) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	bounds := src.Bounds()
	expanded := r.Expanded(bounds)
	if !r.Core().In(bounds) {
		return &Error{Kind: ErrOutOfBounds, Tile: r}
	}

	// Input tile plus an output of the same size.
	need := 2 * ImageBytes(expanded.Dx(), expanded.Dy(), src.Channels())
	if !p.tracker.Fits(need) {
		parts, ok := split(r)
		if !ok {
			return &Error{
				Kind:   ErrMemoryExhausted,
				Tile:   r,
				Detail: fmt.Sprintf("needs %d bytes, limit is %d", need, p.tracker.Limit()),
			}
		}
		ctxlog.FromContext(ctx).Debug("Splitting tile to fit the memory limit.", "x", r.X, "y", r.Y, "width", r.Width, "height", r.Height)
		stats.Splits++
		p.metrics.TileSplit()
		for _, part := range parts {
			if err := p.region(ctx, src, dst, part, fn, stats); err != nil {
				return err
			}
		}
		return nil
	}
	if !p.tracker.TryAllocate(need) {
		// The budget is held by tiles of other nodes; they release it when
		// their tile finishes.
		ctxlog.FromContext(ctx).Debug("Waiting for tile memory.", "x", r.X, "y", r.Y, "needs", need, "in_use", p.tracker.Current())
		if err := p.tracker.Allocate(ctx, need); err != nil {
			return err
		}
	}
	defer p.tracker.Release(need)

	tile, err := src.Read(expanded)
	if err != nil {
		return &Error{Kind: ErrOutOfBounds, Tile: r, Detail: err.Error()}
	}
	out, err := fn(ctx, tile)
	if err != nil {
		return &Error{Kind: err, Tile: r}
	}
	if out == nil || out.Width != tile.Width || out.Height != tile.Height {
		return &Error{Kind: ErrTileShape, Tile: r}
	}

	core := r.Core().Sub(expanded.Min)
	if err := dst.Write(image.Pt(r.X, r.Y), out, core); err != nil {
		return &Error{Kind: ErrOutOfBounds, Tile: r, Detail: err.Error()}
	}
	stats.Tiles++
	p.metrics.TileProcessed()
	return nil
}

// split halves every side of r whose halves stay at least MinTileSize,
// giving up to four parts.
func split(r Region) ([]Region, bool) {
	canW := r.Width >= 2*MinTileSize
	canH := r.Height >= 2*MinTileSize
	if !canW && !canH {
		return nil, false
	}
	ws, hs := []int{r.Width}, []int{r.Height}
	if canW {
		ws = []int{r.Width / 2, r.Width - r.Width/2}
	}
	if canH {
		hs = []int{r.Height / 2, r.Height - r.Height/2}
	}
	var parts []Region
	y := r.Y
	for _, h := range hs {
		x := r.X
		for _, w := range ws {
			parts = append(parts, Region{X: x, Y: y, Width: w, Height: h, Overlap: r.Overlap})
			x += w
		}
		y += h
	}
	return parts, true
}
