package chunked

import (
	"image"
	"math"
)

const (
	MinTileSize     = 64
	MaxTileSize     = 4096
	DefaultTileSize = 512
	// DefaultMemoryLimit is the working-set budget when none is configured.
	DefaultMemoryLimit int64 = 500 << 20

	bytesPerSample = 4
)

// Config sets the tile dimensions and the memory budget.
type Config struct {
	TileWidth   int
	TileHeight  int
	MemoryLimit int64
}

// NewConfig returns a config with tile sizes clamped to the supported range.
// A non-positive limit selects DefaultMemoryLimit.
func NewConfig(tileWidth, tileHeight int, memoryLimit int64) Config {
	if memoryLimit <= 0 {
		memoryLimit = DefaultMemoryLimit
	}
	return Config{
		TileWidth:   clampTile(tileWidth),
		TileHeight:  clampTile(tileHeight),
		MemoryLimit: memoryLimit,
	}
}

// DefaultConfig uses square DefaultTileSize tiles and DefaultMemoryLimit.
func DefaultConfig() Config {
	return NewConfig(DefaultTileSize, DefaultTileSize, DefaultMemoryLimit)
}

func clampTile(n int) int {
	if n <= 0 {
		return DefaultTileSize
	}
	return min(max(n, MinTileSize), MaxTileSize)
}

// ImageBytes is the size of a float32 pixel buffer with the given shape.
func ImageBytes(width, height, channels int) int64 {
	return int64(width) * int64(height) * int64(channels) * bytesPerSample
}

// NeedsChunking reports whether an image would take more than half of the
// memory limit, leaving no room for the operation's output.
func NeedsChunking(width, height, channels int, memoryLimit int64) bool {
	return ImageBytes(width, height, channels) > memoryLimit/2
}

// OptimalTileSize is the largest square tile whose RGBA input, output and
// scratch buffers fit in memoryLimit.
func OptimalTileSize(memoryLimit int64) int {
	side := int(math.Sqrt(float64(memoryLimit) / float64(4*bytesPerSample*3)))
	return min(max(side, MinTileSize), MaxTileSize)
}

// Region is one tile: the core rectangle it produces plus the overlap it
// reads on every side.
type Region struct {
	X, Y          int
	Width, Height int
	Overlap       int
}

// Core is the rectangle the tile writes.
func (r Region) Core() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Expanded is the rectangle the tile reads: the core grown by the overlap,
// clamped to bounds.
func (r Region) Expanded(bounds image.Rectangle) image.Rectangle {
	return r.Core().Inset(-r.Overlap).Intersect(bounds)
}

// TileIterator yields the regions covering an image. It is lazy and can be
// restarted with Reset.
type TileIterator struct {
	width, height int
	tileW, tileH  int
	overlap       int
	x, y          int
}

// NewTileIterator walks a width x height image with the tile size of cfg.
func NewTileIterator(width, height int, cfg Config, overlap int) *TileIterator {
	return &TileIterator{
		width:   width,
		height:  height,
		tileW:   clampTile(cfg.TileWidth),
		tileH:   clampTile(cfg.TileHeight),
		overlap: max(overlap, 0),
	}
}

// Next returns the next region, or false when the image is covered.
func (it *TileIterator) Next() (Region, bool) {
	if it.y >= it.height || it.width <= 0 {
		return Region{}, false
	}
	r := Region{
		X:       it.x,
		Y:       it.y,
		Width:   min(it.tileW, it.width-it.x),
		Height:  min(it.tileH, it.height-it.y),
		Overlap: it.overlap,
	}
	it.x += it.tileW
	if it.x >= it.width {
		it.x = 0
		it.y += it.tileH
	}
	return r, true
}

// Reset restarts the iteration from the top-left tile.
func (it *TileIterator) Reset() {
	it.x, it.y = 0, 0
}

// Len is the total number of regions.
func (it *TileIterator) Len() int {
	if it.width <= 0 || it.height <= 0 {
		return 0
	}
	cols := (it.width + it.tileW - 1) / it.tileW
	rows := (it.height + it.tileH - 1) / it.tileH
	return cols * rows
}
