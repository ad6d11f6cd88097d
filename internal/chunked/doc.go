// Package chunked processes images that are too large to handle at once by
// splitting them into tiles.
//
// A TileIterator walks the image in row-major order and yields Regions that
// cover it without gaps. Each region is expanded by the operation's
// neighborhood radius (clamped to the image), processed, and only the core
// rectangle is written back. Every output pixel therefore sees its full
// neighborhood and the stitched result matches whole-image processing.
//
// Tiles of one image are processed sequentially. The context is checked
// between tiles, never during one. A MemoryTracker shared by all tiles of a
// run bounds the working set; a tile that does not fit is split into
// quadrants down to MinTileSize before ErrMemoryExhausted is returned.
package chunked
