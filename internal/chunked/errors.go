package chunked

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds     = errors.New("tile out of bounds")
	ErrMemoryExhausted = errors.New("memory limit cannot be met at the minimum tile size")
	ErrNotChunkable    = errors.New("operation has a global extent and cannot be tiled")
	ErrTileShape       = errors.New("tile function changed the tile shape")
)

// Error reports a failure tied to one tile. Kind is one of the sentinels
// above or the error returned by the tile function.
type Error struct {
	Kind   error
	Tile   Region
	Detail string
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("tile at (%d,%d) %dx%d: %v", e.Tile.X, e.Tile.Y, e.Tile.Width, e.Tile.Height, e.Kind)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Kind }
