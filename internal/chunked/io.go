package chunked

import (
	"image"

	"github.com/specialistvlad/pixelgrid/internal/value"
)

// Source provides rectangular reads of an image.
type Source interface {
	Bounds() image.Rectangle
	Channels() int
	Read(r image.Rectangle) (*value.Image, error)
}

// Sink accepts processed tiles. Write copies srcRect of tile so that
// srcRect.Min lands on dst.
type Sink interface {
	Write(dst image.Point, tile *value.Image, srcRect image.Rectangle) error
}

// ImageSource reads from an in-memory image.
type ImageSource struct {
	Image *value.Image
}

func (s ImageSource) Bounds() image.Rectangle { return s.Image.Bounds() }

func (s ImageSource) Channels() int { return s.Image.Channels }

func (s ImageSource) Read(r image.Rectangle) (*value.Image, error) {
	if !r.In(s.Image.Bounds()) {
		return nil, ErrOutOfBounds
	}
	return s.Image.Crop(r)
}

// ImageSink assembles tiles into an in-memory image.
type ImageSink struct {
	Image *value.Image
}

// NewImageSink allocates the destination with the shape and format of like.
func NewImageSink(like *value.Image) *ImageSink {
	img := value.NewImage(like.Width, like.Height, like.Channels)
	img.Format = like.Format
	return &ImageSink{Image: img}
}

func (s *ImageSink) Write(dst image.Point, tile *value.Image, srcRect image.Rectangle) error {
	target := srcRect.Sub(srcRect.Min).Add(dst)
	if !target.In(s.Image.Bounds()) || !srcRect.In(tile.Bounds()) {
		return ErrOutOfBounds
	}
	return s.Image.Paste(dst, tile, srcRect)
}
