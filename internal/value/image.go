package value

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Color is an 8-bit RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Hex formats the color as #RRGGBBAA.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

// ParseColor accepts #RGB, #RRGGBB and #RRGGBBAA.
func ParseColor(s string) (Color, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(s), "#")
	if !ok {
		return Color{}, fmt.Errorf("color %q must start with '#'", s)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return Color{}, fmt.Errorf("color %q has invalid length", s)
	}
	n, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("color %q: %w", s, err)
	}
	return Color{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// ColorSpace tags how pixel samples should be interpreted.
type ColorSpace int

const (
	SRGB ColorSpace = iota
	LinearRGB
	Grayscale
)

func (cs ColorSpace) String() string {
	switch cs {
	case SRGB:
		return "srgb"
	case LinearRGB:
		return "linear"
	case Grayscale:
		return "gray"
	}
	return fmt.Sprintf("colorspace(%d)", int(cs))
}

func parseColorSpace(s string) (ColorSpace, error) {
	switch s {
	case "srgb", "":
		return SRGB, nil
	case "linear":
		return LinearRGB, nil
	case "gray":
		return Grayscale, nil
	}
	return 0, fmt.Errorf("unknown color space %q", s)
}

// Format is the color-space and bit-depth tag of an image.
type Format struct {
	ColorSpace ColorSpace
	BitDepth   int
}

// DefaultFormat is 8-bit sRGB.
var DefaultFormat = Format{ColorSpace: SRGB, BitDepth: 8}

// Image is a dense interleaved pixel buffer with samples normalized to 0..1.
// Pixel (x, y) channel c lives at Pix[(y*Width+x)*Channels+c].
type Image struct {
	Width    int
	Height   int
	Channels int
	Format   Format
	Pix      []float32
}

// NewImage allocates a zeroed image.
func NewImage(width, height, channels int) *Image {
	return &Image{
		Width:    width,
		Height:   height,
		Channels: channels,
		Format:   DefaultFormat,
		Pix:      make([]float32, width*height*channels),
	}
}

// Bounds returns the image rectangle anchored at the origin.
func (img *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, img.Width, img.Height)
}

func (img *Image) offset(x, y, c int) int {
	return (y*img.Width+x)*img.Channels + c
}

func (img *Image) At(x, y, c int) float32 {
	return img.Pix[img.offset(x, y, c)]
}

func (img *Image) Set(x, y, c int, v float32) {
	img.Pix[img.offset(x, y, c)] = v
}

// SizeBytes is the size of the pixel buffer.
func (img *Image) SizeBytes() int64 {
	if img == nil {
		return 0
	}
	return int64(len(img.Pix)) * 4
}

// Clone deep-copies the image.
func (img *Image) Clone() *Image {
	out := *img
	out.Pix = slices.Clone(img.Pix)
	return &out
}

// Crop copies the pixels inside r into a new image. r must lie within the bounds.
func (img *Image) Crop(r image.Rectangle) (*Image, error) {
	if !r.In(img.Bounds()) {
		return nil, fmt.Errorf("crop %v outside image bounds %v", r, img.Bounds())
	}
	out := NewImage(r.Dx(), r.Dy(), img.Channels)
	out.Format = img.Format
	rowLen := r.Dx() * img.Channels
	for y := 0; y < r.Dy(); y++ {
		src := img.offset(r.Min.X, r.Min.Y+y, 0)
		copy(out.Pix[y*rowLen:(y+1)*rowLen], img.Pix[src:src+rowLen])
	}
	return out, nil
}

// Paste copies the pixels of src inside srcRect into img with srcRect.Min
// landing on dst.
func (img *Image) Paste(dst image.Point, src *Image, srcRect image.Rectangle) error {
	if src.Channels != img.Channels {
		return fmt.Errorf("channel mismatch: %d into %d", src.Channels, img.Channels)
	}
	if !srcRect.In(src.Bounds()) {
		return fmt.Errorf("source rect %v outside source bounds %v", srcRect, src.Bounds())
	}
	target := srcRect.Sub(srcRect.Min).Add(dst)
	if !target.In(img.Bounds()) {
		return fmt.Errorf("target rect %v outside image bounds %v", target, img.Bounds())
	}
	rowLen := srcRect.Dx() * img.Channels
	for y := 0; y < srcRect.Dy(); y++ {
		from := src.offset(srcRect.Min.X, srcRect.Min.Y+y, 0)
		to := img.offset(dst.X, dst.Y+y, 0)
		copy(img.Pix[to:to+rowLen], src.Pix[from:from+rowLen])
	}
	return nil
}

// Equal compares dimensions, format and pixels exactly.
func (img *Image) Equal(o *Image) bool {
	if img == nil || o == nil {
		return img == o
	}
	return img.Width == o.Width && img.Height == o.Height && img.Channels == o.Channels &&
		img.Format == o.Format && slices.Equal(img.Pix, o.Pix)
}

func (img *Image) String() string {
	return fmt.Sprintf("image(%dx%d, %d ch, %s/%d)", img.Width, img.Height, img.Channels, img.Format.ColorSpace, img.Format.BitDepth)
}

// FromStdImage converts any image.Image into a 4-channel sRGB image.
// Non-premultiplied sources are read directly so that 8-bit and 16-bit
// samples survive a round trip through ToStdImage exactly.
func FromStdImage(src image.Image) *Image {
	b := src.Bounds()
	out := NewImage(b.Dx(), b.Dy(), 4)
	switch src := src.(type) {
	case *image.NRGBA:
		for y := 0; y < b.Dy(); y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
			dst := out.Pix[out.offset(0, y, 0):]
			for i, v := range row {
				dst[i] = float32(v) / 0xff
			}
		}
		return out
	case *image.NRGBA64:
		for y := 0; y < b.Dy(); y++ {
			row := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*8]
			dst := out.Pix[out.offset(0, y, 0):]
			for i := 0; i < len(row); i += 2 {
				dst[i/2] = float32(uint16(row[i])<<8|uint16(row[i+1])) / 0xffff
			}
		}
		return out
	}

	if is8Bit(src.ColorModel()) {
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
				i := out.offset(x-b.Min.X, y-b.Min.Y, 0)
				out.Pix[i] = float32(c.R) / 0xff
				out.Pix[i+1] = float32(c.G) / 0xff
				out.Pix[i+2] = float32(c.B) / 0xff
				out.Pix[i+3] = float32(c.A) / 0xff
			}
		}
		return out
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(src.At(x, y)).(color.NRGBA64)
			i := out.offset(x-b.Min.X, y-b.Min.Y, 0)
			out.Pix[i] = float32(c.R) / 0xffff
			out.Pix[i+1] = float32(c.G) / 0xffff
			out.Pix[i+2] = float32(c.B) / 0xffff
			out.Pix[i+3] = float32(c.A) / 0xffff
		}
	}
	return out
}

func is8Bit(m color.Model) bool {
	if _, ok := m.(color.Palette); ok {
		return true
	}
	switch m {
	case color.RGBAModel, color.NRGBAModel, color.GrayModel, color.AlphaModel,
		color.YCbCrModel, color.NYCbCrAModel, color.CMYKModel:
		return true
	}
	return false
}

// ToStdImage converts the image to an 8-bit NRGBA image. Images with fewer
// than three channels are treated as gray, a missing alpha is opaque.
func (img *Image) ToStdImage() *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			var r, g, b, a float32
			switch img.Channels {
			case 1, 2:
				r = img.At(x, y, 0)
				g, b = r, r
				a = 1
				if img.Channels == 2 {
					a = img.At(x, y, 1)
				}
			default:
				r, g, b = img.At(x, y, 0), img.At(x, y, 1), img.At(x, y, 2)
				a = 1
				if img.Channels > 3 {
					a = img.At(x, y, 3)
				}
			}
			out.SetNRGBA(x, y, color.NRGBA{R: to8(r), G: to8(g), B: to8(b), A: to8(a)})
		}
	}
	return out
}

func to8(v float32) uint8 {
	return uint8(math.Round(float64(min(max(v, 0), 1)) * 255))
}
