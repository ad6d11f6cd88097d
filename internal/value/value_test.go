package value

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValue_Accessors(t *testing.T) {
	t.Parallel()

	n, ok := Int(5).AsInt()
	require.True(t, ok)
	assert.Equal(t, int64(5), n)

	f, ok := Int(5).AsFloat()
	require.True(t, ok, "integers widen to float")
	assert.Equal(t, 5.0, f)

	_, ok = String("x").AsInt()
	assert.False(t, ok)

	assert.True(t, Value{}.IsNone())
	assert.Equal(t, 3, String("héé").Len())
}

func TestValue_Equal(t *testing.T) {
	t.Parallel()

	a := Map(map[string]Value{"x": Array(Int(1), Float(2.5)), "y": Bool(true)})
	b := Map(map[string]Value{"y": Bool(true), "x": Array(Int(1), Float(2.5))})
	assert.True(t, a.Equal(b))
	assert.False(t, Array(Int(1), Int(2)).Equal(Array(Int(2), Int(1))))
	assert.False(t, Int(1).Equal(Float(1)))
}

func TestValue_SizeBytes(t *testing.T) {
	t.Parallel()

	img := NewImage(10, 10, 4)
	assert.Equal(t, int64(10*10*4*4), ImageValue(img).SizeBytes())
	assert.Less(t, Int(1).SizeBytes(), int64(64))
}

func TestParseColor(t *testing.T) {
	t.Parallel()

	c, err := ParseColor("#ff8000")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 255, G: 128, B: 0, A: 255}, c)

	c, err = ParseColor("#fff")
	require.NoError(t, err)
	assert.Equal(t, Color{R: 255, G: 255, B: 255, A: 255}, c)
	assert.Equal(t, "#ffffffff", c.Hex())

	_, err = ParseColor("ff0000")
	require.Error(t, err)
}

func TestImage_CropAndPaste(t *testing.T) {
	t.Parallel()

	src := NewImage(4, 4, 1)
	for i := range src.Pix {
		src.Pix[i] = float32(i)
	}

	crop, err := src.Crop(image.Rect(1, 1, 3, 3))
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 6, 9, 10}, crop.Pix)

	dst := NewImage(4, 4, 1)
	require.NoError(t, dst.Paste(image.Pt(2, 2), crop, image.Rect(0, 0, 2, 2)))
	assert.Equal(t, float32(5), dst.At(2, 2, 0))
	assert.Equal(t, float32(10), dst.At(3, 3, 0))

	_, err = src.Crop(image.Rect(3, 3, 5, 5))
	require.Error(t, err)
	require.Error(t, dst.Paste(image.Pt(3, 3), crop, crop.Bounds()))
}

func TestImage_StdRoundTrip(t *testing.T) {
	t.Parallel()

	img := NewImage(2, 1, 4)
	copy(img.Pix, []float32{1, 0, 0, 1, 0, 0, 1, 1})

	back := FromStdImage(img.ToStdImage())
	assert.True(t, img.Equal(back))
}

func TestFromStdImage_KeepsStraightAlpha(t *testing.T) {
	t.Parallel()
	px := []color.NRGBA{
		{R: 200, G: 100, B: 50, A: 128},
		{R: 7, G: 250, B: 3, A: 1},
		{R: 255, G: 255, B: 255, A: 0},
		{R: 12, G: 34, B: 56, A: 255},
	}

	t.Run("nrgba", func(t *testing.T) {
		t.Parallel()
		src := image.NewNRGBA(image.Rect(0, 0, 2, 2))
		for i, c := range px {
			src.SetNRGBA(i%2, i/2, c)
		}
		back := FromStdImage(src).ToStdImage()
		assert.Equal(t, src.Pix, back.Pix)
	})

	t.Run("nrgba sub-image", func(t *testing.T) {
		t.Parallel()
		src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
		for i, c := range px {
			src.SetNRGBA(1+i%2, 2+i/2, c)
		}
		sub := src.SubImage(image.Rect(1, 2, 3, 4)).(*image.NRGBA)
		img := FromStdImage(sub)
		require.Equal(t, 2, img.Width)
		assert.InDelta(t, 128.0/255, img.At(0, 0, 3), 1e-7)
		assert.InDelta(t, 56.0/255, img.At(1, 1, 2), 1e-7)
	})

	t.Run("nrgba64", func(t *testing.T) {
		t.Parallel()
		src := image.NewNRGBA64(image.Rect(0, 0, 1, 1))
		src.SetNRGBA64(0, 0, color.NRGBA64{R: 0x1234, G: 0xfedc, B: 1, A: 0x8000})
		img := FromStdImage(src)
		assert.Equal(t, float32(0x1234)/0xffff, img.At(0, 0, 0))
		assert.Equal(t, float32(0xfedc)/0xffff, img.At(0, 0, 1))
		assert.Equal(t, float32(0x8000)/0xffff, img.At(0, 0, 3))
	})

	t.Run("paletted", func(t *testing.T) {
		t.Parallel()
		pal := color.Palette{color.NRGBA{R: 200, G: 100, B: 50, A: 255}, color.NRGBA{A: 0}}
		src := image.NewPaletted(image.Rect(0, 0, 2, 1), pal)
		src.SetColorIndex(1, 0, 1)
		back := FromStdImage(src).ToStdImage()
		assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 255}, back.NRGBAAt(0, 0))
		assert.Equal(t, uint8(0), back.NRGBAAt(1, 0).A)
	})
}
