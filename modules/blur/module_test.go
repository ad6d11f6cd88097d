package blur_test

import (
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/testutil"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boxBlur(t *testing.T, img *value.Image, radius int64) *value.Image {
	t.Helper()
	op, err := testutil.Registry(t).Create("box_blur")
	require.NoError(t, err)
	ec := operation.NewExecutionContext(testutil.Context(t), "blur", map[string]value.Value{
		"image": value.ImageValue(img),
	}, map[string]value.Value{"radius": value.Int(radius)})
	require.NoError(t, op.Execute(ec))
	out, ok := ec.Outputs()["image"].AsImage()
	require.True(t, ok)
	return out
}

func TestBoxBlur_ClipsWindowAtBorders(t *testing.T) {
	src := value.NewImage(3, 1, 1)
	copy(src.Pix, []float32{0, 0.3, 0.6})

	out := boxBlur(t, src, 1)
	// Edge pixels average only the samples inside the image.
	want := []float32{0.15, 0.3, 0.45}
	for i := range want {
		assert.InDelta(t, want[i], out.Pix[i], 1e-6, "pixel %d", i)
	}
}

func TestBoxBlur_SolidImageUnchanged(t *testing.T) {
	src := value.NewImage(5, 4, 4)
	for i := range src.Pix {
		src.Pix[i] = []float32{0.2, 0.4, 0.6, 1}[i%4]
	}
	out := boxBlur(t, src, 3)
	for i := range src.Pix {
		assert.InDelta(t, src.Pix[i], out.Pix[i], 1e-6, "sample %d", i)
	}
}

func TestBoxBlur_CornerOfLargerImage(t *testing.T) {
	src := value.NewImage(4, 4, 1)
	src.Set(0, 0, 0, 1)

	out := boxBlur(t, src, 1)
	assert.InDelta(t, 0.25, out.At(0, 0, 0), 1e-6, "2x2 window at the corner")
	assert.InDelta(t, 1.0/6, out.At(1, 0, 0), 1e-6, "3x2 window on the top edge")
	assert.InDelta(t, 1.0/9, out.At(1, 1, 0), 1e-6, "full 3x3 window")
	assert.Zero(t, out.At(2, 2, 0))
}

func TestBoxBlur_ZeroRadiusCopies(t *testing.T) {
	src := testutil.Gradient(6, 5, 3)
	out := boxBlur(t, src, 0)
	assert.True(t, src.Equal(out))
	assert.NotSame(t, src, out)
}

func TestBoxBlur_ExtentFollowsRadius(t *testing.T) {
	op, err := testutil.Registry(t).Create("box_blur")
	require.NoError(t, err)
	ext := operation.ExtentOf(op, map[string]value.Value{"radius": value.Int(5)})
	assert.Equal(t, operation.Neighborhood, ext.Kind)
	assert.Equal(t, 5, ext.Overlap())
}
