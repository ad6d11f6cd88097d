package analyze_test

import (
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/testutil"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/specialistvlad/pixelgrid/modules/analyze"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func imageMean(t *testing.T, img *value.Image) map[string]value.Value {
	t.Helper()
	ec := operation.NewExecutionContext(testutil.Context(t), "mean", map[string]value.Value{
		"image": value.ImageValue(img),
	}, nil)
	require.NoError(t, analyze.OnRunImageMean(ec))
	return ec.Outputs()
}

func TestOnRunImageMean(t *testing.T) {
	img := value.NewImage(2, 2, 1)
	copy(img.Pix, []float32{0, 0.25, 0.5, 1})

	out := imageMean(t, img)
	mean, ok := out["mean"].AsFloat()
	require.True(t, ok)
	assert.InDelta(t, 0.4375, mean, 1e-9)
	assert.True(t, out["width"].Equal(value.Int(2)))
	assert.True(t, out["height"].Equal(value.Int(2)))
}

func TestOnRunImageMean_AllChannels(t *testing.T) {
	img := value.NewImage(3, 1, 4)
	for i := range img.Pix {
		img.Pix[i] = []float32{1, 0, 0, 1}[i%4]
	}
	mean, _ := imageMean(t, img)["mean"].AsFloat()
	assert.InDelta(t, 0.5, mean, 1e-9, "alpha counts as a sample")
}

func TestOnRunImageMean_Empty(t *testing.T) {
	mean, _ := imageMean(t, value.NewImage(0, 0, 4))["mean"].AsFloat()
	assert.Zero(t, mean)
}
