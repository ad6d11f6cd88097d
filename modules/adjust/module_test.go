package adjust_test

import (
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/testutil"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/specialistvlad/pixelgrid/modules/adjust"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, fn func(*operation.ExecutionContext) error, img *value.Image, params map[string]value.Value) *value.Image {
	t.Helper()
	ec := operation.NewExecutionContext(testutil.Context(t), "adjust", map[string]value.Value{
		"image": value.ImageValue(img),
	}, params)
	require.NoError(t, fn(ec))
	out, ok := ec.Outputs()["image"].AsImage()
	require.True(t, ok)
	return out
}

func TestOnRunBrightness(t *testing.T) {
	src := value.NewImage(2, 1, 4)
	copy(src.Pix, []float32{0.2, 0.4, 0.8, 0.5, 0, 1, 0.6, 0.25})

	tests := []struct {
		name   string
		factor float64
		want   []float32
	}{
		{name: "identity", factor: 1, want: []float32{0.2, 0.4, 0.8, 0.5, 0, 1, 0.6, 0.25}},
		{name: "darken", factor: 0.5, want: []float32{0.1, 0.2, 0.4, 0.5, 0, 0.5, 0.3, 0.25}},
		{name: "brighten clamps at one", factor: 2, want: []float32{0.4, 0.8, 1, 0.5, 0, 1, 1, 0.25}},
		{name: "black", factor: 0, want: []float32{0, 0, 0, 0.5, 0, 0, 0, 0.25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := run(t, adjust.OnRunBrightness, src, map[string]value.Value{"factor": value.Float(tt.factor)})
			require.Len(t, out.Pix, len(tt.want))
			for i := range tt.want {
				assert.InDelta(t, tt.want[i], out.Pix[i], 1e-6, "sample %d", i)
			}
		})
	}
	assert.Equal(t, float32(0.2), src.Pix[0], "the input is never modified")
}

func TestOnRunBrightness_GrayAlpha(t *testing.T) {
	src := value.NewImage(1, 1, 2)
	copy(src.Pix, []float32{0.3, 0.7})
	out := run(t, adjust.OnRunBrightness, src, map[string]value.Value{"factor": value.Float(3)})
	assert.InDelta(t, 0.9, out.Pix[0], 1e-6)
	assert.Equal(t, float32(0.7), out.Pix[1], "alpha is not a color channel")
}

func TestOnRunInvert(t *testing.T) {
	src := value.NewImage(1, 1, 3)
	copy(src.Pix, []float32{0, 0.25, 1})
	out := run(t, adjust.OnRunInvert, src, nil)
	assert.Equal(t, []float32{1, 0.75, 0}, out.Pix)

	back := run(t, adjust.OnRunInvert, out, nil)
	assert.True(t, src.Equal(back))
}

func TestOnRunBrightness_MissingImage(t *testing.T) {
	ec := operation.NewExecutionContext(testutil.Context(t), "adjust", nil, map[string]value.Value{"factor": value.Float(1)})
	assert.ErrorIs(t, adjust.OnRunBrightness(ec), operation.ErrMissingInput)
}
