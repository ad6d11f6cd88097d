package operation

import (
	"context"
	"errors"
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/schema"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type radiusOp struct{ Func }

func (r *radiusOp) Extent(params map[string]value.Value) SpatialExtent {
	n, _ := params["radius"].AsInt()
	return NeighborhoodExtent(int(n))
}

func TestExtentOf(t *testing.T) {
	t.Parallel()

	static := &Func{Meta: Metadata{Extent: PointwiseExtent()}}
	assert.Equal(t, PointwiseExtent(), ExtentOf(static, nil))

	dyn := &radiusOp{}
	ext := ExtentOf(dyn, map[string]value.Value{"radius": value.Int(4)})
	assert.Equal(t, 4, ext.Overlap())
	assert.True(t, ext.Chunkable())
	assert.False(t, GlobalExtent().Chunkable())
	assert.Equal(t, 0, NeighborhoodExtent(-2).Overlap())
}

func TestMetadata_ImagePorts(t *testing.T) {
	t.Parallel()

	m := &Metadata{
		Inputs:  []schema.PortDefinition{schema.Input("image", value.TypeImage), schema.OptionalInput("amount", value.TypeFloat, value.Float(1))},
		Outputs: []schema.PortDefinition{schema.Output("image", value.TypeImage)},
	}
	in, out, ok := m.ImagePorts()
	require.True(t, ok)
	assert.Equal(t, "image", in)
	assert.Equal(t, "image", out)

	m.Inputs = append(m.Inputs, schema.Input("mask", value.TypeImage))
	_, _, ok = m.ImagePorts()
	assert.False(t, ok, "two image inputs cannot be tiled together")
}

func TestExecutionContext(t *testing.T) {
	t.Parallel()

	ec := NewExecutionContext(context.Background(), "node",
		map[string]value.Value{"a": value.Int(2), "gone": value.None()},
		map[string]value.Value{"factor": value.Float(1.5), "name": value.String("x")},
	)

	n, err := ec.InputInt("a")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = ec.InputInt("gone")
	assert.True(t, errors.Is(err, ErrMissingInput))

	_, err = ec.InputImage("a")
	assert.True(t, errors.Is(err, ErrWrongType))

	f, err := ec.ParamFloat("factor")
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	_, err = ec.ParamInt("name")
	assert.True(t, errors.Is(err, ErrWrongType))
	_, err = ec.ParamInt("missing")
	assert.True(t, errors.Is(err, ErrMissingParameter))

	ec.SetOutput("out", value.Int(1))
	assert.Len(t, ec.Outputs(), 1)
}
