package arith_test

import (
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/operation"
	"github.com/specialistvlad/pixelgrid/internal/testutil"
	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/specialistvlad/pixelgrid/modules/arith"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOnRunAdd(t *testing.T) {
	tests := []struct {
		name         string
		a, b, addend int64
		want         int64
	}{
		{name: "inputs only", a: 2, b: 3, want: 5},
		{name: "with addend", a: 2, b: 3, addend: 10, want: 15},
		{name: "negative", a: -7, b: 2, addend: -1, want: -6},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ec := operation.NewExecutionContext(testutil.Context(t), "add", map[string]value.Value{
				"value": value.Int(tt.a),
				"other": value.Int(tt.b),
			}, map[string]value.Value{"addend": value.Int(tt.addend)})
			require.NoError(t, arith.OnRunAdd(ec))
			got, ok := ec.Outputs()["result"].AsInt()
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestOnRunAdd_WrongType(t *testing.T) {
	ec := operation.NewExecutionContext(testutil.Context(t), "add", map[string]value.Value{
		"value": value.String("x"),
		"other": value.Int(1),
	}, map[string]value.Value{"addend": value.Int(0)})
	assert.ErrorIs(t, arith.OnRunAdd(ec), operation.ErrWrongType)
}

func TestOnRunMultiply(t *testing.T) {
	ec := operation.NewExecutionContext(testutil.Context(t), "mul", map[string]value.Value{
		"value": value.Float(1.5),
		"other": value.Int(4),
	}, map[string]value.Value{"factor": value.Float(0.5)})
	require.NoError(t, arith.OnRunMultiply(ec))
	got, ok := ec.Outputs()["result"].AsFloat()
	require.True(t, ok)
	assert.InDelta(t, 3.0, got, 1e-12)
}

func TestOnRunMultiply_MissingInput(t *testing.T) {
	ec := operation.NewExecutionContext(testutil.Context(t), "mul", nil, map[string]value.Value{"factor": value.Float(1)})
	assert.ErrorIs(t, arith.OnRunMultiply(ec), operation.ErrMissingInput)
}
