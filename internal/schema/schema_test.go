package schema

import (
	"errors"
	"testing"

	"github.com/specialistvlad/pixelgrid/internal/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParameterDefinition_Check(t *testing.T) {
	t.Parallel()

	p := Param("radius", value.TypeInteger, value.Int(1)).WithConstraint(Range(0, 10))

	require.NoError(t, p.Check(value.Int(3)))

	err := p.Check(value.Int(11))
	require.Error(t, err)
	var v *Violation
	require.True(t, errors.As(err, &v))
	assert.Equal(t, "radius", v.Param)
	assert.Contains(t, v.Fix, "between 0 and 10")

	err = p.Check(value.String("3"))
	require.Error(t, err, "type is checked before the constraint")
	assert.Contains(t, err.Error(), "expected integer")
}

func TestConstraints(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		c      Constraint
		accept []value.Value
		reject []value.Value
	}{
		{"min", MinValue(1), []value.Value{value.Int(1), value.Float(2.5)}, []value.Value{value.Float(0.9)}},
		{"max", MaxValue(1), []value.Value{value.Int(1)}, []value.Value{value.Int(2)}},
		{"step", Step(0.5), []value.Value{value.Float(1.5)}, []value.Value{value.Float(1.25)}},
		{"min length", MinLength(2), []value.Value{value.String("ab")}, []value.Value{value.String("a")}},
		{"max length", MaxLength(1), []value.Value{value.Array(value.Int(1))}, []value.Value{value.Array(value.Int(1), value.Int(2))}},
		{"not empty", NotEmpty(), []value.Value{value.String("x")}, []value.Value{value.String("")}},
		{"pattern", Pattern(`^\d+px$`), []value.Value{value.String("12px")}, []value.Value{value.String("12em"), value.Int(1)}},
		{"one of", OneOf(value.String("a"), value.String("b")), []value.Value{value.String("b")}, []value.Value{value.String("c")}},
		{"positive", Positive(), []value.Value{value.Float(0.1)}, []value.Value{value.Int(0)}},
		{"non negative", NonNegative(), []value.Value{value.Int(0)}, []value.Value{value.Int(-1)}},
		{"image min", ImageMinSize(2, 2), []value.Value{value.ImageValue(value.NewImage(2, 3, 1))}, []value.Value{value.ImageValue(value.NewImage(1, 3, 1))}},
		{"image max", ImageMaxSize(2, 2), []value.Value{value.ImageValue(value.NewImage(2, 2, 1))}, []value.Value{value.ImageValue(value.NewImage(3, 1, 1))}},
		{"custom", Custom("must be even", func(v value.Value) error {
			n, _ := v.AsInt()
			if n%2 != 0 {
				return errors.New("odd")
			}
			return nil
		}), []value.Value{value.Int(4)}, []value.Value{value.Int(3)}},
		{"all", All(Positive(), MaxValue(3)), []value.Value{value.Int(2)}, []value.Value{value.Int(0), value.Int(4)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, v := range tc.accept {
				assert.NoError(t, tc.c.Check(v), "should accept %s", v)
			}
			for _, v := range tc.reject {
				assert.Error(t, tc.c.Check(v), "should reject %s", v)
			}
			assert.NotEmpty(t, tc.c.Suggestion())
		})
	}
}

func TestPortDefinition_HasUsableDefault(t *testing.T) {
	t.Parallel()

	assert.False(t, Input("in", value.TypeImage).HasUsableDefault())
	assert.False(t, OptionalInput("mask", value.TypeImage, value.None()).HasUsableDefault())
	assert.True(t, OptionalInput("amount", value.TypeFloat, value.Float(1)).HasUsableDefault())
}
