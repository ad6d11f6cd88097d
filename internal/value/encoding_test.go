package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

func sampleValues() []Value {
	img := NewImage(2, 1, 1)
	img.Pix[1] = 0.5
	return []Value{
		None(),
		Int(-7),
		Float(1),
		Float(0.25),
		Bool(false),
		String("hello"),
		ColorValue(Color{R: 1, G: 2, B: 3, A: 4}),
		ImageValue(img),
		Array(),
		Array(Int(1), String("two")),
		Map(map[string]Value{"b": Int(2), "a": Array(Float(1.5))}),
	}
}

func TestValue_JSON(t *testing.T) {
	t.Parallel()

	for _, v := range sampleValues() {
		data, err := json.Marshal(v)
		require.NoError(t, err)

		var back Value
		require.NoError(t, json.Unmarshal(data, &back), string(data))
		assert.True(t, v.Equal(back), "%s -> %s -> %s", v, data, back)
	}
}

func TestValue_JSONTaggedForm(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Int(5))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"integer","value":5}`, string(data))
}

func TestValue_YAML(t *testing.T) {
	t.Parallel()

	for _, v := range sampleValues() {
		data, err := yaml.Marshal(v)
		require.NoError(t, err)

		var back Value
		require.NoError(t, yaml.Unmarshal(data, &back), string(data))
		assert.True(t, v.Equal(back), "%s -> %s -> %s", v, data, back)
	}
}

func TestFromCty(t *testing.T) {
	t.Parallel()

	v, err := FromCty(cty.NumberIntVal(5))
	require.NoError(t, err)
	assert.True(t, v.Equal(Int(5)))

	v, err = FromCty(cty.NumberFloatVal(0.5))
	require.NoError(t, err)
	assert.True(t, v.Equal(Float(0.5)))

	v, err = FromCty(cty.ObjectVal(map[string]cty.Value{
		"names": cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.True}),
	}))
	require.NoError(t, err)
	assert.True(t, v.Equal(Map(map[string]Value{"names": Array(String("a"), Bool(true))})))

	_, err = FromCty(cty.UnknownVal(cty.String))
	require.Error(t, err)
}

func TestCoerce(t *testing.T) {
	t.Parallel()

	v, err := Coerce(Int(3), TypeFloat)
	require.NoError(t, err)
	assert.True(t, v.Equal(Float(3)))

	v, err = Coerce(String("#000000"), TypeColor)
	require.NoError(t, err)
	assert.True(t, v.Equal(ColorValue(Color{A: 255})))

	v, err = Coerce(Float(2), TypeInteger)
	require.NoError(t, err)
	assert.True(t, v.Equal(Int(2)))

	_, err = Coerce(Float(2.5), TypeInteger)
	require.Error(t, err)
	_, err = Coerce(String("x"), TypeBoolean)
	require.Error(t, err)
}

func TestToCty(t *testing.T) {
	t.Parallel()

	c, err := ToCty(Array(Int(1), String("x")))
	require.NoError(t, err)
	back, err := FromCty(c)
	require.NoError(t, err)
	assert.True(t, back.Equal(Array(Int(1), String("x"))))

	_, err = ToCty(ImageValue(NewImage(1, 1, 1)))
	require.Error(t, err)
}
