package value

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"
)

// FromCty converts a value decoded from an HCL expression. Whole numbers
// become integers, other numbers floats; lists, sets and tuples become arrays,
// maps and objects become maps. Unknown values are rejected.
func FromCty(v cty.Value) (Value, error) {
	if v.IsNull() {
		return None(), nil
	}
	if !v.IsWhollyKnown() {
		return Value{}, fmt.Errorf("value is not known until runtime")
	}
	ty := v.Type()
	switch {
	case ty == cty.String:
		return String(v.AsString()), nil
	case ty == cty.Bool:
		return Bool(v.True()), nil
	case ty == cty.Number:
		bf := v.AsBigFloat()
		if bf.IsInt() {
			n, acc := bf.Int64()
			if acc != big.Exact {
				return Value{}, fmt.Errorf("integer %s overflows int64", bf.String())
			}
			return Int(n), nil
		}
		f, _ := bf.Float64()
		return Float(f), nil
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		items := make([]Value, 0, v.LengthInt())
		for it := v.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			item, err := FromCty(elem)
			if err != nil {
				return Value{}, err
			}
			items = append(items, item)
		}
		return Array(items...), nil
	case ty.IsMapType() || ty.IsObjectType():
		entries := make(map[string]Value)
		for it := v.ElementIterator(); it.Next(); {
			key, elem := it.Element()
			item, err := FromCty(elem)
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", key.AsString(), err)
			}
			entries[key.AsString()] = item
		}
		return Map(entries), nil
	}
	return Value{}, fmt.Errorf("unsupported HCL type %s", ty.FriendlyName())
}

// ToCty converts v into a cty value. Images have no HCL representation.
func ToCty(v Value) (cty.Value, error) {
	switch v.kind {
	case KindNone:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case KindInteger:
		return cty.NumberIntVal(v.i), nil
	case KindFloat:
		return cty.NumberFloatVal(v.f), nil
	case KindBoolean:
		return cty.BoolVal(v.b), nil
	case KindString:
		return cty.StringVal(v.s), nil
	case KindColor:
		return cty.StringVal(v.color.Hex()), nil
	case KindArray:
		if len(v.arr) == 0 {
			return cty.EmptyTupleVal, nil
		}
		items := make([]cty.Value, len(v.arr))
		for i, item := range v.arr {
			c, err := ToCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			items[i] = c
		}
		return cty.TupleVal(items), nil
	case KindMap:
		if len(v.m) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(v.m))
		for k, item := range v.m {
			c, err := ToCty(item)
			if err != nil {
				return cty.NilVal, err
			}
			attrs[k] = c
		}
		return cty.ObjectVal(attrs), nil
	}
	return cty.NilVal, fmt.Errorf("%s values cannot be expressed in HCL", v.kind)
}

// Coerce adapts a loosely typed literal to t where the literal syntax cannot
// say what was meant: whole numbers for float slots, hex strings for colors,
// and integral floats for integer slots. Values that already conform are
// returned unchanged; anything else is an error.
func Coerce(v Value, t PortType) (Value, error) {
	if Conforms(v, t) {
		return v, nil
	}
	switch {
	case t.kind == KindFloat && v.kind == KindInteger:
		return Float(float64(v.i)), nil
	case t.kind == KindInteger && v.kind == KindFloat && v.f == float64(int64(v.f)):
		return Int(int64(v.f)), nil
	case t.kind == KindColor && v.kind == KindString:
		c, err := ParseColor(v.s)
		if err != nil {
			return Value{}, err
		}
		return ColorValue(c), nil
	case t.kind == KindArray && v.kind == KindArray:
		items := make([]Value, len(v.arr))
		for i, item := range v.arr {
			c, err := Coerce(item, t.Elem())
			if err != nil {
				return Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			items[i] = c
		}
		return Array(items...), nil
	case t.kind == KindMap && v.kind == KindMap:
		entries := make(map[string]Value, len(v.m))
		for k, item := range v.m {
			c, err := Coerce(item, t.Elem())
			if err != nil {
				return Value{}, fmt.Errorf("key %q: %w", k, err)
			}
			entries[k] = c
		}
		return Map(entries), nil
	}
	return Value{}, fmt.Errorf("cannot use %s value as %s", TypeOf(v), t)
}
