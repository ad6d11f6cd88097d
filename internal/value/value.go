package value

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNone Kind = iota
	KindImage
	KindInteger
	KindFloat
	KindBoolean
	KindString
	KindColor
	KindArray
	KindMap
)

var kindNames = map[Kind]string{
	KindNone:    "none",
	KindImage:   "image",
	KindInteger: "integer",
	KindFloat:   "float",
	KindBoolean: "boolean",
	KindString:  "string",
	KindColor:   "color",
	KindArray:   "array",
	KindMap:     "map",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Value is the tagged union carried over connections and stored as node
// parameters. The zero Value is None.
//
// Image values hold a shared reference to their pixel buffer. Operations
// must treat input images as read-only and allocate new images for outputs.
type Value struct {
	kind  Kind
	i     int64
	f     float64
	b     bool
	s     string
	color Color
	img   *Image
	arr   []Value
	m     map[string]Value
}

func None() Value              { return Value{} }
func Int(v int64) Value        { return Value{kind: KindInteger, i: v} }
func Float(v float64) Value    { return Value{kind: KindFloat, f: v} }
func Bool(v bool) Value        { return Value{kind: KindBoolean, b: v} }
func String(v string) Value    { return Value{kind: KindString, s: v} }
func ColorValue(c Color) Value { return Value{kind: KindColor, color: c} }

// ImageValue wraps img. A nil image yields None.
func ImageValue(img *Image) Value {
	if img == nil {
		return None()
	}
	return Value{kind: KindImage, img: img}
}

// Array builds an ordered sequence value.
func Array(items ...Value) Value {
	return Value{kind: KindArray, arr: slices.Clone(items)}
}

// Map builds a keyed mapping value. The map is copied.
func Map(entries map[string]Value) Value {
	m := make(map[string]Value, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Value{kind: KindMap, m: m}
}

func (v Value) Kind() Kind   { return v.kind }
func (v Value) IsNone() bool { return v.kind == KindNone }

// AsInt returns the integer payload.
func (v Value) AsInt() (int64, bool) {
	return v.i, v.kind == KindInteger
}

// AsFloat returns the float payload. Integers are widened so that numeric
// readers do not have to care which literal form was used.
func (v Value) AsFloat() (float64, bool) {
	switch v.kind {
	case KindFloat:
		return v.f, true
	case KindInteger:
		return float64(v.i), true
	}
	return 0, false
}

func (v Value) AsBool() (bool, bool)     { return v.b, v.kind == KindBoolean }
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }
func (v Value) AsColor() (Color, bool)   { return v.color, v.kind == KindColor }
func (v Value) AsImage() (*Image, bool)  { return v.img, v.kind == KindImage }

// AsArray returns the elements of an array value. The slice must not be modified.
func (v Value) AsArray() ([]Value, bool) { return v.arr, v.kind == KindArray }

// AsMap returns the entries of a map value. The map must not be modified.
func (v Value) AsMap() (map[string]Value, bool) { return v.m, v.kind == KindMap }

// Len reports the length of strings, arrays and maps, and 0 otherwise.
func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len([]rune(v.s))
	case KindArray:
		return len(v.arr)
	case KindMap:
		return len(v.m)
	}
	return 0
}

// Equal reports deep equality. Images compare by format and pixel data.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNone:
		return true
	case KindInteger:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindBoolean:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindColor:
		return v.color == o.color
	case KindImage:
		return v.img.Equal(o.img)
	case KindArray:
		return slices.EqualFunc(v.arr, o.arr, Value.Equal)
	case KindMap:
		if len(v.m) != len(o.m) {
			return false
		}
		for k, a := range v.m {
			b, ok := o.m[k]
			if !ok || !a.Equal(b) {
				return false
			}
		}
		return true
	}
	return false
}

// SizeBytes estimates the memory held by the value. Images dominate, scalars
// are counted with a small fixed cost.
func (v Value) SizeBytes() int64 {
	const scalar = 16
	switch v.kind {
	case KindImage:
		return v.img.SizeBytes()
	case KindString:
		return scalar + int64(len(v.s))
	case KindArray:
		total := int64(scalar)
		for _, item := range v.arr {
			total += item.SizeBytes()
		}
		return total
	case KindMap:
		total := int64(scalar)
		for k, item := range v.m {
			total += int64(len(k)) + item.SizeBytes()
		}
		return total
	}
	return scalar
}

func (v Value) String() string {
	switch v.kind {
	case KindNone:
		return "none"
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.b)
	case KindString:
		return strconv.Quote(v.s)
	case KindColor:
		return v.color.Hex()
	case KindImage:
		return v.img.String()
	case KindArray:
		parts := make([]string, len(v.arr))
		for i, item := range v.arr {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + v.m[k].String()
		}
		return "{" + strings.Join(parts, ", ") + "}"
	}
	return v.kind.String()
}
