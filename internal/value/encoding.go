package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"

	"gopkg.in/yaml.v3"
)

// Values serialize in a tagged form so that integers, floats and colors
// survive a round-trip through formats that cannot tell them apart:
//
//	{"type": "integer", "value": 5}
//	{"type": "array", "value": [{"type": "float", "value": 0.5}]}
//	{"type": "image", "value": {"width": 2, "height": 1, "channels": 1, "pixels": [0, 1]}}

type wireImage struct {
	Width      int       `json:"width" yaml:"width"`
	Height     int       `json:"height" yaml:"height"`
	Channels   int       `json:"channels" yaml:"channels"`
	ColorSpace string    `json:"color_space,omitempty" yaml:"color_space,omitempty"`
	BitDepth   int       `json:"bit_depth,omitempty" yaml:"bit_depth,omitempty"`
	Pixels     []float32 `json:"pixels" yaml:"pixels,flow"`
}

type wireValue struct {
	Type  string `json:"type" yaml:"type"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`
}

func (v Value) toWire() wireValue {
	w := wireValue{Type: v.kind.String()}
	switch v.kind {
	case KindInteger:
		w.Value = v.i
	case KindFloat:
		w.Value = v.f
	case KindBoolean:
		w.Value = v.b
	case KindString:
		w.Value = v.s
	case KindColor:
		w.Value = v.color.Hex()
	case KindImage:
		w.Value = wireImage{
			Width:      v.img.Width,
			Height:     v.img.Height,
			Channels:   v.img.Channels,
			ColorSpace: v.img.Format.ColorSpace.String(),
			BitDepth:   v.img.Format.BitDepth,
			Pixels:     v.img.Pix,
		}
	case KindArray:
		items := make([]wireValue, len(v.arr))
		for i, item := range v.arr {
			items[i] = item.toWire()
		}
		w.Value = items
	case KindMap:
		keys := make([]string, 0, len(v.m))
		for k := range v.m {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		entries := make(map[string]wireValue, len(keys))
		for _, k := range keys {
			entries[k] = v.m[k].toWire()
		}
		w.Value = entries
	}
	return w
}

// fromGeneric rebuilds a Value from the generic tree produced by decoding
// the tagged form with encoding/json (UseNumber) or yaml.v3.
func fromGeneric(raw any) (Value, error) {
	obj, ok := raw.(map[string]any)
	if !ok {
		return Value{}, fmt.Errorf("value must be an object with 'type', got %T", raw)
	}
	typ, _ := obj["type"].(string)
	payload := obj["value"]
	switch typ {
	case "none", "":
		return None(), nil
	case "integer":
		n, err := toInt64(payload)
		if err != nil {
			return Value{}, err
		}
		return Int(n), nil
	case "float":
		f, err := toFloat64(payload)
		if err != nil {
			return Value{}, err
		}
		return Float(f), nil
	case "boolean":
		b, ok := payload.(bool)
		if !ok {
			return Value{}, fmt.Errorf("boolean payload has type %T", payload)
		}
		return Bool(b), nil
	case "string":
		s, ok := payload.(string)
		if !ok {
			return Value{}, fmt.Errorf("string payload has type %T", payload)
		}
		return String(s), nil
	case "color":
		s, ok := payload.(string)
		if !ok {
			return Value{}, fmt.Errorf("color payload has type %T", payload)
		}
		c, err := ParseColor(s)
		if err != nil {
			return Value{}, err
		}
		return ColorValue(c), nil
	case "image":
		return imageFromGeneric(payload)
	case "array":
		items, ok := payload.([]any)
		if !ok && payload != nil {
			return Value{}, fmt.Errorf("array payload has type %T", payload)
		}
		out := make([]Value, len(items))
		for i, item := range items {
			v, err := fromGeneric(item)
			if err != nil {
				return Value{}, fmt.Errorf("array element %d: %w", i, err)
			}
			out[i] = v
		}
		return Value{kind: KindArray, arr: out}, nil
	case "map":
		entries, ok := payload.(map[string]any)
		if !ok && payload != nil {
			return Value{}, fmt.Errorf("map payload has type %T", payload)
		}
		out := make(map[string]Value, len(entries))
		for k, item := range entries {
			v, err := fromGeneric(item)
			if err != nil {
				return Value{}, fmt.Errorf("map entry %q: %w", k, err)
			}
			out[k] = v
		}
		return Value{kind: KindMap, m: out}, nil
	}
	return Value{}, fmt.Errorf("unknown value type %q", typ)
}

func imageFromGeneric(payload any) (Value, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return Value{}, fmt.Errorf("image payload has type %T", payload)
	}
	var dims [3]int64
	for i, key := range []string{"width", "height", "channels"} {
		n, err := toInt64(obj[key])
		if err != nil {
			return Value{}, fmt.Errorf("image %s: %w", key, err)
		}
		dims[i] = n
	}
	img := NewImage(int(dims[0]), int(dims[1]), int(dims[2]))
	if cs, ok := obj["color_space"].(string); ok {
		parsed, err := parseColorSpace(cs)
		if err != nil {
			return Value{}, err
		}
		img.Format.ColorSpace = parsed
	}
	if depth, err := toInt64(obj["bit_depth"]); err == nil && depth > 0 {
		img.Format.BitDepth = int(depth)
	}
	pixels, _ := obj["pixels"].([]any)
	if len(pixels) != len(img.Pix) {
		return Value{}, fmt.Errorf("image has %d samples, want %d", len(pixels), len(img.Pix))
	}
	for i, p := range pixels {
		f, err := toFloat64(p)
		if err != nil {
			return Value{}, fmt.Errorf("pixel %d: %w", i, err)
		}
		img.Pix[i] = float32(f)
	}
	return ImageValue(img), nil
}

func toInt64(raw any) (int64, error) {
	switch n := raw.(type) {
	case json.Number:
		return n.Int64()
	case int:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows", n)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("number %v is not an integer", n)
		}
		return int64(n), nil
	}
	return 0, fmt.Errorf("expected integer, got %T", raw)
}

func toFloat64(raw any) (float64, error) {
	switch n := raw.(type) {
	case json.Number:
		return n.Float64()
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expected number, got %T", raw)
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.toWire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, err := fromGeneric(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (any, error) {
	return v.toWire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return err
	}
	parsed, err := fromGeneric(raw)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (t PortType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *PortType) UnmarshalText(text []byte) error {
	parsed, err := ParsePortType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
