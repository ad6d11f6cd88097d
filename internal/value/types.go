package value

import (
	"fmt"
	"strings"
)

// PortType describes the values a port or parameter accepts. It mirrors the
// Value kinds, adds the Any wildcard, and parametrizes arrays and maps by
// their element type.
type PortType struct {
	any  bool
	kind Kind
	elem *PortType
}

var (
	TypeAny     = PortType{any: true}
	TypeNone    = PortType{kind: KindNone}
	TypeImage   = PortType{kind: KindImage}
	TypeInteger = PortType{kind: KindInteger}
	TypeFloat   = PortType{kind: KindFloat}
	TypeBoolean = PortType{kind: KindBoolean}
	TypeString  = PortType{kind: KindString}
	TypeColor   = PortType{kind: KindColor}
)

// ArrayOf returns the array type with the given element type.
func ArrayOf(elem PortType) PortType {
	return PortType{kind: KindArray, elem: &elem}
}

// MapOf returns the string-keyed map type with the given element type.
func MapOf(elem PortType) PortType {
	return PortType{kind: KindMap, elem: &elem}
}

func (t PortType) IsAny() bool { return t.any }

// Kind is the base variant. It is meaningless for Any.
func (t PortType) Kind() Kind { return t.kind }

// Elem returns the element type of arrays and maps, and Any otherwise.
func (t PortType) Elem() PortType {
	if t.elem == nil {
		return TypeAny
	}
	return *t.elem
}

// Equal reports structural equality.
func (t PortType) Equal(o PortType) bool {
	if t.any || o.any {
		return t.any == o.any
	}
	if t.kind != o.kind {
		return false
	}
	if t.kind == KindArray || t.kind == KindMap {
		return t.Elem().Equal(o.Elem())
	}
	return true
}

func (t PortType) String() string {
	if t.any {
		return "any"
	}
	switch t.kind {
	case KindArray:
		return "array<" + t.Elem().String() + ">"
	case KindMap:
		return "map<" + t.Elem().String() + ">"
	}
	return t.kind.String()
}

// Name is the base variant's name without element parameters, as shown in
// operation listings.
func (t PortType) Name() string {
	if t.any {
		return "any"
	}
	return t.kind.String()
}

// DefaultValue is the zero value of the type. Any and None yield None.
func (t PortType) DefaultValue() Value {
	if t.any {
		return None()
	}
	switch t.kind {
	case KindInteger:
		return Int(0)
	case KindFloat:
		return Float(0)
	case KindBoolean:
		return Bool(false)
	case KindString:
		return String("")
	case KindColor:
		return ColorValue(Color{A: 255})
	case KindArray:
		return Array()
	case KindMap:
		return Map(nil)
	}
	return None()
}

// ParsePortType parses the String form, e.g. "array<integer>".
func ParsePortType(s string) (PortType, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	for _, container := range []struct {
		prefix string
		build  func(PortType) PortType
	}{{"array<", ArrayOf}, {"map<", MapOf}} {
		if inner, ok := strings.CutPrefix(s, container.prefix); ok {
			inner, ok = strings.CutSuffix(inner, ">")
			if !ok {
				return PortType{}, fmt.Errorf("unterminated type %q", s)
			}
			elem, err := ParsePortType(inner)
			if err != nil {
				return PortType{}, err
			}
			return container.build(elem), nil
		}
	}
	if s == "any" {
		return TypeAny, nil
	}
	for k, name := range kindNames {
		if name == s && k != KindArray && k != KindMap {
			return PortType{kind: k}, nil
		}
	}
	return PortType{}, fmt.Errorf("unknown type %q", s)
}

// Assignable reports whether a value of type src may flow into a port of type
// dst. The relation is reflexive, Any is compatible in both directions, and
// otherwise the base variant must match exactly, recursing into element types.
func Assignable(src, dst PortType) bool {
	if src.any || dst.any {
		return true
	}
	if src.kind != dst.kind {
		return false
	}
	if src.kind == KindArray || src.kind == KindMap {
		return Assignable(src.Elem(), dst.Elem())
	}
	return true
}

// TypeOf returns the most specific type describing v. Arrays and maps report
// their common element type, or Any when empty or heterogeneous.
func TypeOf(v Value) PortType {
	switch v.kind {
	case KindArray:
		return ArrayOf(commonType(v.arr))
	case KindMap:
		items := make([]Value, 0, len(v.m))
		for _, item := range v.m {
			items = append(items, item)
		}
		return MapOf(commonType(items))
	}
	return PortType{kind: v.kind}
}

func commonType(items []Value) PortType {
	if len(items) == 0 {
		return TypeAny
	}
	first := TypeOf(items[0])
	for _, item := range items[1:] {
		if !TypeOf(item).Equal(first) {
			return TypeAny
		}
	}
	return first
}

// Conforms reports whether v can be delivered to a port of type t.
func Conforms(v Value, t PortType) bool {
	if t.any {
		return true
	}
	if v.kind != t.kind {
		return false
	}
	switch v.kind {
	case KindArray:
		for _, item := range v.arr {
			if !Conforms(item, t.Elem()) {
				return false
			}
		}
	case KindMap:
		for _, item := range v.m {
			if !Conforms(item, t.Elem()) {
				return false
			}
		}
	}
	return true
}
