package cache

import (
	"encoding/binary"
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/cespare/xxhash/v2"
	"github.com/specialistvlad/pixelgrid/internal/graph"
	"github.com/specialistvlad/pixelgrid/internal/value"
)

// checkSeed seeds the second digest. Any value other than zero works.
const checkSeed = 0x9e3779b97f4a7c15

// Key identifies one node's result for one set of parameters and inputs.
// Keeping the node id outside the hash lets InvalidateNode find every entry
// of a node.
//
// Hash and Check digest the same canonical encoding under different seeds.
// Keys compare both, so two invocations share an entry only if all 128 bits
// agree.
type Key struct {
	Node  graph.NodeID
	Hash  uint64
	Check uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%016x%016x", k.Node, k.Hash, k.Check)
}

// NewKey fingerprints a node invocation. Map keys are visited in sorted order
// and array order is kept, so semantically equal inputs always produce the
// same key.
func NewKey(node graph.NodeID, operationID string, params, inputs map[string]value.Value) Key {
	e := encoder{d: xxhash.New(), check: xxhash.NewWithSeed(checkSeed)}
	e.bytes(node[:])
	e.str(operationID)
	e.section('P', params)
	e.section('I', inputs)
	return Key{Node: node, Hash: e.d.Sum64(), Check: e.check.Sum64()}
}

type encoder struct {
	d, check *xxhash.Digest
	buf      [8]byte
}

func (e *encoder) bytes(b []byte) {
	_, _ = e.d.Write(b)
	_, _ = e.check.Write(b)
}

func (e *encoder) byte(b byte) { e.bytes([]byte{b}) }

func (e *encoder) u64(v uint64) {
	binary.LittleEndian.PutUint64(e.buf[:], v)
	e.bytes(e.buf[:])
}

func (e *encoder) str(s string) {
	e.u64(uint64(len(s)))
	_, _ = e.d.WriteString(s)
	_, _ = e.check.WriteString(s)
}

func (e *encoder) section(tag byte, m map[string]value.Value) {
	e.byte(tag)
	e.u64(uint64(len(m)))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		e.str(k)
		e.value(m[k])
	}
}

func (e *encoder) value(v value.Value) {
	e.byte(byte(v.Kind()))
	switch v.Kind() {
	case value.KindInteger:
		n, _ := v.AsInt()
		e.u64(uint64(n))
	case value.KindFloat:
		f, _ := v.AsFloat()
		e.u64(math.Float64bits(f))
	case value.KindBoolean:
		b, _ := v.AsBool()
		if b {
			e.byte(1)
		} else {
			e.byte(0)
		}
	case value.KindString:
		s, _ := v.AsString()
		e.str(s)
	case value.KindColor:
		c, _ := v.AsColor()
		e.bytes([]byte{c.R, c.G, c.B, c.A})
	case value.KindArray:
		items, _ := v.AsArray()
		e.u64(uint64(len(items)))
		for _, item := range items {
			e.value(item)
		}
	case value.KindMap:
		m, _ := v.AsMap()
		e.section('M', m)
	case value.KindImage:
		img, _ := v.AsImage()
		e.image(img)
	}
}

func (e *encoder) image(img *value.Image) {
	e.u64(uint64(img.Width))
	e.u64(uint64(img.Height))
	e.u64(uint64(img.Channels))
	e.u64(uint64(img.Format.ColorSpace))
	e.u64(uint64(img.Format.BitDepth))

	const batch = 1024
	buf := make([]byte, 0, batch*4)
	for i, p := range img.Pix {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(p))
		if (i+1)%batch == 0 {
			e.bytes(buf)
			buf = buf[:0]
		}
	}
	e.bytes(buf)
}
