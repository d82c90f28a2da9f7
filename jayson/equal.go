package jayson

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
)

// Equal reports whether a and b hold the same data. Numeric sub-kinds are
// compatible: integers compare exactly across int32, int64 and uint64, and
// a double compares by value against any number. Objects are equal when
// they have the same key set with equal members, in any order.
func Equal(a, b *Value) bool {
	if a.IsNumber() && b.IsNumber() {
		return numberEqual(a, b)
	}
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case TypeNull:
		return true
	case TypeBool:
		return a.boolVal == b.boolVal
	case TypeString:
		return a.str == b.str
	case TypeBinary:
		return a.blob.Subtype == b.blob.Subtype && bytes.Equal(a.blob.Data, b.blob.Data)
	case TypeArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Equal(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for _, m := range a.obj.members {
			other := b.obj.Get(m.Key)
			if other == nil || !Equal(m.Value, other) {
				return false
			}
		}
		return true
	}
	return false
}

func numberEqual(a, b *Value) bool {
	if a.Type() == TypeDouble || b.Type() == TypeDouble {
		return a.AsFloat64() == b.AsFloat64()
	}
	aNeg, aMag := magnitude(a)
	bNeg, bMag := magnitude(b)
	return aNeg == bNeg && aMag == bMag
}

// magnitude splits an integer Value into sign and absolute value.
func magnitude(v *Value) (neg bool, mag uint64) {
	if v.typ == TypeUint64 {
		return false, v.u64
	}
	if v.i64 < 0 {
		return true, uint64(-(v.i64 + 1)) + 1
	}
	return false, uint64(v.i64)
}

// Identical reports whether a and b are the same tree: equal type tags at
// every node, member order included. Doubles compare by bit pattern.
func Identical(a, b *Value) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch a.Type() {
	case TypeNull:
		return true
	case TypeBool:
		return a.boolVal == b.boolVal
	case TypeDouble:
		return math.Float64bits(a.f64) == math.Float64bits(b.f64)
	case TypeInt32, TypeInt64:
		return a.i64 == b.i64
	case TypeUint64:
		return a.u64 == b.u64
	case TypeString:
		return a.str == b.str
	case TypeBinary:
		return a.blob.Subtype == b.blob.Subtype && bytes.Equal(a.blob.Data, b.blob.Data)
	case TypeArray:
		if len(a.arr) != len(b.arr) {
			return false
		}
		for i := range a.arr {
			if !Identical(a.arr[i], b.arr[i]) {
				return false
			}
		}
		return true
	case TypeObject:
		if a.obj.Len() != b.obj.Len() {
			return false
		}
		for i, m := range a.obj.members {
			n := b.obj.members[i]
			if m.Key != n.Key || !Identical(m.Value, n.Value) {
				return false
			}
		}
		return true
	}
	return false
}

// Digest returns a 64-bit xxhash of v's structure: type tags, member keys
// in order and payloads. Identical trees have the same digest.
func Digest(v *Value) uint64 {
	d := xxhash.New()
	h := hasher{d: d}
	h.value(v)
	return d.Sum64()
}

type hasher struct {
	d       *xxhash.Digest
	scratch [9]byte
}

func (h *hasher) tagged(t Type, n uint64) {
	h.scratch[0] = byte(t)
	binary.LittleEndian.PutUint64(h.scratch[1:], n)
	_, _ = h.d.Write(h.scratch[:])
}

func (h *hasher) str(s string) {
	binary.LittleEndian.PutUint64(h.scratch[:8], uint64(len(s)))
	_, _ = h.d.Write(h.scratch[:8])
	_, _ = h.d.WriteString(s)
}

func (h *hasher) value(v *Value) {
	switch t := v.Type(); t {
	case TypeNull:
		h.tagged(t, 0)
	case TypeBool:
		var n uint64
		if v.boolVal {
			n = 1
		}
		h.tagged(t, n)
	case TypeDouble:
		h.tagged(t, math.Float64bits(v.f64))
	case TypeInt32, TypeInt64:
		h.tagged(t, uint64(v.i64))
	case TypeUint64:
		h.tagged(t, v.u64)
	case TypeString:
		h.tagged(t, 0)
		h.str(v.str)
	case TypeBinary:
		h.tagged(t, uint64(len(v.blob.Data))<<8|uint64(v.blob.Subtype))
		_, _ = h.d.Write(v.blob.Data)
	case TypeArray:
		h.tagged(t, uint64(len(v.arr)))
		for _, e := range v.arr {
			h.value(e)
		}
	case TypeObject:
		h.tagged(t, uint64(v.obj.Len()))
		for _, m := range v.obj.members {
			h.str(m.Key)
			h.value(m.Value)
		}
	}
}
