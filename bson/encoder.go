package bson

import (
	"math"
	"strings"

	"github.com/Neumenon/jayson/jayson"
)

// Marshal encodes v. An object becomes a document. An array uses the array
// layout at the root, which Unmarshal reads back as an object keyed "0",
// "1", ...; use UnmarshalArray for it. Any other value is wrapped as
// {RootKey: v}. The returned slice is owned by the caller.
func Marshal(v *jayson.Value) []byte {
	e := NewEncoder()
	e.Encode(v)
	return e.buf.Detach()
}

// Encoder writes Values into a reusable buffer. It must not be shared
// between goroutines.
type Encoder struct {
	buf     jayson.Buffer
	scratch [20]byte
}

// NewEncoder creates an encoder.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Encode encodes v and returns the bytes. The slice aliases the encoder's
// buffer and is valid until the next call to Encode.
func (e *Encoder) Encode(v *jayson.Value) []byte {
	e.buf.Reset()
	switch v.Type() {
	case jayson.TypeObject:
		e.writeDocument(v.AsObject())
	case jayson.TypeArray:
		e.writeArray(v.AsArray())
	default:
		begin := e.begin()
		e.writeElement(RootKey, v)
		e.end(begin)
	}
	return e.buf.Bytes()
}

// begin reserves the length field of a container and returns its offset.
func (e *Encoder) begin() int {
	begin := e.buf.Len()
	e.buf.AppendUint32LE(0)
	return begin
}

// end writes the terminator and backpatches the length reserved at begin.
func (e *Encoder) end(begin int) {
	e.buf.AppendByte(0)
	e.buf.PutUint32LE(begin, uint32(e.buf.Len()-begin))
}

func (e *Encoder) writeDocument(o *jayson.OrderedMap) {
	begin := e.begin()
	o.Range(func(key string, v *jayson.Value) bool {
		e.writeElement(key, v)
		return true
	})
	e.end(begin)
}

func (e *Encoder) writeArray(elems []*jayson.Value) {
	begin := e.begin()
	for i, v := range elems {
		key := jayson.AppendUint(e.scratch[:0], uint64(i))
		e.writeElementKey(TagOf(v), key)
		e.writePayload(v)
	}
	e.end(begin)
}

func (e *Encoder) writeElement(key string, v *jayson.Value) {
	// cstring keys cannot hold NUL
	if i := strings.IndexByte(key, 0); i >= 0 {
		key = key[:i]
	}
	e.buf.AppendByte(byte(TagOf(v)))
	e.buf.AppendString(key)
	e.buf.AppendByte(0)
	e.writePayload(v)
}

func (e *Encoder) writeElementKey(tag Tag, key []byte) {
	e.buf.AppendByte(byte(tag))
	e.buf.Append(key)
	e.buf.AppendByte(0)
}

func (e *Encoder) writePayload(v *jayson.Value) {
	switch v.Type() {
	case jayson.TypeNull:

	case jayson.TypeBool:
		if v.AsBool() {
			e.buf.AppendByte(1)
		} else {
			e.buf.AppendByte(0)
		}

	case jayson.TypeDouble:
		e.buf.AppendUint64LE(math.Float64bits(v.AsFloat64()))

	case jayson.TypeInt32:
		e.buf.AppendUint32LE(uint32(v.AsInt32()))

	case jayson.TypeInt64:
		e.buf.AppendUint64LE(uint64(v.AsInt64()))

	case jayson.TypeUint64:
		e.buf.AppendUint64LE(v.AsUint64())

	case jayson.TypeString:
		s := v.AsString()
		e.buf.AppendUint32LE(uint32(len(s) + 1))
		e.buf.AppendString(s)
		e.buf.AppendByte(0)

	case jayson.TypeBinary:
		b := v.AsBinary()
		e.buf.AppendUint32LE(uint32(len(b.Data)))
		e.buf.AppendByte(b.Subtype)
		e.buf.Append(b.Data)

	case jayson.TypeArray:
		e.writeArray(v.AsArray())

	case jayson.TypeObject:
		e.writeDocument(v.AsObject())
	}
}
