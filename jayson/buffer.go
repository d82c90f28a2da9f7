package jayson

import "encoding/binary"

const minBufferCap = 64

// Buffer is a growable byte accumulator. Capacity at least doubles on every
// growth so appends stay amortized O(1).
//
// A Buffer belongs to one Reader, Writer or Encoder at a time; it has no
// internal locking.
type Buffer struct {
	b []byte
}

// NewBuffer returns a buffer with at least the given capacity.
func NewBuffer(capacity int) *Buffer {
	if capacity < minBufferCap {
		capacity = minBufferCap
	}
	return &Buffer{b: make([]byte, 0, capacity)}
}

// Len returns the number of accumulated bytes.
func (b *Buffer) Len() int { return len(b.b) }

// Cap returns the current capacity.
func (b *Buffer) Cap() int { return cap(b.b) }

// Bytes returns the accumulated bytes. The slice aliases the buffer and is
// only valid until the next mutation.
func (b *Buffer) Bytes() []byte { return b.b }

// String returns a copy of the accumulated bytes as a string.
func (b *Buffer) String() string { return string(b.b) }

// Reset empties the buffer, keeping its storage.
func (b *Buffer) Reset() { b.b = b.b[:0] }

// Detach returns a copy of the contents that survives later mutation.
func (b *Buffer) Detach() []byte {
	out := make([]byte, len(b.b))
	copy(out, b.b)
	return out
}

// Grow makes room for n more bytes.
func (b *Buffer) Grow(n int) {
	need := len(b.b) + n
	if need <= cap(b.b) {
		return
	}
	c := 2 * cap(b.b)
	if c < minBufferCap {
		c = minBufferCap
	}
	for c < need {
		c *= 2
	}
	nb := make([]byte, len(b.b), c)
	copy(nb, b.b)
	b.b = nb
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) {
	b.Grow(1)
	b.b = append(b.b, c)
}

// Append appends p.
func (b *Buffer) Append(p []byte) {
	b.Grow(len(p))
	b.b = append(b.b, p...)
}

// AppendString appends s.
func (b *Buffer) AppendString(s string) {
	b.Grow(len(s))
	b.b = append(b.b, s...)
}

// AppendUint32LE appends v in little-endian order.
func (b *Buffer) AppendUint32LE(v uint32) {
	b.Grow(4)
	b.b = binary.LittleEndian.AppendUint32(b.b, v)
}

// AppendUint64LE appends v in little-endian order.
func (b *Buffer) AppendUint64LE(v uint64) {
	b.Grow(8)
	b.b = binary.LittleEndian.AppendUint64(b.b, v)
}

// PutUint32LE overwrites the four bytes at off. It is used to backpatch a
// length field reserved earlier.
func (b *Buffer) PutUint32LE(off int, v uint32) {
	binary.LittleEndian.PutUint32(b.b[off:off+4], v)
}

// appendWith reserves n bytes, then lets fn append into the slice.
func (b *Buffer) appendWith(n int, fn func([]byte) []byte) {
	b.Grow(n)
	b.b = fn(b.b)
}
