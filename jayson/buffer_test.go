package jayson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferGrowth(t *testing.T) {
	b := NewBuffer(0)
	require.Equal(t, minBufferCap, b.Cap())

	for i := 0; i < 1000; i++ {
		b.AppendByte(byte(i))
	}
	assert.Equal(t, 1000, b.Len())
	assert.Equal(t, 1024, b.Cap())
	for i := 0; i < 1000; i++ {
		require.Equal(t, byte(i), b.Bytes()[i])
	}
}

func TestBufferGrowJumpsToFit(t *testing.T) {
	b := NewBuffer(64)
	b.Grow(1000)
	assert.GreaterOrEqual(t, b.Cap(), 1000)
	assert.Equal(t, 0, b.Len())
}

func TestBufferLittleEndianAndBackpatch(t *testing.T) {
	var b Buffer
	b.AppendUint32LE(0)
	b.AppendString("ab")
	b.AppendUint64LE(0x0102030405060708)
	b.PutUint32LE(0, uint32(b.Len()))

	assert.Equal(t, []byte{
		14, 0, 0, 0,
		'a', 'b',
		8, 7, 6, 5, 4, 3, 2, 1,
	}, b.Bytes())
}

func TestBufferDetachAndReset(t *testing.T) {
	var b Buffer
	b.Append([]byte("hello"))
	out := b.Detach()
	b.Reset()
	b.AppendString("world")
	assert.Equal(t, "hello", string(out))
	assert.Equal(t, "world", b.String())
}
