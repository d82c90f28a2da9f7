package jayson

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderedMapInsertionOrder(t *testing.T) {
	var o OrderedMap
	o.Set("z", Int32(1))
	o.Set("a", Int32(2))
	o.Set("m", Int32(3))
	assert.Equal(t, []string{"z", "a", "m"}, o.Keys())

	// overwrite keeps position
	o.Set("z", Str("again"))
	assert.Equal(t, []string{"z", "a", "m"}, o.Keys())
	assert.Equal(t, "again", o.Get("z").AsString())
	assert.Equal(t, 3, o.Len())
}

func TestOrderedMapGetMut(t *testing.T) {
	o := NewOrderedMap(0)
	v := o.GetMut("k")
	require.NotNil(t, v)
	assert.True(t, v.IsNull())
	assert.True(t, o.Has("k"))

	v.SetInt32(4)
	assert.Same(t, v, o.GetMut("k"))
	assert.Equal(t, int32(4), o.Get("k").AsInt32())
	assert.Equal(t, 1, o.Len())
}

func TestOrderedMapGetMissDoesNotInsert(t *testing.T) {
	o := NewOrderedMap(4)
	assert.Nil(t, o.Get("nope"))
	assert.False(t, o.Has("nope"))
	assert.Equal(t, 0, o.Len())

	var nilMap *OrderedMap
	assert.Nil(t, nilMap.Get("a"))
	assert.Equal(t, 0, nilMap.Len())
	assert.False(t, nilMap.Remove("a"))
}

func TestOrderedMapRemoveReindexes(t *testing.T) {
	o := NewOrderedMap(0)
	for i := 0; i < 10; i++ {
		o.Set(fmt.Sprintf("k%d", i), Int32(int32(i)))
	}
	require.True(t, o.Remove("k3"))
	require.True(t, o.Remove("k0"))
	require.False(t, o.Remove("k0"))

	assert.Equal(t, []string{"k1", "k2", "k4", "k5", "k6", "k7", "k8", "k9"}, o.Keys())
	for i, key := range o.Keys() {
		m := o.At(i)
		assert.Equal(t, key, m.Key)
		assert.Same(t, m.Value, o.Get(key), "index for %s", key)
	}

	// reinsert goes to the end
	o.Set("k0", Int32(0))
	assert.Equal(t, "k0", o.At(o.Len()-1).Key)
}

func TestOrderedMapRange(t *testing.T) {
	o := NewOrderedMap(0)
	o.Set("a", Int32(1))
	o.Set("b", Int32(2))
	o.Set("c", Int32(3))

	var seen []string
	o.Range(func(key string, v *Value) bool {
		seen = append(seen, key)
		return key != "b"
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}
