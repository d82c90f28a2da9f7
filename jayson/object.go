package jayson

import "github.com/dolthub/swiss"

// Member is one key/value pair of an object.
type Member struct {
	Key   string
	Value *Value
}

// M creates a Member for use with Object.
func M(key string, value *Value) Member {
	return Member{Key: key, Value: value}
}

// OrderedMap is an associative container that iterates in insertion order.
// Lookups go through a hash index from key to position in the member slice;
// every indexed key refers to a live member.
//
// The zero value is an empty map ready to use.
type OrderedMap struct {
	members []Member
	index   *swiss.Map[string, int]
}

// NewOrderedMap returns an empty map sized for n members.
func NewOrderedMap(n int) *OrderedMap {
	return &OrderedMap{
		members: make([]Member, 0, n),
		index:   swiss.NewMap[string, int](uint32(n)),
	}
}

func (o *OrderedMap) lazyInit() {
	if o.index == nil {
		o.index = swiss.NewMap[string, int](uint32(len(o.members)))
		for i, m := range o.members {
			o.index.Put(m.Key, i)
		}
	}
}

// Len returns the number of members.
func (o *OrderedMap) Len() int {
	if o == nil {
		return 0
	}
	return len(o.members)
}

// Get returns the value stored under key, or nil when the key is absent.
// It never inserts.
func (o *OrderedMap) Get(key string) *Value {
	if o == nil || o.index == nil {
		return nil
	}
	if i, ok := o.index.Get(key); ok {
		return o.members[i].Value
	}
	return nil
}

// Has reports whether key is present.
func (o *OrderedMap) Has(key string) bool {
	if o == nil || o.index == nil {
		return false
	}
	return o.index.Has(key)
}

// GetMut returns the value stored under key. On a miss it appends a new
// null member and returns that.
func (o *OrderedMap) GetMut(key string) *Value {
	o.lazyInit()
	if i, ok := o.index.Get(key); ok {
		return o.members[i].Value
	}
	v := Null()
	o.index.Put(key, len(o.members))
	o.members = append(o.members, Member{Key: key, Value: v})
	return v
}

// Set stores v under key. An existing key keeps its position.
// The map takes ownership of v; a nil v is stored as null.
func (o *OrderedMap) Set(key string, v *Value) {
	if v == nil {
		v = Null()
	}
	o.lazyInit()
	if i, ok := o.index.Get(key); ok {
		o.members[i].Value = v
		return
	}
	o.index.Put(key, len(o.members))
	o.members = append(o.members, Member{Key: key, Value: v})
}

// Remove deletes key and reports whether it was present. Members after the
// removed one move down by one position; their relative order is unchanged.
func (o *OrderedMap) Remove(key string) bool {
	if o == nil || o.index == nil {
		return false
	}
	i, ok := o.index.Get(key)
	if !ok {
		return false
	}
	o.index.Delete(key)
	copy(o.members[i:], o.members[i+1:])
	o.members[len(o.members)-1] = Member{}
	o.members = o.members[:len(o.members)-1]
	for j := i; j < len(o.members); j++ {
		o.index.Put(o.members[j].Key, j)
	}
	return true
}

// At returns the i-th member in insertion order.
func (o *OrderedMap) At(i int) Member {
	return o.members[i]
}

// Keys returns the keys in insertion order.
func (o *OrderedMap) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.members))
	for i, m := range o.members {
		keys[i] = m.Key
	}
	return keys
}

// Range calls fn for each member in insertion order until fn returns false.
func (o *OrderedMap) Range(fn func(key string, v *Value) bool) {
	if o == nil {
		return
	}
	for _, m := range o.members {
		if !fn(m.Key, m.Value) {
			return
		}
	}
}

func (o *OrderedMap) clone() *OrderedMap {
	c := NewOrderedMap(len(o.members))
	for _, m := range o.members {
		c.index.Put(m.Key, len(c.members))
		c.members = append(c.members, Member{Key: m.Key, Value: m.Value.Clone()})
	}
	return c
}
