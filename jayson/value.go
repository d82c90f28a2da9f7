package jayson

import "math"

// Type identifies the active variant of a Value.
type Type uint8

const (
	TypeNull Type = iota
	TypeBool
	TypeDouble
	TypeInt32
	TypeInt64
	TypeUint64 // unsigned 64-bit; binary tag 0x11
	TypeString
	TypeBinary // opaque blob, binary format only
	TypeArray
	TypeObject
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeBool:
		return "bool"
	case TypeDouble:
		return "double"
	case TypeInt32:
		return "int32"
	case TypeInt64:
		return "int64"
	case TypeUint64:
		return "uint64"
	case TypeString:
		return "string"
	case TypeBinary:
		return "binary"
	case TypeArray:
		return "array"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Blob is the payload of a binary value.
type Blob struct {
	Subtype byte
	Data    []byte
}

// Value is a dynamically typed datum. Exactly one variant is active; only
// the payload field belonging to typ is meaningful, the others are zero.
//
// A Value exclusively owns its string, blob, array and object payloads.
// A nil *Value reads as null: read accessors on nil return defaults, which is
// what Get and At return on a miss.
type Value struct {
	typ Type

	boolVal bool
	f64     float64
	i64     int64 // TypeInt32 and TypeInt64
	u64     uint64
	str     string
	blob    *Blob
	arr     []*Value
	obj     *OrderedMap
}

// ============================================================
// Constructors
// ============================================================

// Null creates a null value.
func Null() *Value {
	return &Value{typ: TypeNull}
}

// New creates the empty value of type t: false, zero, "", an empty blob,
// array or object.
func New(t Type) *Value {
	v := &Value{}
	v.Retype(t)
	return v
}

// Bool creates a boolean value.
func Bool(b bool) *Value {
	return &Value{typ: TypeBool, boolVal: b}
}

// Double creates a double value.
func Double(f float64) *Value {
	return &Value{typ: TypeDouble, f64: f}
}

// Int32 creates a signed 32-bit integer value.
func Int32(n int32) *Value {
	return &Value{typ: TypeInt32, i64: int64(n)}
}

// Int64 creates a signed 64-bit integer value.
func Int64(n int64) *Value {
	return &Value{typ: TypeInt64, i64: n}
}

// Uint64 creates an unsigned 64-bit integer value.
func Uint64(n uint64) *Value {
	return &Value{typ: TypeUint64, u64: n}
}

// Str creates a string value.
func Str(s string) *Value {
	return &Value{typ: TypeString, str: s}
}

// Binary creates a blob value. The value takes ownership of data.
func Binary(subtype byte, data []byte) *Value {
	return &Value{typ: TypeBinary, blob: &Blob{Subtype: subtype, Data: data}}
}

// Array creates an array value that takes ownership of values.
// Nil elements are stored as null.
func Array(values ...*Value) *Value {
	arr := make([]*Value, len(values))
	for i, e := range values {
		if e == nil {
			e = Null()
		}
		arr[i] = e
	}
	return &Value{typ: TypeArray, arr: arr}
}

// Object creates an object value from members in order. A repeated key
// overwrites the earlier value in place.
func Object(members ...Member) *Value {
	o := NewOrderedMap(len(members))
	for _, m := range members {
		o.Set(m.Key, m.Value)
	}
	return &Value{typ: TypeObject, obj: o}
}

// ============================================================
// Type predicates
// ============================================================

// Type returns the active variant.
func (v *Value) Type() Type {
	if v == nil {
		return TypeNull
	}
	return v.typ
}

func (v *Value) IsNull() bool   { return v.Type() == TypeNull }
func (v *Value) IsBool() bool   { return v.Type() == TypeBool }
func (v *Value) IsDouble() bool { return v.Type() == TypeDouble }
func (v *Value) IsInt32() bool  { return v.Type() == TypeInt32 }
func (v *Value) IsInt64() bool  { return v.Type() == TypeInt64 }
func (v *Value) IsUint64() bool { return v.Type() == TypeUint64 }
func (v *Value) IsString() bool { return v.Type() == TypeString }
func (v *Value) IsBinary() bool { return v.Type() == TypeBinary }
func (v *Value) IsArray() bool  { return v.Type() == TypeArray }
func (v *Value) IsObject() bool { return v.Type() == TypeObject }

// IsInteger reports whether v holds one of the integer sub-kinds.
func (v *Value) IsInteger() bool {
	switch v.Type() {
	case TypeInt32, TypeInt64, TypeUint64:
		return true
	}
	return false
}

// IsNumber reports whether v holds any numeric sub-kind.
func (v *Value) IsNumber() bool {
	return v.IsInteger() || v.Type() == TypeDouble
}

// ============================================================
// Typed reads
// ============================================================
//
// Reads never fail. A mismatched type yields the zero value of the
// requested Go type; numeric reads convert between numeric sub-kinds.

// AsBool returns the boolean payload, or false.
func (v *Value) AsBool() bool {
	return v.Type() == TypeBool && v.boolVal
}

// AsFloat64 returns any numeric payload as float64, or 0.
func (v *Value) AsFloat64() float64 {
	switch v.Type() {
	case TypeDouble:
		return v.f64
	case TypeInt32, TypeInt64:
		return float64(v.i64)
	case TypeUint64:
		return float64(v.u64)
	}
	return 0
}

// AsInt64 returns any numeric payload as int64, or 0. Doubles are truncated
// toward zero; out-of-range values saturate.
func (v *Value) AsInt64() int64 {
	switch v.Type() {
	case TypeInt32, TypeInt64:
		return v.i64
	case TypeUint64:
		if v.u64 > math.MaxInt64 {
			return math.MaxInt64
		}
		return int64(v.u64)
	case TypeDouble:
		switch {
		case math.IsNaN(v.f64):
			return 0
		case v.f64 >= math.MaxInt64:
			return math.MaxInt64
		case v.f64 <= math.MinInt64:
			return math.MinInt64
		}
		return int64(v.f64)
	}
	return 0
}

// AsInt32 returns any numeric payload as int32, or 0. Out-of-range values
// saturate.
func (v *Value) AsInt32() int32 {
	n := v.AsInt64()
	switch {
	case n > math.MaxInt32:
		return math.MaxInt32
	case n < math.MinInt32:
		return math.MinInt32
	}
	return int32(n)
}

// AsUint64 returns any numeric payload as uint64, or 0. Negative values
// read as 0.
func (v *Value) AsUint64() uint64 {
	switch v.Type() {
	case TypeUint64:
		return v.u64
	case TypeInt32, TypeInt64:
		if v.i64 < 0 {
			return 0
		}
		return uint64(v.i64)
	case TypeDouble:
		switch {
		case math.IsNaN(v.f64) || v.f64 <= 0:
			return 0
		case v.f64 >= math.MaxUint64:
			return math.MaxUint64
		}
		return uint64(v.f64)
	}
	return 0
}

// AsString returns the string payload, or "".
func (v *Value) AsString() string {
	if v.Type() != TypeString {
		return ""
	}
	return v.str
}

// AsBinary returns the blob payload, or a zero Blob.
func (v *Value) AsBinary() Blob {
	if v.Type() != TypeBinary {
		return Blob{}
	}
	return *v.blob
}

// AsArray returns the array elements, or nil. The slice aliases v.
func (v *Value) AsArray() []*Value {
	if v.Type() != TypeArray {
		return nil
	}
	return v.arr
}

// AsObject returns the object payload, or nil.
func (v *Value) AsObject() *OrderedMap {
	if v.Type() != TypeObject {
		return nil
	}
	return v.obj
}

// Truthy reports whether v is "set": true, a non-zero number, or a
// non-empty string, blob, array or object.
func (v *Value) Truthy() bool {
	switch v.Type() {
	case TypeBool:
		return v.boolVal
	case TypeDouble:
		return v.f64 != 0
	case TypeInt32, TypeInt64:
		return v.i64 != 0
	case TypeUint64:
		return v.u64 != 0
	case TypeString:
		return v.str != ""
	case TypeBinary:
		return len(v.blob.Data) > 0
	case TypeArray:
		return len(v.arr) > 0
	case TypeObject:
		return v.obj.Len() > 0
	}
	return false
}

// Len returns the element count of an array or object, otherwise 0.
func (v *Value) Len() int {
	switch v.Type() {
	case TypeArray:
		return len(v.arr)
	case TypeObject:
		return v.obj.Len()
	}
	return 0
}

// Get returns the member stored under key, or nil if v is not an object or
// the key is absent. It never mutates v.
func (v *Value) Get(key string) *Value {
	if v.Type() != TypeObject {
		return nil
	}
	return v.obj.Get(key)
}

// At returns the i-th element, or nil if v is not an array or i is out of
// range. It never mutates v.
func (v *Value) At(i int) *Value {
	if v.Type() != TypeArray || i < 0 || i >= len(v.arr) {
		return nil
	}
	return v.arr[i]
}

// ============================================================
// Retype and assignment
// ============================================================

// Retype makes t the active variant. If v already holds t nothing changes;
// otherwise the current payload is released and the empty payload of t is
// installed. Every mutable accessor applies this policy to its receiver,
// so using one against a mismatched type discards the old contents.
func (v *Value) Retype(t Type) *Value {
	if v.typ == t {
		return v
	}
	*v = Value{typ: t}
	switch t {
	case TypeBinary:
		v.blob = &Blob{}
	case TypeArray:
		v.arr = []*Value{}
	case TypeObject:
		v.obj = NewOrderedMap(0)
	}
	return v
}

// SetNull releases the payload and makes v null.
func (v *Value) SetNull() {
	*v = Value{}
}

// SetBool retypes v to bool and stores b.
func (v *Value) SetBool(b bool) {
	v.Retype(TypeBool).boolVal = b
}

// SetDouble retypes v to double and stores f.
func (v *Value) SetDouble(f float64) {
	v.Retype(TypeDouble).f64 = f
}

// SetInt32 retypes v to int32 and stores n.
func (v *Value) SetInt32(n int32) {
	v.Retype(TypeInt32).i64 = int64(n)
}

// SetInt64 retypes v to int64 and stores n.
func (v *Value) SetInt64(n int64) {
	v.Retype(TypeInt64).i64 = n
}

// SetUint64 retypes v to uint64 and stores n.
func (v *Value) SetUint64(n uint64) {
	v.Retype(TypeUint64).u64 = n
}

// SetString retypes v to string and stores s.
func (v *Value) SetString(s string) {
	v.Retype(TypeString).str = s
}

// SetBinary retypes v to binary and stores the blob. v takes ownership of
// data.
func (v *Value) SetBinary(subtype byte, data []byte) {
	v.Retype(TypeBinary).blob = &Blob{Subtype: subtype, Data: data}
}

// Clone returns a deep copy of v. Cloning nil yields a new null.
func (v *Value) Clone() *Value {
	if v == nil {
		return Null()
	}
	c := &Value{}
	c.copyFrom(v)
	return c
}

// Assign replaces v's contents with a deep copy of src.
func (v *Value) Assign(src *Value) {
	if v == src {
		return
	}
	if src == nil {
		v.SetNull()
		return
	}
	v.copyFrom(src)
}

func (v *Value) copyFrom(src *Value) {
	*v = Value{typ: src.typ, boolVal: src.boolVal, f64: src.f64, i64: src.i64, u64: src.u64, str: src.str}
	switch src.typ {
	case TypeBinary:
		data := make([]byte, len(src.blob.Data))
		copy(data, src.blob.Data)
		v.blob = &Blob{Subtype: src.blob.Subtype, Data: data}
	case TypeArray:
		v.arr = make([]*Value, len(src.arr))
		for i, e := range src.arr {
			v.arr[i] = e.Clone()
		}
	case TypeObject:
		v.obj = src.obj.clone()
	}
}

// MoveFrom transfers src's payload into v and resets src to null.
func (v *Value) MoveFrom(src *Value) {
	if v == src {
		return
	}
	if src == nil {
		v.SetNull()
		return
	}
	*v = *src
	*src = Value{}
}

// Take moves v's payload into a new Value and resets v to null.
func (v *Value) Take() *Value {
	out := &Value{}
	out.MoveFrom(v)
	return out
}

// ============================================================
// Mutable container access
// ============================================================

// Key returns the object member stored under key, inserting a null member
// if it is absent. A non-object v is retyped to an empty object first.
func (v *Value) Key(key string) *Value {
	return v.Retype(TypeObject).obj.GetMut(key)
}

// Set stores member under key, retyping v to an object if needed. v takes
// ownership of member.
func (v *Value) Set(key string, member *Value) *Value {
	v.Retype(TypeObject).obj.Set(key, member)
	return v
}

// Index returns the i-th element, growing the array with nulls so that i is
// in range. A non-array v is retyped to an empty array first. It panics if
// i is negative.
func (v *Value) Index(i int) *Value {
	v.Retype(TypeArray)
	if i < 0 {
		panic("jayson: negative array index")
	}
	for len(v.arr) <= i {
		v.arr = append(v.arr, Null())
	}
	return v.arr[i]
}

// Append adds elem to the end of the array, retyping v if needed, and
// returns elem. v takes ownership of elem; nil appends a new null.
func (v *Value) Append(elem *Value) *Value {
	v.Retype(TypeArray)
	if elem == nil {
		elem = Null()
	}
	v.arr = append(v.arr, elem)
	return elem
}

// AppendNew appends a null element and returns it for in-place filling.
func (v *Value) AppendNew() *Value {
	return v.Append(nil)
}

// Remove deletes an object member. It is a no-op unless v is an object.
func (v *Value) Remove(key string) bool {
	if v.Type() != TypeObject {
		return false
	}
	return v.obj.Remove(key)
}

// RemoveAt deletes the i-th array element, shifting later ones down. It is a
// no-op unless v is an array and i is in range.
func (v *Value) RemoveAt(i int) bool {
	if v.Type() != TypeArray || i < 0 || i >= len(v.arr) {
		return false
	}
	copy(v.arr[i:], v.arr[i+1:])
	v.arr[len(v.arr)-1] = nil
	v.arr = v.arr[:len(v.arr)-1]
	return true
}

// String renders v as compact JSON.
func (v *Value) String() string {
	return string(SerializeText(v, CompactWriteOptions()))
}
