package jayson

import (
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
)

// ============================================================
// Native Go bridge
// ============================================================
//
// Converts between Values and the plain Go types produced by
// encoding/json-style decoders. Numeric sub-kinds follow the bit width
// and signedness of the Go type:
//   - int8, int16, int32, uint8, uint16 -> int32
//   - int, int64, uint32 -> int64
//   - uint, uint64, uintptr -> uint64
//   - float32, float64 -> double

// FromInterface converts a Go value to a Value. Map keys are inserted in
// sorted order so the result is deterministic.
func FromInterface(x interface{}) (*Value, error) {
	switch val := x.(type) {
	case nil:
		return Null(), nil
	case *Value:
		return val.Clone(), nil
	case Value:
		return val.Clone(), nil

	case bool:
		return Bool(val), nil

	case int8:
		return Int32(int32(val)), nil
	case int16:
		return Int32(int32(val)), nil
	case int32:
		return Int32(val), nil
	case uint8:
		return Int32(int32(val)), nil
	case uint16:
		return Int32(int32(val)), nil
	case int:
		return Int64(int64(val)), nil
	case int64:
		return Int64(val), nil
	case uint32:
		return Int64(int64(val)), nil
	case uint:
		return Uint64(uint64(val)), nil
	case uint64:
		return Uint64(val), nil
	case uintptr:
		return Uint64(uint64(val)), nil
	case float32:
		return Double(float64(val)), nil
	case float64:
		return Double(val), nil

	case json.Number:
		v, err := ParseString(string(val))
		if err != nil || !v.IsNumber() {
			return nil, errors.Errorf("invalid json.Number %q", string(val))
		}
		return v, nil

	case string:
		return Str(val), nil

	case []byte:
		data := make([]byte, len(val))
		copy(data, val)
		return Binary(0, data), nil

	case []string:
		arr := New(TypeArray)
		for _, s := range val {
			arr.Append(Str(s))
		}
		return arr, nil

	case []*Value:
		arr := New(TypeArray)
		for _, e := range val {
			arr.Append(e.Clone())
		}
		return arr, nil

	case []interface{}:
		arr := New(TypeArray)
		for i, elem := range val {
			e, err := FromInterface(elem)
			if err != nil {
				return nil, errors.Wrapf(err, "array[%d]", i)
			}
			arr.Append(e)
		}
		return arr, nil

	case map[string]string:
		obj := New(TypeObject)
		for _, k := range sortedKeys(val) {
			obj.Set(k, Str(val[k]))
		}
		return obj, nil

	case map[string]interface{}:
		obj := New(TypeObject)
		for _, k := range sortedKeys(val) {
			e, err := FromInterface(val[k])
			if err != nil {
				return nil, errors.Wrapf(err, "object[%q]", k)
			}
			obj.Set(k, e)
		}
		return obj, nil

	default:
		return nil, errors.Wrapf(ErrUnsupportedType, "cannot convert %T", x)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Interface converts v to plain Go types: nil, bool, float64, int32, int64,
// uint64, string, []byte, []interface{} and map[string]interface{}.
// The result shares nothing with v.
func (v *Value) Interface() interface{} {
	switch v.Type() {
	case TypeBool:
		return v.boolVal
	case TypeDouble:
		return v.f64
	case TypeInt32:
		return int32(v.i64)
	case TypeInt64:
		return v.i64
	case TypeUint64:
		return v.u64
	case TypeString:
		return v.str
	case TypeBinary:
		data := make([]byte, len(v.blob.Data))
		copy(data, v.blob.Data)
		return data
	case TypeArray:
		out := make([]interface{}, len(v.arr))
		for i, e := range v.arr {
			out[i] = e.Interface()
		}
		return out
	case TypeObject:
		out := make(map[string]interface{}, v.obj.Len())
		for _, m := range v.obj.members {
			out[m.Key] = m.Value.Interface()
		}
		return out
	}
	return nil
}
