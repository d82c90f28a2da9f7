// Package jayson implements a dynamic value model for semi-structured data
// and a JSON text codec for it.
//
// # Data Model
//
// A Value holds exactly one of:
//
//	null, bool, double, int32, int64, uint64, string, binary, array, object
//
// Objects are OrderedMaps: keys are unique, lookups are hashed, and
// iteration follows insertion order. Numbers keep their sub-kind through a
// round trip; the binary codec in package bson stores each one under its
// own tag.
//
// # Ownership
//
// A Value owns its payload. Clone makes a deep copy, Take and MoveFrom
// transfer the payload and leave the source null. A nil *Value reads as
// null, which is what read-only lookups such as Get and At return on a
// miss.
//
// Mutable accessors (Key, Index, Append, Set and the Set* family) retype
// their receiver when the active type differs, discarding the old payload:
//
//	v := jayson.Int32(5)
//	v.Key("a").SetString("x") // v is now {"a":"x"}
//
// # Text Format
//
// ParseText accepts standard JSON plus a leading '+' on numbers and a
// trailing comma before a closing bracket. Integers without fraction or
// exponent become int32 when they fit, otherwise uint64 or int64.
// \uXXXX escapes are decoded one 16-bit unit at a time; surrogate pairs are
// not merged.
//
// SerializeText writes doubles in fixed-point notation with
// WriteOptions.Precision fractional digits:
//
//	v, _ := jayson.ParseString(`{"a":1,"b":[1,2.5,"x"],"c":null}`)
//	jayson.SerializeText(v, jayson.WriteOptions{Precision: 2})
//	// {"a":1,"b":[1,2.50,"x"],"c":null}
//
// # Errors
//
// Decoding stops at the first problem and returns a *ParseError carrying
// an ErrorKind and the line (text) or byte offset (binary). Each kind
// unwraps to a sentinel such as ErrSyntax or ErrTruncated.
//
// # Concurrency
//
// Values, Readers and Writers have no internal locking. The package-level
// helpers allocate per call and are safe to use concurrently.
package jayson
