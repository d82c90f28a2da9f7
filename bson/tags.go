package bson

import (
	"fmt"

	"github.com/Neumenon/jayson/jayson"
)

// Tag is the type byte that precedes each element.
type Tag byte

const (
	TagDouble   Tag = 0x01
	TagString   Tag = 0x02
	TagDocument Tag = 0x03
	TagArray    Tag = 0x04
	TagBinary   Tag = 0x05
	TagBool     Tag = 0x08
	TagNull     Tag = 0x0A
	TagInt32    Tag = 0x10
	TagUint64   Tag = 0x11
	TagInt64    Tag = 0x12
)

// String returns the tag name.
func (t Tag) String() string {
	switch t {
	case TagDouble:
		return "double"
	case TagString:
		return "string"
	case TagDocument:
		return "document"
	case TagArray:
		return "array"
	case TagBinary:
		return "binary"
	case TagBool:
		return "bool"
	case TagNull:
		return "null"
	case TagInt32:
		return "int32"
	case TagUint64:
		return "uint64"
	case TagInt64:
		return "int64"
	default:
		return fmt.Sprintf("Tag(0x%02x)", byte(t))
	}
}

// TagOf returns the tag used to encode v.
func TagOf(v *jayson.Value) Tag {
	switch v.Type() {
	case jayson.TypeBool:
		return TagBool
	case jayson.TypeDouble:
		return TagDouble
	case jayson.TypeInt32:
		return TagInt32
	case jayson.TypeInt64:
		return TagInt64
	case jayson.TypeUint64:
		return TagUint64
	case jayson.TypeString:
		return TagString
	case jayson.TypeBinary:
		return TagBinary
	case jayson.TypeArray:
		return TagArray
	case jayson.TypeObject:
		return TagDocument
	default:
		return TagNull
	}
}

// RootKey names the single member of the document that wraps a scalar root.
const RootKey = "value"

const (
	lengthSize     = 4
	minDocumentLen = lengthSize + 1
)
