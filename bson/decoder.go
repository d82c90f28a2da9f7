package bson

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Neumenon/jayson/jayson"
)

// Unmarshal decodes a document into an object Value.
func Unmarshal(data []byte) (*jayson.Value, error) {
	return NewDecoder().Decode(data)
}

// UnmarshalArray decodes an array-layout root into an array Value.
func UnmarshalArray(data []byte) (*jayson.Value, error) {
	return NewDecoder().DecodeArray(data)
}

// Decoder reads Values from the binary format. Reads never go past the
// supplied buffer or the extent declared by the enclosing document.
type Decoder struct {
	data []byte
	pos  int
}

// NewDecoder creates a decoder.
func NewDecoder() *Decoder {
	return &Decoder{}
}

// Decode decodes one document from data into an object Value. The whole of
// data must be consumed. Failures are *jayson.ParseError values with Offset
// set.
func (d *Decoder) Decode(data []byte) (*jayson.Value, error) {
	return d.decodeRoot(data, false)
}

// DecodeArray decodes one array-layout document from data.
func (d *Decoder) DecodeArray(data []byte) (*jayson.Value, error) {
	return d.decodeRoot(data, true)
}

func (d *Decoder) decodeRoot(data []byte, asArray bool) (*jayson.Value, error) {
	d.data = data
	d.pos = 0
	defer func() { d.data = nil }()

	v, err := d.readDocument(len(data), asArray)
	if err != nil {
		return nil, err
	}
	if d.pos != len(data) {
		return nil, d.fail(jayson.KindSyntax, "%d trailing bytes after document", len(data)-d.pos)
	}
	return v, nil
}

func (d *Decoder) fail(kind jayson.ErrorKind, format string, args ...interface{}) error {
	return &jayson.ParseError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Offset:  d.pos,
	}
}

// need checks that n bytes are readable before limit.
func (d *Decoder) need(n, limit int) error {
	if n < 0 || n > limit-d.pos {
		return d.fail(jayson.KindDecodeBounds, "read of %d bytes past end of buffer", n)
	}
	return nil
}

func (d *Decoder) readInt32(limit int) (int32, error) {
	if err := d.need(4, limit); err != nil {
		return 0, err
	}
	n := int32(binary.LittleEndian.Uint32(d.data[d.pos:]))
	d.pos += 4
	return n, nil
}

func (d *Decoder) readUint64(limit int) (uint64, error) {
	if err := d.need(8, limit); err != nil {
		return 0, err
	}
	n := binary.LittleEndian.Uint64(d.data[d.pos:])
	d.pos += 8
	return n, nil
}

func (d *Decoder) readDocument(limit int, asArray bool) (*jayson.Value, error) {
	start := d.pos
	n, err := d.readInt32(limit)
	if err != nil {
		return nil, err
	}
	if n < minDocumentLen {
		d.pos = start
		return nil, d.fail(jayson.KindSyntax, "invalid document length %d", n)
	}
	if int(n) > limit-start {
		d.pos = start
		return nil, d.fail(jayson.KindDecodeBounds, "document length %d exceeds %d available bytes", n, limit-start)
	}
	end := start + int(n)
	if d.data[end-1] != 0 {
		d.pos = end - 1
		return nil, d.fail(jayson.KindSyntax, "document not terminated by 0x00")
	}

	var v *jayson.Value
	if asArray {
		v = jayson.New(jayson.TypeArray)
	} else {
		v = jayson.New(jayson.TypeObject)
	}

	for {
		if err := d.need(1, end); err != nil {
			return nil, err
		}
		tag := Tag(d.data[d.pos])
		if tag == 0 {
			if d.pos != end-1 {
				return nil, d.fail(jayson.KindSyntax, "document length %d does not match content", n)
			}
			d.pos++
			return v, nil
		}
		tagPos := d.pos
		d.pos++

		key, err := d.readCString(end)
		if err != nil {
			return nil, err
		}
		elem, err := d.readElement(tag, tagPos, end)
		if err != nil {
			return nil, err
		}
		if asArray {
			v.Append(elem)
		} else {
			v.Set(key, elem)
		}
	}
}

func (d *Decoder) readCString(limit int) (string, error) {
	for i := d.pos; i < limit; i++ {
		if d.data[i] == 0 {
			s := string(d.data[d.pos:i])
			d.pos = i + 1
			return s, nil
		}
	}
	return "", d.fail(jayson.KindDecodeBounds, "unterminated key")
}

func (d *Decoder) readElement(tag Tag, tagPos, limit int) (*jayson.Value, error) {
	switch tag {
	case TagNull:
		return jayson.Null(), nil

	case TagBool:
		if err := d.need(1, limit); err != nil {
			return nil, err
		}
		b := d.data[d.pos] != 0
		d.pos++
		return jayson.Bool(b), nil

	case TagDouble:
		bits, err := d.readUint64(limit)
		if err != nil {
			return nil, err
		}
		return jayson.Double(math.Float64frombits(bits)), nil

	case TagInt32:
		n, err := d.readInt32(limit)
		if err != nil {
			return nil, err
		}
		return jayson.Int32(n), nil

	case TagInt64:
		n, err := d.readUint64(limit)
		if err != nil {
			return nil, err
		}
		return jayson.Int64(int64(n)), nil

	case TagUint64:
		n, err := d.readUint64(limit)
		if err != nil {
			return nil, err
		}
		return jayson.Uint64(n), nil

	case TagString:
		n, err := d.readInt32(limit)
		if err != nil {
			return nil, err
		}
		if n < 1 {
			d.pos -= lengthSize
			return nil, d.fail(jayson.KindSyntax, "invalid string length %d", n)
		}
		if err := d.need(int(n), limit); err != nil {
			return nil, err
		}
		last := d.pos + int(n) - 1
		if d.data[last] != 0 {
			d.pos = last
			return nil, d.fail(jayson.KindSyntax, "string is not NUL-terminated")
		}
		s := string(d.data[d.pos:last])
		d.pos = last + 1
		return jayson.Str(s), nil

	case TagBinary:
		n, err := d.readInt32(limit)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			d.pos -= lengthSize
			return nil, d.fail(jayson.KindSyntax, "invalid binary length %d", n)
		}
		if err := d.need(1+int(n), limit); err != nil {
			return nil, err
		}
		subtype := d.data[d.pos]
		data := make([]byte, n)
		copy(data, d.data[d.pos+1:])
		d.pos += 1 + int(n)
		return jayson.Binary(subtype, data), nil

	case TagDocument:
		return d.readDocument(limit, false)

	case TagArray:
		return d.readDocument(limit, true)

	default:
		d.pos = tagPos
		return nil, d.fail(jayson.KindUnsupportedType, "unsupported type tag 0x%02x", byte(tag))
	}
}
