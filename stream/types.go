// Package stream carries encoded jayson values over a byte stream.
//
// Each frame is a one-line text header followed by the payload:
//
//	@frame{v=1 sid=N seq=N kind=K len=N [crc=X] [enc=zstd] [root=R] [base=X] [final=true]}\n
//	<payload bytes>\n
//
// The header provides:
//   - Message boundaries (len)
//   - Multiplexing via stream IDs (sid)
//   - Ordering via sequence numbers (seq)
//   - Integrity via optional CRC-32 of the wire payload
//   - Optional zstd compression of the payload (enc)
//   - Optional digest of the receiver's expected state (base)
//
// Text frames hold JSON, binary frames hold the bson layout. The bson layout
// has no root tag, so binary frames of an array or a scalar say so with
// root=array or root=scalar.
package stream

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/Neumenon/jayson/bson"
	"github.com/Neumenon/jayson/jayson"
)

// Version is the frame protocol version.
const Version uint8 = 1

// FrameKind indicates how a frame's payload is encoded.
type FrameKind uint8

const (
	KindText   FrameKind = 0 // JSON text value
	KindBinary FrameKind = 1 // bson-encoded value
	KindErr    FrameKind = 2 // UTF-8 error message
	KindPing   FrameKind = 3 // Keepalive, no payload
)

// String returns the kind name.
func (k FrameKind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBinary:
		return "binary"
	case KindErr:
		return "err"
	case KindPing:
		return "ping"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// ParseKind parses a kind name or its numeric value.
func ParseKind(s string) (FrameKind, bool) {
	switch s {
	case "text", "0":
		return KindText, true
	case "binary", "1":
		return KindBinary, true
	case "err", "2":
		return KindErr, true
	case "ping", "3":
		return KindPing, true
	default:
		return 0, false
	}
}

// EncodingZstd is the enc= value of a zstd-compressed payload.
const EncodingZstd = "zstd"

// RootShape is the root of a binary payload.
type RootShape uint8

const (
	RootObject RootShape = iota // default, not written
	RootArray
	RootScalar // wrapped under bson.RootKey
)

// String returns the root= value.
func (r RootShape) String() string {
	switch r {
	case RootObject:
		return "object"
	case RootArray:
		return "array"
	case RootScalar:
		return "scalar"
	default:
		return fmt.Sprintf("unknown(%d)", r)
	}
}

// ParseRootShape parses a root= value.
func ParseRootShape(s string) (RootShape, bool) {
	switch s {
	case "object":
		return RootObject, true
	case "array":
		return RootArray, true
	case "scalar":
		return RootScalar, true
	default:
		return 0, false
	}
}

func rootShapeOf(v *jayson.Value) RootShape {
	switch v.Type() {
	case jayson.TypeObject:
		return RootObject
	case jayson.TypeArray:
		return RootArray
	default:
		return RootScalar
	}
}

// Frame is a single frame. Payload holds the bytes as they appear on the
// wire, compressed when Compressed is set.
type Frame struct {
	// Required fields
	Version uint8
	SID     uint64
	Seq     uint64
	Kind    FrameKind
	Payload []byte

	// Optional fields
	CRC        *uint32 // CRC-32 of Payload
	Base       *uint64 // jayson.Digest of the state this frame applies to
	Root       RootShape // Root of a binary payload
	Compressed bool
	Final      bool // End of stream for this SID
}

// HasCRC returns true if CRC is present.
func (f *Frame) HasCRC() bool {
	return f.CRC != nil
}

// HasBase returns true if a base digest is present.
func (f *Frame) HasBase() bool {
	return f.Base != nil
}

// Body returns the payload with compression removed.
func (f *Frame) Body() ([]byte, error) {
	if !f.Compressed {
		return f.Payload, nil
	}
	return decompress(f.Payload)
}

// Value decodes the payload of a text or binary frame.
func (f *Frame) Value() (*jayson.Value, error) {
	body, err := f.Body()
	if err != nil {
		return nil, err
	}
	switch f.Kind {
	case KindText:
		v, err := jayson.ParseText(body)
		if err != nil {
			return nil, errors.Wrapf(err, "sid=%d seq=%d", f.SID, f.Seq)
		}
		return v, nil
	case KindBinary:
		v, err := f.decodeBinary(body)
		if err != nil {
			return nil, errors.Wrapf(err, "sid=%d seq=%d", f.SID, f.Seq)
		}
		return v, nil
	default:
		return nil, errors.Errorf("frame kind %s carries no value", f.Kind)
	}
}

func (f *Frame) decodeBinary(body []byte) (*jayson.Value, error) {
	switch f.Root {
	case RootArray:
		return bson.UnmarshalArray(body)
	case RootScalar:
		doc, err := bson.Unmarshal(body)
		if err != nil {
			return nil, err
		}
		if doc.Len() != 1 || !doc.AsObject().Has(bson.RootKey) {
			return nil, errors.Errorf("scalar root must be a single %q member", bson.RootKey)
		}
		return doc.Key(bson.RootKey).Take(), nil
	default:
		return bson.Unmarshal(body)
	}
}

// MaxPayloadSize is the default maximum payload size (64 MiB).
const MaxPayloadSize = 64 * 1024 * 1024

// ParseError reports a malformed frame header.
type ParseError struct {
	Reason string
	Offset int
}

func (e *ParseError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("stream: %s at offset %d", e.Reason, e.Offset)
	}
	return fmt.Sprintf("stream: %s", e.Reason)
}

// CRCMismatchError is returned when CRC verification fails.
type CRCMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *CRCMismatchError) Error() string {
	return fmt.Sprintf("stream: CRC mismatch: expected %08x, got %08x", e.Expected, e.Got)
}

// BaseMismatchError is returned when a frame's base digest does not match
// the state a Cursor holds for its stream.
type BaseMismatchError struct {
	Expected uint64
	Got      uint64
}

func (e *BaseMismatchError) Error() string {
	return fmt.Sprintf("stream: base mismatch: expected %016x, got %016x", e.Expected, e.Got)
}
