package jayson

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors, one per ErrorKind. A *ParseError unwraps to the sentinel
// of its kind so callers can use errors.Is.
var (
	ErrSyntax          = errors.New("syntax error")
	ErrTruncated       = errors.New("truncated input")
	ErrInvalidEscape   = errors.New("invalid escape")
	ErrInvalidHex      = errors.New("invalid hex digit")
	ErrDecodeBounds    = errors.New("read out of bounds")
	ErrUnsupportedType = errors.New("unsupported type tag")
)

// ErrorKind classifies a decoding failure.
type ErrorKind uint8

const (
	KindSyntax          ErrorKind = iota + 1 // malformed token sequence
	KindTruncated                            // input ended mid-token
	KindInvalidEscape                        // unknown backslash escape
	KindInvalidHex                           // bad digit in \uXXXX
	KindDecodeBounds                         // binary read past the buffer
	KindUnsupportedType                      // unknown binary type tag
)

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindSyntax:
		return "syntax"
	case KindTruncated:
		return "truncated"
	case KindInvalidEscape:
		return "invalid-escape"
	case KindInvalidHex:
		return "invalid-hex"
	case KindDecodeBounds:
		return "decode-bounds"
	case KindUnsupportedType:
		return "unsupported-type"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindSyntax:
		return ErrSyntax
	case KindTruncated:
		return ErrTruncated
	case KindInvalidEscape:
		return ErrInvalidEscape
	case KindInvalidHex:
		return ErrInvalidHex
	case KindDecodeBounds:
		return ErrDecodeBounds
	case KindUnsupportedType:
		return ErrUnsupportedType
	default:
		return nil
	}
}

// ParseError is the single diagnostic returned when decoding stops.
// Text decoding fills Line (1-based); binary decoding fills Offset and
// leaves Line at zero.
type ParseError struct {
	Kind    ErrorKind
	Message string
	Line    int
	Offset  int
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("jayson: %s at line %d", e.Message, e.Line)
	}
	return fmt.Sprintf("jayson: %s at offset %d", e.Message, e.Offset)
}

// Unwrap returns the sentinel error for the kind.
func (e *ParseError) Unwrap() error {
	return e.Kind.sentinel()
}

// KindOf returns the kind of a *ParseError anywhere in err's chain, or zero.
func KindOf(err error) ErrorKind {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
