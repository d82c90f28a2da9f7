package jayson

import (
	"fmt"
	"math"
)

// Reader parses JSON text into a Value tree in a single recursive-descent
// pass. A Reader keeps a scratch buffer for string decoding across calls;
// it must not be used by two goroutines at once.
type Reader struct {
	scratch Buffer
	data    []byte
	pos     int
	line    int
}

// NewReader creates a reader.
func NewReader() *Reader {
	return &Reader{}
}

// ParseText parses one JSON value from data.
func ParseText(data []byte) (*Value, error) {
	return NewReader().Parse(data)
}

// ParseString parses one JSON value from s.
func ParseString(s string) (*Value, error) {
	return ParseText([]byte(s))
}

// Parse parses one JSON value from data. Only whitespace may follow it.
// On failure the returned error is a *ParseError and no value is returned.
func (r *Reader) Parse(data []byte) (*Value, error) {
	r.data = data
	r.pos = 0
	r.line = 1
	defer func() { r.data = nil }()

	v, err := r.readValue()
	if err != nil {
		return nil, err
	}
	for r.pos < len(r.data) {
		switch r.data[r.pos] {
		case '\n':
			r.line++
		case ' ', '\t', '\r':
		default:
			return nil, r.fail(KindSyntax, "unexpected trailing characters")
		}
		r.pos++
	}
	return v, nil
}

func (r *Reader) fail(kind ErrorKind, format string, args ...interface{}) error {
	return &ParseError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    r.line,
		Offset:  r.pos,
	}
}

// skipSpace advances past whitespace. Running out of input is an error:
// every caller still expects a token.
func (r *Reader) skipSpace(what string) error {
	for r.pos < len(r.data) {
		c := r.data[r.pos]
		if c == '\n' {
			r.line++
		} else if c != ' ' && c != '\t' && c != '\r' {
			return nil
		}
		r.pos++
	}
	return r.fail(KindTruncated, "unexpected end of %s", what)
}

func (r *Reader) readValue() (*Value, error) {
	if err := r.skipSpace("document"); err != nil {
		return nil, err
	}
	switch r.data[r.pos] {
	case '{':
		return r.readObject()
	case '[':
		return r.readArray()
	case '"':
		s, err := r.readString()
		if err != nil {
			return nil, err
		}
		return Str(s), nil
	case 'n':
		if err := r.expectLiteral("null"); err != nil {
			return nil, err
		}
		return Null(), nil
	case 't':
		if err := r.expectLiteral("true"); err != nil {
			return nil, err
		}
		return Bool(true), nil
	case 'f':
		if err := r.expectLiteral("false"); err != nil {
			return nil, err
		}
		return Bool(false), nil
	default:
		return r.readNumber()
	}
}

func (r *Reader) expectLiteral(lit string) error {
	for i := 0; i < len(lit); i++ {
		if r.pos >= len(r.data) {
			return r.fail(KindTruncated, "unexpected end of literal %q", lit)
		}
		if r.data[r.pos] != lit[i] {
			return r.fail(KindSyntax, "expected %q", lit)
		}
		r.pos++
	}
	return nil
}

func (r *Reader) readObject() (*Value, error) {
	r.pos++ // consume {
	v := New(TypeObject)
	for {
		if err := r.skipSpace("object"); err != nil {
			return nil, err
		}
		switch r.data[r.pos] {
		case '}':
			r.pos++
			return v, nil
		case '"':
		default:
			return nil, r.fail(KindSyntax, "expected quoted pair key")
		}

		key, err := r.readString()
		if err != nil {
			return nil, err
		}
		if err := r.skipSpace("object"); err != nil {
			return nil, err
		}
		if r.data[r.pos] != ':' {
			return nil, r.fail(KindSyntax, "expected ':' after pair key")
		}
		r.pos++

		member, err := r.readValue()
		if err != nil {
			return nil, err
		}
		v.obj.Set(key, member)

		if err := r.skipSpace("object"); err != nil {
			return nil, err
		}
		switch r.data[r.pos] {
		case ',':
			r.pos++
		case '}':
			r.pos++
			return v, nil
		default:
			return nil, r.fail(KindSyntax, "expected ',' or '}' after pair value")
		}
	}
}

func (r *Reader) readArray() (*Value, error) {
	r.pos++ // consume [
	v := New(TypeArray)
	for {
		if err := r.skipSpace("array"); err != nil {
			return nil, err
		}
		if r.data[r.pos] == ']' {
			r.pos++
			return v, nil
		}

		elem, err := r.readValue()
		if err != nil {
			return nil, err
		}
		v.arr = append(v.arr, elem)

		if err := r.skipSpace("array"); err != nil {
			return nil, err
		}
		switch r.data[r.pos] {
		case ',':
			r.pos++
		case ']':
			r.pos++
			return v, nil
		default:
			return nil, r.fail(KindSyntax, "expected ',' or ']' after array element")
		}
	}
}

// readString reads a quoted string starting at the opening quote. Strings
// without escapes are sliced straight from the input; the rest are
// assembled in the scratch buffer.
func (r *Reader) readString() (string, error) {
	r.pos++ // consume "
	start := r.pos
	escaped := false
	for r.pos < len(r.data) {
		switch r.data[r.pos] {
		case '"':
			end := r.pos
			r.pos++
			if !escaped {
				return string(r.data[start:end]), nil
			}
			r.scratch.Append(r.data[start:end])
			return r.scratch.String(), nil
		case '\\':
			if !escaped {
				escaped = true
				r.scratch.Reset()
			}
			r.scratch.Append(r.data[start:r.pos])
			if err := r.readEscape(); err != nil {
				return "", err
			}
			start = r.pos
		case '\n':
			r.line++
			r.pos++
		default:
			r.pos++
		}
	}
	return "", r.fail(KindTruncated, "unexpected end of string")
}

func (r *Reader) readEscape() error {
	r.pos++ // consume backslash
	if r.pos >= len(r.data) {
		return r.fail(KindTruncated, "unexpected end of escaped symbol")
	}
	c := r.data[r.pos]
	switch c {
	case '"', '\\', '/':
		r.scratch.AppendByte(c)
	case 'b':
		r.scratch.AppendByte('\b')
	case 'f':
		r.scratch.AppendByte('\f')
	case 'n':
		r.scratch.AppendByte('\n')
	case 'r':
		r.scratch.AppendByte('\r')
	case 't':
		r.scratch.AppendByte('\t')
	case 'u':
		r.pos++
		return r.readUnicode()
	default:
		return r.fail(KindInvalidEscape, "invalid escaped symbol %q", c)
	}
	r.pos++
	return nil
}

// readUnicode decodes the four hex digits of a \u escape and appends the
// 16-bit code unit as UTF-8. Surrogate halves are encoded individually.
func (r *Reader) readUnicode() error {
	var unit uint16
	for i := 0; i < 4; i++ {
		if r.pos >= len(r.data) {
			return r.fail(KindTruncated, "unexpected end of unicode escape")
		}
		d := hexValue(r.data[r.pos])
		if d < 0 {
			return r.fail(KindInvalidHex, "invalid hex digit %q", r.data[r.pos])
		}
		unit = unit<<4 | uint16(d)
		r.pos++
	}
	r.scratch.appendWith(3, func(b []byte) []byte { return appendUnit(b, unit) })
	return nil
}

// appendUnit encodes a UTF-16 code unit as 1-3 bytes of UTF-8. Unlike
// utf8.AppendRune it keeps surrogate halves instead of replacing them.
func appendUnit(b []byte, u uint16) []byte {
	switch {
	case u < 0x80:
		return append(b, byte(u))
	case u < 0x800:
		return append(b, 0xC0|byte(u>>6), 0x80|byte(u&0x3F))
	default:
		return append(b, 0xE0|byte(u>>12), 0x80|byte(u>>6&0x3F), 0x80|byte(u&0x3F))
	}
}

func hexValue(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c - 'a' + 10)
	case c >= 'A' && c <= 'F':
		return int(c - 'A' + 10)
	default:
		return -1
	}
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// readNumber accumulates the decimal mantissa and a power-of-ten shift.
// Integers without fraction or exponent keep an integer sub-kind:
// magnitude below 2^31 is int32, larger non-negative is uint64, larger
// negative is int64. Anything else, including integers past the 64-bit
// range, becomes a double.
func (r *Reader) readNumber() (*Value, error) {
	neg := false
	switch r.data[r.pos] {
	case '-':
		neg = true
		r.pos++
	case '+':
		r.pos++
	}
	if err := r.expectDigit("invalid numeric value"); err != nil {
		return nil, err
	}

	var mant uint64
	shift := 0
	overflow := false
	isFloat := false

	for r.pos < len(r.data) && isDigit(r.data[r.pos]) {
		d := uint64(r.data[r.pos] - '0')
		if overflow || mant > (math.MaxUint64-d)/10 {
			overflow = true
			shift++
		} else {
			mant = mant*10 + d
		}
		r.pos++
	}

	if r.pos < len(r.data) && r.data[r.pos] == '.' {
		isFloat = true
		r.pos++
		if err := r.expectDigit("expected digit after decimal point"); err != nil {
			return nil, err
		}
		for r.pos < len(r.data) && isDigit(r.data[r.pos]) {
			d := uint64(r.data[r.pos] - '0')
			if !overflow && mant <= (math.MaxUint64-d)/10 {
				mant = mant*10 + d
				shift--
			} else {
				overflow = true
			}
			r.pos++
		}
	}

	if r.pos < len(r.data) && (r.data[r.pos] == 'e' || r.data[r.pos] == 'E') {
		isFloat = true
		r.pos++
		expNeg := false
		if r.pos < len(r.data) && (r.data[r.pos] == '-' || r.data[r.pos] == '+') {
			expNeg = r.data[r.pos] == '-'
			r.pos++
		}
		if err := r.expectDigit("expected digit in exponent"); err != nil {
			return nil, err
		}
		exp := 0
		for r.pos < len(r.data) && isDigit(r.data[r.pos]) {
			if exp < maxExponent {
				exp = exp*10 + int(r.data[r.pos]-'0')
			}
			r.pos++
		}
		if expNeg {
			shift -= exp
		} else {
			shift += exp
		}
	}

	if !isFloat && !overflow {
		switch {
		case mant < 1<<31:
			n := int32(mant)
			if neg {
				n = -n
			}
			return Int32(n), nil
		case !neg:
			return Uint64(mant), nil
		case mant < 1<<63:
			return Int64(-int64(mant)), nil
		case mant == 1<<63:
			return Int64(math.MinInt64), nil
		}
	}

	f := scaleMantissa(mant, shift)
	if neg {
		f = -f
	}
	return Double(f), nil
}

func (r *Reader) expectDigit(msg string) error {
	if r.pos >= len(r.data) {
		return r.fail(KindTruncated, "unexpected end of number")
	}
	if !isDigit(r.data[r.pos]) {
		return r.fail(KindSyntax, "%s", msg)
	}
	return nil
}
