package jayson

// WriteOptions configures the JSON text writer.
type WriteOptions struct {
	// Pretty puts each member and element on its own indented line
	Pretty bool `yaml:"pretty"`

	// Indent string for pretty mode (default: "  ")
	Indent string `yaml:"indent"`

	// BraceOnNewLine moves the opening bracket of a non-empty container
	// that is an object member onto the line after its key (pretty mode only)
	BraceOnNewLine bool `yaml:"brace_on_new_line"`

	// Precision is the number of fractional digits for doubles, 1..17.
	// Zero means DefaultPrecision.
	Precision int `yaml:"precision"`

	// EscapeUnicode writes 2- and 3-byte UTF-8 sequences as \uXXXX
	EscapeUnicode bool `yaml:"escape_unicode"`
}

// DefaultWriteOptions returns pretty output with two-space indent.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Pretty:    true,
		Indent:    "  ",
		Precision: DefaultPrecision,
	}
}

// CompactWriteOptions returns options for output without optional whitespace.
func CompactWriteOptions() WriteOptions {
	return WriteOptions{
		Indent:    "  ",
		Precision: DefaultPrecision,
	}
}

// SerializeText renders v as JSON text. The returned slice is owned by the
// caller.
func SerializeText(v *Value, opts WriteOptions) []byte {
	w := NewWriter(opts)
	w.Write(v)
	return w.buf.Detach()
}

// Writer renders Values as JSON text into a reusable buffer.
type Writer struct {
	opts      WriteOptions
	precision int
	buf       Buffer
}

// NewWriter creates a writer with the given options.
func NewWriter(opts WriteOptions) *Writer {
	if opts.Pretty && opts.Indent == "" {
		opts.Indent = "  "
	}
	return &Writer{opts: opts, precision: clampPrecision(opts.Precision)}
}

// Options returns the writer's options.
func (w *Writer) Options() WriteOptions {
	return w.opts
}

// Write renders v and returns the text. The slice aliases the writer's
// buffer and is valid until the next call to Write.
func (w *Writer) Write(v *Value) []byte {
	w.buf.Reset()
	w.emit(v, 0)
	return w.buf.Bytes()
}

func (w *Writer) emit(v *Value, depth int) {
	switch v.Type() {
	case TypeNull:
		w.buf.AppendString("null")

	case TypeBool:
		if v.boolVal {
			w.buf.AppendString("true")
		} else {
			w.buf.AppendString("false")
		}

	case TypeDouble:
		w.buf.appendWith(32, func(b []byte) []byte { return AppendDouble(b, v.f64, w.precision) })

	case TypeInt32, TypeInt64:
		w.buf.appendWith(20, func(b []byte) []byte { return AppendInt(b, v.i64) })

	case TypeUint64:
		w.buf.appendWith(20, func(b []byte) []byte { return AppendUint(b, v.u64) })

	case TypeString:
		w.emitString(v.str)

	case TypeBinary:
		// Blobs have no JSON form.
		w.buf.AppendString(`"<binary>"`)

	case TypeArray:
		w.emitArray(v, depth)

	case TypeObject:
		w.emitObject(v, depth)
	}
}

func (w *Writer) emitArray(v *Value, depth int) {
	if len(v.arr) == 0 {
		w.buf.AppendString("[]")
		return
	}

	w.buf.AppendByte('[')
	for i, elem := range v.arr {
		if i > 0 {
			w.buf.AppendByte(',')
		}
		if w.opts.Pretty {
			w.buf.AppendByte('\n')
			w.writeIndent(depth + 1)
		}
		w.emit(elem, depth+1)
	}
	if w.opts.Pretty {
		w.buf.AppendByte('\n')
		w.writeIndent(depth)
	}
	w.buf.AppendByte(']')
}

func (w *Writer) emitObject(v *Value, depth int) {
	if v.obj.Len() == 0 {
		w.buf.AppendString("{}")
		return
	}

	w.buf.AppendByte('{')
	for i, m := range v.obj.members {
		if i > 0 {
			w.buf.AppendByte(',')
		}
		if w.opts.Pretty {
			w.buf.AppendByte('\n')
			w.writeIndent(depth + 1)
		}

		w.emitString(m.Key)
		w.buf.AppendByte(':')
		if w.opts.Pretty {
			if w.opts.BraceOnNewLine && m.Value.Len() > 0 {
				w.buf.AppendByte('\n')
				w.writeIndent(depth + 1)
			} else {
				w.buf.AppendByte(' ')
			}
		}
		w.emit(m.Value, depth+1)
	}
	if w.opts.Pretty {
		w.buf.AppendByte('\n')
		w.writeIndent(depth)
	}
	w.buf.AppendByte('}')
}

func (w *Writer) writeIndent(depth int) {
	for i := 0; i < depth; i++ {
		w.buf.AppendString(w.opts.Indent)
	}
}

const hexDigits = "0123456789abcdef"

// emitString writes s quoted. Bytes are copied through unchanged apart from
// the JSON escapes, unless EscapeUnicode is set.
func (w *Writer) emitString(s string) {
	w.buf.Grow(len(s) + 2)
	w.buf.AppendByte('"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= 0x20 && c != '"' && c != '\\' && (c < 0x80 || !w.opts.EscapeUnicode) {
			i++
			continue
		}
		w.buf.AppendString(s[start:i])

		switch c {
		case '"':
			w.buf.AppendString(`\"`)
		case '\\':
			w.buf.AppendString(`\\`)
		case '\b':
			w.buf.AppendString(`\b`)
		case '\f':
			w.buf.AppendString(`\f`)
		case '\n':
			w.buf.AppendString(`\n`)
		case '\r':
			w.buf.AppendString(`\r`)
		case '\t':
			w.buf.AppendString(`\t`)
		default:
			if c < 0x20 {
				w.writeUnit(uint16(c))
				i++
				start = i
				continue
			}
			n := w.writeMultibyte(s[i:])
			i += n
			start = i
			continue
		}
		i++
		start = i
	}
	w.buf.AppendString(s[start:])
	w.buf.AppendByte('"')
}

// writeMultibyte escapes the UTF-8 sequence at the start of s and returns
// how many bytes it consumed. Two- and three-byte sequences become one
// \uXXXX escape; surrogate halves encoded as three bytes survive as their
// own code unit. Four-byte sequences and malformed bytes pass through.
func (w *Writer) writeMultibyte(s string) int {
	c := s[0]
	switch {
	case c&0xE0 == 0xC0 && len(s) >= 2 && isCont(s[1]):
		w.writeUnit(uint16(c&0x1F)<<6 | uint16(s[1]&0x3F))
		return 2
	case c&0xF0 == 0xE0 && len(s) >= 3 && isCont(s[1]) && isCont(s[2]):
		w.writeUnit(uint16(c&0x0F)<<12 | uint16(s[1]&0x3F)<<6 | uint16(s[2]&0x3F))
		return 3
	case c&0xF8 == 0xF0 && len(s) >= 4 && isCont(s[1]) && isCont(s[2]) && isCont(s[3]):
		w.buf.AppendString(s[:4])
		return 4
	}
	w.buf.AppendByte(c)
	return 1
}

func (w *Writer) writeUnit(u uint16) {
	w.buf.AppendString(`\u`)
	w.buf.AppendByte(hexDigits[u>>12&0xF])
	w.buf.AppendByte(hexDigits[u>>8&0xF])
	w.buf.AppendByte(hexDigits[u>>4&0xF])
	w.buf.AppendByte(hexDigits[u&0xF])
}

func isCont(c byte) bool { return c&0xC0 == 0x80 }
