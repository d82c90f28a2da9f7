package stream

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Neumenon/jayson/bson"
	"github.com/Neumenon/jayson/jayson"
)

// Writer writes frames to an io.Writer. It must not be shared between
// goroutines.
type Writer struct {
	w        io.Writer
	withCRC  bool // Whether to compute and include CRC
	compress bool // Whether WriteValue compresses payloads

	text *jayson.Writer
	bin  *bson.Encoder
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithCRC makes the writer compute a CRC for every frame with a payload.
func WithCRC() WriterOption {
	return func(w *Writer) {
		w.withCRC = true
	}
}

// WithCompression makes WriteValue compress payloads with zstd.
func WithCompression() WriterOption {
	return func(w *Writer) {
		w.compress = true
	}
}

// WithWriteOptions sets the formatting of text frames (default: compact).
func WithWriteOptions(opts jayson.WriteOptions) WriterOption {
	return func(w *Writer) {
		w.text = jayson.NewWriter(opts)
	}
}

// NewWriter creates a frame writer.
func NewWriter(w io.Writer, opts ...WriterOption) *Writer {
	writer := &Writer{
		w:    w,
		text: jayson.NewWriter(jayson.CompactWriteOptions()),
		bin:  bson.NewEncoder(),
	}
	for _, opt := range opts {
		opt(writer)
	}
	return writer
}

// WriteFrame writes a single frame. The payload is written as given.
//
// Format:
//
//	@frame{v=1 sid=N seq=N kind=K len=N [crc=X] [enc=zstd] [root=R] [base=X] [final=true]}\n
//	<payload bytes>\n
func (w *Writer) WriteFrame(f *Frame) error {
	var header strings.Builder
	header.WriteString("@frame{")

	// Required fields
	header.WriteString("v=")
	if f.Version == 0 {
		header.WriteByte('1')
	} else {
		header.WriteString(strconv.Itoa(int(f.Version)))
	}

	header.WriteString(" sid=")
	header.WriteString(strconv.FormatUint(f.SID, 10))

	header.WriteString(" seq=")
	header.WriteString(strconv.FormatUint(f.Seq, 10))

	header.WriteString(" kind=")
	header.WriteString(f.Kind.String())

	header.WriteString(" len=")
	header.WriteString(strconv.Itoa(len(f.Payload)))

	crc := f.CRC
	if crc == nil && w.withCRC && len(f.Payload) > 0 {
		computed := ComputeCRC(f.Payload)
		crc = &computed
	}
	if crc != nil {
		fmt.Fprintf(&header, " crc=%08x", *crc)
	}

	if f.Compressed {
		header.WriteString(" enc=" + EncodingZstd)
	}

	if f.Root != RootObject {
		header.WriteString(" root=")
		header.WriteString(f.Root.String())
	}

	if f.Base != nil {
		fmt.Fprintf(&header, " base=%016x", *f.Base)
	}

	if f.Final {
		header.WriteString(" final=true")
	}

	header.WriteString("}\n")

	if _, err := io.WriteString(w.w, header.String()); err != nil {
		return errors.Wrap(err, "write header")
	}

	if len(f.Payload) > 0 {
		if _, err := w.w.Write(f.Payload); err != nil {
			return errors.Wrap(err, "write payload")
		}
	}

	if _, err := io.WriteString(w.w, "\n"); err != nil {
		return errors.Wrap(err, "write trailing newline")
	}

	return nil
}

// encode builds the frame for v. Text frames use the writer's text
// options, binary frames the bson layout.
func (w *Writer) encode(sid, seq uint64, kind FrameKind, v *jayson.Value) (*Frame, error) {
	f := &Frame{Version: Version, SID: sid, Seq: seq, Kind: kind}
	switch kind {
	case KindText:
		f.Payload = w.text.Write(v)
	case KindBinary:
		f.Payload = w.bin.Encode(v)
		f.Root = rootShapeOf(v)
	default:
		return nil, errors.Errorf("cannot encode a value as a %s frame", kind)
	}

	if w.compress {
		compressed, err := compress(f.Payload)
		if err != nil {
			return nil, err
		}
		f.Payload = compressed
		f.Compressed = true
	}
	return f, nil
}

// WriteValue encodes v as a text or binary frame.
func (w *Writer) WriteValue(sid, seq uint64, kind FrameKind, v *jayson.Value) error {
	f, err := w.encode(sid, seq, kind, v)
	if err != nil {
		return err
	}
	return w.WriteFrame(f)
}

// WritePatch writes a value frame that applies on top of the given base
// state. Readers tracking state with a Cursor reject it when their state
// digest differs.
func (w *Writer) WritePatch(sid, seq uint64, kind FrameKind, v *jayson.Value, base uint64) error {
	f, err := w.encode(sid, seq, kind, v)
	if err != nil {
		return err
	}
	f.Base = &base
	return w.WriteFrame(f)
}

// WriteFinal writes the last value frame of a stream.
func (w *Writer) WriteFinal(sid, seq uint64, kind FrameKind, v *jayson.Value) error {
	f, err := w.encode(sid, seq, kind, v)
	if err != nil {
		return err
	}
	f.Final = true
	return w.WriteFrame(f)
}

// WriteErr writes an error frame.
func (w *Writer) WriteErr(sid, seq uint64, msg string) error {
	return w.WriteFrame(&Frame{
		Version: Version,
		SID:     sid,
		Seq:     seq,
		Kind:    KindErr,
		Payload: []byte(msg),
	})
}

// WritePing writes a ping frame.
func (w *Writer) WritePing(sid, seq uint64) error {
	return w.WriteFrame(&Frame{
		Version: Version,
		SID:     sid,
		Seq:     seq,
		Kind:    KindPing,
	})
}
