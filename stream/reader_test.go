package stream

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Neumenon/jayson/bson"
	"github.com/Neumenon/jayson/jayson"
)

// ============================================================
// Reader Tests
// ============================================================

func TestReader_MinimalFrame(t *testing.T) {
	r := NewReader(strings.NewReader("@frame{v=1 sid=0 seq=0 kind=text len=2}\n{}\n"))

	frame, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), frame.Version)
	assert.Equal(t, KindText, frame.Kind)
	assert.Equal(t, []byte("{}"), frame.Payload)
	assert.False(t, frame.HasCRC())
	assert.False(t, frame.HasBase())

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_OptionalFields(t *testing.T) {
	input := "@frame{v=1 sid=5 seq=2 kind=binary len=0 crc=crc32:00000000 base=00000000000000ff final=true}\n\n"
	frame, err := NewReader(strings.NewReader(input)).Next()
	require.NoError(t, err)

	assert.Equal(t, uint64(5), frame.SID)
	assert.Equal(t, uint64(2), frame.Seq)
	assert.Equal(t, KindBinary, frame.Kind)
	require.True(t, frame.HasCRC())
	assert.Equal(t, uint32(0), *frame.CRC)
	require.True(t, frame.HasBase())
	assert.Equal(t, uint64(0xff), *frame.Base)
	assert.True(t, frame.Final)
}

func TestReader_PayloadWithNewlines(t *testing.T) {
	payload := "{\n  \"a\": \"}\"\n}"
	input := "@frame{v=1 sid=1 seq=1 kind=text len=14}\n" + payload + "\n"
	frame, err := NewReader(strings.NewReader(input)).Next()
	require.NoError(t, err)
	assert.Equal(t, payload, string(frame.Payload))

	v, err := frame.Value()
	require.NoError(t, err)
	assert.Equal(t, "}", v.Get("a").AsString())
}

func TestReader_NoTrailingNewlineAtEOF(t *testing.T) {
	r := NewReader(strings.NewReader("@frame{v=1 sid=1 seq=1 kind=text len=4}\nnull"))
	frame, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "null", string(frame.Payload))

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestReader_MultipleFrames(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteValue(1, 1, KindText, jayson.Int32(1)))
	require.NoError(t, w.WritePing(1, 2))
	require.NoError(t, w.WriteErr(1, 3, "boom"))
	require.NoError(t, w.WriteFinal(1, 4, KindBinary, jayson.Object(jayson.M("done", jayson.Bool(true)))))

	frames, err := NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, frames, 4)

	kinds := make([]FrameKind, len(frames))
	for i, f := range frames {
		kinds[i] = f.Kind
		assert.Equal(t, uint64(i+1), f.Seq)
	}
	assert.Equal(t, []FrameKind{KindText, KindPing, KindErr, KindBinary}, kinds)
	assert.Equal(t, "boom", string(frames[2].Payload))
	assert.True(t, frames[3].Final)
}

func TestReader_RootShape(t *testing.T) {
	frame, err := NewReader(strings.NewReader("@frame{v=1 sid=1 seq=1 kind=binary len=0 root=array}\n\n")).Next()
	require.NoError(t, err)
	assert.Equal(t, RootArray, frame.Root)

	for _, s := range []string{"object", "array", "scalar"} {
		r, ok := ParseRootShape(s)
		require.True(t, ok)
		assert.Equal(t, s, r.String())
	}
}

func TestReader_NumericKind(t *testing.T) {
	frame, err := NewReader(strings.NewReader("@frame{v=1 sid=0 seq=0 kind=3 len=0}\n\n")).Next()
	require.NoError(t, err)
	assert.Equal(t, KindPing, frame.Kind)
}

func TestReader_HeaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		reason string
	}{
		{"not a frame", "hello\n", "expected @frame{"},
		{"unclosed", "@frame{v=1 len=0\n", "missing closing }"},
		{"missing len", "@frame{v=1 sid=0 seq=0 kind=text}\n", "missing len"},
		{"bad version", "@frame{v=2 len=0}\n", "unsupported version: 2"},
		{"bad kind", "@frame{v=1 kind=patch len=0}\n", "invalid kind: patch"},
		{"bad sid", "@frame{v=1 sid=-1 len=0}\n", "invalid sid"},
		{"bad seq", "@frame{v=1 seq=x len=0}\n", "invalid seq"},
		{"bad len", "@frame{v=1 len=abc}\n", "invalid len"},
		{"short crc", "@frame{v=1 len=0 crc=abc}\n", "invalid crc: abc"},
		{"bad base", "@frame{v=1 len=0 base=zz}\n", "invalid base: zz"},
		{"bad encoding", "@frame{v=1 len=0 enc=gzip}\n", "unsupported encoding: gzip"},
		{"bad root", "@frame{v=1 len=0 root=tree}\n", "invalid root: tree"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input)).Next()
			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, tt.reason, perr.Reason)
			assert.Equal(t, 0, perr.Offset)
		})
	}
}

func TestReader_ErrorOffset(t *testing.T) {
	first := "@frame{v=1 sid=0 seq=0 kind=text len=2}\n{}\n"
	r := NewReader(strings.NewReader(first + "garbage\n"))

	_, err := r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, len(first), perr.Offset)
	assert.Equal(t, "stream: expected @frame{ at offset 43", err.Error())
}

func TestReader_SkipsUnknownFields(t *testing.T) {
	var logs bytes.Buffer
	logger := level.NewFilter(log.NewLogfmtLogger(&logs), level.AllowDebug())

	input := "@frame{v=1 sid=1 seq=1 kind=text len=4 ttl=30 junk}\nnull\n"
	frame, err := NewReader(strings.NewReader(input), WithLogger(logger)).Next()
	require.NoError(t, err)
	assert.Equal(t, "null", string(frame.Payload))

	assert.Contains(t, logs.String(), `msg="skipping unknown header field" key=ttl`)
	assert.Contains(t, logs.String(), `msg="skipping malformed header field" field=junk`)
}

func TestReader_CRC(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, WithCRC()).WriteValue(1, 1, KindText, jayson.Str("x")))

	frame, err := NewReader(&buf).Next()
	require.NoError(t, err)
	require.True(t, frame.HasCRC())
	assert.Equal(t, ComputeCRC([]byte(`"x"`)), *frame.CRC)
}

func TestReader_CRCMismatch(t *testing.T) {
	input := "@frame{v=1 sid=1 seq=1 kind=text len=2 crc=00000000}\n{}\n"

	_, err := NewReader(strings.NewReader(input)).Next()
	var crcErr *CRCMismatchError
	require.ErrorAs(t, err, &crcErr)
	assert.Equal(t, uint32(0), crcErr.Expected)
	assert.Equal(t, ComputeCRC([]byte("{}")), crcErr.Got)
}

func TestReader_WithoutCRCVerification(t *testing.T) {
	var logs bytes.Buffer
	input := "@frame{v=1 sid=1 seq=1 kind=text len=2 crc=00000000}\n{}\n"

	frame, err := NewReader(strings.NewReader(input),
		WithoutCRCVerification(),
		WithLogger(log.NewLogfmtLogger(&logs)),
	).Next()
	require.NoError(t, err)
	assert.Equal(t, "{}", string(frame.Payload))
	assert.Contains(t, logs.String(), `level=warn msg="frame CRC mismatch"`)
}

func TestReader_PayloadTooLarge(t *testing.T) {
	input := "@frame{v=1 sid=0 seq=0 kind=text len=100}\n"

	_, err := NewReader(strings.NewReader(input), WithMaxPayload(10)).Next()
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "payload too large: 100 > 10", perr.Reason)
}

func TestReader_TruncatedPayload(t *testing.T) {
	input := "@frame{v=1 sid=0 seq=0 kind=text len=10}\n{}"

	_, err := NewReader(strings.NewReader(input)).Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestReader_TruncatedHeader(t *testing.T) {
	_, err := NewReader(strings.NewReader("@frame{v=1")).Next()
	require.Error(t, err)
	assert.ErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "read header")
}

// ============================================================
// Round Trip Tests
// ============================================================

func sampleValue() *jayson.Value {
	return jayson.Object(
		jayson.M("name", jayson.Str("sensor-1")),
		jayson.M("reading", jayson.Double(21.5)),
		jayson.M("count", jayson.Int64(1<<40)),
		jayson.M("tags", jayson.Array(jayson.Str("a"), jayson.Str("b"))),
		jayson.M("raw", jayson.Binary(0, []byte{1, 2, 3})),
	)
}

func TestRoundtrip_Binary(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf, WithCRC()).WriteValue(1, 1, KindBinary, sampleValue()))

	frame, err := NewReader(&buf).Next()
	require.NoError(t, err)

	v, err := frame.Value()
	require.NoError(t, err)
	assert.True(t, jayson.Identical(sampleValue(), v), "got %s", v)
}

func TestRoundtrip_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(&buf).WriteValue(1, 1, KindText, sampleValue()))

	frame, err := NewReader(&buf).Next()
	require.NoError(t, err)

	v, err := frame.Value()
	require.NoError(t, err)
	assert.Equal(t, "sensor-1", v.Get("name").AsString())
	assert.Equal(t, 21.5, v.Get("reading").AsFloat64())
	assert.Equal(t, int64(1<<40), v.Get("count").AsInt64())
	assert.Equal(t, "<binary>", v.Get("raw").AsString())
}

func TestRoundtrip_Compressed(t *testing.T) {
	for _, kind := range []FrameKind{KindText, KindBinary} {
		t.Run(kind.String(), func(t *testing.T) {
			var buf bytes.Buffer
			w := NewWriter(&buf, WithCompression(), WithCRC())
			require.NoError(t, w.WriteValue(9, 1, kind, sampleValue()))

			frame, err := NewReader(&buf).Next()
			require.NoError(t, err)
			assert.True(t, frame.Compressed)

			body, err := frame.Body()
			require.NoError(t, err)
			assert.NotEqual(t, frame.Payload, body)

			v, err := frame.Value()
			require.NoError(t, err)
			assert.Equal(t, "sensor-1", v.Get("name").AsString())
			assert.Equal(t, 2, v.Get("tags").Len())
		})
	}
}

func TestFrame_ValueErrors(t *testing.T) {
	_, err := (&Frame{Kind: KindPing}).Value()
	assert.EqualError(t, err, "frame kind ping carries no value")

	_, err = (&Frame{SID: 2, Seq: 3, Kind: KindText, Payload: []byte("{")}).Value()
	require.Error(t, err)
	assert.ErrorIs(t, err, jayson.ErrTruncated)
	assert.Contains(t, err.Error(), "sid=2 seq=3")

	_, err = (&Frame{Kind: KindBinary, Payload: []byte{1, 2}}).Value()
	assert.ErrorIs(t, err, jayson.ErrDecodeBounds)

	// scalar root without the wrapping member
	_, err = (&Frame{Kind: KindBinary, Root: RootScalar, Payload: bson.Marshal(jayson.Object(jayson.M("x", jayson.Null())))}).Value()
	assert.EqualError(t, err, `sid=0 seq=0: scalar root must be a single "value" member`)

	_, err = (&Frame{Kind: KindText, Payload: []byte("not zstd"), Compressed: true}).Value()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decompress payload")
}
