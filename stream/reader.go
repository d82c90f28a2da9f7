package stream

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Reader reads frames from an io.Reader.
type Reader struct {
	r          *bufio.Reader
	maxPayload int
	verifyCRC  bool
	logger     log.Logger

	offset int // bytes consumed so far
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithMaxPayload sets the maximum payload size (default: 64 MiB).
func WithMaxPayload(max int) ReaderOption {
	return func(r *Reader) {
		r.maxPayload = max
	}
}

// WithoutCRCVerification accepts frames whose CRC does not match.
func WithoutCRCVerification() ReaderOption {
	return func(r *Reader) {
		r.verifyCRC = false
	}
}

// WithLogger sets the logger for skipped header fields and CRC failures.
func WithLogger(logger log.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// NewReader creates a frame reader. CRCs are verified by default.
func NewReader(r io.Reader, opts ...ReaderOption) *Reader {
	reader := &Reader{
		r:          bufio.NewReader(r),
		maxPayload: MaxPayloadSize,
		verifyCRC:  true,
		logger:     log.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(reader)
	}
	return reader
}

// Next reads and returns the next frame.
// Returns io.EOF when no more frames are available.
func (r *Reader) Next() (*Frame, error) {
	start := r.offset

	headerLine, err := r.r.ReadString('\n')
	r.offset += len(headerLine)
	if err != nil {
		if err == io.EOF && headerLine == "" {
			return nil, io.EOF
		}
		return nil, errors.Wrap(err, "read header")
	}

	frame, payloadLen, err := r.parseHeader(headerLine, start)
	if err != nil {
		return nil, err
	}

	if payloadLen > r.maxPayload {
		return nil, &ParseError{Reason: "payload too large: " + strconv.Itoa(payloadLen) + " > " + strconv.Itoa(r.maxPayload), Offset: start}
	}

	if payloadLen > 0 {
		frame.Payload = make([]byte, payloadLen)
		n, err := io.ReadFull(r.r, frame.Payload)
		r.offset += n
		if err != nil {
			return nil, errors.Wrap(err, "read payload")
		}
	}

	// Consume trailing newline (optional at EOF)
	if b, err := r.r.ReadByte(); err == nil {
		if b == '\n' {
			r.offset++
		} else {
			// Put it back - it's part of the next frame
			_ = r.r.UnreadByte()
		}
	}

	if frame.CRC != nil {
		if computed := ComputeCRC(frame.Payload); computed != *frame.CRC {
			level.Warn(r.logger).Log("msg", "frame CRC mismatch", "sid", frame.SID, "seq", frame.Seq, "offset", start, "verify", r.verifyCRC)
			if r.verifyCRC {
				return nil, &CRCMismatchError{Expected: *frame.CRC, Got: computed}
			}
		}
	}

	return frame, nil
}

// parseHeader parses the @frame{...} header line and returns the frame
// and its declared payload length.
func (r *Reader) parseHeader(line string, offset int) (*Frame, int, error) {
	line = strings.TrimSpace(line)

	if !strings.HasPrefix(line, "@frame{") {
		return nil, 0, &ParseError{Reason: "expected @frame{", Offset: offset}
	}

	endIdx := strings.LastIndex(line, "}")
	if endIdx < 0 {
		return nil, 0, &ParseError{Reason: "missing closing }", Offset: offset}
	}

	content := line[len("@frame{"):endIdx]

	frame := &Frame{Version: Version}
	payloadLen := -1

	for _, pair := range strings.Fields(content) {
		key, val, ok := strings.Cut(pair, "=")
		if !ok {
			level.Debug(r.logger).Log("msg", "skipping malformed header field", "field", pair, "offset", offset)
			continue
		}

		switch key {
		case "v":
			v, err := strconv.ParseUint(val, 10, 8)
			if err != nil || uint8(v) != Version {
				return nil, 0, &ParseError{Reason: "unsupported version: " + val, Offset: offset}
			}
			frame.Version = uint8(v)

		case "sid":
			sid, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid sid", Offset: offset}
			}
			frame.SID = sid

		case "seq":
			seq, err := strconv.ParseUint(val, 10, 64)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid seq", Offset: offset}
			}
			frame.Seq = seq

		case "kind":
			kind, ok := ParseKind(val)
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid kind: " + val, Offset: offset}
			}
			frame.Kind = kind

		case "len":
			l, err := strconv.ParseUint(val, 10, 32)
			if err != nil {
				return nil, 0, &ParseError{Reason: "invalid len", Offset: offset}
			}
			payloadLen = int(l)

		case "crc":
			crc, ok := parseHex(strings.TrimPrefix(val, "crc32:"), 8)
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid crc: " + val, Offset: offset}
			}
			c := uint32(crc)
			frame.CRC = &c

		case "enc":
			if val != EncodingZstd {
				return nil, 0, &ParseError{Reason: "unsupported encoding: " + val, Offset: offset}
			}
			frame.Compressed = true

		case "root":
			root, ok := ParseRootShape(val)
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid root: " + val, Offset: offset}
			}
			frame.Root = root

		case "base":
			base, ok := parseHex(val, 16)
			if !ok {
				return nil, 0, &ParseError{Reason: "invalid base: " + val, Offset: offset}
			}
			frame.Base = &base

		case "final":
			frame.Final = val == "true" || val == "1"

		default:
			level.Debug(r.logger).Log("msg", "skipping unknown header field", "key", key, "offset", offset)
		}
	}

	if payloadLen < 0 {
		return nil, 0, &ParseError{Reason: "missing len", Offset: offset}
	}
	return frame, payloadLen, nil
}

// ReadAll reads all frames until EOF.
func (r *Reader) ReadAll() ([]*Frame, error) {
	var frames []*Frame
	for {
		frame, err := r.Next()
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return frames, err
		}
		frames = append(frames, frame)
	}
}
