package stream

import (
	"hash/crc32"
	"strconv"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"

	"github.com/Neumenon/jayson/jayson"
)

// ============================================================
// Integrity
// ============================================================

var crcTable = crc32.MakeTable(crc32.IEEE)

// ComputeCRC computes CRC-32 IEEE of a wire payload.
func ComputeCRC(data []byte) uint32 {
	return crc32.Checksum(data, crcTable)
}

// StateDigest returns the base digest of a state value.
func StateDigest(v *jayson.Value) uint64 {
	return jayson.Digest(v)
}

// parseHex parses exactly n lowercase or uppercase hex digits.
func parseHex(s string, n int) (uint64, bool) {
	if len(s) != n {
		return 0, false
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ============================================================
// Compression
// ============================================================

// getZstdEncoder and getZstdDecoder lazily initialize shared codecs. Only
// EncodeAll and DecodeAll are safe for concurrent use.
var getZstdEncoder = sync.OnceValues(func() (*zstd.Encoder, error) {
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
})

var getZstdDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	// Concurrency 0 uses GOMAXPROCS workers.
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0), zstd.WithDecoderMaxMemory(MaxPayloadSize))
})

func compress(p []byte) ([]byte, error) {
	enc, err := getZstdEncoder()
	if err != nil {
		return nil, errors.Wrap(err, "zstd encoder")
	}
	return enc.EncodeAll(p, nil), nil
}

func decompress(p []byte) ([]byte, error) {
	dec, err := getZstdDecoder()
	if err != nil {
		return nil, errors.Wrap(err, "zstd decoder")
	}
	out, err := dec.DecodeAll(p, nil)
	if err != nil {
		return nil, errors.Wrap(err, "decompress payload")
	}
	return out, nil
}
