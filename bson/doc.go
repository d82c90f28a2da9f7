// Package bson encodes jayson Values in a compact BSON-like binary format.
//
// # Layout
//
// A document or array is
//
//	int32 total_length | (uint8 tag, cstring key, payload)* | 0x00
//
// where total_length counts itself and the terminator. All integers are
// little-endian. Array keys are the decimal element index; the decoder
// ignores them and relies on position.
//
// # Tags
//
//	0x01 double   8-byte IEEE 754
//	0x02 string   int32 length (incl. NUL), bytes, 0x00
//	0x03 document nested document
//	0x04 array    nested document with index keys
//	0x05 binary   int32 length, subtype byte, bytes
//	0x08 bool     one byte
//	0x0A null     no payload
//	0x10 int32
//	0x11 uint64   non-standard; strict BSON readers see a timestamp
//	0x12 int64
//
// Every numeric sub-kind has its own tag, so a round trip keeps the exact
// type of each value.
package bson
