// Package coding holds the byte-level wire primitives shared by the batch
// encoding and the journal: little-endian fixed-width fields, LEB128 varints,
// and length-prefixed varstrings.
package coding

import "encoding/binary"

// PutFixed32 writes v little-endian into dst[0:4].
func PutFixed32(dst []byte, v uint32) {
	binary.LittleEndian.PutUint32(dst, v)
}

// PutFixed64 writes v little-endian into dst[0:8].
func PutFixed64(dst []byte, v uint64) {
	binary.LittleEndian.PutUint64(dst, v)
}

// Fixed32 reads a little-endian uint32 from src[0:4].
func Fixed32(src []byte) uint32 {
	return binary.LittleEndian.Uint32(src)
}

// Fixed64 reads a little-endian uint64 from src[0:8].
func Fixed64(src []byte) uint64 {
	return binary.LittleEndian.Uint64(src)
}

// AppendUvarint appends v in varint form and returns the extended slice.
func AppendUvarint(dst []byte, v uint64) []byte {
	return binary.AppendUvarint(dst, v)
}

// GetUvarint decodes a varint from the front of buf. On success it returns
// the value and the remainder of buf past the varint. A truncated or
// overlong varint returns ok=false with buf untouched.
func GetUvarint(buf []byte) (v uint64, rest []byte, ok bool) {
	v, n := binary.Uvarint(buf)
	if n <= 0 {
		return 0, buf, false
	}
	return v, buf[n:], true
}

// AppendVarstring appends len(b) as a varint followed by b verbatim.
func AppendVarstring(dst, b []byte) []byte {
	dst = binary.AppendUvarint(dst, uint64(len(b)))
	return append(dst, b...)
}

// GetVarstring decodes a length-prefixed string from the front of buf.
// It fails when fewer bytes remain than the length prefix declares.
// The returned string aliases buf.
func GetVarstring(buf []byte) (s, rest []byte, ok bool) {
	n, rest, ok := GetUvarint(buf)
	if !ok || uint64(len(rest)) < n {
		return nil, buf, false
	}
	return rest[:n], rest[n:], true
}
