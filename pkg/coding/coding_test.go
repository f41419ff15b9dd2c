package coding

import (
	"bytes"
	"testing"
)

func TestFixedRoundTrip(t *testing.T) {
	buf := make([]byte, 12)
	PutFixed64(buf[0:8], 0xDEADBEEF01234567)
	PutFixed32(buf[8:12], 42)

	if got := Fixed64(buf[0:8]); got != 0xDEADBEEF01234567 {
		t.Fatalf("Fixed64: expected 0xDEADBEEF01234567, got %#x", got)
	}
	if got := Fixed32(buf[8:12]); got != 42 {
		t.Fatalf("Fixed32: expected 42, got %d", got)
	}
}

func TestVarstringRoundTrip(t *testing.T) {
	cases := [][]byte{
		nil,
		{},
		[]byte("a"),
		[]byte("hello world"),
		bytes.Repeat([]byte{0xAB}, 300), // length prefix needs two varint bytes
	}

	var buf []byte
	for _, c := range cases {
		buf = AppendVarstring(buf, c)
	}

	rest := buf
	for i, c := range cases {
		var (
			s  []byte
			ok bool
		)
		s, rest, ok = GetVarstring(rest)
		if !ok {
			t.Fatalf("case %d: decode failed", i)
		}
		if !bytes.Equal(s, c) {
			t.Fatalf("case %d: expected %q, got %q", i, c, s)
		}
	}
	if len(rest) != 0 {
		t.Fatalf("expected empty remainder, got %d bytes", len(rest))
	}
}

func TestVarstringTruncated(t *testing.T) {
	full := AppendVarstring(nil, []byte("truncate me"))

	for cut := 1; cut < len(full); cut++ {
		if _, _, ok := GetVarstring(full[:len(full)-cut]); ok {
			t.Fatalf("expected failure with %d trailing bytes removed", cut)
		}
	}
}

func TestVarstringDeclaredLongerThanBuffer(t *testing.T) {
	buf := AppendUvarint(nil, 100)
	buf = append(buf, []byte("short")...)

	if _, _, ok := GetVarstring(buf); ok {
		t.Fatal("expected failure when prefix declares more bytes than remain")
	}
}

func TestUvarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, 1<<63 + 5}

	var buf []byte
	for _, v := range values {
		buf = AppendUvarint(buf, v)
	}

	rest := buf
	for i, want := range values {
		var (
			v  uint64
			ok bool
		)
		v, rest, ok = GetUvarint(rest)
		if !ok {
			t.Fatalf("value %d: decode failed", i)
		}
		if v != want {
			t.Fatalf("value %d: expected %d, got %d", i, want, v)
		}
	}
}

func TestUvarintTruncated(t *testing.T) {
	if _, _, ok := GetUvarint([]byte{0x80}); ok {
		t.Fatal("expected failure on truncated varint")
	}
	if _, _, ok := GetUvarint(nil); ok {
		t.Fatal("expected failure on empty input")
	}
}
