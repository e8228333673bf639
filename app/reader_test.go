package main

import (
	"bytes"
	"testing"
)

// encodeVarint is the test-only mirror of decodeVarint, used to exercise
// the round-trip property without needing an encoder in the production
// engine (which never writes).
func encodeVarint(v uint64) []byte {
	if v <= 0x7f {
		return []byte{byte(v)}
	}
	if v > 0x00FFFFFFFFFFFFFF {
		buf := make([]byte, 9)
		buf[8] = byte(v)
		v >>= 8
		for i := 7; i >= 0; i-- {
			buf[i] = byte(v&0x7f) | 0x80
			v >>= 7
		}
		return buf
	}

	var groups [8]byte
	n := 0
	for v > 0 {
		groups[n] = byte(v & 0x7f)
		v >>= 7
		n++
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		buf[i] = groups[n-1-i] | 0x80
	}
	buf[n-1] &^= 0x80
	return buf
}

func TestVarintRoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 255, 16384, 1 << 20, 1<<35 + 7, ^uint64(0)}
	for _, v := range values {
		encoded := encodeVarint(v)
		if len(encoded) < 1 || len(encoded) > 9 {
			t.Fatalf("encodeVarint(%d) produced %d bytes, want 1..9", v, len(encoded))
		}
		padded := append(append([]byte{}, encoded...), make([]byte, 9)...)
		reader := NewByteReader(bytes.NewReader(padded))
		got, n, err := reader.ReadVarint(0)
		if err != nil {
			t.Fatalf("ReadVarint: %v", err)
		}
		if got != v {
			t.Errorf("round-trip value mismatch: got %d, want %d", got, v)
		}
		if n != len(encoded) {
			t.Errorf("round-trip length mismatch: got %d, want %d", n, len(encoded))
		}
	}
}

func TestReadAtShortRead(t *testing.T) {
	reader := NewByteReader(bytes.NewReader([]byte{1, 2, 3}))
	if _, err := reader.ReadAt(0, 10); err == nil {
		t.Fatal("expected a FormatError on a short read, got nil")
	}
}

func TestReadU16BE(t *testing.T) {
	reader := NewByteReader(bytes.NewReader([]byte{0x10, 0x00}))
	got, err := reader.ReadU16BE(0)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0x1000 {
		t.Errorf("got %d, want %d", got, 0x1000)
	}
}
