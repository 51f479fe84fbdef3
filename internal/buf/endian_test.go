package buf

import "testing"

func TestWordRoundTrip(t *testing.T) {
	b := make([]byte, 16)
	PutU64LE(b, 0x1122334455667788)
	if got := U64LE(b); got != 0x1122334455667788 {
		t.Fatalf("U64LE=%#x", got)
	}
	if b[0] != 0x88 || b[7] != 0x11 {
		t.Fatalf("unexpected byte order: %x", b[:8])
	}
	PutU32LE(b[8:], 0xCAFEBABE)
	if got := U32LE(b[8:]); got != 0xCAFEBABE {
		t.Fatalf("U32LE=%#x", got)
	}
}

func TestShortBuffers(t *testing.T) {
	short := []byte{1, 2, 3}
	if U32LE(short) != 0 || U64LE(short) != 0 {
		t.Fatalf("short reads should return 0")
	}
	PutU64LE(short, 42)
	PutU32LE(short, 42)
	if short[0] != 1 || short[2] != 3 {
		t.Fatalf("short writes must not modify the buffer: %v", short)
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not cleared", i)
		}
	}
}
