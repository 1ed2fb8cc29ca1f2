package vc2

import "testing"

func TestUnsignedVLCRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 2, 3, 4, 7, 8, 15, 16, 255, 256, 1 << 20, 1 << 27}
	for _, v := range values {
		buf := newBitWriter()
		writeUnsignedVLC(buf, v)
		buf.Align()
		r := newBitReader(buf.Bytes())
		got, err := readUnsignedVLC(r)
		if err != nil {
			t.Fatalf("readUnsignedVLC(%d): unexpected error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
	}
}

func TestUnsignedVLCBitCount(t *testing.T) {
	tests := []struct {
		n    uint32
		bits int
	}{
		{0, 1},
		{1, 3},
		{2, 3},
		{3, 5},
		{6, 5},
		{7, 7},
	}
	for _, tt := range tests {
		w := newBitWriter()
		writeUnsignedVLC(w, tt.n)
		if got := w.BitLen(); got != tt.bits {
			t.Errorf("writeUnsignedVLC(%d) wrote %d bits, want %d", tt.n, got, tt.bits)
		}
		if got := unsignedVLCBits(tt.n); got != tt.bits {
			t.Errorf("unsignedVLCBits(%d) = %d, want %d", tt.n, got, tt.bits)
		}
	}
}

func TestSignedVLCRoundTrip(t *testing.T) {
	values := []int32{0, 1, -1, 2, -2, 127, -127, 1 << 20, -(1 << 20)}
	for _, v := range values {
		w := newBitWriter()
		writeSignedVLC(w, v)
		written := w.BitLen()
		w.Align()
		r := newBitReader(w.Bytes())
		got, err := readSignedVLC(r)
		if err != nil {
			t.Fatalf("readSignedVLC(%d): unexpected error: %v", v, err)
		}
		if got != v {
			t.Errorf("round trip %d: got %d", v, got)
		}
		if want := signedVLCBits(v); written != want {
			t.Errorf("signedVLCBits(%d) = %d, want %d", v, want, written)
		}
	}
}
