package bptc

import "testing"

func TestBitWriter_RoundTripsAcrossWordBoundary(t *testing.T) {
	fields := []struct {
		v    uint32
		bits int
	}{
		{0x1, 1}, {0x2A, 6}, {0x3FF, 10}, {0x0, 3}, {0x1FFF, 13}, {0x5, 3},
		{0xABCD, 16}, {0x7, 3}, {0x12, 5}, {0x3, 2}, {0xFFFF, 16}, {0x155, 9},
		{0x1, 1}, {0x7F, 7}, {0x0, 0}, {0xA, 4}, {0x2AAA, 14}, {0x7, 3}, {0x5, 4},
	}
	var w bitWriter
	total := 0
	for _, f := range fields {
		w.write(f.v, f.bits)
		total += f.bits
	}
	if total != 128 {
		t.Fatalf("test fields cover %d bits, want 128", total)
	}

	block := w.bytes()
	r := newBitReader(&block)
	for i, f := range fields {
		if got := r.read(f.bits); got != f.v {
			t.Fatalf("field %d (%d bits): got %#x want %#x", i, f.bits, got, f.v)
		}
	}
}

func TestBitWriter_LSBFirst(t *testing.T) {
	var w bitWriter
	w.write(1, 1)
	w.write(0, 6)
	w.write(1, 1)
	w.write(0x3, 2)
	block := w.bytes()
	if block[0] != 0x81 || block[1] != 0x03 {
		t.Fatalf("got %#x %#x want 0x81 0x03", block[0], block[1])
	}
}
