package bptc

import "testing"

func TestHalfConversion_KnownValues(t *testing.T) {
	cases := []struct {
		f float32
		h uint16
	}{
		{0, 0x0000},
		{1, 0x3C00},
		{0.5, 0x3800},
		{-2, 0xC000},
		{65504, 0x7BFF},
		{5.9604645e-08, 0x0001},
	}
	for _, c := range cases {
		if got := Float32ToHalf(c.f); got != c.h {
			t.Fatalf("Float32ToHalf(%v): got %#04x want %#04x", c.f, got, c.h)
		}
		if got := HalfToFloat32(c.h); got != c.f {
			t.Fatalf("HalfToFloat32(%#04x): got %v want %v", c.h, got, c.f)
		}
	}
	if got := Float32ToHalf(1e6); got != 0x7C00 {
		t.Fatalf("overflow: got %#04x want inf", got)
	}
}

func TestHalfToInt_Domain(t *testing.T) {
	cases := []struct {
		h      uint16
		signed bool
		want   int32
	}{
		{0x3C00, false, 0x3C00},
		{0xBC00, false, 0},
		{0xBC00, true, -0x3C00},
		{0x7C00, false, halfMaxBits},
		{0xFC00, true, -halfMaxBits},
		{0x7E00, true, 0},
	}
	for _, c := range cases {
		got := halfToInt(c.h, c.signed)
		if got != c.want {
			t.Fatalf("halfToInt(%#04x, %v): got %#x want %#x", c.h, c.signed, got, c.want)
		}
		finite := c.h&halfExpMask != halfExpMask
		if finite && (c.signed || c.h&halfSignMask == 0) && intToHalf(got) != c.h {
			t.Fatalf("intToHalf(%#x): got %#04x want %#04x", got, intToHalf(got), c.h)
		}
	}
}

func TestExtractTileRGBA8_ClampsEdges(t *testing.T) {
	const w, h = 5, 3
	pix := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			pix[off+0] = uint8(x)
			pix[off+1] = uint8(y)
			pix[off+2] = 7
			pix[off+3] = 255
		}
	}
	tile := ExtractTileRGBA8(pix, w, h, 4, 0)
	for p := 0; p < 16; p++ {
		want := [4]uint8{4, uint8(min(p/4, h-1)), 7, 255}
		if tile[p] != want {
			t.Fatalf("pixel %d: got %v want %v", p, tile[p], want)
		}
	}
}
