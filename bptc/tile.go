package bptc

// TileLDR is a 4x4 tile of RGBA8 pixels in row-major order.
type TileLDR [16][4]uint8

// TileHDR is a 4x4 tile of RGB half-float bit patterns in row-major order.
type TileHDR [16][3]uint16

// ExtractTileRGBA8 copies the tile at (x0, y0) from a tightly packed RGBA8 image.
// Pixels past the right or bottom edge repeat the last column or row.
func ExtractTileRGBA8(pix []byte, width, height, x0, y0 int) TileLDR {
	var t TileLDR
	for ty := 0; ty < 4; ty++ {
		y := min(y0+ty, height-1)
		row := y * width * 4
		for tx := 0; tx < 4; tx++ {
			x := min(x0+tx, width-1)
			src := row + x*4
			copy(t[ty*4+tx][:], pix[src:src+4])
		}
	}
	return t
}

// ExtractTileRGBAF16 copies the RGB channels of the tile at (x0, y0) from a tightly packed
// RGBA half-float image, clamping at the edges like ExtractTileRGBA8.
func ExtractTileRGBAF16(pix []uint16, width, height, x0, y0 int) TileHDR {
	var t TileHDR
	for ty := 0; ty < 4; ty++ {
		y := min(y0+ty, height-1)
		row := y * width * 4
		for tx := 0; tx < 4; tx++ {
			x := min(x0+tx, width-1)
			src := row + x*4
			copy(t[ty*4+tx][:], pix[src:src+3])
		}
	}
	return t
}

// ExtractTileRGBAF32 converts the RGB channels of the tile at (x0, y0) from a tightly
// packed RGBA float32 image to half floats, clamping at the edges.
func ExtractTileRGBAF32(pix []float32, width, height, x0, y0 int) TileHDR {
	var t TileHDR
	for ty := 0; ty < 4; ty++ {
		y := min(y0+ty, height-1)
		row := y * width * 4
		for tx := 0; tx < 4; tx++ {
			x := min(x0+tx, width-1)
			src := row + x*4
			for ch := 0; ch < 3; ch++ {
				t[ty*4+tx][ch] = Float32ToHalf(pix[src+ch])
			}
		}
	}
	return t
}

// extractTileLDRFromF16 reads an RGBA half-float tile as unorm8 for BC7.
func extractTileLDRFromF16(pix []uint16, width, height, x0, y0 int) TileLDR {
	var t TileLDR
	for ty := 0; ty < 4; ty++ {
		y := min(y0+ty, height-1)
		row := y * width * 4
		for tx := 0; tx < 4; tx++ {
			x := min(x0+tx, width-1)
			src := row + x*4
			for ch := 0; ch < 4; ch++ {
				t[ty*4+tx][ch] = float01ToUnorm8(HalfToFloat32(pix[src+ch]))
			}
		}
	}
	return t
}

// extractTileLDRFromF32 reads an RGBA float32 tile as unorm8 for BC7.
func extractTileLDRFromF32(pix []float32, width, height, x0, y0 int) TileLDR {
	var t TileLDR
	for ty := 0; ty < 4; ty++ {
		y := min(y0+ty, height-1)
		row := y * width * 4
		for tx := 0; tx < 4; tx++ {
			x := min(x0+tx, width-1)
			src := row + x*4
			for ch := 0; ch < 4; ch++ {
				t[ty*4+tx][ch] = float01ToUnorm8(pix[src+ch])
			}
		}
	}
	return t
}

// extractTileHDRFromU8 widens an RGBA8 tile to half floats in [0, 1] for BC6H.
func extractTileHDRFromU8(pix []byte, width, height, x0, y0 int) TileHDR {
	ldr := ExtractTileRGBA8(pix, width, height, x0, y0)
	var t TileHDR
	for i := range ldr {
		for ch := 0; ch < 3; ch++ {
			t[i][ch] = Float32ToHalf(float32(ldr[i][ch]) / 255)
		}
	}
	return t
}

// maxAlpha returns the largest alpha value in the tile.
func (t *TileLDR) maxAlpha() uint8 {
	var a uint8
	for i := range t {
		a = max(a, t[i][3])
	}
	return a
}
