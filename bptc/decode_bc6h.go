package bptc

// DecodeBlockBC6H decodes a BC6H block to RGB half-float bit patterns in row-major order.
//
// Blocks with a reserved mode selector decode to zero and return ErrBadBlock.
func DecodeBlockBC6H(block [BlockBytes]byte, signed bool) ([16][3]uint16, error) {
	var out [16][3]uint16
	c, ok := unpackBC6H(&block, signed)
	if !ok {
		return out, newError(ErrBadBlock, "bptc: reserved bc6h mode")
	}
	rec := c.reconstruct(signed)
	for i := range rec {
		for ch := 0; ch < 3; ch++ {
			out[i][ch] = intToHalf(rec[i][ch])
		}
	}
	return out, nil
}

// DecodeBC6H decodes a sequence of BC6H blocks into a tightly packed RGBA half-float image
// with alpha set to 1.0.
func DecodeBC6H(data []byte, width, height int, signed bool) ([]uint16, error) {
	blocksX, blocksY, err := blockGrid(width, height)
	if err != nil {
		return nil, err
	}
	if len(data) != blocksX*blocksY*BlockBytes {
		return nil, newError(ErrBadBufferSize, "bptc: bc6h data length does not match image size")
	}

	const halfOne = 0x3C00
	pix := make([]uint16, width*height*4)
	var firstErr error
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			off := (by*blocksX + bx) * BlockBytes
			px, err := DecodeBlockBC6H([BlockBytes]byte(data[off:off+BlockBytes]), signed)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			for ty := 0; ty < 4; ty++ {
				y := by*4 + ty
				if y >= height {
					break
				}
				for tx := 0; tx < 4; tx++ {
					x := bx*4 + tx
					if x >= width {
						break
					}
					dst := pix[(y*width+x)*4:]
					dst[0], dst[1], dst[2], dst[3] = px[ty*4+tx][0], px[ty*4+tx][1], px[ty*4+tx][2], halfOne
				}
			}
		}
	}
	return pix, firstErr
}
