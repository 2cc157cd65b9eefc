package bptc

// DecodeBlockBC7 decodes a BC7 block to RGBA8 pixels in row-major order.
//
// A block with the reserved mode byte decodes to transparent black and returns
// ErrBadBlock.
func DecodeBlockBC7(block [BlockBytes]byte) ([16][4]uint8, error) {
	c, ok := unpackBC7(&block)
	if !ok {
		return [16][4]uint8{}, newError(ErrBadBlock, "bptc: reserved bc7 mode")
	}
	return c.reconstruct(), nil
}

// DecodeBC7 decodes a sequence of BC7 blocks into a tightly packed RGBA8 image.
// Reserved blocks decode to transparent black; the first such error is returned after the
// whole image has been written.
func DecodeBC7(data []byte, width, height int) ([]byte, error) {
	blocksX, blocksY, err := blockGrid(width, height)
	if err != nil {
		return nil, err
	}
	if len(data) != blocksX*blocksY*BlockBytes {
		return nil, newError(ErrBadBufferSize, "bptc: bc7 data length does not match image size")
	}

	pix := make([]byte, width*height*4)
	var firstErr error
	for by := 0; by < blocksY; by++ {
		for bx := 0; bx < blocksX; bx++ {
			off := (by*blocksX + bx) * BlockBytes
			px, err := DecodeBlockBC7([BlockBytes]byte(data[off : off+BlockBytes]))
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
					copy(pix[(y*width+x)*4:], px[ty*4+tx][:])
				}
			}
		}
	}
	return pix, firstErr
}

// blockGrid returns the number of 4x4 tiles covering an image.
func blockGrid(width, height int) (blocksX, blocksY int, err error) {
	if width <= 0 || height <= 0 {
		return 0, 0, newError(ErrBadParam, "bptc: invalid image dimensions")
	}
	return (width + 3) / 4, (height + 3) / 4, nil
}
