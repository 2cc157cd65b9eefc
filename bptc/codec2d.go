package bptc

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// EncodeRGBA8 encodes a tightly packed RGBA8 image into BC7 blocks in row-major tile
// order.
func EncodeRGBA8(pix []byte, width, height int, quality Quality) ([]byte, error) {
	blocksX, blocksY, err := blockGrid(width, height)
	if err != nil {
		return nil, err
	}
	if len(pix) != width*height*4 {
		return nil, newError(ErrBadBufferSize, "bptc: invalid RGBA8 buffer length")
	}
	enc, err := defaultEncoder(FormatBC7, quality)
	if err != nil {
		return nil, err
	}
	return encodeTiles(blocksX, blocksY, func(bx, by int) ([BlockBytes]byte, error) {
		tile := ExtractTileRGBA8(pix, width, height, bx*4, by*4)
		return enc.EncodeTileBC7(&tile)
	})
}

// EncodeRGBAF16 encodes a tightly packed RGBA half-float image into BC6H blocks in
// row-major tile order. Alpha is ignored.
func EncodeRGBAF16(pix []uint16, width, height int, signed bool, quality Quality) ([]byte, error) {
	blocksX, blocksY, err := blockGrid(width, height)
	if err != nil {
		return nil, err
	}
	if len(pix) != width*height*4 {
		return nil, newError(ErrBadBufferSize, "bptc: invalid RGBA16F buffer length")
	}
	format := FormatBC6HUF16
	if signed {
		format = FormatBC6HSF16
	}
	enc, err := defaultEncoder(format, quality)
	if err != nil {
		return nil, err
	}
	return encodeTiles(blocksX, blocksY, func(bx, by int) ([BlockBytes]byte, error) {
		tile := ExtractTileRGBAF16(pix, width, height, bx*4, by*4)
		return enc.EncodeTileBC6H(&tile)
	})
}

// encodeTiles runs encode for every tile of a blocksX x blocksY grid on GOMAXPROCS
// workers and returns the concatenated blocks.
func encodeTiles(blocksX, blocksY int, encode func(bx, by int) ([BlockBytes]byte, error)) ([]byte, error) {
	totalBlocks := blocksX * blocksY
	out := make([]byte, totalBlocks*BlockBytes)

	procs := max(1, min(runtime.GOMAXPROCS(0), totalBlocks))

	// Small images are faster to encode sequentially.
	if procs == 1 || totalBlocks < 32 {
		for i := 0; i < totalBlocks; i++ {
			block, err := encode(i%blocksX, i/blocksX)
			if err != nil {
				return nil, err
			}
			copy(out[i*BlockBytes:(i+1)*BlockBytes], block[:])
		}
		return out, nil
	}

	var next atomic.Uint32
	var stop atomic.Uint32
	var firstErr error
	var errOnce sync.Once

	var wg sync.WaitGroup
	wg.Add(procs)
	for w := 0; w < procs; w++ {
		go func() {
			defer wg.Done()
			for {
				if stop.Load() != 0 {
					return
				}
				idx := int(next.Add(1) - 1)
				if idx >= totalBlocks {
					return
				}
				block, err := encode(idx%blocksX, idx/blocksX)
				if err != nil {
					errOnce.Do(func() {
						firstErr = err
						stop.Store(1)
					})
					return
				}
				copy(out[idx*BlockBytes:(idx+1)*BlockBytes], block[:])
			}
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}
