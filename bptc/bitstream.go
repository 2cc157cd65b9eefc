package bptc

// BlockBytes is the size in bytes of one BC6H or BC7 block.
const BlockBytes = 16

// bitWriter packs fields LSB-first into a 128-bit block held as two little-endian words.
type bitWriter struct {
	lo, hi uint64
	pos    uint
}

func (w *bitWriter) write(value uint32, bitCount int) {
	if bitCount <= 0 {
		return
	}
	v := uint64(value) & (uint64(1)<<uint(bitCount) - 1)
	b := w.pos
	if b < 64 {
		w.lo |= v << b
		if b+uint(bitCount) > 64 {
			w.hi |= v >> (64 - b)
		}
	} else {
		w.hi |= v << (b - 64)
	}
	w.pos += uint(bitCount)
}

// writeBit writes bit n of value.
func (w *bitWriter) writeBit(value int32, n int) {
	w.write(uint32(value>>uint(n))&1, 1)
}

func (w *bitWriter) bytes() [BlockBytes]byte {
	var out [BlockBytes]byte
	for i := 0; i < 8; i++ {
		out[i] = byte(w.lo >> (8 * uint(i)))
		out[8+i] = byte(w.hi >> (8 * uint(i)))
	}
	return out
}

// bitReader is the inverse of bitWriter.
type bitReader struct {
	lo, hi uint64
	pos    uint
}

func newBitReader(block *[BlockBytes]byte) bitReader {
	var r bitReader
	for i := 0; i < 8; i++ {
		r.lo |= uint64(block[i]) << (8 * uint(i))
		r.hi |= uint64(block[8+i]) << (8 * uint(i))
	}
	return r
}

func (r *bitReader) read(bitCount int) uint32 {
	if bitCount <= 0 {
		return 0
	}
	b := r.pos
	var v uint64
	switch {
	case b >= 128:
		v = 0
	case b >= 64:
		v = r.hi >> (b - 64)
	case b == 0:
		v = r.lo
	default:
		v = (r.lo >> b) | (r.hi << (64 - b))
	}
	r.pos += uint(bitCount)
	return uint32(v & (uint64(1)<<uint(bitCount) - 1))
}
