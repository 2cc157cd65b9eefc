package bptc

// BC6H fixed-point quantization.
//
// The common pivot is a 16-bit fixed-point value: [0, 0xFFFF] for unsigned formats and
// [-0x7FFF, 0x7FFF] for signed ones. The decoder expands stored endpoints into this domain
// (unquantize), interpolates there, and scales to a half bit pattern (finishUnquantize).
// preQuantize is the exact inverse of finishUnquantize, and quantize the inverse of
// unquantize up to one quantization step.

const (
	fixedMaxUnsigned = 0xFFFF
	fixedMaxSigned   = 0x7FFF
)

// preQuantize maps a half bit pattern (as produced by halfToInt) into the fixed-point pivot.
func preQuantize(h int32, signed bool) int32 {
	if signed {
		neg := h < 0
		if neg {
			h = -h
		}
		if h > halfMaxBits {
			h = halfMaxBits
		}
		v := (h*32 + 30) / 31
		if neg {
			return -v
		}
		return v
	}
	if h <= 0 {
		return 0
	}
	if h > halfMaxBits {
		h = halfMaxBits
	}
	return (h*64 + 30) / 31
}

// finishUnquantize maps a fixed-point pivot value to a half bit pattern (as an int).
func finishUnquantize(v int32, signed bool) int32 {
	if signed {
		if v < 0 {
			return -(((-v) * 31) >> 5)
		}
		return (v * 31) >> 5
	}
	return (v * 31) >> 6
}

// quantize reduces a fixed-point pivot value to a stored endpoint of the given width.
func quantize(v int32, bits int, signed bool) int32 {
	if signed {
		if bits >= 16 {
			return clampI32(v, -fixedMaxSigned, fixedMaxSigned)
		}
		neg := v < 0
		if neg {
			v = -v
		}
		if v > fixedMaxSigned {
			v = fixedMaxSigned
		}
		maxq := int32(1)<<uint(bits-1) - 1
		q := (v << uint(bits-1)) >> 15
		if q > maxq {
			q = maxq
		}
		if neg {
			return -q
		}
		return q
	}
	if v < 0 {
		v = 0
	}
	if v > fixedMaxUnsigned {
		v = fixedMaxUnsigned
	}
	if bits >= 15 {
		// Stored values at these widths are used verbatim by the decoder.
		return clampI32(v, 0, int32(1)<<uint(bits)-1)
	}
	return (v << uint(bits)) >> 16
}

// unquantize expands a stored endpoint into the fixed-point pivot domain.
func unquantize(q int32, bits int, signed bool) int32 {
	if signed {
		if bits >= 16 {
			return q
		}
		neg := q < 0
		if neg {
			q = -q
		}
		var u int32
		switch {
		case q == 0:
			u = 0
		case q >= int32(1)<<uint(bits-1)-1:
			u = fixedMaxSigned
		default:
			u = ((q << 15) + 0x4000) >> uint(bits-1)
		}
		if neg {
			return -u
		}
		return u
	}
	if bits >= 15 {
		return q
	}
	switch {
	case q == 0:
		return 0
	case q == int32(1)<<uint(bits)-1:
		return fixedMaxUnsigned
	default:
		return ((q << 16) + 0x8000) >> uint(bits)
	}
}

// endpointRange returns the inclusive stored-value range at a width.
func endpointRange(bits int, signed bool) (lo, hi int32) {
	if signed {
		if bits >= 16 {
			return -fixedMaxSigned, fixedMaxSigned
		}
		m := int32(1)<<uint(bits-1) - 1
		return -m, m
	}
	return 0, int32(1)<<uint(bits) - 1
}

// transformDelta computes epT-ep0 and reports whether it fits a signed field of deltaBits.
// A false result is the bad-transform condition: the caller rejects the candidate.
func transformDelta(ep0, epT int32, deltaBits int) (int32, bool) {
	d := epT - ep0
	lo := -(int32(1) << uint(deltaBits-1))
	hi := int32(1)<<uint(deltaBits-1) - 1
	return d, d >= lo && d <= hi
}

// signExtend interprets the low bits of v as a two's complement number.
func signExtend(v int32, bits int) int32 {
	shift := uint(32 - bits)
	return (v << shift) >> shift
}
