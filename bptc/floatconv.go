package bptc

import "github.com/x448/float16"

const (
	halfSignMask = 0x8000
	halfMagMask  = 0x7FFF
	halfMaxBits  = 0x7BFF // largest finite half
	halfExpMask  = 0x7C00
)

// HalfToFloat32 converts an IEEE 754 binary16 bit pattern to float32.
func HalfToFloat32(h uint16) float32 {
	return float16.Frombits(h).Float32()
}

// Float32ToHalf converts a float32 to an IEEE 754 binary16 bit pattern, rounding to
// nearest even. Overflow produces infinity.
func Float32ToHalf(f float32) uint16 {
	return float16.Fromfloat32(f).Bits()
}

// halfToInt maps a half bit pattern into the integer domain the BC6H encoder measures
// error in: the magnitude bits for unsigned formats, sign-magnitude for signed ones.
// Infinities and NaNs saturate to the largest finite magnitude.
func halfToInt(h uint16, signed bool) int32 {
	mag := int32(h & halfMagMask)
	if mag > halfMaxBits {
		if (h&halfExpMask) == halfExpMask && (h&0x3FF) != 0 {
			// NaN
			return 0
		}
		mag = halfMaxBits
	}
	if h&halfSignMask != 0 {
		if !signed {
			return 0
		}
		return -mag
	}
	return mag
}

// intToHalf is the inverse of halfToInt.
func intToHalf(v int32) uint16 {
	if v < 0 {
		return halfSignMask | uint16(-v)
	}
	return uint16(v)
}

func clampF32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampI32(v, lo, hi int32) int32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func float01ToUnorm8(v float32) uint8 {
	if !(v >= 0) {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
