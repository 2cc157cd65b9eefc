package bptc

// BC7 endpoint quantization.
//
// A BC7 endpoint channel is stored in `bits` bits; modes with p-bits append one parity bit
// below the stored value, giving prec = bits+1. The decoder widens the prec-bit value to
// 8 bits by replicating its top bits into the vacated low bits.

// expandBC7 widens a prec-bit value to 8 bits.
func expandBC7(v uint8, prec int) uint8 {
	if prec >= 8 {
		return v
	}
	x := uint32(v) << uint(8-prec)
	return uint8(x | (x >> uint(prec)))
}

// unquantizeBC7 returns the 8-bit value a stored channel decodes to.
func unquantizeBC7(stored uint8, bits int, pbit int) uint8 {
	if pbit < 0 {
		return expandBC7(stored, bits)
	}
	return expandBC7((stored<<1)|uint8(pbit), bits+1)
}

// quantizeBC7Channel returns the stored value whose expansion is closest to target
// (0..255), for a fixed p-bit (pbit < 0 means the mode has none).
func quantizeBC7Channel(target float32, bits int, pbit int) uint8 {
	maxStored := (1 << uint(bits)) - 1
	prec := bits
	if pbit >= 0 {
		prec++
	}
	levels := float32(int(1)<<uint(prec) - 1)
	t := clampF32(target, 0, 255)
	guess := int(t*levels/255 + 0.5)
	if pbit >= 0 {
		guess >>= 1
	}

	best := clampInt(guess, 0, maxStored)
	bestErr := float32(1e30)
	for s := guess - 1; s <= guess+1; s++ {
		if s < 0 || s > maxStored {
			continue
		}
		d := float32(unquantizeBC7(uint8(s), bits, pbit)) - t
		if e := d * d; e < bestErr {
			bestErr = e
			best = s
		}
	}
	return uint8(best)
}

// quantizeBC7Endpoint quantizes the channels selected by chans (bitmask over RGBA) of a
// float endpoint for a fixed p-bit, returning stored values and the squared error.
func quantizeBC7Endpoint(ep vec4, colorBits, alphaBits int, chans uint8, pbit int) ([4]uint8, float32) {
	var out [4]uint8
	var err float32
	for c := 0; c < 4; c++ {
		if chans&(1<<uint(c)) == 0 {
			continue
		}
		bits := colorBits
		if c == 3 {
			bits = alphaBits
		}
		if bits == 0 {
			continue
		}
		out[c] = quantizeBC7Channel(ep[c], bits, pbit)
		d := float32(unquantizeBC7(out[c], bits, pbit)) - ep[c]
		err += d * d
	}
	return out, err
}
