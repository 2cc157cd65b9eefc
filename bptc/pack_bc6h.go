package bptc

// bc6hCandidate is one scored BC6H encoding. endpoints holds the quantized values per
// region and endpoint at the mode's endpoint width (signed for the signed format).
type bc6hCandidate struct {
	mode      int // index into bc6hModes
	shape     int
	endpoints [2][2][3]int32
	indices   [16]uint8
	err       float64
}

// bc6hFields computes the stored header fields (w, x, y, z) for a candidate: absolute
// values masked to the endpoint width, and for transformed modes x, y, z as deltas from w.
// It reports false when a delta does not fit its field (bad transform).
func bc6hFields(m *bc6hMode, ep *[2][2][3]int32) ([4][3]int32, bool) {
	var f [4][3]int32
	ends := 2 * m.regions
	epMask := int32(1)<<uint(m.endpointBits) - 1
	for ch := 0; ch < 3; ch++ {
		w := ep[0][0][ch]
		f[0][ch] = w & epMask
		dMask := int32(1)<<uint(m.deltaBits[ch]) - 1
		for e := 1; e < ends; e++ {
			v := ep[e/2][e%2][ch]
			if !m.transformed {
				f[e][ch] = v & dMask
				continue
			}
			d, ok := transformDelta(w, v, m.deltaBits[ch])
			if !ok {
				return f, false
			}
			f[e][ch] = d & dMask
		}
	}
	return f, true
}

// packBC6H serializes a candidate. It reports false when the endpoints cannot be
// represented by the mode.
func packBC6H(c *bc6hCandidate) ([BlockBytes]byte, bool) {
	m := &bc6hModes[c.mode]
	fields, ok := bc6hFields(m, &c.endpoints)
	if !ok {
		return [BlockBytes]byte{}, false
	}

	var w bitWriter
	w.write(uint32(m.selector), m.selectorBits)
	writeHeader(&w, m.layout(), &fields, c.shape)
	for px := 0; px < 16; px++ {
		bits := m.indexBits
		if isAnchor(m.regions, c.shape, px) {
			bits--
		}
		w.write(uint32(c.indices[px]), bits)
	}
	return w.bytes(), true
}

// unpackBC6H parses a block into a candidate with endpoints restored to their quantized,
// sign-extended values. It returns false for reserved mode selectors.
func unpackBC6H(block *[BlockBytes]byte, signed bool) (bc6hCandidate, bool) {
	var c bc6hCandidate
	r := newBitReader(block)
	m := lookupBC6HMode(&r)
	if m == nil {
		return c, false
	}
	c.mode = m.number - 1

	fields, shape := readHeader(&r, m.layout())
	c.shape = shape
	if m.regions == 1 {
		c.shape = 0
	}

	ends := 2 * m.regions
	epMask := int32(1)<<uint(m.endpointBits) - 1
	for ch := 0; ch < 3; ch++ {
		w := fields[0][ch]
		if signed {
			w = signExtend(w, m.endpointBits)
		}
		c.endpoints[0][0][ch] = w
		for e := 1; e < ends; e++ {
			v := fields[e][ch]
			if m.transformed || signed {
				v = signExtend(v, m.deltaBits[ch])
			}
			if m.transformed {
				v = (w + v) & epMask
				if signed {
					v = signExtend(v, m.endpointBits)
				}
			}
			c.endpoints[e/2][e%2][ch] = v
		}
	}

	for px := 0; px < 16; px++ {
		bits := m.indexBits
		if isAnchor(m.regions, c.shape, px) {
			bits--
		}
		c.indices[px] = uint8(r.read(bits))
	}
	return c, true
}

// reconstruct decodes a candidate into half bit patterns as ints (sign-magnitude for the
// signed format).
func (c *bc6hCandidate) reconstruct(signed bool) [16][3]int32 {
	m := &bc6hModes[c.mode]
	part := partitionFor(m.regions, c.shape)
	w := weightTable(m.indexBits)
	var un [2][2][3]int32
	for s := 0; s < m.regions; s++ {
		for e := 0; e < 2; e++ {
			for ch := 0; ch < 3; ch++ {
				un[s][e][ch] = unquantize(c.endpoints[s][e][ch], m.endpointBits, signed)
			}
		}
	}
	var out [16][3]int32
	for px := 0; px < 16; px++ {
		s := part[px]
		wi := w[c.indices[px]]
		for ch := 0; ch < 3; ch++ {
			out[px][ch] = finishUnquantize(interpolate(un[s][0][ch], un[s][1][ch], wi), signed)
		}
	}
	return out
}
