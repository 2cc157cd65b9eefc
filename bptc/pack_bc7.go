package bptc

// bc7Candidate is one scored BC7 encoding. Endpoints are the stored field values in
// rotated channel order. indices is the first stored index plane (indexBits wide) and
// indices2 the second (index2Bits wide, modes 4 and 5 only).
type bc7Candidate struct {
	mode      int
	shape     int
	rotation  int
	indexMode int
	endpoints [3][2][4]uint8
	pbits     [6]uint8
	indices   [16]uint8
	indices2  [16]uint8
	err       float64
}

// packBC7 serializes a candidate. The candidate must already satisfy the anchor rule.
func packBC7(c *bc7Candidate) [BlockBytes]byte {
	m := &bc7Modes[c.mode]
	var w bitWriter

	w.write(1<<uint(c.mode), c.mode+1)
	w.write(uint32(c.shape), m.partitionBits)
	w.write(uint32(c.rotation), m.rotationBits)
	w.write(uint32(c.indexMode), m.indexModeBits)

	for ch := 0; ch < 3; ch++ {
		for s := 0; s < m.subsets; s++ {
			w.write(uint32(c.endpoints[s][0][ch]), m.colorBits)
			w.write(uint32(c.endpoints[s][1][ch]), m.colorBits)
		}
	}
	if m.hasAlpha() {
		for s := 0; s < m.subsets; s++ {
			w.write(uint32(c.endpoints[s][0][3]), m.alphaBits)
			w.write(uint32(c.endpoints[s][1][3]), m.alphaBits)
		}
	}

	switch {
	case m.endpointPBits:
		for i := 0; i < m.subsets*2; i++ {
			w.write(uint32(c.pbits[i]), 1)
		}
	case m.sharedPBits:
		for s := 0; s < m.subsets; s++ {
			w.write(uint32(c.pbits[s]), 1)
		}
	}

	for px := 0; px < 16; px++ {
		bits := m.indexBits
		if isAnchor(m.subsets, c.shape, px) {
			bits--
		}
		w.write(uint32(c.indices[px]), bits)
	}
	if m.separateAlpha() {
		for px := 0; px < 16; px++ {
			bits := m.index2Bits
			if px == 0 {
				bits--
			}
			w.write(uint32(c.indices2[px]), bits)
		}
	}
	return w.bytes()
}

// unpackBC7 parses a block into a candidate. It returns false for the reserved all-zero
// mode byte.
func unpackBC7(block *[BlockBytes]byte) (bc7Candidate, bool) {
	var c bc7Candidate
	r := newBitReader(block)

	mode := 0
	for mode < 8 && r.read(1) == 0 {
		mode++
	}
	if mode == 8 {
		return c, false
	}
	m := &bc7Modes[mode]
	c.mode = mode
	c.shape = int(r.read(m.partitionBits))
	c.rotation = int(r.read(m.rotationBits))
	c.indexMode = int(r.read(m.indexModeBits))

	for ch := 0; ch < 3; ch++ {
		for s := 0; s < m.subsets; s++ {
			c.endpoints[s][0][ch] = uint8(r.read(m.colorBits))
			c.endpoints[s][1][ch] = uint8(r.read(m.colorBits))
		}
	}
	if m.hasAlpha() {
		for s := 0; s < m.subsets; s++ {
			c.endpoints[s][0][3] = uint8(r.read(m.alphaBits))
			c.endpoints[s][1][3] = uint8(r.read(m.alphaBits))
		}
	}

	switch {
	case m.endpointPBits:
		for i := 0; i < m.subsets*2; i++ {
			c.pbits[i] = uint8(r.read(1))
		}
	case m.sharedPBits:
		for s := 0; s < m.subsets; s++ {
			c.pbits[s] = uint8(r.read(1))
		}
	}

	for px := 0; px < 16; px++ {
		bits := m.indexBits
		if isAnchor(m.subsets, c.shape, px) {
			bits--
		}
		c.indices[px] = uint8(r.read(bits))
	}
	if m.separateAlpha() {
		for px := 0; px < 16; px++ {
			bits := m.index2Bits
			if px == 0 {
				bits--
			}
			c.indices2[px] = uint8(r.read(bits))
		}
	}
	return c, true
}

// decodedEndpoints expands the stored endpoints of a candidate to 8-bit values in rotated
// channel order. Modes without alpha decode alpha as 255.
func (c *bc7Candidate) decodedEndpoints() [3][2][4]uint8 {
	m := &bc7Modes[c.mode]
	var out [3][2][4]uint8
	for s := 0; s < m.subsets; s++ {
		for e := 0; e < 2; e++ {
			pb := m.pbitFor(&c.pbits, s, e)
			for ch := 0; ch < 3; ch++ {
				out[s][e][ch] = unquantizeBC7(c.endpoints[s][e][ch], m.colorBits, pb)
			}
			if m.hasAlpha() {
				out[s][e][3] = unquantizeBC7(c.endpoints[s][e][3], m.alphaBits, pb)
			} else {
				out[s][e][3] = 255
			}
		}
	}
	return out
}

// reconstruct decodes the candidate into RGBA8 pixels in the original channel order.
func (c *bc7Candidate) reconstruct() [16][4]uint8 {
	m := &bc7Modes[c.mode]
	eps := c.decodedEndpoints()
	part := partitionFor(m.subsets, c.shape)

	colorIdx, alphaIdx := &c.indices, &c.indices
	colorBits, alphaBits := m.indexBits, m.indexBits
	if m.separateAlpha() {
		colorBits, alphaBits = m.colorIndexBits(c.indexMode), m.alphaIndexBits(c.indexMode)
		if c.indexMode == 1 {
			colorIdx, alphaIdx = &c.indices2, &c.indices
		} else {
			alphaIdx = &c.indices2
		}
	}
	cw := weightTable(colorBits)
	aw := weightTable(alphaBits)

	var out [16][4]uint8
	for px := 0; px < 16; px++ {
		s := part[px]
		e0, e1 := eps[s][0], eps[s][1]
		var p [4]uint8
		wc := cw[colorIdx[px]]
		for ch := 0; ch < 3; ch++ {
			p[ch] = uint8(interpolate(int32(e0[ch]), int32(e1[ch]), wc))
		}
		p[3] = uint8(interpolate(int32(e0[3]), int32(e1[3]), aw[alphaIdx[px]]))
		out[px] = rotate(p, c.rotation)
	}
	return out
}
