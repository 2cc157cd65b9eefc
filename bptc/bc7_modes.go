package bptc

// bc7Mode describes one BC7 block type. All eight modes share the generic estimator,
// index assigner and packer; only these parameters differ.
type bc7Mode struct {
	mode          int
	subsets       int
	partitionBits int
	rotationBits  int
	indexModeBits int
	colorBits     int
	alphaBits     int
	endpointPBits bool // one p-bit per endpoint
	sharedPBits   bool // one p-bit per subset
	indexBits     int
	index2Bits    int // secondary (alpha) index plane, 0 if none
}

var bc7Modes = [8]bc7Mode{
	{mode: 0, subsets: 3, partitionBits: 4, colorBits: 4, endpointPBits: true, indexBits: 3},
	{mode: 1, subsets: 2, partitionBits: 6, colorBits: 6, sharedPBits: true, indexBits: 3},
	{mode: 2, subsets: 3, partitionBits: 6, colorBits: 5, indexBits: 2},
	{mode: 3, subsets: 2, partitionBits: 6, colorBits: 7, endpointPBits: true, indexBits: 2},
	{mode: 4, subsets: 1, rotationBits: 2, indexModeBits: 1, colorBits: 5, alphaBits: 6, indexBits: 2, index2Bits: 3},
	{mode: 5, subsets: 1, rotationBits: 2, colorBits: 7, alphaBits: 8, indexBits: 2, index2Bits: 2},
	{mode: 6, subsets: 1, colorBits: 7, alphaBits: 7, endpointPBits: true, indexBits: 4},
	{mode: 7, subsets: 2, partitionBits: 6, colorBits: 5, alphaBits: 5, endpointPBits: true, indexBits: 2},
}

// bc7FallbackMode is single-subset, absolute and covers every RGBA8 color within one unit.
const bc7FallbackMode = 6

func (m *bc7Mode) hasPBits() bool { return m.endpointPBits || m.sharedPBits }

// hasAlpha reports whether the mode stores alpha endpoints.
func (m *bc7Mode) hasAlpha() bool { return m.alphaBits > 0 }

// separateAlpha reports whether color and alpha use independent index planes.
func (m *bc7Mode) separateAlpha() bool { return m.index2Bits > 0 }

// shapeCount is the number of partition shapes the mode can address.
func (m *bc7Mode) shapeCount() int {
	if m.subsets == 1 {
		return 1
	}
	return 1 << uint(m.partitionBits)
}

// colorIndexBits returns the index width used for color given an index-mode selector.
func (m *bc7Mode) colorIndexBits(indexMode int) int {
	if m.separateAlpha() && indexMode == 1 {
		return m.index2Bits
	}
	return m.indexBits
}

// alphaIndexBits returns the index width used for alpha given an index-mode selector.
func (m *bc7Mode) alphaIndexBits(indexMode int) int {
	if !m.separateAlpha() {
		return m.indexBits
	}
	if indexMode == 1 {
		return m.indexBits
	}
	return m.index2Bits
}

// pbitFor returns the p-bit used by endpoint e of subset s, or -1 when the mode has none.
func (m *bc7Mode) pbitFor(pbits *[6]uint8, s, e int) int {
	switch {
	case m.endpointPBits:
		return int(pbits[s*2+e])
	case m.sharedPBits:
		return int(pbits[s])
	default:
		return -1
	}
}

// rotate swaps alpha with the channel selected by a BC7 rotation (1=R, 2=G, 3=B).
func rotate(c [4]uint8, rotation int) [4]uint8 {
	if rotation == 0 {
		return c
	}
	ch := rotation - 1
	c[ch], c[3] = c[3], c[ch]
	return c
}
