package bptc

// bc6hMode describes one BC6H block type.
type bc6hMode struct {
	number       int // 1-based mode number
	selector     uint8
	selectorBits int
	regions      int
	endpointBits int
	deltaBits    [3]int
	transformed  bool
	indexBits    int
}

var bc6hModes = [14]bc6hMode{
	{number: 1, selector: 0x00, selectorBits: 2, regions: 2, endpointBits: 10, deltaBits: [3]int{5, 5, 5}, transformed: true, indexBits: 3},
	{number: 2, selector: 0x01, selectorBits: 2, regions: 2, endpointBits: 7, deltaBits: [3]int{6, 6, 6}, transformed: true, indexBits: 3},
	{number: 3, selector: 0x02, selectorBits: 5, regions: 2, endpointBits: 11, deltaBits: [3]int{5, 4, 4}, transformed: true, indexBits: 3},
	{number: 4, selector: 0x06, selectorBits: 5, regions: 2, endpointBits: 11, deltaBits: [3]int{4, 5, 4}, transformed: true, indexBits: 3},
	{number: 5, selector: 0x0A, selectorBits: 5, regions: 2, endpointBits: 11, deltaBits: [3]int{4, 4, 5}, transformed: true, indexBits: 3},
	{number: 6, selector: 0x0E, selectorBits: 5, regions: 2, endpointBits: 9, deltaBits: [3]int{5, 5, 5}, transformed: true, indexBits: 3},
	{number: 7, selector: 0x12, selectorBits: 5, regions: 2, endpointBits: 8, deltaBits: [3]int{6, 5, 5}, transformed: true, indexBits: 3},
	{number: 8, selector: 0x16, selectorBits: 5, regions: 2, endpointBits: 8, deltaBits: [3]int{5, 6, 5}, transformed: true, indexBits: 3},
	{number: 9, selector: 0x1A, selectorBits: 5, regions: 2, endpointBits: 8, deltaBits: [3]int{5, 5, 6}, transformed: true, indexBits: 3},
	{number: 10, selector: 0x1E, selectorBits: 5, regions: 2, endpointBits: 6, deltaBits: [3]int{6, 6, 6}, indexBits: 3},
	{number: 11, selector: 0x03, selectorBits: 5, regions: 1, endpointBits: 10, deltaBits: [3]int{10, 10, 10}, indexBits: 4},
	{number: 12, selector: 0x07, selectorBits: 5, regions: 1, endpointBits: 11, deltaBits: [3]int{9, 9, 9}, transformed: true, indexBits: 4},
	{number: 13, selector: 0x0B, selectorBits: 5, regions: 1, endpointBits: 12, deltaBits: [3]int{8, 8, 8}, transformed: true, indexBits: 4},
	{number: 14, selector: 0x0F, selectorBits: 5, regions: 1, endpointBits: 16, deltaBits: [3]int{4, 4, 4}, transformed: true, indexBits: 4},
}

// bc6hFallbackMode is the index into bc6hModes of mode 11: one region, absolute 10-bit
// endpoints, no delta that could overflow.
const bc6hFallbackMode = 10

func (m *bc6hMode) layout() []bc6hRun { return bc6hLayouts[m.number-1] }

// shapeCount is the number of partition shapes the mode can address.
func (m *bc6hMode) shapeCount() int {
	if m.regions == 1 {
		return 1
	}
	return bc6hShapeCount
}

// lookupBC6HMode decodes the mode selector at the start of a block. It returns nil for the
// reserved selectors.
func lookupBC6HMode(r *bitReader) *bc6hMode {
	sel := uint8(r.read(2))
	if sel < 2 {
		return &bc6hModes[sel]
	}
	sel |= uint8(r.read(3)) << 2
	for i := 2; i < len(bc6hModes); i++ {
		if bc6hModes[i].selector == sel {
			return &bc6hModes[i]
		}
	}
	return nil
}
