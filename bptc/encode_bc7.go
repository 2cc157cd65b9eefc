package bptc

// bc7Encoder holds the search state for one BC7 tile.
type bc7Encoder struct {
	tune   *encoderTuning
	metric *ldrMetric
	cl     Clusterer

	tile   *TileLDR
	points [16]vec4
	dims   int

	labels     [4][16]uint8
	haveLabels [4]bool

	// twoColor is set when the tile holds exactly two distinct pixels. Such tiles only
	// stop early on an exact match.
	twoColor bool

	tries    int
	best     bc7Candidate
	haveBest bool
}

// encodeTileBC7 runs the candidate search for one tile and packs the winner.
func encodeTileBC7(tile *TileLDR, tune *encoderTuning, metric *ldrMetric, cl Clusterer) ([BlockBytes]byte, error) {
	e := newBC7Encoder(tile, tune, metric, cl)
	return e.run()
}

func newBC7Encoder(tile *TileLDR, tune *encoderTuning, metric *ldrMetric, cl Clusterer) *bc7Encoder {
	e := &bc7Encoder{tune: tune, metric: metric, cl: cl, tile: tile, dims: 3}
	for i := 0; i < 16; i++ {
		for ch := 0; ch < 4; ch++ {
			e.points[i][ch] = float32(tile[i][ch])
		}
		if tile[i][3] != 255 {
			e.dims = 4
		}
	}
	e.twoColor = distinctColorsLDR(tile) == 2
	return e
}

func (e *bc7Encoder) run() ([BlockBytes]byte, error) {
	tune := e.tune
	tile := e.tile
	if isConstantLDR(tile) {
		e.consider(e.evaluate(bc7FallbackMode, 0, 0, 0))
		e.consider(e.evaluate(5, 0, 0, 0))
		return e.finish()
	}

	for _, mode := range tune.bc7Modes {
		if e.done() {
			break
		}
		m := &bc7Modes[mode]
		switch {
		case m.subsets > 1:
			limit := min(tune.partitionLimit[m.subsets], m.shapeCount())
			if limit <= 0 {
				continue
			}
			var shapes [PartitionShapeCount]uint8
			n := rankPartitions(e.clusterLabels(m.subsets), m.subsets, m.shapeCount(), shapes[:limit])
			for _, shape := range shapes[:n] {
				if e.done() {
					break
				}
				e.consider(e.evaluate(mode, int(shape), 0, 0))
			}
		case m.rotationBits > 0:
			rotations := clampInt(tune.rotations, 1, 4)
			indexModes := clampInt(tune.indexModes, 1, 1<<uint(m.indexModeBits))
			for rot := 0; rot < rotations; rot++ {
				for im := 0; im < indexModes; im++ {
					if e.done() {
						break
					}
					e.consider(e.evaluate(mode, 0, rot, im))
				}
			}
		default:
			e.consider(e.evaluate(mode, 0, 0, 0))
		}
	}
	return e.finish()
}

func isConstantLDR(tile *TileLDR) bool {
	for i := 1; i < 16; i++ {
		if tile[i] != tile[0] {
			return false
		}
	}
	return true
}

// distinctColorsLDR counts the distinct pixels of the tile, stopping at three.
func distinctColorsLDR(tile *TileLDR) int {
	var seen [2][4]uint8
	n := 0
outer:
	for i := range tile {
		for j := 0; j < n; j++ {
			if tile[i] == seen[j] {
				continue outer
			}
		}
		if n == len(seen) {
			return n + 1
		}
		seen[n] = tile[i]
		n++
	}
	return n
}

func (e *bc7Encoder) done() bool {
	if e.tune.tryBudget > 0 && e.tries >= e.tune.tryBudget {
		return true
	}
	threshold := e.tune.errorThreshold
	if e.twoColor {
		threshold = 0
	}
	return e.haveBest && e.best.err <= threshold
}

// consider keeps c if it improves on the best candidate so far.
func (e *bc7Encoder) consider(c bc7Candidate) {
	e.tries++
	if !e.haveBest || c.err < e.best.err {
		e.best = c
		e.haveBest = true
	}
	if e.tune.trace != nil {
		e.tune.trace(e.best.err)
	}
}

func (e *bc7Encoder) finish() ([BlockBytes]byte, error) {
	if !e.haveBest {
		Logger().Debug("bptc: bc7 search produced no candidate, using fallback mode")
		e.consider(e.evaluate(bc7FallbackMode, 0, 0, 0))
	}
	return packBC7(&e.best), nil
}

func (e *bc7Encoder) clusterLabels(subsets int) *[16]uint8 {
	if !e.haveLabels[subsets] {
		var raw [16][4]float32
		for i := range e.points {
			raw[i] = [4]float32(e.points[i])
		}
		e.labels[subsets] = e.cl.Cluster(&raw, e.dims, subsets)
		e.haveLabels[subsets] = true
	}
	return &e.labels[subsets]
}

func (e *bc7Encoder) rotatedTile(rotation int) [16][4]uint8 {
	var px [16][4]uint8
	for i := range e.tile {
		px[i] = rotate(e.tile[i], rotation)
	}
	return px
}

// evaluate builds, refines and scores one (mode, shape, rotation, index mode) candidate.
func (e *bc7Encoder) evaluate(mode, shape, rotation, indexMode int) bc7Candidate {
	m := &bc7Modes[mode]
	c := bc7Candidate{mode: mode, shape: shape, rotation: rotation, indexMode: indexMode}

	rot := e.rotatedTile(rotation)
	var pts [16]vec4
	for i := range rot {
		for ch := 0; ch < 4; ch++ {
			pts[i][ch] = float32(rot[i][ch])
		}
	}

	colorDims := 3
	if m.hasAlpha() && !m.separateAlpha() {
		colorDims = 4
	}
	colorW := weightTable(m.colorIndexBits(indexMode))
	alphaW := weightTable(m.alphaIndexBits(indexMode))
	part := partitionFor(m.subsets, shape)

	for s := 0; s < m.subsets; s++ {
		ps := gatherSubset(&pts, part, s, colorDims)
		lo, hi := estimateEndpoints(&ps)
		lo, hi = refineLeastSquares(&ps, lo, hi, colorW, e.tune.lsqIterations, 0, 255)
		switch {
		case m.separateAlpha():
			as := scalarSet(&ps, 3)
			alo, ahi := as.scalarRange(0)
			a0, a1 := refineLeastSquares(&as, vec4{alo}, vec4{ahi}, alphaW, e.tune.lsqIterations, 0, 255)
			lo[3], hi[3] = a0[0], a1[0]
		case !m.hasAlpha():
			lo[3], hi[3] = 255, 255
		}
		quantizePairBC7(m, &c, s, lo, hi)
	}
	e.assign(&c)

	if e.tune.searchSweeps > 0 {
		e.searchEndpoints(&c)
	}
	if e.tune.pbitSearch && m.hasPBits() {
		e.searchPBits(&c)
	}
	return c
}

// quantizePairBC7 stores the quantized endpoints of subset s, choosing the p-bits that
// minimize the quantization error.
func quantizePairBC7(m *bc7Mode, c *bc7Candidate, s int, lo, hi vec4) {
	chans := uint8(0b0111)
	if m.hasAlpha() {
		chans = 0b1111
	}
	switch {
	case m.endpointPBits:
		for en, ep := range [2]vec4{lo, hi} {
			best := float32(1e30)
			for pb := 0; pb < 2; pb++ {
				q, err := quantizeBC7Endpoint(ep, m.colorBits, m.alphaBits, chans, pb)
				if err < best {
					best = err
					c.endpoints[s][en] = q
					c.pbits[s*2+en] = uint8(pb)
				}
			}
		}
	case m.sharedPBits:
		best := float32(1e30)
		for pb := 0; pb < 2; pb++ {
			q0, e0 := quantizeBC7Endpoint(lo, m.colorBits, m.alphaBits, chans, pb)
			q1, e1 := quantizeBC7Endpoint(hi, m.colorBits, m.alphaBits, chans, pb)
			if e0+e1 < best {
				best = e0 + e1
				c.endpoints[s] = [2][4]uint8{q0, q1}
				c.pbits[s] = uint8(pb)
			}
		}
	default:
		c.endpoints[s][0], _ = quantizeBC7Endpoint(lo, m.colorBits, m.alphaBits, chans, -1)
		c.endpoints[s][1], _ = quantizeBC7Endpoint(hi, m.colorBits, m.alphaBits, chans, -1)
	}
}

// endpointWithPBit pairs a stored endpoint with its p-bit so both swap together.
type endpointWithPBit struct {
	ep [4]uint8
	pb uint8
}

// assign selects indices for the candidate's current endpoints, enforces the anchor rule
// and stores the reconstruction error in c.err.
func (e *bc7Encoder) assign(c *bc7Candidate) float64 {
	m := &bc7Modes[c.mode]
	part := partitionFor(m.subsets, c.shape)
	lists, counts := subsetPixels(part, m.subsets)
	rot := e.rotatedTile(c.rotation)
	eps := c.decodedEndpoints()
	var pal [16][4]int32

	if !m.separateAlpha() {
		chans := uint8(0b0111)
		if m.hasAlpha() {
			chans = 0b1111
		}
		for s := 0; s < m.subsets; s++ {
			pixels := lists[s][:counts[s]]
			n := paletteLDR(eps[s][0], eps[s][1], m.indexBits, chans, &pal)
			assignPlaneLDR(&rot, pixels, &pal, n, chans, c.rotation, e.metric, &c.indices)

			anchor := anchorFor(m.subsets, c.shape, s)
			pair := [2]endpointWithPBit{{c.endpoints[s][0], 0}, {c.endpoints[s][1], 0}}
			if m.endpointPBits {
				pair[0].pb, pair[1].pb = c.pbits[s*2], c.pbits[s*2+1]
			}
			pair, c.indices = canonicalize(pair, c.indices, pixels, anchor, m.indexBits)
			c.endpoints[s][0], c.endpoints[s][1] = pair[0].ep, pair[1].ep
			if m.endpointPBits {
				c.pbits[s*2], c.pbits[s*2+1] = pair[0].pb, pair[1].pb
			}
		}
	} else {
		pixels := lists[0][:counts[0]]
		colorBits, alphaBits := m.colorIndexBits(c.indexMode), m.alphaIndexBits(c.indexMode)
		var colorIdx, alphaIdx [16]uint8

		n := paletteLDR(eps[0][0], eps[0][1], colorBits, 0b0111, &pal)
		assignPlaneLDR(&rot, pixels, &pal, n, 0b0111, c.rotation, e.metric, &colorIdx)
		n = paletteLDR(eps[0][0], eps[0][1], alphaBits, 0b1000, &pal)
		assignPlaneLDR(&rot, pixels, &pal, n, 0b1000, c.rotation, e.metric, &alphaIdx)

		e0, e1 := c.endpoints[0][0], c.endpoints[0][1]
		rgb := [2][3]uint8{{e0[0], e0[1], e0[2]}, {e1[0], e1[1], e1[2]}}
		rgb, colorIdx = canonicalize(rgb, colorIdx, pixels, 0, colorBits)
		alpha := [2]uint8{e0[3], e1[3]}
		alpha, alphaIdx = canonicalize(alpha, alphaIdx, pixels, 0, alphaBits)
		c.endpoints[0][0] = [4]uint8{rgb[0][0], rgb[0][1], rgb[0][2], alpha[0]}
		c.endpoints[0][1] = [4]uint8{rgb[1][0], rgb[1][1], rgb[1][2], alpha[1]}

		if c.indexMode == 1 {
			c.indices, c.indices2 = alphaIdx, colorIdx
		} else {
			c.indices, c.indices2 = colorIdx, alphaIdx
		}
	}

	c.err = e.tileError(c)
	return c.err
}

// tileError measures the decoded candidate against the source tile.
func (e *bc7Encoder) tileError(c *bc7Candidate) float64 {
	rec := c.reconstruct()
	var total float64
	for i := 0; i < 16; i++ {
		var d vec4
		for ch := 0; ch < 4; ch++ {
			d[ch] = float32(int32(e.tile[i][ch]) - int32(rec[i][ch]))
		}
		total += float64(e.metric.errDiff(d))
	}
	return total
}

// searchEndpoints runs the neighborhood search on the stored endpoints of each subset.
func (e *bc7Encoder) searchEndpoints(c *bc7Candidate) {
	m := &bc7Modes[c.mode]
	chans := 3
	if m.hasAlpha() {
		chans = 4
	}
	var lo, hi [4]int32
	for ch := 0; ch < 4; ch++ {
		bits := m.colorBits
		if ch == 3 {
			bits = m.alphaBits
		}
		if bits > 0 {
			hi[ch] = int32(1)<<uint(bits) - 1
		}
	}

	for s := 0; s < m.subsets; s++ {
		var p intPair
		for en := 0; en < 2; en++ {
			for ch := 0; ch < 4; ch++ {
				p[en][ch] = int32(c.endpoints[s][en][ch])
			}
		}
		base := *c
		withPair := func(q *intPair) bc7Candidate {
			trial := base
			for en := 0; en < 2; en++ {
				for ch := 0; ch < chans; ch++ {
					trial.endpoints[s][en][ch] = uint8(q[en][ch])
				}
			}
			return trial
		}
		eval := func(q *intPair) (float64, bool) {
			trial := withPair(q)
			return e.assign(&trial), true
		}
		bestPair, bestErr := neighborhoodSearch(p, chans, lo, hi, 2, e.tune.searchSweeps, e.tune.errorThreshold, c.err, eval)
		if bestErr < c.err {
			*c = withPair(&bestPair)
			e.assign(c)
		}
	}
}

// searchPBits toggles each p-bit in turn, keeping changes that lower the error.
func (e *bc7Encoder) searchPBits(c *bc7Candidate) {
	m := &bc7Modes[c.mode]
	n := m.subsets
	if m.endpointPBits {
		n *= 2
	}
	for i := 0; i < n; i++ {
		trial := *c
		trial.pbits[i] ^= 1
		if e.assign(&trial) < c.err {
			*c = trial
		}
	}
}
