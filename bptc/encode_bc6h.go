package bptc

import "math"

// bc6hEncoder holds the search state for one BC6H tile. Pixels are kept as half bit
// patterns mapped to ints (halfToInt), the domain the reconstruction error is measured in.
type bc6hEncoder struct {
	tune   *encoderTuning
	cl     Clusterer
	signed bool

	px     [16][3]int32
	points [16]vec4

	tries    int
	best     bc6hCandidate
	haveBest bool
}

// encodeTileBC6H runs the candidate search for one tile and packs the winner.
func encodeTileBC6H(tile *TileHDR, signed bool, tune *encoderTuning, cl Clusterer) ([BlockBytes]byte, error) {
	e := newBC6HEncoder(tile, signed, tune, cl)
	return e.run()
}

func newBC6HEncoder(tile *TileHDR, signed bool, tune *encoderTuning, cl Clusterer) *bc6hEncoder {
	e := &bc6hEncoder{tune: tune, cl: cl, signed: signed}
	for i := 0; i < 16; i++ {
		for ch := 0; ch < 3; ch++ {
			v := halfToInt(tile[i][ch], signed)
			e.px[i][ch] = v
			e.points[i][ch] = float32(v)
		}
	}
	return e
}

func (e *bc6hEncoder) run() ([BlockBytes]byte, error) {
	tune := e.tune
	if e.isConstant() {
		// 16-bit base with zero deltas reproduces any color exactly.
		e.consider(e.evaluate(13, 0))
		return e.finish()
	}

	var shapes [bc6hShapeCount]uint8
	nShapes := -1
	for _, mi := range tune.bc6hModes {
		if e.done() {
			break
		}
		m := &bc6hModes[mi]
		if m.regions == 1 {
			e.consider(e.evaluate(mi, 0))
			continue
		}
		if nShapes < 0 {
			limit := min(tune.partitionLimit[2], bc6hShapeCount)
			nShapes = 0
			if limit > 0 {
				nShapes = selectPartitions(e.cl, &e.points, 3, 2, bc6hShapeCount, limit, shapes[:])
			}
		}
		for _, shape := range shapes[:nShapes] {
			if e.done() {
				break
			}
			e.consider(e.evaluate(mi, int(shape)))
		}
	}
	return e.finish()
}

func (e *bc6hEncoder) isConstant() bool {
	for i := 1; i < 16; i++ {
		if e.px[i] != e.px[0] {
			return false
		}
	}
	return true
}

func (e *bc6hEncoder) done() bool {
	if e.tune.tryBudget > 0 && e.tries >= e.tune.tryBudget {
		return true
	}
	return e.haveBest && e.best.err <= e.tune.errorThreshold
}

// consider counts a try and keeps c if it is valid and improves on the best so far.
// Rejected candidates never become the best.
func (e *bc6hEncoder) consider(c bc6hCandidate, ok bool) {
	e.tries++
	if !ok {
		return
	}
	if !e.haveBest || c.err < e.best.err {
		e.best = c
		e.haveBest = true
	}
	if e.tune.trace != nil {
		e.tune.trace(e.best.err)
	}
}

func (e *bc6hEncoder) finish() ([BlockBytes]byte, error) {
	if !e.haveBest {
		Logger().Debug("bptc: every bc6h candidate overflowed, using fallback mode", "tries", e.tries)
		e.consider(e.evaluate(bc6hFallbackMode, 0))
		if !e.haveBest {
			return [BlockBytes]byte{}, newError(ErrNoValidCandidate, "bptc: no representable bc6h encoding")
		}
	}
	blk, ok := packBC6H(&e.best)
	if !ok {
		return [BlockBytes]byte{}, newError(ErrNoValidCandidate, "bptc: bc6h candidate not representable")
	}
	return blk, nil
}

func roundI32(v float32) int32 {
	return int32(math.Round(float64(v)))
}

// evaluate builds, refines and scores one (mode, shape) candidate. It reports false when
// the mode cannot represent the endpoints (bad transform).
func (e *bc6hEncoder) evaluate(mi, shape int) (bc6hCandidate, bool) {
	m := &bc6hModes[mi]
	c := bc6hCandidate{mode: mi, shape: shape}
	if e.tune.forceBadTransform && m.transformed {
		return c, false
	}

	part := partitionFor(m.regions, shape)
	w := weightTable(m.indexBits)
	minV, maxV := float32(0), float32(halfMaxBits)
	if e.signed {
		minV = -halfMaxBits
	}
	for s := 0; s < m.regions; s++ {
		ps := gatherSubset(&e.points, part, s, 3)
		lo, hi := estimateEndpoints(&ps)
		lo, hi = refineLeastSquares(&ps, lo, hi, w, e.tune.lsqIterations, minV, maxV)
		for ch := 0; ch < 3; ch++ {
			c.endpoints[s][0][ch] = quantize(preQuantize(roundI32(lo[ch]), e.signed), m.endpointBits, e.signed)
			c.endpoints[s][1][ch] = quantize(preQuantize(roundI32(hi[ch]), e.signed), m.endpointBits, e.signed)
		}
	}

	if _, ok := e.assign(&c); !ok {
		return c, false
	}
	if e.tune.searchSweeps > 0 {
		e.searchEndpoints(&c)
	}
	return c, true
}

// assign selects indices for the candidate's endpoints, enforces the anchor rule and
// stores the error in c.err. It reports false when the canonical endpoints overflow a
// delta field.
func (e *bc6hEncoder) assign(c *bc6hCandidate) (float64, bool) {
	m := &bc6hModes[c.mode]
	part := partitionFor(m.regions, c.shape)
	lists, counts := subsetPixels(part, m.regions)

	var pal [16][3]int32
	var total float64
	for s := 0; s < m.regions; s++ {
		var un [2][3]int32
		for en := 0; en < 2; en++ {
			for ch := 0; ch < 3; ch++ {
				un[en][ch] = unquantize(c.endpoints[s][en][ch], m.endpointBits, e.signed)
			}
		}
		pixels := lists[s][:counts[s]]
		n := paletteHDR(un[0], un[1], m.indexBits, e.signed, &pal)
		total += assignHDR(&e.px, pixels, &pal, n, &c.indices)
		c.endpoints[s], c.indices = canonicalize(c.endpoints[s], c.indices, pixels, anchorFor(m.regions, c.shape, s), m.indexBits)
	}
	c.err = total

	_, ok := bc6hFields(m, &c.endpoints)
	return total, ok
}

// searchEndpoints runs the neighborhood search on the quantized endpoints of each region.
func (e *bc6hEncoder) searchEndpoints(c *bc6hCandidate) {
	m := &bc6hModes[c.mode]
	rlo, rhi := endpointRange(m.endpointBits, e.signed)
	lo := [4]int32{rlo, rlo, rlo, 0}
	hi := [4]int32{rhi, rhi, rhi, 0}
	step := int32(1) << uint(max(0, m.endpointBits-8))

	for s := 0; s < m.regions; s++ {
		var p intPair
		for en := 0; en < 2; en++ {
			for ch := 0; ch < 3; ch++ {
				p[en][ch] = c.endpoints[s][en][ch]
			}
		}
		base := *c
		withPair := func(q *intPair) bc6hCandidate {
			trial := base
			for en := 0; en < 2; en++ {
				for ch := 0; ch < 3; ch++ {
					trial.endpoints[s][en][ch] = q[en][ch]
				}
			}
			return trial
		}
		eval := func(q *intPair) (float64, bool) {
			trial := withPair(q)
			return e.assign(&trial)
		}
		bestPair, bestErr := neighborhoodSearch(p, 3, lo, hi, step, e.tune.searchSweeps, e.tune.errorThreshold, c.err, eval)
		if bestErr < c.err {
			trial := withPair(&bestPair)
			if _, ok := e.assign(&trial); ok {
				*c = trial
			}
		}
	}
}
