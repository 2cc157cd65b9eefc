package bptc

import "math"

type vec4 [4]float32

func (a vec4) add(b vec4) vec4 { return vec4{a[0] + b[0], a[1] + b[1], a[2] + b[2], a[3] + b[3]} }
func (a vec4) sub(b vec4) vec4 { return vec4{a[0] - b[0], a[1] - b[1], a[2] - b[2], a[3] - b[3]} }
func (a vec4) scale(s float32) vec4 {
	return vec4{a[0] * s, a[1] * s, a[2] * s, a[3] * s}
}

func dot4(a, b vec4, dims int) float32 {
	var s float32
	for c := 0; c < dims; c++ {
		s += a[c] * b[c]
	}
	return s
}

// pointSet holds the pixels covered by one endpoint pair, in the working domain of the
// encoder (0..255 for LDR, half-as-int for HDR). Only the first dims channels are used.
type pointSet struct {
	pts  [16]vec4
	n    int
	dims int
}

// gatherSubset collects the points of one subset. part may be nil for single-subset modes.
func gatherSubset(src *[16]vec4, part *[16]uint8, subset, dims int) pointSet {
	ps := pointSet{dims: dims}
	for i := 0; i < 16; i++ {
		if part != nil && int(part[i]) != subset {
			continue
		}
		ps.pts[ps.n] = src[i]
		ps.n++
	}
	return ps
}

// principalAxis returns the mean of the set and the dominant eigenvector of its
// covariance matrix (unit length, or zero for a degenerate set).
func principalAxis(ps *pointSet) (mean, axis vec4) {
	if ps.n == 0 {
		return mean, axis
	}
	dims := ps.dims
	for i := 0; i < ps.n; i++ {
		mean = mean.add(ps.pts[i])
	}
	mean = mean.scale(1 / float32(ps.n))

	var cov [4][4]float32
	for i := 0; i < ps.n; i++ {
		d := ps.pts[i].sub(mean)
		for r := 0; r < dims; r++ {
			for c := r; c < dims; c++ {
				cov[r][c] += d[r] * d[c]
			}
		}
	}
	for r := 0; r < dims; r++ {
		for c := 0; c < r; c++ {
			cov[r][c] = cov[c][r]
		}
	}

	// Seed the power iteration with the channel of largest variance; it converges to the
	// dominant eigenvector for any seed not orthogonal to it.
	seed := 0
	for c := 1; c < dims; c++ {
		if cov[c][c] > cov[seed][seed] {
			seed = c
		}
	}
	if cov[seed][seed] <= 0 {
		return mean, axis
	}
	var v vec4
	for c := 0; c < dims; c++ {
		v[c] = cov[seed][c]
	}

	for iter := 0; iter < 8; iter++ {
		var next vec4
		for r := 0; r < dims; r++ {
			for c := 0; c < dims; c++ {
				next[r] += cov[r][c] * v[c]
			}
		}
		n := float32(math.Sqrt(float64(dot4(next, next, dims))))
		if n < 1e-12 {
			break
		}
		v = next.scale(1 / n)
	}
	n := float32(math.Sqrt(float64(dot4(v, v, dims))))
	if n < 1e-12 {
		return mean, axis
	}
	return mean, v.scale(1 / n)
}

// estimateEndpoints returns the two pixels with extreme projections onto the principal
// axis, ordered by projection. A degenerate set yields its mean for both endpoints.
func estimateEndpoints(ps *pointSet) (lo, hi vec4) {
	if ps.n == 0 {
		return lo, hi
	}
	mean, axis := principalAxis(ps)
	if axis == (vec4{}) {
		return mean, mean
	}
	minP := float32(math.MaxFloat32)
	maxP := float32(-math.MaxFloat32)
	minI, maxI := 0, 0
	for i := 0; i < ps.n; i++ {
		p := dot4(ps.pts[i].sub(mean), axis, ps.dims)
		if p < minP {
			minP = p
			minI = i
		}
		if p > maxP {
			maxP = p
			maxI = i
		}
	}
	return ps.pts[minI], ps.pts[maxI]
}

// scalarRange returns the minimum and maximum of one channel of the set.
func (ps *pointSet) scalarRange(ch int) (lo, hi float32) {
	if ps.n == 0 {
		return 0, 0
	}
	lo, hi = ps.pts[0][ch], ps.pts[0][ch]
	for i := 1; i < ps.n; i++ {
		v := ps.pts[i][ch]
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
