package bptc

// refineLeastSquares refits an endpoint pair to the set.
//
// Each pixel is projected onto the current pair, snapped to the nearest interpolation
// weight of the index width, and the resulting blend factors define a 2x2 weighted normal
// system solved per channel. A near-singular system (all pixels on one weight) keeps the
// previous estimate. Results are clamped to [minV, maxV].
func refineLeastSquares(ps *pointSet, lo, hi vec4, weights []int32, iterations int, minV, maxV float32) (vec4, vec4) {
	dims := ps.dims
	for it := 0; it < iterations; it++ {
		d := hi.sub(lo)
		dd := dot4(d, d, dims)
		if dd < 1e-8 {
			return lo, hi
		}

		var aa, ab, bb float32
		var ax, bx vec4
		for i := 0; i < ps.n; i++ {
			p := ps.pts[i]
			t := dot4(p.sub(lo), d, dims) / dd
			w := float32(weights[nearestWeight(weights, t)]) / 64
			a := 1 - w
			aa += a * a
			ab += a * w
			bb += w * w
			ax = ax.add(p.scale(a))
			bx = bx.add(p.scale(w))
		}

		det := aa*bb - ab*ab
		if det < 1e-6 && det > -1e-6 {
			return lo, hi
		}
		inv := 1 / det
		var nlo, nhi vec4
		for c := 0; c < dims; c++ {
			nlo[c] = clampF32((bb*ax[c]-ab*bx[c])*inv, minV, maxV)
			nhi[c] = clampF32((aa*bx[c]-ab*ax[c])*inv, minV, maxV)
		}
		if nlo == lo && nhi == hi {
			break
		}
		lo, hi = nlo, nhi
	}
	return lo, hi
}

// nearestWeight returns the index whose weight is closest to t*64.
func nearestWeight(weights []int32, t float32) int {
	x := t * 64
	if x <= 0 {
		return 0
	}
	last := len(weights) - 1
	if x >= 64 {
		return last
	}
	best := 0
	bestD := float32(1e30)
	for i, w := range weights {
		d := float32(w) - x
		if d < 0 {
			d = -d
		}
		if d < bestD {
			bestD = d
			best = i
		}
	}
	return best
}

// scalarSet copies one channel of ps into channel 0 of a one-dimensional set.
func scalarSet(ps *pointSet, ch int) pointSet {
	out := pointSet{n: ps.n, dims: 1}
	for i := 0; i < ps.n; i++ {
		out.pts[i][0] = ps.pts[i][ch]
	}
	return out
}

// intPair is a quantized endpoint pair used by the neighborhood search.
type intPair [2][4]int32

// neighborhoodSearch perturbs the quantized pair with signed offset patterns on each
// channel, per endpoint and jointly, keeping a variation only if it lowers the error.
// The step halves whenever a full sweep finds no improvement. It returns the best pair and
// error; eval reports false for variations that are not representable.
func neighborhoodSearch(p intPair, chans int, lo, hi [4]int32, step int32, maxSweeps int, threshold float64, curErr float64, eval func(*intPair) (float64, bool)) (intPair, float64) {
	type offset struct{ d0, d1 int32 }
	patterns := [...]offset{
		{1, 0}, {-1, 0}, {0, 1}, {0, -1},
		{1, 1}, {-1, -1}, {1, -1}, {-1, 1},
	}

	for sweep := 0; sweep < maxSweeps && step > 0 && curErr > threshold; sweep++ {
		improved := false
		for c := 0; c < chans; c++ {
			for _, pat := range patterns {
				trial := p
				trial[0][c] += pat.d0 * step
				trial[1][c] += pat.d1 * step
				if trial[0][c] < lo[c] || trial[0][c] > hi[c] || trial[1][c] < lo[c] || trial[1][c] > hi[c] {
					continue
				}
				e, ok := eval(&trial)
				if ok && e < curErr {
					p = trial
					curErr = e
					improved = true
				}
			}
		}
		if !improved {
			step >>= 1
		}
	}
	return p, curErr
}
