package bptc

// ldrMetric measures the error of an RGBA8 reconstruction.
//
// In perceptual mode the color difference is taken in a YCbCr-like space with luma
// weighted above chroma, scaled by the mean RGB weight; otherwise each channel difference
// is weighted independently. Alpha always uses weights[3].
type ldrMetric struct {
	weights    [4]float32
	perceptual bool
}

func (m *ldrMetric) errDiff(d vec4) float32 {
	if m.perceptual {
		y := 0.299*d[0] + 0.587*d[1] + 0.114*d[2]
		cb := d[2] - y
		cr := d[0] - y
		cw := (m.weights[0] + m.weights[1] + m.weights[2]) / 3
		return cw*(2*y*y+0.5*cb*cb+0.5*cr*cr) + m.weights[3]*d[3]*d[3]
	}
	return m.weights[0]*d[0]*d[0] + m.weights[1]*d[1]*d[1] + m.weights[2]*d[2]*d[2] + m.weights[3]*d[3]*d[3]
}

// errRotated measures a difference expressed in rotated channel order.
func (m *ldrMetric) errRotated(d vec4, rotation int) float32 {
	if rotation != 0 {
		ch := rotation - 1
		d[ch], d[3] = d[3], d[ch]
	}
	return m.errDiff(d)
}

// paletteLDR interpolates a subset palette from decoded endpoints for the channels in chans.
func paletteLDR(e0, e1 [4]uint8, indexBits int, chans uint8, pal *[16][4]int32) int {
	w := weightTable(indexBits)
	for i, wi := range w {
		for c := 0; c < 4; c++ {
			if chans&(1<<uint(c)) == 0 {
				continue
			}
			pal[i][c] = interpolate(int32(e0[c]), int32(e1[c]), wi)
		}
	}
	return len(w)
}

// assignPlaneLDR assigns the closest palette entry to each listed pixel, comparing only the
// channels in chans (other channels count as exact), and returns the summed error.
// px is in rotated channel order.
func assignPlaneLDR(px *[16][4]uint8, pixels []uint8, pal *[16][4]int32, n int, chans uint8, rotation int, m *ldrMetric, idx *[16]uint8) float64 {
	var total float64
	for _, p := range pixels {
		src := px[p]
		best := float32(1e30)
		bestK := 0
		for k := 0; k < n; k++ {
			var d vec4
			for c := 0; c < 4; c++ {
				if chans&(1<<uint(c)) != 0 {
					d[c] = float32(int32(src[c]) - pal[k][c])
				}
			}
			e := m.errRotated(d, rotation)
			if e < best {
				best = e
				bestK = k
				if e == 0 {
					break
				}
			}
		}
		idx[p] = uint8(bestK)
		total += float64(best)
	}
	return total
}

// paletteHDR interpolates a BC6H palette: endpoints are in the fixed-point pivot domain,
// entries are half bit patterns as ints.
func paletteHDR(e0, e1 [3]int32, indexBits int, signed bool, pal *[16][3]int32) int {
	w := weightTable(indexBits)
	for i, wi := range w {
		for c := 0; c < 3; c++ {
			pal[i][c] = finishUnquantize(interpolate(e0[c], e1[c], wi), signed)
		}
	}
	return len(w)
}

// assignHDR assigns the numerically closest palette entry to each listed pixel.
func assignHDR(px *[16][3]int32, pixels []uint8, pal *[16][3]int32, n int, idx *[16]uint8) float64 {
	var total float64
	for _, p := range pixels {
		src := px[p]
		best := int64(1) << 62
		bestK := 0
		for k := 0; k < n; k++ {
			d0 := int64(src[0] - pal[k][0])
			d1 := int64(src[1] - pal[k][1])
			d2 := int64(src[2] - pal[k][2])
			e := d0*d0 + d1*d1 + d2*d2
			if e < best {
				best = e
				bestK = k
				if e == 0 {
					break
				}
			}
		}
		idx[p] = uint8(bestK)
		total += float64(best)
	}
	return total
}

// canonicalize enforces the anchor rule for one subset: the index stored at the anchor
// pixel must have its top bit clear. When it does not, the endpoint pair is swapped and the
// subset's indices recomputed against the swapped palette. The interpolation tables are
// symmetric, so the recomputed index of every pixel is n-1-i and reconstruction is
// unchanged.
func canonicalize[E any](pair [2]E, idx [16]uint8, pixels []uint8, anchor, indexBits int) ([2]E, [16]uint8) {
	half := uint8(1) << uint(indexBits-1)
	if idx[anchor]&half == 0 {
		return pair, idx
	}
	top := uint8(1)<<uint(indexBits) - 1
	for _, p := range pixels {
		idx[p] = top - idx[p]
	}
	return [2]E{pair[1], pair[0]}, idx
}

// subsetPixels lists the pixel positions of each subset of a shape.
func subsetPixels(part *[16]uint8, subsets int) (lists [3][16]uint8, counts [3]int) {
	for p := 0; p < 16; p++ {
		s := int(part[p])
		if s >= subsets {
			continue
		}
		lists[s][counts[s]] = uint8(p)
		counts[s]++
	}
	return lists, counts
}
