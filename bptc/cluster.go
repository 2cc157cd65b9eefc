package bptc

// Clusterer groups the 16 pixels of a tile into k clusters. Labels must be in [0, k).
//
// Points are in the encoder's working domain; only the first dims channels are
// meaningful. Implementations must be deterministic and safe for concurrent use; the
// encoder calls Cluster from every worker.
type Clusterer interface {
	Cluster(points *[16][4]float32, dims, k int) [16]uint8
}

// kMeansClusterer is the default Clusterer: seeds spread along the principal axis followed
// by a fixed number of Lloyd iterations.
type kMeansClusterer struct {
	iterations int
}

// DefaultClusterer returns the built-in k-means clusterer.
func DefaultClusterer() Clusterer {
	return kMeansClusterer{iterations: 4}
}

func (km kMeansClusterer) Cluster(src *[16][4]float32, dims, k int) [16]uint8 {
	var labels [16]uint8
	if k <= 1 {
		return labels
	}
	if k > 3 {
		k = 3
	}

	var points [16]vec4
	for i := range src {
		points[i] = vec4(src[i])
	}
	all := gatherSubset(&points, nil, 0, dims)
	mean, axis := principalAxis(&all)
	if axis == (vec4{}) {
		return labels
	}

	// Seeds at evenly spaced projections between the extremes.
	minP, maxP := float32(1e30), float32(-1e30)
	for i := 0; i < 16; i++ {
		p := dot4(points[i].sub(mean), axis, dims)
		if p < minP {
			minP = p
		}
		if p > maxP {
			maxP = p
		}
	}
	var centers [3]vec4
	for c := 0; c < k; c++ {
		t := minP + (maxP-minP)*(float32(c)+0.5)/float32(k)
		centers[c] = mean.add(axis.scale(t))
	}

	for it := 0; it < km.iterations; it++ {
		changed := false
		for i := 0; i < 16; i++ {
			best := uint8(0)
			bestD := float32(1e30)
			for c := 0; c < k; c++ {
				d := points[i].sub(centers[c])
				if dd := dot4(d, d, dims); dd < bestD {
					bestD = dd
					best = uint8(c)
				}
			}
			if it == 0 || labels[i] != best {
				changed = changed || labels[i] != best
				labels[i] = best
			}
		}
		if it > 0 && !changed {
			break
		}

		var sums [3]vec4
		var counts [3]int
		for i := 0; i < 16; i++ {
			sums[labels[i]] = sums[labels[i]].add(points[i])
			counts[labels[i]]++
		}
		for c := 0; c < k; c++ {
			if counts[c] > 0 {
				centers[c] = sums[c].scale(1 / float32(counts[c]))
			}
		}
	}
	return labels
}
