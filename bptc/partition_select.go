package bptc

import "sort"

// rankPartitions orders the shapes of a subset count by how well they agree with a
// clustering.
//
// For each shape and subset, the pixels whose cluster label differs from the majority label
// inside that subset are counted; the sum over subsets is the shape's score. Shapes are
// written to dst in ascending score order, ties broken by shape index. It returns the number
// of shapes written (min(len(dst), shapeCount)).
func rankPartitions(labels *[16]uint8, subsets, shapeCount int, dst []uint8) int {
	type scored struct {
		shape int
		score int
	}
	var buf [PartitionShapeCount]scored
	scores := buf[:shapeCount]

	for shape := 0; shape < shapeCount; shape++ {
		part := partitionFor(subsets, shape)
		var hist [3][3]int
		for p := 0; p < 16; p++ {
			l := labels[p]
			if l > 2 {
				l = 2
			}
			hist[part[p]][l]++
		}
		score := 0
		for s := 0; s < subsets; s++ {
			total, majority := 0, 0
			for _, n := range hist[s] {
				total += n
				if n > majority {
					majority = n
				}
			}
			score += total - majority
		}
		scores[shape] = scored{shape: shape, score: score}
	}

	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score < scores[j].score })

	n := len(dst)
	if n > shapeCount {
		n = shapeCount
	}
	for i := 0; i < n; i++ {
		dst[i] = uint8(scores[i].shape)
	}
	return n
}

// selectPartitions clusters the tile and returns the leading shapes for a subset count.
func selectPartitions(cl Clusterer, points *[16]vec4, dims, subsets, shapeCount, limit int, dst []uint8) int {
	if limit > len(dst) {
		limit = len(dst)
	}
	var raw [16][4]float32
	for i := range points {
		raw[i] = [4]float32(points[i])
	}
	labels := cl.Cluster(&raw, dims, subsets)
	return rankPartitions(&labels, subsets, shapeCount, dst[:limit])
}
