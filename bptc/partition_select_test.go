package bptc

import "testing"

// consistentWith reports whether labels are constant inside every subset of part.
func consistentWith(part *[16]uint8, labels *[16]uint8) bool {
	var seen [3]int
	for i := range seen {
		seen[i] = -1
	}
	for p := 0; p < 16; p++ {
		s := part[p]
		if seen[s] < 0 {
			seen[s] = int(labels[p])
		} else if seen[s] != int(labels[p]) {
			return false
		}
	}
	return true
}

func TestRankPartitions_MatchingShapeRanksWithPerfectScores(t *testing.T) {
	for _, subsets := range []int{2, 3} {
		for shape := 0; shape < PartitionShapeCount; shape++ {
			labels := *partitionFor(subsets, shape)
			var order [PartitionShapeCount]uint8
			n := rankPartitions(&labels, subsets, PartitionShapeCount, order[:])
			if n != PartitionShapeCount {
				t.Fatalf("subsets=%d: ranked %d shapes", subsets, n)
			}
			found := false
			for _, s := range order[:n] {
				if int(s) == shape {
					found = true
					break
				}
				// Anything ahead of the exact shape must also explain the labels perfectly.
				if !consistentWith(partitionFor(subsets, int(s)), &labels) {
					t.Fatalf("subsets=%d shape=%d: shape %d ranked ahead with a non-zero score", subsets, shape, s)
				}
			}
			if !found {
				t.Fatalf("subsets=%d shape=%d: not ranked", subsets, shape)
			}
		}
	}
}

func TestRankPartitions_TiesKeepShapeOrder(t *testing.T) {
	var labels [16]uint8
	var order [8]uint8
	n := rankPartitions(&labels, 2, bc6hShapeCount, order[:])
	if n != len(order) {
		t.Fatalf("ranked %d shapes want %d", n, len(order))
	}
	for i, s := range order {
		if int(s) != i {
			t.Fatalf("order[%d]: got %d want %d", i, s, i)
		}
	}
}

func TestDefaultClusterer_SeparatesTwoColors(t *testing.T) {
	part := partitionFor(2, 13)
	var points [16][4]float32
	for p := 0; p < 16; p++ {
		if part[p] == 1 {
			points[p] = [4]float32{230, 210, 40, 255}
		} else {
			points[p] = [4]float32{12, 30, 200, 255}
		}
	}
	labels := DefaultClusterer().Cluster(&points, 3, 2)
	if !consistentWith(part, &labels) {
		t.Fatalf("labels %v do not follow the two colors", labels)
	}
	if labels[0] == labels[15] {
		t.Fatalf("both colors share label %d", labels[0])
	}

	if one := DefaultClusterer().Cluster(&points, 3, 1); one != ([16]uint8{}) {
		t.Fatalf("k=1: got %v want all zero", one)
	}
}

func TestSelectPartitions_FindsTileShape(t *testing.T) {
	const shape = 21
	part := partitionFor(2, shape)
	var points [16]vec4
	for p := 0; p < 16; p++ {
		if part[p] == 1 {
			points[p] = vec4{0x3C00, 0x3800, 0x3000}
		} else {
			points[p] = vec4{0x1000, 0x2000, 0x0400}
		}
	}
	var dst [bc6hShapeCount]uint8
	n := selectPartitions(DefaultClusterer(), &points, 3, 2, bc6hShapeCount, 4, dst[:])
	if n != 4 {
		t.Fatalf("selected %d shapes want 4", n)
	}
	found := false
	for _, s := range dst[:n] {
		if int(s) == shape {
			found = true
		}
	}
	if !found {
		t.Fatalf("shape %d not among %v", shape, dst[:n])
	}
}
