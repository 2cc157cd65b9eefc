package bptc

import "testing"

func TestPartitionTables_AnchorsLieInTheirSubset(t *testing.T) {
	for _, subsets := range []int{2, 3} {
		for shape := 0; shape < PartitionShapeCount; shape++ {
			part := partitionFor(subsets, shape)
			if part[0] != 0 {
				t.Fatalf("subsets=%d shape=%d: pixel 0 in subset %d", subsets, shape, part[0])
			}
			var used [3]int
			for _, s := range part {
				used[s]++
			}
			for s := 0; s < subsets; s++ {
				if used[s] == 0 {
					t.Fatalf("subsets=%d shape=%d: subset %d is empty", subsets, shape, s)
				}
				a := anchorFor(subsets, shape, s)
				if int(part[a]) != s {
					t.Fatalf("subsets=%d shape=%d: anchor %d of subset %d lies in subset %d", subsets, shape, a, s, part[a])
				}
			}
		}
	}
}

func TestPartitionTables_ShapesAreDistinct(t *testing.T) {
	for _, subsets := range []int{2, 3} {
		seen := map[[16]uint8]int{}
		for shape := 0; shape < PartitionShapeCount; shape++ {
			p := *partitionFor(subsets, shape)
			if prev, ok := seen[p]; ok {
				t.Fatalf("subsets=%d: shapes %d and %d are identical", subsets, prev, shape)
			}
			seen[p] = shape
		}
	}
}

func TestWeightTables_Symmetric(t *testing.T) {
	for _, bits := range []int{2, 3, 4} {
		w := weightTable(bits)
		n := len(w)
		if n != 1<<uint(bits) {
			t.Fatalf("bits=%d: %d weights", bits, n)
		}
		for i := range w {
			if w[i]+w[n-1-i] != 64 {
				t.Fatalf("bits=%d: w[%d]+w[%d] = %d", bits, i, n-1-i, w[i]+w[n-1-i])
			}
		}
	}
}
