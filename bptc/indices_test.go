package bptc

import (
	"math/rand"
	"testing"
)

func TestCanonicalize_ClearsAnchorTopBitAndKeepsPalette(t *testing.T) {
	rnd := rand.New(rand.NewSource(7))
	for _, bits := range []int{2, 3, 4} {
		w := weightTable(bits)
		n := 1 << uint(bits)
		for iter := 0; iter < 200; iter++ {
			shape := rnd.Intn(64)
			part := partitionFor(2, shape)
			lists, counts := subsetPixels(part, 2)
			s := rnd.Intn(2)
			pixels := lists[s][:counts[s]]
			anchor := anchorFor(2, shape, s)

			var idx [16]uint8
			for _, p := range pixels {
				idx[p] = uint8(rnd.Intn(n))
			}
			pair := [2]int32{int32(rnd.Intn(256)), int32(rnd.Intn(256))}

			gotPair, gotIdx := canonicalize(pair, idx, pixels, anchor, bits)
			if gotIdx[anchor]&(1<<uint(bits-1)) != 0 {
				t.Fatalf("bits=%d: anchor index %d has top bit set", bits, gotIdx[anchor])
			}
			for _, p := range pixels {
				before := interpolate(pair[0], pair[1], w[idx[p]])
				after := interpolate(gotPair[0], gotPair[1], w[gotIdx[p]])
				if before != after {
					t.Fatalf("bits=%d pixel %d: reconstruction changed %d -> %d", bits, p, before, after)
				}
			}
			for p := 0; p < 16; p++ {
				if int(part[p]) != s && gotIdx[p] != idx[p] {
					t.Fatalf("bits=%d: pixel %d outside the subset was modified", bits, p)
				}
			}
		}
	}
}

func TestSubsetPixels_CoversTileOnce(t *testing.T) {
	for _, subsets := range []int{1, 2, 3} {
		for shape := 0; shape < 64; shape++ {
			lists, counts := subsetPixels(partitionFor(subsets, shape), subsets)
			var seen [16]bool
			total := 0
			for s := 0; s < subsets; s++ {
				for _, p := range lists[s][:counts[s]] {
					if seen[p] {
						t.Fatalf("subsets=%d shape=%d: pixel %d listed twice", subsets, shape, p)
					}
					seen[p] = true
					total++
				}
			}
			if total != 16 {
				t.Fatalf("subsets=%d shape=%d: covered %d pixels", subsets, shape, total)
			}
			if subsets == 1 {
				break
			}
		}
	}
}

func TestAssignHDR_PicksNearestEntry(t *testing.T) {
	var pal [16][3]int32
	n := paletteHDR([3]int32{0, 0, 0}, [3]int32{0xFFFF, 0xFFFF, 0xFFFF}, 3, false, &pal)
	if n != 8 {
		t.Fatalf("palette size: got %d want 8", n)
	}

	var px [16][3]int32
	pixels := make([]uint8, 16)
	for i := range px {
		k := i % n
		px[i] = pal[k]
		pixels[i] = uint8(i)
	}
	var idx [16]uint8
	if got := assignHDR(&px, pixels, &pal, n, &idx); got != 0 {
		t.Fatalf("error: got %v want 0", got)
	}
	for i := range idx {
		if pal[idx[i]] != px[i] {
			t.Fatalf("pixel %d: index %d does not reproduce the pixel", i, idx[i])
		}
	}
}
