package bptc

import (
	"math/rand"
	"testing"
)

func TestBC6HLayouts_CoverEveryFieldBitOnce(t *testing.T) {
	for mi := range bc6hModes {
		m := &bc6hModes[mi]
		var seen [13]uint32
		total := m.selectorBits
		for _, r := range m.layout() {
			lo, hi := int(r.b), int(r.a)
			if lo > hi {
				lo, hi = hi, lo
			}
			for bit := lo; bit <= hi; bit++ {
				if seen[r.field]&(1<<uint(bit)) != 0 {
					t.Fatalf("mode %d: field %d bit %d stored twice", m.number, r.field, bit)
				}
				seen[r.field] |= 1 << uint(bit)
				total++
			}
		}
		indexBits := 16*m.indexBits - m.regions
		if total+indexBits != 128 {
			t.Fatalf("mode %d: %d header bits + %d index bits != 128", m.number, total, indexBits)
		}

		ends := 2 * m.regions
		for ch := 0; ch < 3; ch++ {
			want := uint32(1)<<uint(m.endpointBits) - 1
			if got := seen[bc6hField(ch)]; got != want {
				t.Fatalf("mode %d: w channel %d covers %#x want %#x", m.number, ch, got, want)
			}
			for e := 1; e < ends; e++ {
				want := uint32(1)<<uint(m.deltaBits[ch]) - 1
				if got := seen[bc6hField(e*3+ch)]; got != want {
					t.Fatalf("mode %d: endpoint %d channel %d covers %#x want %#x", m.number, e, ch, got, want)
				}
			}
		}
		wantD := uint32(0)
		if m.regions == 2 {
			wantD = 0x1F
		}
		if seen[fD] != wantD {
			t.Fatalf("mode %d: partition bits %#x want %#x", m.number, seen[fD], wantD)
		}
	}
}

func TestBC6HPack_RoundTripsEveryMode(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	for _, signed := range []bool{false, true} {
		for mi := range bc6hModes {
			m := &bc6hModes[mi]
			lo, hi := endpointRange(m.endpointBits, signed)
			for iter := 0; iter < 50; iter++ {
				c := bc6hCandidate{mode: mi}
				if m.regions == 2 {
					c.shape = rnd.Intn(bc6hShapeCount)
				}
				for ch := 0; ch < 3; ch++ {
					w := lo + rnd.Int31n(hi-lo+1)
					c.endpoints[0][0][ch] = w
					for e := 1; e < 2*m.regions; e++ {
						v := w
						if m.transformed {
							span := int32(1) << uint(m.deltaBits[ch]-1)
							v = clampI32(w+rnd.Int31n(2*span)-span, lo, hi)
						} else {
							v = lo + rnd.Int31n(hi-lo+1)
						}
						c.endpoints[e/2][e%2][ch] = v
					}
				}
				for px := range c.indices {
					n := int32(1) << uint(m.indexBits)
					if isAnchor(m.regions, c.shape, px) {
						n >>= 1
					}
					c.indices[px] = uint8(rnd.Int31n(n))
				}

				block, ok := packBC6H(&c)
				if !ok {
					t.Fatalf("mode %d signed=%v: packBC6H rejected in-range endpoints %v", m.number, signed, c.endpoints)
				}
				got, ok := unpackBC6H(&block, signed)
				if !ok {
					t.Fatalf("mode %d: unpackBC6H rejected packed block", m.number)
				}
				if got.mode != c.mode || got.shape != c.shape || got.indices != c.indices || got.endpoints != c.endpoints {
					t.Fatalf("mode %d signed=%v: round trip mismatch\n got %+v\nwant %+v", m.number, signed, got, c)
				}
			}
		}
	}
}

func TestBC6HPack_RejectsOverflowingDelta(t *testing.T) {
	c := bc6hCandidate{mode: 0} // mode 1: 10-bit base, 5-bit deltas
	c.endpoints[0][0] = [3]int32{100, 100, 100}
	c.endpoints[0][1] = [3]int32{116, 100, 100}
	c.endpoints[1][0] = [3]int32{100, 100, 100}
	c.endpoints[1][1] = [3]int32{100, 100, 100}
	if _, ok := packBC6H(&c); ok {
		t.Fatalf("expected a delta of 16 to overflow a 5-bit field")
	}
}

func TestLookupBC6HMode_ReservedSelectors(t *testing.T) {
	for _, sel := range []uint8{0x13, 0x17, 0x1B, 0x1F} {
		var block [BlockBytes]byte
		block[0] = sel
		r := newBitReader(&block)
		if m := lookupBC6HMode(&r); m != nil {
			t.Fatalf("selector %#x: got mode %d, want reserved", sel, m.number)
		}
		if _, err := DecodeBlockBC6H(block, false); ErrorCodeOf(err) != ErrBadBlock {
			t.Fatalf("selector %#x: DecodeBlockBC6H err=%v want ErrBadBlock", sel, err)
		}
	}
}
