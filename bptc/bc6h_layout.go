package bptc

// BC6H header layouts.
//
// Each mode stores its endpoints and partition index in a fixed, partly scrambled order
// after the mode selector. A layout is a list of runs; a run {field, a, b} stores bits
// b..a of the field in stream order, so {fRW, 9, 0} writes bit 0 first and the reversed
// run {fRW, 10, 15} writes bit 15 first.

type bc6hField uint8

const (
	fRW bc6hField = iota
	fGW
	fBW
	fRX
	fGX
	fBX
	fRY
	fGY
	fBY
	fRZ
	fGZ
	fBZ
	fD
)

type bc6hRun struct {
	field bc6hField
	a, b  uint8
}

// slot returns the endpoint (w, x, y, z) and channel addressed by an endpoint field.
func (f bc6hField) slot() (ep, ch int) {
	return int(f) / 3, int(f) % 3
}

var bc6hLayouts = [14][]bc6hRun{
	0:  {{fGY, 4, 4}, {fBY, 4, 4}, {fBZ, 4, 4}, {fRW, 9, 0}, {fGW, 9, 0}, {fBW, 9, 0}, {fRX, 4, 0}, {fGZ, 4, 4}, {fGY, 3, 0}, {fGX, 4, 0}, {fBZ, 0, 0}, {fGZ, 3, 0}, {fBX, 4, 0}, {fBZ, 1, 1}, {fBY, 3, 0}, {fRY, 4, 0}, {fBZ, 2, 2}, {fRZ, 4, 0}, {fBZ, 3, 3}, {fD, 4, 0}},
	1:  {{fGY, 5, 5}, {fGZ, 4, 4}, {fGZ, 5, 5}, {fRW, 6, 0}, {fBZ, 0, 0}, {fBZ, 1, 1}, {fBY, 4, 4}, {fGW, 6, 0}, {fBY, 5, 5}, {fBZ, 2, 2}, {fGY, 4, 4}, {fBW, 6, 0}, {fBZ, 3, 3}, {fBZ, 5, 5}, {fBZ, 4, 4}, {fRX, 5, 0}, {fGY, 3, 0}, {fGX, 5, 0}, {fGZ, 3, 0}, {fBX, 5, 0}, {fBY, 3, 0}, {fRY, 5, 0}, {fRZ, 5, 0}, {fD, 4, 0}},
	2:  {{fRW, 9, 0}, {fGW, 9, 0}, {fBW, 9, 0}, {fRX, 4, 0}, {fRW, 10, 10}, {fGY, 3, 0}, {fGX, 3, 0}, {fGW, 10, 10}, {fBZ, 0, 0}, {fGZ, 3, 0}, {fBX, 3, 0}, {fBW, 10, 10}, {fBZ, 1, 1}, {fBY, 3, 0}, {fRY, 4, 0}, {fBZ, 2, 2}, {fRZ, 4, 0}, {fBZ, 3, 3}, {fD, 4, 0}},
	3:  {{fRW, 9, 0}, {fGW, 9, 0}, {fBW, 9, 0}, {fRX, 3, 0}, {fRW, 10, 10}, {fGZ, 4, 4}, {fGY, 3, 0}, {fGX, 4, 0}, {fGW, 10, 10}, {fGZ, 3, 0}, {fBX, 3, 0}, {fBW, 10, 10}, {fBZ, 1, 1}, {fBY, 3, 0}, {fRY, 3, 0}, {fBZ, 0, 0}, {fBZ, 2, 2}, {fRZ, 3, 0}, {fGY, 4, 4}, {fBZ, 3, 3}, {fD, 4, 0}},
	4:  {{fRW, 9, 0}, {fGW, 9, 0}, {fBW, 9, 0}, {fRX, 3, 0}, {fRW, 10, 10}, {fBY, 4, 4}, {fGY, 3, 0}, {fGX, 3, 0}, {fGW, 10, 10}, {fBZ, 0, 0}, {fGZ, 3, 0}, {fBX, 4, 0}, {fBW, 10, 10}, {fBY, 3, 0}, {fRY, 3, 0}, {fBZ, 1, 1}, {fBZ, 2, 2}, {fRZ, 3, 0}, {fBZ, 4, 4}, {fBZ, 3, 3}, {fD, 4, 0}},
	5:  {{fRW, 8, 0}, {fBY, 4, 4}, {fGW, 8, 0}, {fGY, 4, 4}, {fBW, 8, 0}, {fBZ, 4, 4}, {fRX, 4, 0}, {fGZ, 4, 4}, {fGY, 3, 0}, {fGX, 4, 0}, {fBZ, 0, 0}, {fGZ, 3, 0}, {fBX, 4, 0}, {fBZ, 1, 1}, {fBY, 3, 0}, {fRY, 4, 0}, {fBZ, 2, 2}, {fRZ, 4, 0}, {fBZ, 3, 3}, {fD, 4, 0}},
	6:  {{fRW, 7, 0}, {fGZ, 4, 4}, {fBY, 4, 4}, {fGW, 7, 0}, {fBZ, 2, 2}, {fGY, 4, 4}, {fBW, 7, 0}, {fBZ, 3, 3}, {fBZ, 4, 4}, {fRX, 5, 0}, {fGY, 3, 0}, {fGX, 4, 0}, {fBZ, 0, 0}, {fGZ, 3, 0}, {fBX, 4, 0}, {fBZ, 1, 1}, {fBY, 3, 0}, {fRY, 5, 0}, {fRZ, 5, 0}, {fD, 4, 0}},
	7:  {{fRW, 7, 0}, {fBZ, 0, 0}, {fBY, 4, 4}, {fGW, 7, 0}, {fGY, 5, 5}, {fGY, 4, 4}, {fBW, 7, 0}, {fGZ, 5, 5}, {fBZ, 4, 4}, {fRX, 4, 0}, {fGZ, 4, 4}, {fGY, 3, 0}, {fGX, 5, 0}, {fGZ, 3, 0}, {fBX, 4, 0}, {fBZ, 1, 1}, {fBY, 3, 0}, {fRY, 4, 0}, {fBZ, 2, 2}, {fRZ, 4, 0}, {fBZ, 3, 3}, {fD, 4, 0}},
	8:  {{fRW, 7, 0}, {fBZ, 1, 1}, {fBY, 4, 4}, {fGW, 7, 0}, {fBY, 5, 5}, {fGY, 4, 4}, {fBW, 7, 0}, {fBZ, 5, 5}, {fBZ, 4, 4}, {fRX, 4, 0}, {fGZ, 4, 4}, {fGY, 3, 0}, {fGX, 4, 0}, {fBZ, 0, 0}, {fGZ, 3, 0}, {fBX, 5, 0}, {fBY, 3, 0}, {fRY, 4, 0}, {fBZ, 2, 2}, {fRZ, 4, 0}, {fBZ, 3, 3}, {fD, 4, 0}},
	9:  {{fRW, 5, 0}, {fGZ, 4, 4}, {fBZ, 0, 0}, {fBZ, 1, 1}, {fBY, 4, 4}, {fGW, 5, 0}, {fGY, 5, 5}, {fBY, 5, 5}, {fBZ, 2, 2}, {fGY, 4, 4}, {fBW, 5, 0}, {fGZ, 5, 5}, {fBZ, 3, 3}, {fBZ, 5, 5}, {fBZ, 4, 4}, {fRX, 5, 0}, {fGY, 3, 0}, {fGX, 5, 0}, {fGZ, 3, 0}, {fBX, 5, 0}, {fBY, 3, 0}, {fRY, 5, 0}, {fRZ, 5, 0}, {fD, 4, 0}},
	10: {{fRW, 9, 0}, {fGW, 9, 0}, {fBW, 9, 0}, {fRX, 9, 0}, {fGX, 9, 0}, {fBX, 9, 0}},
	11: {{fRW, 9, 0}, {fGW, 9, 0}, {fBW, 9, 0}, {fRX, 8, 0}, {fRW, 10, 10}, {fGX, 8, 0}, {fGW, 10, 10}, {fBX, 8, 0}, {fBW, 10, 10}},
	12: {{fRW, 9, 0}, {fGW, 9, 0}, {fBW, 9, 0}, {fRX, 7, 0}, {fRW, 10, 11}, {fGX, 7, 0}, {fGW, 10, 11}, {fBX, 7, 0}, {fBW, 10, 11}},
	13: {{fRW, 9, 0}, {fGW, 9, 0}, {fBW, 9, 0}, {fRX, 3, 0}, {fRW, 10, 15}, {fGX, 3, 0}, {fGW, 10, 15}, {fBX, 3, 0}, {fBW, 10, 15}},
}

// writeHeader stores the endpoint fields and partition index of a mode.
// fields holds w, x, y, z per channel (deltas already applied), masked by the caller.
func writeHeader(w *bitWriter, layout []bc6hRun, fields *[4][3]int32, partition int) {
	for _, r := range layout {
		var v int32
		if r.field == fD {
			v = int32(partition)
		} else {
			ep, ch := r.field.slot()
			v = fields[ep][ch]
		}
		if r.a >= r.b {
			for bit := int(r.b); bit <= int(r.a); bit++ {
				w.writeBit(v, bit)
			}
		} else {
			for bit := int(r.b); bit >= int(r.a); bit-- {
				w.writeBit(v, bit)
			}
		}
	}
}

// readHeader is the inverse of writeHeader. The returned fields are raw (unsigned, not
// sign extended).
func readHeader(r *bitReader, layout []bc6hRun) (fields [4][3]int32, partition int) {
	var d int32
	for _, run := range layout {
		dst := &d
		if run.field != fD {
			ep, ch := run.field.slot()
			dst = &fields[ep][ch]
		}
		if run.a >= run.b {
			for bit := int(run.b); bit <= int(run.a); bit++ {
				*dst |= int32(r.read(1)) << uint(bit)
			}
		} else {
			for bit := int(run.b); bit >= int(run.a); bit-- {
				*dst |= int32(r.read(1)) << uint(bit)
			}
		}
	}
	return fields, int(d)
}
