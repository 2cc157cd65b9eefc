package bptc

// Interpolation weights (in 1/64 units) for 2-, 3- and 4-bit indices. These are fixed by
// the BPTC formats. Each table is symmetric: w[n-1-i] == 64-w[i].
var (
	weights2 = [4]int32{0, 21, 43, 64}
	weights3 = [8]int32{0, 9, 18, 27, 37, 46, 55, 64}
	weights4 = [16]int32{0, 4, 9, 13, 17, 21, 26, 30, 34, 38, 43, 47, 51, 55, 60, 64}
)

// weightTable returns the interpolation weights for an index width.
func weightTable(indexBits int) []int32 {
	switch indexBits {
	case 2:
		return weights2[:]
	case 3:
		return weights3[:]
	case 4:
		return weights4[:]
	default:
		panic("bptc: invalid index width")
	}
}

// interpolate blends two integer endpoints with a 1/64 weight, rounding as the hardware does.
func interpolate(a, b, w int32) int32 {
	return (a*(64-w) + b*w + 32) >> 6
}
