package bptc_test

import (
	"bytes"
	"context"
	"sync/atomic"
	"testing"

	"github.com/bptc-go/bptc-encoder/bptc"
)

func blocksLenBytes(width, height int) int {
	return ((width + 3) / 4) * ((height + 3) / 4) * bptc.BlockBytes
}

func gradientRGBA8(w, h int) []byte {
	src := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			src[off+0] = uint8(x * 255 / max(1, w-1))
			src[off+1] = uint8(y * 255 / max(1, h-1))
			src[off+2] = uint8((x ^ y) * 7)
			src[off+3] = uint8(255 - x*3)
		}
	}
	return src
}

func TestContext_CompressDecode_RGBA8_Constant(t *testing.T) {
	cfg, err := bptc.ConfigInit(bptc.FormatBC7, bptc.QualityFast, bptc.FlagUsePerceptual)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	ctx, err := bptc.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("ContextAlloc: %v", err)
	}
	defer ctx.Close()

	const w, h = 8, 8
	src := make([]byte, w*h*4)
	for i := 0; i < len(src); i += 4 {
		src[i+0] = 10
		src[i+1] = 20
		src[i+2] = 30
		src[i+3] = 40
	}

	blocks := make([]byte, blocksLenBytes(w, h))
	img := bptc.Image{DimX: w, DimY: h, DataType: bptc.TypeU8, DataU8: src}
	if err := ctx.CompressImage(context.Background(), &img, blocks); err != nil {
		t.Fatalf("CompressImage: %v", err)
	}

	dst, err := bptc.DecodeBC7(blocks, w, h)
	if err != nil {
		t.Fatalf("DecodeBC7: %v", err)
	}
	if !bytes.Equal(dst, src) {
		t.Fatalf("round-trip mismatch")
	}

	var first [bptc.BlockBytes]byte
	copy(first[:], blocks[:bptc.BlockBytes])
	info, err := bptc.GetBlockInfo(bptc.FormatBC7, first)
	if err != nil {
		t.Fatalf("GetBlockInfo: %v", err)
	}
	if info.IsErrorBlock || info.PartitionCount != 1 {
		t.Fatalf("unexpected block: error=%v partitions=%d", info.IsErrorBlock, info.PartitionCount)
	}
	if info.Endpoints[0][0] != [4]float32{10, 20, 30, 40} {
		t.Fatalf("endpoint 0: got %v", info.Endpoints[0][0])
	}
}

func TestContext_MatchesEncodeRGBA8(t *testing.T) {
	const w, h = 37, 29
	src := gradientRGBA8(w, h)

	want, err := bptc.EncodeRGBA8(src, w, h, bptc.QualityBalanced)
	if err != nil {
		t.Fatalf("EncodeRGBA8: %v", err)
	}

	cfg, err := bptc.ConfigInit(bptc.FormatBC7, bptc.QualityBalanced, bptc.FlagUsePerceptual)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	for _, threads := range []int{1, 4} {
		ctx, err := bptc.ContextAlloc(&cfg, threads)
		if err != nil {
			t.Fatalf("ContextAlloc: %v", err)
		}
		got := make([]byte, blocksLenBytes(w, h))
		img := bptc.Image{DimX: w, DimY: h, DataType: bptc.TypeU8, DataU8: src}
		if err := ctx.CompressImage(context.Background(), &img, got); err != nil {
			t.Fatalf("CompressImage(threads=%d): %v", threads, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("threads=%d: output differs from EncodeRGBA8", threads)
		}
		ctx.Close()
	}
}

func TestContext_MatchesEncodeRGBAF16(t *testing.T) {
	const w, h = 12, 9
	src := make([]uint16, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			src[off+0] = bptc.Float32ToHalf(float32(x) * 0.75)
			src[off+1] = bptc.Float32ToHalf(float32(y) * 2.5)
			src[off+2] = bptc.Float32ToHalf(float32(x*y) / 16)
			src[off+3] = 0x3C00
		}
	}

	for _, signed := range []bool{false, true} {
		want, err := bptc.EncodeRGBAF16(src, w, h, signed, bptc.QualityFast)
		if err != nil {
			t.Fatalf("EncodeRGBAF16: %v", err)
		}
		format := bptc.FormatBC6HUF16
		if signed {
			format = bptc.FormatBC6HSF16
		}
		cfg, err := bptc.ConfigInit(format, bptc.QualityFast, 0)
		if err != nil {
			t.Fatalf("ConfigInit: %v", err)
		}
		ctx, err := bptc.ContextAlloc(&cfg, 2)
		if err != nil {
			t.Fatalf("ContextAlloc: %v", err)
		}
		got := make([]byte, blocksLenBytes(w, h))
		img := bptc.Image{DimX: w, DimY: h, DataType: bptc.TypeF16, DataF16: src}
		if err := ctx.CompressImage(context.Background(), &img, got); err != nil {
			t.Fatalf("CompressImage: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("signed=%v: output differs from EncodeRGBAF16", signed)
		}

		pix, err := bptc.DecodeBC6H(got, w, h, signed)
		if err != nil {
			t.Fatalf("DecodeBC6H: %v", err)
		}
		if len(pix) != w*h*4 || pix[3] != 0x3C00 {
			t.Fatalf("decoded image: len=%d alpha=%#x", len(pix), pix[3])
		}
	}
}

func TestConfigInit_RejectsInvalidInput(t *testing.T) {
	cases := []struct {
		name    string
		format  bptc.Format
		quality bptc.Quality
		flags   bptc.Flags
		want    bptc.ErrorCode
	}{
		{"format", bptc.Format(9), bptc.QualityFast, 0, bptc.ErrBadFormat},
		{"quality", bptc.FormatBC7, bptc.Quality(9), 0, bptc.ErrBadQuality},
		{"unknown flag", bptc.FormatBC7, bptc.QualityFast, bptc.Flags(1 << 12), bptc.ErrBadFlags},
		{"perceptual hdr", bptc.FormatBC6HUF16, bptc.QualityFast, bptc.FlagUsePerceptual, bptc.ErrBadFlags},
		{"alpha weight hdr", bptc.FormatBC6HSF16, bptc.QualityFast, bptc.FlagUseAlphaWeight, bptc.ErrBadFlags},
	}
	for _, c := range cases {
		_, err := bptc.ConfigInit(c.format, c.quality, c.flags)
		if got := bptc.ErrorCodeOf(err); got != c.want {
			t.Fatalf("%s: got %v want %v", c.name, bptc.ErrorString(got), bptc.ErrorString(c.want))
		}
	}
}

func TestNewEncoder_FormatMismatch(t *testing.T) {
	cfg, err := bptc.ConfigInit(bptc.FormatBC6HUF16, bptc.QualityFast, 0)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	enc, err := bptc.NewEncoder(&cfg)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if got := enc.Config(); got.Format != bptc.FormatBC6HUF16 || got.Quality != bptc.QualityFast {
		t.Fatalf("Config: format %v quality %v", got.Format, got.Quality)
	}
	var tile bptc.TileLDR
	if _, err := enc.EncodeTileBC7(&tile); bptc.ErrorCodeOf(err) != bptc.ErrBadFormat {
		t.Fatalf("EncodeTileBC7 on BC6H encoder: got %v", err)
	}
	if _, err := enc.EncodeTileBC6H(nil); bptc.ErrorCodeOf(err) != bptc.ErrBadParam {
		t.Fatalf("EncodeTileBC6H(nil): got %v", err)
	}
}

func TestContext_CompressImage_BadBufferSizeWritesNothing(t *testing.T) {
	cfg, err := bptc.ConfigInit(bptc.FormatBC7, bptc.QualityFast, 0)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	ctx, err := bptc.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("ContextAlloc: %v", err)
	}
	defer ctx.Close()

	const w, h = 8, 8
	src := gradientRGBA8(w, h)
	img := bptc.Image{DimX: w, DimY: h, DataType: bptc.TypeU8, DataU8: src}

	for _, n := range []int{blocksLenBytes(w, h) - 1, blocksLenBytes(w, h) + bptc.BlockBytes} {
		out := bytes.Repeat([]byte{0xCD}, n)
		err := ctx.CompressImage(context.Background(), &img, out)
		if bptc.ErrorCodeOf(err) != bptc.ErrBadBufferSize {
			t.Fatalf("len %d: got %v want BPTC_ERR_BAD_BUFFER_SIZE", n, err)
		}
		for i, b := range out {
			if b != 0xCD {
				t.Fatalf("len %d: byte %d written", n, i)
			}
		}
	}

	short := bptc.Image{DimX: w, DimY: h, DataType: bptc.TypeU8, DataU8: src[:len(src)-4]}
	if err := ctx.CompressImage(context.Background(), &short, make([]byte, blocksLenBytes(w, h))); bptc.ErrorCodeOf(err) != bptc.ErrBadBufferSize {
		t.Fatalf("short image: got %v want BPTC_ERR_BAD_BUFFER_SIZE", err)
	}
}

func TestDecode_RejectsBadSizes(t *testing.T) {
	if _, err := bptc.DecodeBC7(make([]byte, 15), 4, 4); bptc.ErrorCodeOf(err) != bptc.ErrBadBufferSize {
		t.Fatalf("DecodeBC7 short data: got %v", err)
	}
	if _, err := bptc.DecodeBC7(make([]byte, 16), 0, 4); bptc.ErrorCodeOf(err) != bptc.ErrBadParam {
		t.Fatalf("DecodeBC7 zero width: got %v", err)
	}
	if _, err := bptc.DecodeBC6H(make([]byte, 32), 4, 4, false); bptc.ErrorCodeOf(err) != bptc.ErrBadBufferSize {
		t.Fatalf("DecodeBC6H long data: got %v", err)
	}
}

func TestGetBlockInfo_ReservedBlocks(t *testing.T) {
	var zero [bptc.BlockBytes]byte
	info, err := bptc.GetBlockInfo(bptc.FormatBC7, zero)
	if err != nil || !info.IsErrorBlock {
		t.Fatalf("BC7 zero block: err=%v error=%v", err, info.IsErrorBlock)
	}
	if _, err := bptc.DecodeBlockBC7(zero); bptc.ErrorCodeOf(err) != bptc.ErrBadBlock {
		t.Fatalf("DecodeBlockBC7 zero block: got %v", err)
	}

	reserved := [bptc.BlockBytes]byte{0x13}
	info, err = bptc.GetBlockInfo(bptc.FormatBC6HUF16, reserved)
	if err != nil || !info.IsErrorBlock {
		t.Fatalf("BC6H reserved block: err=%v error=%v", err, info.IsErrorBlock)
	}
	if _, err := bptc.GetBlockInfo(bptc.Format(7), zero); bptc.ErrorCodeOf(err) != bptc.ErrBadFormat {
		t.Fatalf("bad format: got %v", err)
	}
}

type countingClusterer struct {
	calls atomic.Int32
	inner bptc.Clusterer
}

func (c *countingClusterer) Cluster(points *[16][4]float32, dims, k int) [16]uint8 {
	c.calls.Add(1)
	return c.inner.Cluster(points, dims, k)
}

func TestConfig_CustomClustererIsUsed(t *testing.T) {
	cl := &countingClusterer{inner: bptc.DefaultClusterer()}
	cfg, err := bptc.ConfigInit(bptc.FormatBC7, bptc.QualityBalanced, 0)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	cfg.Clusterer = cl
	enc, err := bptc.NewEncoder(&cfg)
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}

	src := gradientRGBA8(4, 4)
	tile := bptc.ExtractTileRGBA8(src, 4, 4, 0, 0)
	if _, err := enc.EncodeTileBC7(&tile); err != nil {
		t.Fatalf("EncodeTileBC7: %v", err)
	}
	if cl.calls.Load() == 0 {
		t.Fatalf("custom clusterer was not called")
	}
}

func TestParseQuality(t *testing.T) {
	cases := map[string]bptc.Quality{
		"fast":     bptc.QualityFast,
		"balanced": bptc.QualityBalanced,
		"medium":   bptc.QualityBalanced,
		"best":     bptc.QualityBest,
		"thorough": bptc.QualityBest,
	}
	for s, want := range cases {
		got, err := bptc.ParseQuality(s)
		if err != nil || got != want {
			t.Fatalf("ParseQuality(%q): got %v, %v want %v", s, got, err, want)
		}
	}
	if _, err := bptc.ParseQuality("ultra"); bptc.ErrorCodeOf(err) != bptc.ErrBadQuality {
		t.Fatalf("ParseQuality(ultra): got %v", err)
	}
}
