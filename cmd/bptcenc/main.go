package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/klauspost/compress/zstd"
	xdraw "golang.org/x/image/draw"

	"github.com/bptc-go/bptc-encoder/bptc"

	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xB5, 0x2F, 0xFD}

func main() {
	var (
		inPath        string
		outPath       string
		format        string
		quality       string
		threads       int
		width         int
		height        int
		encode        bool
		decode        bool
		supercompress bool
		previewScale  int
		verbose       bool
		dumpBlock     bool
	)
	flag.StringVar(&inPath, "in", "", "input file")
	flag.StringVar(&outPath, "out", "", "output file")
	flag.StringVar(&format, "format", "bc7", "block format: bc7|bc6h|bc6h-sf")
	flag.StringVar(&quality, "quality", "balanced", "encode quality preset: fast|balanced|best")
	flag.IntVar(&threads, "threads", 0, "worker goroutines (0 = GOMAXPROCS)")
	flag.IntVar(&width, "w", 0, "image width (decode)")
	flag.IntVar(&height, "h", 0, "image height (decode)")
	flag.BoolVar(&encode, "encode", false, "encode input image -> raw block stream")
	flag.BoolVar(&decode, "decode", false, "decode raw block stream -> .png")
	flag.BoolVar(&supercompress, "zstd", false, "zstd-compress the encoded block stream")
	flag.IntVar(&previewScale, "preview-scale", 1, "integer upscale factor for the decoded .png")
	flag.BoolVar(&verbose, "v", false, "log progress to stderr")
	flag.BoolVar(&dumpBlock, "dump-first-block", false, "print the first block as hex plus its decoded header and exit")
	flag.Parse()

	if inPath == "" {
		fmt.Fprintln(os.Stderr, "usage: bptcenc -in <input> [-out <output>] [-encode|-decode] [-format bc7|bc6h|bc6h-sf]")
		os.Exit(2)
	}
	if verbose {
		bptc.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	formatVal, err := parseFormat(format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	inData, err := os.ReadFile(inPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if dumpBlock {
		blocks, err := maybeDecompress(inData)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if len(blocks) < bptc.BlockBytes {
			fmt.Fprintln(os.Stderr, "bptcenc: missing first block")
			os.Exit(1)
		}
		first := [bptc.BlockBytes]byte(blocks[:bptc.BlockBytes])
		info, err := bptc.GetBlockInfo(formatVal, first)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hex.EncodeToString(first[:]))
		fmt.Println(describeBlock(info))
		return
	}

	if encode == decode {
		fmt.Fprintln(os.Stderr, "specify exactly one of -encode or -decode")
		os.Exit(2)
	}
	if outPath == "" {
		fmt.Fprintln(os.Stderr, "missing -out")
		os.Exit(2)
	}

	if encode {
		qualityVal, err := bptc.ParseQuality(strings.ToLower(strings.TrimSpace(quality)))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if code := runEncode(inData, outPath, formatVal, qualityVal, threads, supercompress, verbose); code != 0 {
			os.Exit(code)
		}
		return
	}

	// decode
	if width <= 0 || height <= 0 {
		fmt.Fprintln(os.Stderr, "decode needs -w and -h (raw block streams carry no header)")
		os.Exit(2)
	}
	if previewScale < 1 {
		fmt.Fprintln(os.Stderr, "-preview-scale must be >= 1")
		os.Exit(2)
	}
	blocks, err := maybeDecompress(inData)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	img, err := decodeImage(blocks, width, height, formatVal)
	if err != nil {
		// Reserved blocks still decode (to black); report and keep the image.
		if bptc.ErrorCodeOf(err) != bptc.ErrBadBlock || img == nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "warning:", err)
	}

	var outImg image.Image = img
	if previewScale > 1 {
		scaled := image.NewNRGBA(image.Rect(0, 0, width*previewScale, height*previewScale))
		xdraw.NearestNeighbor.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
		outImg = scaled
	}

	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer out.Close()

	if err := png.Encode(out, outImg); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runEncode encodes inData to outPath and returns the process exit code.
func runEncode(inData []byte, outPath string, format bptc.Format, quality bptc.Quality, threads int, supercompress, verbose bool) int {
	img, _, err := image.Decode(bytes.NewReader(inData))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	rgba := image.NewNRGBA(image.Rect(0, 0, img.Bounds().Dx(), img.Bounds().Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, xdraw.Src)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	blocks, err := encodeImage(ctx, rgba, format, quality, threads, verbose)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if supercompress {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		blocks = enc.EncodeAll(blocks, nil)
		_ = enc.Close()
	}
	if err := os.WriteFile(outPath, blocks, 0o644); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprintf(os.Stderr, "wrote %s (%dx%d, %s, %d bytes)\n", outPath, rgba.Rect.Dx(), rgba.Rect.Dy(), format, len(blocks))
	return 0
}

func encodeImage(ctx context.Context, rgba *image.NRGBA, format bptc.Format, quality bptc.Quality, threads int, verbose bool) ([]byte, error) {
	var flags bptc.Flags
	if format == bptc.FormatBC7 {
		flags = bptc.FlagUsePerceptual
	}
	cfg, err := bptc.ConfigInit(format, quality, flags)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.ProgressCallback = func(p float32) {
			fmt.Fprintf(os.Stderr, "\rencoding: %5.1f%%", p)
			if p >= 100 {
				fmt.Fprintln(os.Stderr)
			}
		}
	}
	bctx, err := bptc.ContextAlloc(&cfg, threads)
	if err != nil {
		return nil, err
	}
	defer bctx.Close()

	w, h := rgba.Rect.Dx(), rgba.Rect.Dy()
	blocks := make([]byte, ((w+3)/4)*((h+3)/4)*bptc.BlockBytes)
	img := bptc.Image{DimX: w, DimY: h, DataType: bptc.TypeU8, DataU8: rgba.Pix}
	if err := bctx.CompressImage(ctx, &img, blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func decodeImage(blocks []byte, w, h int, format bptc.Format) (*image.NRGBA, error) {
	if format == bptc.FormatBC7 {
		pix, err := bptc.DecodeBC7(blocks, w, h)
		if pix == nil {
			return nil, err
		}
		return &image.NRGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, err
	}

	half, err := bptc.DecodeBC6H(blocks, w, h, format.Signed())
	if half == nil {
		return nil, err
	}
	pix8 := make([]byte, w*h*4)
	for i := range pix8 {
		v := bptc.HalfToFloat32(half[i])
		if !(v >= 0) {
			v = 0
		} else if v > 1 {
			v = 1
		}
		pix8[i] = uint8(v*255 + 0.5)
	}
	return &image.NRGBA{Pix: pix8, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, err
}

func maybeDecompress(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, zstdMagic) {
		return data, nil
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func describeBlock(info bptc.BlockInfo) string {
	if info.IsErrorBlock {
		return "reserved block"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s mode=%d partitions=%d partition=%d", info.Format, info.Mode, info.PartitionCount, info.Partition)
	if info.Format == bptc.FormatBC7 {
		fmt.Fprintf(&b, " rotation=%d index-mode=%d", info.Rotation, info.IndexMode)
	}
	for s := 0; s < info.PartitionCount; s++ {
		fmt.Fprintf(&b, "\n  subset %d: %v -> %v", s, info.Endpoints[s][0], info.Endpoints[s][1])
	}
	fmt.Fprintf(&b, "\n  indices: %v", info.Indices)
	return b.String()
}

func parseFormat(s string) (bptc.Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bc7":
		return bptc.FormatBC7, nil
	case "bc6h", "bc6h-uf", "bc6h-uf16":
		return bptc.FormatBC6HUF16, nil
	case "bc6h-sf", "bc6h-sf16":
		return bptc.FormatBC6HSF16, nil
	default:
		return 0, fmt.Errorf("invalid -format %q (want bc7|bc6h|bc6h-sf)", s)
	}
}
