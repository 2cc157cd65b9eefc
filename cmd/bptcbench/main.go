package main

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"flag"
	"fmt"
	"hash"
	"hash/fnv"
	"os"
	"runtime/pprof"
	"strings"
	"time"

	"github.com/bptc-go/bptc-encoder/bptc"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "decode":
		decodeCmd(os.Args[2:])
	case "encode":
		encodeCmd(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  bptcbench encode -w W -h H [-format bc7|bc6h|bc6h-sf] [-quality fast|balanced|best] [-threads N] [-iters N] [-out file] [-checksum fnv|none]")
	fmt.Fprintln(os.Stderr, "  bptcbench decode -w W -h H [-in file] [-format bc7|bc6h|bc6h-sf] [-iters N] [-checksum fnv|none]")
}

type commonFlags struct {
	width       int
	height      int
	format      string
	iters       int
	checksumOpt string
	cpuprofile  string
}

func (c *commonFlags) register(fs *flag.FlagSet, iters int) {
	fs.IntVar(&c.width, "w", 256, "width")
	fs.IntVar(&c.height, "h", 256, "height")
	fs.StringVar(&c.format, "format", "bc7", "block format: bc7|bc6h|bc6h-sf")
	fs.IntVar(&c.iters, "iters", iters, "iterations")
	fs.StringVar(&c.checksumOpt, "checksum", "fnv", "checksum: fnv|none (for benchmarking)")
	fs.StringVar(&c.cpuprofile, "cpuprofile", "", "optional CPU profile output path")
}

func (c *commonFlags) validate() bptc.Format {
	if c.width <= 0 || c.height <= 0 {
		fmt.Fprintln(os.Stderr, "invalid dimensions")
		os.Exit(2)
	}
	if c.iters <= 0 {
		fmt.Fprintln(os.Stderr, "iters must be > 0")
		os.Exit(2)
	}
	f, err := parseFormat(c.format)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return f
}

// startProfile starts CPU profiling when a path is set and returns the stop function.
func startProfile(path string) func() {
	if path == "" {
		return func() {}
	}
	f, err := os.Create(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return func() {
		pprof.StopCPUProfile()
		_ = f.Close()
	}
}

func encodeCmd(args []string) {
	fs := flag.NewFlagSet("encode", flag.ExitOnError)
	var (
		c       commonFlags
		quality string
		threads int
		outPath string
	)
	c.register(fs, 5)
	fs.StringVar(&quality, "quality", "balanced", "quality: fast|balanced|best")
	fs.IntVar(&threads, "threads", 0, "worker goroutines (0 = GOMAXPROCS)")
	fs.StringVar(&outPath, "out", "", "optional output path for the last iteration's blocks")
	_ = fs.Parse(args)

	format := c.validate()
	q, err := bptc.ParseQuality(strings.ToLower(strings.TrimSpace(quality)))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	img := patternImage(c.width, c.height, format)
	var flags bptc.Flags
	if format == bptc.FormatBC7 {
		flags = bptc.FlagUsePerceptual
	}
	cfg, err := bptc.ConfigInit(format, q, flags)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	bctx, err := bptc.ContextAlloc(&cfg, threads)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer bctx.Close()

	stop := startProfile(c.cpuprofile)
	defer stop()

	doChecksum := strings.ToLower(strings.TrimSpace(c.checksumOpt)) != "none"
	h := fnv.New64a()
	blocks := make([]byte, ((c.width+3)/4)*((c.height+3)/4)*bptc.BlockBytes)

	start := time.Now()
	for i := 0; i < c.iters; i++ {
		if err := bctx.CompressImage(context.Background(), &img, blocks); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if doChecksum {
			_, _ = h.Write(blocks)
		}
	}
	dur := time.Since(start)

	if outPath != "" {
		if err := os.WriteFile(outPath, blocks, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	fmt.Printf("RESULT mode=encode format=%s quality=%s size=%dx%d iters=%d seconds=%.6f mpix/s=%.3f checksum=%s\n",
		format,
		q,
		c.width, c.height,
		c.iters,
		dur.Seconds(),
		mpixPerSecond(c.width, c.height, c.iters, dur),
		fmtChecksum(h, doChecksum),
	)
}

func decodeCmd(args []string) {
	fs := flag.NewFlagSet("decode", flag.ExitOnError)
	var (
		c      commonFlags
		inPath string
	)
	c.register(fs, 200)
	fs.StringVar(&inPath, "in", "", "raw block stream; empty encodes a synthetic pattern first")
	_ = fs.Parse(args)

	format := c.validate()

	var blocks []byte
	if inPath != "" {
		data, err := os.ReadFile(inPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		blocks = data
	} else {
		var err error
		blocks, err = encodePattern(c.width, c.height, format)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	stop := startProfile(c.cpuprofile)
	defer stop()

	doChecksum := strings.ToLower(strings.TrimSpace(c.checksumOpt)) != "none"
	h := fnv.New64a()

	start := time.Now()
	for i := 0; i < c.iters; i++ {
		if format == bptc.FormatBC7 {
			pix, err := bptc.DecodeBC7(blocks, c.width, c.height)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			if doChecksum {
				_, _ = h.Write(pix)
			}
			continue
		}
		pix, err := bptc.DecodeBC6H(blocks, c.width, c.height, format.Signed())
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if doChecksum {
			_ = binary.Write(h, binary.LittleEndian, pix)
		}
	}
	dur := time.Since(start)

	fmt.Printf("RESULT mode=decode format=%s size=%dx%d iters=%d seconds=%.6f mpix/s=%.3f checksum=%s\n",
		format,
		c.width, c.height,
		c.iters,
		dur.Seconds(),
		mpixPerSecond(c.width, c.height, c.iters, dur),
		fmtChecksum(h, doChecksum),
	)
}

func encodePattern(w, h int, format bptc.Format) ([]byte, error) {
	img := patternImage(w, h, format)
	if format == bptc.FormatBC7 {
		return bptc.EncodeRGBA8(img.DataU8, w, h, bptc.QualityFast)
	}
	return bptc.EncodeRGBAF16(img.DataF16, w, h, format.Signed(), bptc.QualityFast)
}

// patternImage fills an image with smooth gradients and hard edges. BC6H patterns span
// [0, 4) (or [-2, 2) when signed) to exercise the HDR range.
func patternImage(w, h int, format bptc.Format) bptc.Image {
	if format == bptc.FormatBC7 {
		pix := make([]byte, w*h*4)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				off := (y*w + x) * 4
				pix[off+0] = uint8(x*3 + y*5)
				pix[off+1] = uint8(x*11 + y*13)
				pix[off+2] = uint8(x ^ y)
				pix[off+3] = 255 - uint8((x*5+y*7)&0xFF)
			}
		}
		return bptc.Image{DimX: w, DimY: h, DataType: bptc.TypeU8, DataU8: pix}
	}

	var bias float32
	if format.Signed() {
		bias = 2
	}
	pix := make([]uint16, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			off := (y*w + x) * 4
			pix[off+0] = bptc.Float32ToHalf(float32(x%64)/16 - bias)
			pix[off+1] = bptc.Float32ToHalf(float32(y%32)/8 - bias)
			pix[off+2] = bptc.Float32ToHalf(float32((x^y)&15)/4 - bias)
			pix[off+3] = 0x3C00
		}
	}
	return bptc.Image{DimX: w, DimY: h, DataType: bptc.TypeF16, DataF16: pix}
}

func mpixPerSecond(w, h, iters int, dur time.Duration) float64 {
	return float64(w*h) * float64(iters) / dur.Seconds() / 1e6
}

func fmtChecksum(h hash.Hash64, enabled bool) string {
	if !enabled {
		return "none"
	}
	return hex.EncodeToString(h.Sum(nil))
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
