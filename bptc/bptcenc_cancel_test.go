package bptc_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bptc-go/bptc-encoder/bptc"
)

func countUntouched(blocks []byte, sentinel byte) int {
	untouched := 0
	for i := 0; i < len(blocks)/bptc.BlockBytes; i++ {
		block := blocks[i*bptc.BlockBytes : (i+1)*bptc.BlockBytes]
		allSentinel := true
		for _, b := range block {
			if b != sentinel {
				allSentinel = false
				break
			}
		}
		if allSentinel {
			untouched++
		}
	}
	return untouched
}

func TestContext_CompressCancel_StopsEarly(t *testing.T) {
	cfg, err := bptc.ConfigInit(bptc.FormatBC7, bptc.QualityFast, 0)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}

	var bctx *bptc.Context
	var cancelOnce sync.Once
	cfg.ProgressCallback = func(p float32) {
		if p < 100 {
			cancelOnce.Do(func() {
				_ = bctx.CompressCancel()
			})
		}
	}

	bctx, err = bptc.ContextAlloc(&cfg, 1)
	if err != nil {
		t.Fatalf("ContextAlloc: %v", err)
	}
	defer bctx.Close()

	// Large enough that throttled progress reports before completion.
	const w, h = 512, 512
	src := make([]byte, w*h*4)
	for i := 0; i < len(src); i++ {
		src[i] = byte(i * 17)
	}

	blocks := make([]byte, blocksLenBytes(w, h))
	for i := range blocks {
		blocks[i] = 0xCD
	}

	img := bptc.Image{DimX: w, DimY: h, DataType: bptc.TypeU8, DataU8: src}
	err = bctx.CompressImage(context.Background(), &img, blocks)
	if !bptc.IsCancelled(err) {
		t.Fatalf("CompressImage: got %v want cancellation", err)
	}

	untouched := countUntouched(blocks, 0xCD)
	if untouched == 0 {
		t.Fatalf("expected some blocks to be left untouched after cancel")
	}
	if untouched == len(blocks)/bptc.BlockBytes {
		t.Fatalf("expected some blocks to be written before cancel")
	}

	// The cancel flag is cleared for the next call.
	small := bptc.Image{DimX: 8, DimY: 8, DataType: bptc.TypeU8, DataU8: src[:8*8*4]}
	if err := bctx.CompressImage(context.Background(), &small, make([]byte, blocksLenBytes(8, 8))); err != nil {
		t.Fatalf("CompressImage after cancel: %v", err)
	}
}

func TestContext_CompressImage_ContextCancelled(t *testing.T) {
	cfg, err := bptc.ConfigInit(bptc.FormatBC7, bptc.QualityFast, 0)
	if err != nil {
		t.Fatalf("ConfigInit: %v", err)
	}
	bctx, err := bptc.ContextAlloc(&cfg, 4)
	if err != nil {
		t.Fatalf("ContextAlloc: %v", err)
	}
	defer bctx.Close()

	const w, h = 64, 64
	src := make([]byte, w*h*4)
	blocks := make([]byte, blocksLenBytes(w, h))
	for i := range blocks {
		blocks[i] = 0xCD
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img := bptc.Image{DimX: w, DimY: h, DataType: bptc.TypeU8, DataU8: src}
	err = bctx.CompressImage(ctx, &img, blocks)
	if !bptc.IsCancelled(err) {
		t.Fatalf("CompressImage: got %v want cancellation", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("errors.Is(context.Canceled): false for %v", err)
	}
	if got := countUntouched(blocks, 0xCD); got != len(blocks)/bptc.BlockBytes {
		t.Fatalf("%d blocks written after pre-cancelled context", len(blocks)/bptc.BlockBytes-got)
	}
}
