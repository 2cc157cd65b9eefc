package bptc

import (
	"context"
	"math"
	"runtime"
	"sync"
	"sync/atomic"
)

// ConfigInit returns the default configuration for a format and quality preset.
func ConfigInit(format Format, quality Quality, flags Flags) (Config, error) {
	if err := validateFormat(format); err != nil {
		return Config{}, err
	}
	if err := validateQuality(quality); err != nil {
		return Config{}, err
	}
	if err := validateFlags(format, flags); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Format:  format,
		Quality: quality,
		Flags:   flags,

		CWRWeight: 1,
		CWGWeight: 1,
		CWBWeight: 1,
		CWAWeight: 1,
	}

	t := encoderTuningFor(format, quality)
	cfg.TunePartitionLimit2 = uint32(t.partitionLimit[2])
	cfg.TunePartitionLimit3 = uint32(t.partitionLimit[3])
	cfg.TuneTryBudget = uint32(t.tryBudget)
	cfg.TuneErrorThreshold = float32(t.errorThreshold)
	cfg.TuneRefineIterations = uint32(t.lsqIterations)
	cfg.TuneSearchSweeps = uint32(t.searchSweeps)
	return cfg, nil
}

// Encoder encodes single tiles with a fixed configuration. It is safe for concurrent use.
type Encoder struct {
	cfg    Config
	tune   encoderTuning
	metric ldrMetric
	cl     Clusterer
}

// NewEncoder validates a copy of cfg and prepares an Encoder for it.
func NewEncoder(cfg *Config) (*Encoder, error) {
	if cfg == nil {
		return nil, newError(ErrBadParam, "bptc: nil config")
	}
	cfgi := *cfg
	if err := validateAndClampConfig(&cfgi); err != nil {
		return nil, err
	}
	e := &Encoder{
		cfg:  cfgi,
		tune: encoderTuningFromConfig(cfgi),
		metric: ldrMetric{
			weights:    [4]float32{cfgi.CWRWeight, cfgi.CWGWeight, cfgi.CWBWeight, cfgi.CWAWeight},
			perceptual: cfgi.Flags&FlagUsePerceptual != 0,
		},
		cl: cfgi.Clusterer,
	}
	if e.cl == nil {
		e.cl = DefaultClusterer()
	}
	return e, nil
}

// Config returns the validated configuration the encoder uses.
func (e *Encoder) Config() Config { return e.cfg }

// EncodeTileBC7 encodes one RGBA8 tile. The encoder must be configured for FormatBC7.
func (e *Encoder) EncodeTileBC7(tile *TileLDR) ([BlockBytes]byte, error) {
	if tile == nil {
		return [BlockBytes]byte{}, newError(ErrBadParam, "bptc: nil tile")
	}
	if e.cfg.Format != FormatBC7 {
		return [BlockBytes]byte{}, newError(ErrBadFormat, "bptc: encoder is not configured for BC7")
	}
	metric := e.metric
	if e.cfg.Flags&FlagUseAlphaWeight != 0 {
		scale := float32(tile.maxAlpha()) / 255
		metric.weights[0] *= scale
		metric.weights[1] *= scale
		metric.weights[2] *= scale
	}
	return encodeTileBC7(tile, &e.tune, &metric, e.cl)
}

// EncodeTileBC6H encodes one half-float RGB tile. The encoder must be configured for one
// of the BC6H formats; the format decides signedness.
func (e *Encoder) EncodeTileBC6H(tile *TileHDR) ([BlockBytes]byte, error) {
	if tile == nil {
		return [BlockBytes]byte{}, newError(ErrBadParam, "bptc: nil tile")
	}
	if !e.cfg.Format.IsHDR() {
		return [BlockBytes]byte{}, newError(ErrBadFormat, "bptc: encoder is not configured for BC6H")
	}
	return encodeTileBC6H(tile, e.cfg.Format.Signed(), &e.tune, e.cl)
}

type encoderKey struct {
	format  Format
	quality Quality
}

var defaultEncoders sync.Map // encoderKey -> *Encoder

func defaultEncoder(format Format, quality Quality) (*Encoder, error) {
	key := encoderKey{format, quality}
	if e, ok := defaultEncoders.Load(key); ok {
		return e.(*Encoder), nil
	}
	var flags Flags
	if format == FormatBC7 {
		flags = FlagUsePerceptual
	}
	cfg, err := ConfigInit(format, quality, flags)
	if err != nil {
		return nil, err
	}
	e, err := NewEncoder(&cfg)
	if err != nil {
		return nil, err
	}
	actual, _ := defaultEncoders.LoadOrStore(key, e)
	return actual.(*Encoder), nil
}

// EncodeTileBC7 encodes one RGBA8 tile with the default settings for a quality tier.
func EncodeTileBC7(tile *TileLDR, q Quality) ([BlockBytes]byte, error) {
	e, err := defaultEncoder(FormatBC7, q)
	if err != nil {
		return [BlockBytes]byte{}, err
	}
	return e.EncodeTileBC7(tile)
}

// EncodeTileBC6H encodes one half-float RGB tile with the default settings for a quality
// tier.
func EncodeTileBC6H(tile *TileHDR, signed bool, q Quality) ([BlockBytes]byte, error) {
	format := FormatBC6HUF16
	if signed {
		format = FormatBC6HSF16
	}
	e, err := defaultEncoder(format, q)
	if err != nil {
		return [BlockBytes]byte{}, err
	}
	return e.EncodeTileBC6H(tile)
}

// ContextAlloc creates a reusable compression context. threadCount is the number of
// worker goroutines CompressImage uses; 0 selects runtime.GOMAXPROCS(0).
func ContextAlloc(cfg *Config, threadCount int) (*Context, error) {
	if cfg == nil {
		return nil, newError(ErrBadParam, "bptc: nil config")
	}
	if threadCount < 0 {
		return nil, newError(ErrBadParam, "bptc: invalid thread count")
	}
	if threadCount == 0 {
		threadCount = runtime.GOMAXPROCS(0)
	}

	enc, err := NewEncoder(cfg)
	if err != nil {
		return nil, err
	}
	c := &Context{
		cfg:         enc.cfg,
		threadCount: threadCount,
		enc:         enc,
	}
	c.state.Store(uint32(ctxIdle))
	return c, nil
}

func (c *Context) Close() error {
	if c == nil {
		return nil
	}
	// Pure-Go context has no external resources.
	return nil
}

// CompressCancel requests cooperative cancellation of the running CompressImage call.
// Tiles already being encoded are finished; no new tiles are started.
func (c *Context) CompressCancel() error {
	if c == nil {
		return newError(ErrBadContext, "bptc: nil context")
	}
	c.compress.cancel.Store(1)
	return nil
}

// CompressImage encodes img into out, which must hold exactly one block per 4x4 tile in
// row-major tile order.
//
// Cancellation through ctx or CompressCancel is checked between tiles and reported as
// ErrCancelled; tiles finished before that point are fully written.
func (c *Context) CompressImage(ctx context.Context, img *Image, out []byte) error {
	if c == nil {
		return newError(ErrBadContext, "bptc: nil context")
	}
	if img == nil {
		return newError(ErrBadParam, "bptc: nil image")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if err := validateImageIn(img); err != nil {
		return err
	}
	blocksX, blocksY, err := blockGrid(img.DimX, img.DimY)
	if err != nil {
		return err
	}
	totalBlocks := blocksX * blocksY
	if len(out) != totalBlocks*BlockBytes {
		return newError(ErrBadBufferSize, "bptc: output buffer size does not match block count")
	}

	if !c.state.CompareAndSwap(uint32(ctxIdle), uint32(ctxCompressActive)) {
		return newError(ErrBadContext, "bptc: context busy")
	}
	defer c.state.Store(uint32(ctxIdle))
	c.beginCompress(uint32(totalBlocks))

	workers := c.threadCount
	if c.cfg.Flags&FlagSequential != 0 {
		workers = 1
	}
	workers = max(1, min(workers, totalBlocks))

	log := Logger()
	log.Info("bptc: compress image",
		"format", c.cfg.Format.String(),
		"quality", c.cfg.Quality.String(),
		"width", img.DimX,
		"height", img.DimY,
		"blocks", totalBlocks,
		"workers", workers)

	var firstErr error
	var errOnce sync.Once
	var stop atomic.Uint32

	work := func() {
		for {
			if stop.Load() != 0 || c.compress.cancel.Load() != 0 || ctx.Err() != nil {
				return
			}
			i := int(c.compress.nextBlock.Add(1) - 1)
			if i >= totalBlocks {
				return
			}
			bx := i % blocksX
			by := i / blocksX
			blk, err := c.encodeTile(img, bx*4, by*4)
			if err != nil {
				errOnce.Do(func() {
					firstErr = err
					stop.Store(1)
				})
				return
			}
			copy(out[i*BlockBytes:(i+1)*BlockBytes], blk[:])

			done := c.compress.doneBlocks.Add(1)
			c.maybeReportProgress(done, c.cfg.ProgressCallback)
		}
	}

	if workers == 1 {
		work()
	} else {
		var wg sync.WaitGroup
		wg.Add(workers)
		for w := 0; w < workers; w++ {
			go func() {
				defer wg.Done()
				work()
			}()
		}
		wg.Wait()
	}

	if firstErr != nil {
		return firstErr
	}
	done := int(c.compress.doneBlocks.Load())
	if done < totalBlocks {
		log.Warn("bptc: compression cancelled", "done", done, "blocks", totalBlocks)
		return wrapError(ErrCancelled, "bptc: compression cancelled", ctx.Err())
	}
	log.Info("bptc: compress image done", "blocks", totalBlocks)
	return nil
}

// encodeTile extracts and encodes the tile at (x0, y0).
func (c *Context) encodeTile(img *Image, x0, y0 int) ([BlockBytes]byte, error) {
	if c.cfg.Format == FormatBC7 {
		var tile TileLDR
		switch img.DataType {
		case TypeU8:
			tile = ExtractTileRGBA8(img.DataU8, img.DimX, img.DimY, x0, y0)
		case TypeF16:
			tile = extractTileLDRFromF16(img.DataF16, img.DimX, img.DimY, x0, y0)
		default:
			tile = extractTileLDRFromF32(img.DataF32, img.DimX, img.DimY, x0, y0)
		}
		return c.enc.EncodeTileBC7(&tile)
	}

	var tile TileHDR
	switch img.DataType {
	case TypeU8:
		tile = extractTileHDRFromU8(img.DataU8, img.DimX, img.DimY, x0, y0)
	case TypeF16:
		tile = ExtractTileRGBAF16(img.DataF16, img.DimX, img.DimY, x0, y0)
	default:
		tile = ExtractTileRGBAF32(img.DataF32, img.DimX, img.DimY, x0, y0)
	}
	return c.enc.EncodeTileBC6H(&tile)
}

func (c *Context) beginCompress(totalBlocks uint32) {
	c.compress.totalBlocks.Store(totalBlocks)
	c.compress.nextBlock.Store(0)
	c.compress.doneBlocks.Store(0)
	c.compress.cancel.Store(0)

	// Report every 1% or 4096 blocks, whichever is larger.
	minDiff := float32(1.0)
	if totalBlocks != 0 {
		minDiff = max(minDiff, (4096.0/float32(totalBlocks))*100.0)
	}
	c.compress.progressMinDiffBits.Store(math.Float32bits(minDiff))
	c.compress.progressLastValueBits.Store(math.Float32bits(0.0))
}

func (c *Context) maybeReportProgress(done uint32, cb func(float32)) {
	total := c.compress.totalBlocks.Load()
	if cb == nil || total == 0 {
		return
	}

	if done >= total {
		c.compress.progressMu.Lock()
		last := math.Float32frombits(c.compress.progressLastValueBits.Load())
		if last != 100.0 {
			cb(100.0)
			c.compress.progressLastValueBits.Store(math.Float32bits(100.0))
		}
		c.compress.progressMu.Unlock()
		return
	}

	minDiff := math.Float32frombits(c.compress.progressMinDiffBits.Load())
	last := math.Float32frombits(c.compress.progressLastValueBits.Load())
	thisValue := (float32(done) / float32(total)) * 100.0
	if (thisValue - last) <= minDiff {
		return
	}

	// Recheck under lock; another worker might have reported first.
	c.compress.progressMu.Lock()
	last = math.Float32frombits(c.compress.progressLastValueBits.Load())
	if (thisValue - last) > minDiff {
		cb(thisValue)
		c.compress.progressLastValueBits.Store(math.Float32bits(thisValue))
	}
	c.compress.progressMu.Unlock()
}

func validateFormat(format Format) error {
	switch format {
	case FormatBC7, FormatBC6HUF16, FormatBC6HSF16:
		return nil
	default:
		return newError(ErrBadFormat, "bptc: invalid format")
	}
}

func validateQuality(q Quality) error {
	switch q {
	case QualityFast, QualityBalanced, QualityBest:
		return nil
	default:
		return newError(ErrBadQuality, "bptc: invalid quality")
	}
}

func validateFlags(format Format, flags Flags) error {
	if flags&^FlagAll != 0 {
		return newError(ErrBadFlags, "bptc: invalid flags")
	}
	if format.IsHDR() && flags&(FlagUsePerceptual|FlagUseAlphaWeight) != 0 {
		return newError(ErrBadFlags, "bptc: perceptual and alpha weighting apply to BC7 only")
	}
	return nil
}

func validateAndClampConfig(cfg *Config) error {
	if err := validateFormat(cfg.Format); err != nil {
		return err
	}
	if err := validateQuality(cfg.Quality); err != nil {
		return err
	}
	if err := validateFlags(cfg.Format, cfg.Flags); err != nil {
		return err
	}

	cfg.TunePartitionLimit2 = min(cfg.TunePartitionLimit2, PartitionShapeCount)
	cfg.TunePartitionLimit3 = min(cfg.TunePartitionLimit3, PartitionShapeCount)
	cfg.TuneRefineIterations = min(cfg.TuneRefineIterations, 16)
	cfg.TuneSearchSweeps = min(cfg.TuneSearchSweeps, 64)
	if !(cfg.TuneErrorThreshold >= 0) {
		cfg.TuneErrorThreshold = 0
	}

	maxWeight := max(cfg.CWRWeight, cfg.CWGWeight, cfg.CWBWeight, cfg.CWAWeight)
	if !(maxWeight > 0) {
		return newError(ErrBadParam, "bptc: invalid component weights")
	}
	minWeight := maxWeight / 1000.0
	cfg.CWRWeight = max(cfg.CWRWeight, minWeight)
	cfg.CWGWeight = max(cfg.CWGWeight, minWeight)
	cfg.CWBWeight = max(cfg.CWBWeight, minWeight)
	cfg.CWAWeight = max(cfg.CWAWeight, minWeight)
	return nil
}

func validateImageIn(img *Image) error {
	if img.DimX <= 0 || img.DimY <= 0 {
		return newError(ErrBadParam, "bptc: invalid image dimensions")
	}
	n := img.DimX * img.DimY * 4
	var got int
	switch img.DataType {
	case TypeU8:
		got = len(img.DataU8)
	case TypeF16:
		got = len(img.DataF16)
	case TypeF32:
		got = len(img.DataF32)
	default:
		return newError(ErrBadParam, "bptc: unsupported image data type")
	}
	if got != n {
		return newError(ErrBadBufferSize, "bptc: image buffer size does not match dimensions")
	}
	return nil
}
