package bptc

import (
	"sync"
	"sync/atomic"
)

// Format selects the block format produced by a Config.
type Format uint8

const (
	FormatBC7      Format = iota // LDR RGBA
	FormatBC6HUF16               // HDR RGB, unsigned half floats
	FormatBC6HSF16               // HDR RGB, signed half floats
)

func (f Format) String() string {
	switch f {
	case FormatBC7:
		return "BC7"
	case FormatBC6HUF16:
		return "BC6H_UF16"
	case FormatBC6HSF16:
		return "BC6H_SF16"
	default:
		return "unknown"
	}
}

// IsHDR reports whether the format is one of the BC6H variants.
func (f Format) IsHDR() bool { return f == FormatBC6HUF16 || f == FormatBC6HSF16 }

// Signed reports whether the format stores signed half floats.
func (f Format) Signed() bool { return f == FormatBC6HSF16 }

// Quality selects the search preset: mode list, partition limits, try budget and error
// threshold.
type Quality uint8

const (
	QualityFast Quality = iota
	QualityBalanced
	QualityBest
)

func (q Quality) String() string {
	switch q {
	case QualityFast:
		return "fast"
	case QualityBalanced:
		return "balanced"
	case QualityBest:
		return "best"
	default:
		return "unknown"
	}
}

// ParseQuality maps a preset name to a Quality.
func ParseQuality(s string) (Quality, error) {
	switch s {
	case "fast":
		return QualityFast, nil
	case "balanced", "medium":
		return QualityBalanced, nil
	case "best", "thorough":
		return QualityBest, nil
	default:
		return 0, newError(ErrBadQuality, "bptc: unknown quality "+s)
	}
}

// Flags is a bitset of encoder options.
type Flags uint32

const (
	FlagUsePerceptual  Flags = 1 << 0 // luma-weighted error metric (BC7)
	FlagUseAlphaWeight Flags = 1 << 1 // scale color error by tile alpha (BC7)
	FlagSequential     Flags = 1 << 2 // ignore the thread count and encode in order
	FlagAll            Flags = (1 << 3) - 1
)

// DataType is a component storage type.
type DataType uint8

const (
	TypeU8 DataType = iota
	TypeF16
	TypeF32
)

// Config holds the encoder settings. Use ConfigInit to get the defaults for a format and
// quality, then adjust the Tune fields if needed.
type Config struct {
	Format  Format
	Quality Quality
	Flags   Flags

	CWRWeight float32
	CWGWeight float32
	CWBWeight float32
	CWAWeight float32

	TunePartitionLimit2  uint32  // top-ranked shapes tried per 2-subset mode
	TunePartitionLimit3  uint32  // top-ranked shapes tried per 3-subset mode
	TuneTryBudget        uint32  // candidates evaluated per tile, 0 = unlimited
	TuneErrorThreshold   float32 // stop once the tile error falls to this value
	TuneRefineIterations uint32  // least-squares passes per endpoint pair
	TuneSearchSweeps     uint32  // neighborhood search sweeps, 0 disables it

	// Clusterer groups pixels for partition ranking; nil selects DefaultClusterer.
	Clusterer Clusterer

	ProgressCallback func(progress float32)
}

// Image is a tightly-packed RGBA image used for CompressImage.
type Image struct {
	DimX     int
	DimY     int
	DataType DataType

	DataU8  []byte
	DataF16 []uint16
	DataF32 []float32
}

// BlockInfo describes a decoded block.
type BlockInfo struct {
	Format Format

	IsErrorBlock bool

	Mode           int // BC7: 0..7, BC6H: 1..14
	PartitionCount int
	Partition      int
	Rotation       int
	IndexMode      int

	// Decoded endpoints per subset: RGBA8 values for BC7, half floats converted to float32
	// for BC6H (alpha is 1).
	Endpoints [3][2][4]float32

	Indices  [16]uint8
	Indices2 [16]uint8

	PartitionAssignment [16]uint8
}

type contextState uint32

const (
	ctxIdle contextState = iota
	ctxCompressActive
)

// Context is a reusable codec context. It compresses one image at a time, spreading the
// tiles over its worker goroutines.
type Context struct {
	cfg         Config
	threadCount int
	enc         *Encoder

	state atomic.Uint32

	compress opState
}

type opState struct {
	cancel atomic.Uint32

	totalBlocks atomic.Uint32
	nextBlock   atomic.Uint32
	doneBlocks  atomic.Uint32

	progressMu            sync.Mutex
	progressMinDiffBits   atomic.Uint32 // float32 bits
	progressLastValueBits atomic.Uint32 // float32 bits
}
