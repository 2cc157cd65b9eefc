package bptc

type encoderTuning struct {
	bc7Modes  []int // visited in order
	bc6hModes []int // indices into bc6hModes, visited in order

	partitionLimit [4]int // per subset count
	tryBudget      int    // 0 = unlimited
	errorThreshold float64
	lsqIterations  int
	searchSweeps   int
	pbitSearch     bool
	rotations      int // BC7 rotations tried for modes 4 and 5
	indexModes     int // BC7 index modes tried for mode 4

	// Test hooks.
	forceBadTransform bool
	trace             func(bestErr float64)
}

var (
	bc7ModesFast = []int{6, 1, 5, 3}
	bc7ModesAll  = []int{6, 1, 3, 5, 4, 7, 0, 2}

	bc6hModesFast = []int{10, 11, 12, 13, 0, 5}
	bc6hModesAll  = []int{10, 11, 12, 13, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
)

func encoderTuningFor(format Format, quality Quality) encoderTuning {
	if format.IsHDR() {
		// Best shares the balanced search for BC6H; the wider BC7 search does not
		// translate into measurable HDR gains.
		if quality == QualityFast {
			t := encoderTuning{
				bc6hModes:      bc6hModesFast,
				tryBudget:      8,
				errorThreshold: 16,
				lsqIterations:  1,
			}
			t.partitionLimit[2] = 1
			return t
		}
		t := encoderTuning{
			bc6hModes:      bc6hModesAll,
			tryBudget:      96,
			errorThreshold: 0,
			lsqIterations:  2,
			searchSweeps:   4,
		}
		t.partitionLimit[2] = 4
		return t
	}

	switch quality {
	case QualityFast:
		t := encoderTuning{
			bc7Modes:       bc7ModesFast,
			tryBudget:      8,
			errorThreshold: 16,
			lsqIterations:  1,
			rotations:      1,
			indexModes:     1,
		}
		t.partitionLimit[2] = 1
		return t
	case QualityBest:
		t := encoderTuning{
			bc7Modes:       bc7ModesAll,
			errorThreshold: 0,
			lsqIterations:  4,
			searchSweeps:   8,
			pbitSearch:     true,
			rotations:      4,
			indexModes:     2,
		}
		t.partitionLimit[2] = 64
		t.partitionLimit[3] = 64
		return t
	default:
		t := encoderTuning{
			bc7Modes:       bc7ModesAll,
			tryBudget:      48,
			errorThreshold: 4,
			lsqIterations:  2,
			searchSweeps:   4,
			pbitSearch:     true,
			rotations:      4,
			indexModes:     1,
		}
		t.partitionLimit[2] = 8
		t.partitionLimit[3] = 4
		return t
	}
}

// encoderTuningFromConfig applies the Tune fields of a validated config on top of the
// preset.
func encoderTuningFromConfig(cfg Config) encoderTuning {
	t := encoderTuningFor(cfg.Format, cfg.Quality)
	t.partitionLimit[2] = int(cfg.TunePartitionLimit2)
	t.partitionLimit[3] = int(cfg.TunePartitionLimit3)
	t.tryBudget = int(cfg.TuneTryBudget)
	t.errorThreshold = float64(cfg.TuneErrorThreshold)
	t.lsqIterations = int(cfg.TuneRefineIterations)
	t.searchSweeps = int(cfg.TuneSearchSweeps)
	return t
}
