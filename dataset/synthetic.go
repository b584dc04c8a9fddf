package dataset

import (
	"context"

	"github.com/kbukum/iterkit/sequence"
)

// SyntheticConfig shapes the batches produced by Synthetic.
type SyntheticConfig struct {
	Batches   int64
	BatchSize int
	Features  int
	Labels    int
	// TimeSteps > 0 adds a time axis and per-step masks.
	TimeSteps int
}

// Synthetic returns a replayable sequence whose batch i has every feature
// equal to i, every label equal to i+0.25 and, with time steps, feature and
// label masks equal to i+0.5 and i+0.75. The position of every batch is
// therefore recoverable from its content, which makes ordering, loss and
// replay checks trivial.
func Synthetic(cfg SyntheticConfig) *sequence.Generator[*DataSet] {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 1
	}
	if cfg.Features <= 0 {
		cfg.Features = 1
	}
	if cfg.Labels <= 0 {
		cfg.Labels = 1
	}
	return sequence.Generate(cfg.Batches, func(_ context.Context, i int64) (*DataSet, error) {
		v := float32(i)
		if cfg.TimeSteps > 0 {
			return &DataSet{
				Features:     Filled(v, cfg.BatchSize, cfg.Features, cfg.TimeSteps),
				Labels:       Filled(v+0.25, cfg.BatchSize, cfg.Labels, cfg.TimeSteps),
				FeaturesMask: Filled(v+0.5, cfg.BatchSize, cfg.TimeSteps),
				LabelsMask:   Filled(v+0.75, cfg.BatchSize, cfg.TimeSteps),
			}, nil
		}
		return &DataSet{
			Features: Filled(v, cfg.BatchSize, cfg.Features),
			Labels:   Filled(v+0.25, cfg.BatchSize, cfg.Labels),
		}, nil
	})
}
