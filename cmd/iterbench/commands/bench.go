package commands

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/kbukum/iterkit/bootstrap"
	"github.com/kbukum/iterkit/config"
	"github.com/kbukum/iterkit/dataset"
	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/logger"
	"github.com/kbukum/iterkit/observability"
	"github.com/kbukum/iterkit/pipeline"
	"github.com/kbukum/iterkit/prefetch"
	"github.com/kbukum/iterkit/sequence"
	"github.com/kbukum/iterkit/split"
	"github.com/kbukum/iterkit/version"
)

type batchSeq = sequence.Sequence[*dataset.DataSet]

// target is one iterator drained every epoch: the whole engine, or one
// partition of the split engine.
type target struct {
	name   string
	seq    batchSeq
	offset int64
	length int64
}

type bench struct {
	cfg     *config.IteratorConfig
	summary *bootstrap.Summary
	log     *logger.Logger

	engine   *prefetch.Engine[*dataset.DataSet]
	splitter *split.Splitter[*dataset.DataSet]
	check    *prefetch.InterleavedCallback[*dataset.DataSet]
	targets  []target
}

// build creates the source, the engine and the optional splitter, and
// registers the engine with the app.
func (b *bench) build(app *bootstrap.App[*config.IteratorConfig]) error {
	cfg := b.cfg
	b.log = app.Logger.WithComponent(serviceName)
	b.log.Info("building bench", version.Get().Fields())

	metrics, err := observability.NewIteratorMetrics(observability.Meter(serviceName))
	if err != nil {
		return err
	}

	src := dataset.Synthetic(dataset.SyntheticConfig{
		Batches:   cfg.Dataset.Batches,
		BatchSize: cfg.Dataset.BatchSize,
		Features:  cfg.Dataset.Features,
		Labels:    cfg.Dataset.Labels,
		TimeSteps: cfg.Dataset.TimeSteps,
	})

	opts := []prefetch.Option{
		prefetch.WithName("source"),
		prefetch.WithLogger(app.Logger.WithComponent("prefetch")),
		prefetch.WithMetrics(metrics),
		prefetch.WithTracer(observability.Tracer(serviceName)),
		prefetch.WithShutdownTimeout(cfg.Prefetch.ShutdownTimeout),
	}
	if cfg.Prefetch.CallbackEvery > 0 {
		b.check = prefetch.NewInterleavedCallback[*dataset.DataSet](b.log)
		opts = append(opts, prefetch.WithCallback(cfg.Prefetch.CallbackEvery, b.check.Call))
	}
	b.engine, err = prefetch.New[*dataset.DataSet](src, cfg.Prefetch.Depth, opts...)
	if err != nil {
		return err
	}
	if err := app.RegisterComponent(prefetch.AsComponent(b.engine)); err != nil {
		b.engine.Shutdown()
		return err
	}

	if !cfg.Split.Enabled() {
		b.addTarget("all", b.engine, 0, cfg.Dataset.Batches)
		return nil
	}

	scheme := split.Ratios(cfg.Split.Total, cfg.Split.Ratios...)
	if len(cfg.Split.Counts) > 0 {
		scheme = split.Counts(cfg.Split.Counts...)
	}
	sopts := []split.Option{
		split.WithPartitionNames(cfg.Split.Names...),
		split.WithLogger(app.Logger.WithComponent("split")),
		split.WithMetrics(metrics),
	}
	if cfg.Split.AutoSeek {
		sopts = append(sopts, split.WithAutoSeek())
	}
	b.splitter, err = split.New[*dataset.DataSet](b.engine, scheme, sopts...)
	if err != nil {
		return err
	}
	for _, p := range b.splitter.Partitions() {
		b.addTarget(p.Name(), p, p.Offset(), p.Len())
	}
	return nil
}

func (b *bench) addTarget(name string, seq batchSeq, offset, length int64) {
	b.targets = append(b.targets, target{name: name, seq: seq, offset: offset, length: length})
	b.summary.TrackPartition(name, fmt.Sprintf("[%d, %d)", offset, offset+length), b.cfg.Prefetch.Depth)
}

// run drains every target once per epoch. From the second epoch on the
// first target is restarted, which rewinds the shared source.
func (b *bench) run(ctx context.Context) error {
	for epoch := 1; epoch <= b.cfg.Epochs; epoch++ {
		for i, t := range b.targets {
			if epoch > 1 && i == 0 {
				if err := t.seq.Restart(ctx); err != nil {
					return err
				}
			}
			res := b.drain(ctx, epoch, t)
			b.summary.RecordEpoch(res)
			if res.Err != nil {
				return res.Err
			}
		}
	}

	if b.check != nil {
		b.log.Info("callback order checked", logger.Fields(
			"calls", b.check.Calls(),
			"violations", b.check.Violations(),
		))
		if v := b.check.Violations(); v > 0 {
			return errors.Internal(fmt.Errorf("%d callbacks arrived out of order", v))
		}
	}
	return nil
}

// drain pulls every batch of t for one epoch and checks that batch k holds
// position offset+k.
func (b *bench) drain(ctx context.Context, epoch int, t target) bootstrap.EpochResult {
	start := time.Now()
	var n int64
	err := pipeline.ForEach(ctx, pipeline.FromSequence[*dataset.DataSet](t.seq), func(_ context.Context, ds *dataset.DataSet) error {
		want := t.offset + n
		if got := ds.Features.Mean(); math.Abs(got-float64(want)) > dataset.DefaultEpsilon {
			return errors.Internal(fmt.Errorf("%s: batch %d holds position %g, want %d", t.name, n, got, want))
		}
		n++
		return nil
	})
	if err == nil && n != t.length {
		err = errors.Internal(fmt.Errorf("%s: delivered %d batches, want %d", t.name, n, t.length))
	}

	d := time.Since(start)
	fields := logger.Fields(
		logger.FieldPartition, t.name,
		logger.FieldEpoch, epoch,
		logger.FieldProduced, n,
		logger.FieldDuration, d.Milliseconds(),
	)
	if err != nil {
		b.log.Error("epoch failed", fields, logger.ErrorFields("drain", err))
	} else {
		b.log.Info("epoch drained", fields)
	}
	return bootstrap.EpochResult{Iterator: t.name, Epoch: epoch, Batches: n, Duration: d, Err: err}
}
