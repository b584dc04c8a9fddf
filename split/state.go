package split

import (
	"context"
	"sync/atomic"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/logger"
	"github.com/kbukum/iterkit/observability"
	"github.com/kbukum/iterkit/sequence"
)

const noOwner = -1

// sharedState is the cursor, reset flag and first-batch snapshot shared by
// every partition of one Splitter. Only atomics are used; the owner slot
// rejects overlapping calls instead of serialising them.
type sharedState[T any] struct {
	src      sequence.Sequence[T]
	copy     func(T) T
	autoSeek bool
	log      *logger.Logger
	metrics  *observability.IteratorMetrics

	cursor   atomic.Int64
	epoch    atomic.Int64
	reset    atomic.Bool
	snapshot atomic.Pointer[T]
	owner    atomic.Int64
	failed   atomic.Pointer[errors.AppError]
}

func newSharedState[T any](src sequence.Sequence[T], cp func(T) T, s *settings) *sharedState[T] {
	st := &sharedState[T]{
		src:      src,
		copy:     cp,
		autoSeek: s.autoSeek,
		log:      s.log,
		metrics:  s.metrics,
	}
	st.owner.Store(noOwner)
	return st
}

// claim takes the owner slot for partition idx.
func (st *sharedState[T]) claim(idx int, name, op string) error {
	if st.owner.CompareAndSwap(noOwner, int64(idx)) {
		return nil
	}
	st.log.Warn("partition accessed while another call is in progress", logger.Fields(
		logger.FieldPartition, name,
		logger.FieldOperation, op,
		"active_partition", st.owner.Load(),
	))
	return errors.ConcurrentAccess("split source").WithDetail("partition", name)
}

func (st *sharedState[T]) release() { st.owner.Store(noOwner) }

// failure returns the fatal error of the splitter, if any.
func (st *sharedState[T]) failure() error {
	if err := st.failed.Load(); err != nil {
		return err
	}
	return nil
}

// applyReset performs a pending restart: exactly one caller wins the flag,
// rewinds the source and zeroes the cursor.
func (st *sharedState[T]) applyReset(ctx context.Context, name string) error {
	if !st.reset.CompareAndSwap(true, false) {
		return nil
	}
	if err := st.src.Restart(ctx); err != nil {
		st.reset.Store(true)
		return errors.ProducerFault(0, err)
	}
	st.cursor.Store(0)
	epoch := st.epoch.Add(1)
	st.metrics.RecordRestart(ctx, name)
	st.log.Debug("source restarted", logger.Fields(
		logger.FieldPartition, name,
		logger.FieldEpoch, epoch,
	))
	return nil
}

// seek discards batches until the cursor reaches target or the source ends.
func (st *sharedState[T]) seek(ctx context.Context, target int64, name string) error {
	skipped := int64(0)
	for st.cursor.Load() < target {
		ok, err := st.src.HasNext(ctx)
		if err != nil {
			return st.fault(ctx, name, errors.ProducerFault(st.cursor.Load(), err))
		}
		if !ok {
			break
		}
		if _, err := st.pull(ctx, name); err != nil {
			return err
		}
		skipped++
	}
	if skipped > 0 {
		st.log.Debug("fast-forwarded to partition", logger.Fields(
			logger.FieldPartition, name,
			logger.FieldOffset, target,
			"skipped", skipped,
		))
	}
	return nil
}

// pull reads the batch at the cursor, validates it against the snapshot
// when it is the first of an epoch, and advances the cursor.
func (st *sharedState[T]) pull(ctx context.Context, name string) (T, error) {
	var zero T
	pos := st.cursor.Load()
	batch, err := st.src.Next(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrCodeExhausted) {
			return zero, err
		}
		return zero, st.fault(ctx, name, errors.ProducerFault(pos, err))
	}
	if pos == 0 {
		if err := st.checkSnapshot(ctx, name, batch); err != nil {
			return zero, err
		}
	}
	st.cursor.Add(1)
	return batch, nil
}

func (st *sharedState[T]) checkSnapshot(ctx context.Context, name string, batch T) error {
	if st.snapshot.Load() == nil {
		cp := st.copy(batch)
		if st.snapshot.CompareAndSwap(nil, &cp) {
			return nil
		}
	}
	if sequence.Equal(*st.snapshot.Load(), batch) {
		return nil
	}

	err := errors.ReplayInconsistency(st.epoch.Load())
	if st.failed.CompareAndSwap(nil, err) {
		st.metrics.RecordFault(ctx, name, string(err.Code))
		observability.SetSpanError(ctx, err)
		st.log.Warn("first batch differs from the first epoch; the source must not shuffle", logger.Fields(
			logger.FieldPartition, name,
			logger.FieldEpoch, st.epoch.Load(),
		))
	}
	return st.failure()
}

func (st *sharedState[T]) fault(ctx context.Context, name string, err *errors.AppError) error {
	st.metrics.RecordFault(ctx, name, string(err.Code))
	observability.SetSpanError(ctx, err)
	st.log.Warn("producer fault", logger.Fields(
		logger.FieldPartition, name,
		logger.FieldPosition, err.Details["position"],
		logger.FieldError, err.Error(),
	))
	return err
}
