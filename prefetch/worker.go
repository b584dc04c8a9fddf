package prefetch

import (
	"context"
	"fmt"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/logger"
	"github.com/kbukum/iterkit/observability"
)

// run is the worker loop for one epoch. It exits after pushing the end
// item, after pushing a fault, or when ctx is cancelled.
func (e *Engine[T]) run(ctx context.Context, buf chan<- item[T], done chan<- struct{}, epoch int64) {
	defer close(done)

	ctx, span := observability.StartEpochSpan(ctx, e.tracer, e.name, e.id, epoch, e.depth)
	var produced int64
	var spanErr error
	defer func() { span.End(produced, spanErr) }()

	log := e.log.WithFields(logger.Fields(logger.FieldEpoch, epoch))
	log.Debug("worker started", logger.Fields(logger.FieldDepth, e.depth))

	for {
		batch, more, err := e.produce(ctx)
		if ctx.Err() != nil {
			spanErr = ctx.Err()
			log.Debug("worker cancelled", logger.Fields(logger.FieldProduced, produced))
			return
		}
		if err != nil {
			fault := errors.ProducerFault(produced, err)
			spanErr = fault
			log.Warn("producer fault", logger.Fields(
				logger.FieldPosition, produced,
				logger.FieldError, err.Error(),
			))
			push(ctx, buf, item[T]{kind: kindFault, err: fault})
			return
		}
		if !more {
			push(ctx, buf, item[T]{kind: kindEnd})
			log.Debug("worker finished", logger.Fields(logger.FieldProduced, produced))
			return
		}

		e.metrics.RecordProduced(ctx, e.name)
		if e.hooks.callback != nil && (produced+1)%e.hooks.callbackEvery == 0 {
			e.hooks.callback(ctx, Event[T]{Epoch: epoch, Position: produced, Batch: batch})
		}
		produced++

		if !push(ctx, buf, item[T]{kind: kindBatch, batch: batch}) {
			spanErr = ctx.Err()
			return
		}
	}
}

// produce pulls one batch from the source, snapshots it and runs the
// preprocessor. A panic in the source is reported as an error.
func (e *Engine[T]) produce(ctx context.Context) (batch T, more bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			batch, more, err = zero, false, fmt.Errorf("source panicked: %v", r)
		}
	}()

	var zero T
	ok, err := e.src.HasNext(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	batch, err = e.src.Next(ctx)
	if err != nil {
		return zero, false, err
	}
	batch = e.hooks.copy(batch)
	if e.hooks.preprocess != nil {
		batch, err = e.hooks.preprocess(ctx, batch)
		if err != nil {
			return zero, false, err
		}
	}
	return batch, true, nil
}

// push blocks until the item is buffered or ctx is cancelled.
func push[T any](ctx context.Context, buf chan<- item[T], it item[T]) bool {
	select {
	case buf <- it:
		return true
	case <-ctx.Done():
		return false
	}
}
