package pipeline

import (
	"context"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/prefetch"
)

// Prefetch runs the upstream stages of p on a prefetch engine worker with a
// buffer of depth values, overlapping them with the downstream stages.
// Source failures reach the consumer at their position as PRODUCER_FAULT
// errors. Closing the iterator shuts the engine down, then closes upstream.
// If the worker misses the shutdown timeout it may still be reading upstream,
// so upstream is left open and SHUTDOWN_TIMEOUT is returned.
func Prefetch[T any](p *Pipeline[T], depth int, opts ...prefetch.Option) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(ctx context.Context) Iterator[T] {
			upstream := ToSequence(ctx, p)
			engine, err := prefetch.New[T](upstream, depth, opts...)
			if err != nil {
				return &errIter[T]{err: err, closer: upstream.Close}
			}
			return &engineIter[T]{engine: engine, upstream: upstream}
		},
	}
}

type engineIter[T any] struct {
	engine   *prefetch.Engine[T]
	upstream *IteratorSequence[T]
}

func (it *engineIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	ok, err := it.engine.HasNext(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := it.engine.Next(ctx)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (it *engineIter[T]) Close() error {
	err := it.engine.Shutdown()
	if errors.Is(err, errors.ErrCodeShutdownTimeout) {
		return err
	}
	if cerr := it.upstream.Close(); err == nil {
		err = cerr
	}
	return err
}
