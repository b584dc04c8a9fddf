package sequence

import (
	"context"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/resilience"
)

type retrying[T any] struct {
	Sequence[T]
	cfg resilience.RetryConfig
}

// WithRetry decorates seq so that a failing Next is retried according to cfg.
// Iterators never retry on their own; this decorator is how a caller opts in,
// typically underneath a prefetch engine so transient source failures do not
// turn into producer faults.
//
// When cfg.RetryIf is nil, AppErrors are retried only if they are flagged
// retryable and any other error is retried unless it is a context error.
func WithRetry[T any](seq Sequence[T], cfg resilience.RetryConfig) Sequence[T] {
	if cfg.RetryIf == nil {
		cfg.RetryIf = retryableSourceError
	}
	return &retrying[T]{Sequence: seq, cfg: cfg}
}

func (r *retrying[T]) Next(ctx context.Context) (T, error) {
	return resilience.Retry(ctx, r.cfg, func() (T, error) {
		return r.Sequence.Next(ctx)
	})
}

func retryableSourceError(err error) bool {
	if appErr, ok := errors.AsAppError(err); ok {
		return appErr.Retryable
	}
	return resilience.DefaultRetryIf(err)
}
