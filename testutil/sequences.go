package testutil

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/sequence"
)

// Ints returns [0, 1, ..., n-1].
func Ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// FailingAt returns a replayable source of n positions that fails at
// position k on every epoch.
func FailingAt(n, k int64) *sequence.Generator[int64] {
	return sequence.Generate(n, func(_ context.Context, i int64) (int64, error) {
		if i == k {
			return 0, fmt.Errorf("disk read failed at %d", i)
		}
		return i, nil
	})
}

// Counting is an endless replayable source yielding 0, 1, 2, ... It counts
// Next calls, so tests can observe how far a worker ran ahead.
type Counting struct {
	calls atomic.Int64
}

func (c *Counting) HasNext(_ context.Context) (bool, error) { return true, nil }

func (c *Counting) Next(_ context.Context) (int, error) {
	return int(c.calls.Add(1) - 1), nil
}

// Calls returns the number of Next calls so far.
func (c *Counting) Calls() int64 { return c.calls.Load() }

func (c *Counting) SupportsRestart() bool           { return true }
func (c *Counting) Restart(_ context.Context) error { return nil }

// Shuffling replays Items but rotates them by one more position on every
// restart, like a source that reshuffles between epochs.
type Shuffling struct {
	Items    []int
	pos      int
	restarts int
}

func (s *Shuffling) HasNext(_ context.Context) (bool, error) { return s.pos < len(s.Items), nil }

func (s *Shuffling) Next(_ context.Context) (int, error) {
	if s.pos >= len(s.Items) {
		return 0, errors.Exhausted("shuffling source")
	}
	v := s.Items[(s.pos+s.restarts)%len(s.Items)]
	s.pos++
	return v, nil
}

func (s *Shuffling) SupportsRestart() bool { return true }

func (s *Shuffling) Restart(_ context.Context) error {
	s.pos = 0
	s.restarts++
	return nil
}

// Restarts returns the number of Restart calls so far.
func (s *Shuffling) Restarts() int { return s.restarts }

// Blocking wraps a sequence and holds every Next until Release is called.
// With honorCtx a held call gives up when its context is cancelled.
type Blocking[T any] struct {
	sequence.Sequence[T]

	honorCtx    bool
	calls       atomic.Int64
	entered     chan struct{}
	enterOnce   sync.Once
	release     chan struct{}
	releaseOnce sync.Once
}

// NewBlocking wraps inner.
func NewBlocking[T any](inner sequence.Sequence[T], honorCtx bool) *Blocking[T] {
	return &Blocking[T]{
		Sequence: inner,
		honorCtx: honorCtx,
		entered:  make(chan struct{}),
		release:  make(chan struct{}),
	}
}

func (b *Blocking[T]) Next(ctx context.Context) (T, error) {
	b.calls.Add(1)
	b.enterOnce.Do(func() { close(b.entered) })
	if b.honorCtx {
		select {
		case <-b.release:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	} else {
		<-b.release
	}
	return b.Sequence.Next(ctx)
}

// Entered is closed once the first Next call arrives.
func (b *Blocking[T]) Entered() <-chan struct{} { return b.entered }

// Calls returns the number of Next calls so far, held ones included.
func (b *Blocking[T]) Calls() int64 { return b.calls.Load() }

// Release lets every held and future Next call through. It is safe to call
// more than once.
func (b *Blocking[T]) Release() {
	b.releaseOnce.Do(func() { close(b.release) })
}
