package sequence

import (
	"context"

	"github.com/kbukum/iterkit/errors"
)

// SliceSequence replays an in-memory slice. Items are handed out as stored;
// consumers that mutate batches should copy them (the prefetch engine does).
type SliceSequence[T any] struct {
	items []T
	pos   int
}

// FromSlice creates a replayable sequence over items.
func FromSlice[T any](items []T) *SliceSequence[T] {
	return &SliceSequence[T]{items: items}
}

func (s *SliceSequence[T]) HasNext(_ context.Context) (bool, error) {
	return s.pos < len(s.items), nil
}

func (s *SliceSequence[T]) Next(_ context.Context) (T, error) {
	if s.pos >= len(s.items) {
		var zero T
		return zero, errors.Exhausted("slice sequence")
	}
	v := s.items[s.pos]
	s.pos++
	return v, nil
}

func (s *SliceSequence[T]) SupportsRestart() bool { return true }

func (s *SliceSequence[T]) Restart(_ context.Context) error {
	s.pos = 0
	return nil
}

// Len returns the number of batches per epoch.
func (s *SliceSequence[T]) Len() int { return len(s.items) }

// GenerateFunc produces the batch at position i of an epoch.
type GenerateFunc[T any] func(ctx context.Context, i int64) (T, error)

// Generator is a replayable sequence of n batches computed by fn.
// A failing fn does not advance the position, so the same batch is
// requested again on the next call.
type Generator[T any] struct {
	n   int64
	fn  GenerateFunc[T]
	pos int64
}

// Generate creates a replayable sequence of n batches.
func Generate[T any](n int64, fn GenerateFunc[T]) *Generator[T] {
	return &Generator[T]{n: n, fn: fn}
}

func (g *Generator[T]) HasNext(_ context.Context) (bool, error) {
	return g.pos < g.n, nil
}

func (g *Generator[T]) Next(ctx context.Context) (T, error) {
	if g.pos >= g.n {
		var zero T
		return zero, errors.Exhausted("generated sequence")
	}
	v, err := g.fn(ctx, g.pos)
	if err != nil {
		var zero T
		return zero, err
	}
	g.pos++
	return v, nil
}

func (g *Generator[T]) SupportsRestart() bool { return true }

func (g *Generator[T]) Restart(_ context.Context) error {
	g.pos = 0
	return nil
}

// Len returns the number of batches per epoch.
func (g *Generator[T]) Len() int64 { return g.n }

type nonReplayable[T any] struct {
	Sequence[T]
}

// NonReplayable wraps seq so that it reports no restart support and rejects
// Restart calls. Useful for single-pass sources such as network streams.
func NonReplayable[T any](seq Sequence[T]) Sequence[T] {
	return &nonReplayable[T]{Sequence: seq}
}

func (n *nonReplayable[T]) SupportsRestart() bool { return false }

func (n *nonReplayable[T]) Restart(_ context.Context) error {
	return errors.RestartUnsupported("single-pass sequence")
}
