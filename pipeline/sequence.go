package pipeline

import (
	"context"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/sequence"
)

// FromSequence creates a pipeline over the remaining batches of seq's
// current epoch. The pipeline does not restart or own seq; Close is a no-op.
func FromSequence[T any](seq sequence.Sequence[T]) *Pipeline[T] {
	return &Pipeline[T]{
		create: func(_ context.Context) Iterator[T] { return &seqIter[T]{seq: seq} },
	}
}

type seqIter[T any] struct {
	seq sequence.Sequence[T]
}

func (it *seqIter[T]) Next(ctx context.Context) (T, bool, error) {
	var zero T
	ok, err := it.seq.HasNext(ctx)
	if err != nil || !ok {
		return zero, false, err
	}
	v, err := it.seq.Next(ctx)
	if err != nil {
		return zero, false, err
	}
	return v, true, nil
}

func (it *seqIter[T]) Close() error { return nil }

// IteratorSequence adapts an Iterator to sequence.Sequence. It is one-shot:
// SupportsRestart is false.
type IteratorSequence[T any] struct {
	iter   Iterator[T]
	peeked bool
	head   T
	done   bool
}

// ToSequence builds p's iterator chain with ctx and exposes it as a one-shot
// sequence. Close releases the chain.
func ToSequence[T any](ctx context.Context, p *Pipeline[T]) *IteratorSequence[T] {
	return &IteratorSequence[T]{iter: p.create(ctx)}
}

func (s *IteratorSequence[T]) HasNext(ctx context.Context) (bool, error) {
	if s.peeked {
		return true, nil
	}
	if s.done {
		return false, nil
	}
	v, ok, err := s.iter.Next(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		s.done = true
		return false, nil
	}
	s.head, s.peeked = v, true
	return true, nil
}

func (s *IteratorSequence[T]) Next(ctx context.Context) (T, error) {
	var zero T
	ok, err := s.HasNext(ctx)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, errors.Exhausted("pipeline sequence")
	}
	v := s.head
	s.head, s.peeked = zero, false
	return v, nil
}

func (s *IteratorSequence[T]) SupportsRestart() bool { return false }

func (s *IteratorSequence[T]) Restart(_ context.Context) error {
	return errors.RestartUnsupported("pipeline sequence")
}

// Close closes the underlying iterator chain.
func (s *IteratorSequence[T]) Close() error { return s.iter.Close() }
