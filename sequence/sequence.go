package sequence

import (
	"context"
	"reflect"
)

// Sequence is a finite, optionally replayable stream of batches.
//
// HasNext reports whether Next will yield a batch in the current epoch.
// Next returns the next batch; once an epoch is exhausted Next fails with a
// SEQUENCE_EXHAUSTED error until Restart is called. Restart rewinds to the
// first batch and is only valid when SupportsRestart reports true.
//
// The prefetch engine, split partitions and the pipeline bridge all
// implement Sequence, so any of them can be wrapped by another.
type Sequence[T any] interface {
	HasNext(ctx context.Context) (bool, error)
	Next(ctx context.Context) (T, error)
	SupportsRestart() bool
	Restart(ctx context.Context) error
}

// Copier is implemented by batch types that can produce an independent deep
// copy of themselves.
type Copier[T any] interface {
	Copy() T
}

// Equaler is implemented by batch types with their own notion of equality,
// e.g. tolerance-based comparison of float payloads.
type Equaler[T any] interface {
	Equal(other T) bool
}

// Copy returns a deep copy of v when T implements Copier[T], v otherwise.
func Copy[T any](v T) T {
	if c, ok := any(v).(Copier[T]); ok {
		return c.Copy()
	}
	return v
}

// Equal compares a and b with Equaler[T] when implemented and falls back to
// reflect.DeepEqual.
func Equal[T any](a, b T) bool {
	if e, ok := any(a).(Equaler[T]); ok {
		return e.Equal(b)
	}
	return reflect.DeepEqual(a, b)
}

// Drain pulls every remaining batch of the current epoch from seq.
// The batches collected before an error are returned with it.
func Drain[T any](ctx context.Context, seq Sequence[T]) ([]T, error) {
	var out []T
	for {
		ok, err := seq.HasNext(ctx)
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		v, err := seq.Next(ctx)
		if err != nil {
			return out, err
		}
		out = append(out, v)
	}
}
