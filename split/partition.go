package split

import (
	"context"

	"github.com/kbukum/iterkit/errors"
)

// Partition is one window of a Splitter. It implements sequence.Sequence
// and can feed a prefetch engine like any other source.
type Partition[T any] struct {
	desc  Descriptor
	name  string
	state *sharedState[T]
}

// Descriptor returns the partition window.
func (p *Partition[T]) Descriptor() Descriptor { return p.desc }

// Index returns the partition index.
func (p *Partition[T]) Index() int { return p.desc.Index }

// Offset returns the first cursor position of the window.
func (p *Partition[T]) Offset() int64 { return p.desc.Offset }

// Len returns the window length.
func (p *Partition[T]) Len() int64 { return p.desc.Length }

// Name returns the partition name used in logs and metrics.
func (p *Partition[T]) Name() string { return p.name }

// SupportsRestart is always true: the splitter source is replayable.
func (p *Partition[T]) SupportsRestart() bool { return true }

// HasNext applies a pending reset, then reports whether the cursor is inside
// the window and the source has another batch.
func (p *Partition[T]) HasNext(ctx context.Context) (bool, error) {
	if err := p.enter("has_next"); err != nil {
		return false, err
	}
	defer p.state.release()

	if err := p.prepare(ctx); err != nil {
		return false, err
	}
	if !p.desc.Contains(p.state.cursor.Load()) {
		return false, nil
	}
	return p.state.src.HasNext(ctx)
}

// Next returns the batch at the cursor and advances it. Outside the window
// Next returns SEQUENCE_EXHAUSTED.
func (p *Partition[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if err := p.enter("next"); err != nil {
		return zero, err
	}
	defer p.state.release()

	if err := p.prepare(ctx); err != nil {
		return zero, err
	}
	if !p.desc.Contains(p.state.cursor.Load()) {
		return zero, errors.Exhausted(p.desc.String())
	}
	batch, err := p.state.pull(ctx, p.name)
	if err != nil {
		return zero, err
	}
	p.state.metrics.RecordConsumed(ctx, p.name)
	return batch, nil
}

// Restart raises the shared reset flag. The source is rewound by the next
// HasNext or Next on any partition of the splitter.
func (p *Partition[T]) Restart(_ context.Context) error {
	if err := p.state.failure(); err != nil {
		return err
	}
	p.state.reset.Store(true)
	return nil
}

func (p *Partition[T]) enter(op string) error {
	return p.state.claim(p.desc.Index, p.name, op)
}

// prepare runs the steps common to HasNext and Next: fail fast on a fatal
// splitter error, apply a pending reset and, with auto-seek, fast-forward
// to the window.
func (p *Partition[T]) prepare(ctx context.Context) error {
	if err := p.state.failure(); err != nil {
		return err
	}
	if err := p.state.applyReset(ctx, p.name); err != nil {
		return err
	}
	if p.state.autoSeek && p.state.cursor.Load() < p.desc.Offset {
		return p.state.seek(ctx, p.desc.Offset, p.name)
	}
	return nil
}
