package split

import (
	"fmt"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/logger"
	"github.com/kbukum/iterkit/sequence"
)

// Splitter partitions one replayable sequence into windows that share a
// single cursor.
type Splitter[T any] struct {
	name  string
	total int64
	descs []Descriptor
	parts []*Partition[T]
	state *sharedState[T]
}

// New validates scheme against src and builds one partition per window.
// The source must support restart: later epochs replay it from position 0.
// Slice, map and pointer batches need sequence.Copier or WithCopy so the
// first-epoch snapshot does not alias a reused buffer.
func New[T any](src sequence.Sequence[T], scheme Scheme, opts ...Option) (*Splitter[T], error) {
	if src == nil {
		return nil, errors.Configuration("source", "source sequence is required")
	}
	if !src.SupportsRestart() {
		return nil, errors.Configuration("source", "a sequence that cannot restart cannot be split")
	}
	descs, err := scheme.Descriptors()
	if err != nil {
		return nil, err
	}

	s := settings{name: "split"}
	for _, opt := range opts {
		opt(&s)
	}
	if len(s.names) > len(descs) {
		return nil, errors.Configuration("names", fmt.Sprintf("%d partition names for %d partitions", len(s.names), len(descs)))
	}
	cp, err := resolveCopy[T](&s)
	if err != nil {
		return nil, err
	}
	if s.log == nil {
		s.log = logger.Get("split")
	}
	s.log = s.log.WithFields(logger.Fields(logger.FieldEngine, s.name))

	sp := &Splitter[T]{
		name:  s.name,
		total: scheme.Total(),
		descs: descs,
		state: newSharedState(src, cp, &s),
	}
	sp.parts = make([]*Partition[T], len(descs))
	for i, d := range descs {
		name := fmt.Sprintf("%s-%d", s.name, i)
		if i < len(s.names) && s.names[i] != "" {
			name = s.names[i]
		}
		sp.parts[i] = &Partition[T]{desc: d, name: name, state: sp.state}
	}

	s.log.Warn("do not shuffle the source of a split: every epoch must replay the same order", logger.Fields(
		"partitions", len(descs),
		"total", sp.total,
	))
	return sp, nil
}

// Partitions returns one view per window, in window order. Every call
// returns the same views.
func (s *Splitter[T]) Partitions() []*Partition[T] {
	return append([]*Partition[T](nil), s.parts...)
}

// Partition returns the view at index i.
func (s *Splitter[T]) Partition(i int) (*Partition[T], error) {
	if i < 0 || i >= len(s.parts) {
		return nil, errors.Configuration("partition", fmt.Sprintf("no partition %d in a %d-way split", i, len(s.parts)))
	}
	return s.parts[i], nil
}

// Descriptors returns the windows of all partitions.
func (s *Splitter[T]) Descriptors() []Descriptor {
	return append([]Descriptor(nil), s.descs...)
}

// Total returns the number of batches covered by all windows.
func (s *Splitter[T]) Total() int64 { return s.total }

// Cursor returns the shared position in the current epoch.
func (s *Splitter[T]) Cursor() int64 { return s.state.cursor.Load() }

// Epoch returns how many restarts have been applied.
func (s *Splitter[T]) Epoch() int64 { return s.state.epoch.Load() }

// Err returns the fatal error of the splitter, or nil.
func (s *Splitter[T]) Err() error { return s.state.failure() }

// Train returns the first partition of a two-way split.
//
// Deprecated: use Partitions.
func (s *Splitter[T]) Train() (*Partition[T], error) {
	if err := s.requireTwoWay(); err != nil {
		return nil, err
	}
	return s.parts[0], nil
}

// Test returns the second partition of a two-way split.
//
// Deprecated: use Partitions.
func (s *Splitter[T]) Test() (*Partition[T], error) {
	if err := s.requireTwoWay(); err != nil {
		return nil, err
	}
	return s.parts[1], nil
}

func (s *Splitter[T]) requireTwoWay() error {
	if len(s.parts) != 2 {
		return errors.Configuration("scheme", fmt.Sprintf("train/test accessors need a two-way split, got %d partitions", len(s.parts)))
	}
	return nil
}
