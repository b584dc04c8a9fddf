package split

import (
	"fmt"
	"reflect"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/logger"
	"github.com/kbukum/iterkit/observability"
	"github.com/kbukum/iterkit/sequence"
)

// Option configures a Splitter.
type Option func(*settings)

type settings struct {
	name     string
	names    []string
	autoSeek bool
	log      *logger.Logger
	metrics  *observability.IteratorMetrics
	copy     any
}

// WithName sets the splitter name used in logs. Defaults to "split".
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithPartitionNames names the partitions in order, e.g. "train", "test".
// Unnamed partitions are called "<splitter>-<index>".
func WithPartitionNames(names ...string) Option {
	return func(s *settings) { s.names = append([]string(nil), names...) }
}

// WithAutoSeek lets a partition fast-forward the source when it is driven
// while the cursor is still before its window. Skipped batches are discarded.
// Without it such a partition simply reports no batches.
func WithAutoSeek() Option {
	return func(s *settings) { s.autoSeek = true }
}

// WithCopy sets how the first batch of the first epoch is snapshotted for
// the replay check. It is required for slice, map and pointer batches that
// do not implement sequence.Copier, since the source may reuse their storage.
func WithCopy[T any](fn func(T) T) Option {
	return func(s *settings) { s.copy = fn }
}

// WithLogger sets the splitter logger. Defaults to logger.Get("split").
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithMetrics records per-partition consumed, fault and restart metrics.
func WithMetrics(m *observability.IteratorMetrics) Option {
	return func(s *settings) { s.metrics = m }
}

// resolveCopy picks the snapshot function for T. Reference-typed batches
// without a Copier are refused: an aliased snapshot would follow the source's
// buffer and never detect a shuffled replay.
func resolveCopy[T any](s *settings) (func(T) T, error) {
	var zero T
	if s.copy != nil {
		fn, ok := s.copy.(func(T) T)
		if !ok {
			return nil, errors.Configuration("copy", fmt.Sprintf("copy function does not accept %T batches", zero))
		}
		return fn, nil
	}
	if _, ok := any(zero).(sequence.Copier[T]); ok {
		return sequence.Copy[T], nil
	}
	switch t := reflect.TypeFor[T](); t.Kind() {
	case reflect.Slice, reflect.Map, reflect.Pointer:
		return nil, errors.Configuration("copy", fmt.Sprintf(
			"%s batches cannot be snapshotted safely; implement sequence.Copier or pass split.WithCopy", t))
	}
	return sequence.Copy[T], nil
}
