package prefetch

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/logger"
	"github.com/kbukum/iterkit/observability"
)

// DefaultShutdownTimeout is how long Shutdown waits for the worker to exit.
const DefaultShutdownTimeout = 5 * time.Second

// Event describes one produced batch, as seen by a Callback.
type Event[T any] struct {
	Epoch    int64
	Position int64
	Batch    T
}

// Callback is invoked by the worker after it produces a batch. It runs on the
// worker goroutine and must return promptly.
type Callback[T any] func(ctx context.Context, ev Event[T])

// PreProcessor transforms a batch on the worker before it is buffered.
// An error becomes a producer fault at that position.
type PreProcessor[T any] func(ctx context.Context, batch T) (T, error)

// Option configures an Engine.
type Option func(*settings)

type settings struct {
	name            string
	log             *logger.Logger
	metrics         *observability.IteratorMetrics
	tracer          trace.Tracer
	shutdownTimeout time.Duration

	callbackEvery int64
	callback      any
	preprocess    any
	copy          any
}

// WithName sets the name used in logs, metrics and spans. Defaults to "prefetch".
func WithName(name string) Option {
	return func(s *settings) { s.name = name }
}

// WithLogger sets the engine logger. Defaults to logger.Get("prefetch").
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithMetrics records produced, consumed, fault, restart and wait metrics.
func WithMetrics(m *observability.IteratorMetrics) Option {
	return func(s *settings) { s.metrics = m }
}

// WithTracer sets the tracer for prefetch.epoch spans. Defaults to the
// global tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(s *settings) { s.tracer = t }
}

// WithShutdownTimeout sets how long Shutdown waits for the worker.
func WithShutdownTimeout(d time.Duration) Option {
	return func(s *settings) { s.shutdownTimeout = d }
}

// WithCallback registers fn to be called every `every` produced batches.
func WithCallback[T any](every int, fn func(ctx context.Context, ev Event[T])) Option {
	return func(s *settings) {
		s.callbackEvery = int64(every)
		s.callback = Callback[T](fn)
	}
}

// WithPreProcessor applies fn to every batch on the worker, after the copy.
func WithPreProcessor[T any](fn func(ctx context.Context, batch T) (T, error)) Option {
	return func(s *settings) { s.preprocess = PreProcessor[T](fn) }
}

// WithCopy replaces the snapshot function applied to every produced batch.
// By default batches implementing sequence.Copier are deep-copied and
// anything else is buffered as is: a source that reuses a slice, map or
// pointee between batches must implement sequence.Copier or pass WithCopy,
// or buffered batches will alias the source's storage.
func WithCopy[T any](fn func(T) T) Option {
	return func(s *settings) { s.copy = fn }
}

// hooks are the typed forms of the batch-aware options.
type hooks[T any] struct {
	callbackEvery int64
	callback      Callback[T]
	preprocess    PreProcessor[T]
	copy          func(T) T
}

func resolveHooks[T any](s *settings) (hooks[T], error) {
	var h hooks[T]
	var zero T
	if s.callback != nil {
		cb, ok := s.callback.(Callback[T])
		if !ok {
			return h, errors.Configuration("callback", fmt.Sprintf("callback does not accept %T batches", zero))
		}
		if s.callbackEvery < 1 {
			return h, errors.Configuration("callback_every", "callback cadence must be at least 1")
		}
		h.callback = cb
		h.callbackEvery = s.callbackEvery
	}
	if s.preprocess != nil {
		pp, ok := s.preprocess.(PreProcessor[T])
		if !ok {
			return h, errors.Configuration("preprocessor", fmt.Sprintf("preprocessor does not accept %T batches", zero))
		}
		h.preprocess = pp
	}
	if s.copy != nil {
		cp, ok := s.copy.(func(T) T)
		if !ok {
			return h, errors.Configuration("copy", fmt.Sprintf("copy function does not accept %T batches", zero))
		}
		h.copy = cp
	}
	return h, nil
}
