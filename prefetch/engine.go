package prefetch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/iterkit/errors"
	"github.com/kbukum/iterkit/logger"
	"github.com/kbukum/iterkit/observability"
	"github.com/kbukum/iterkit/sequence"
)

// MinDepth is the smallest accepted prefetch depth.
const MinDepth = 2

// Engine is a prefetching sequence.Sequence backed by one worker goroutine
// and a bounded buffer.
type Engine[T any] struct {
	src     sequence.Sequence[T]
	depth   int
	id      string
	name    string
	log     *logger.Logger
	metrics *observability.IteratorMetrics
	tracer  trace.Tracer
	grace   time.Duration
	hooks   hooks[T]

	state atomic.Int32
	busy  atomic.Bool

	closeOnce sync.Once
	closed    chan struct{}

	// mu serialises Restart and Shutdown. The worker fields below are
	// replaced only under mu while the consumer guard is held.
	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
	buf    chan item[T]
	epoch  int64

	// Owned by the consumer holding busy.
	head  *item[T]
	fault error
	abort error
}

// New creates an engine over src with a buffer of depth items and starts
// its worker. depth must be at least MinDepth.
//
// Batches are snapshotted with sequence.Copy unless WithCopy is given.
// Reference-typed batches that do not implement sequence.Copier are not
// copied; see WithCopy. Without WithLogger the engine logs through
// logger.Get("prefetch").
func New[T any](src sequence.Sequence[T], depth int, opts ...Option) (*Engine[T], error) {
	if src == nil {
		return nil, errors.Configuration("source", "source sequence is required")
	}
	if depth < MinDepth {
		return nil, errors.Configuration("depth", fmt.Sprintf("prefetch depth must be at least %d, got %d", MinDepth, depth))
	}

	s := settings{name: "prefetch", shutdownTimeout: DefaultShutdownTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	h, err := resolveHooks[T](&s)
	if err != nil {
		return nil, err
	}
	if h.copy == nil {
		h.copy = sequence.Copy[T]
	}
	if s.shutdownTimeout <= 0 {
		s.shutdownTimeout = DefaultShutdownTimeout
	}
	if s.log == nil {
		s.log = logger.Get("prefetch")
	}

	id := uuid.NewString()
	e := &Engine[T]{
		src:     src,
		depth:   depth,
		id:      id,
		name:    s.name,
		log:     s.log.WithFields(logger.Fields(logger.FieldEngineID, id, logger.FieldEngine, s.name)),
		metrics: s.metrics,
		tracer:  s.tracer,
		grace:   s.shutdownTimeout,
		hooks:   h,
		closed:  make(chan struct{}),
	}
	e.state.Store(int32(StateCreated))
	e.start()
	return e, nil
}

// ID returns the unique engine id used in logs and spans.
func (e *Engine[T]) ID() string { return e.id }

// Name returns the engine name.
func (e *Engine[T]) Name() string { return e.name }

// Depth returns the buffer capacity.
func (e *Engine[T]) Depth() int { return e.depth }

// State returns the current lifecycle state.
func (e *Engine[T]) State() State { return State(e.state.Load()) }

// SupportsRestart mirrors the wrapped source.
func (e *Engine[T]) SupportsRestart() bool { return e.src.SupportsRestart() }

// HasNext reports whether Next will return a batch or a producer fault. It
// blocks while the buffer is empty and the worker is still producing.
func (e *Engine[T]) HasNext(ctx context.Context) (bool, error) {
	if err := e.enter("has_next"); err != nil {
		return false, err
	}
	defer e.leave()

	if e.State() == StateFailed {
		return false, e.fault
	}
	if err := e.pull(ctx); err != nil {
		return false, err
	}
	return e.head.kind != kindEnd, nil
}

// Next removes and returns the head batch. When the head is a producer
// fault, the fault is returned and the engine becomes FAILED. At the end of
// the epoch Next returns SEQUENCE_EXHAUSTED.
func (e *Engine[T]) Next(ctx context.Context) (T, error) {
	var zero T
	if err := e.enter("next"); err != nil {
		return zero, err
	}
	defer e.leave()

	if e.State() == StateFailed {
		return zero, e.fault
	}
	if err := e.pull(ctx); err != nil {
		return zero, err
	}

	switch e.head.kind {
	case kindEnd:
		return zero, errors.Exhausted("prefetch engine " + e.name)
	case kindFault:
		err := e.head.err
		e.head = nil
		e.fail(ctx, err)
		return zero, err
	}

	batch := e.head.batch
	e.head = nil
	e.metrics.RecordConsumed(ctx, e.name)
	return batch, nil
}

// Restart abandons the current epoch: it stops the worker, discards
// buffered batches, restarts the source and starts a fresh worker.
//
// If ctx ends before the old worker stops, Restart returns ctx.Err() and the
// epoch is aborted: batches already buffered are still delivered, after which
// HasNext and Next return EPOCH_ABORTED until a later Restart succeeds.
func (e *Engine[T]) Restart(ctx context.Context) error {
	if err := e.enter("restart"); err != nil {
		return err
	}
	defer e.leave()

	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.State() {
	case StateShutdown:
		return errors.EngineClosed(e.id)
	case StateFailed:
		return e.fault
	}
	if !e.src.SupportsRestart() {
		return errors.RestartUnsupported("source of prefetch engine " + e.name)
	}
	if err := e.stopWorker(ctx); err != nil {
		if ctx.Err() != nil {
			e.abort = errors.EpochAborted(e.id, err)
			e.log.Warn("restart cancelled, epoch aborted", logger.ErrorFields("restart", err))
		}
		return err
	}

	e.head = nil
	e.abort = nil
	if err := e.src.Restart(ctx); err != nil {
		fault := errors.ProducerFault(0, err)
		e.fail(ctx, fault)
		return fault
	}

	e.epoch++
	if !e.start() {
		return errors.EngineClosed(e.id)
	}
	e.metrics.RecordRestart(ctx, e.name)
	e.log.Debug("engine restarted", logger.Fields(logger.FieldEpoch, e.epoch))
	return nil
}

// Shutdown stops the worker and releases a consumer blocked in HasNext or
// Next. It waits up to the shutdown timeout for the worker to exit and
// returns SHUTDOWN_TIMEOUT if it does not. Only the first call does any
// work; later calls return nil.
func (e *Engine[T]) Shutdown() error {
	first := false
	e.closeOnce.Do(func() {
		first = true
		e.state.Store(int32(StateShutdown))
		close(e.closed)
	})
	if !first {
		return nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	start := time.Now()
	e.cancel()
	timer := time.NewTimer(e.grace)
	defer timer.Stop()

	select {
	case <-e.done:
		e.log.Debug("engine shut down", logger.DurationFields("shutdown", time.Since(start)))
		return nil
	case <-timer.C:
		err := errors.ShutdownTimeout(e.id, e.grace.String())
		e.log.Error("worker did not stop in time", logger.ErrorFields("shutdown", err))
		return err
	}
}

// enter claims the single-consumer guard.
func (e *Engine[T]) enter(op string) error {
	if e.State() == StateShutdown {
		return errors.EngineClosed(e.id)
	}
	if !e.busy.CompareAndSwap(false, true) {
		e.log.Warn("concurrent access rejected", logger.Fields(logger.FieldOperation, op))
		return errors.ConcurrentAccess("prefetch engine " + e.name)
	}
	return nil
}

func (e *Engine[T]) leave() { e.busy.Store(false) }

// pull makes sure e.head holds the next buffered item.
func (e *Engine[T]) pull(ctx context.Context) error {
	if e.head != nil {
		return nil
	}

	var it item[T]
	select {
	case it = <-e.buf:
	default:
		start := time.Now()
		select {
		case it = <-e.buf:
		case <-e.done:
			// The worker exited without an end item, which only happens
			// after a cancelled restart. Drain what it pushed, then report
			// the abort.
			select {
			case it = <-e.buf:
			default:
				if e.abort != nil {
					return e.abort
				}
				it = item[T]{kind: kindEnd}
			}
		case <-e.closed:
			return errors.EngineClosed(e.id)
		case <-ctx.Done():
			return ctx.Err()
		}
		e.metrics.RecordWait(ctx, e.name, time.Since(start))
	}
	if e.State() == StateShutdown {
		return errors.EngineClosed(e.id)
	}

	e.head = &it
	if it.kind == kindEnd {
		e.state.CompareAndSwap(int32(StateRunning), int32(StateExhausted))
	}
	return nil
}

func (e *Engine[T]) fail(ctx context.Context, err error) {
	e.fault = err
	for {
		prev := e.state.Load()
		if State(prev) == StateShutdown || e.state.CompareAndSwap(prev, int32(StateFailed)) {
			break
		}
	}
	code := string(errors.ErrCodeInternal)
	if appErr, ok := errors.AsAppError(err); ok {
		code = string(appErr.Code)
	}
	e.metrics.RecordFault(ctx, e.name, code)
	e.log.Debug("engine failed", logger.ErrorFields("next", err))
}

// start launches a worker for the current epoch. It reports false if the
// engine was shut down concurrently.
func (e *Engine[T]) start() bool {
	prev := e.state.Load()
	if State(prev) == StateShutdown || !e.state.CompareAndSwap(prev, int32(StateRunning)) {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.buf = make(chan item[T], e.depth)
	e.done = make(chan struct{})
	go e.run(ctx, e.buf, e.done, e.epoch)
	return true
}

// stopWorker cancels the current worker and waits for it to exit.
func (e *Engine[T]) stopWorker(ctx context.Context) error {
	e.cancel()
	select {
	case <-e.done:
		return nil
	case <-e.closed:
		return errors.EngineClosed(e.id)
	case <-ctx.Done():
		return ctx.Err()
	}
}
