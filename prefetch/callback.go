package prefetch

import (
	"context"
	"sync"

	"github.com/kbukum/iterkit/logger"
)

// InterleavedCallback checks that the events it receives arrive in
// production order: within an epoch positions strictly increase, and epochs
// never go backwards. Each violation is counted and logged.
//
//	check := prefetch.NewInterleavedCallback[*dataset.DataSet](nil)
//	engine, _ := prefetch.New(src, 4, prefetch.WithCallback(1, check.Call))
type InterleavedCallback[T any] struct {
	log *logger.Logger

	mu         sync.Mutex
	seen       bool
	lastEpoch  int64
	lastPos    int64
	calls      int64
	violations int64
}

// NewInterleavedCallback creates a checker. A nil logger uses
// logger.Get("prefetch").
func NewInterleavedCallback[T any](log *logger.Logger) *InterleavedCallback[T] {
	if log == nil {
		log = logger.Get("prefetch")
	}
	return &InterleavedCallback[T]{log: log}
}

// Call records ev. Pass the method value to WithCallback.
func (c *InterleavedCallback[T]) Call(_ context.Context, ev Event[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	if c.seen && !after(ev.Epoch, ev.Position, c.lastEpoch, c.lastPos) {
		c.violations++
		c.log.Warn("callback out of order", logger.Fields(
			logger.FieldEpoch, ev.Epoch,
			logger.FieldPosition, ev.Position,
			"previous_epoch", c.lastEpoch,
			"previous_position", c.lastPos,
		))
	}
	c.seen = true
	c.lastEpoch, c.lastPos = ev.Epoch, ev.Position
}

// Calls returns the number of events received.
func (c *InterleavedCallback[T]) Calls() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// Violations returns the number of out-of-order events.
func (c *InterleavedCallback[T]) Violations() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.violations
}

func after(epoch, pos, lastEpoch, lastPos int64) bool {
	if epoch != lastEpoch {
		return epoch > lastEpoch
	}
	return pos > lastPos
}
