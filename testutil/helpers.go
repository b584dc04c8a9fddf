package testutil

import (
	"context"
	"testing"

	"github.com/kbukum/iterkit/component"
	"github.com/kbukum/iterkit/sequence"
)

// THelper binds lifecycle helpers to a test.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t. Helpers fail the test on error and register cleanups with it.
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context passed to Start, Stop and Drain.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Start starts c and stops it when the test ends.
func (h *THelper) Start(c component.Component) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(context.Background()); err != nil {
			h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// Drain pulls the rest of the epoch from seq and fails the test on error.
func Drain[T any](t testing.TB, seq sequence.Sequence[T]) []T {
	t.Helper()
	got, err := sequence.Drain(context.Background(), seq)
	if err != nil {
		t.Fatalf("drain failed: %v", err)
	}
	return got
}
