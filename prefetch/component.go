package prefetch

import (
	"context"
	"fmt"

	"github.com/kbukum/iterkit/component"
	"github.com/kbukum/iterkit/errors"
)

type engineComponent[T any] struct {
	engine *Engine[T]
}

// AsComponent exposes an engine as a lifecycle component so a
// component.Registry can report its health and shut it down on exit.
func AsComponent[T any](e *Engine[T]) component.Component {
	return &engineComponent[T]{engine: e}
}

func (c *engineComponent[T]) Name() string { return "prefetch:" + c.engine.Name() }

// Start is a no-op: the worker starts in New.
func (c *engineComponent[T]) Start(_ context.Context) error {
	if c.engine.State() == StateShutdown {
		return errors.EngineClosed(c.engine.ID())
	}
	return nil
}

func (c *engineComponent[T]) Stop(_ context.Context) error {
	return c.engine.Shutdown()
}

func (c *engineComponent[T]) Health(_ context.Context) component.Health {
	state := c.engine.State()
	h := component.Health{Name: c.Name(), Message: state.String()}
	switch state {
	case StateFailed:
		h.Status = component.StatusUnhealthy
	case StateShutdown:
		h.Status = component.StatusDegraded
	default:
		h.Status = component.StatusHealthy
	}
	return h
}

func (c *engineComponent[T]) Describe() component.Description {
	return component.Description{
		Name:    c.engine.Name(),
		Type:    "prefetch",
		Details: fmt.Sprintf("depth=%d id=%s", c.engine.Depth(), c.engine.ID()),
	}
}
