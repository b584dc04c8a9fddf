// Package bootstrap runs a finite iterkit task with uniform lifecycle
// management: config defaults and validation, logger setup, component
// start in registration order, hooks, a startup summary, signal-driven
// cancellation and graceful shutdown.
//
//	app, err := bootstrap.NewApp(cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*config.IteratorConfig]) error {
//	    return a.RegisterComponent(prefetch.AsComponent(engine))
//	})
//	err = app.RunTask(ctx, func(ctx context.Context) error {
//	    return drain(ctx, engine)
//	})
package bootstrap
