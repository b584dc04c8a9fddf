// Package observability provides OpenTelemetry tracing and metrics for
// iterkit iterators.
//
// Tracing:
//
//	tp, err := observability.InitTracer(ctx, &tcfg)
//	defer tp.Shutdown(ctx)
//
// Every prefetch worker epoch is covered by a prefetch.epoch span started
// with StartEpochSpan.
//
// Metrics:
//
//	mp, err := observability.InitMeter(ctx, &cfg)
//	defer mp.Shutdown(ctx)
//
//	metrics, err := observability.NewIteratorMetrics(observability.Meter("iterbench"))
//	engine, err := prefetch.New(src, 8, prefetch.WithMetrics(metrics))
package observability
