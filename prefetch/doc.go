// Package prefetch provides Engine, an iterator that overlaps batch
// production with consumption.
//
// An Engine wraps any sequence.Sequence and runs one background worker that
// pulls ahead into a bounded buffer of prefetch depth items. The worker blocks
// when the buffer is full and the consumer blocks when it is empty. Source
// failures travel through the buffer as fault items, so every batch produced
// before a failure is still delivered and the failure surfaces on the Next
// call that reaches its position.
//
//	engine, err := prefetch.New(src, 8,
//	    prefetch.WithName("train"),
//	    prefetch.WithMetrics(metrics),
//	)
//	if err != nil {
//	    return err
//	}
//	defer engine.Shutdown()
//
//	for {
//	    ok, err := engine.HasNext(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    batch, err := engine.Next(ctx)
//	    ...
//	}
//
// An Engine has exactly one consumer. Overlapping HasNext, Next or Restart
// calls fail with CONCURRENT_ACCESS; Shutdown may be called from any
// goroutine and releases a blocked consumer.
package prefetch
