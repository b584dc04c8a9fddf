// Package sequence defines the Sequence contract shared by every iterkit
// iterator, plus the basic sources and decorators built on it.
//
// A Sequence is pulled with HasNext/Next and, when it supports restart,
// replayed from the first batch with Restart:
//
//	seq := sequence.FromSlice([]int{0, 1, 2})
//	for {
//	    ok, err := seq.HasNext(ctx)
//	    if err != nil || !ok {
//	        break
//	    }
//	    v, _ := seq.Next(ctx)
//	    use(v)
//	}
//	_ = seq.Restart(ctx)
//
// Sources:
//
//   - FromSlice: replayable sequence over an in-memory slice
//   - Generate: replayable sequence computed from its position
//   - NonReplayable: hides Restart of another sequence
//
// Decorators:
//
//   - WithRetry: caller-side retry of Next using resilience.Retry
package sequence
