// Package testutil provides fake sources and lifecycle helpers shared by the
// iterkit package tests.
//
// Sources:
//
//	seq := sequence.FromSlice(testutil.Ints(10))   // 0..9, replayable
//	faulty := testutil.FailingAt(10, 4)            // fails at position 4
//	slow := testutil.NewBlocking[int](&testutil.Counting{}, true)
//	defer slow.Release()
//
// Lifecycle helpers wrap testing.T so components are stopped and sequences
// drained without repeating error checks:
//
//	func TestEngine(t *testing.T) {
//	    h := testutil.T(t)
//	    h.Start(prefetch.AsComponent(engine))   // stopped on cleanup
//	    got := testutil.Drain[int](t, engine)
//	}
package testutil
