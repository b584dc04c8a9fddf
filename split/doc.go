// Package split partitions one replayable sequence into contiguous windows,
// such as train, validation and test sets, without copying it.
//
// All partitions of a Splitter read the same source through one shared
// cursor. A partition yields batches only while the cursor is inside its
// window, so partitions are meant to be driven one after another:
//
//	s, err := split.New(src, split.Ratios(100, 0.7, 0.3))
//	train, test := s.Partitions()[0], s.Partitions()[1]
//	for epoch := 0; epoch < 3; epoch++ {
//	    consume(ctx, train)
//	    consume(ctx, test)
//	    train.Restart(ctx)
//	}
//
// Restart on any partition only raises a shared reset flag; the next
// partition call rewinds the source and the cursor. The first batch of the
// first epoch is kept and compared with the first batch of every later
// epoch, and a mismatch fails the whole splitter with REPLAY_INCONSISTENCY:
// the source must not shuffle between epochs.
package split
