// Package pipeline provides lazy, pull-based operators over batch streams
// and bridges them to sequence.Sequence.
//
// Pipelines are lazy. No work happens until values are pulled via Collect
// or ForEach, and each stage pulls from the previous one on demand.
//
// # Operators
//
//   - Map: transform each value
//   - Filter: keep values matching a predicate
//   - Tap: side-effect without altering the value
//   - Take: stop after n values
//   - Batch: group values into fixed-size slices
//   - Concat: join pipelines sequentially
//   - Prefetch: run the upstream stages on a prefetch engine worker
//
// # Sequences
//
//	src := pipeline.FromSequence[*dataset.DataSet](partition)
//	scaled := pipeline.Map(src, normalize)
//	ahead := pipeline.Prefetch(scaled, 8)
//	err := pipeline.ForEach(ctx, ahead, train)
//
// ToSequence turns a pipeline back into a one-shot sequence, e.g. to feed a
// prefetch engine or a training loop that expects HasNext and Next.
package pipeline
