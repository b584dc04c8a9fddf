// Package resilience provides retry with exponential backoff.
//
// Iterators in iterkit never retry internally; Retry is the building block
// for caller-side policies such as sequence.WithRetry:
//
//	seq = sequence.WithRetry(seq, resilience.DefaultRetryConfig())
package resilience
