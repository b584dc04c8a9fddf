// Package dataset provides DataSet, the reference batch type for iterkit
// iterators: a features/labels pair with optional masks, stored as flat
// float32 arrays. DataSet implements sequence.Copier and sequence.Equaler so
// the prefetch engine can snapshot it and a splitter can validate replays.
package dataset
