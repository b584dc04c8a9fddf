// Package errors provides the structured error taxonomy shared by iterkit
// packages. Every failure surfaced by a prefetch engine, a splitter or a
// partition is an *AppError carrying a machine-readable code, so callers can
// branch with Is(err, code) without string matching.
package errors
