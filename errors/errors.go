package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified iterkit error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the caller may retry with a fresh iterator.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an *AppError with the same code, so
// stderrors.Is(err, errors.New(ErrCodeEngineClosed, "")) works as expected.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether any error in err's chain is an AppError with the given
// code, including AppErrors nested as the Cause of another AppError.
func Is(err error, code ErrorCode) bool {
	return stderrors.Is(err, &AppError{Code: code})
}

// --- Constructors ---

// Configuration creates an error for an invalid construction parameter.
func Configuration(field, reason string) *AppError {
	e := &AppError{
		Code: ErrCodeConfiguration, Message: fmt.Sprintf("Invalid configuration: %s", reason),
	}
	if field != "" {
		e.Details = map[string]any{"field": field}
	}
	return e
}

// Validation creates a configuration error from an aggregated validation message.
func Validation(message string) *AppError {
	return &AppError{Code: ErrCodeConfiguration, Message: message}
}

// ProducerFault wraps an error raised by a source while producing the batch
// at the given logical position.
func ProducerFault(position int64, cause error) *AppError {
	return &AppError{
		Code: ErrCodeProducerFault, Message: fmt.Sprintf("source failed producing batch %d", position),
		Retryable: true, Details: map[string]any{"position": position}, Cause: cause,
	}
}

// ReplayInconsistency reports that an epoch's first batch differs from the
// snapshot taken in the first epoch.
func ReplayInconsistency(epoch int64) *AppError {
	return &AppError{
		Code: ErrCodeReplayInconsistency, Message: "first batch of the epoch does not match the first epoch; the source shuffles between epochs",
		Details: map[string]any{"epoch": epoch},
	}
}

// EngineClosed reports an operation on an engine that was shut down.
func EngineClosed(engine string) *AppError {
	return &AppError{
		Code: ErrCodeEngineClosed, Message: fmt.Sprintf("engine %s is shut down", engine),
		Details: map[string]any{"engine": engine},
	}
}

// Exhausted reports a Next call with no remaining batch.
func Exhausted(what string) *AppError {
	return &AppError{
		Code: ErrCodeExhausted, Message: fmt.Sprintf("%s has no more batches; restart it first", what),
	}
}

// RestartUnsupported reports a restart on a sequence that cannot replay.
func RestartUnsupported(what string) *AppError {
	return &AppError{
		Code: ErrCodeRestartUnsupported, Message: fmt.Sprintf("%s does not support restart", what),
	}
}

// ConcurrentAccess reports overlapping consumer calls on a single-consumer iterator.
func ConcurrentAccess(what string) *AppError {
	return &AppError{
		Code: ErrCodeConcurrentAccess, Message: fmt.Sprintf("%s is already being driven by another caller", what),
	}
}

// EpochAborted reports that a restart was cancelled before the engine's
// previous worker stopped, so the rest of the epoch will not be produced.
func EpochAborted(engine string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeEpochAborted, Message: fmt.Sprintf("engine %s: epoch aborted by a cancelled restart; restart it again", engine),
		Details: map[string]any{"engine": engine}, Cause: cause,
	}
}

// ShutdownTimeout reports a worker that did not exit within the grace period.
func ShutdownTimeout(engine string, grace string) *AppError {
	return &AppError{
		Code: ErrCodeShutdownTimeout, Message: fmt.Sprintf("worker of engine %s did not stop within %s", engine, grace),
		Details: map[string]any{"engine": engine, "grace": grace},
	}
}

// Internal creates an error for an unexpected internal failure.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.", Cause: cause,
	}
}

// Wrap converts any error into an *AppError. Existing AppErrors in the chain
// are returned unchanged; anything else becomes an internal error.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}
