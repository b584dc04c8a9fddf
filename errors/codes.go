package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Construction errors (never retried)
const (
	// ErrCodeConfiguration indicates invalid construction parameters or config values.
	ErrCodeConfiguration ErrorCode = "CONFIGURATION_ERROR"
	// ErrCodeRestartUnsupported indicates a restart was requested on a non-replayable sequence.
	ErrCodeRestartUnsupported ErrorCode = "RESTART_UNSUPPORTED"
)

// Iteration errors
const (
	// ErrCodeProducerFault indicates the source sequence failed while producing a batch.
	ErrCodeProducerFault ErrorCode = "PRODUCER_FAULT"
	// ErrCodeReplayInconsistency indicates a later epoch did not replay the first epoch.
	ErrCodeReplayInconsistency ErrorCode = "REPLAY_INCONSISTENCY"
	// ErrCodeExhausted indicates Next was called past the end of an epoch or window.
	ErrCodeExhausted ErrorCode = "SEQUENCE_EXHAUSTED"
	// ErrCodeConcurrentAccess indicates overlapping calls on a single-consumer iterator.
	ErrCodeConcurrentAccess ErrorCode = "CONCURRENT_ACCESS"
	// ErrCodeEpochAborted indicates the current epoch was cut short by a cancelled restart.
	ErrCodeEpochAborted ErrorCode = "EPOCH_ABORTED"
)

// Lifecycle errors
const (
	// ErrCodeEngineClosed indicates an operation on an engine after Shutdown.
	ErrCodeEngineClosed ErrorCode = "ENGINE_CLOSED"
	// ErrCodeShutdownTimeout indicates the worker did not exit within the grace period.
	ErrCodeShutdownTimeout ErrorCode = "SHUTDOWN_TIMEOUT"
	// ErrCodeInternal indicates an unexpected internal failure.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Producer faults are the only failures a caller may reasonably retry, and
// only by building a fresh iterator: nothing in iterkit retries on its own.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeProducerFault: true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
