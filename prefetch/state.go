package prefetch

// State is the lifecycle state of an Engine.
type State int32

const (
	// StateCreated is the state before the first worker starts.
	StateCreated State = iota
	// StateRunning means the worker may still produce batches.
	StateRunning
	// StateExhausted means the consumer reached the end of the epoch.
	StateExhausted
	// StateFailed means the consumer observed a producer fault. Terminal.
	StateFailed
	// StateShutdown means Shutdown was called. Terminal.
	StateShutdown
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateExhausted:
		return "exhausted"
	case StateFailed:
		return "failed"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further batches can ever be obtained.
func (s State) Terminal() bool {
	return s == StateFailed || s == StateShutdown
}

type itemKind uint8

const (
	kindBatch itemKind = iota
	kindEnd
	kindFault
)

// item is what travels through the buffer: a batch, the end of the epoch,
// or a producer fault.
type item[T any] struct {
	kind  itemKind
	batch T
	err   error
}
