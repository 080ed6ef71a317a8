package corpus

import (
	"fmt"
	"time"
)

// ConcurrentOperationError marks an import submission rejected because
// another import is already running against the same corpus. Retryable:
// sequential item processing makes this contention expected.
type ConcurrentOperationError struct {
	Message string
}

func (e *ConcurrentOperationError) Error() string {
	return fmt.Sprintf("concurrent operation on corpus: %s", e.Message)
}

func (e *ConcurrentOperationError) Retryable() bool {
	return true
}

// OperationFailedError marks an import operation that reached a terminal
// error state. Not retried at this layer: the submission already went through
// its own retry budget.
type OperationFailedError struct {
	Name    string
	Code    int
	Message string
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("import operation %s failed: %s (code: %d)", e.Name, e.Message, e.Code)
}

func (e *OperationFailedError) Retryable() bool {
	return false
}

// PollTimeoutError marks an operation that never reached a terminal state
// within the poll budget.
type PollTimeoutError struct {
	Name     string
	Attempts int
	Interval time.Duration
}

func (e *PollTimeoutError) Error() string {
	return fmt.Sprintf("import operation %s timed out after %d polls (%s apart)", e.Name, e.Attempts, e.Interval)
}

func (e *PollTimeoutError) Retryable() bool {
	return false
}
