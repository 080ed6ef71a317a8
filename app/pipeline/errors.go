package pipeline

import "fmt"

// ValidationError marks an item that can never be fully processed as it
// stands: no article link, or extracted text below the minimum length. Such
// items are abandoned without retry and without entering the processed set.
type ValidationError struct {
	ItemID string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("item %s skipped: %s", e.ItemID, e.Reason)
}

func (e *ValidationError) Retryable() bool {
	return false
}
