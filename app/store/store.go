package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get for keys that were never written.
var ErrNotFound = errors.New("key not found")

// Store is durable key/value blob storage. Keys are slash-separated paths;
// contentType is a hint for object-store backends and may be ignored.
type Store interface {
	Exists(key string) (bool, error)
	Get(key string) ([]byte, error)
	Put(key string, data []byte, contentType string) error
	Close() error
}

// StoreError marks a durable-store read or write failure. Retryable.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func (e *StoreError) Retryable() bool {
	return true
}
