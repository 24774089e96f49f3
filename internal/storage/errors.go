package storage

import "errors"

var (
	// ErrDuplicateKey is returned when a create would reuse an existing record id.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrNotFound is returned when an update targets a missing record id.
	ErrNotFound = errors.New("record not found")
	// ErrWriteFailed wraps a backend write failure for critical collections.
	ErrWriteFailed = errors.New("storage write failed")
	// ErrInvalidKey is returned for keys that could escape the store.
	ErrInvalidKey = errors.New("invalid storage key")
)
