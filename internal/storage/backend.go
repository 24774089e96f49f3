package storage

import "encoding/json"

// Backend is a flat key -> JSON document store. Implementations must be safe
// for concurrent use within a single process; nothing coordinates writers in
// separate processes (see Collection for the consequences).
type Backend interface {
	// Get returns the stored bytes for key. The second return is false when
	// the key has never been written or was deleted.
	Get(key string) ([]byte, bool, error)
	// Set overwrites the full value under key.
	Set(key string, value []byte) error
	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error
}

// GetJSON reads and decodes a single JSON object stored under key. Absent or
// unparsable data yields the zero value and false, never an error: corrupt
// state is treated as no state.
func GetJSON[T any](b Backend, key string) (T, bool) {
	var v T
	raw, ok, err := b.Get(key)
	if err != nil || !ok {
		return v, false
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		var zero T
		return zero, false
	}
	return v, true
}

// PutJSON encodes v and stores it under key.
func PutJSON[T any](b Backend, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Set(key, raw)
}
