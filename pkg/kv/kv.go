// Package kv provides the small durable key-value store the flyover uses
// for client-local state, such as whether the intro tour has already been
// shown. Keys are flat strings.
//
// The package includes a BadgerDB-backed implementation for production use
// and an in-memory implementation for testing.
package kv

import "errors"

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("kv: not found")

// Store is a minimal durable key-value store.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(key string) ([]byte, error)

	// Set stores a key-value pair. Overwrites any existing value.
	Set(key string, value []byte) error

	// Delete removes a key. No error if the key does not exist.
	Delete(key string) error

	// Close releases any resources held by the store.
	Close() error
}
