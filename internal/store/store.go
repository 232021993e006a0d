// Package store holds the persistent cache of resolved link records. A
// store is loaded once at startup and afterwards serves reads from memory;
// every mutation is written through to the backing medium before Put
// returns.
package store

import (
	"context"

	"concerto/internal/links"
)

// Store is the cache of resolved link records, keyed by normalized cache
// key. Get never performs I/O after the initial load. Put must not lose
// previously cached unrelated keys.
type Store interface {
	// Get retrieves a record from the in-memory map.
	Get(key string) (*links.Record, bool)

	// Put stores a record and persists the mutation synchronously.
	Put(ctx context.Context, key string, record *links.Record) error

	// Len returns the number of cached records.
	Len() int

	// Backend names the persistence medium, for diagnostics.
	Backend() string

	// Close releases backend resources.
	Close() error
}

// StoreError represents a store operation error.
type StoreError struct {
	Operation string
	Key       string
	Err       error
}

func (e *StoreError) Error() string {
	return "store " + e.Operation + " failed for key '" + e.Key + "': " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
