package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidQuery indicates a malformed query or parameters.
	// It is rejected before any provider or storage I/O.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrProviderUnavailable indicates the search provider could not be
	// reached and no cached results exist to fall back on.
	ErrProviderUnavailable = errors.New("search provider unavailable")

	// ErrStorageUnavailable indicates the cache store failed in a way
	// that prevented serving the request.
	ErrStorageUnavailable = errors.New("cache storage unavailable")
)

// ProviderError wraps a failure from the search provider.
// Transient errors (timeouts, 5xx, connection resets) are retried by the
// provider client; permanent errors (bad request, auth, quota) are not.
type ProviderError struct {
	// Transient reports whether the failure class is worth retrying.
	Transient bool

	// Attempts is the number of calls made before giving up.
	Attempts int

	// Err is the last underlying cause. Never nil.
	Err error
}

func (e *ProviderError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("provider: %s failure after %d attempt(s): %v", kind, e.Attempts, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsTransientProviderError reports whether err is a retryable provider failure.
func IsTransientProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Transient
}

// StorageError wraps a cache store read or write failure.
// It is never silently swallowed: lookups degrade to a forced provider
// fetch, persist failures are reported alongside the fetched data.
type StorageError struct {
	// Op is the store operation that failed ("get", "put", ...).
	Op string

	// Err is the underlying cause. Never nil.
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsStorageError reports whether err originates from the cache store.
func IsStorageError(err error) bool {
	var se *StorageError
	return errors.As(err, &se)
}
