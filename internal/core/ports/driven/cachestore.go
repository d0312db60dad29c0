package driven

import (
	"context"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

// CacheStore persists cache entries durably.
// Implementations must be safe for concurrent readers and writers, and
// writes must be atomic per query key: a reader observes either the
// pre- or post-write entry, never a half-merged one.
//
// Failures are reported as *domain.StorageError and never swallowed.
type CacheStore interface {
	// Get retrieves the entry for a query key. A missing key is not an
	// error: it returns (nil, nil).
	Get(ctx context.Context, queryKey string) (*domain.CacheEntry, error)

	// Put upserts an entry. If an entry already exists for the key,
	// documents are merged by fingerprint: new fingerprints append in
	// order, existing fingerprints are left untouched.
	Put(ctx context.Context, entry *domain.CacheEntry) error

	// ListFingerprints returns the fingerprints cached for a query key
	// in document order. A missing key returns an empty slice.
	ListFingerprints(ctx context.Context, queryKey string) ([]domain.Fingerprint, error)

	// ListEntries returns the most recently fetched entries, newest
	// first, with their documents hydrated so callers can report
	// per-entry document counts.
	ListEntries(ctx context.Context, limit int) ([]domain.CacheEntry, error)

	// GetDocument retrieves a single cached document by fingerprint.
	GetDocument(ctx context.Context, fp domain.Fingerprint) (*domain.Document, error)

	// Close releases the underlying storage handle.
	Close() error
}
