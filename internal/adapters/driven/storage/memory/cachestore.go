// Package memory provides in-memory implementations of storage ports.
// Used by tests and by cache-less runs; entries do not survive the
// process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
	"github.com/custodia-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure CacheStore implements the interface.
var _ driven.CacheStore = (*CacheStore)(nil)

// CacheStore is an in-memory implementation of driven.CacheStore.
type CacheStore struct {
	mu      sync.RWMutex
	entries map[string]*domain.CacheEntry
}

// NewCacheStore creates an empty in-memory cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{
		entries: make(map[string]*domain.CacheEntry),
	}
}

// Get retrieves the entry for a query key. A missing key returns (nil, nil).
func (s *CacheStore) Get(ctx context.Context, queryKey string) (*domain.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "get", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[queryKey]
	if !ok {
		return nil, nil
	}
	return copyEntry(entry), nil
}

// Put upserts an entry, merging documents by fingerprint.
func (s *CacheStore) Put(ctx context.Context, entry *domain.CacheEntry) error {
	if err := ctx.Err(); err != nil {
		return &domain.StorageError{Op: "put", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.entries[entry.QueryKey]
	if !ok {
		s.entries[entry.QueryKey] = copyEntry(entry)
		return nil
	}

	existing.Merge(entry.Documents)
	existing.Provider = entry.Provider
	existing.RetryCount = entry.RetryCount
	existing.FetchedAt = entry.FetchedAt
	return nil
}

// ListFingerprints returns cached fingerprints in document order.
func (s *CacheStore) ListFingerprints(ctx context.Context, queryKey string) ([]domain.Fingerprint, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list_fingerprints", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[queryKey]
	if !ok {
		return []domain.Fingerprint{}, nil
	}
	return entry.Fingerprints(), nil
}

// ListEntries returns entries ordered by fetch time, newest first.
func (s *CacheStore) ListEntries(ctx context.Context, limit int) ([]domain.CacheEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "list_entries", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.CacheEntry, 0, len(s.entries))
	for _, entry := range s.entries {
		all = append(all, *copyEntry(entry))
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].FetchedAt.After(all[j].FetchedAt)
	})

	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// GetDocument retrieves a cached document by fingerprint.
func (s *CacheStore) GetDocument(ctx context.Context, fp domain.Fingerprint) (*domain.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, &domain.StorageError{Op: "get_document", Err: err}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.entries {
		for i := range entry.Documents {
			if entry.Documents[i].Fingerprint == fp {
				doc := entry.Documents[i]
				return &doc, nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// Close is a no-op for the in-memory store.
func (s *CacheStore) Close() error {
	return nil
}

// copyEntry returns a deep-enough copy so callers cannot mutate stored
// state through the returned pointer.
func copyEntry(entry *domain.CacheEntry) *domain.CacheEntry {
	cp := *entry
	cp.Documents = make([]domain.Document, len(entry.Documents))
	copy(cp.Documents, entry.Documents)
	return &cp
}
