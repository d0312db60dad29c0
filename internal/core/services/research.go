package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
	"github.com/custodia-labs/quarry-cli/internal/core/ports/driven"
	"github.com/custodia-labs/quarry-cli/internal/core/ports/driving"
	"github.com/custodia-labs/quarry-cli/internal/logger"
)

// Ensure ResearchService implements the interface.
var _ driving.ResearchService = (*ResearchService)(nil)

// DefaultStorageTimeout bounds individual cache store operations.
// Local durable storage should answer far faster than the network;
// the provider deadline is managed separately by the provider client.
const DefaultStorageTimeout = 2 * time.Second

// ResearchService is the cache orchestrator. Given a query it decides
// cache-hit vs provider-fetch, merges fetched documents into the cached
// entry by fingerprint, and writes through to the cache store.
//
// The store is the sole source of truth: the service holds no state
// beyond the duration of one request, apart from the in-flight fetch
// registry that collapses concurrent identical queries.
type ResearchService struct {
	store      driven.CacheStore
	provider   driven.SearchProvider
	normaliser driven.Normaliser

	// maxAge is an optional freshness bound for cached entries.
	// Zero disables expiry (the default).
	maxAge time.Duration

	// storageTimeout bounds each store operation.
	storageTimeout time.Duration

	// group collapses concurrent fetches for the same query key.
	group singleflight.Group
}

// fetchOutcome is the shared result of one provider fetch, consumed by
// every caller joined on the same query key. Callers truncate to their
// own requested count.
type fetchOutcome struct {
	entry        *domain.CacheEntry
	cachedBefore int
	persistErr   error
}

// NewResearchService creates the orchestrator.
func NewResearchService(
	store driven.CacheStore,
	provider driven.SearchProvider,
	normaliser driven.Normaliser,
) *ResearchService {
	return &ResearchService{
		store:          store,
		provider:       provider,
		normaliser:     normaliser,
		storageTimeout: DefaultStorageTimeout,
	}
}

// SetMaxAge sets the optional cache freshness bound. Entries older than
// maxAge are treated as insufficient and refreshed from the provider.
func (s *ResearchService) SetMaxAge(d time.Duration) {
	s.maxAge = d
}

// SetStorageTimeout overrides the per-operation storage timeout.
func (s *ResearchService) SetStorageTimeout(d time.Duration) {
	if d > 0 {
		s.storageTimeout = d
	}
}

// Search answers a query from cache or provider.
func (s *ResearchService) Search(ctx context.Context, query domain.Query) (*domain.SearchResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	key := query.Key()
	logger.Section("Search")
	logger.Debug("Query: %q, count=%d, key=%x", query.Text, query.Count, key)

	// Lookup. A storage failure here is a forced miss: fail open toward
	// the provider, never toward serving wrong data.
	entry, err := s.lookup(ctx, key)
	if err != nil {
		logger.Warn("Cache lookup failed, forcing provider fetch: %v", err)
		entry = nil
	}

	if entry != nil && len(entry.Documents) >= query.Count && s.fresh(entry) {
		logger.Info("Cache hit: %d documents cached, %d requested", len(entry.Documents), query.Count)
		return &domain.SearchResponse{
			Documents:   truncate(entry.Documents, query.Count),
			CacheStatus: domain.CacheStatusHit,
		}, nil
	}

	cached := 0
	if entry != nil {
		cached = len(entry.Documents)
	}
	logger.Debug("Cache miss or insufficient: %d cached, %d requested", cached, query.Count)

	outcome, err := s.fetchShared(ctx, key, query)
	if err != nil {
		return s.degrade(entry, query, err)
	}

	resp := &domain.SearchResponse{
		Documents:   truncate(outcome.entry.Documents, query.Count),
		CacheStatus: domain.CacheStatusMiss,
	}
	if outcome.cachedBefore > 0 {
		resp.CacheStatus = domain.CacheStatusRefresh
	}
	if outcome.persistErr != nil {
		// Data already fetched is still served even if it could not be
		// cached: availability over durability on the read path.
		logger.Error("Persist failed, serving uncached results: %v", outcome.persistErr)
		resp.Partial = true
		resp.Warning = fmt.Sprintf("results could not be cached: %v", outcome.persistErr)
	}
	if len(resp.Documents) < query.Count {
		// A joined in-flight fetch may have been issued for a smaller
		// count, or the provider simply had fewer results. Either way
		// the shortfall is flagged, never silent.
		logger.Warn("Short result: %d of %d requested documents", len(resp.Documents), query.Count)
		resp.Partial = true
		if resp.Warning == "" {
			resp.Warning = fmt.Sprintf("only %d of %d requested results available", len(resp.Documents), query.Count)
		}
	}
	return resp, nil
}

// ListCached returns the most recent cache entries.
func (s *ResearchService) ListCached(ctx context.Context, limit int) ([]domain.CacheEntry, error) {
	if limit <= 0 {
		limit = 25
	}
	ctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()
	return s.store.ListEntries(ctx, limit)
}

// GetDocument returns a cached document by fingerprint.
func (s *ResearchService) GetDocument(ctx context.Context, fp domain.Fingerprint) (*domain.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()
	return s.store.GetDocument(ctx, fp)
}

// lookup reads the cached entry for a key under the storage timeout.
func (s *ResearchService) lookup(ctx context.Context, key string) (*domain.CacheEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()
	return s.store.Get(ctx, key)
}

// fresh reports whether a cached entry satisfies the freshness bound.
func (s *ResearchService) fresh(entry *domain.CacheEntry) bool {
	if s.maxAge <= 0 {
		return true
	}
	return time.Since(entry.FetchedAt) <= s.maxAge
}

// fetchShared runs fetchAndPersist through the singleflight group so
// concurrent identical queries share one provider call. The fetch runs
// on a context detached from the calling request: a caller cancelling
// must not cancel a fetch other callers are waiting on. The provider
// client applies its own overall deadline to the detached fetch.
func (s *ResearchService) fetchShared(ctx context.Context, key string, query domain.Query) (*fetchOutcome, error) {
	ch := s.group.DoChan(key, func() (any, error) {
		return s.fetchAndPersist(context.WithoutCancel(ctx), key, query)
	})

	select {
	case <-ctx.Done():
		// The shared fetch keeps running and will be cached for later
		// callers; this caller unwinds alone.
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			logger.Debug("Joined in-flight fetch for key %x", key)
		}
		return res.Val.(*fetchOutcome), nil
	}
}

// fetchAndPersist is the single writer for a query key: it fetches from
// the provider, normalises and fingerprints each document, merges into
// the current cached entry, and writes the merged entry back.
func (s *ResearchService) fetchAndPersist(ctx context.Context, key string, query domain.Query) (*fetchOutcome, error) {
	// Request the full desired count; fingerprint dedup drops documents
	// that are already cached.
	result, err := s.provider.Fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	logger.Debug("Provider returned %d documents in %d attempt(s)", len(result.Documents), result.Attempts)

	now := time.Now().UTC()
	docs := make([]domain.Document, 0, len(result.Documents))
	for _, d := range result.Documents {
		nt := s.normaliser.Normalise(d.Text)
		d.Text = nt.Display
		d.Fingerprint = domain.NewFingerprint(d.URL, nt.Canonical)
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		if d.FetchedAt.IsZero() {
			d.FetchedAt = now
		}
		docs = append(docs, d)
	}

	// Re-read inside the critical section: the entry may have changed
	// since the caller's lookup.
	entry, err := s.lookup(ctx, key)
	if err != nil {
		logger.Warn("Re-read before merge failed, merging into empty entry: %v", err)
		entry = nil
	}
	if entry == nil {
		entry = &domain.CacheEntry{QueryKey: key}
	}

	outcome := &fetchOutcome{entry: entry, cachedBefore: len(entry.Documents)}

	added := entry.Merge(docs)
	entry.Provider = s.provider.Name()
	entry.RetryCount = result.Attempts - 1
	entry.FetchedAt = now
	logger.Debug("Merged %d new documents (%d already cached)", added, outcome.cachedBefore)

	putCtx, cancel := context.WithTimeout(ctx, s.storageTimeout)
	defer cancel()
	if err := s.store.Put(putCtx, entry); err != nil {
		outcome.persistErr = err
	}

	return outcome, nil
}

// degrade handles a provider failure. With a non-empty cached entry the
// cached subset is served with the partial flag; with nothing cached the
// failure is terminal.
func (s *ResearchService) degrade(entry *domain.CacheEntry, query domain.Query, err error) (*domain.SearchResponse, error) {
	if entry != nil && len(entry.Documents) > 0 {
		logger.Warn("Provider failed, serving %d cached documents: %v", len(entry.Documents), err)
		return &domain.SearchResponse{
			Documents:   truncate(entry.Documents, query.Count),
			Partial:     true,
			CacheStatus: domain.CacheStatusStale,
			Warning:     fmt.Sprintf("provider unavailable, serving cached results: %v", err),
		}, nil
	}

	// A caller abandoning the wait surfaces its own context error. Retry
	// exhaustion keeps the provider-unavailable kind even when the last
	// underlying cause was a deadline.
	var provErr *domain.ProviderError
	if !errors.As(err, &provErr) {
		if ctxErr := contextError(err); ctxErr != nil {
			return nil, ctxErr
		}
	}
	return nil, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
}

// contextError returns err if it is a context cancellation/deadline.
func contextError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

// truncate caps docs at n, preserving order.
func truncate(docs []domain.Document, n int) []domain.Document {
	if len(docs) <= n {
		return docs
	}
	return docs[:n]
}
