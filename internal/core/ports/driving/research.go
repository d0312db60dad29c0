package driving

import (
	"context"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

// ResearchService serves search requests from the cache, falling back
// to the provider on a miss.
type ResearchService interface {
	// Search answers a query from cache or provider per the caching
	// state machine. The response carries an explicit partial flag;
	// hard failures are typed domain errors.
	Search(ctx context.Context, query domain.Query) (*domain.SearchResponse, error)

	// ListCached returns the most recent cache entries, newest first.
	ListCached(ctx context.Context, limit int) ([]domain.CacheEntry, error)

	// GetDocument returns a single cached document by fingerprint.
	GetDocument(ctx context.Context, fp domain.Fingerprint) (*domain.Document, error)
}
