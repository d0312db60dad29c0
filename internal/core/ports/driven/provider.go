package driven

import (
	"context"

	"github.com/custodia-labs/quarry-cli/internal/core/domain"
)

// FetchResult is the outcome of a successful provider call.
type FetchResult struct {
	// Documents are in the provider's relevance order and carry raw
	// (unnormalised) text.
	Documents []domain.Document

	// Attempts is the number of calls made, including retries.
	Attempts int
}

// SearchProvider fetches documents from an external search API.
// Implementations translate provider-specific response shapes into the
// canonical domain.Document at the boundary, classify failures as
// transient or permanent, and retry transient ones internally within a
// bounded attempt budget. Errors are reported as *domain.ProviderError.
//
// Fetch has no side effects beyond the network call; it never touches
// the cache store.
type SearchProvider interface {
	Fetch(ctx context.Context, query domain.Query) (*FetchResult, error)

	// Name identifies the provider in cache entry metadata.
	Name() string
}
