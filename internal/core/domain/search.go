package domain

// CacheStatus describes how a search response was assembled.
type CacheStatus string

const (
	// CacheStatusHit means the response was served entirely from cache.
	CacheStatusHit CacheStatus = "hit"

	// CacheStatusMiss means nothing was cached and all documents came
	// from a fresh provider fetch.
	CacheStatusMiss CacheStatus = "miss"

	// CacheStatusRefresh means the cache held fewer documents than
	// requested and a provider fetch topped the entry up.
	CacheStatusRefresh CacheStatus = "refresh"

	// CacheStatusStale means the provider could not be reached and the
	// response was served from cache alone.
	CacheStatusStale CacheStatus = "stale"
)

// SearchResponse is the result of one search request.
// Callers always receive either documents with an explicit partial
// indicator or a typed error, never a silent empty result.
type SearchResponse struct {
	// Documents is the ordered result list, truncated to the requested
	// count. Cached documents keep their original relative order; newly
	// fetched documents follow in fetch-time rank order.
	Documents []Document

	// Partial is true when fewer documents than requested are returned,
	// whether because the provider was unavailable, the fetch yielded
	// fewer results, or fetched documents could not be persisted.
	Partial bool

	// CacheStatus reports how the response was assembled.
	CacheStatus CacheStatus

	// Warning carries a human-readable note for partial responses,
	// e.g. a persist failure that did not block the response.
	Warning string
}
