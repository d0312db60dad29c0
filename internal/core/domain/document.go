package domain

import "time"

// Document is a single search result in canonical form.
// Provider-specific response shapes are translated into this type at
// the adapter boundary; the core never sees raw provider payloads.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// URL is the source location the provider returned.
	URL string

	// Title is the human-readable title.
	Title string

	// Text is the display copy of the document text after
	// normalisation. Casing and sentence structure are preserved.
	Text string

	// Author is the document author, if the provider reported one.
	Author string

	// PublishedDate is the publication date string as reported by the
	// provider. Empty if unknown.
	PublishedDate string

	// Score is the provider-assigned relevance score, if any.
	Score float64

	// Fingerprint identifies the document content within its source.
	Fingerprint Fingerprint

	// FetchedAt is when the document was retrieved from the provider.
	FetchedAt time.Time
}

// CacheEntry binds a query key to the ordered documents known for it.
// Document order is insertion order, which equals the provider's
// relevance order at fetch time. The cache store owns entries; the
// orchestrator holds one only for the duration of a request.
type CacheEntry struct {
	// QueryKey is the cache key (see Query.Key).
	QueryKey string

	// Documents is the ordered document list.
	Documents []Document

	// Provider names the search provider that produced the entry.
	Provider string

	// RetryCount is the number of retries incurred by the fetch that
	// created or last updated the entry.
	RetryCount int

	// FetchedAt is when the entry was created or last updated.
	FetchedAt time.Time
}

// Merge appends documents whose fingerprints are not already present,
// preserving both the existing order and the arrival order of the new
// documents. Documents with known fingerprints are left untouched:
// identical content hashes identically, so there is nothing to update.
// It returns the number of documents appended.
func (e *CacheEntry) Merge(docs []Document) int {
	known := make(map[Fingerprint]bool, len(e.Documents))
	for _, d := range e.Documents {
		known[d.Fingerprint] = true
	}

	added := 0
	for _, d := range docs {
		if known[d.Fingerprint] {
			continue
		}
		known[d.Fingerprint] = true
		e.Documents = append(e.Documents, d)
		added++
	}
	return added
}

// Fingerprints returns the entry's fingerprints in document order.
func (e *CacheEntry) Fingerprints() []Fingerprint {
	fps := make([]Fingerprint, len(e.Documents))
	for i, d := range e.Documents {
		fps[i] = d.Fingerprint
	}
	return fps
}
