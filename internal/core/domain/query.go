package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Valid provider categories. An empty category means unrestricted search.
var validCategories = map[string]bool{
	"":               true,
	"company":        true,
	"research paper": true,
	"news":           true,
	"github":         true,
	"tweet":          true,
	"pdf":            true,
	"personal site":  true,
}

// Query describes a single search request.
// Two queries with the same canonical text and parameters share a cache
// entry. A Query is immutable once issued.
type Query struct {
	// Text is the raw query text as supplied by the caller.
	Text string

	// Count is the number of documents requested.
	Count int

	// Category restricts the provider to a content category.
	// Empty means no restriction.
	Category string

	// Livecrawl asks the provider to fetch pages live rather than from
	// its own index.
	Livecrawl bool
}

// Validate checks the query before any I/O is performed.
func (q Query) Validate() error {
	if strings.TrimSpace(q.Text) == "" {
		return fmt.Errorf("%w: empty query text", ErrInvalidQuery)
	}
	if q.Count <= 0 {
		return fmt.Errorf("%w: count must be positive, got %d", ErrInvalidQuery, q.Count)
	}
	if !validCategories[q.Category] {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidQuery, q.Category)
	}
	return nil
}

// CanonicalText returns the query text in canonical form: lower-cased
// with runs of whitespace collapsed to single spaces.
func (q Query) CanonicalText() string {
	return strings.ToLower(strings.Join(strings.Fields(q.Text), " "))
}

// Key returns the cache key for this query. Queries that differ only in
// whitespace or letter case map to the same key. Count is deliberately
// excluded: a query cached with 10 documents can serve a request for 5.
func (q Query) Key() string {
	return strings.Join([]string{
		q.CanonicalText(),
		q.Category,
		strconv.FormatBool(q.Livecrawl),
	}, "\x00")
}
