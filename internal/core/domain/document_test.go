package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func doc(url, text string) Document {
	return Document{
		ID:          url,
		URL:         url,
		Text:        text,
		Fingerprint: NewFingerprint(url, text),
	}
}

// TestCacheEntry_Merge_AppendsNew tests that new fingerprints append in arrival order
func TestCacheEntry_Merge_AppendsNew(t *testing.T) {
	entry := CacheEntry{QueryKey: "q"}

	added := entry.Merge([]Document{doc("a", "1"), doc("b", "2"), doc("c", "3")})
	assert.Equal(t, 3, added)

	added = entry.Merge([]Document{doc("a", "1"), doc("b", "2"), doc("c", "3"), doc("d", "4"), doc("e", "5")})
	assert.Equal(t, 2, added)

	urls := make([]string, len(entry.Documents))
	for i, d := range entry.Documents {
		urls[i] = d.URL
	}
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, urls)
}

// TestCacheEntry_Merge_KnownFingerprintIsNoop tests idempotent merging
func TestCacheEntry_Merge_KnownFingerprintIsNoop(t *testing.T) {
	entry := CacheEntry{QueryKey: "q"}
	entry.Merge([]Document{doc("a", "1")})

	before := entry.Documents[0]

	// Same fingerprint carrying a different score must not overwrite.
	changed := doc("a", "1")
	changed.Score = 0.99
	added := entry.Merge([]Document{changed})

	assert.Zero(t, added)
	assert.Len(t, entry.Documents, 1)
	assert.Equal(t, before, entry.Documents[0])
}

// TestCacheEntry_Merge_DuplicatesWithinBatch tests dedup inside a single fetch
func TestCacheEntry_Merge_DuplicatesWithinBatch(t *testing.T) {
	entry := CacheEntry{QueryKey: "q"}
	added := entry.Merge([]Document{doc("a", "1"), doc("a", "1"), doc("b", "2")})

	assert.Equal(t, 2, added)
	assert.Len(t, entry.Documents, 2)
}

// TestCacheEntry_Fingerprints tests ordered fingerprint listing
func TestCacheEntry_Fingerprints(t *testing.T) {
	entry := CacheEntry{QueryKey: "q"}
	entry.Merge([]Document{doc("a", "1"), doc("b", "2")})

	fps := entry.Fingerprints()
	assert.Equal(t, []Fingerprint{
		NewFingerprint("a", "1"),
		NewFingerprint("b", "2"),
	}, fps)
}
