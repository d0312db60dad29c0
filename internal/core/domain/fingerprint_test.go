package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestNewFingerprint_Deterministic tests that identical input yields identical output
func TestNewFingerprint_Deterministic(t *testing.T) {
	a := NewFingerprint("https://example.com/a", "the quick brown fox")
	b := NewFingerprint("https://example.com/a", "the quick brown fox")
	assert.Equal(t, a, b)
}

// TestNewFingerprint_DistinctContent tests that content differing by one character differs
func TestNewFingerprint_DistinctContent(t *testing.T) {
	a := NewFingerprint("https://example.com/a", "the quick brown fox")
	b := NewFingerprint("https://example.com/a", "the quick brown foX")
	assert.NotEqual(t, a, b)
}

// TestNewFingerprint_DistinctSource tests that the same content from different URLs differs
func TestNewFingerprint_DistinctSource(t *testing.T) {
	a := NewFingerprint("https://example.com/a", "same content")
	b := NewFingerprint("https://example.com/b", "same content")
	assert.NotEqual(t, a, b)
}

// TestNewFingerprint_SeparatorAmbiguity tests that the url/text boundary cannot collide
func TestNewFingerprint_SeparatorAmbiguity(t *testing.T) {
	// Without a separator "ab"+"c" and "a"+"bc" would hash identically.
	a := NewFingerprint("ab", "c")
	b := NewFingerprint("a", "bc")
	assert.NotEqual(t, a, b)
}

// TestNewFingerprint_Width tests the fixed 256-bit hex width
func TestNewFingerprint_Width(t *testing.T) {
	fp := NewFingerprint("https://example.com", "")
	assert.Len(t, fp.String(), 64)
}
