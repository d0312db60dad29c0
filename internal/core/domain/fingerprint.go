package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint is the content-hash identity of a document within a
// source. Identical canonical text from the same URL always produces
// the same fingerprint; any difference produces a different one.
type Fingerprint string

// NewFingerprint derives a fingerprint from a source URL and the
// canonical (normalised, casefolded) document text. It is a pure
// function over its inputs. SHA-256 gives a 256-bit identity, well
// above the collision-resistance the dedup path needs.
func NewFingerprint(sourceURL, canonicalText string) Fingerprint {
	h := sha256.New()
	h.Write([]byte(sourceURL))
	h.Write([]byte{0})
	h.Write([]byte(canonicalText))
	return Fingerprint(hex.EncodeToString(h.Sum(nil)))
}

// String returns the fingerprint as a hex string.
func (f Fingerprint) String() string {
	return string(f)
}
