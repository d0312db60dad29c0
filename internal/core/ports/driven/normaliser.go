package driven

// NormalisedText is the output of text normalisation.
type NormalisedText struct {
	// Display preserves casing and paragraph structure. This is the
	// copy returned to callers.
	Display string

	// Canonical is lower-cased with all whitespace collapsed. This is
	// the copy that feeds fingerprinting.
	Canonical string
}

// Normaliser converts raw document text into canonical form.
// Implementations must be deterministic and total: the same input
// always yields the same output, and malformed input degrades to
// best-effort stripped output rather than failing.
type Normaliser interface {
	Normalise(raw string) NormalisedText
}
