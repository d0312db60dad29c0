// Package normalisers contains text normaliser implementations.
// Normalisers convert raw provider text into the canonical form used
// for fingerprinting and the display form returned to callers.
package normalisers
