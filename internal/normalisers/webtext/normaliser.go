// Package webtext normalises raw web page text returned by the search
// provider. Normalisation is deterministic and total: it never fails,
// and malformed encodings degrade to best-effort stripped output
// because losing a few bytes is cheaper than losing the fingerprint.
package webtext

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/quarry-cli/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser cleans raw web text.
type Normaliser struct {
	boilerplate []string
}

// New creates a web text normaliser. markers lists boilerplate strings
// (navigation chrome, cookie banners) that are removed wherever they
// appear; it comes from configuration and may be empty.
func New(markers []string) *Normaliser {
	return &Normaliser{boilerplate: markers}
}

// Normalise converts raw text into display and canonical forms.
// The display copy preserves casing and paragraph breaks; the canonical
// copy is additionally lower-cased and fully whitespace-collapsed so it
// is stable under cosmetic changes.
func (n *Normaliser) Normalise(raw string) driven.NormalisedText {
	cleaned := dropInvalidUTF8(raw)
	cleaned = stripControl(cleaned)
	for _, marker := range n.boilerplate {
		if marker == "" {
			continue
		}
		cleaned = strings.ReplaceAll(cleaned, marker, " ")
	}

	display := collapseWhitespace(cleaned, true)
	canonical := strings.ToLower(collapseWhitespace(cleaned, false))

	return driven.NormalisedText{
		Display:   display,
		Canonical: canonical,
	}
}

// dropInvalidUTF8 removes bytes that do not form valid UTF-8 sequences.
func dropInvalidUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}

// stripControl removes control characters except newline and tab,
// which are treated as whitespace later.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// collapseWhitespace collapses runs of whitespace. With keepParagraphs
// set, runs containing two or more newlines become a single blank line
// so the display copy stays readable; otherwise everything collapses
// to single spaces.
func collapseWhitespace(s string, keepParagraphs bool) string {
	if !keepParagraphs {
		return strings.Join(strings.Fields(s), " ")
	}

	var b strings.Builder
	b.Grow(len(s))

	var run []rune
	flushRun := func() {
		if len(run) == 0 {
			return
		}
		newlines := 0
		for _, r := range run {
			if r == '\n' {
				newlines++
			}
		}
		if newlines >= 2 {
			b.WriteString("\n\n")
		} else if newlines == 1 {
			b.WriteByte('\n')
		} else {
			b.WriteByte(' ')
		}
		run = run[:0]
	}

	started := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			if started {
				run = append(run, r)
			}
			continue
		}
		flushRun()
		b.WriteRune(r)
		started = true
	}

	return b.String()
}
