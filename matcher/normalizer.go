// Package matcher implements OCR-text medicine matching: a text normalizer
// that turns raw OCR output into comparable tokens, and a weighted-overlap
// scorer that ranks catalog entries against those tokens.
//
// The scoring rule is a deliberately simple, explainable heuristic rather
// than statistical matching: the catalog is tiny and OCR output is noisy, so
// a weighted keyword vote is robust to partially garbled text without
// needing a trained model.
package matcher

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldDiacritics decomposes accented characters and strips the combining
// marks, so "Paracétamol" tokenizes the same as "Paracetamol". OCR output of
// packaging frequently carries stray accented glyphs.
var foldDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// minTokenLength is the shortest token kept after normalization. Anything of
// two characters or fewer is almost always OCR noise ("mg", "ml", stray
// fragments) and would inflate overlap scores.
const minTokenLength = 3

// Normalize turns raw OCR text into comparable tokens: diacritics folded,
// lower-cased, everything outside a-z/0-9/whitespace stripped, split on
// whitespace, tokens shorter than three characters discarded.
//
// Normalize is pure. Empty or whitespace-only input yields an empty slice,
// never an error.
func Normalize(raw string) []string {
	folded, _, err := transform.String(foldDiacritics, raw)
	if err != nil {
		// Malformed input transforms are non-fatal; score against the raw text.
		folded = raw
	}

	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range strings.ToLower(folded) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	fields := strings.Fields(b.String())
	tokens := fields[:0]
	for _, f := range fields {
		if len(f) >= minTokenLength {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// TokenSet is a normalized token set; duplicates are irrelevant for scoring.
type TokenSet map[string]struct{}

// NewTokenSet builds a TokenSet from normalized tokens.
func NewTokenSet(tokens []string) TokenSet {
	set := make(TokenSet, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Has reports whether token is in the set.
func (s TokenSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}
