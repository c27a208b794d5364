package matcher

import (
	"sort"

	"github.com/antzucaro/matchr"

	"github.com/medassist/medassist-api/catalog/entities"
)

// Suggestion thresholds. A phonetic candidate (Double Metaphone overlap) is
// accepted at a lower string-similarity score than a pure fuzzy candidate,
// since the phonetic filter has already vouched for it.
const (
	phoneticThreshold = 0.70
	fuzzyThreshold    = 0.85
	maxSuggestions    = 3
)

// Suggestion is a best-effort "did you mean" candidate produced when no
// catalog entry scored above zero. Suggestions are informational only and
// never promote a no-match into a match.
type Suggestion struct {
	EntryID     string  `json:"entryId"`
	GenericName string  `json:"genericName"`
	MatchedWord string  `json:"matchedWord"`
	Similarity  float64 `json:"similarity"`
}

// Suggest compares every OCR token against every catalog name (generic name
// and brand aliases) using Double Metaphone codes for candidate filtering and
// Jaro-Winkler similarity for ranking. At most maxSuggestions entries come
// back, best first, one suggestion per entry.
func Suggest(tokens []string, catalog []entities.CatalogEntry) []Suggestion {
	if len(tokens) == 0 {
		return nil
	}

	best := make(map[string]Suggestion, len(catalog))

	for _, entry := range catalog {
		names := append([]string{entry.GenericName}, entry.BrandAliases...)
		for _, name := range names {
			normalized := Normalize(name)
			if len(normalized) == 0 {
				continue
			}
			word := normalized[0]
			wp, ws := matchr.DoubleMetaphone(word)

			for _, token := range tokens {
				tp, ts := matchr.DoubleMetaphone(token)
				phonetic := codesOverlap(wp, ws, tp, ts)

				score := matchr.JaroWinkler(token, word, false)
				threshold := fuzzyThreshold
				if phonetic {
					threshold = phoneticThreshold
				}
				if score < threshold {
					continue
				}

				if prev, ok := best[entry.ID]; !ok || score > prev.Similarity {
					best[entry.ID] = Suggestion{
						EntryID:     entry.ID,
						GenericName: entry.GenericName,
						MatchedWord: token,
						Similarity:  score,
					}
				}
			}
		}
	}

	out := make([]Suggestion, 0, len(best))
	for _, s := range best {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Similarity != out[j].Similarity {
			return out[i].Similarity > out[j].Similarity
		}
		return out[i].EntryID < out[j].EntryID
	})
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// codesOverlap reports whether any non-empty metaphone code is shared.
func codesOverlap(p1, s1, p2, s2 string) bool {
	for _, a := range []string{p1, s1} {
		if a == "" {
			continue
		}
		if a == p2 || (s2 != "" && a == s2) {
			return true
		}
	}
	return false
}
