package matcher

import (
	"github.com/medassist/medassist-api/catalog/entities"
)

// Scoring weights. A generic-name hit is worth twice a brand-alias word hit:
// the generic name printed on a strip is the strongest possible signal, while
// alias words accumulate per overlapping word.
const (
	GenericNameWeight = 10
	BrandAliasWeight  = 5
)

// Match scores every catalog entry against the token set and returns the ID
// of the single highest-scoring entry along with its score. When the best
// score is zero (no overlap with any entry), the returned ID is empty.
//
// Ties resolve to the entry reached first in catalog order: the scan uses a
// strict greater-than comparison, so callers must not rely on any particular
// catalog ordering beyond "stable within a fixed catalog".
//
// Match is deterministic and keeps no state across calls; each invocation
// recomputes every score. The catalog is small and static, so recomputation
// is cheap and can never serve stale results.
func Match(tokens TokenSet, catalog []entities.CatalogEntry) (entryID string, score int) {
	best := 0
	bestID := ""

	for _, entry := range catalog {
		s := scoreEntry(tokens, entry)
		if s > best {
			best = s
			bestID = entry.ID
		}
	}

	if best == 0 {
		return "", 0
	}
	return bestID, best
}

// scoreEntry computes the weighted overlap between the token set and one
// entry: GenericNameWeight when the generic name's first token is present,
// plus BrandAliasWeight per alias word found in the set.
func scoreEntry(tokens TokenSet, entry entities.CatalogEntry) int {
	score := 0

	if generic := Normalize(entry.GenericName); len(generic) > 0 && tokens.Has(generic[0]) {
		score += GenericNameWeight
	}

	for _, alias := range entry.BrandAliases {
		for _, word := range Normalize(alias) {
			if tokens.Has(word) {
				score += BrandAliasWeight
			}
		}
	}

	return score
}
