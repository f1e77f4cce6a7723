package ledger

import (
	"strings"

	"github.com/MVdu13/finsyamvp-sub000/internal/model"
)

// Resolve decides whether a candidate holding folds into an existing position
// or must create a new one. Pure function: no side effects, identical results
// for identical inputs.
//
// A match requires the same mergeable kind, a case-insensitive displayName
// match, and exactly equal ownerAccountRef (both-empty counts as equal).
// Non-mergeable kinds never match.
//
// Returns the first match in iteration order plus the total number of matches.
// More than one match means the one-position-per-identity invariant was
// already violated; the caller proceeds with the first match and should
// surface the count as a data-integrity warning.
func Resolve(c Candidate, existing []model.Position) (*model.Position, int) {
	if !c.Kind.Mergeable() {
		return nil, 0
	}

	name := strings.ToLower(c.DisplayName)
	var first *model.Position
	matches := 0

	for i := range existing {
		p := &existing[i]
		if p.Kind != c.Kind {
			continue
		}
		if strings.ToLower(p.DisplayName) != name {
			continue
		}
		if p.OwnerAccountRef != c.OwnerAccountRef {
			continue
		}
		if first == nil {
			first = p
		}
		matches++
	}

	return first, matches
}
