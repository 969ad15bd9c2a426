// Package routing assigns a final measurement to at most one profile.
package routing

import "github.com/lyntoo/ha-eufylife-ble/internal/domain/model"

// Outcome describes how a measurement was routed. Unassigned and
// Ambiguous are recorded outcomes for diagnostics, not failures.
type Outcome int

const (
	// Matched means exactly one profile's range contained the weight.
	Matched Outcome = iota
	// Unassigned means no profile's range contained the weight; the
	// measurement is recorded weight-only.
	Unassigned
	// Ambiguous means several ranges contained the weight and the
	// tie-break policy picked the winner.
	Ambiguous
)

// MarshalJSON serializes the outcome as its label.
func (o Outcome) MarshalJSON() ([]byte, error) {
	return []byte(`"` + o.String() + `"`), nil
}

// String returns the outcome label used in logs and metrics.
func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unassigned"
	}
}

// Route selects the profile whose weight range contains weightKg.
// Overlapping ranges tie-break by narrowest range width first, then by
// registry insertion order. The policy is part of the contract:
// silently picking an arbitrary match would misattribute a person's
// data, so any deviation must be deliberate and documented.
//
// Route is a pure function: identical inputs always select the
// identical profile.
func Route(weightKg float64, profiles []model.Profile) (*model.Profile, Outcome) {
	var best *model.Profile
	candidates := 0

	for i := range profiles {
		p := &profiles[i]
		if !p.ContainsWeight(weightKg) {
			continue
		}
		candidates++
		// Insertion order wins on equal widths because List is
		// insertion-ordered and strict inequality keeps the first.
		if best == nil || p.RangeWidthKg() < best.RangeWidthKg() {
			best = p
		}
	}

	switch {
	case candidates == 0:
		return nil, Unassigned
	case candidates == 1:
		return best, Matched
	default:
		return best, Ambiguous
	}
}
