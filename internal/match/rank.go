package match

import "sort"

// Candidate is a household considered for a sale, scored against its best
// quote.
type Candidate struct {
	HouseholdID int64
	QuoteID     int64
	Score       int
	Reasons     []string
}

// Rank orders candidates by score descending. Ties order by household ID
// ascending so repeated runs over the same data rank identically.
func Rank(candidates []Candidate) []Candidate {
	ranked := make([]Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].HouseholdID < ranked[j].HouseholdID
	})
	return ranked
}

// AutoMatch reports whether the ranked candidate list justifies linking
// without human review, and which candidate wins.
//
// A lone surname candidate auto-matches regardless of score: uniqueness of
// the surname among quoted households is itself strong evidence. With two
// or more candidates the top must reach minScore and clear the runner-up by
// minMargin; anything weaker goes to manual review.
func AutoMatch(ranked []Candidate, minScore, minMargin int) (Candidate, bool) {
	switch len(ranked) {
	case 0:
		return Candidate{}, false
	case 1:
		return ranked[0], true
	}
	top, second := ranked[0], ranked[1]
	if top.Score >= minScore && top.Score-second.Score >= minMargin {
		return top, true
	}
	return Candidate{}, false
}
