package match_test

import (
	"testing"

	"lqsmatch/internal/match"
)

func TestRankOrdersByScoreThenID(t *testing.T) {
	ranked := match.Rank([]match.Candidate{
		{HouseholdID: 3, Score: 60},
		{HouseholdID: 1, Score: 100},
		{HouseholdID: 2, Score: 60},
	})
	ids := []int64{ranked[0].HouseholdID, ranked[1].HouseholdID, ranked[2].HouseholdID}
	if ids[0] != 1 || ids[1] != 2 || ids[2] != 3 {
		t.Fatalf("unexpected order: %v", ids)
	}
}

func TestAutoMatch(t *testing.T) {
	const (
		minScore  = 75
		minMargin = 20
	)
	cases := []struct {
		name      string
		ranked    []match.Candidate
		wantID    int64
		wantMatch bool
	}{
		{"no candidates", nil, 0, false},
		{"single candidate wins regardless of score", []match.Candidate{{HouseholdID: 5, Score: 0}}, 5, true},
		{"dominant top", []match.Candidate{{HouseholdID: 1, Score: 100}, {HouseholdID: 2, Score: 60}}, 1, true},
		{"margin too thin", []match.Candidate{{HouseholdID: 1, Score: 90}, {HouseholdID: 2, Score: 80}}, 0, false},
		{"top below floor", []match.Candidate{{HouseholdID: 1, Score: 70}, {HouseholdID: 2, Score: 10}}, 0, false},
		{"exact thresholds", []match.Candidate{{HouseholdID: 1, Score: 75}, {HouseholdID: 2, Score: 55}}, 1, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			winner, ok := match.AutoMatch(tc.ranked, minScore, minMargin)
			if ok != tc.wantMatch {
				t.Fatalf("AutoMatch ok = %v, want %v", ok, tc.wantMatch)
			}
			if ok && winner.HouseholdID != tc.wantID {
				t.Fatalf("winner = %d, want %d", winner.HouseholdID, tc.wantID)
			}
		})
	}
}
