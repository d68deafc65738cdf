// Package match implements the probabilistic half of sale resolution: a
// deterministic point score between a sale and a quote, and the ranking
// rules that decide when a scored candidate may be auto-matched versus
// escalated to manual review.
//
// Scoring is a pure function so the auto-match thresholds can be exercised
// in tests without a database. The same (sale, quote) pair always yields
// the same value and reason set.
package match
