package domain

import "math"

// comparisonFloor is the minimum displayed percentage for comparison-style
// candidates. It keeps near-empty bars visible and applies even when no
// votes have been cast. Reaction-style tallies do not floor.
const comparisonFloor = 5

func percentage(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(count) / float64(total)))
}

// OptionPercentages computes the reaction-style display percentage per
// option: round-half-up of 100*count/total, all zero when total is zero.
// Independent rounding means the results need not sum to 100.
func OptionPercentages(options []PollOption) map[string]int {
	total := 0
	for i := range options {
		total += options[i].VoteCount
	}
	out := make(map[string]int, len(options))
	for i := range options {
		out[options[i].ID] = percentage(options[i].VoteCount, total)
	}
	return out
}

// CandidatePercentages computes the comparison-style display percentage per
// candidate, floored at 5 for visual legibility.
func CandidatePercentages(candidates []Candidate) map[string]int {
	total := 0
	for i := range candidates {
		total += candidates[i].VoteCount
	}
	out := make(map[string]int, len(candidates))
	for i := range candidates {
		pct := percentage(candidates[i].VoteCount, total)
		if pct < comparisonFloor {
			pct = comparisonFloor
		}
		out[candidates[i].ID] = pct
	}
	return out
}
