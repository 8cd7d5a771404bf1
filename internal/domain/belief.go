package domain

import (
	"sort"
	"strings"
)

// Answer values a consistency classification may take. Anything else is a
// protocol violation.
const (
	AnswerYes = "yes"
	AnswerNo  = "no"
)

// Canonical normalizes an answer string: candidates differing only in case or
// surrounding whitespace are the same candidate.
func Canonical(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// BeliefState maps canonical candidates to non-negative plausibility weights.
type BeliefState map[string]float64

// NewBeliefState builds a uniform belief state (weight 1 per candidate) from a
// raw candidate list, deduplicating by canonical form.
func NewBeliefState(candidates []string) BeliefState {
	state := make(BeliefState, len(candidates))
	for _, c := range candidates {
		c = Canonical(c)
		if c == "" {
			continue
		}
		state[c] = 1
	}
	return state
}

// Candidates returns the candidate set in sorted order, so that prompt
// construction and scoring are deterministic for a given pool.
func (s BeliefState) Candidates() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ConsistencyMap records, for one question, whether each candidate is
// consistent with a "yes" or a "no" answer.
type ConsistencyMap map[string]string
