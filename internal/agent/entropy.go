package agent

import (
	"math"

	"github.com/vpepe/twentyq/internal/domain"
)

// BinaryEntropy returns the entropy in bits of a Bernoulli variable with
// success probability p. Returns NaN for p outside [0, 1] and 0 at the
// endpoints.
func BinaryEntropy(p float64) float64 {
	if p < 0 || p > 1 {
		return math.NaN()
	}
	if p == 0 || p == 1 {
		return 0
	}
	return -p*math.Log2(p) - (1-p)*math.Log2(1-p)
}

// ExpectedInformationGain scores one candidate question against the current
// belief state, under a symmetric answer channel that flips the idealized
// yes/no with probability epsilon.
//
// Candidates absent from the consistency map contribute nothing. A
// classification outside {"yes","no"} is a protocol violation and yields NaN,
// which callers rank last rather than treating as fatal. A question whose
// yes- or no-partition carries zero weight cannot distinguish anything in the
// pool and scores exactly 0.
func ExpectedInformationGain(state domain.BeliefState, consistency domain.ConsistencyMap, epsilon float64) float64 {
	var yesWeight, noWeight float64
	for cand, w := range state {
		answer, ok := consistency[cand]
		if !ok {
			continue
		}
		switch answer {
		case domain.AnswerYes:
			yesWeight += w
		case domain.AnswerNo:
			noWeight += w
		default:
			return math.NaN()
		}
	}

	if yesWeight == 0 || noWeight == 0 {
		return 0
	}

	p := yesWeight / (yesWeight + noWeight)

	// Map the idealized split probability into the space reachable by a noisy
	// answerer, then subtract the channel's floor entropy: the gain is what we
	// learn beyond irreducible answer noise.
	return BinaryEntropy(epsilon+(1-2*epsilon)*p) - BinaryEntropy(epsilon)
}
