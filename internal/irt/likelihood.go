package irt

import "math"

// LogLikelihood returns the log-likelihood of theta given a binary response
// vector and the parameters of the answered items:
//
//	log L = sum_i x_i log P_i + (1 - x_i) log(1 - P_i)
//
// The lengths must match. A probability of exactly 0 or 1 yields a
// *DomainError rather than -Inf.
func LogLikelihood(theta float64, responses []int, items Items) (float64, error) {
	if len(responses) != len(items) {
		return 0, &DimensionMismatchError{Responses: len(responses), Items: len(items)}
	}

	var ll float64
	for i, x := range responses {
		p, err := items[i].Probability(theta)
		if err != nil {
			return 0, err
		}
		if p <= 0 || p >= 1 {
			return 0, &DomainError{Index: i, Theta: theta, Probability: p}
		}
		xf := float64(x)
		ll += xf*math.Log(p) + (1-xf)*math.Log(1-p)
	}
	return ll, nil
}

// NegativeLogLikelihood is the additive inverse of LogLikelihood, for
// callers that frame estimation as minimization.
func NegativeLogLikelihood(theta float64, responses []int, items Items) (float64, error) {
	ll, err := LogLikelihood(theta, responses, items)
	if err != nil {
		return 0, err
	}
	return -ll, nil
}
