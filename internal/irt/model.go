// Package irt implements the three-parameter logistic item response model
// and a maximum-likelihood proficiency estimator built on it.
package irt

import "math"

// maxExpArg is the largest |z| for which math.Exp(z) neither overflows to
// +Inf nor flushes to zero.
var maxExpArg = math.Log(math.MaxFloat64)

// Item holds the 3PL parameters of a single item.
type Item struct {
	A float64 `json:"a" yaml:"a"` // discrimination
	B float64 `json:"b" yaml:"b"` // difficulty
	C float64 `json:"c" yaml:"c"` // pseudo-guessing
}

// Items is an ordered set of administered items, aligned with a response vector.
type Items []Item

// Difficulties returns the smallest and largest b parameter.
// It returns zeros for an empty set.
func (items Items) Difficulties() (lo, hi float64) {
	if len(items) == 0 {
		return 0, 0
	}
	lo, hi = items[0].B, items[0].B
	for _, it := range items[1:] {
		lo = math.Min(lo, it.B)
		hi = math.Max(hi, it.B)
	}
	return lo, hi
}

// Probability returns the probability of a correct response at theta:
//
//	P(theta) = c + (1-c) / (1 + e^(-a(theta-b)))
//
// It returns an *OverflowError when the exponent leaves float64 range.
func Probability(theta, a, b, c float64) (float64, error) {
	z := -a * (theta - b)
	if math.Abs(z) > maxExpArg || math.IsNaN(z) {
		return 0, &OverflowError{Theta: theta, A: a, B: b, C: c}
	}
	return c + (1-c)/(1+math.Exp(z)), nil
}

// Probability is a convenience wrapper over the package-level function.
func (it Item) Probability(theta float64) (float64, error) {
	return Probability(theta, it.A, it.B, it.C)
}

// Information returns the Fisher information the item provides at theta:
//
//	I(theta) = a^2 (P-c)^2 / (1-c)^2 * (1-P) / P
//
// Degenerate inputs (P = 0 or c = 1) are not guarded and yield Inf or NaN.
func Information(theta, a, b, c float64) (float64, error) {
	p, err := Probability(theta, a, b, c)
	if err != nil {
		return 0, err
	}
	return a * a * ((p - c) * (p - c) / ((1 - c) * (1 - c))) * (1 - p) / p, nil
}

// Information is a convenience wrapper over the package-level function.
func (it Item) Information(theta float64) (float64, error) {
	return Information(theta, it.A, it.B, it.C)
}

// TestInformation sums item information over items at theta.
func TestInformation(theta float64, items Items) (float64, error) {
	var total float64
	for _, it := range items {
		info, err := it.Information(theta)
		if err != nil {
			return 0, err
		}
		total += info
	}
	return total, nil
}

// StandardError returns the asymptotic standard error of a theta estimate,
// 1/sqrt(test information). Zero information yields +Inf.
func StandardError(theta float64, items Items) (float64, error) {
	info, err := TestInformation(theta, items)
	if err != nil {
		return 0, err
	}
	if info <= 0 {
		return math.Inf(1), nil
	}
	return 1 / math.Sqrt(info), nil
}
