package irt

import (
	"context"
	"fmt"
	"log/slog"
	"math"
)

const (
	// DefaultPrecision is the number of decimal digits used for the
	// convergence threshold.
	DefaultPrecision = 6

	searchRounds     = 10
	searchCandidates = 10
)

// Outcome classifies an estimate.
type Outcome string

const (
	OutcomeFinite       Outcome = "finite"
	OutcomeAllCorrect   Outcome = "all_correct"
	OutcomeAllIncorrect Outcome = "all_incorrect"
)

// Result describes a completed estimation.
type Result struct {
	Theta         float64
	Outcome       Outcome
	LogLikelihood float64 // NaN for degenerate response vectors
	Evaluations   int     // likelihood evaluations performed
	Rounds        int     // grid rounds started
	Converged     bool    // stopped on the precision threshold
}

type options struct {
	precision int
	verbose   bool
	logger    *slog.Logger
}

// Option configures EstimateTheta and Estimate.
type Option func(*options)

// WithPrecision sets the convergence threshold to 10^-digits.
func WithPrecision(digits int) Option {
	return func(o *options) { o.precision = digits }
}

// WithVerbose enables debug logging of the search progress.
func WithVerbose(v bool) Option {
	return func(o *options) { o.verbose = v }
}

// WithLogger sets the logger used in verbose mode.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// EstimateTheta returns the theta that maximizes the log-likelihood of the
// response vector. All-correct and all-incorrect vectors return +Inf and
// -Inf without searching.
func EstimateTheta(responses []int, items Items, opts ...Option) (float64, error) {
	res, err := Estimate(responses, items, opts...)
	if err != nil {
		return 0, err
	}
	return res.Theta, nil
}

// Estimate runs the grid-refinement hill climb and reports how it went.
//
// The bracket starts at the range of item difficulties. Each round scans
// evenly spaced candidates from the lower bound up; the first candidate that
// does not improve on the best log-likelihood seen so far ends the round and
// the bracket becomes [best - spacing, candidate]. The search stops as soon
// as an improving candidate lies within 10^-precision of the previous best,
// or after a fixed number of rounds.
//
// The search assumes the likelihood rises then falls inside every bracket.
// On flat or multimodal surfaces it may settle on a local maximum.
func Estimate(responses []int, items Items, opts ...Option) (Result, error) {
	o := options{precision: DefaultPrecision}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger
	if log == nil {
		log = slog.Default()
	}

	if len(responses) != len(items) {
		return Result{}, &DimensionMismatchError{Responses: len(responses), Items: len(items)}
	}
	if len(responses) == 0 {
		return Result{}, ErrNoResponses
	}

	switch {
	case allEqual(responses, 1):
		return Result{Theta: math.Inf(1), Outcome: OutcomeAllCorrect, LogLikelihood: math.NaN()}, nil
	case allEqual(responses, 0):
		return Result{Theta: math.Inf(-1), Outcome: OutcomeAllIncorrect, LogLikelihood: math.NaN()}, nil
	}

	threshold := math.Pow(10, -float64(o.precision))
	lbound, ubound := items.Difficulties()
	bestTheta := math.Inf(-1)
	maxLL := math.Inf(-1)
	res := Result{Outcome: OutcomeFinite}

	for round := 0; round < searchRounds; round++ {
		res.Rounds++
		grid := linspace(lbound, ubound, searchCandidates)
		spacing := grid[1] - grid[0]
		if o.verbose {
			log.Debug("search bracket", "round", round+1, "lower", lbound, "upper", ubound, "spacing", spacing)
		}

		for _, theta := range grid {
			res.Evaluations++
			ll, err := LogLikelihood(theta, responses, items)
			if err != nil {
				return Result{}, fmt.Errorf("evaluate theta %v: %w", theta, err)
			}

			if ll <= maxLL {
				lbound = bestTheta - spacing
				ubound = theta
				break
			}

			maxLL = ll
			if o.verbose {
				log.Debug("improved", "evaluation", res.Evaluations, "theta", theta, "ll", ll)
			}
			if math.Abs(bestTheta-theta) < threshold {
				res.Theta = theta
				res.LogLikelihood = ll
				res.Converged = true
				return res, nil
			}
			bestTheta = theta
		}
	}

	res.Theta = bestTheta
	res.LogLikelihood = maxLL
	return res, nil
}

// EstimateContext is Estimate with the context checked before the search.
// The search itself is bounded and never blocks.
func EstimateContext(ctx context.Context, responses []int, items Items, opts ...Option) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	return Estimate(responses, items, opts...)
}

func allEqual(xs []int, v int) bool {
	for _, x := range xs {
		if x != v {
			return false
		}
	}
	return true
}

// linspace returns n evenly spaced values from start to stop inclusive.
// The final value is exactly stop.
func linspace(start, stop float64, n int) []float64 {
	out := make([]float64, n)
	step := (stop - start) / float64(n-1)
	for i := range out {
		out[i] = start + float64(i)*step
	}
	out[n-1] = stop
	return out
}
