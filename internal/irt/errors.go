package irt

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is matching.
var (
	ErrDimensionMismatch = errors.New("dimension mismatch")
	ErrDomain            = errors.New("probability outside open interval (0, 1)")
	ErrOverflow          = errors.New("exponential overflow")
	ErrNoResponses       = errors.New("empty response vector")
)

// DimensionMismatchError indicates the response vector and the item
// parameters do not have the same length.
type DimensionMismatchError struct {
	Responses int
	Items     int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("response vector has %d entries but %d items were given", e.Responses, e.Items)
}

func (e *DimensionMismatchError) Is(target error) bool { return target == ErrDimensionMismatch }

// DomainError indicates an item probability of exactly 0 or 1, for which
// the log-likelihood term is undefined.
type DomainError struct {
	Index       int
	Theta       float64
	Probability float64
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("item %d: probability %v at theta %v has no finite logarithm", e.Index, e.Probability, e.Theta)
}

func (e *DomainError) Is(target error) bool { return target == ErrDomain }

// OverflowError carries the input tuple that pushed the logistic exponent
// out of float64 range.
type OverflowError struct {
	Theta float64
	A     float64
	B     float64
	C     float64
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("exponential overflow with theta=%v a=%v b=%v c=%v", e.Theta, e.A, e.B, e.C)
}

func (e *OverflowError) Is(target error) bool { return target == ErrOverflow }
