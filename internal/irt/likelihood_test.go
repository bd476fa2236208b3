package irt

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var threeItems = Items{
	{A: 1.2, B: 0.0, C: 0.1},
	{A: 0.9, B: -0.5, C: 0.05},
	{A: 1.5, B: 0.5, C: 0.2},
}

func TestLogLikelihood_KnownValue(t *testing.T) {
	ll, err := LogLikelihood(0, []int{1, 0, 1}, threeItems)
	require.NoError(t, err)
	assert.InDelta(t, -2.376201869038268, ll, 1e-12)
}

func TestLogLikelihood_MatchesDefinition(t *testing.T) {
	responses := []int{0, 1, 1}
	theta := -0.7

	var want float64
	for i, it := range threeItems {
		p, err := it.Probability(theta)
		require.NoError(t, err)
		if responses[i] == 1 {
			want += math.Log(p)
		} else {
			want += math.Log(1 - p)
		}
	}

	got, err := LogLikelihood(theta, responses, threeItems)
	require.NoError(t, err)
	assert.InDelta(t, want, got, 1e-12)
	assert.LessOrEqual(t, got, 0.0)
}

func TestLogLikelihood_DimensionMismatch(t *testing.T) {
	_, err := LogLikelihood(0, []int{1, 0}, threeItems)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDimensionMismatch))

	var dm *DimensionMismatchError
	require.True(t, errors.As(err, &dm))
	assert.Equal(t, 2, dm.Responses)
	assert.Equal(t, 3, dm.Items)
}

func TestLogLikelihood_DimensionCheckedFirst(t *testing.T) {
	// The overflowing item is never evaluated.
	_, err := LogLikelihood(-50, []int{1}, Items{{50, 0, 0}, {1, 0, 0}})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestLogLikelihood_DomainError(t *testing.T) {
	tests := []struct {
		name      string
		theta     float64
		responses []int
		items     Items
		index     int
	}{
		// exp(-40) vanishes next to 1, so P rounds to exactly 1.
		{"probability one", 40, []int{0, 1}, Items{{1, 0, 0}, {1, 0, 0}}, 0},
		{"probability one on a correct answer", 40, []int{1}, Items{{1, 0, 0}}, 0},
		{"certain guess", 0, []int{1, 0}, Items{{1, 0, 0.2}, {1, 0, 1}}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LogLikelihood(tt.theta, tt.responses, tt.items)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrDomain))

			var de *DomainError
			require.True(t, errors.As(err, &de))
			assert.Equal(t, tt.index, de.Index)
			assert.Equal(t, 1.0, de.Probability)
		})
	}
}

func TestLogLikelihood_OverflowPropagates(t *testing.T) {
	_, err := LogLikelihood(-50, []int{1}, Items{{50, 0, 0}})
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestNegativeLogLikelihood_IsExactInverse(t *testing.T) {
	for theta := -3.0; theta <= 3.0; theta += 0.37 {
		ll, err := LogLikelihood(theta, []int{1, 0, 1}, threeItems)
		require.NoError(t, err)
		nll, err := NegativeLogLikelihood(theta, []int{1, 0, 1}, threeItems)
		require.NoError(t, err)
		assert.Equal(t, -ll, nll)
	}
}

func TestNegativeLogLikelihood_Errors(t *testing.T) {
	_, err := NegativeLogLikelihood(0, []int{1}, threeItems)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}
