package cmd

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abhisek/thetacat/internal/estimation"
	"github.com/abhisek/thetacat/internal/irt"
)

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "0.6287", formatFloat(0.6287441847196676))
	assert.Equal(t, "-1.5000", formatFloat(-1.5))
	assert.Equal(t, "+inf", formatFloat(math.Inf(1)))
	assert.Equal(t, "-inf", formatFloat(math.Inf(-1)))
	assert.Equal(t, "n/a", formatFloat(math.NaN()))
}

func TestRenderEstimate(t *testing.T) {
	out := renderEstimate(&estimation.Estimate{
		ExamineeID:    "stu-1",
		EventID:       "evt-1",
		Theta:         math.Inf(1),
		Outcome:       irt.OutcomeAllCorrect,
		StandardError: math.Inf(1),
		LogLikelihood: math.NaN(),
		Precision:     6,
	})
	for _, want := range []string{"all_correct", "+inf", "n/a", "stu-1", "evt-1"} {
		assert.Contains(t, out, want)
	}
}

func TestRootRegistersCommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"estimate", "info", "bank", "history", "serve", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}
