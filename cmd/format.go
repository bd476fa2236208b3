package cmd

import (
	"math"
	"strconv"
	"strings"

	"github.com/abhisek/thetacat/internal/estimation"
	"github.com/abhisek/thetacat/internal/ui/theme"
)

// formatFloat renders f with four decimals, spelling out non-finite values.
func formatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "+inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "n/a"
	}
	return strconv.FormatFloat(f, 'f', 4, 64)
}

func renderEstimate(est *estimation.Estimate) string {
	lines := []string{
		theme.Title.Render("Theta estimate"),
		theme.Field("Outcome", theme.Outcome(string(est.Outcome)).Render(string(est.Outcome))),
		theme.Field("Theta", formatFloat(est.Theta)),
		theme.Field("Std. error", formatFloat(est.StandardError)),
		theme.Field("Log-likelihood", formatFloat(est.LogLikelihood)),
		theme.Field("Evaluations", strconv.Itoa(est.Evaluations)),
		theme.Field("Rounds", strconv.Itoa(est.Rounds)),
		theme.Field("Converged", strconv.FormatBool(est.Converged)),
		theme.Field("Precision", strconv.Itoa(est.Precision)),
	}
	if est.ExamineeID != "" {
		lines = append(lines, theme.Field("Examinee", est.ExamineeID))
	}
	if est.EventID != "" {
		lines = append(lines, theme.Field("Event", est.EventID))
	}
	return theme.Card.Render(strings.Join(lines, "\n"))
}
