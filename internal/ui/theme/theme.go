package theme

import (
	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(16)

	Value = lipgloss.NewStyle().
		Foreground(Text).
		Bold(true)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Failure = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Layout
var (
	Card = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Border).
		Padding(0, 1)
)

// Outcome styles, keyed by estimate outcome.
var (
	Finite = lipgloss.NewStyle().
		Foreground(Secondary).
		Bold(true)

	AllCorrect = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	AllIncorrect = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)
)

// Outcome returns the style for an estimate outcome name.
func Outcome(name string) lipgloss.Style {
	switch name {
	case "all_correct":
		return AllCorrect
	case "all_incorrect":
		return AllIncorrect
	case "finite":
		return Finite
	default:
		return Hint
	}
}

// Field renders a label/value line.
func Field(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, Label.Render(label), Value.Render(value))
}

// Table returns a bordered table with the palette's header style.
func Table(headers ...string) *table.Table {
	header := lipgloss.NewStyle().Foreground(Primary).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(Text).Padding(0, 1)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(Border)).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			return cell
		})
}
