package render

import (
	"github.com/charmbracelet/lipgloss"

	"finsec/internal/usecase"
)

// Risk colors
var (
	RiskHighColor   = lipgloss.Color("#ff4b4b")
	RiskMediumColor = lipgloss.Color("#ffa600")
	RiskLowColor    = lipgloss.Color("#00c853")
	MutedColor      = lipgloss.Color("#8a8f98")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(MutedColor)

	riskStyles = map[usecase.Risk]lipgloss.Style{
		usecase.RiskHigh: lipgloss.NewStyle().
			Foreground(RiskHighColor).
			Bold(true),
		usecase.RiskMedium: lipgloss.NewStyle().
			Foreground(RiskMediumColor),
		usecase.RiskLow: lipgloss.NewStyle().
			Foreground(RiskLowColor),
	}
)

// RiskBadge renders a risk level in its color.
func RiskBadge(r usecase.Risk) string {
	style, ok := riskStyles[r]
	if !ok {
		return mutedStyle.Render(string(r))
	}
	return style.Render(string(r))
}
