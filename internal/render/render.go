// Package render formats test-case records for people: a markdown document
// and a styled terminal view of it.
package render

import (
	"fmt"
	"strings"

	"finsec/internal/usecase"

	"github.com/charmbracelet/glamour"
)

type section struct {
	title string
	items func(usecase.TestCaseRecord) []string
}

var sections = []section{
	{"Positive Scenario", func(r usecase.TestCaseRecord) []string { return r.PositiveScenario }},
	{"Negative Scenarios", func(r usecase.TestCaseRecord) []string { return r.NegativeScenarios }},
	{"Validation Criteria", func(r usecase.TestCaseRecord) []string { return r.ValidationCriteria }},
	{"Test Data Requirements", func(r usecase.TestCaseRecord) []string { return r.TestData }},
	{"Edge Cases", func(r usecase.TestCaseRecord) []string { return r.EdgeCases }},
	{"Compliance References", func(r usecase.TestCaseRecord) []string { return r.ComplianceReferences }},
}

// Markdown renders records as a markdown document. Empty sections are left out.
func Markdown(records []usecase.TestCaseRecord) string {
	var sb strings.Builder
	sb.WriteString("# Financial Test Suite\n\n")
	if len(records) == 0 {
		sb.WriteString("_No test cases._\n")
		return sb.String()
	}

	for _, rec := range records {
		fmt.Fprintf(&sb, "## %s: %s\n\n", rec.TestID, rec.UseCase.UseCase)
		fmt.Fprintf(&sb, "- **Category:** %s\n", rec.CategoryOrDefault())
		fmt.Fprintf(&sb, "- **Risk:** %s\n", riskOf(rec))
		if rec.Scenario != "" {
			fmt.Fprintf(&sb, "- **Scenario:** %s\n", rec.Scenario)
		}
		if !rec.LastUpdated.IsZero() {
			fmt.Fprintf(&sb, "- **Last updated:** %s\n", rec.LastUpdated.Format("2006-01-02 15:04:05 MST"))
		}
		sb.WriteString("\n")

		for _, s := range sections {
			items := s.items(rec)
			if len(items) == 0 {
				continue
			}
			fmt.Fprintf(&sb, "### %s\n\n", s.title)
			for i, item := range items {
				fmt.Fprintf(&sb, "%d. %s\n", i+1, item)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// TerminalOptions configures Terminal.
type TerminalOptions struct {
	Style string // glamour standard style: dark, light, notty, auto
	Width int
}

// Terminal renders records for a terminal: a risk summary line followed by
// the markdown document rendered through glamour.
func Terminal(records []usecase.TestCaseRecord, opts TerminalOptions) (string, error) {
	if opts.Width <= 0 {
		opts.Width = 100
	}

	styleOpt := glamour.WithStandardStyle(opts.Style)
	if opts.Style == "" || opts.Style == "auto" {
		styleOpt = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(opts.Width))
	if err != nil {
		return "", fmt.Errorf("failed to create renderer: %w", err)
	}

	body, err := renderer.Render(Markdown(records))
	if err != nil {
		return "", fmt.Errorf("failed to render suite: %w", err)
	}
	return Summary(records) + "\n" + body, nil
}

// Summary renders a one-line count of records by risk level.
func Summary(records []usecase.TestCaseRecord) string {
	counts := make(map[usecase.Risk]int)
	for _, rec := range records {
		counts[riskOf(rec)]++
	}

	parts := []string{titleStyle.Render(fmt.Sprintf("%d test cases", len(records)))}
	for _, r := range []usecase.Risk{usecase.RiskHigh, usecase.RiskMedium, usecase.RiskLow} {
		if counts[r] > 0 {
			parts = append(parts, fmt.Sprintf("%s %d", RiskBadge(r), counts[r]))
		}
	}
	return strings.Join(parts, mutedStyle.Render(" | "))
}

func riskOf(rec usecase.TestCaseRecord) usecase.Risk {
	if rec.RiskLevel != "" {
		return rec.RiskLevel
	}
	return rec.RiskOrDefault()
}
