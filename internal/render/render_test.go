package render

import (
	"strings"
	"testing"
	"time"

	"finsec/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id, uc string, risk usecase.Risk) usecase.TestCaseRecord {
	sections := usecase.NewSections()
	sections.PositiveScenario = []string{"Submit compliant transfer"}
	sections.NegativeScenarios = []string{"Tamper with beneficiary", "Split below threshold"}
	return usecase.TestCaseRecord{
		UseCase:     usecase.UseCase{UseCase: uc, Category: "AML", Risk: risk},
		Sections:    sections,
		RiskLevel:   risk,
		TestID:      id,
		LastUpdated: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown([]usecase.TestCaseRecord{record("FINSEC-00000001", "Structuring detection", usecase.RiskHigh)})

	assert.Contains(t, md, "## FINSEC-00000001: Structuring detection")
	assert.Contains(t, md, "- **Category:** AML")
	assert.Contains(t, md, "- **Risk:** High")
	assert.Contains(t, md, "### Negative Scenarios\n\n1. Tamper with beneficiary\n2. Split below threshold\n")
	assert.NotContains(t, md, "### Edge Cases")
}

func TestMarkdown_Empty(t *testing.T) {
	assert.Contains(t, Markdown(nil), "_No test cases._")
}

func TestMarkdown_PreservesOrder(t *testing.T) {
	md := Markdown([]usecase.TestCaseRecord{
		record("FINSEC-00000001", "First", usecase.RiskHigh),
		record("FINSEC-00000002", "Second", usecase.RiskLow),
	})
	assert.Less(t, strings.Index(md, "First"), strings.Index(md, "Second"))
}

func TestTerminal(t *testing.T) {
	out, err := Terminal([]usecase.TestCaseRecord{
		record("FINSEC-00000001", "Structuring detection", usecase.RiskHigh),
		record("FINSEC-00000002", "Round-tripping", usecase.RiskLow),
	}, TerminalOptions{Style: "notty", Width: 80})
	require.NoError(t, err)

	assert.Contains(t, out, "2 test cases")
	assert.Contains(t, out, "FINSEC-00000001")
	assert.Contains(t, out, "Tamper with beneficiary")
}

func TestSummary_CountsByRisk(t *testing.T) {
	s := Summary([]usecase.TestCaseRecord{
		record("a", "x", usecase.RiskHigh),
		record("b", "y", usecase.RiskHigh),
		record("c", "z", usecase.RiskMedium),
	})
	assert.Contains(t, s, "3 test cases")
	assert.Contains(t, s, "High")
	assert.Contains(t, s, "Medium")
	assert.NotContains(t, s, "Low")
}
