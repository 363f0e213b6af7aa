package parser

import (
	"strings"

	"finsec/internal/usecase"
)

// SectionKey names one of the six extracted sections.
type SectionKey string

const (
	SectionPositiveScenario     SectionKey = "positive_scenario"
	SectionNegativeScenarios    SectionKey = "negative_scenarios"
	SectionValidationCriteria   SectionKey = "validation_criteria"
	SectionTestData             SectionKey = "test_data"
	SectionEdgeCases            SectionKey = "edge_cases"
	SectionComplianceReferences SectionKey = "compliance_references"
)

// HeaderRule maps a lower-case header phrase to a section.
type HeaderRule struct {
	Phrase  string
	Section SectionKey
}

// DefaultHeaderRules is the header table. Matching is substring containment
// against the lower-cased line; the first rule in table order wins.
var DefaultHeaderRules = []HeaderRule{
	{Phrase: "positive scenario", Section: SectionPositiveScenario},
	{Phrase: "negative scenarios", Section: SectionNegativeScenarios},
	{Phrase: "validation criteria", Section: SectionValidationCriteria},
	{Phrase: "test data requirements", Section: SectionTestData},
	{Phrase: "edge cases", Section: SectionEdgeCases},
	{Phrase: "compliance references", Section: SectionComplianceReferences},
}

// matchHeader returns the section whose phrase occurs in line, if any.
func matchHeader(rules []HeaderRule, line string) (SectionKey, bool) {
	lower := strings.ToLower(line)
	for _, r := range rules {
		if strings.Contains(lower, r.Phrase) {
			return r.Section, true
		}
	}
	return "", false
}

// listItem reports whether trimmed starts with a list marker and returns the
// item text with the marker removed. Numbered markers are a run of digits
// followed by '.'; bullets are "- " and "*".
func listItem(trimmed string) (string, bool) {
	switch {
	case strings.HasPrefix(trimmed, "- "):
		return strings.TrimSpace(trimmed[2:]), true
	case strings.HasPrefix(trimmed, "*"):
		return strings.TrimSpace(strings.TrimPrefix(trimmed, "*")), true
	}

	digits := 0
	for digits < len(trimmed) && trimmed[digits] >= '0' && trimmed[digits] <= '9' {
		digits++
	}
	if digits == 0 || digits >= len(trimmed) || trimmed[digits] != '.' {
		return "", false
	}
	// Only the "N." marker is dropped; a later ". " is part of the item.
	return strings.TrimSpace(trimmed[digits+1:]), true
}

// appendTo adds item to the section list named by key.
func appendTo(s *usecase.Sections, key SectionKey, item string) {
	switch key {
	case SectionPositiveScenario:
		s.PositiveScenario = append(s.PositiveScenario, item)
	case SectionNegativeScenarios:
		s.NegativeScenarios = append(s.NegativeScenarios, item)
	case SectionValidationCriteria:
		s.ValidationCriteria = append(s.ValidationCriteria, item)
	case SectionTestData:
		s.TestData = append(s.TestData, item)
	case SectionEdgeCases:
		s.EdgeCases = append(s.EdgeCases, item)
	case SectionComplianceReferences:
		s.ComplianceReferences = append(s.ComplianceReferences, item)
	}
}
