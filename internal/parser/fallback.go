package parser

import (
	"fmt"
	"strings"

	"finsec/internal/usecase"
)

// ReportingThreshold is the transaction amount cited by the threshold-evasion
// fallback scenario.
const ReportingThreshold = "$9,999"

// FallbackNegativeScenarios returns the three negative scenarios used when the
// backend output has none: beneficiary tampering on the use case's scenario,
// a just-below-threshold transaction, and mixed-currency evasion.
func FallbackNegativeScenarios(uc usecase.UseCase) []string {
	subject := strings.TrimSpace(uc.Scenario)
	if subject == "" {
		subject = strings.TrimSpace(uc.UseCase)
	}
	return []string{
		fmt.Sprintf("Attempt %s with modified beneficiary details", subject),
		fmt.Sprintf("Test transaction just below reporting threshold (%s)", ReportingThreshold),
		"Use mixed currency amounts to bypass detection",
	}
}
