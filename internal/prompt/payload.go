// Package prompt turns a use-case descriptor into the instruction payload sent
// to the generative backend. Building a payload never calls the backend.
package prompt

import (
	"fmt"
	"strings"

	"finsec/internal/usecase"
)

// SystemInstruction frames the backend as a financial-systems testing expert.
const SystemInstruction = `You are a financial systems testing expert with 15 years experience in banking.
Consider: SWIFT message formats, ISO 20022 standards, Basel III requirements, and real-world fraud patterns.`

// Payload is the complete instruction pair for one use case.
type Payload struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// userTemplate takes category, use case description and risk level, in that order.
const userTemplate = `As a senior financial QA architect, generate comprehensive test cases for banking systems. Follow this structure:

[REQUIRED FORMAT]
### Financial Domain: %s
### Use Case: %s
### Risk Level: %s

**Positive Scenario**:
1. [Valid transaction details]
2. [System should process correctly]
3. [Expected successful outcome]

**Negative Scenarios**:
- [Fraudulent transaction pattern]
- [Regulatory violation attempt]
- [Edge case exploitation]

**Validation Criteria**:
- [Compliance check] (e.g., OFAC, AML)
- [Fraud detection logic]
- [System performance metrics] (response time < 500ms)

**Test Data Requirements**:
- [Specific transaction amounts]
- [Currency combinations]
- [High-risk jurisdiction examples]

**Edge Cases**:
- [Time zone differences in transaction timing]
- [Partial name matches in sanctions lists]
- [Currency conversion rounding issues]

[EXAMPLES]
For Sanctions Checking:
- Positive: $9,999 transfer to non-sanctioned entity
- Negative: $10,001 transfer split across 2 transactions to sanctioned country
`

// Build returns the payload for uc. It fails with usecase.ErrMissingUseCase
// when the description is blank; category and risk fall back to their defaults.
func Build(uc usecase.UseCase) (Payload, error) {
	if err := uc.Validate(); err != nil {
		return Payload{}, err
	}

	user := fmt.Sprintf(userTemplate,
		uc.CategoryOrDefault(),
		strings.TrimSpace(uc.UseCase),
		uc.RiskOrDefault(),
	)
	return Payload{System: SystemInstruction, User: user}, nil
}
