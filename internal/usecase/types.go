// Package usecase defines the input descriptors fed to the generation pipeline
// and the structured test-case records it produces.
package usecase

import (
	"errors"
	"strings"
	"time"
)

// Risk is the risk level attached to a use case.
type Risk string

const (
	RiskLow    Risk = "Low"
	RiskMedium Risk = "Medium"
	RiskHigh   Risk = "High"
)

// Defaults applied when a use case leaves category or risk unset.
const (
	DefaultCategory      = "Compliance"
	DefaultRisk     Risk = RiskHigh
)

// ErrMissingUseCase is returned when a descriptor has no use_case text.
var ErrMissingUseCase = errors.New("use case: missing required use_case field")

// ParseRisk maps a case-insensitive risk name onto a Risk.
func ParseRisk(s string) (Risk, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return RiskLow, true
	case "medium":
		return RiskMedium, true
	case "high":
		return RiskHigh, true
	}
	return "", false
}

// UseCase is an abstract financial-compliance scenario requiring test coverage.
// Values are treated as immutable once handed to the pipeline.
type UseCase struct {
	UseCase  string `json:"use_case" yaml:"use_case"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
	Risk     Risk   `json:"risk,omitempty" yaml:"risk,omitempty"`
	Scenario string `json:"scenario,omitempty" yaml:"scenario,omitempty"`
}

// Validate reports ErrMissingUseCase when the required description is blank.
func (u UseCase) Validate() error {
	if strings.TrimSpace(u.UseCase) == "" {
		return ErrMissingUseCase
	}
	return nil
}

// CategoryOrDefault returns the category, or DefaultCategory when unset.
func (u UseCase) CategoryOrDefault() string {
	if strings.TrimSpace(u.Category) == "" {
		return DefaultCategory
	}
	return u.Category
}

// RiskOrDefault returns the risk level, or DefaultRisk when unset.
func (u UseCase) RiskOrDefault() Risk {
	if strings.TrimSpace(string(u.Risk)) == "" {
		return DefaultRisk
	}
	if r, ok := ParseRisk(string(u.Risk)); ok {
		return r
	}
	return u.Risk
}

// Sections holds the six extracted content lists. Every list is non-nil.
type Sections struct {
	PositiveScenario     []string `json:"positive_scenario"`
	NegativeScenarios    []string `json:"negative_scenarios"`
	ValidationCriteria   []string `json:"validation_criteria"`
	TestData             []string `json:"test_data"`
	EdgeCases            []string `json:"edge_cases"`
	ComplianceReferences []string `json:"compliance_references"`
}

// NewSections returns Sections with every list initialized empty.
func NewSections() Sections {
	return Sections{
		PositiveScenario:     []string{},
		NegativeScenarios:    []string{},
		ValidationCriteria:   []string{},
		TestData:             []string{},
		EdgeCases:            []string{},
		ComplianceReferences: []string{},
	}
}

// TestCaseRecord is the structured output for one use case: the original
// descriptor fields, the extracted sections and generation metadata.
type TestCaseRecord struct {
	UseCase
	Sections

	// RiskLevel is set by batch generation from the descriptor's risk.
	RiskLevel   Risk      `json:"risk_level,omitempty"`
	TestID      string    `json:"test_id"`
	Hash        string    `json:"hash"`
	LastUpdated time.Time `json:"last_updated"`
}
