package parser

import (
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"finsec/internal/digest"
	"finsec/internal/usecase"

	"github.com/google/go-cmp/cmp"
)

var fixedTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newTestParser() *Parser {
	return New(
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() string { return "FINSEC-00000000" }),
	)
}

var wireUseCase = usecase.UseCase{
	UseCase:  "Wire transfer sanctions screening",
	Risk:     usecase.RiskHigh,
	Scenario: "wire transfer to sanctioned entity",
}

const fullResponse = `### Financial Domain: Sanctions
### Use Case: Wire transfer sanctions screening

**Positive Scenario**:
1. Customer initiates a $5,000 wire to a vetted beneficiary
2. Screening returns no match
3. Transfer settles. Confirmation is sent

**Negative Scenarios**:
- Beneficiary name matches an SDN entry
- Transfer routed through an embargoed jurisdiction

**Validation Criteria**:
- OFAC screening invoked before release
* Alert raised within 500ms

**Test Data Requirements**:
- Amounts: $9,999 and $10,001

**Edge Cases**:
- Partial name match with diacritics

**Compliance References**:
- 31 CFR Part 501
`

func TestParse_ExtractsAllSections(t *testing.T) {
	rec, err := newTestParser().Parse(fullResponse, wireUseCase)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := usecase.Sections{
		PositiveScenario: []string{
			"Customer initiates a $5,000 wire to a vetted beneficiary",
			"Screening returns no match",
			"Transfer settles. Confirmation is sent",
		},
		NegativeScenarios: []string{
			"Beneficiary name matches an SDN entry",
			"Transfer routed through an embargoed jurisdiction",
		},
		ValidationCriteria: []string{
			"OFAC screening invoked before release",
			"Alert raised within 500ms",
		},
		TestData:             []string{"Amounts: $9,999 and $10,001"},
		EdgeCases:            []string{"Partial name match with diacritics"},
		ComplianceReferences: []string{"31 CFR Part 501"},
	}
	if diff := cmp.Diff(want, rec.Sections); diff != "" {
		t.Errorf("sections mismatch (-want +got):\n%s", diff)
	}

	if rec.UseCase != wireUseCase {
		t.Errorf("use case fields not carried over: %+v", rec.UseCase)
	}
	if rec.TestID != "FINSEC-00000000" {
		t.Errorf("TestID = %q", rec.TestID)
	}
	if rec.Hash != digest.String(fullResponse) {
		t.Errorf("Hash = %q, want digest of raw text", rec.Hash)
	}
	if !rec.LastUpdated.Equal(fixedTime) {
		t.Errorf("LastUpdated = %v, want %v", rec.LastUpdated, fixedTime)
	}
}

func TestParse_NegativeScenarioFallback(t *testing.T) {
	withoutNegatives := strings.Replace(fullResponse,
		"**Negative Scenarios**:\n- Beneficiary name matches an SDN entry\n- Transfer routed through an embargoed jurisdiction\n",
		"", 1)

	rec, err := newTestParser().Parse(withoutNegatives, wireUseCase)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []string{
		"Attempt wire transfer to sanctioned entity with modified beneficiary details",
		"Test transaction just below reporting threshold ($9,999)",
		"Use mixed currency amounts to bypass detection",
	}
	if diff := cmp.Diff(want, rec.NegativeScenarios); diff != "" {
		t.Errorf("fallback mismatch (-want +got):\n%s", diff)
	}
	// Only negative scenarios have a fallback.
	if len(rec.PositiveScenario) != 3 {
		t.Errorf("positive scenario should still be parsed, got %v", rec.PositiveScenario)
	}
}

func TestParse_EmptyNegativeSectionTriggersFallback(t *testing.T) {
	raw := "Negative Scenarios:\nNothing to report here.\n"
	rec, err := newTestParser().Parse(raw, wireUseCase)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(rec.NegativeScenarios) != 3 {
		t.Fatalf("NegativeScenarios = %v, want 3 fallback entries", rec.NegativeScenarios)
	}
}

func TestParse_NoHeaders(t *testing.T) {
	for _, raw := range []string{"", "just some prose", "- a bullet with no header\n1. numbered"} {
		rec, err := newTestParser().Parse(raw, wireUseCase)
		if err != nil {
			t.Fatalf("Parse(%q): %v", raw, err)
		}
		s := rec.Sections
		for name, list := range map[string][]string{
			"positive":   s.PositiveScenario,
			"validation": s.ValidationCriteria,
			"test data":  s.TestData,
			"edge":       s.EdgeCases,
			"compliance": s.ComplianceReferences,
		} {
			if list == nil || len(list) != 0 {
				t.Errorf("Parse(%q): %s section = %#v, want empty non-nil", raw, name, list)
			}
		}
		if len(s.NegativeScenarios) != 3 {
			t.Errorf("Parse(%q): want fallback negatives, got %v", raw, s.NegativeScenarios)
		}
	}
}

func TestParse_IgnoresUnmarkedLinesInSection(t *testing.T) {
	raw := "Edge Cases\nLeap-day settlement\n+ plus-prefixed item\n- Midnight cutover\n"
	s := newTestParser().Sections(raw)
	if diff := cmp.Diff([]string{"Midnight cutover"}, s.EdgeCases); diff != "" {
		t.Errorf("edge cases mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_HeaderFirstMatchWins(t *testing.T) {
	// Both "negative scenarios" and "edge cases" occur; table order picks negative.
	raw := "Negative scenarios and edge cases\n- combined item\n"
	s := newTestParser().Sections(raw)
	if len(s.NegativeScenarios) != 1 || len(s.EdgeCases) != 0 {
		t.Errorf("got negatives=%v edges=%v", s.NegativeScenarios, s.EdgeCases)
	}
}

func TestParse_CRLFInput(t *testing.T) {
	raw := "Test Data Requirements:\r\n- EUR 1,000.00\r\n- GBP 0.01\r\n"
	s := newTestParser().Sections(raw)
	if diff := cmp.Diff([]string{"EUR 1,000.00", "GBP 0.01"}, s.TestData); diff != "" {
		t.Errorf("test data mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_MissingUseCase(t *testing.T) {
	_, err := newTestParser().Parse(fullResponse, usecase.UseCase{Scenario: "x"})
	if !errors.Is(err, usecase.ErrMissingUseCase) {
		t.Fatalf("Parse error = %v, want ErrMissingUseCase", err)
	}
}

func TestParse_HashDeterminism(t *testing.T) {
	p := New()
	a, _ := p.Parse(fullResponse, wireUseCase)
	b, _ := p.Parse(fullResponse, wireUseCase)
	c, _ := p.Parse(fullResponse+" ", wireUseCase)

	if a.Hash != b.Hash {
		t.Error("identical raw text produced different hashes")
	}
	if a.Hash == c.Hash {
		t.Error("different raw text produced identical hashes")
	}
	if a.TestID == b.TestID {
		t.Error("test ids should be freshly generated per parse")
	}
}

func TestNewTestID_Format(t *testing.T) {
	re := regexp.MustCompile(`^FINSEC-[0-9a-f]{8}$`)
	for i := 0; i < 50; i++ {
		if id := NewTestID(); !re.MatchString(id) {
			t.Fatalf("NewTestID() = %q, want FINSEC-<8 hex>", id)
		}
	}
}

func TestListItem(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"1. First step", "First step", true},
		{"2. Second. With period", "Second. With period", true},
		{"10. Tenth", "Tenth", true},
		{"3.No space", "No space", true},
		{"- Dash bullet", "Dash bullet", true},
		{"* Star bullet", "Star bullet", true},
		{"- Transfer settles. Confirmation is sent", "Transfer settles. Confirmation is sent", true},
		{"* Hold placed. Analyst notified", "Hold placed. Analyst notified", true},
		{"**Bold item**", "*Bold item**", true},
		{"-no space", "", false},
		{"Plain text", "", false},
		{"1", "", false},
		{"12", "", false},
		{"v1. version", "", false},
	}
	for _, tt := range tests {
		got, ok := listItem(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("listItem(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestSections_CustomHeaderRules(t *testing.T) {
	p := New(WithHeaderRules([]HeaderRule{
		{Phrase: "risks", Section: SectionEdgeCases},
		{Phrase: "controls", Section: SectionValidationCriteria},
	}))

	got := p.Sections(`**Risks**:
- Duplicate settlement
**Positive Scenario**:
- Stays under risks
**Controls**:
1. Dual approval
`)

	if diff := cmp.Diff([]string{"Duplicate settlement", "Stays under risks"}, got.EdgeCases); diff != "" {
		t.Errorf("edge cases mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Dual approval"}, got.ValidationCriteria); diff != "" {
		t.Errorf("validation criteria mismatch (-want +got):\n%s", diff)
	}
	if len(got.PositiveScenario) != 0 {
		t.Errorf("default header matched with a custom table: %v", got.PositiveScenario)
	}
}
