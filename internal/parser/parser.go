// Package parser extracts structured test-case sections from free-form
// backend output.
//
// Parsing favours precision over recall: only lines that follow a recognized
// section header and begin with a list marker are kept. Anything else is
// dropped rather than guessed at. Parse never fails on the text itself; the
// only error is a descriptor without use_case text.
package parser

import (
	"strings"
	"time"

	"finsec/internal/digest"
	"finsec/internal/logging"
	"finsec/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TestIDPrefix prefixes every generated test identifier.
const TestIDPrefix = "FINSEC-"

// Parser maps raw backend text plus the originating use case onto a record.
type Parser struct {
	rules  []HeaderRule
	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithIDGenerator overrides test_id generation.
func WithIDGenerator(fn func() string) Option {
	return func(p *Parser) { p.newID = fn }
}

// WithHeaderRules replaces the header table.
func WithHeaderRules(rules []HeaderRule) Option {
	return func(p *Parser) { p.rules = rules }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) { p.logger = l }
}

// New returns a Parser using DefaultHeaderRules.
func New(opts ...Option) *Parser {
	p := &Parser{
		rules: DefaultHeaderRules,
		now:   time.Now,
		newID: NewTestID,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logging.Get(logging.CategoryParser)
	}
	return p
}

// NewTestID returns "FINSEC-" followed by 8 lowercase hex characters taken
// from a random UUID. Uniqueness is probabilistic.
func NewTestID() string {
	return TestIDPrefix + uuid.New().String()[:8]
}

// Parse builds a TestCaseRecord from raw. It returns usecase.ErrMissingUseCase
// when uc has no description; otherwise it always succeeds.
func (p *Parser) Parse(raw string, uc usecase.UseCase) (usecase.TestCaseRecord, error) {
	if err := uc.Validate(); err != nil {
		return usecase.TestCaseRecord{}, err
	}

	sections := p.Sections(raw)
	if len(sections.NegativeScenarios) == 0 {
		sections.NegativeScenarios = FallbackNegativeScenarios(uc)
		p.logger.Debug("negative scenarios missing, using fallback",
			zap.String("use_case", uc.UseCase))
	}

	return usecase.TestCaseRecord{
		UseCase:     uc,
		Sections:    sections,
		TestID:      p.newID(),
		Hash:        digest.String(raw),
		LastUpdated: p.now(),
	}, nil
}

// Sections scans raw line by line and collects list items under the most
// recent header. No fallback is applied.
func (p *Parser) Sections(raw string) usecase.Sections {
	sections := usecase.NewSections()

	var current SectionKey
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if key, ok := matchHeader(p.rules, line); ok {
			current = key
			continue
		}
		if current == "" {
			continue
		}

		item, ok := listItem(line)
		if !ok || item == "" {
			continue
		}
		appendTo(&sections, current, item)
	}
	return sections
}
