// Package generator turns use cases into test-case records: it builds the
// prompt, calls the backend and hands the raw text to the parser.
package generator

import (
	"context"
	"fmt"
	"time"

	"finsec/internal/logging"
	"finsec/internal/parser"
	"finsec/internal/perception"
	"finsec/internal/prompt"
	"finsec/internal/usage"
	"finsec/internal/usecase"

	"go.uber.org/zap"
)

// Decoding defaults: low randomness, bounded output.
const (
	DefaultTemperature = 0.4
	DefaultMaxTokens   = 2000
)

// ProgressFunc is called after each batch item finishes, successfully or not.
type ProgressFunc func(done, total int)

// Generator orchestrates prompt building, the backend call and parsing.
// A Generator holds no results between calls and is safe for concurrent use.
type Generator struct {
	client      perception.LLMClient
	parser      *parser.Parser
	temperature float64
	maxTokens   int
	concurrency int
	itemTimeout time.Duration
	now         func() time.Time
	progress    ProgressFunc
	logger      *zap.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(g *Generator) { g.temperature = t }
}

// WithMaxTokens bounds the completion length.
func WithMaxTokens(n int) Option {
	return func(g *Generator) { g.maxTokens = n }
}

// WithConcurrency bounds parallel backend calls in GenerateBatch.
// Values below 2 keep the batch sequential.
func WithConcurrency(n int) Option {
	return func(g *Generator) { g.concurrency = n }
}

// WithItemTimeout bounds each Generate call, retries included. Zero disables it.
func WithItemTimeout(d time.Duration) Option {
	return func(g *Generator) { g.itemTimeout = d }
}

// WithClock overrides the batch annotation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithProgress registers a batch progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(g *Generator) { g.progress = fn }
}

// WithParser replaces the default response parser.
func WithParser(p *parser.Parser) Option {
	return func(g *Generator) { g.parser = p }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New creates a Generator calling client.
func New(client perception.LLMClient, opts ...Option) *Generator {
	g := &Generator{
		client:      client,
		temperature: DefaultTemperature,
		maxTokens:   DefaultMaxTokens,
		concurrency: 1,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.parser == nil {
		g.parser = parser.New()
	}
	if g.logger == nil {
		g.logger = logging.Get(logging.CategoryGenerator)
	}
	return g
}

// Generate produces one record for uc. A use case without use_case text
// fails before the backend is called.
func (g *Generator) Generate(ctx context.Context, uc usecase.UseCase) (usecase.TestCaseRecord, error) {
	if err := uc.Validate(); err != nil {
		return usecase.TestCaseRecord{}, err
	}

	payload, err := prompt.Build(uc)
	if err != nil {
		return usecase.TestCaseRecord{}, err
	}

	if g.itemTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.itemTimeout)
		defer cancel()
	}
	if usage.CategoryFromContext(ctx) == "" {
		ctx = usage.WithCategory(ctx, uc.CategoryOrDefault())
	}

	start := time.Now()
	out, err := g.client.Complete(ctx, perception.CompletionRequest{
		SystemPrompt: payload.System,
		UserPrompt:   payload.User,
		Temperature:  g.temperature,
		MaxTokens:    g.maxTokens,
	})
	if err != nil {
		return usecase.TestCaseRecord{}, fmt.Errorf("backend call failed: %w", err)
	}

	rec, err := g.parser.Parse(out.Text, uc)
	if err != nil {
		return usecase.TestCaseRecord{}, err
	}

	g.logger.Debug("generated test case",
		zap.String("test_id", rec.TestID),
		zap.String("category", uc.CategoryOrDefault()),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("negative_scenarios", len(rec.NegativeScenarios)))
	return rec, nil
}
