package perception

import (
	"context"
	"time"

	"finsec/internal/logging"
	"finsec/internal/usage"

	"go.uber.org/zap"
)

// TracingClient wraps any LLMClient, logs every call and records it in a
// usage tracker. When wrapped by a RetryClient each attempt is recorded.
type TracingClient struct {
	underlying LLMClient
	tracker    *usage.Tracker
	provider   Provider
	model      string
}

// NewTracingClient creates a tracing wrapper. tracker may be nil, in which
// case the tracker carried by the call context (if any) is used.
func NewTracingClient(underlying LLMClient, tracker *usage.Tracker, provider Provider, model string) *TracingClient {
	return &TracingClient{
		underlying: underlying,
		tracker:    tracker,
		provider:   provider,
		model:      model,
	}
}

// Complete implements LLMClient.Complete with tracing.
func (tc *TracingClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	log := logging.Get(logging.CategoryAPI)
	category := usage.CategoryFromContext(ctx)

	start := time.Now()
	log.Debug("backend call started",
		zap.String("provider", string(tc.provider)),
		zap.String("category", category),
		zap.Int("prompt_len", len(req.UserPrompt)))

	out, err := tc.underlying.Complete(ctx, req)

	duration := time.Since(start)
	if err != nil {
		log.Warn("backend call failed",
			zap.String("provider", string(tc.provider)),
			zap.Duration("duration", duration),
			zap.Bool("temporary", IsTemporary(err)),
			zap.Error(err))
	} else {
		log.Debug("backend call completed",
			zap.String("provider", string(tc.provider)),
			zap.Duration("duration", duration),
			zap.Int("response_len", len(out.Text)),
			zap.Int("input_tokens", out.InputTokens),
			zap.Int("output_tokens", out.OutputTokens))
	}

	tracker := tc.tracker
	if tracker == nil {
		tracker = usage.FromContext(ctx)
	}
	if tracker != nil {
		model := out.Model
		if model == "" {
			model = tc.model
		}
		tracker.Track(ctx, usage.UsageEvent{
			Provider:     string(tc.provider),
			Model:        model,
			InputTokens:  out.InputTokens,
			OutputTokens: out.OutputTokens,
			Duration:     duration,
			Failed:       err != nil,
		})
	}

	return out, err
}

// Unwrap returns the wrapped client.
func (tc *TracingClient) Unwrap() LLMClient {
	return tc.underlying
}
