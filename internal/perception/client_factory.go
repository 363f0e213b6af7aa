package perception

import (
	"context"
	"fmt"
	"os"
	"time"

	"finsec/internal/config"
	"finsec/internal/usage"
)

// ProviderConfig selects and configures one backend.
type ProviderConfig struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string // OpenAI-compatible endpoints only
	Timeout  time.Duration
}

// DetectProvider picks a backend from environment variables.
// GEMINI_API_KEY takes precedence over OPENAI_API_KEY.
func DetectProvider() (*ProviderConfig, error) {
	providers := []struct {
		envVar   string
		provider Provider
	}{
		{"GEMINI_API_KEY", ProviderGemini},
		{"OPENAI_API_KEY", ProviderOpenAI},
	}

	for _, p := range providers {
		if key := os.Getenv(p.envVar); key != "" {
			return &ProviderConfig{
				Provider: p.provider,
				APIKey:   key,
			}, nil
		}
	}

	return nil, fmt.Errorf("no API key found; set one of: GEMINI_API_KEY, OPENAI_API_KEY")
}

// NewClient creates a bare provider client without retries or tracing.
func NewClient(ctx context.Context, pc *ProviderConfig) (LLMClient, error) {
	switch pc.Provider {
	case ProviderOpenAI:
		oc := DefaultOpenAIConfig(pc.APIKey)
		if pc.BaseURL != "" {
			oc.BaseURL = pc.BaseURL
		}
		if pc.Model != "" {
			oc.Model = pc.Model
		}
		if pc.Timeout > 0 {
			oc.Timeout = pc.Timeout
		}
		if oc.APIKey == "" {
			return nil, ErrAPIKeyMissing
		}
		return NewOpenAIClientWithConfig(oc), nil

	case ProviderGemini:
		gc := DefaultGeminiConfig(pc.APIKey)
		if pc.Model != "" {
			gc.Model = pc.Model
		}
		if pc.Timeout > 0 {
			gc.Timeout = pc.Timeout
		}
		return NewGeminiClientWithConfig(ctx, gc)

	default:
		return nil, fmt.Errorf("unknown provider: %s", pc.Provider)
	}
}

// NewClientFromConfig builds the full client stack for cfg: the provider
// client, a tracing layer that records each attempt into tracker, and the
// retry policy from the generation settings.
func NewClientFromConfig(ctx context.Context, cfg *config.Config, tracker *usage.Tracker) (LLMClient, error) {
	llm := cfg.LLM
	if llm.APIKey == "" {
		detected, err := DetectProvider()
		if err != nil {
			return nil, err
		}
		llm.APIKey = detected.APIKey
		llm.SwitchProvider(string(detected.Provider))
	}

	pc := &ProviderConfig{
		Provider: Provider(llm.Provider),
		APIKey:   llm.APIKey,
		Model:    llm.Model,
		Timeout:  cfg.GetLLMTimeout(),
	}
	if pc.Provider == ProviderOpenAI {
		pc.BaseURL = llm.BaseURL
	}

	base, err := NewClient(ctx, pc)
	if err != nil {
		return nil, err
	}

	traced := NewTracingClient(base, tracker, pc.Provider, pc.Model)
	return NewRetryClient(traced, RetryPolicy{
		MaxAttempts:    cfg.Generation.MaxAttempts,
		InitialBackoff: cfg.GetInitialBackoff(),
		MaxBackoff:     cfg.GetMaxBackoff(),
	}), nil
}
