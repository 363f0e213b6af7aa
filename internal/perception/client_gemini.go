package perception

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"finsec/internal/logging"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiConfig holds configuration for Gemini client.
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
}

// DefaultGeminiConfig returns sensible defaults.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:  apiKey,
		Model:   "gemini-2.5-flash",
		Timeout: 120 * time.Second,
	}
}

// contentGenerator is the slice of genai.Models used by GeminiClient.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiClient implements LLMClient using Google's GenAI SDK.
type GeminiClient struct {
	models  contentGenerator
	model   string
	timeout time.Duration
}

// NewGeminiClient creates a Gemini client with default config.
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	return NewGeminiClientWithConfig(ctx, DefaultGeminiConfig(apiKey))
}

// NewGeminiClientWithConfig creates a Gemini client with custom config.
func NewGeminiClientWithConfig(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = DefaultGeminiConfig("").Model
	}
	return &GeminiClient{
		models:  client.Models,
		model:   model,
		timeout: config.Timeout,
	}, nil
}

// Complete generates one completion with the request's system instruction,
// temperature and output bound.
func (c *GeminiClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	log := logging.Get(logging.CategoryAPI)

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(req.Temperature)),
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	startTime := time.Now()
	log.Debug("gemini request",
		zap.String("model", c.model),
		zap.Int("system_len", len(req.SystemPrompt)),
		zap.Int("user_len", len(req.UserPrompt)))

	resp, err := c.models.GenerateContent(ctx, c.model, genai.Text(req.UserPrompt), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return Completion{}, &APIError{Provider: ProviderGemini, StatusCode: apiErr.Code, Body: apiErr.Message}
		}
		return Completion{}, fmt.Errorf("GenAI generate failed: %w", err)
	}
	if resp == nil {
		return Completion{}, ErrNoCompletion
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Completion{}, ErrNoCompletion
	}
	log.Debug("gemini response",
		zap.Duration("elapsed", time.Since(startTime)),
		zap.Int("response_len", len(text)))

	out := Completion{Text: text, Model: c.model, Provider: ProviderGemini}
	if resp.UsageMetadata != nil {
		out.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		out.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return out, nil
}

// GetModel returns the current model.
func (c *GeminiClient) GetModel() string {
	return c.model
}
