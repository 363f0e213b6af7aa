// Package perception talks to generative text backends. Every provider is
// reached through LLMClient; decorators add retries and usage tracing.
package perception

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// LLMClient defines the interface for generative backends.
type LLMClient interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}

// CompletionRequest is one chat-completion style call.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float64
	MaxTokens    int
}

// Completion is the backend's answer to a CompletionRequest.
type Completion struct {
	Text         string
	Model        string
	Provider     Provider
	InputTokens  int
	OutputTokens int
}

// Provider identifies a backend implementation.
type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderGemini Provider = "gemini"
)

var (
	// ErrAPIKeyMissing is returned when a client has no credentials.
	ErrAPIKeyMissing = errors.New("API key not configured")
	// ErrNoCompletion is returned when the backend answered without text.
	ErrNoCompletion = errors.New("no completion returned")
	// ErrMaxRetries wraps the last error once every attempt has failed.
	ErrMaxRetries = errors.New("max retries exceeded")
)

// APIError is a non-2xx response from a backend.
type APIError struct {
	Provider   Provider
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API request failed with status %d: %s", e.Provider, e.StatusCode, e.Body)
}

// Temporary reports whether the request may succeed if retried.
func (e *APIError) Temporary() bool {
	return e.StatusCode == http.StatusTooManyRequests ||
		e.StatusCode == http.StatusRequestTimeout ||
		e.StatusCode >= 500
}

// IsTemporary classifies err for the retry policy. Rate limits, server
// errors, network failures and per-attempt timeouts are temporary; caller
// cancellation and everything else are not.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var tmp interface{ Temporary() bool }
	if errors.As(err, &tmp) {
		return tmp.Temporary()
	}
	return false
}

// minRequestGap spaces consecutive calls from one client.
const minRequestGap = 100 * time.Millisecond
