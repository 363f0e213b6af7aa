package config

import (
	"fmt"
	"time"
)

// Supported backend providers.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Default models per provider.
const (
	DefaultOpenAIModel = "gpt-4-turbo"
	DefaultGeminiModel = "gemini-2.5-flash"
)

// ValidProviders lists all supported backend providers.
var ValidProviders = []string{ProviderOpenAI, ProviderGemini}

// DefaultModel returns the default model for provider, or "" if unknown.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return DefaultOpenAIModel
	case ProviderGemini:
		return DefaultGeminiModel
	}
	return ""
}

// SwitchProvider sets the provider. A model that is empty or still another
// provider's default is replaced with the new provider's default; an
// explicitly chosen model is kept.
func (l *LLMConfig) SwitchProvider(provider string) {
	if l.Provider != provider {
		for _, p := range ValidProviders {
			if p != provider && l.Model == DefaultModel(p) {
				l.Model = ""
			}
		}
	}
	l.Provider = provider
	if l.Model == "" {
		l.Model = DefaultModel(provider)
	}
}

// LLMConfig configures the generative backend.
type LLMConfig struct {
	Provider string `yaml:"provider"` // openai, gemini
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
	BaseURL  string `yaml:"base_url"` // OpenAI-compatible endpoints only
	Timeout  string `yaml:"timeout"`
}

// Validate checks that a provider and key are configured.
func (l LLMConfig) Validate() error {
	if l.APIKey == "" {
		return fmt.Errorf("LLM API key not configured (set OPENAI_API_KEY or GEMINI_API_KEY)")
	}
	for _, p := range ValidProviders {
		if l.Provider == p {
			return nil
		}
	}
	return fmt.Errorf("invalid LLM provider: %s (valid: %v)", l.Provider, ValidProviders)
}

// GetLLMTimeout returns the HTTP timeout for backend calls.
func (c *Config) GetLLMTimeout() time.Duration {
	return parseDuration(c.LLM.Timeout, 120*time.Second)
}

// parseDuration parses s, falling back to def on empty or invalid input.
func parseDuration(s string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
