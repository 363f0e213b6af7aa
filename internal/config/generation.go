package config

import (
	"fmt"
	"time"
)

// GenerationConfig holds decoding parameters, retry policy and batch limits.
type GenerationConfig struct {
	Temperature float64 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	// Concurrency bounds parallel backend calls in a batch; 1 is sequential.
	Concurrency int `yaml:"concurrency"`

	// MaxAttempts counts the first call; 1 disables retries.
	MaxAttempts    int    `yaml:"max_attempts"`
	InitialBackoff string `yaml:"initial_backoff"`
	MaxBackoff     string `yaml:"max_backoff"`

	// ItemTimeout bounds one use case including retries.
	ItemTimeout string `yaml:"item_timeout"`
}

// Validate checks generation limits.
func (g GenerationConfig) Validate() error {
	if g.Temperature < 0 || g.Temperature > 2 {
		return fmt.Errorf("generation.temperature must be within [0, 2], got %v", g.Temperature)
	}
	if g.MaxTokens < 1 {
		return fmt.Errorf("generation.max_tokens must be >= 1")
	}
	if g.Concurrency < 1 {
		return fmt.Errorf("generation.concurrency must be >= 1")
	}
	if g.MaxAttempts < 1 {
		return fmt.Errorf("generation.max_attempts must be >= 1")
	}
	return nil
}

// GetInitialBackoff returns the delay before the first retry.
func (c *Config) GetInitialBackoff() time.Duration {
	return parseDuration(c.Generation.InitialBackoff, time.Second)
}

// GetMaxBackoff returns the retry delay cap.
func (c *Config) GetMaxBackoff() time.Duration {
	return parseDuration(c.Generation.MaxBackoff, 8*time.Second)
}

// GetItemTimeout returns the per-use-case deadline.
func (c *Config) GetItemTimeout() time.Duration {
	return parseDuration(c.Generation.ItemTimeout, 120*time.Second)
}
