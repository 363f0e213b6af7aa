package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file looked up when --config is not given.
const DefaultConfigFile = "finsec.yaml"

// Config holds all finsec configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Generative backend
	LLM LLMConfig `yaml:"llm"`

	// Prompt decoding, retry and batch settings
	Generation GenerationConfig `yaml:"generation"`

	// Use-case source file watching
	Watch WatchConfig `yaml:"watch"`

	// External context sources checked for drift
	ContextSources []ContextSourceGroup `yaml:"context_sources"`

	// Export artifacts
	Output OutputConfig `yaml:"output"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// OutputConfig configures where exports are written.
type OutputConfig struct {
	Dir       string `yaml:"dir"`
	SaveUsage bool   `yaml:"save_usage"`
	PerCase   bool   `yaml:"per_case"`
	SuiteFile string `yaml:"suite_file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "finsec",
		Version: "0.3.0",

		LLM: LLMConfig{
			Provider: ProviderOpenAI,
			Model:    DefaultOpenAIModel,
			BaseURL:  "https://api.openai.com/v1",
			Timeout:  "120s",
		},

		Generation: GenerationConfig{
			Temperature:    0.4,
			MaxTokens:      2000,
			Concurrency:    1,
			MaxAttempts:    3,
			InitialBackoff: "1s",
			MaxBackoff:     "8s",
			ItemTimeout:    "120s",
		},

		Watch: WatchConfig{
			ConfigPath: filepath.Join("config", "current_config.json"),
			Debounce:   "500ms",
		},

		ContextSources: DefaultContextSources(),

		Output: OutputConfig{
			Dir:       "output",
			SaveUsage: true,
			PerCase:   true,
			SuiteFile: "full_test_suite.json",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Defaults plus environment when no config file exists
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	// Backend API key from environment (later entries win)
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.SwitchProvider(ProviderOpenAI)
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.LLM.APIKey = key
		c.LLM.SwitchProvider(ProviderGemini)
	}
	if model := os.Getenv("FINSEC_MODEL"); model != "" {
		c.LLM.Model = model
	}

	if path := os.Getenv("FINSEC_CONFIG_PATH"); path != "" {
		c.Watch.ConfigPath = path
	}
	if dir := os.Getenv("FINSEC_OUTPUT_DIR"); dir != "" {
		c.Output.Dir = dir
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	if c.Watch.ConfigPath == "" {
		return fmt.Errorf("watch.config_path must be set")
	}
	return nil
}
