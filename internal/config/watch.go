package config

import "time"

// WatchConfig configures use-case source file monitoring.
type WatchConfig struct {
	ConfigPath string `yaml:"config_path"`
	Debounce   string `yaml:"debounce"`
}

// ContextSource is one external resource checked for content drift.
// URL is optional; sources without one are skipped by the HTTP fetcher.
type ContextSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url,omitempty"`
}

// ContextSourceGroup groups sources by category, e.g. regulatory_feeds.
type ContextSourceGroup struct {
	Category string          `yaml:"category"`
	Sources  []ContextSource `yaml:"sources"`
}

// DefaultContextSources returns the built-in regulatory and system sources.
func DefaultContextSources() []ContextSourceGroup {
	return []ContextSourceGroup{
		{
			Category: "regulatory_feeds",
			Sources: []ContextSource{
				{Name: "OFAC_API_ENDPOINT"},
				{Name: "FCA_REGULATIONS"},
			},
		},
		{
			Category: "system_apis",
			Sources: []ContextSource{
				{Name: "PAYMENT_API_SWAGGER"},
				{Name: "RISK_MODEL_VERSION"},
			},
		},
	}
}

// GetDebounce returns the settle window for file events.
func (c *Config) GetDebounce() time.Duration {
	return parseDuration(c.Watch.Debounce, 500*time.Millisecond)
}
