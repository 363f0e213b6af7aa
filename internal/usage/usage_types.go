package usage

import "time"

// UsageData represents the root structure written by Save.
type UsageData struct {
	Version   string          `json:"version"`
	StartedAt time.Time       `json:"started_at"`
	Aggregate AggregatedStats `json:"aggregate"`
}

// UsageEvent represents a single backend call.
type UsageEvent struct {
	Provider     string
	Model        string
	InputTokens  int
	OutputTokens int
	Duration     time.Duration
	Failed       bool
}

// AggregatedStats holds counters broken down by various dimensions.
type AggregatedStats struct {
	Total      CallCounts            `json:"total"`
	ByProvider map[string]CallCounts `json:"by_provider"`
	ByModel    map[string]CallCounts `json:"by_model"`
	ByCategory map[string]CallCounts `json:"by_category"` // use-case category
}

// CallCounts holds call, failure and token sums.
type CallCounts struct {
	Calls      int64 `json:"calls"`
	Failures   int64 `json:"failures"`
	Input      int64 `json:"input_tokens"`
	Output     int64 `json:"output_tokens"`
	DurationMs int64 `json:"duration_ms"`
}

// Add folds one event into the counts.
func (cc *CallCounts) Add(ev UsageEvent) {
	cc.Calls++
	if ev.Failed {
		cc.Failures++
	}
	cc.Input += int64(ev.InputTokens)
	cc.Output += int64(ev.OutputTokens)
	cc.DurationMs += ev.Duration.Milliseconds()
}
