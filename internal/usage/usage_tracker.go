// Package usage keeps an in-memory ledger of backend calls for a run and can
// write it next to the exported suite.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"finsec/internal/logging"

	"go.uber.org/zap"
)

type contextKey struct{}

type categoryKey struct{}

// Tracker records backend usage. It is safe for concurrent use.
type Tracker struct {
	mu   sync.Mutex
	data UsageData
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		data: UsageData{
			Version:   "1.0",
			StartedAt: time.Now().UTC(),
			Aggregate: AggregatedStats{
				ByProvider: make(map[string]CallCounts),
				ByModel:    make(map[string]CallCounts),
				ByCategory: make(map[string]CallCounts),
			},
		},
	}
}

// Track records a backend call. The use-case category is read from ctx.
func (t *Tracker) Track(ctx context.Context, ev UsageEvent) {
	category := CategoryFromContext(ctx)
	if category == "" {
		category = "unknown"
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	t.data.Aggregate.Total.Add(ev)
	addToMap(t.data.Aggregate.ByProvider, ev.Provider, ev)
	addToMap(t.data.Aggregate.ByModel, ev.Model, ev)
	addToMap(t.data.Aggregate.ByCategory, category, ev)
}

// Stats returns a copy of the aggregated stats.
func (t *Tracker) Stats() AggregatedStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	stats := t.data.Aggregate
	stats.ByProvider = copyCountsMap(stats.ByProvider)
	stats.ByModel = copyCountsMap(stats.ByModel)
	stats.ByCategory = copyCountsMap(stats.ByCategory)
	return stats
}

// Save writes the ledger as indented JSON to path.
func (t *Tracker) Save(path string) error {
	t.mu.Lock()
	data, err := json.MarshalIndent(t.data, "", "  ")
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to marshal usage: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create usage dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write usage: %w", err)
	}
	logging.Get(logging.CategoryUsage).Debug("usage ledger saved", zap.String("path", path))
	return nil
}

func copyCountsMap(src map[string]CallCounts) map[string]CallCounts {
	if src == nil {
		return nil
	}
	dst := make(map[string]CallCounts, len(src))
	for key, counts := range src {
		dst[key] = counts
	}
	return dst
}

func addToMap(m map[string]CallCounts, key string, ev UsageEvent) {
	entry := m[key]
	entry.Add(ev)
	m[key] = entry
}

// Context Helpers

// NewContext returns a new context carrying the tracker.
func NewContext(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext retrieves the tracker from the context.
func FromContext(ctx context.Context) *Tracker {
	t, _ := ctx.Value(contextKey{}).(*Tracker)
	return t
}

// WithCategory tags ctx with the use-case category being generated.
func WithCategory(ctx context.Context, category string) context.Context {
	return context.WithValue(ctx, categoryKey{}, category)
}

// CategoryFromContext returns the category set by WithCategory.
func CategoryFromContext(ctx context.Context) string {
	c, _ := ctx.Value(categoryKey{}).(string)
	return c
}
