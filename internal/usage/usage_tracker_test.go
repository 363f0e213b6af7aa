package usage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func TestTracker_TrackAggregates(t *testing.T) {
	tracker := NewTracker()

	ctx := WithCategory(context.Background(), "Sanctions")
	tracker.Track(ctx, UsageEvent{Provider: "openai", Model: "gpt-4-turbo", InputTokens: 10, OutputTokens: 5, Duration: 20 * time.Millisecond})
	tracker.Track(ctx, UsageEvent{Provider: "openai", Model: "gpt-4-turbo", InputTokens: 2, OutputTokens: 3, Failed: true})
	tracker.Track(context.Background(), UsageEvent{Provider: "gemini", Model: "gemini-2.5-flash", InputTokens: 1, OutputTokens: 1})

	stats := tracker.Stats()
	if stats.Total.Calls != 3 || stats.Total.Failures != 1 || stats.Total.Input != 13 || stats.Total.Output != 9 {
		t.Fatalf("Total=%+v, want calls=3 failures=1 input=13 output=9", stats.Total)
	}
	if got := stats.ByProvider["openai"]; got.Calls != 2 || got.DurationMs != 20 {
		t.Fatalf("ByProvider[openai]=%+v", got)
	}
	if got := stats.ByModel["gemini-2.5-flash"]; got.Calls != 1 {
		t.Fatalf("ByModel[gemini-2.5-flash]=%+v", got)
	}
	if got := stats.ByCategory["Sanctions"]; got.Calls != 2 {
		t.Fatalf("ByCategory[Sanctions]=%+v", got)
	}
	if got := stats.ByCategory["unknown"]; got.Calls != 1 {
		t.Fatalf("ByCategory[unknown]=%+v", got)
	}
}

func TestTracker_StatsIsACopy(t *testing.T) {
	tracker := NewTracker()
	tracker.Track(context.Background(), UsageEvent{Provider: "openai"})

	stats := tracker.Stats()
	stats.ByProvider["openai"] = CallCounts{Calls: 99}

	if got := tracker.Stats().ByProvider["openai"].Calls; got != 1 {
		t.Fatalf("mutating Stats() leaked into tracker: calls=%d", got)
	}
}

func TestTracker_ConcurrentTrack(t *testing.T) {
	tracker := NewTracker()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tracker.Track(context.Background(), UsageEvent{Provider: "openai", InputTokens: 1})
		}()
	}
	wg.Wait()
	if got := tracker.Stats().Total.Calls; got != 50 {
		t.Fatalf("Total.Calls=%d, want 50", got)
	}
}

func TestTracker_Save(t *testing.T) {
	tracker := NewTracker()
	tracker.Track(context.Background(), UsageEvent{Provider: "openai", Model: "m", InputTokens: 4, OutputTokens: 6})

	path := filepath.Join(t.TempDir(), "out", "usage.json")
	if err := tracker.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read usage.json: %v", err)
	}
	var persisted UsageData
	if err := json.Unmarshal(data, &persisted); err != nil {
		t.Fatalf("unmarshal usage.json: %v", err)
	}
	if persisted.Aggregate.Total.Input != 4 || persisted.Aggregate.Total.Output != 6 {
		t.Fatalf("persisted total=%+v", persisted.Aggregate.Total)
	}
}

func TestTracker_ContextHelpers(t *testing.T) {
	tracker := NewTracker()

	ctx := NewContext(context.Background(), tracker)
	if got := FromContext(ctx); got != tracker {
		t.Fatalf("FromContext mismatch")
	}
	if got := FromContext(context.Background()); got != nil {
		t.Fatalf("FromContext on empty context = %v, want nil", got)
	}
	if got := CategoryFromContext(WithCategory(ctx, "AML")); got != "AML" {
		t.Fatalf("CategoryFromContext = %q", got)
	}
}
