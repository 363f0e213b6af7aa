package perception

import (
	"context"
	"fmt"
	"time"

	"finsec/internal/logging"

	"go.uber.org/zap"
)

// RetryPolicy bounds retries of temporary backend failures.
type RetryPolicy struct {
	MaxAttempts    int           // total attempts including the first; < 1 means 1
	InitialBackoff time.Duration // delay before the second attempt
	MaxBackoff     time.Duration // cap on the doubled delay
}

// DefaultRetryPolicy is three attempts with 1s, 2s delays.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Second, MaxBackoff: 8 * time.Second}
}

// Backoff returns the delay before attempt n (1-based; n >= 2).
func (p RetryPolicy) Backoff(n int) time.Duration {
	d := p.InitialBackoff
	for i := 2; i < n; i++ {
		d *= 2
		if p.MaxBackoff > 0 && d >= p.MaxBackoff {
			return p.MaxBackoff
		}
	}
	if p.MaxBackoff > 0 && d > p.MaxBackoff {
		return p.MaxBackoff
	}
	return d
}

// RetryClient retries temporary failures of the wrapped client with
// exponential backoff. Non-temporary errors return immediately.
type RetryClient struct {
	underlying LLMClient
	policy     RetryPolicy
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewRetryClient wraps client with policy.
func NewRetryClient(client LLMClient, policy RetryPolicy) *RetryClient {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &RetryClient{underlying: client, policy: policy, sleep: sleepContext}
}

// Complete calls the wrapped client until it succeeds, fails permanently,
// the context ends, or attempts run out.
func (r *RetryClient) Complete(ctx context.Context, req CompletionRequest) (Completion, error) {
	var lastErr error
	for attempt := 1; attempt <= r.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			delay := r.policy.Backoff(attempt)
			logging.Get(logging.CategoryAPI).Warn("retrying backend call",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(lastErr))
			if err := r.sleep(ctx, delay); err != nil {
				return Completion{}, fmt.Errorf("retry aborted: %w (last error: %v)", err, lastErr)
			}
		}

		out, err := r.underlying.Complete(ctx, req)
		if err == nil {
			return out, nil
		}
		lastErr = err
		if !IsTemporary(err) || ctx.Err() != nil {
			return Completion{}, err
		}
	}
	return Completion{}, fmt.Errorf("%w after %d attempts: %w", ErrMaxRetries, r.policy.MaxAttempts, lastErr)
}

// Unwrap returns the wrapped client.
func (r *RetryClient) Unwrap() LLMClient {
	return r.underlying
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
