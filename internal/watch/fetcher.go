package watch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"finsec/internal/config"
	"finsec/internal/digest"
)

// ErrNoSourceURL is returned by fetchers for sources they cannot reach.
// The detector skips such sources instead of reporting a failure.
var ErrNoSourceURL = errors.New("context source has no URL")

// DigestFetcher returns the current content digest of a context source.
type DigestFetcher interface {
	FetchDigest(ctx context.Context, src config.ContextSource) (string, error)
}

// DigestFetcherFunc adapts a function to DigestFetcher.
type DigestFetcherFunc func(ctx context.Context, src config.ContextSource) (string, error)

// FetchDigest calls f.
func (f DigestFetcherFunc) FetchDigest(ctx context.Context, src config.ContextSource) (string, error) {
	return f(ctx, src)
}

// HTTPDigestFetcher digests the body of a GET to each source's URL.
type HTTPDigestFetcher struct {
	client *http.Client
}

// NewHTTPDigestFetcher creates a fetcher. A nil client gets a 30s timeout.
func NewHTTPDigestFetcher(client *http.Client) *HTTPDigestFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPDigestFetcher{client: client}
}

// FetchDigest implements DigestFetcher.
func (f *HTTPDigestFetcher) FetchDigest(ctx context.Context, src config.ContextSource) (string, error) {
	if src.URL == "" {
		return "", ErrNoSourceURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src.URL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", src.Name, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", src.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("fetch %s: unexpected status %d", src.Name, resp.StatusCode)
	}

	sum, err := digest.Reader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", src.Name, err)
	}
	return sum, nil
}
