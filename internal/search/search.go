package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// MaxResults caps how many hits a single lookup may return.
const MaxResults = 3

// Result represents a single search hit from any provider.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"-"` // provider name for observability
}

// Provider is a minimal interface for search providers.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}

// Clamp bounds a requested result count to [1, MaxResults].
func Clamp(k int) int {
	if k < 1 {
		return 1
	}
	if k > MaxResults {
		return MaxResults
	}
	return k
}

// withSearchTimeout bounds one lookup regardless of the HTTP client's own
// timeout.
func withSearchTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		d = defaultSearchTimeout
	}
	return context.WithTimeout(ctx, d)
}

// getBody performs one GET and returns the body of a 2xx response. The
// caller closes it. Other statuses wrap ErrStatus.
func getBody(ctx context.Context, hc *http.Client, rawURL, userAgent string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if userAgent == "" {
		userAgent = BrowserUserAgent
	}
	req.Header.Set("User-Agent", userAgent)
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %d", ErrStatus, resp.StatusCode)
	}
	return resp.Body, nil
}
