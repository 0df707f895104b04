// Package transport provides the fetch capability shared by the rent source and
// the routing service clients, plus retry and pacing decorators around it.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/couchcryptid/station-scout/internal/observability"
)

// Fetcher retrieves the body behind a URL.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) ([]byte, error)
}

// StatusError is returned for non-2xx responses.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: status %d: %s", e.URL, e.Code, e.Body)
}

// Temporary reports whether a retry could plausibly succeed. Client errors
// other than 429 will not become valid on retry.
func (e *StatusError) Temporary() bool {
	return e.Code >= http.StatusInternalServerError || e.Code == http.StatusTooManyRequests
}

// HTTPFetcher performs plain GET requests with a fixed header set.
type HTTPFetcher struct {
	httpClient *http.Client
	header     http.Header
	source     string
	metrics    *observability.Metrics
}

// NewHTTPFetcher creates a fetcher. source labels its metrics.
func NewHTTPFetcher(timeout time.Duration, header http.Header, source string, metrics *observability.Metrics) *HTTPFetcher {
	return &HTTPFetcher{
		httpClient: &http.Client{Timeout: timeout},
		header:     header,
		source:     source,
		metrics:    metrics,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	start := time.Now()
	body, err := f.do(ctx, rawURL)
	f.metrics.FetchDuration.WithLabelValues(f.source).Observe(time.Since(start).Seconds())
	if err != nil {
		f.metrics.FetchRequests.WithLabelValues(f.source, "error").Inc()
		return nil, err
	}
	f.metrics.FetchRequests.WithLabelValues(f.source, "success").Inc()
	return body, nil
}

func (f *HTTPFetcher) do(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for key, values := range f.header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", f.source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", f.source, err)
	}
	return body, nil
}
