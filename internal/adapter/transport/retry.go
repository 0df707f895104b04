package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/couchcryptid/station-scout/internal/observability"
)

// RetryPolicy bounds the attempts of a RetryFetcher. The first retry waits
// Delay; each later retry waits Multiplier times longer.
type RetryPolicy struct {
	Attempts   int
	Delay      time.Duration
	Multiplier float64
}

// RetryFetcher retries transient failures of an inner Fetcher with
// exponential backoff. Non-temporary status errors fail immediately.
type RetryFetcher struct {
	inner   Fetcher
	policy  RetryPolicy
	source  string
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRetryFetcher wraps inner with the given policy.
func NewRetryFetcher(inner Fetcher, policy RetryPolicy, source string, logger *slog.Logger, metrics *observability.Metrics) *RetryFetcher {
	if policy.Attempts < 1 {
		policy.Attempts = 1
	}
	if policy.Multiplier < 1 {
		policy.Multiplier = 1
	}
	return &RetryFetcher{
		inner:   inner,
		policy:  policy,
		source:  source,
		logger:  logger,
		metrics: metrics,
	}
}

func (f *RetryFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	var body []byte
	attempt := 0

	op := func() error {
		attempt++
		b, err := f.inner.Fetch(ctx, rawURL)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) && !statusErr.Temporary() {
				return backoff.Permanent(err)
			}
			return err
		}
		body = b
		return nil
	}

	notify := func(err error, wait time.Duration) {
		f.metrics.FetchRetries.WithLabelValues(f.source).Inc()
		f.logger.Warn("fetch failed, retrying",
			"source", f.source,
			"url", rawURL,
			"attempt", attempt,
			"max_attempts", f.policy.Attempts,
			"wait", wait,
			"error", err,
		)
	}

	if err := backoff.RetryNotify(op, f.backOff(ctx), notify); err != nil {
		return nil, fmt.Errorf("fetch %s: gave up after %d attempt(s): %w", rawURL, attempt, err)
	}
	return body, nil
}

func (f *RetryFetcher) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = f.policy.Delay
	b.Multiplier = f.policy.Multiplier
	b.RandomizationFactor = 0
	b.MaxInterval = time.Hour
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(f.policy.Attempts-1)), ctx)
}
