package transport

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// PacedFetcher sleeps for a fixed interval after every fetch, keeping calls
// to a source within a requests-per-minute budget.
type PacedFetcher struct {
	inner    Fetcher
	interval time.Duration
	clock    clockwork.Clock
}

// NewPacedFetcher wraps inner. A nil clock uses real time.
func NewPacedFetcher(inner Fetcher, interval time.Duration, clock clockwork.Clock) *PacedFetcher {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PacedFetcher{inner: inner, interval: interval, clock: clock}
}

func (f *PacedFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	body, err := f.inner.Fetch(ctx, rawURL)
	if f.interval > 0 {
		select {
		case <-ctx.Done():
			if err == nil {
				return nil, ctx.Err()
			}
		case <-f.clock.After(f.interval):
		}
	}
	return body, err
}
