package pipeline

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/couchcryptid/station-scout/internal/observability"
)

// Cache is the key/blob store the builders memoize into. A nil Cache disables
// caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Cache keys.
const (
	catalogKey         = "rent-catalog"
	reachabilityPrefix = "reachability/"
)

// loadCached decodes the entry under key. Read or decode failures are logged
// and reported as a miss so the caller recomputes.
func loadCached[T any](ctx context.Context, c Cache, key, namespace string, logger *slog.Logger, metrics *observability.Metrics) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}

	raw, ok, err := c.Get(ctx, key)
	if err != nil {
		metrics.CacheLookups.WithLabelValues(namespace, "error").Inc()
		logger.Warn("cache read failed, recomputing", "key", key, "error", err)
		return zero, false
	}
	if !ok {
		metrics.CacheLookups.WithLabelValues(namespace, "miss").Inc()
		return zero, false
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		metrics.CacheLookups.WithLabelValues(namespace, "error").Inc()
		logger.Warn("cache entry unreadable, recomputing", "key", key, "error", err)
		return zero, false
	}
	metrics.CacheLookups.WithLabelValues(namespace, "hit").Inc()
	logger.Debug("cache hit", "key", key)
	return v, true
}

// storeCached persists v under key. Failures only cost a recomputation on the
// next run, so they are logged and dropped.
func storeCached(ctx context.Context, c Cache, key string, v any, logger *slog.Logger) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		logger.Warn("cache encode failed", "key", key, "error", err)
		return
	}
	if err := c.Put(ctx, key, raw); err != nil {
		logger.Warn("cache write failed", "key", key, "error", err)
	}
}
