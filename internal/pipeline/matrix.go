package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/station-scout/internal/domain"
	"github.com/couchcryptid/station-scout/internal/observability"
)

// MatrixOptions are the reachability query parameters shared by every
// destination.
type MatrixOptions struct {
	Qualifiers    []string
	TermMinutes   int
	ExcludedModes []string
	TransitLimit  int
	ResultLimit   int
}

// MatrixBuilder resolves a destination to a routing node and builds its
// reachability set.
type MatrixBuilder struct {
	searcher domain.NodeSearcher
	service  domain.ReachabilityService
	cache    Cache
	opts     MatrixOptions
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewMatrixBuilder creates a builder.
func NewMatrixBuilder(searcher domain.NodeSearcher, service domain.ReachabilityService, cache Cache, opts MatrixOptions, logger *slog.Logger, metrics *observability.Metrics) *MatrixBuilder {
	return &MatrixBuilder{
		searcher: searcher,
		service:  service,
		cache:    cache,
		opts:     opts,
		logger:   logger,
		metrics:  metrics,
	}
}

// Resolve returns the routing node ID for station. Search failures are not
// retried and map to domain.ErrNodeNotFound like a plain miss.
func (b *MatrixBuilder) Resolve(ctx context.Context, station string) (string, error) {
	candidates, err := b.searcher.SearchNodes(ctx, station)
	if err != nil {
		b.logger.Warn("node search failed", "station", station, "error", err)
		return "", domain.ErrNodeNotFound
	}
	id, err := domain.MatchNode(station, candidates, b.opts.Qualifiers)
	if err != nil {
		b.logger.Warn("no exact node match", "station", station, "candidates", len(candidates))
		return "", err
	}
	return id, nil
}

// Build returns the reachability set for destination, from cache when
// present. Failed builds are returned as errors and never cached.
func (b *MatrixBuilder) Build(ctx context.Context, destination string) (domain.ReachabilitySet, error) {
	key := reachabilityPrefix + destination
	if set, ok := loadCached[domain.ReachabilitySet](ctx, b.cache, key, "reachability", b.logger, b.metrics); ok {
		return set, nil
	}

	nodeID, err := b.Resolve(ctx, destination)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", destination, err)
	}

	rows, err := b.service.Reachable(ctx, domain.ReachabilityQuery{
		NodeID:        nodeID,
		TermMinutes:   b.opts.TermMinutes,
		ExcludedModes: b.opts.ExcludedModes,
		TransitLimit:  b.opts.TransitLimit,
		ResultLimit:   b.opts.ResultLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("reachability for %s: %w", destination, err)
	}

	set := domain.ReduceReachability(rows, destination)
	b.logger.Info("reachability built", "destination", destination, "node_id", nodeID, "rows", len(rows), "stations", len(set))
	storeCached(ctx, b.cache, key, set, b.logger)
	return set, nil
}

// exclusionReason labels a failed destination build for metrics.
func exclusionReason(err error) string {
	if errors.Is(err, domain.ErrNodeNotFound) {
		return "not_found"
	}
	return "error"
}
