package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/couchcryptid/station-scout/internal/domain"
	"github.com/couchcryptid/station-scout/internal/observability"
)

// CatalogSource produces the rent catalog.
type CatalogSource interface {
	Build(ctx context.Context) (domain.RentCatalog, error)
}

// MatrixSource produces the reachability set of one destination.
type MatrixSource interface {
	Build(ctx context.Context, destination string) (domain.ReachabilitySet, error)
}

// Reporter receives the finished ranking.
type Reporter interface {
	Report(ctx context.Context, ranking domain.Ranking) error
}

// Options configure a run.
type Options struct {
	Destinations []string
	Score        domain.ScoreOptions
}

// Pipeline runs catalog, reachability, aggregation and ranking once per Run.
type Pipeline struct {
	catalog   CatalogSource
	matrix    MatrixSource
	reporters []Reporter
	opts      Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	last      atomic.Pointer[domain.Ranking]
}

// New creates a Pipeline with the given stages and observability.
func New(catalog CatalogSource, matrix MatrixSource, reporters []Reporter, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		catalog:   catalog,
		matrix:    matrix,
		reporters: reporters,
		opts:      opts,
		logger:    logger,
		metrics:   metrics,
	}
}

// CheckReadiness returns nil once a run has completed.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if p.last.Load() == nil {
		return errors.New("no ranking has been produced yet")
	}
	return nil
}

// LastRanking returns the most recent ranking, if any.
func (p *Pipeline) LastRanking() (domain.Ranking, bool) {
	r := p.last.Load()
	if r == nil {
		return domain.Ranking{}, false
	}
	return *r, true
}

// Run executes one scoring run. Only a catalog failure or cancellation fails
// the run; unusable destinations are excluded with a warning.
func (p *Pipeline) Run(ctx context.Context) (domain.Ranking, error) {
	start := time.Now()
	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	logger.Info("run started", "destinations", p.opts.Destinations)

	catalog, err := p.catalog.Build(ctx)
	if err != nil {
		return domain.Ranking{}, err
	}
	p.metrics.CatalogStations.Set(float64(len(catalog)))

	sets, err := p.destinationSets(ctx, logger)
	if err != nil {
		return domain.Ranking{}, err
	}

	agg := domain.Intersect(sets)
	logger.Info("destinations intersected", "destinations", agg.Destinations, "candidates", len(agg.Stations))

	ranked, skips := domain.Rank(catalog, agg, p.opts.Score)
	p.logSkips(logger, skips)

	ranking := domain.NewRanking(runID, agg.Destinations, ranked)
	p.last.Store(&ranking)
	p.metrics.CandidatesRanked.Set(float64(len(ranked)))

	for _, r := range p.reporters {
		if err := r.Report(ctx, ranking); err != nil {
			logger.Error("report failed", "reporter", fmt.Sprintf("%T", r), "error", err)
		}
	}

	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	logger.Info("run finished", "ranked", len(ranked), "skipped", len(skips), "elapsed", time.Since(start))
	return ranking, nil
}

// destinationSets builds one set per destination in configuration order,
// dropping the destinations whose build failed.
func (p *Pipeline) destinationSets(ctx context.Context, logger *slog.Logger) ([]domain.DestinationSet, error) {
	sets := make([]domain.DestinationSet, 0, len(p.opts.Destinations))
	for _, dest := range p.opts.Destinations {
		set, err := p.matrix.Build(ctx, dest)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			reason := exclusionReason(err)
			p.metrics.DestinationsExcluded.WithLabelValues(reason).Inc()
			logger.Warn("destination excluded", "destination", dest, "reason", reason, "error", err)
			continue
		}
		sets = append(sets, domain.DestinationSet{Destination: dest, Stations: set})
	}

	if len(sets) < len(p.opts.Destinations) {
		logger.Warn("ranking over a reduced destination set",
			"configured", len(p.opts.Destinations),
			"usable", len(sets),
		)
	}
	return sets, nil
}

func (p *Pipeline) logSkips(logger *slog.Logger, skips []domain.Skip) {
	for _, s := range skips {
		p.metrics.CandidatesSkipped.WithLabelValues(string(s.Reason)).Inc()
		switch s.Reason {
		case domain.SkipMissingRent, domain.SkipUnknownRent:
			logger.Warn("candidate skipped", "station", s.Station, "reason", s.Reason)
		default:
			logger.Debug("candidate skipped", "station", s.Station, "reason", s.Reason)
		}
	}
}
