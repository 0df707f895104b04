// Command scout ranks commuter stations by rent and travel time to a set of
// destinations. It runs the scoring pipeline once, prints the ranking, and
// optionally publishes it to Kafka. When HTTP_ADDR is set it keeps serving
// health, metrics and the ranking until interrupted.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/station-scout/internal/adapter/cache"
	httpadapter "github.com/couchcryptid/station-scout/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/station-scout/internal/adapter/kafka"
	"github.com/couchcryptid/station-scout/internal/adapter/navitime"
	"github.com/couchcryptid/station-scout/internal/adapter/suumo"
	"github.com/couchcryptid/station-scout/internal/adapter/transport"
	"github.com/couchcryptid/station-scout/internal/config"
	"github.com/couchcryptid/station-scout/internal/domain"
	"github.com/couchcryptid/station-scout/internal/observability"
	"github.com/couchcryptid/station-scout/internal/pipeline"
	"github.com/couchcryptid/station-scout/internal/report"
)

func main() {
	// A missing .env is fine; the environment may already be populated.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	if err := run(cfg, logger); err != nil {
		logger.Error("scout failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger) error {
	metrics := observability.NewMetrics()

	store, closeStore, err := cache.New(cache.Options{
		Backend:    cfg.CacheBackend,
		Dir:        cfg.CacheDir,
		SQLitePath: cfg.CacheSQLitePath,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Error("cache close error", "error", err)
		}
	}()
	logger.Info("cache configured", "backend", cfg.CacheBackend)

	policy := transport.RetryPolicy{
		Attempts:   cfg.FetchRetryAttempts,
		Delay:      cfg.FetchRetryDelay,
		Multiplier: cfg.FetchRetryMultiplier,
	}

	// Rent pages: paced per request, retried on transient failures.
	suumoFetcher := transport.NewRetryFetcher(
		transport.NewPacedFetcher(transport.NewHTTPFetcher(cfg.HTTPTimeout, nil, "suumo", metrics), cfg.RequestInterval(), nil),
		policy, "suumo", logger, metrics,
	)
	rentSource, err := suumo.NewClient(suumoFetcher, cfg.SuumoBaseURL, cfg.SuumoBuildingType, cfg.SuumoLayout, logger)
	if err != nil {
		return err
	}

	// Node search is never retried; any failure means the destination is unusable.
	searcher := navitime.NewAutocomplete(
		transport.NewHTTPFetcher(cfg.HTTPTimeout, navitime.Headers(cfg.RapidAPIKey, cfg.NavitimeTransportURL), "navitime_autocomplete", metrics),
		cfg.NavitimeTransportURL,
	)
	reach := navitime.NewReachability(
		transport.NewRetryFetcher(
			transport.NewHTTPFetcher(cfg.HTTPTimeout, navitime.Headers(cfg.RapidAPIKey, cfg.NavitimeReachableURL), "navitime_reachable", metrics),
			policy, "navitime_reachable", logger, metrics,
		),
		cfg.NavitimeReachableURL, logger,
	)

	reporters := []pipeline.Reporter{report.NewTextReporter(os.Stdout)}
	if cfg.KafkaEnabled() {
		writer := kafkaadapter.NewWriter(cfg, logger)
		defer func() {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}()
		reporters = append(reporters, writer)
		logger.Info("kafka publishing enabled", "topic", cfg.KafkaTopic)
	}

	p := pipeline.New(
		pipeline.NewCatalogBuilder(rentSource, cfg.TargetAreas, store, logger, metrics),
		pipeline.NewMatrixBuilder(searcher, reach, store, pipeline.MatrixOptions{
			Qualifiers:    cfg.PrefectureQualifiers,
			TermMinutes:   cfg.ReachTerm,
			ExcludedModes: cfg.ReachExcludedModes,
			TransitLimit:  cfg.ReachTransitLimit,
			ResultLimit:   cfg.ReachResultLimit,
		}, logger, metrics),
		reporters,
		pipeline.Options{
			Destinations: cfg.TargetStations,
			Score: domain.ScoreOptions{
				RentLimit: cfg.RentLimit,
				TimeLimit: cfg.TimeLimit,
				Top:       cfg.OutputTop,
				Ignore:    cfg.IgnoreStations,
			},
		},
		logger, metrics,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.HTTPAddr == "" {
		_, err := p.Run(ctx)
		return err
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, logger)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if _, err := p.Run(gctx); err != nil {
			return err
		}
		logger.Info("run complete, serving until interrupted", "addr", cfg.HTTPAddr)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	logger.Info("shutdown complete")
	return err
}
