package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/station-scout/internal/domain"
	"github.com/couchcryptid/station-scout/internal/observability"
)

// CatalogBuilder accumulates the rent catalog over every line of every area.
type CatalogBuilder struct {
	source  domain.RentSource
	areas   []string
	cache   Cache
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewCatalogBuilder creates a builder for the given areas, visited in order.
func NewCatalogBuilder(source domain.RentSource, areas []string, cache Cache, logger *slog.Logger, metrics *observability.Metrics) *CatalogBuilder {
	return &CatalogBuilder{
		source:  source,
		areas:   areas,
		cache:   cache,
		logger:  logger,
		metrics: metrics,
	}
}

// Build returns the cached catalog when present, otherwise scrapes it. Any
// fetch failure that survived the transport retries aborts the build; a
// partial catalog would let later lines' rents win.
func (b *CatalogBuilder) Build(ctx context.Context) (domain.RentCatalog, error) {
	if catalog, ok := loadCached[domain.RentCatalog](ctx, b.cache, catalogKey, "catalog", b.logger, b.metrics); ok {
		b.logger.Info("rent catalog loaded from cache", "stations", len(catalog))
		return catalog, nil
	}

	catalog := domain.RentCatalog{}
	for _, area := range b.areas {
		lines, err := b.source.Lines(ctx, area)
		if err != nil {
			return nil, fmt.Errorf("build rent catalog: %w", err)
		}
		b.logger.Info("scraping area", "area", area, "lines", len(lines))

		for _, line := range lines {
			rows, err := b.source.StationRents(ctx, line)
			if err != nil {
				return nil, fmt.Errorf("build rent catalog: %w", err)
			}
			for _, row := range rows {
				if !catalog.Add(row.Station, row.Rent, line.Name) {
					b.logger.Debug("rent row without a station name", "line", line.Name, "raw", row.Station)
				}
			}
		}
	}

	b.logger.Info("rent catalog built", "stations", len(catalog))
	storeCached(ctx, b.cache, catalogKey, catalog, b.logger)
	return catalog, nil
}
