package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for a scoring run.
type Metrics struct {
	// Transport metrics.
	FetchRequests *prometheus.CounterVec   // labels: source, outcome={success,error}
	FetchRetries  *prometheus.CounterVec   // labels: source
	FetchDuration *prometheus.HistogramVec // labels: source

	// Cache metrics.
	CacheLookups *prometheus.CounterVec // labels: namespace={catalog,reachability}, result={hit,miss,error}

	// Pipeline metrics.
	DestinationsExcluded *prometheus.CounterVec // labels: reason={not_found,error}
	CandidatesSkipped    *prometheus.CounterVec // labels: reason
	CatalogStations      prometheus.Gauge
	CandidatesRanked     prometheus.Gauge
	RunDuration          prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.FetchRequests,
		m.FetchRetries,
		m.FetchDuration,
		m.CacheLookups,
		m.DestinationsExcluded,
		m.CandidatesSkipped,
		m.CatalogStations,
		m.CandidatesRanked,
		m.RunDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_scout",
			Name:      "fetch_requests_total",
			Help:      "Outbound fetches by source and outcome.",
		}, []string{"source", "outcome"}),
		FetchRetries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_scout",
			Name:      "fetch_retries_total",
			Help:      "Fetch attempts retried after a transient failure.",
		}, []string{"source"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "station_scout",
			Name:      "fetch_duration_seconds",
			Help:      "Duration of a single outbound fetch.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"source"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_scout",
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by namespace and result.",
		}, []string{"namespace", "result"}),
		DestinationsExcluded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_scout",
			Name:      "destinations_excluded_total",
			Help:      "Destinations dropped from the intersection, by reason.",
		}, []string{"reason"}),
		CandidatesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "station_scout",
			Name:      "candidates_skipped_total",
			Help:      "Candidate stations excluded from the ranking, by reason.",
		}, []string{"reason"}),
		CatalogStations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "station_scout",
			Name:      "catalog_stations",
			Help:      "Stations in the rent catalog of the last run.",
		}),
		CandidatesRanked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "station_scout",
			Name:      "candidates_ranked",
			Help:      "Candidates emitted by the last ranking.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "station_scout",
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete scoring run.",
			Buckets:   []float64{1, 10, 60, 300, 900, 1800, 3600},
		}),
	}
}
