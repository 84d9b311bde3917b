package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// risk engine.
type Metrics struct {
	SeriesGenerated prometheus.Counter
	SeriesCache     *prometheus.CounterVec // labels: result={hit,miss,incomplete}
	SeriesPoints    prometheus.Histogram

	Evaluations         *prometheus.CounterVec // labels: product
	EventsEmitted       *prometheus.CounterVec // labels: tier
	DegradedEvaluations prometheus.Counter
	EvaluationDuration  prometheus.Histogram
	InvalidProducts     prometheus.Counter

	EventsPublished prometheus.Counter
	EngineReady     prometheus.Gauge
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.SeriesGenerated,
		m.SeriesCache,
		m.SeriesPoints,
		m.Evaluations,
		m.EventsEmitted,
		m.DegradedEvaluations,
		m.EvaluationDuration,
		m.InvalidProducts,
		m.EventsPublished,
		m.EngineReady,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		SeriesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "series_generated_total",
			Help:      "Total weather series generated (cache misses included).",
		}),
		SeriesCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "series_cache_total",
			Help:      "Series cache lookups by result.",
		}, []string{"result"}),
		SeriesPoints: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "risk_engine",
			Name:      "series_points",
			Help:      "Number of hourly points per generated series.",
			Buckets:   []float64{24, 168, 720, 2160, 4320, 8760},
		}),
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "evaluations_total",
			Help:      "Risk evaluations by product.",
		}, []string{"product"}),
		EventsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "events_emitted_total",
			Help:      "Risk events emitted by tier.",
		}, []string{"tier"}),
		DegradedEvaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "degraded_evaluations_total",
			Help:      "Evaluations that fell back to an unextended series.",
		}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "risk_engine",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of a complete generate-extend-evaluate cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
		InvalidProducts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "invalid_products_total",
			Help:      "Product definitions rejected by registry validation.",
		}),
		EventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "risk_engine",
			Name:      "events_published_total",
			Help:      "Risk events published to the sink topic.",
		}),
		EngineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "risk_engine",
			Name:      "ready",
			Help:      "1 when the engine has a loaded product catalog.",
		}),
	}
}
