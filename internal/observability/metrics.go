package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "commune_fusion"

// Metrics holds the Prometheus counters, histograms, and gauges for the fusion pipeline.
type Metrics struct {
	SourceRows     *prometheus.CounterVec // labels: source
	SourceFailures *prometheus.CounterVec // labels: source

	RowsJoined       *prometheus.CounterVec // labels: source
	RowsDropped      *prometheus.CounterVec // labels: source, reason
	RiskZonesSkipped prometheus.Counter

	// Fetch metrics.
	FetchDuration *prometheus.HistogramVec // labels: scheme={file,http,s3}
	FetchRequests *prometheus.CounterVec   // labels: scheme, outcome={success,error}

	PhaseDuration  *prometheus.HistogramVec // labels: phase
	Municipalities prometheus.Gauge
	PipelineReady  prometheus.Gauge
}

var phaseBuckets = []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}
	return &Metrics{
		SourceRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_rows_total",
			Help:      help("Rows read from each source."),
		}, []string{"source"}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_failures_total",
			Help:      help("Sources that failed to load and were treated as empty."),
		}, []string{"source"}),
		RowsJoined: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_joined_total",
			Help:      help("Rows applied to a municipality record."),
		}, []string{"source"}),
		RowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_dropped_total",
			Help:      help("Rows skipped during a join, by reason."),
		}, []string{"source", "reason"}),
		RiskZonesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "risk_zones_skipped_total",
			Help:      help("Clay risk features skipped for missing or malformed geometry."),
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "source_fetch_duration_seconds",
			Help:      help("Time to open a source, by URI scheme."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"scheme"}),
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "source_fetch_requests_total",
			Help:      help("Source fetches by URI scheme and outcome."),
		}, []string{"scheme", "outcome"}),
		PhaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "phase_duration_seconds",
			Help:      help("Duration of each pipeline phase."),
			Buckets:   phaseBuckets,
		}, []string{"phase"}),
		Municipalities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "municipalities",
			Help:      help("Municipality records in the fact table."),
		}),
		PipelineReady: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_ready",
			Help:      help("1 once the fact table is queryable, 0 before."),
		}),
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates the pipeline metrics and registers them with reg.
// The CLI uses a private registry so that one-shot runs never touch the
// default one.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := newMetrics(true)
	reg.MustRegister(
		m.SourceRows,
		m.SourceFailures,
		m.RowsJoined,
		m.RowsDropped,
		m.RiskZonesSkipped,
		m.FetchDuration,
		m.FetchRequests,
		m.PhaseDuration,
		m.Municipalities,
		m.PipelineReady,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}
