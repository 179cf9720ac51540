package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "shopsense"

// Acquisition Prometheus metrics.
var (
	AcquisitionAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisition_attempts_total",
			Help:      "Acquisition runs by outcome",
		},
		[]string{"outcome"}, // "live" / "fallback"
	)

	AcquisitionFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisition_fallbacks_total",
			Help:      "Synthetic catalog fallbacks by reason",
		},
		[]string{"reason"},
	)

	AcquisitionWaitTiersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisition_wait_tiers_total",
			Help:      "Readiness wait tiers by outcome",
		},
		[]string{"tier", "result"}, // result: "found" / "timeout"
	)

	AcquisitionExtractedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "acquisition_extracted_total",
			Help:      "Listings extracted from rendered pages",
		},
		[]string{"extractor"},
	)

	AcquisitionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "acquisition_duration_seconds",
			Help:      "Acquisition duration in seconds",
			Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"source"}, // "live" / "synthetic"
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "circuit_breaker_transitions_total",
			Help:      "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	StageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Pipeline stage duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 60},
		},
		[]string{"stage"},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers acquisition and stage metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(AcquisitionAttemptsTotal)
	prometheus.MustRegister(AcquisitionFallbacksTotal)
	prometheus.MustRegister(AcquisitionWaitTiersTotal)
	prometheus.MustRegister(AcquisitionExtractedTotal)
	prometheus.MustRegister(AcquisitionDuration)
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerTransitionsTotal)
	prometheus.MustRegister(StageDuration)
	pipelineMetricsRegistered = true
}
