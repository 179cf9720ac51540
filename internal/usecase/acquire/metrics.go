package acquire

import (
	"github.com/prometheus/client_golang/prometheus"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Metrics are the collectors acquisition reports to, passed explicitly.
// Any field may be nil.
type Metrics struct {
	Attempts           *prometheus.CounterVec   // label "outcome": live, fallback
	Fallbacks          *prometheus.CounterVec   // label "reason"
	WaitTiers          *prometheus.CounterVec   // labels "tier", "result"
	Extracted          *prometheus.CounterVec   // label "extractor"
	Duration           *prometheus.HistogramVec // label "source"
	BreakerState       *prometheus.GaugeVec     // label "name"
	BreakerTransitions *prometheus.CounterVec   // labels "name", "from", "to"
}

func (m Metrics) incAttempt(outcome string) {
	if m.Attempts != nil {
		m.Attempts.WithLabelValues(outcome).Inc()
	}
}

func (m Metrics) incFallback(reason string) {
	if m.Fallbacks != nil {
		m.Fallbacks.WithLabelValues(reason).Inc()
	}
}

func (m Metrics) incWaitTier(tier, result string) {
	if m.WaitTiers != nil {
		m.WaitTiers.WithLabelValues(tier, result).Inc()
	}
}

func (m Metrics) addExtracted(extractor string, n int) {
	if m.Extracted != nil {
		m.Extracted.WithLabelValues(extractor).Add(float64(n))
	}
}

func (m Metrics) observeDuration(source string, seconds float64) {
	if m.Duration != nil {
		m.Duration.WithLabelValues(source).Observe(seconds)
	}
}

func (m Metrics) setBreakerState(name string, state gobreaker.State) {
	if m.BreakerState != nil {
		m.BreakerState.WithLabelValues(name).Set(stateToFloat(state))
	}
}

func (m Metrics) incTransition(name, from, to string) {
	if m.BreakerTransitions != nil {
		m.BreakerTransitions.WithLabelValues(name, from, to).Inc()
	}
}
