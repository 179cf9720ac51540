package shopsense

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/shopsense/internal/domain"
)

const (
	metricsNamespace = "shopsense"
	metricsSubsystem = "sdk"

	statusOK      = "ok"
	statusInvalid = "invalid"
	statusError   = "error"
)

// sdkMetrics are the collectors shared by every Client on one registerer.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	products   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "operations_total",
			Help:      "Pipeline operations by name and status (ok, invalid, error).",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "operation_duration_seconds",
			Help:      "Pipeline operation duration in seconds.",
			Buckets:   []float64{0.001, 0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"operation"}),
		products: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "operation_products",
			Help:      "Products returned or ranked per operation.",
			Buckets:   []float64{1, 2, 3, 5, 10, 15, 20},
		}, []string{"operation"}),
	}
	for _, c := range []**prometheus.HistogramVec{&m.duration, &m.products} {
		if err := registerOrReuse(reg, c); err != nil {
			return nil, err
		}
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or swaps in the collector already registered
// under the same descriptor.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("shopsense: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("shopsense: metric already registered with incompatible type: %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// slowOperation is the duration above which successful operations log at Info.
const slowOperation = 5 * time.Second

// observer logs and counts Client operations. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	o := &observer{logger: logger}
	if reg == nil {
		return o, nil
	}
	m, err := newSDKMetrics(reg)
	if err != nil {
		return nil, err
	}
	o.metrics = m
	return o, nil
}

// observe records one finished operation. products is the number of products
// it produced or ranked; zero skips the products histogram.
func (o *observer) observe(op string, start time.Time, products int, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	status := operationStatus(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, status).Inc()
		o.metrics.duration.WithLabelValues(op).Observe(dur.Seconds())
		if products > 0 {
			o.metrics.products.WithLabelValues(op).Observe(float64(products))
		}
	}

	if o.logger == nil {
		return
	}
	attrs := []any{"op", op, "duration", dur}
	if products > 0 {
		attrs = append(attrs, "products", products)
	}
	switch {
	case status == statusInvalid:
		o.logger.Info("operation rejected input", append(attrs, "error", err)...)
	case err != nil:
		o.logger.Warn("operation failed", append(attrs, "error", err)...)
	case dur > slowOperation:
		o.logger.Info("slow operation", attrs...)
	default:
		o.logger.Debug("operation completed", attrs...)
	}
}

func operationStatus(err error) string {
	switch {
	case err == nil:
		return statusOK
	case errors.Is(err, domain.ErrInvalidQuery), errors.Is(err, domain.ErrInvalidCandidate):
		return statusInvalid
	default:
		return statusError
	}
}
