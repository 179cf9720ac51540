package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds by pipeline operation",
			// A full run can spend up to the navigation and wait budget in acquisition.
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
		},
		[]string{"method", "operation", "status"},
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by pipeline operation",
		},
		[]string{"method", "operation", "status"},
	)

	httpRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "http_requests_in_flight",
			Help:      "HTTP requests currently being served",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration, httpRequestsTotal, httpRequestsInFlight)
}

// routeOperations names the pipeline operation behind each mounted route.
var routeOperations = map[string]string{
	"/api/query":              "submit_query",
	"/api/parse-query":        "interpret",
	"/api/fetch-products":     "acquire",
	"/api/structure-reviews":  "structure",
	"/api/summarize-products": "recommend",
	"/api/recommend":          "run",
	"/api/process-logs":       "process_logs",
	"/health":                 "health",
	"/metrics":                "metrics",
}

// Middleware records HTTP request duration, count and concurrency per operation.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			httpRequestsInFlight.Inc()
			defer httpRequestsInFlight.Dec()

			start := time.Now()
			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			var pattern string
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				pattern = rctx.RoutePattern()
			}
			op := operationFor(pattern)
			status := strconv.Itoa(ww.status)

			httpRequestDuration.WithLabelValues(r.Method, op, status).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(r.Method, op, status).Inc()
		})
	}
}

// operationFor maps a chi route pattern to its operation label. Requests that
// matched no route share "unmatched"; routes outside the table share "other".
func operationFor(pattern string) string {
	if pattern == "" {
		return "unmatched"
	}
	if op, ok := routeOperations[pattern]; ok {
		return op
	}
	return "other"
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
