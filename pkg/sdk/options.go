package shopsense

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	baseURL    string
	searchPath string

	browser     bool
	headless    bool
	maxSessions int

	ratePerSecond float64
	burst         int

	weights     Weights
	logCapacity int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMarketplace points live acquisition at another marketplace search page.
// Defaults: https://www.flipkart.com and /search.
func WithMarketplace(baseURL, searchPath string) Option {
	return optionFunc(func(c *clientConfig) {
		c.baseURL = baseURL
		c.searchPath = searchPath
	})
}

// WithBrowser enables live acquisition through a headless Chromium pool of
// at most maxSessions concurrent pages. Without it every acquisition is
// served from the synthetic catalog.
func WithBrowser(headless bool, maxSessions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.browser = true
		c.headless = headless
		c.maxSessions = maxSessions
	})
}

// WithRateLimit caps live navigations per second. Default: 0.5/s, burst 2.
func WithRateLimit(perSecond float64, burst int) Option {
	return optionFunc(func(c *clientConfig) {
		c.ratePerSecond = perSecond
		c.burst = burst
	})
}

// WithWeights overrides the ranking weights.
func WithWeights(w Weights) Option {
	return optionFunc(func(c *clientConfig) {
		c.weights = w
	})
}

// WithProcessLogCapacity sets how many recorded steps Steps retains. Default: 100.
func WithProcessLogCapacity(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.logCapacity = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
