package acquire

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsense/internal/domain"
	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/logger"
)

// Fallback reasons reported in logs and metrics.
const (
	ReasonDisabled           = "disabled"
	ReasonRateLimited        = "rate_limited"
	ReasonBreakerOpen        = "breaker_open"
	ReasonBrowserUnavailable = "browser_unavailable"
	ReasonNavigation         = "navigation"
	ReasonNoListings         = "no_listings"
	ReasonCanceled           = "canceled"
	ReasonPanic              = "panic"
	ReasonError              = "error"
)

var (
	errNavigation = errors.New("navigation failed")
	errPanic      = errors.New("acquisition panicked")
)

// Config holds the marketplace endpoint and the wait budgets for one attempt.
type Config struct {
	BaseURL           string
	SearchPath        string
	NavigationTimeout time.Duration
	PrimaryWait       time.Duration
	SecondaryWait     time.Duration
	ReadyWait         time.Duration
	QueueWait         time.Duration // bound on the rate limiter wait
	MaxCards          int
	Breaker           BreakerSettings
}

// DefaultConfig targets the Flipkart search page.
func DefaultConfig() Config {
	return Config{
		BaseURL:           "https://www.flipkart.com",
		SearchPath:        "/search",
		NavigationTimeout: 30 * time.Second,
		PrimaryWait:       10 * time.Second,
		SecondaryWait:     5 * time.Second,
		ReadyWait:         3 * time.Second,
		QueueWait:         5 * time.Second,
		MaxCards:          15,
		Breaker:           DefaultBreakerSettings(),
	}
}

// Service acquires product candidates for a structured query.
type Service struct {
	cfg     Config
	browser Browser
	limiter Limiter
	breaker *gobreaker.CircuitBreaker[[]product.Candidate]
	metrics Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// New creates an acquisition service. A nil browser serves the synthetic
// catalog only; a nil limiter disables pacing.
func New(cfg Config, browser Browser, limiter Limiter, m Metrics, logger *zap.Logger) *Service {
	return &Service{
		cfg:     cfg,
		browser: browser,
		limiter: limiter,
		breaker: newBreaker(cfg.Breaker, m, logger),
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Acquire returns live listings for q, or the synthetic catalog when live
// acquisition is disabled, fails, or yields nothing. The result is never empty.
func (s *Service) Acquire(ctx context.Context, q query.StructuredQuery) []product.Candidate {
	start := time.Now()
	log := logger.FromContext(ctx)

	if s.browser == nil {
		return s.fallback(ctx, q, ReasonDisabled, start)
	}

	if err := s.waitTurn(ctx); err != nil {
		log.Warn("Acquisition rate limit wait failed", zap.Error(err))
		return s.fallback(ctx, q, ReasonRateLimited, start)
	}

	cands, err := s.breaker.Execute(func() ([]product.Candidate, error) {
		return s.live(ctx, q)
	})
	if err != nil {
		reason := fallbackReason(err)
		log.Warn("Live acquisition failed",
			zap.String("reason", reason),
			zap.Error(err),
		)
		return s.fallback(ctx, q, reason, start)
	}

	s.metrics.incAttempt("live")
	s.metrics.observeDuration("live", time.Since(start).Seconds())
	log.Info("Acquired live listings", zap.Int("count", len(cands)))
	return cands
}

// waitTurn blocks on the limiter for at most QueueWait.
func (s *Service) waitTurn(ctx context.Context) error {
	if s.limiter == nil {
		return nil
	}
	if s.cfg.QueueWait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.QueueWait)
		defer cancel()
	}
	return s.limiter.Wait(ctx)
}

// BreakerState reports the marketplace circuit state: closed, half-open or open.
func (s *Service) BreakerState() string {
	return stateToString(s.breaker.State())
}

// SearchURL builds the marketplace search address for q.
func (s *Service) SearchURL(q query.StructuredQuery) string {
	v := url.Values{"q": {q.SearchString()}}
	return strings.TrimRight(s.cfg.BaseURL, "/") + s.cfg.SearchPath + "?" + v.Encode()
}

func (s *Service) live(ctx context.Context, q query.StructuredQuery) (cands []product.Candidate, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPanic, r)
		}
	}()

	log := logger.FromContext(ctx)
	target := s.SearchURL(q)

	sess, err := s.browser.NewSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrBrowserUnavailable, err)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			log.Warn("Failed to close browser session", zap.Error(cerr))
		}
	}()

	log.Debug("Navigating to marketplace", zap.String("url", target))
	if err = sess.Navigate(ctx, target, s.cfg.NavigationTimeout); err != nil {
		return nil, fmt.Errorf("%w: %w", errNavigation, err)
	}

	s.awaitResults(ctx, sess)

	html, err := sess.Content(ctx)
	if err != nil {
		return nil, fmt.Errorf("read page content: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse page content: %w", err)
	}

	params := extractParams{
		budget:   q.Budget(),
		maxCards: s.cfg.MaxCards,
		baseURL:  s.cfg.BaseURL,
		now:      s.now(),
	}
	for _, ex := range extractors {
		cands = ex.extract(doc, params)
		if len(cands) > 0 {
			s.metrics.addExtracted(ex.name, len(cands))
			log.Debug("Extracted listings",
				zap.String("extractor", ex.name),
				zap.Int("count", len(cands)),
			)
			return cands, nil
		}
	}
	return nil, domain.ErrNoListings
}

// waitTier is one readiness condition tried after navigation.
type waitTier struct {
	name string
	wait func(ctx context.Context, sess Session) error
}

func (s *Service) waitTiers() []waitTier {
	return []waitTier{
		{name: "primary", wait: func(ctx context.Context, sess Session) error {
			return sess.WaitForSelector(ctx, primaryMarker, s.cfg.PrimaryWait)
		}},
		{name: "secondary", wait: func(ctx context.Context, sess Session) error {
			return sess.WaitForSelector(ctx, secondaryMarker, s.cfg.SecondaryWait)
		}},
		{name: "ready", wait: func(ctx context.Context, sess Session) error {
			return sess.WaitForReady(ctx, s.cfg.ReadyWait)
		}},
	}
}

// awaitResults walks the wait tiers until one succeeds. Exhausting them is not
// an error: extraction proceeds on whatever has rendered.
func (s *Service) awaitResults(ctx context.Context, sess Session) {
	log := logger.FromContext(ctx)
	for _, t := range s.waitTiers() {
		err := t.wait(ctx, sess)
		if err == nil {
			s.metrics.incWaitTier(t.name, "found")
			return
		}
		if ctx.Err() != nil {
			return
		}
		s.metrics.incWaitTier(t.name, "timeout")
		log.Debug("Wait tier timed out", zap.String("tier", t.name), zap.Error(err))
	}
}

func (s *Service) fallback(
	ctx context.Context, q query.StructuredQuery, reason string, start time.Time,
) []product.Candidate {
	cands := Synthesize(q)
	s.metrics.incAttempt("fallback")
	s.metrics.incFallback(reason)
	s.metrics.observeDuration("synthetic", time.Since(start).Seconds())
	logger.FromContext(ctx).Info("Serving synthetic catalog",
		zap.String("reason", reason),
		zap.Int("count", len(cands)),
	)
	return cands
}

func fallbackReason(err error) string {
	switch {
	case isRejected(err):
		return ReasonBreakerOpen
	case errors.Is(err, errPanic):
		return ReasonPanic
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ReasonCanceled
	case errors.Is(err, domain.ErrBrowserUnavailable):
		return ReasonBrowserUnavailable
	case errors.Is(err, errNavigation):
		return ReasonNavigation
	case errors.Is(err, domain.ErrNoListings):
		return ReasonNoListings
	default:
		return ReasonError
	}
}
