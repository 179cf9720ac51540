package shopsense

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/shopsense/internal/domain/product"
	"github.com/kailas-cloud/shopsense/internal/domain/query"
	"github.com/kailas-cloud/shopsense/internal/domain/recommendation"
	processlogrepo "github.com/kailas-cloud/shopsense/internal/repository/processlog"
	"github.com/kailas-cloud/shopsense/internal/transport/browser"
	"github.com/kailas-cloud/shopsense/internal/usecase/acquire"
	healthuc "github.com/kailas-cloud/shopsense/internal/usecase/health"
	"github.com/kailas-cloud/shopsense/internal/usecase/interpret"
	pipelineuc "github.com/kailas-cloud/shopsense/internal/usecase/pipeline"
	processloguc "github.com/kailas-cloud/shopsense/internal/usecase/processlog"
	"github.com/kailas-cloud/shopsense/internal/usecase/recommend"
	"github.com/kailas-cloud/shopsense/internal/usecase/structure"
)

// Internal interfaces, replaced in tests.
type pipelineUseCase interface {
	Interpret(ctx context.Context, text string) query.StructuredQuery
	Acquire(ctx context.Context, q query.StructuredQuery) []product.Candidate
	StructureReviews(ctx context.Context, c product.Candidate) product.SentimentMap
	Recommend(ctx context.Context, q query.StructuredQuery, cs []product.Candidate) recommendation.Result
	Run(ctx context.Context, text string) pipelineuc.Run
}

type processLogUseCase interface {
	List(ctx context.Context) ([]processloguc.Entry, error)
	Clear(ctx context.Context) error
}

// Client is the shopsense SDK entry point.
type Client struct {
	pipeline   pipelineUseCase
	processLog processLogUseCase
	healthSvc  healthUseCase
	pool       *browser.Pool
	obs        *observer
}

// New creates a Client. With WithBrowser it starts a Chromium process, which
// Close stops.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		weights:       DefaultWeights(),
		ratePerSecond: 0.5,
		burst:         2,
		logCapacity:   processloguc.DefaultCapacity,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	weights := weightsToDomain(cfg.weights)
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("shopsense: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	var pool *browser.Pool
	if cfg.browser {
		bc := browser.DefaultConfig()
		bc.Headless = cfg.headless
		if cfg.maxSessions > 0 {
			bc.MaxSessions = cfg.maxSessions
		}
		pool, err = browser.New(bc, zap.NewNop())
		if err != nil {
			return nil, fmt.Errorf("shopsense: start browser: %w", err)
		}
	}

	return wireClient(cfg, weights, pool, obs), nil
}

func wireClient(cfg *clientConfig, weights recommend.Weights, pool *browser.Pool, obs *observer) *Client {
	ac := acquire.DefaultConfig()
	if cfg.baseURL != "" {
		ac.BaseURL = cfg.baseURL
	}
	if cfg.searchPath != "" {
		ac.SearchPath = cfg.searchPath
	}

	// Typed nil *browser.Pool must not reach the Browser interface.
	var (
		b       acquire.Browser
		pinger  healthuc.Pinger
		breaker healthuc.BreakerReporter
	)
	if pool != nil {
		b, pinger = pool, pool
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.ratePerSecond), cfg.burst)
	acquirer := acquire.New(ac, b, limiter, acquire.Metrics{}, zap.NewNop())
	if pool != nil {
		breaker = acquirer
	}

	sink := processlogrepo.NewMemorySink(cfg.logCapacity)
	processLog := processloguc.New(sink)

	pipeline := pipelineuc.New(
		interpret.New(),
		acquirer,
		structure.New(),
		recommend.New(weights),
		processLog,
		nil,
	)

	return &Client{
		pipeline:   pipeline,
		processLog: processLog,
		healthSvc:  healthuc.New(sink, pinger, breaker),
		pool:       pool,
		obs:        obs,
	}
}

// Close releases the browser, if any.
func (c *Client) Close() error {
	if c.pool == nil {
		return nil
	}
	if err := c.pool.Close(); err != nil {
		return fmt.Errorf("shopsense: close browser: %w", err)
	}
	return nil
}

// Interpret parses free text into a Query. It never fails: unparseable text
// yields the default smartphone query.
func (c *Client) Interpret(ctx context.Context, text string) Query {
	start := time.Now()
	defer func() { c.obs.observe("interpret", start, 0, nil) }()

	return queryFromDomain(c.pipeline.Interpret(ctx, text))
}

// Acquire returns candidate listings for q, never an empty list. The only
// error is ErrInvalidQuery.
func (c *Client) Acquire(ctx context.Context, q Query) (out []Product, err error) {
	start := time.Now()
	defer func() { c.obs.observe("acquire", start, len(out), err) }()

	dq, err := queryToDomain(q)
	if err != nil {
		return nil, fmt.Errorf("acquire: %w", err)
	}
	return productsFromDomain(c.pipeline.Acquire(ctx, dq)), nil
}

// Structure derives per-feature review sentiment for p.
func (c *Client) Structure(ctx context.Context, p Product) (_ []Sentiment, err error) {
	start := time.Now()
	defer func() { c.obs.observe("structure", start, 0, err) }()

	dp, err := productToDomain(p)
	if err != nil {
		return nil, fmt.Errorf("structure: %w", err)
	}
	return sentimentsFromDomain(c.pipeline.StructureReviews(ctx, dp)), nil
}

// Recommend ranks products against q and narrates the outcome.
func (c *Client) Recommend(ctx context.Context, q Query, products []Product) (_ Recommendation, err error) {
	start := time.Now()
	defer func() { c.obs.observe("recommend", start, len(products), err) }()

	dq, err := queryToDomain(q)
	if err != nil {
		return Recommendation{}, fmt.Errorf("recommend: %w", err)
	}

	cs := make([]product.Candidate, 0, len(products))
	var errs []error
	for _, p := range products {
		dp, perr := productToDomain(p)
		if perr != nil {
			errs = append(errs, fmt.Errorf("product %q: %w", p.ID, perr))
			continue
		}
		cs = append(cs, dp)
	}
	if err = errors.Join(errs...); err != nil {
		return Recommendation{}, fmt.Errorf("recommend: %w", err)
	}

	return recommendationFromDomain(c.pipeline.Recommend(ctx, dq, cs)), nil
}

// Run executes the whole pipeline for text.
func (c *Client) Run(ctx context.Context, text string) RunResult {
	start := time.Now()
	run := c.pipeline.Run(ctx, text)
	c.obs.observe("run", start, len(run.Products), nil)

	return RunResult{
		ID:             run.ID,
		Query:          queryFromDomain(run.Query),
		Products:       productsFromDomain(run.Products),
		Recommendation: recommendationFromDomain(run.Recommendation),
	}
}

// Steps returns the recorded pipeline steps, oldest first.
func (c *Client) Steps(ctx context.Context) ([]Step, error) {
	entries, err := c.processLog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("steps: %w", err)
	}
	out := make([]Step, len(entries))
	for i, e := range entries {
		out[i] = Step{Time: e.Timestamp, Name: e.Step, Data: e.Data}
	}
	return out, nil
}

// ClearSteps drops the recorded pipeline steps.
func (c *Client) ClearSteps(ctx context.Context) error {
	if err := c.processLog.Clear(ctx); err != nil {
		return fmt.Errorf("clear steps: %w", err)
	}
	return nil
}
