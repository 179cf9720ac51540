package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/kailas-cloud/shopsense/internal/config"
	dbRedis "github.com/kailas-cloud/shopsense/internal/db/redis"
	logpkg "github.com/kailas-cloud/shopsense/internal/logger"
	"github.com/kailas-cloud/shopsense/internal/metrics"
	processlogrepo "github.com/kailas-cloud/shopsense/internal/repository/processlog"
	"github.com/kailas-cloud/shopsense/internal/transport/browser"
	chiTransport "github.com/kailas-cloud/shopsense/internal/transport/chi"
	"github.com/kailas-cloud/shopsense/internal/usecase/acquire"
	healthuc "github.com/kailas-cloud/shopsense/internal/usecase/health"
	"github.com/kailas-cloud/shopsense/internal/usecase/interpret"
	pipelineuc "github.com/kailas-cloud/shopsense/internal/usecase/pipeline"
	processloguc "github.com/kailas-cloud/shopsense/internal/usecase/processlog"
	"github.com/kailas-cloud/shopsense/internal/usecase/recommend"
	"github.com/kailas-cloud/shopsense/internal/usecase/structure"
	"github.com/kailas-cloud/shopsense/internal/version"
)

// processLogSink is what the process log and the health check need from a sink.
type processLogSink interface {
	processloguc.Sink
	healthuc.Pinger
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting shopsense API server",
		zap.String("version", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Bool("live_acquisition", cfg.Marketplace.Live),
		zap.String("process_log_driver", cfg.ProcessLog.Driver),
	)

	ctx := context.Background()

	sink, closeSink := buildProcessLogSink(ctx, cfg.ProcessLog, logger)
	defer closeSink()
	processLog := processloguc.New(sink)

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Pass a nil interface (not a typed nil *browser.Pool) when live
	// acquisition is off: acquire treats a nil Browser as synthetic-only.
	var (
		acquireBrowser acquire.Browser
		browserPinger  healthuc.Pinger
		breaker        healthuc.BreakerReporter
	)
	var pool *browser.Pool
	if cfg.Marketplace.Live {
		pool, err = browser.New(browserConfig(cfg.Marketplace), logger)
		if err != nil {
			// Degrade to the synthetic catalog instead of refusing to start.
			logger.Warn("Browser unavailable, serving synthetic catalog only", zap.Error(err))
		} else {
			defer pool.Close()
			acquireBrowser = pool
			browserPinger = pool
		}
	}

	limiter := rate.NewLimiter(rate.Limit(cfg.Marketplace.RatePerSecond), cfg.Marketplace.Burst)
	acquirer := acquire.New(acquireConfig(cfg), acquireBrowser, limiter, acquire.Metrics{
		Attempts:           metrics.AcquisitionAttemptsTotal,
		Fallbacks:          metrics.AcquisitionFallbacksTotal,
		WaitTiers:          metrics.AcquisitionWaitTiersTotal,
		Extracted:          metrics.AcquisitionExtractedTotal,
		Duration:           metrics.AcquisitionDuration,
		BreakerState:       metrics.CircuitBreakerState,
		BreakerTransitions: metrics.CircuitBreakerTransitionsTotal,
	}, logger)
	if acquireBrowser != nil {
		breaker = acquirer
	}

	weights := weightsFromConfig(cfg.Scoring)
	if err := weights.Validate(); err != nil {
		logger.Fatal("Invalid scoring weights", zap.Error(err))
	}

	pipeline := pipelineuc.New(
		interpret.New(),
		acquirer,
		structure.New(),
		recommend.New(weights),
		processLog,
		metrics.StageDuration,
	)

	healthSvc := healthuc.New(sink, browserPinger, breaker)

	server := chiTransport.NewServer(pipeline, processLog, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.HTTP.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildProcessLogSink creates the configured sink and its cleanup.
func buildProcessLogSink(
	ctx context.Context, cfg config.ProcessLogConfig, logger *zap.Logger,
) (processLogSink, func()) {
	switch cfg.Driver {
	case config.DriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create process log store", zap.Error(err))
		}
		if err := store.WaitForReady(ctx, time.Duration(cfg.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Process log store not ready", zap.Error(err))
		}
		logger.Info("Connected to process log store", zap.Strings("addrs", cfg.Addrs))
		sink := processlogrepo.NewRedisSink(store, cfg.Key, cfg.Capacity, time.Duration(cfg.TTLSec)*time.Second)
		return sink, store.Close
	default:
		return processlogrepo.NewMemorySink(cfg.Capacity), func() {}
	}
}

func acquireConfig(cfg config.Config) acquire.Config {
	m, b := cfg.Marketplace, cfg.Breaker
	return acquire.Config{
		BaseURL:           m.BaseURL,
		SearchPath:        m.SearchPath,
		NavigationTimeout: time.Duration(m.NavigationTimeoutMs) * time.Millisecond,
		PrimaryWait:       time.Duration(m.PrimaryWaitMs) * time.Millisecond,
		SecondaryWait:     time.Duration(m.SecondaryWaitMs) * time.Millisecond,
		ReadyWait:         time.Duration(m.ReadyWaitMs) * time.Millisecond,
		QueueWait:         time.Duration(m.QueueWaitMs) * time.Millisecond,
		MaxCards:          m.MaxCards,
		Breaker: acquire.BreakerSettings{
			MaxRequests:  b.MaxRequests,
			Interval:     time.Duration(b.IntervalSec) * time.Second,
			Timeout:      time.Duration(b.TimeoutSec) * time.Second,
			MinRequests:  b.MinRequests,
			FailureRatio: b.FailureRatio,
		},
	}
}

func browserConfig(m config.MarketplaceConfig) browser.Config {
	bc := browser.DefaultConfig()
	bc.Headless = *m.Headless
	bc.MaxSessions = m.MaxSessions
	bc.SlotWait = time.Duration(m.QueueWaitMs) * time.Millisecond
	if m.UserAgent != "" {
		bc.UserAgent = m.UserAgent
	}
	if len(m.BrowserArgs) > 0 {
		bc.LaunchArgs = m.BrowserArgs
	}
	return bc
}

func weightsFromConfig(s config.ScoringConfig) recommend.Weights {
	return recommend.Weights{
		Rating:            s.Rating,
		BudgetFit:         s.BudgetFit,
		OverBudgetPenalty: s.OverBudgetPenalty,
		TitleMatch:        s.TitleMatch,
		FeatureMatch:      s.FeatureMatch,
		ReviewExcellent:   s.ReviewExcellent,
		ReviewGood:        s.ReviewGood,
		ReviewAverage:     s.ReviewAverage,
		BrandMatch:        s.BrandMatch,
	}
}

// jsonRecoverer is a recovery middleware that returns the JSON envelope instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"message": "Internal server error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
