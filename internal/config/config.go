package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Process-log drivers.
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config holds the shopsense API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
	Marketplace MarketplaceConfig `yaml:"marketplace"`
	Breaker     BreakerConfig     `yaml:"breaker"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	ProcessLog  ProcessLogConfig  `yaml:"process_log"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// MarketplaceConfig holds live acquisition settings.
type MarketplaceConfig struct {
	Live                bool     `yaml:"live"` // false serves the synthetic catalog only
	BaseURL             string   `yaml:"base_url"`
	SearchPath          string   `yaml:"search_path"`
	UserAgent           string   `yaml:"user_agent"`
	Headless            *bool    `yaml:"headless"`
	MaxSessions         int      `yaml:"max_sessions"`
	NavigationTimeoutMs int      `yaml:"navigation_timeout_ms"`
	PrimaryWaitMs       int      `yaml:"primary_wait_ms"`
	SecondaryWaitMs     int      `yaml:"secondary_wait_ms"`
	ReadyWaitMs         int      `yaml:"ready_wait_ms"`
	QueueWaitMs         int      `yaml:"queue_wait_ms"` // rate limiter and browser slot waits
	MaxCards            int      `yaml:"max_cards"`
	RatePerSecond       float64  `yaml:"rate_per_second"`
	Burst               int      `yaml:"burst"`
	BrowserArgs         []string `yaml:"browser_args"`
}

// BreakerConfig tunes the circuit breaker around live acquisition.
type BreakerConfig struct {
	MaxRequests  uint32  `yaml:"max_requests"`
	IntervalSec  int     `yaml:"interval_sec"`
	TimeoutSec   int     `yaml:"timeout_sec"`
	MinRequests  uint32  `yaml:"min_requests"`
	FailureRatio float64 `yaml:"failure_ratio"`
}

// ScoringConfig holds ranking weights. An absent section means defaults.
type ScoringConfig struct {
	Rating            float64 `yaml:"rating"`
	BudgetFit         float64 `yaml:"budget_fit"`
	OverBudgetPenalty float64 `yaml:"over_budget_penalty"`
	TitleMatch        float64 `yaml:"title_match"`
	FeatureMatch      float64 `yaml:"feature_match"`
	ReviewExcellent   float64 `yaml:"review_excellent"`
	ReviewGood        float64 `yaml:"review_good"`
	ReviewAverage     float64 `yaml:"review_average"`
	BrandMatch        float64 `yaml:"brand_match"`
}

// ProcessLogConfig selects and configures the process-log sink.
type ProcessLogConfig struct {
	Driver           string   `yaml:"driver"` // memory, redis (default: memory)
	Capacity         int      `yaml:"capacity"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Key              string   `yaml:"key"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes YAML, expands ${VAR} references, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	c.applyHTTPDefaults()
	c.applyMarketplaceDefaults()
	c.applyBreakerDefaults()

	if c.Scoring == (ScoringConfig{}) {
		c.Scoring = ScoringConfig{
			Rating:            10,
			BudgetFit:         30,
			OverBudgetPenalty: 50,
			TitleMatch:        15,
			FeatureMatch:      20,
			ReviewExcellent:   25,
			ReviewGood:        15,
			ReviewAverage:     5,
			BrandMatch:        25,
		}
	}

	if c.ProcessLog.Driver == "" {
		c.ProcessLog.Driver = DriverMemory
	}
	if c.ProcessLog.Capacity <= 0 {
		c.ProcessLog.Capacity = 100
	}
	if c.ProcessLog.Key == "" {
		c.ProcessLog.Key = "shopsense:process_log"
	}
	if c.ProcessLog.ReadinessTimeout <= 0 {
		c.ProcessLog.ReadinessTimeout = 10
	}
}

func (c *Config) applyHTTPDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	// A full run may spend the whole navigation and wait budget in acquisition.
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 90
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.CORSOrigins) == 0 {
		c.HTTP.CORSOrigins = []string{"*"}
	}
}

func (c *Config) applyMarketplaceDefaults() {
	m := &c.Marketplace
	if m.BaseURL == "" {
		m.BaseURL = "https://www.flipkart.com"
	}
	if m.SearchPath == "" {
		m.SearchPath = "/search"
	}
	if m.Headless == nil {
		headless := true
		m.Headless = &headless
	}
	if m.MaxSessions <= 0 {
		m.MaxSessions = 4
	}
	if m.NavigationTimeoutMs <= 0 {
		m.NavigationTimeoutMs = 30000
	}
	if m.PrimaryWaitMs <= 0 {
		m.PrimaryWaitMs = 10000
	}
	if m.SecondaryWaitMs <= 0 {
		m.SecondaryWaitMs = 5000
	}
	if m.ReadyWaitMs <= 0 {
		m.ReadyWaitMs = 3000
	}
	if m.QueueWaitMs <= 0 {
		m.QueueWaitMs = 5000
	}
	if m.MaxCards <= 0 {
		m.MaxCards = 15
	}
	if m.RatePerSecond <= 0 {
		m.RatePerSecond = 0.5
	}
	if m.Burst <= 0 {
		m.Burst = 2
	}
}

func (c *Config) applyBreakerDefaults() {
	b := &c.Breaker
	if b.MaxRequests == 0 {
		b.MaxRequests = 1
	}
	if b.IntervalSec <= 0 {
		b.IntervalSec = 60
	}
	if b.TimeoutSec <= 0 {
		b.TimeoutSec = 30
	}
	if b.MinRequests == 0 {
		b.MinRequests = 5
	}
	if b.FailureRatio == 0 {
		b.FailureRatio = 0.6
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	m := c.Marketplace
	waits := []struct {
		name string
		ms   int
	}{
		{"primary_wait_ms", m.PrimaryWaitMs},
		{"secondary_wait_ms", m.SecondaryWaitMs},
		{"ready_wait_ms", m.ReadyWaitMs},
		{"queue_wait_ms", m.QueueWaitMs},
	}
	for _, w := range waits {
		if w.ms > m.NavigationTimeoutMs {
			return fmt.Errorf(
				"marketplace.%s (%d) must not exceed navigation_timeout_ms (%d)",
				w.name, w.ms, m.NavigationTimeoutMs,
			)
		}
	}

	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("breaker.failure_ratio must be in (0, 1], got %v", c.Breaker.FailureRatio)
	}

	if err := c.Scoring.validate(); err != nil {
		return err
	}

	switch c.ProcessLog.Driver {
	case DriverMemory:
	case DriverRedis:
		if len(c.ProcessLog.Addrs) == 0 {
			return fmt.Errorf("process_log.addrs is required for driver %q", DriverRedis)
		}
	default:
		return fmt.Errorf(
			"process_log.driver must be %q or %q, got %q",
			DriverMemory, DriverRedis, c.ProcessLog.Driver,
		)
	}
	return nil
}

func (s ScoringConfig) validate() error {
	weights := []struct {
		name string
		v    float64
	}{
		{"rating", s.Rating},
		{"budget_fit", s.BudgetFit},
		{"over_budget_penalty", s.OverBudgetPenalty},
		{"title_match", s.TitleMatch},
		{"feature_match", s.FeatureMatch},
		{"review_excellent", s.ReviewExcellent},
		{"review_good", s.ReviewGood},
		{"review_average", s.ReviewAverage},
		{"brand_match", s.BrandMatch},
	}
	for _, w := range weights {
		if w.v < 0 {
			return fmt.Errorf("scoring.%s must not be negative, got %v", w.name, w.v)
		}
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
