package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 8080}}
	cfg.ApplyDefaults()

	m := cfg.Marketplace
	if m.BaseURL != "https://www.flipkart.com" || m.SearchPath != "/search" {
		t.Errorf("unexpected marketplace target: %s%s", m.BaseURL, m.SearchPath)
	}
	if m.NavigationTimeoutMs != 30000 || m.PrimaryWaitMs != 10000 ||
		m.SecondaryWaitMs != 5000 || m.ReadyWaitMs != 3000 || m.QueueWaitMs != 5000 {
		t.Errorf("unexpected timeouts: %+v", m)
	}
	if m.MaxCards != 15 {
		t.Errorf("MaxCards = %d, want 15", m.MaxCards)
	}
	if m.Headless == nil || !*m.Headless {
		t.Error("expected headless by default")
	}
	if m.Live {
		t.Error("live acquisition must be opt-in")
	}

	b := cfg.Breaker
	if b.MaxRequests != 1 || b.IntervalSec != 60 || b.TimeoutSec != 30 ||
		b.MinRequests != 5 || b.FailureRatio != 0.6 {
		t.Errorf("unexpected breaker defaults: %+v", b)
	}

	want := ScoringConfig{
		Rating: 10, BudgetFit: 30, OverBudgetPenalty: 50,
		TitleMatch: 15, FeatureMatch: 20,
		ReviewExcellent: 25, ReviewGood: 15, ReviewAverage: 5,
		BrandMatch: 25,
	}
	if cfg.Scoring != want {
		t.Errorf("Scoring = %+v, want %+v", cfg.Scoring, want)
	}

	if cfg.ProcessLog.Driver != DriverMemory || cfg.ProcessLog.Capacity != 100 {
		t.Errorf("unexpected process log defaults: %+v", cfg.ProcessLog)
	}
	if len(cfg.HTTP.CORSOrigins) != 1 || cfg.HTTP.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v", cfg.HTTP.CORSOrigins)
	}
}

func TestApplyDefaults_KeepsExplicitValues(t *testing.T) {
	headed := false
	cfg := Config{
		HTTP: HTTPConfig{Port: 9000, WriteTimeoutSec: 5},
		Marketplace: MarketplaceConfig{
			Headless: &headed,
			MaxCards: 3,
		},
		Scoring:    ScoringConfig{Rating: 1},
		ProcessLog: ProcessLogConfig{Capacity: 7},
	}
	cfg.ApplyDefaults()

	if *cfg.Marketplace.Headless {
		t.Error("explicit headless=false overwritten")
	}
	if cfg.Marketplace.MaxCards != 3 {
		t.Errorf("MaxCards = %d, want 3", cfg.Marketplace.MaxCards)
	}
	if cfg.HTTP.WriteTimeoutSec != 5 {
		t.Errorf("WriteTimeoutSec = %d, want 5", cfg.HTTP.WriteTimeoutSec)
	}
	// A present scoring section is taken as-is.
	if cfg.Scoring.Rating != 1 || cfg.Scoring.BudgetFit != 0 {
		t.Errorf("Scoring = %+v", cfg.Scoring)
	}
	if cfg.ProcessLog.Capacity != 7 {
		t.Errorf("Capacity = %d, want 7", cfg.ProcessLog.Capacity)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults",
			mutate: func(*Config) {},
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.HTTP.Port = 70000 },
			wantErr: "http.port must be between 1 and 65535",
		},
		{
			name:    "wait exceeds navigation",
			mutate:  func(c *Config) { c.Marketplace.PrimaryWaitMs = 40000 },
			wantErr: "marketplace.primary_wait_ms (40000) must not exceed navigation_timeout_ms (30000)",
		},
		{
			name:    "queue wait exceeds navigation",
			mutate:  func(c *Config) { c.Marketplace.QueueWaitMs = 31000 },
			wantErr: "marketplace.queue_wait_ms (31000) must not exceed navigation_timeout_ms (30000)",
		},
		{
			name:    "failure ratio above one",
			mutate:  func(c *Config) { c.Breaker.FailureRatio = 1.5 },
			wantErr: "breaker.failure_ratio must be in (0, 1]",
		},
		{
			name:    "negative weight",
			mutate:  func(c *Config) { c.Scoring.BrandMatch = -1 },
			wantErr: "scoring.brand_match must not be negative",
		},
		{
			name:    "unknown driver",
			mutate:  func(c *Config) { c.ProcessLog.Driver = "postgres" },
			wantErr: `process_log.driver must be "memory" or "redis", got "postgres"`,
		},
		{
			name:    "redis without addrs",
			mutate:  func(c *Config) { c.ProcessLog.Driver = DriverRedis },
			wantErr: "process_log.addrs is required",
		},
		{
			name: "redis with addrs",
			mutate: func(c *Config) {
				c.ProcessLog.Driver = DriverRedis
				c.ProcessLog.Addrs = []string{"localhost:6379"}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want substring %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("SHOPSENSE_TEST_PORT", "9191")

	data := []byte(`
http:
  port: ${SHOPSENSE_TEST_PORT}
marketplace:
  live: ${SHOPSENSE_TEST_LIVE:-true}
process_log:
  driver: ${SHOPSENSE_TEST_DRIVER:-memory}
`)
	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.HTTP.Port)
	}
	if !cfg.Marketplace.Live {
		t.Error("expected live from default expansion")
	}
	if cfg.ProcessLog.Driver != DriverMemory {
		t.Errorf("Driver = %q", cfg.ProcessLog.Driver)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http:\n  port: 0\n")); err == nil {
		t.Fatal("expected validation error for port 0")
	}
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected yaml error")
	}
}
