package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. Recommendations are still served,
	// possibly from the synthetic catalog.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names reported in Report.Checks.
const (
	ComponentProcessLog  = "process_log"
	ComponentBrowser     = "browser"
	ComponentMarketplace = "marketplace"
)

const breakerOpen = "open"

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	processLog Pinger
	browser    Pinger
	breaker    BreakerReporter
}

// New creates a Service. browser and breaker can be nil when live
// acquisition is disabled.
func New(processLog Pinger, browser Pinger, breaker BreakerReporter) *Service {
	return &Service{processLog: processLog, browser: browser, breaker: breaker}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	checks[ComponentProcessLog] = pingResult(ctx, s.processLog)

	if s.browser != nil {
		checks[ComponentBrowser] = pingResult(ctx, s.browser)
	}

	if s.breaker != nil {
		if s.breaker.BreakerState() == breakerOpen {
			checks[ComponentMarketplace] = CheckError
		} else {
			checks[ComponentMarketplace] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func pingResult(ctx context.Context, p Pinger) CheckResult {
	if err := p.Ping(ctx); err != nil {
		return CheckError
	}
	return CheckOK
}
