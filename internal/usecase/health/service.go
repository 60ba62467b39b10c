package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component is failing.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
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
	ComponentDatabase   = "database"
	ComponentAIProvider = "ai_provider"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

const defaultCheckTimeout = 3 * time.Second

// Service coordinates health checks.
type Service struct {
	db      DBPinger
	ai      AIChecker
	timeout time.Duration
}

// New creates a Service. ai can be nil when no provider is configured.
func New(db DBPinger, ai AIChecker) *Service {
	return &Service{db: db, ai: ai, timeout: defaultCheckTimeout}
}

// WithTimeout bounds each component check.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

// Check runs the component checks concurrently, each under its own timeout.
// A database failure makes the report unhealthy; an AI provider failure only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	var dbErr, aiErr error
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		dbErr = s.probe(ctx, s.db.Ping)
	}()
	if s.ai != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			aiErr = s.probe(ctx, s.ai.HealthCheck)
		}()
	}
	wg.Wait()

	checks := map[string]CheckResult{ComponentDatabase: result(dbErr)}
	status := Healthy
	if s.ai != nil {
		checks[ComponentAIProvider] = result(aiErr)
		if aiErr != nil {
			status = Degraded
		}
	}
	if dbErr != nil {
		status = Unhealthy
	}
	return Report{Status: status, Checks: checks}
}

func (s *Service) probe(ctx context.Context, check func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return check(ctx)
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
