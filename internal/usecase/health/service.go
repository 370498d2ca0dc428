// Package health aggregates readiness checks over the service dependencies.
package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
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

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store StorePinger
	model ModelChecker
}

// New creates a Service. model can be nil.
func New(store StorePinger, model ModelChecker) *Service {
	return &Service{store: store, model: model}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.store.Ping(ctx); err != nil {
		checks["store"] = CheckError
	} else {
		checks["store"] = CheckOK
	}

	if s.model != nil {
		if err := s.model.HealthCheck(ctx); err != nil {
			checks["model"] = CheckError
		} else {
			checks["model"] = CheckOK
		}
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks):
		if failed > 0 {
			status = Unhealthy
		}
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
