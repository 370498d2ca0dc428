package health

import "context"

// StorePinger checks catalog store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// ModelChecker checks embedding provider availability.
type ModelChecker interface {
	HealthCheck(ctx context.Context) error
}
