package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// AIChecker checks AI provider reachability.
type AIChecker interface {
	HealthCheck(ctx context.Context) error
}
