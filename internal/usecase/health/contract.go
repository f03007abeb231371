package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// VectorIndexPinger checks vector index reachability and reports whether one is configured.
type VectorIndexPinger interface {
	Configured() bool
	Ping(ctx context.Context) error
}
