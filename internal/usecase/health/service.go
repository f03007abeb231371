package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates that retrieval runs with at least one branch missing.
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
	// CheckDisabled marks an optional component that is not configured.
	CheckDisabled CheckResult = "disabled"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	embedding EmbeddingChecker
	vector    VectorIndexPinger
}

// New creates a Service. embedding and vector can be nil.
func New(db DBPinger, embedding EmbeddingChecker, vector VectorIndexPinger) *Service {
	return &Service{db: db, embedding: embedding, vector: vector}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 3)

	checks["database"] = probe(s.db.Ping(ctx))

	if s.embedding != nil {
		checks["embedding"] = probe(s.embedding.HealthCheck(ctx))
	} else {
		checks["embedding"] = CheckDisabled
	}

	if s.vector != nil && s.vector.Configured() {
		checks["vector_index"] = probe(s.vector.Ping(ctx))
	} else {
		checks["vector_index"] = CheckDisabled
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["database"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func probe(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
