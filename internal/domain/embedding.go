package domain

import "context"

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Embedding is a query or document vector as seen by retrieval.
// When the provider failed, Vector is ZeroVector(dim) and Reason is set.
type Embedding struct {
	Vector []float32
	Reason error
}

// Degraded reports whether the vector is the zero-vector fallback.
func (e Embedding) Degraded() bool {
	return e.Reason != nil
}

// ZeroVector returns the all-zero vector of the given dimension.
func ZeroVector(dim int) []float32 {
	if dim <= 0 {
		return nil
	}
	return make([]float32, dim)
}

// IsZeroVector reports whether every component of v is zero (true for empty v).
func IsZeroVector(v []float32) bool {
	for _, f := range v {
		if f != 0 {
			return false
		}
	}
	return true
}
