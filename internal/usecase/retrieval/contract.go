package retrieval

import (
	"context"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// Corpus supplies a user's most recent records, newest first.
type Corpus interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.Record, error)
}

// Embedder vectorizes the query. It never fails; a degraded result carries a Reason.
type Embedder interface {
	Embed(ctx context.Context, text string) domain.Embedding
}

// VectorIndex answers nearest-neighbour queries in a user's namespace.
type VectorIndex interface {
	Query(ctx context.Context, userID string, vector []float32, topK int) domain.Branch
}
