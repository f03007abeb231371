package mood

import (
	"context"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// Repository persists mood records.
type Repository interface {
	Save(ctx context.Context, rec domain.Record) error
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.Record, error)
}

// Embedder vectorizes record text. It never fails; a degraded result carries a Reason.
type Embedder interface {
	Embed(ctx context.Context, text string) domain.Embedding
}

// VectorIndex stores record vectors in the user's namespace.
type VectorIndex interface {
	Upsert(ctx context.Context, userID string, vector []float32, metadata map[string]string) error
}
