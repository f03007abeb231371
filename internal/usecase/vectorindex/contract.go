package vectorindex

import (
	"context"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// Backend is a concrete vector store. Implementations scope every call to namespace.
type Backend interface {
	// EnsureIndex creates the index for dim-sized cosine vectors if it is absent.
	// An index that already exists is not an error.
	EnsureIndex(ctx context.Context, dim int) error
	// Upsert stores vector under id, overwriting any previous value.
	Upsert(ctx context.Context, namespace, id string, vector []float32, metadata map[string]string) error
	// Query returns up to topK nearest documents, best first.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Document, error)
	Ping(ctx context.Context) error
}
