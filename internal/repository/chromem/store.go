// Package chromem is an in-process vector backend over chromem-go,
// one collection per namespace. Used for local runs and tests.
package chromem

import (
	"context"
	"errors"
	"fmt"

	"github.com/philippgille/chromem-go"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

var errNoEmbedding = errors.New("chromem: documents must carry precomputed embeddings")

// Store implements vectorindex.Backend in memory.
type Store struct {
	db  *chromem.DB
	dim int
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{db: chromem.NewDB()}
}

// NewPersistent creates a store persisted under path (gzip-compressed when compress is set).
func NewPersistent(path string, compress bool) (*Store, error) {
	db, err := chromem.NewPersistentDB(path, compress)
	if err != nil {
		return nil, fmt.Errorf("open chromem db %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// embedFunc is never called: every document and query brings its own vector.
func embedFunc(context.Context, string) ([]float32, error) {
	return nil, errNoEmbedding
}

// EnsureIndex records the dimension; collections are created lazily per namespace.
func (s *Store) EnsureIndex(_ context.Context, dim int) error {
	if dim <= 0 {
		return fmt.Errorf("dimension must be positive, got %d", dim)
	}
	s.dim = dim
	return nil
}

// Upsert adds or replaces the document id in the namespace collection.
func (s *Store) Upsert(ctx context.Context, namespace, id string, vector []float32, metadata map[string]string) error {
	if s.dim > 0 && len(vector) != s.dim {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(vector), s.dim)
	}
	col, err := s.db.GetOrCreateCollection(namespace, nil, embedFunc)
	if err != nil {
		return fmt.Errorf("collection %s: %w", namespace, err)
	}

	md := make(map[string]string, len(metadata))
	for k, v := range metadata {
		md[k] = v
	}
	err = col.AddDocument(ctx, chromem.Document{
		ID:        id,
		Metadata:  md,
		Embedding: vector,
		Content:   metadata["text"],
	})
	if err != nil {
		return fmt.Errorf("add document %s: %w", id, err)
	}
	return nil
}

// Query searches only the namespace collection. An unknown or empty namespace yields no documents.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Document, error) {
	col := s.db.GetCollection(namespace, embedFunc)
	if col == nil {
		return nil, nil
	}

	// chromem requires nResults <= doc count
	n := col.Count()
	if n == 0 || topK <= 0 {
		return nil, nil
	}
	topK = min(topK, n)

	results, err := col.QueryEmbedding(ctx, vector, topK, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", namespace, err)
	}

	docs := make([]domain.Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, domain.Document{
			ID:    r.ID,
			Text:  r.Content,
			Score: float64(r.Similarity),
		})
	}
	return docs, nil
}

// Ping always succeeds for the in-process store.
func (s *Store) Ping(context.Context) error { return nil }
