package vector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/mindrecall/internal/db"
	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// IndexName is the single FT index covering every namespace.
const IndexName = domain.KeyPrefix + "vec:idx"

const (
	keyPrefix      = domain.KeyPrefix + "vec:"
	fieldNamespace = "namespace"
	fieldText      = "text"
	fieldVector    = "__vector"
)

// store is the consumer interface for vector storage (ISP).
type store interface {
	Ping(ctx context.Context) error
	HSet(ctx context.Context, key string, fields map[string]string) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// HNSWConfig holds HNSW index parameters; zero values use server defaults.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements vectorindex.Backend on Redis FT.
type Repo struct {
	store store
	hnsw  HNSWConfig
}

// New creates a Redis-backed vector repository.
func New(s store, hnsw HNSWConfig) *Repo {
	return &Repo{store: s, hnsw: hnsw}
}

// EnsureIndex creates the FT index if absent.
func (r *Repo) EnsureIndex(ctx context.Context, dim int) error {
	exists, err := r.store.IndexExists(ctx, IndexName)
	if err != nil {
		return fmt.Errorf("index exists %s: %w", IndexName, err)
	}
	if exists {
		return nil
	}

	def, err := buildIndex(dim, r.hnsw)
	if err != nil {
		return err
	}
	if err := r.store.CreateIndex(ctx, def); err != nil {
		if errors.Is(err, db.ErrIndexExists) {
			return nil
		}
		return fmt.Errorf("create index %s: %w", IndexName, err)
	}
	return nil
}

// Upsert writes the vector hash for id in namespace, overwriting any previous one.
func (r *Repo) Upsert(ctx context.Context, namespace, id string, vector []float32, metadata map[string]string) error {
	key := vectorKey(namespace, id)
	if err := r.store.HSet(ctx, key, buildHashFields(namespace, vector, metadata)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}
	return nil
}

// Query runs a namespace-filtered KNN search.
func (r *Repo) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Document, error) {
	sr, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    IndexName,
		TagFilters:   map[string]string{fieldNamespace: namespace},
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{fieldText},
	})
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", namespace, err)
	}
	return parseResults(sr, namespace), nil
}

// Ping checks connectivity of the underlying store.
func (r *Repo) Ping(ctx context.Context) error {
	return r.store.Ping(ctx) //nolint:wrapcheck // store errors are already db.Error
}

func buildIndex(dim int, hnsw HNSWConfig) (*db.IndexDefinition, error) {
	def, err := db.NewIndex(IndexName).
		Prefix(keyPrefix).
		Tag(fieldNamespace).
		VectorHNSW(fieldVector, "vector", dim, db.DistanceCosine, hnsw.M, hnsw.EFConstruct).
		Build()
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	return def, nil
}

func vectorKey(namespace, id string) string {
	return keyPrefix + namespace + ":" + id
}

func parseResults(sr *db.SearchResult, namespace string) []domain.Document {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}
	prefix := keyPrefix + namespace + ":"
	docs := make([]domain.Document, 0, len(sr.Entries))
	for _, e := range sr.Entries {
		docs = append(docs, domain.Document{
			ID:    strings.TrimPrefix(e.Key, prefix),
			Text:  e.Fields[fieldText],
			Score: e.Score,
		})
	}
	return docs
}
