// Package qdrant is a vector backend over a Qdrant collection,
// isolating namespaces with a keyword payload filter.
package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

const (
	payloadNamespace = "namespace"
	payloadID        = "id"
	payloadText      = "text"
)

// pointSpace seeds UUIDv5 point ids so that (namespace, id) always maps to the same point.
var pointSpace = uuid.MustParse("5b8e1f0c-3a57-4b9e-9f42-6d1c2e7a8b90")

// client is the subset of *qdrant.Client used here.
type client interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, req *qdrant.CreateCollection) error
	CreateFieldIndex(ctx context.Context, req *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)
	Upsert(ctx context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
}

// Config holds Qdrant connection settings.
type Config struct {
	Host       string
	Port       int
	APIKey     string
	UseTLS     bool
	Collection string
}

// Store implements vectorindex.Backend on Qdrant.
type Store struct {
	client     client
	closer     func() error
	collection string
}

// New dials Qdrant over gRPC. The connection is lazy; the first call surfaces failures.
func New(cfg Config) (*Store, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("qdrant host is required")
	}
	if cfg.Collection == "" {
		cfg.Collection = "mindrecall"
	}
	c, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}
	return &Store{client: c, closer: c.Close, collection: cfg.Collection}, nil
}

// Close releases the gRPC connection.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

// EnsureIndex creates the cosine collection and the namespace payload index if absent.
func (s *Store) EnsureIndex(ctx context.Context, dim int) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("collection exists %s: %w", s.collection, err)
	}
	if exists {
		return nil
	}

	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(dim), //nolint:gosec // dim validated positive by the caller
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("create collection %s: %w", s.collection, err)
	}

	_, err = s.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
		CollectionName: s.collection,
		FieldName:      payloadNamespace,
		FieldType:      qdrant.PtrOf(qdrant.FieldType_FieldTypeKeyword),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil && status.Code(err) != codes.AlreadyExists {
		return fmt.Errorf("create namespace index: %w", err)
	}
	return nil
}

// Upsert writes a single point; re-upserting the same id overwrites it.
func (s *Store) Upsert(ctx context.Context, namespace, id string, vector []float32, metadata map[string]string) error {
	payload := make(map[string]*qdrant.Value, len(metadata)+2)
	for k, v := range metadata {
		payload[k] = stringValue(v)
	}
	payload[payloadNamespace] = stringValue(namespace)
	payload[payloadID] = stringValue(id)

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Wait:           qdrant.PtrOf(true),
		Points: []*qdrant.PointStruct{{
			Id:      qdrant.NewIDUUID(PointID(namespace, id)),
			Vectors: qdrant.NewVectors(vector...),
			Payload: payload,
		}},
	})
	if err != nil {
		return fmt.Errorf("upsert point %s: %w", id, err)
	}
	return nil
}

// Query searches points whose namespace payload equals namespace.
func (s *Store) Query(ctx context.Context, namespace string, vector []float32, topK int) ([]domain.Document, error) {
	points, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          qdrant.PtrOf(uint64(topK)), //nolint:gosec // topK > 0
		WithPayload:    qdrant.NewWithPayload(true),
		Filter:         &qdrant.Filter{Must: []*qdrant.Condition{keywordMatch(payloadNamespace, namespace)}},
	})
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", namespace, err)
	}

	docs := make([]domain.Document, 0, len(points))
	for _, p := range points {
		docs = append(docs, domain.Document{
			ID:    payloadString(p.GetPayload(), payloadID),
			Text:  payloadString(p.GetPayload(), payloadText),
			Score: float64(p.GetScore()),
		})
	}
	return docs, nil
}

// Ping runs the Qdrant health check.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("qdrant health: %w", err)
	}
	return nil
}

// PointID derives the deterministic UUIDv5 point id for (namespace, id).
func PointID(namespace, id string) string {
	return uuid.NewSHA1(pointSpace, []byte(namespace+"/"+id)).String()
}

func stringValue(v string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func keywordMatch(key, value string) *qdrant.Condition {
	return &qdrant.Condition{
		ConditionOneOf: &qdrant.Condition_Field{
			Field: &qdrant.FieldCondition{
				Key:   key,
				Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: value}},
			},
		},
	}
}
