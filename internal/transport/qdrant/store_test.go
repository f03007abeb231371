package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type fakeClient struct {
	exists        bool
	existsErr     error
	createErr     error
	fieldIndexErr error
	queryPoints   []*qdrant.ScoredPoint
	healthErr     error

	created    *qdrant.CreateCollection
	fieldIndex *qdrant.CreateFieldIndexCollection
	upserted   *qdrant.UpsertPoints
	queried    *qdrant.QueryPoints
}

func (f *fakeClient) CollectionExists(context.Context, string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeClient) CreateCollection(_ context.Context, req *qdrant.CreateCollection) error {
	f.created = req
	return f.createErr
}

func (f *fakeClient) CreateFieldIndex(_ context.Context, req *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error) {
	f.fieldIndex = req
	return &qdrant.UpdateResult{}, f.fieldIndexErr
}

func (f *fakeClient) Upsert(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
	f.upserted = req
	return &qdrant.UpdateResult{}, nil
}

func (f *fakeClient) Query(_ context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.queried = req
	return f.queryPoints, nil
}

func (f *fakeClient) HealthCheck(context.Context) (*qdrant.HealthCheckReply, error) {
	return &qdrant.HealthCheckReply{}, f.healthErr
}

func newTestStore(f *fakeClient) *Store {
	return &Store{client: f, collection: "mindrecall"}
}

func TestNew_RequiresHost(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error for empty host")
	}
}

func TestEnsureIndex_CreatesCollectionAndPayloadIndex(t *testing.T) {
	f := &fakeClient{}
	if err := newTestStore(f).EnsureIndex(context.Background(), 1536); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.created == nil || f.created.GetCollectionName() != "mindrecall" {
		t.Fatalf("collection not created: %+v", f.created)
	}
	params := f.created.GetVectorsConfig().GetParams()
	if params.GetSize() != 1536 || params.GetDistance() != qdrant.Distance_Cosine {
		t.Errorf("unexpected vector params %+v", params)
	}
	if f.fieldIndex == nil || f.fieldIndex.GetFieldName() != "namespace" {
		t.Errorf("namespace payload index missing: %+v", f.fieldIndex)
	}
}

func TestEnsureIndex_Existing(t *testing.T) {
	f := &fakeClient{exists: true}
	if err := newTestStore(f).EnsureIndex(context.Background(), 4); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.created != nil {
		t.Error("existing collection must not be recreated")
	}
}

func TestEnsureIndex_AlreadyExistsRace(t *testing.T) {
	f := &fakeClient{createErr: status.Error(codes.AlreadyExists, "exists"), fieldIndexErr: status.Error(codes.AlreadyExists, "exists")}
	if err := newTestStore(f).EnsureIndex(context.Background(), 4); err != nil {
		t.Fatalf("AlreadyExists must count as success, got %v", err)
	}
}

func TestEnsureIndex_Errors(t *testing.T) {
	f := &fakeClient{existsErr: errors.New("unavailable")}
	if err := newTestStore(f).EnsureIndex(context.Background(), 4); err == nil {
		t.Error("expected error from CollectionExists")
	}
	f = &fakeClient{createErr: status.Error(codes.PermissionDenied, "no")}
	if err := newTestStore(f).EnsureIndex(context.Background(), 4); err == nil {
		t.Error("expected error from CreateCollection")
	}
}

func TestUpsert_DeterministicPointAndPayload(t *testing.T) {
	f := &fakeClient{}
	s := newTestStore(f)
	md := map[string]string{"text": "sad | rough day", "label": "mood:1"}
	if err := s.Upsert(context.Background(), "user-42", "mood:1", []float32{1, 0}, md); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.upserted.GetPoints()) != 1 {
		t.Fatalf("expected 1 point, got %d", len(f.upserted.GetPoints()))
	}
	p := f.upserted.GetPoints()[0]
	if p.GetId().GetUuid() != PointID("user-42", "mood:1") {
		t.Errorf("point id = %s", p.GetId().GetUuid())
	}
	pl := p.GetPayload()
	if pl["namespace"].GetStringValue() != "user-42" || pl["id"].GetStringValue() != "mood:1" || pl["text"].GetStringValue() != "sad | rough day" {
		t.Errorf("unexpected payload %v", pl)
	}
}

func TestPointID(t *testing.T) {
	a := PointID("user-1", "mood:1")
	if a != PointID("user-1", "mood:1") {
		t.Error("point id must be deterministic")
	}
	if a == PointID("user-2", "mood:1") {
		t.Error("point id must differ across namespaces")
	}
}

func TestQuery_FiltersNamespace(t *testing.T) {
	f := &fakeClient{queryPoints: []*qdrant.ScoredPoint{{
		Score: 0.8,
		Payload: map[string]*qdrant.Value{
			"id":   stringValue("mood:3"),
			"text": stringValue("anxious | exam"),
		},
	}}}
	docs, err := newTestStore(f).Query(context.Background(), "user-42", []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "mood:3" || docs[0].Text != "anxious | exam" {
		t.Errorf("unexpected docs %+v", docs)
	}

	must := f.queried.GetFilter().GetMust()
	if len(must) != 1 {
		t.Fatalf("expected one filter condition, got %d", len(must))
	}
	fc := must[0].GetField()
	if fc.GetKey() != "namespace" || fc.GetMatch().GetKeyword() != "user-42" {
		t.Errorf("unexpected filter %+v", fc)
	}
	if f.queried.GetLimit() != 5 {
		t.Errorf("limit = %d", f.queried.GetLimit())
	}
}

func TestPing(t *testing.T) {
	if err := newTestStore(&fakeClient{}).Ping(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := newTestStore(&fakeClient{healthErr: errors.New("down")}).Ping(context.Background()); err == nil {
		t.Error("expected error")
	}
}
