package chromem

import (
	"context"
	"testing"
)

func md(id, text string) map[string]string {
	return map[string]string{"label": id, "text": text}
}

func TestStore_UpsertAndQuery(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.EnsureIndex(ctx, 3); err != nil {
		t.Fatalf("EnsureIndex: %v", err)
	}

	must(t, s.Upsert(ctx, "user-1", "mood:a", []float32{1, 0, 0}, md("mood:a", "happy | sunny walk")))
	must(t, s.Upsert(ctx, "user-1", "mood:b", []float32{0, 1, 0}, md("mood:b", "sad | rough day")))
	must(t, s.Upsert(ctx, "user-1", "mood:c", []float32{0.9, 0.1, 0}, md("mood:c", "calm | tea")))

	docs, err := s.Query(ctx, "user-1", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(docs))
	}
	if docs[0].ID != "mood:a" || docs[1].ID != "mood:c" {
		t.Errorf("unexpected order: %+v", docs)
	}
	if docs[0].Text != "happy | sunny walk" {
		t.Errorf("text = %q", docs[0].Text)
	}
	if docs[0].Score < docs[1].Score {
		t.Errorf("scores must be descending: %+v", docs)
	}
}

func TestStore_NamespaceIsolation(t *testing.T) {
	ctx := context.Background()
	s := New()
	must(t, s.EnsureIndex(ctx, 2))
	must(t, s.Upsert(ctx, "user-1", "mood:a", []float32{1, 0}, md("mood:a", "mine")))
	must(t, s.Upsert(ctx, "user-2", "mood:b", []float32{1, 0}, md("mood:b", "theirs")))

	docs, err := s.Query(ctx, "user-1", []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "mood:a" {
		t.Errorf("namespace leak: %+v", docs)
	}

	docs, err = s.Query(ctx, "user-3", []float32{1, 0}, 5)
	if err != nil || len(docs) != 0 {
		t.Errorf("unknown namespace = (%v, %v), want empty", docs, err)
	}
}

func TestStore_UpsertOverwrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	must(t, s.EnsureIndex(ctx, 2))
	must(t, s.Upsert(ctx, "user-1", "mood:a", []float32{1, 0}, md("mood:a", "old")))
	must(t, s.Upsert(ctx, "user-1", "mood:a", []float32{1, 0}, md("mood:a", "new")))

	docs, err := s.Query(ctx, "user-1", []float32{1, 0}, 5)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(docs) != 1 || docs[0].Text != "new" {
		t.Errorf("expected single overwritten doc, got %+v", docs)
	}
}

func TestStore_DimensionChecks(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.EnsureIndex(ctx, 0); err == nil {
		t.Error("expected error for zero dimension")
	}
	must(t, s.EnsureIndex(ctx, 2))
	if err := s.Upsert(ctx, "user-1", "x", []float32{1, 0, 0}, md("x", "t")); err == nil {
		t.Error("expected dimension mismatch")
	}
	if err := s.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
