package retrieval

import (
	"context"
	"errors"
	"os"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/mindrecall/internal/domain"
	"github.com/kailas-cloud/mindrecall/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterRetrievalMetrics()
	os.Exit(m.Run())
}

type fakeCorpus struct {
	records []domain.Record
	err     error
	calls   atomic.Int32
	limit   int
}

func (f *fakeCorpus) ListRecent(_ context.Context, _ string, limit int) ([]domain.Record, error) {
	f.calls.Add(1)
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeEmbedder struct {
	result domain.Embedding
	calls  atomic.Int32
}

func (f *fakeEmbedder) Embed(context.Context, string) domain.Embedding {
	f.calls.Add(1)
	return f.result
}

type fakeIndex struct {
	queryFn func(ctx context.Context, userID string, vector []float32, topK int) domain.Branch
	calls   atomic.Int32
}

func (f *fakeIndex) Query(ctx context.Context, userID string, vector []float32, topK int) domain.Branch {
	f.calls.Add(1)
	return f.queryFn(ctx, userID, vector, topK)
}

func moodCorpus() []domain.Record {
	return []domain.Record{
		{ID: "r1", Label: "anxious", Note: "can't sleep"},
		{ID: "r2", Label: "happy", Note: "good walk"},
		{ID: "r3", Label: "anxious", Note: "work deadline"},
	}
}

func okEmbedder() *fakeEmbedder {
	return &fakeEmbedder{result: domain.Embedding{Vector: []float32{0.1, 0.2}}}
}

func indexReturning(docs ...domain.Document) *fakeIndex {
	return &fakeIndex{queryFn: func(context.Context, string, []float32, int) domain.Branch {
		return domain.Succeeded(domain.SourceVector, docs)
	}}
}

func TestRetrieve_LexicalFirstThenVector(t *testing.T) {
	corpus := &fakeCorpus{records: moodCorpus()}
	index := indexReturning(
		domain.Document{ID: "mood:r3", Text: "anxious | work deadline", Score: 0.9},
		domain.Document{ID: "mood:r9", Text: "tired | long week", Score: 0.8},
	)
	svc := New(corpus, okEmbedder(), index, domain.RetrievalConfig{}, nil)

	b := svc.Retrieve(context.Background(), "42", "anxious")

	// the shorter anxious entry wins on length normalization
	want := []string{
		"anxious | work deadline",
		"anxious | can't sleep",
		"happy | good walk",
		"tired | long week",
	}
	if !reflect.DeepEqual(b.Passages, want) {
		t.Errorf("passages = %q, want %q", b.Passages, want)
	}
	if corpus.limit != 200 {
		t.Errorf("corpus window = %d, want 200", corpus.limit)
	}
	for _, br := range b.Branches() {
		if br.Degraded() {
			t.Errorf("branch %s degraded: %v", br.Source, br.Reason)
		}
	}
}

func TestRetrieve_BudgetIsFive(t *testing.T) {
	var records []domain.Record
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		records = append(records, domain.Record{ID: id, Label: "calm", Note: id})
	}
	index := indexReturning(
		domain.Document{ID: "mood:x", Text: "x"},
		domain.Document{ID: "mood:y", Text: "y"},
	)
	svc := New(&fakeCorpus{records: records}, okEmbedder(), index, domain.RetrievalConfig{}, nil)

	got := svc.RetrieveContext(context.Background(), "42", "calm")
	if len(got) != 5 {
		t.Fatalf("expected 5 passages, got %d: %q", len(got), got)
	}
	if got[4] != "calm | e" {
		t.Errorf("vector passages must not displace lexical ones, got %q", got)
	}
}

func TestRetrieve_EmptyQuerySkipsUpstream(t *testing.T) {
	corpus := &fakeCorpus{records: moodCorpus()}
	emb := okEmbedder()
	index := indexReturning()
	svc := New(corpus, emb, index, domain.RetrievalConfig{}, nil)

	for _, q := range []string{"", "   "} {
		b := svc.Retrieve(context.Background(), "42", q)
		if len(b.Passages) != 0 || b.Passages == nil {
			t.Errorf("query %q: expected empty non-nil passages, got %#v", q, b.Passages)
		}
	}
	if corpus.calls.Load() != 0 || emb.calls.Load() != 0 || index.calls.Load() != 0 {
		t.Error("empty query must not call upstream")
	}
}

func TestRetrieve_CorpusFailureDegradesLexical(t *testing.T) {
	corpus := &fakeCorpus{err: errors.New("connection refused")}
	index := indexReturning(domain.Document{ID: "mood:v", Text: "from vector"})
	svc := New(corpus, okEmbedder(), index, domain.RetrievalConfig{}, nil)

	b := svc.Retrieve(context.Background(), "42", "anything")
	if !errors.Is(b.Lexical.Reason, domain.ErrCorpusUnavailable) {
		t.Errorf("expected corpus unavailable, got %v", b.Lexical.Reason)
	}
	if !reflect.DeepEqual(b.Passages, []string{"from vector"}) {
		t.Errorf("passages = %q", b.Passages)
	}
}

func TestRetrieve_VectorUnconfigured(t *testing.T) {
	index := &fakeIndex{queryFn: func(context.Context, string, []float32, int) domain.Branch {
		return domain.Failed(domain.SourceVector, domain.ErrIndexUnconfigured)
	}}
	svc := New(&fakeCorpus{records: moodCorpus()}, okEmbedder(), index, domain.RetrievalConfig{}, nil)

	b := svc.Retrieve(context.Background(), "42", "anxious")
	if !errors.Is(b.Vector.Reason, domain.ErrIndexUnconfigured) {
		t.Errorf("expected unconfigured, got %v", b.Vector.Reason)
	}
	if len(b.Passages) != 3 {
		t.Errorf("lexical passages must survive, got %q", b.Passages)
	}
}

func TestRetrieve_DegradedEmbeddingStillQueriesIndex(t *testing.T) {
	emb := &fakeEmbedder{result: domain.Embedding{
		Vector: domain.ZeroVector(2),
		Reason: domain.ErrEmbeddingProviderError,
	}}
	var gotVector []float32
	index := &fakeIndex{queryFn: func(_ context.Context, _ string, vector []float32, _ int) domain.Branch {
		gotVector = vector
		return domain.Failed(domain.SourceVector, domain.ErrZeroVector)
	}}
	svc := New(&fakeCorpus{records: moodCorpus()}, emb, index, domain.RetrievalConfig{}, nil)

	b := svc.Retrieve(context.Background(), "42", "anxious")
	if !errors.Is(b.Embedding.Reason, domain.ErrEmbeddingProviderError) {
		t.Errorf("embedding reason = %v", b.Embedding.Reason)
	}
	if !domain.IsZeroVector(gotVector) || len(gotVector) != 2 {
		t.Errorf("expected zero vector passed through, got %v", gotVector)
	}
	if !b.Vector.Degraded() || len(b.Vector.Documents) != 0 {
		t.Errorf("vector branch must be empty and degraded: %+v", b.Vector)
	}
	if len(b.Passages) != 3 {
		t.Errorf("expected lexical passages only, got %q", b.Passages)
	}
}

func TestRetrieve_AllBranchesFail(t *testing.T) {
	corpus := &fakeCorpus{err: errors.New("down")}
	index := &fakeIndex{queryFn: func(context.Context, string, []float32, int) domain.Branch {
		panic("boom")
	}}
	svc := New(corpus, okEmbedder(), index, domain.RetrievalConfig{}, nil)

	b := svc.Retrieve(context.Background(), "42", "anything")
	if len(b.Passages) != 0 {
		t.Errorf("expected empty bundle, got %q", b.Passages)
	}
	if !b.Lexical.Degraded() || !b.Vector.Degraded() {
		t.Error("both branches must report degradation")
	}
}

func TestRetrieve_NilDependencies(t *testing.T) {
	svc := New(nil, nil, nil, domain.RetrievalConfig{}, nil)
	b := svc.Retrieve(context.Background(), "42", "anything")
	if len(b.Passages) != 0 {
		t.Errorf("expected empty bundle, got %q", b.Passages)
	}
	for _, br := range b.Branches() {
		if !br.Degraded() {
			t.Errorf("branch %s should be degraded", br.Source)
		}
	}
}

func TestRetrieve_BranchesRunConcurrently(t *testing.T) {
	const delay = 100 * time.Millisecond
	slowCorpus := &slowCorpusFake{delay: delay, records: moodCorpus()}
	index := &fakeIndex{queryFn: func(context.Context, string, []float32, int) domain.Branch {
		time.Sleep(delay)
		return domain.Succeeded(domain.SourceVector, nil)
	}}
	svc := New(slowCorpus, okEmbedder(), index, domain.RetrievalConfig{}, nil)

	start := time.Now()
	svc.Retrieve(context.Background(), "42", "anxious")
	if elapsed := time.Since(start); elapsed >= 2*delay {
		t.Errorf("branches ran sequentially: %v", elapsed)
	}
}

type slowCorpusFake struct {
	delay   time.Duration
	records []domain.Record
}

func (f *slowCorpusFake) ListRecent(context.Context, string, int) ([]domain.Record, error) {
	time.Sleep(f.delay)
	return f.records, nil
}

func TestRetrieve_Deterministic(t *testing.T) {
	index := indexReturning(domain.Document{ID: "mood:r2", Text: "happy | good walk"})
	svc := New(&fakeCorpus{records: moodCorpus()}, okEmbedder(), index, domain.RetrievalConfig{}, nil)

	first := svc.RetrieveContext(context.Background(), "42", "sleep deadline")
	for range 5 {
		if got := svc.RetrieveContext(context.Background(), "42", "sleep deadline"); !reflect.DeepEqual(got, first) {
			t.Fatalf("non-deterministic result %q vs %q", got, first)
		}
	}
}
