package embedding

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/kailas-cloud/mindrecall/internal/domain"
	"github.com/kailas-cloud/mindrecall/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterEmbeddingMetrics()
	os.Exit(m.Run())
}

type mockEmbedder struct {
	embedFn   func(ctx context.Context, text string) (domain.EmbeddingResult, error)
	healthErr error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	return m.embedFn(ctx, text)
}

func (m *mockEmbedder) HealthCheck(context.Context) error { return m.healthErr }

func vec(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = 0.5
	}
	return v
}

func TestEmbed_Success(t *testing.T) {
	inner := &mockEmbedder{embedFn: func(context.Context, string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{Embedding: vec(4), TotalTokens: 3}, nil
	}}
	p := NewProvider(inner, Config{Dimensions: 4}, nil)

	e := p.Embed(context.Background(), "feeling anxious about exams")
	if e.Degraded() {
		t.Fatalf("unexpected reason %v", e.Reason)
	}
	if len(e.Vector) != 4 || e.Vector[0] != 0.5 {
		t.Errorf("unexpected vector %v", e.Vector)
	}
}

func TestEmbed_ProviderErrorFallsBackToZero(t *testing.T) {
	inner := &mockEmbedder{embedFn: func(context.Context, string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{}, domain.ErrEmbeddingProviderError
	}}
	p := NewProvider(inner, Config{Dimensions: 1536}, nil)

	e := p.Embed(context.Background(), "x")
	if !errors.Is(e.Reason, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected provider error reason, got %v", e.Reason)
	}
	if len(e.Vector) != 1536 || !domain.IsZeroVector(e.Vector) {
		t.Errorf("expected 1536-dim zero vector, got len %d", len(e.Vector))
	}
}

func TestEmbed_DimensionMismatchFallsBack(t *testing.T) {
	inner := &mockEmbedder{embedFn: func(context.Context, string) (domain.EmbeddingResult, error) {
		return domain.EmbeddingResult{Embedding: vec(3)}, nil
	}}
	p := NewProvider(inner, Config{Dimensions: 4}, nil)

	e := p.Embed(context.Background(), "x")
	if !errors.Is(e.Reason, domain.ErrVectorDimMismatch) {
		t.Errorf("expected dim mismatch, got %v", e.Reason)
	}
	if len(e.Vector) != 4 {
		t.Errorf("fallback must have configured dimension, got %d", len(e.Vector))
	}
}

func TestEmbed_Timeout(t *testing.T) {
	inner := &mockEmbedder{embedFn: func(ctx context.Context, _ string) (domain.EmbeddingResult, error) {
		<-ctx.Done()
		return domain.EmbeddingResult{}, ctx.Err()
	}}
	p := NewProvider(inner, Config{Dimensions: 2, Timeout: 20 * time.Millisecond}, nil)

	start := time.Now()
	e := p.Embed(context.Background(), "x")
	if !errors.Is(e.Reason, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", e.Reason)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout not applied")
	}
}

func TestEmbed_Unconfigured(t *testing.T) {
	p := NewProvider(nil, Config{Dimensions: 8}, nil)
	e := p.Embed(context.Background(), "x")
	if !e.Degraded() || len(e.Vector) != 8 {
		t.Errorf("unexpected embedding %+v", e)
	}
	if err := p.HealthCheck(context.Background()); err == nil {
		t.Error("unconfigured provider must be unhealthy")
	}
}

func TestDefaults(t *testing.T) {
	p := NewProvider(nil, Config{}, nil)
	if p.Dimensions() != 1536 {
		t.Errorf("default dimensions = %d, want 1536", p.Dimensions())
	}
}

func TestHealthCheck(t *testing.T) {
	ok := &mockEmbedder{}
	if err := NewProvider(ok, Config{}, nil).HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	bad := &mockEmbedder{healthErr: errors.New("down")}
	if err := NewProvider(bad, Config{}, nil).HealthCheck(context.Background()); err == nil {
		t.Error("expected error")
	}
}
