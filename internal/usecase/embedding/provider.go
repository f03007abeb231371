// Package embedding turns text into vectors for retrieval and never fails the caller:
// provider errors degrade to the zero vector with a recorded reason.
package embedding

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindrecall/internal/domain"
	"github.com/kailas-cloud/mindrecall/internal/metrics"
)

// DefaultTimeout bounds a single embedding request.
const DefaultTimeout = 3 * time.Second

// Config tunes the provider.
type Config struct {
	Provider   string
	Model      string
	Dimensions int
	Timeout    time.Duration
}

// Provider wraps an Embedder with a timeout, a dimension check and the zero-vector fallback.
type Provider struct {
	inner    domain.Embedder
	dim      int
	timeout  time.Duration
	provider string
	model    string
	logger   *zap.Logger
}

// NewProvider creates a provider. inner may be nil when no credentials are configured;
// every call then degrades immediately.
func NewProvider(inner domain.Embedder, cfg Config, logger *zap.Logger) *Provider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = domain.DefaultVectorConfig().Dimensions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		inner:    inner,
		dim:      cfg.Dimensions,
		timeout:  cfg.Timeout,
		provider: cfg.Provider,
		model:    cfg.Model,
		logger:   logger.With(zap.String("component", "embedding")),
	}
}

// Dimensions returns the vector size every result has.
func (p *Provider) Dimensions() int { return p.dim }

// Embed returns the text's vector. On any failure Vector is ZeroVector(dim) and Reason is set.
func (p *Provider) Embed(ctx context.Context, text string) domain.Embedding {
	if p.inner == nil {
		return p.fallback(fmt.Errorf("%w: provider not configured", domain.ErrEmbeddingProviderError))
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		p.logger.Warn("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return p.fallback(fmt.Errorf("embed: %w", err))
	}

	if len(result.Embedding) != p.dim {
		p.logger.Warn("Embedding dimension mismatch",
			zap.String("model", p.model),
			zap.Int("got", len(result.Embedding)),
			zap.Int("want", p.dim),
		)
		return p.fallback(fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(result.Embedding), p.dim))
	}

	p.logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)
	return domain.Embedding{Vector: result.Embedding}
}

// HealthCheck reports provider availability; an unconfigured provider is unhealthy.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if p.inner == nil {
		return fmt.Errorf("%w: provider not configured", domain.ErrEmbeddingProviderError)
	}
	hc, ok := p.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding health: %w", err)
	}
	return nil
}

func (p *Provider) fallback(reason error) domain.Embedding {
	metrics.EmbeddingFallbackTotal.Inc()
	return domain.Embedding{Vector: domain.ZeroVector(p.dim), Reason: reason}
}
