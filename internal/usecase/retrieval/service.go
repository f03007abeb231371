// Package retrieval assembles the context bundle for a chat turn from the lexical
// and the semantic branch. It never fails: a broken branch contributes nothing.
package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/mindrecall/internal/domain"
	"github.com/kailas-cloud/mindrecall/internal/lexical"
	"github.com/kailas-cloud/mindrecall/internal/metrics"
)

// Bundle is the merged context plus the outcome of every branch.
type Bundle struct {
	Passages  []string
	Lexical   domain.Branch
	Embedding domain.Branch
	Vector    domain.Branch
}

// Branches returns the branch reports in a fixed order.
func (b Bundle) Branches() []domain.Branch {
	return []domain.Branch{b.Lexical, b.Embedding, b.Vector}
}

// Service runs both retrieval branches concurrently and merges them.
type Service struct {
	corpus Corpus
	embed  Embedder
	index  VectorIndex
	cfg    domain.RetrievalConfig
	logger *zap.Logger
}

// New creates a retrieval service. Zero config fields take the reference defaults.
func New(corpus Corpus, embed Embedder, index VectorIndex, cfg domain.RetrievalConfig, logger *zap.Logger) *Service {
	def := domain.DefaultRetrievalConfig()
	if cfg.CorpusWindow <= 0 {
		cfg.CorpusWindow = def.CorpusWindow
	}
	if cfg.LexicalTopK <= 0 {
		cfg.LexicalTopK = def.LexicalTopK
	}
	if cfg.VectorTopK <= 0 {
		cfg.VectorTopK = def.VectorTopK
	}
	if cfg.ContextBudget <= 0 {
		cfg.ContextBudget = def.ContextBudget
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		corpus: corpus,
		embed:  embed,
		index:  index,
		cfg:    cfg,
		logger: logger.With(zap.String("component", "retrieval")),
	}
}

// RetrieveContext returns up to ContextBudget deduplicated passages for query.
func (s *Service) RetrieveContext(ctx context.Context, userID, query string) []string {
	return s.Retrieve(ctx, userID, query).Passages
}

// Retrieve is RetrieveContext with per-branch reports.
func (s *Service) Retrieve(ctx context.Context, userID, query string) Bundle {
	if strings.TrimSpace(query) == "" {
		return Bundle{
			Passages:  []string{},
			Lexical:   domain.Succeeded(domain.SourceLexical, nil),
			Embedding: domain.Succeeded(domain.SourceEmbedding, nil),
			Vector:    domain.Succeeded(domain.SourceVector, nil),
		}
	}

	start := time.Now()
	var b Bundle

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		b.Lexical = s.lexicalBranch(gctx, userID, query)
		return nil
	})
	g.Go(func() error {
		b.Embedding, b.Vector = s.semanticBranch(gctx, userID, query)
		return nil
	})
	_ = g.Wait()

	b.Passages = Merge(b.Lexical.Documents, b.Vector.Documents, s.cfg.ContextBudget)

	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	metrics.RetrievalContextSize.Observe(float64(len(b.Passages)))
	for _, br := range b.Branches() {
		metrics.ObserveBranch(string(br.Source), br.Degraded())
		if br.Degraded() {
			s.logger.Warn("Retrieval branch degraded",
				zap.String("user_id", userID),
				zap.String("source", string(br.Source)),
				zap.Error(br.Reason),
			)
		}
	}
	s.logger.Debug("Context retrieved",
		zap.String("user_id", userID),
		zap.Int("lexical", len(b.Lexical.Documents)),
		zap.Int("vector", len(b.Vector.Documents)),
		zap.Int("passages", len(b.Passages)),
		zap.Duration("duration", time.Since(start)),
	)
	return b
}

func (s *Service) lexicalBranch(ctx context.Context, userID, query string) (br domain.Branch) {
	defer recoverBranch(domain.SourceLexical, &br)

	if s.corpus == nil {
		return domain.Failed(domain.SourceLexical, domain.ErrCorpusUnavailable)
	}
	records, err := s.corpus.ListRecent(ctx, userID, s.cfg.CorpusWindow)
	if err != nil {
		return domain.Failed(domain.SourceLexical, fmt.Errorf("%w: %w", domain.ErrCorpusUnavailable, err))
	}
	return domain.Succeeded(domain.SourceLexical, lexical.Search(domain.Documents(records), query, s.cfg.LexicalTopK))
}

func (s *Service) semanticBranch(ctx context.Context, userID, query string) (emb, vec domain.Branch) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("semantic branch panic: %v", r)
			if emb.Source == "" {
				emb = domain.Failed(domain.SourceEmbedding, err)
			}
			vec = domain.Failed(domain.SourceVector, err)
		}
	}()

	if s.embed == nil || s.index == nil {
		return domain.Failed(domain.SourceEmbedding, domain.ErrEmbeddingProviderError),
			domain.Failed(domain.SourceVector, domain.ErrIndexUnconfigured)
	}

	e := s.embed.Embed(ctx, query)
	emb = domain.Branch{Source: domain.SourceEmbedding, Reason: e.Reason}

	// A degraded embedding is the zero vector, which the index rejects without a network call.
	vec = s.index.Query(ctx, userID, e.Vector, s.cfg.VectorTopK)
	if vec.Degraded() {
		vec.Documents = nil
	}
	return emb, vec
}

func recoverBranch(src domain.Source, br *domain.Branch) {
	if r := recover(); r != nil {
		*br = domain.Failed(src, fmt.Errorf("%s branch panic: %v", src, r))
	}
}
