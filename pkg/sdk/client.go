package mindrecall

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindrecall/internal/db"
	dbRedis "github.com/kailas-cloud/mindrecall/internal/db/redis"
	"github.com/kailas-cloud/mindrecall/internal/domain"
	chromemrepo "github.com/kailas-cloud/mindrecall/internal/repository/chromem"
	"github.com/kailas-cloud/mindrecall/internal/repository/corpus"
	vectorrepo "github.com/kailas-cloud/mindrecall/internal/repository/vector"
	embeddinguc "github.com/kailas-cloud/mindrecall/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/mindrecall/internal/usecase/health"
	mooduc "github.com/kailas-cloud/mindrecall/internal/usecase/mood"
	"github.com/kailas-cloud/mindrecall/internal/usecase/retrieval"
	"github.com/kailas-cloud/mindrecall/internal/usecase/vectorindex"
)

const defaultReadinessTimeout = 10 * time.Second

// Internal interfaces, swapped for fakes in tests.
type moodUseCase interface {
	Log(ctx context.Context, userID, level, note string) (domain.Record, error)
	List(ctx context.Context, userID string, limit int) ([]domain.Record, error)
}

type retrievalUseCase interface {
	Retrieve(ctx context.Context, userID, query string) retrieval.Bundle
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

// Client is the mindrecall SDK entry point.
type Client struct {
	store     db.Store
	moodSvc   moodUseCase
	retrieval retrievalUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		vectorDimensions: domain.DefaultVectorConfig().Dimensions,
		indexDriver:      indexNone,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("mindrecall: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{Addrs: cfg.addrs, Password: cfg.password})
	if err != nil {
		return nil, fmt.Errorf("mindrecall: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("mindrecall: database not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		store.Close()
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	nop := zap.NewNop()

	var inner domain.Embedder
	if cfg.embedder != nil {
		inner = &embedderAdapter{inner: cfg.embedder}
	}
	embed := embeddinguc.NewProvider(inner, embeddinguc.Config{Dimensions: cfg.vectorDimensions}, nop)

	var backend vectorindex.Backend
	switch cfg.indexDriver {
	case indexRedis:
		backend = vectorrepo.New(store, vectorrepo.HNSWConfig{M: cfg.hnswM, EFConstruct: cfg.hnswEFConstruct})
	case indexMemory:
		backend = chromemrepo.New()
	}
	index := vectorindex.New(backend, vectorindex.Config{Dimensions: cfg.vectorDimensions}, nop)

	rc := domain.DefaultRetrievalConfig()
	if cfg.corpusWindow > 0 {
		rc.CorpusWindow = cfg.corpusWindow
	}
	if cfg.contextBudget > 0 {
		rc.ContextBudget = cfg.contextBudget
	}

	repo := corpus.New(store)
	var embHealth healthuc.EmbeddingChecker
	if inner != nil {
		embHealth = embed
	}

	return &Client{
		store:     store,
		moodSvc:   mooduc.New(repo, embed, index, nop).WithPagination(20, rc.CorpusWindow),
		retrieval: retrieval.New(repo, embed, index, rc, nop),
		healthSvc: healthuc.New(store, embHealth, index),
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Moods returns the mood journal of one user.
func (c *Client) Moods(userID string) *MoodService {
	return &MoodService{userID: userID, svc: c.moodSvc, obs: c.obs}
}
