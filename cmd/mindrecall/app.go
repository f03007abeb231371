package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindrecall/internal/config"
	dbRedis "github.com/kailas-cloud/mindrecall/internal/db/redis"
	"github.com/kailas-cloud/mindrecall/internal/domain"
	"github.com/kailas-cloud/mindrecall/internal/metrics"
	chromemrepo "github.com/kailas-cloud/mindrecall/internal/repository/chromem"
	"github.com/kailas-cloud/mindrecall/internal/repository/corpus"
	"github.com/kailas-cloud/mindrecall/internal/repository/embcache"
	vectorrepo "github.com/kailas-cloud/mindrecall/internal/repository/vector"
	openaiTransport "github.com/kailas-cloud/mindrecall/internal/transport/openai"
	qdrantTransport "github.com/kailas-cloud/mindrecall/internal/transport/qdrant"
	chatuc "github.com/kailas-cloud/mindrecall/internal/usecase/chat"
	embeddinguc "github.com/kailas-cloud/mindrecall/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/mindrecall/internal/usecase/health"
	mooduc "github.com/kailas-cloud/mindrecall/internal/usecase/mood"
	"github.com/kailas-cloud/mindrecall/internal/usecase/retrieval"
	"github.com/kailas-cloud/mindrecall/internal/usecase/vectorindex"
)

// app is the composition root shared by every command.
type app struct {
	store     *dbRedis.Store
	index     *vectorindex.Client
	moods     *mooduc.Service
	retrieval *retrieval.Service
	chat      *chatuc.Service
	health    *healthuc.Service
	closers   []func()
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func buildApp(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app, error) {
	a := &app{}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("create database store: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store.Close)

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		a.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()

	embedder := buildEmbedder(cfg.Embedding, store, logger)

	backend, err := buildVectorBackend(cfg.VectorIndex, store, a, logger)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.index = vectorindex.New(backend, vectorindex.Config{
		Dimensions:  cfg.Embedding.Dimensions,
		Timeout:     cfg.VectorIndex.Timeout,
		ReinitAfter: cfg.VectorIndex.ReinitAfter,
	}, logger)

	corpusRepo := corpus.New(store)
	a.moods = mooduc.New(corpusRepo, embedder, a.index, logger).
		WithPagination(20, cfg.Retrieval.CorpusWindow)
	a.retrieval = retrieval.New(corpusRepo, embedder, a.index, cfg.Retrieval.Domain(), logger)

	// Pass nil interface (not typed nil pointer!) when chat is not configured.
	var completer chatuc.Completer
	if cfg.Chat.APIKey != "" {
		completer = openaiTransport.NewCompleter(&openaiTransport.CompleterConfig{
			APIKey:      cfg.Chat.APIKey,
			BaseURL:     cfg.Chat.BaseURL,
			Model:       cfg.Chat.Model,
			Temperature: cfg.Chat.Temperature,
			MaxTokens:   cfg.Chat.MaxTokens,
			Logger:      logger,
		})
	} else {
		logger.Warn("Chat completion disabled: no api key, replies use the fallback text")
	}
	a.chat = chatuc.New(a.retrieval, completer, cfg.Chat.Timeout, logger)

	var embHealth healthuc.EmbeddingChecker
	if cfg.Embedding.APIKey != "" {
		embHealth = embedder
	}
	a.health = healthuc.New(store, embHealth, a.index)

	return a, nil
}

// buildEmbedder assembles the chain: OpenAI -> Cached -> Provider (timeout, zero-vector fallback).
func buildEmbedder(cfg config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger) *embeddinguc.Provider {
	var inner domain.Embedder
	if cfg.APIKey != "" {
		base := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Provider:   cfg.Provider,
			Logger:     logger,
		})
		inner = base
		if cfg.Cache.Enabled {
			inner = embcache.New(base, store, embcache.Config{Model: cfg.Model, TTL: cfg.Cache.TTL},
				metrics.EmbeddingCacheTotal, logger)
		}
		logger.Info("Embedder created",
			zap.String("provider", cfg.Provider),
			zap.String("model", cfg.Model),
			zap.Int("dimensions", cfg.Dimensions),
			zap.Bool("cache", cfg.Cache.Enabled),
		)
	} else {
		logger.Warn("Embedding provider disabled: no api key, queries use the zero vector")
	}

	return embeddinguc.NewProvider(inner, embeddinguc.Config{
		Provider:   cfg.Provider,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Timeout:    cfg.Timeout,
	}, logger)
}

// buildVectorBackend returns nil for the none driver, which leaves the index unconfigured.
func buildVectorBackend(
	cfg config.VectorIndexConfig, store *dbRedis.Store, a *app, logger *zap.Logger,
) (vectorindex.Backend, error) {
	logger.Info("Vector index", zap.String("driver", cfg.Driver))

	switch cfg.Driver {
	case config.DriverRedis:
		return vectorrepo.New(store, vectorrepo.HNSWConfig{
			M:           cfg.HNSW.M,
			EFConstruct: cfg.HNSW.EFConstruction,
		}), nil
	case config.DriverQdrant:
		q, err := qdrantTransport.New(qdrantTransport.Config{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			APIKey:     cfg.Qdrant.APIKey,
			UseTLS:     cfg.Qdrant.UseTLS,
			Collection: cfg.Qdrant.Collection,
		})
		if err != nil {
			return nil, fmt.Errorf("create qdrant client: %w", err)
		}
		a.closers = append(a.closers, func() {
			if err := q.Close(); err != nil {
				logger.Warn("Closing qdrant client", zap.Error(err))
			}
		})
		return q, nil
	case config.DriverMemory:
		if cfg.Memory.Path == "" {
			return chromemrepo.New(), nil
		}
		s, err := chromemrepo.NewPersistent(cfg.Memory.Path, cfg.Memory.Compress)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, nil
	}
}
