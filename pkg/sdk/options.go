package mindrecall

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// index drivers
const (
	indexNone   = "none"
	indexRedis  = "redis"
	indexMemory = "memory"
)

type clientConfig struct {
	addrs    []string
	password string

	embedder Embedder

	vectorDimensions int
	indexDriver      string
	hnswM            int
	hnswEFConstruct  int

	corpusWindow  int
	contextBudget int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis 8 (or Redis Stack) instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider.
// Without it the semantic branch is always empty and retrieval is lexical only.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithVectorDimensions sets the embedding dimension. Defaults to 1536 (text-embedding-ada-002).
func WithVectorDimensions(dim int) Option {
	return optionFunc(func(c *clientConfig) {
		c.vectorDimensions = dim
	})
}

// WithRedisIndex stores vectors in a Redis FT index on the same server.
// m and efConstruct tune HNSW; zero values use defaults.
func WithRedisIndex(m, efConstruct int) Option {
	return optionFunc(func(c *clientConfig) {
		c.indexDriver = indexRedis
		c.hnswM = m
		c.hnswEFConstruct = efConstruct
	})
}

// WithInMemoryIndex keeps vectors in process memory. They are lost on exit.
func WithInMemoryIndex() Option {
	return optionFunc(func(c *clientConfig) {
		c.indexDriver = indexMemory
	})
}

// WithRetrieval overrides the corpus window and the number of passages a bundle may hold.
func WithRetrieval(corpusWindow, contextBudget int) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusWindow = corpusWindow
		c.contextBudget = contextBudget
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
