// Package vectorindex owns the lifecycle of the per-user vector index.
package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/mindrecall/internal/domain"
	"github.com/kailas-cloud/mindrecall/internal/metrics"
)

// DefaultTimeout bounds each backend call.
const DefaultTimeout = 3 * time.Second

// State of the client's index handle.
type State int32

const (
	// StateUninitialized means EnsureReady has not succeeded or failed yet.
	StateUninitialized State = iota
	// StateReady means the index exists and accepts operations.
	StateReady
	// StateUnavailable means initialization failed; calls short-circuit.
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Config tunes the client.
type Config struct {
	Dimensions int
	Timeout    time.Duration
	// ReinitAfter lets an unavailable client try initialization again after this cool-down.
	// Zero keeps it unavailable for the life of the process.
	ReinitAfter time.Duration
}

// Client is the vector index handle used by retrieval and mood logging.
type Client struct {
	backend     Backend
	dim         int
	timeout     time.Duration
	reinitAfter time.Duration
	logger      *zap.Logger
	now         func() time.Time

	state    atomic.Int32
	failedAt atomic.Int64 // unix nanos of the last failed initialization
}

// New creates a client over backend. A nil backend yields an unconfigured client:
// queries report ErrIndexUnconfigured and upserts are silently skipped.
func New(backend Backend, cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = domain.DefaultVectorConfig().Dimensions
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		backend:     backend,
		dim:         cfg.Dimensions,
		timeout:     cfg.Timeout,
		reinitAfter: cfg.ReinitAfter,
		logger:      logger.With(zap.String("component", "vectorindex")),
		now:         time.Now,
	}
}

// Configured reports whether a backend is attached.
func (c *Client) Configured() bool { return c.backend != nil }

// State returns the current state.
func (c *Client) State() State { return State(c.state.Load()) }

// Dimensions returns the vector dimension the index is created with.
func (c *Client) Dimensions() int { return c.dim }

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
	metrics.VectorIndexState.Set(float64(s))
}

// EnsureReady initializes the index once. Concurrent first callers may all hit the
// backend; EnsureIndex tolerates an existing index so they converge on ready.
func (c *Client) EnsureReady(ctx context.Context) error {
	if c.backend == nil {
		return domain.ErrIndexUnconfigured
	}

	prev := c.State()
	if prev == StateReady {
		return nil
	}
	if prev == StateUnavailable && !c.reinitDue() {
		return domain.ErrIndexUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.backend.EnsureIndex(ctx, c.dim); err != nil {
		c.failedAt.Store(c.now().UnixNano())
		c.setState(StateUnavailable)
		c.logger.Warn("Vector index unavailable", zap.Int("dimensions", c.dim), zap.Error(err))
		return fmt.Errorf("%w: %w", domain.ErrIndexUnavailable, err)
	}

	c.setState(StateReady)
	c.logger.Info("Vector index ready", zap.Int("dimensions", c.dim), zap.Stringer("previous", prev))
	return nil
}

func (c *Client) reinitDue() bool {
	if c.reinitAfter <= 0 {
		return false
	}
	failed := time.Unix(0, c.failedAt.Load())
	return c.now().Sub(failed) >= c.reinitAfter
}

// Upsert stores vector for the record identified by metadata["label"] (or metadata["id"])
// in the user's namespace. metadata["text"] is required.
func (c *Client) Upsert(ctx context.Context, userID string, vector []float32, metadata map[string]string) error {
	if c.backend == nil {
		return nil
	}
	if userID == "" {
		return fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	id := metadata["label"]
	if id == "" {
		id = metadata["id"]
	}
	if id == "" || metadata["text"] == "" {
		return domain.ErrMissingMetadata
	}
	if err := c.checkVector(vector); err != nil {
		return err
	}
	if err := c.EnsureReady(ctx); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.backend.Upsert(ctx, domain.Namespace(userID), id, vector, metadata); err != nil {
		return fmt.Errorf("upsert %s: %w", id, err)
	}
	return nil
}

// Query returns the topK nearest passages in the user's namespace.
// Failures never escape: they become the branch's Reason.
func (c *Client) Query(ctx context.Context, userID string, vector []float32, topK int) domain.Branch {
	if c.backend == nil {
		return domain.Failed(domain.SourceVector, domain.ErrIndexUnconfigured)
	}
	if userID == "" {
		return domain.Failed(domain.SourceVector, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput))
	}
	if topK <= 0 {
		return domain.Succeeded(domain.SourceVector, nil)
	}
	if err := c.checkVector(vector); err != nil {
		return domain.Failed(domain.SourceVector, err)
	}
	if err := c.EnsureReady(ctx); err != nil {
		return domain.Failed(domain.SourceVector, err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	docs, err := c.backend.Query(ctx, domain.Namespace(userID), vector, topK)
	if err != nil {
		return domain.Failed(domain.SourceVector, fmt.Errorf("query: %w", err))
	}
	if len(docs) > topK {
		docs = docs[:topK]
	}
	return domain.Succeeded(domain.SourceVector, docs)
}

// Ping checks backend reachability for health reporting.
func (c *Client) Ping(ctx context.Context) error {
	if c.backend == nil {
		return domain.ErrIndexUnconfigured
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.backend.Ping(ctx); err != nil {
		return fmt.Errorf("ping vector index: %w", err)
	}
	return nil
}

func (c *Client) checkVector(v []float32) error {
	if len(v) != c.dim {
		return fmt.Errorf("%w: got %d, want %d", domain.ErrVectorDimMismatch, len(v), c.dim)
	}
	if domain.IsZeroVector(v) {
		return domain.ErrZeroVector
	}
	return nil
}

// IsUnconfigured reports whether err stems from a client without a backend.
func IsUnconfigured(err error) bool {
	return errors.Is(err, domain.ErrIndexUnconfigured)
}
