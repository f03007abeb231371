package mood

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// Service logs mood entries and keeps the vector index in step with the corpus.
type Service struct {
	repo            Repository
	embed           Embedder
	index           VectorIndex
	logger          *zap.Logger
	now             func() time.Time
	newID           func() string
	defaultPageSize int
	maxPageSize     int
}

// New creates a mood service. embed and index may be nil; records are then only stored.
func New(repo Repository, embed Embedder, index VectorIndex, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:            repo,
		embed:           embed,
		index:           index,
		logger:          logger.With(zap.String("component", "mood")),
		now:             time.Now,
		newID:           uuid.NewString,
		defaultPageSize: 20,
		maxPageSize:     domain.DefaultRetrievalConfig().CorpusWindow,
	}
}

// WithPagination configures list size limits.
func (s *Service) WithPagination(defaultPageSize, maxPageSize int) *Service {
	if defaultPageSize > 0 {
		s.defaultPageSize = defaultPageSize
	}
	if maxPageSize > 0 {
		s.maxPageSize = maxPageSize
	}
	return s
}

// Log stores a new mood entry and indexes it for semantic retrieval.
// Indexing failures are logged and never fail the save.
func (s *Service) Log(ctx context.Context, userID, level, note string) (domain.Record, error) {
	userID = strings.TrimSpace(userID)
	level = strings.TrimSpace(level)
	if userID == "" {
		return domain.Record{}, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if level == "" {
		return domain.Record{}, fmt.Errorf("%w: level is required", domain.ErrInvalidInput)
	}

	rec := domain.Record{
		ID:        s.newID(),
		UserID:    userID,
		Label:     level,
		Note:      strings.TrimSpace(note),
		CreatedAt: s.now().UTC().Truncate(time.Millisecond),
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return domain.Record{}, fmt.Errorf("save mood: %w", err)
	}

	s.indexRecord(ctx, rec)
	return rec, nil
}

func (s *Service) indexRecord(ctx context.Context, rec domain.Record) {
	if s.embed == nil || s.index == nil {
		return
	}
	log := s.logger.With(zap.String("user_id", rec.UserID), zap.String("record_id", rec.ID))

	e := s.embed.Embed(ctx, rec.Text())
	if e.Degraded() {
		log.Warn("Mood not indexed: embedding degraded", zap.Error(e.Reason))
		return
	}

	meta := map[string]string{
		"label": rec.DocumentID(),
		"text":  rec.Text(),
	}
	if err := s.index.Upsert(ctx, rec.UserID, e.Vector, meta); err != nil {
		log.Warn("Mood not indexed", zap.Error(err))
		return
	}
	log.Debug("Mood indexed")
}

// List returns up to limit records of the user, newest first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]domain.Record, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = s.defaultPageSize
	}
	if limit > s.maxPageSize {
		limit = s.maxPageSize
	}
	records, err := s.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	return records, nil
}
