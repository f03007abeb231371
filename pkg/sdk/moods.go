package mindrecall

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// Mood is one journal entry.
type Mood struct {
	ID        string
	Level     string
	Note      string
	CreatedAt time.Time
}

// MoodService logs and lists one user's mood entries.
type MoodService struct {
	userID string
	svc    moodUseCase
	obs    *observer
}

// Log stores an entry. Indexing for semantic retrieval happens best-effort and never fails the call.
func (s *MoodService) Log(ctx context.Context, level, note string) (_ Mood, err error) {
	start := time.Now()
	defer func() { s.obs.observe("mood.log", start, err) }()

	rec, err := s.svc.Log(ctx, s.userID, level, note)
	if err != nil {
		return Mood{}, fmt.Errorf("log mood: %w", err)
	}
	return moodFromRecord(rec), nil
}

// Recent returns up to limit entries, newest first. limit <= 0 uses the default page size.
func (s *MoodService) Recent(ctx context.Context, limit int) (_ []Mood, err error) {
	start := time.Now()
	defer func() { s.obs.observe("mood.recent", start, err) }()

	records, err := s.svc.List(ctx, s.userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list moods: %w", err)
	}
	out := make([]Mood, len(records))
	for i, r := range records {
		out[i] = moodFromRecord(r)
	}
	return out, nil
}

func moodFromRecord(r domain.Record) Mood {
	return Mood{ID: r.ID, Level: r.Label, Note: r.Note, CreatedAt: r.CreatedAt}
}
