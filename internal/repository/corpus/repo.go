package corpus

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/kailas-cloud/mindrecall/internal/domain"
)

// store is the consumer interface for mood records (ISP).
type store interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	ZAdd(ctx context.Context, key string, score float64, member string) error
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)
}

// Repo persists mood records as hashes plus a per-user timeline sorted set.
type Repo struct {
	store store
}

// New creates a corpus repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Save writes the record hash, then adds it to the user's timeline.
func (r *Repo) Save(ctx context.Context, rec domain.Record) error {
	if rec.ID == "" || rec.UserID == "" {
		return fmt.Errorf("%w: record id and user id are required", domain.ErrInvalidInput)
	}

	key := recordKey(rec.UserID, rec.ID)
	if err := r.store.HSet(ctx, key, buildHashFields(rec)); err != nil {
		return fmt.Errorf("hset %s: %w", key, err)
	}

	tl := timelineKey(rec.UserID)
	if err := r.store.ZAdd(ctx, tl, float64(rec.CreatedAt.UnixMilli()), rec.ID); err != nil {
		return fmt.Errorf("zadd %s: %w", tl, err)
	}
	return nil
}

// ListRecent returns up to limit records of the user, newest first.
// Timeline members whose hash is gone are skipped.
func (r *Repo) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	tl := timelineKey(userID)
	ids, err := r.store.ZRevRange(ctx, tl, 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("zrange %s: %w", tl, err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(userID, id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("hgetall records of %s: %w", userID, err)
	}

	out := make([]domain.Record, 0, len(hashes))
	for i, m := range hashes {
		if m == nil {
			continue
		}
		out = append(out, parseHashFields(userID, ids[i], m))
	}
	return out, nil
}

func recordKey(userID, id string) string {
	return fmt.Sprintf("%smood:%s:%s", domain.KeyPrefix, userID, id)
}

func timelineKey(userID string) string {
	return fmt.Sprintf("%smoods:%s", domain.KeyPrefix, userID)
}

func buildHashFields(rec domain.Record) map[string]string {
	return map[string]string{
		"label":      rec.Label,
		"note":       rec.Note,
		"created_at": strconv.FormatInt(rec.CreatedAt.UnixMilli(), 10),
	}
}

func parseHashFields(userID, id string, m map[string]string) domain.Record {
	rec := domain.Record{
		ID:     id,
		UserID: userID,
		Label:  m["label"],
		Note:   m["note"],
	}
	if ms, err := strconv.ParseInt(m["created_at"], 10, 64); err == nil {
		rec.CreatedAt = time.UnixMilli(ms).UTC()
	}
	return rec
}
