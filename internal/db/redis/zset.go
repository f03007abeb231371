package redis

import (
	"context"
	"strconv"

	"github.com/kailas-cloud/mindrecall/internal/db"
)

// ZAdd inserts or rescores member in the sorted set at key.
func (s *Store) ZAdd(ctx context.Context, key string, score float64, member string) error {
	cmd := s.b().Zadd().Key(key).ScoreMember().ScoreMember(score, member).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ZRevRange returns members from highest to lowest score, ranks start..stop inclusive.
func (s *Store) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Arbitrary("ZRANGE").Keys(key).
		Args(strconv.FormatInt(start, 10), strconv.FormatInt(stop, 10), "REV").
		Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	return members, nil
}
