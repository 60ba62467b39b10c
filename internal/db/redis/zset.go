package redis

import (
	"context"
	"strconv"

	"github.com/redis/rueidis"

	"github.com/lightsoft-dev/light-archive/internal/db"
)

// ZAdd sets the score of member.
func (s *Store) ZAdd(ctx context.Context, key, member string, score float64) error {
	cmd := s.b().Zadd().Key(key).ScoreMember().ScoreMember(score, member).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZAdd, Err: err}
	}
	return nil
}

// ZIncrBy atomically adds incr to the score of an existing member and returns
// the new score (ZADD XX INCR). A missing member is not created; it reports
// db.ErrKeyNotFound.
func (s *Store) ZIncrBy(ctx context.Context, key, member string, incr float64) (float64, error) {
	cmd := s.b().Zadd().Key(key).Xx().Incr().ScoreMember().ScoreMember(incr, member).Build()
	v, err := s.do(ctx, cmd).AsFloat64()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return 0, db.ErrKeyNotFound
		}
		return 0, &db.Error{Op: db.OpZIncrBy, Err: err}
	}
	return v, nil
}

// ZRem removes members.
func (s *Store) ZRem(ctx context.Context, key string, members ...string) error {
	if len(members) == 0 {
		return nil
	}
	cmd := s.b().Zrem().Key(key).Member(members...).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpZRem, Err: err}
	}
	return nil
}

// ZRevRange returns members by descending score (ZRANGE ... REV).
func (s *Store) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	cmd := s.b().Zrange().Key(key).
		Min(strconv.FormatInt(start, 10)).
		Max(strconv.FormatInt(stop, 10)).
		Rev().Build()
	members, err := s.do(ctx, cmd).AsStrSlice()
	if err != nil {
		return nil, &db.Error{Op: db.OpZRange, Err: err}
	}
	return members, nil
}

// ZMScore returns the scores of members in one round-trip.
func (s *Store) ZMScore(ctx context.Context, key string, members []string) ([]db.Score, error) {
	if len(members) == 0 {
		return nil, nil
	}
	cmd := s.b().Zmscore().Key(key).Member(members...).Build()
	msgs, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpZMScore, Err: err}
	}

	out := make([]db.Score, len(msgs))
	for i, m := range msgs {
		if m.IsNil() {
			continue
		}
		v, err := m.AsFloat64()
		if err != nil {
			return nil, &db.Error{Op: db.OpZMScore, Err: err}
		}
		out[i] = db.Score{Value: v, OK: true}
	}
	return out, nil
}

// ZCard returns the number of members.
func (s *Store) ZCard(ctx context.Context, key string) (int64, error) {
	cmd := s.b().Zcard().Key(key).Build()
	n, err := s.do(ctx, cmd).AsInt64()
	if err != nil {
		return 0, &db.Error{Op: db.OpZCard, Err: err}
	}
	return n, nil
}
