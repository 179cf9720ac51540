package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/shopsense/internal/db"
)

// PushCapped runs LPUSH, LTRIM and (optionally) EXPIRE in a single DoMulti round-trip.
func (s *Store) PushCapped(
	ctx context.Context, key string, value []byte, capacity int64, ttl time.Duration,
) error {
	cmds := rueidis.Commands{
		s.b().Lpush().Key(key).Element(string(value)).Build(),
		s.b().Ltrim().Key(key).Start(0).Stop(capacity - 1).Build(),
	}
	ops := []string{db.OpLPush, db.OpLTrim}
	if ttl > 0 {
		cmds = append(cmds, s.b().Expire().Key(key).Seconds(int64(ttl.Seconds())).Build())
		ops = append(ops, db.OpExpire)
	}

	results := s.client.DoMulti(ctx, cmds...)
	for i, r := range results {
		if err := r.Error(); err != nil {
			return &db.Error{Op: ops[i], Err: err}
		}
	}
	return nil
}

// LRange returns list items between start and stop inclusive.
// A missing key yields an empty slice.
func (s *Store) LRange(ctx context.Context, key string, start, stop int64) ([][]byte, error) {
	cmd := s.b().Lrange().Key(key).Start(start).Stop(stop).Build()
	msgs, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, nil
		}
		return nil, &db.Error{Op: db.OpLRange, Err: err}
	}

	out := make([][]byte, 0, len(msgs))
	for _, m := range msgs {
		b, err := m.AsBytes()
		if err != nil {
			return nil, &db.Error{Op: db.OpLRange, Err: err}
		}
		out = append(out, b)
	}
	return out, nil
}

// Del deletes a key.
func (s *Store) Del(ctx context.Context, key string) error {
	cmd := s.b().Del().Key(key).Build()
	if err := s.do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}
