package verification

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps codes as expiring keys. Redis drops expired codes itself,
// so a stale code reads as missing. Wrong guesses are counted under a
// sibling key with the same lifetime.
type RedisStore struct {
	rdb redis.UniversalClient
}

func NewRedisStore(rdb redis.UniversalClient) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Save(ctx context.Context, purpose Purpose, subject, code string, ttl time.Duration) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, key(purpose, subject), code, ttl)
		pipe.Del(ctx, missKey(purpose, subject))
		return nil
	})
	return err
}

func (s *RedisStore) Load(ctx context.Context, purpose Purpose, subject string) (string, error) {
	code, err := s.rdb.Get(ctx, key(purpose, subject)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNoCode
	}
	return code, err
}

func (s *RedisStore) Miss(ctx context.Context, purpose Purpose, subject string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, missKey(purpose, subject))
		pipe.Expire(ctx, missKey(purpose, subject), ttl)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (s *RedisStore) Delete(ctx context.Context, purpose Purpose, subject string) error {
	return s.rdb.Del(ctx, key(purpose, subject), missKey(purpose, subject)).Err()
}
