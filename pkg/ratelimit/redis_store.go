package ratelimit

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore implements a sliding window store backed by a Redis sorted set
// per key, scored by timestamp. Suitable when multiple instances must share
// rate limit state; Redis's single-threaded command execution gives the
// atomic check-and-record the file store cannot.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
}

// RedisStoreOption configures a RedisStore.
type RedisStoreOption func(*RedisStore)

// WithKeyPrefix sets the prefix prepended to every storage key.
func WithKeyPrefix(prefix string) RedisStoreOption {
	return func(s *RedisStore) {
		if prefix != "" {
			s.keyPrefix = prefix
		}
	}
}

// NewRedisStore creates a Redis-backed sliding window store.
func NewRedisStore(client *redis.Client, opts ...RedisStoreOption) (*RedisStore, error) {
	if client == nil {
		return nil, ErrStoreRequired
	}
	s := &RedisStore{
		client:    client,
		keyPrefix: "ratelimit:",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *RedisStore) storageKey(key string) string {
	return s.keyPrefix + HashKey(key)
}

// RecordTimestampIfAllowed prunes expired members, checks the limit, and
// records new members only when allowed. The prune+count and the add run in
// separate round trips; a race between concurrent requests from the same
// client can under-count, matching the documented store contract.
func (s *RedisStore) RecordTimestampIfAllowed(ctx context.Context, key string, timestamp time.Time, window time.Duration, limit int, n int) (bool, int64, error) {
	if n <= 0 {
		n = 1
	}

	storageKey := s.storageKey(key)
	cutoff := strconv.FormatInt(timestamp.Add(-window).UnixNano(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, storageKey, "0", cutoff)
	countCmd := pipe.ZCard(ctx, storageKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, errors.Join(ErrStoreUnavailable, err)
	}

	count := countCmd.Val()
	if count+int64(n) > int64(limit) {
		return false, count, nil
	}

	members := make([]redis.Z, n)
	for i := range members {
		members[i] = redis.Z{
			Score:  float64(timestamp.UnixNano()),
			Member: uuid.NewString(),
		}
	}

	pipe = s.client.TxPipeline()
	pipe.ZAdd(ctx, storageKey, members...)
	pipe.Expire(ctx, storageKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, count, errors.Join(ErrStoreUnavailable, err)
	}

	return true, count + int64(n), nil
}

// CountInWindow returns the number of timestamps within the sliding window.
func (s *RedisStore) CountInWindow(ctx context.Context, key string, window time.Duration) (int64, error) {
	storageKey := s.storageKey(key)
	cutoff := strconv.FormatInt(time.Now().Add(-window).UnixNano(), 10)

	pipe := s.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, storageKey, "0", cutoff)
	countCmd := pipe.ZCard(ctx, storageKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Join(ErrStoreUnavailable, err)
	}

	return countCmd.Val(), nil
}

// CleanupExpired removes expired members from the sorted set.
func (s *RedisStore) CleanupExpired(ctx context.Context, key string, window time.Duration) error {
	storageKey := s.storageKey(key)
	cutoff := strconv.FormatInt(time.Now().Add(-window).UnixNano(), 10)

	if err := s.client.ZRemRangeByScore(ctx, storageKey, "0", cutoff).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}

// Delete removes the given key from the store.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.storageKey(key)).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
