package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps small hot records (the article index, status records)
// in Redis.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects and pings.
func NewRedisStore(addr string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisStore{rdb: rdb}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNotFound
	} else if err != nil {
		return "", err
	}
	return val, nil
}

func (s *RedisStore) Put(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// Keys lists keys matching a glob pattern. Used by the exporter to walk
// status records.
func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	return s.rdb.Keys(ctx, pattern).Result()
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
