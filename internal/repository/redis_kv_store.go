package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisKVClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// RedisKVStore implementa KVStore sobre Redis. Las claves no expiran.
type RedisKVStore struct {
	client redisKVClient
	prefix string
}

func NewRedisKVStore(client *redis.Client) *RedisKVStore {
	return newRedisKVStore(client)
}

func newRedisKVStore(client redisKVClient) *RedisKVStore {
	return &RedisKVStore{
		client: client,
		prefix: "lofty:kv:",
	}
}

func (s *RedisKVStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s *RedisKVStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.prefix+key, value, 0).Err()
}
