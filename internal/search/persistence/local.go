// internal/search/persistence/local.go
package persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements LocalStore on top of Redis, one key per namespace
// holding the whole collection as a JSON blob.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(namespace string) string {
	if s.prefix == "" {
		return namespace
	}
	return s.prefix + ":" + namespace
}

func (s *RedisStore) ReadCollection(ctx context.Context, namespace string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(namespace)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read collection %s: %w", namespace, err)
	}
	return data, nil
}

func (s *RedisStore) WriteCollection(ctx context.Context, namespace string, data []byte) error {
	if err := s.client.Set(ctx, s.key(namespace), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write collection %s: %w", namespace, err)
	}
	return nil
}

func (s *RedisStore) DeleteCollection(ctx context.Context, namespace string) error {
	if err := s.client.Del(ctx, s.key(namespace)).Err(); err != nil {
		return fmt.Errorf("failed to delete collection %s: %w", namespace, err)
	}
	return nil
}
