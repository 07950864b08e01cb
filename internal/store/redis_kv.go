package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"prompt-server/internal/interfaces"
)

// Compile-time check to ensure redisKeyValueStore implements KeyValueStore
var _ interfaces.KeyValueStore = (*redisKeyValueStore)(nil)

type redisKeyValueStore struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisKeyValueStore creates a Redis-backed KeyValueStore.
func NewRedisKeyValueStore(client *redis.Client, logger *zap.Logger) interfaces.KeyValueStore {
	return &redisKeyValueStore{
		client: client,
		logger: logger.Named("RedisKV"),
	}
}

// GetItem returns the value stored under key. A missing key is reported via
// ok=false, not as an error.
func (s *redisKeyValueStore) GetItem(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			s.logger.Debug("Key not found in Redis", zap.String("key", key))
			return "", false, nil
		}
		s.logger.Error("Failed to get key from redis", zap.Error(err), zap.String("key", key))
		return "", false, fmt.Errorf("failed to get key %s from redis: %w", key, err)
	}
	return value, true, nil
}

// SetItem stores value under key. Values are kept without TTL: expiry of the
// active prompt record is interpreted by the rotation logic, and the used-id
// set is permanent for the life of the installation.
func (s *redisKeyValueStore) SetItem(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		s.logger.Error("Failed to set key in redis", zap.Error(err), zap.String("key", key))
		return fmt.Errorf("failed to set key %s in redis: %w", key, err)
	}
	return nil
}
