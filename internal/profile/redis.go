package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "queen:profile:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a new Redis client and verifies the connection.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// RedisStore keeps one hash per profile, so several machines can share a
// profile.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a store backed by the hash queen:profile:<profile>.
func NewRedisStore(client *redis.Client, profile string) *RedisStore {
	return &RedisStore{client: client, key: keyPrefix + profile}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.HGet(ctx, s.key, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", notFound(key)
		}
		return "", fmt.Errorf("redis hget %s: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.HSet(ctx, s.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.HDel(ctx, s.key, key).Err(); err != nil {
		return fmt.Errorf("redis hdel %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}
