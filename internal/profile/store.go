// Package profile persists the small set of client-side values a storefront
// keeps between runs (session id, auth token, last activity).
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Wjwesley1/queen-store-frontend/internal/config"
	apperrors "github.com/Wjwesley1/queen-store-frontend/pkg/errors"
)

// Store is durable key/value storage scoped to one profile.
type Store interface {
	// Get returns apperrors.ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

func notFound(key string) error {
	return apperrors.NotFound("profile key", key)
}

// IsNotFound reports whether err means the key does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, apperrors.ErrNotFound)
}

// Open builds the store selected by cfg.ProfileBackend. The returned close
// function releases backend resources and is never nil.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.ProfileBackend {
	case config.ProfileMemory:
		return NewMemoryStore(), noop, nil
	case config.ProfileFile:
		logger.Debug("using file profile store", slog.String("path", cfg.ProfilePath), slog.String("profile", cfg.ProfileName))
		return NewFileStore(cfg.ProfilePath, cfg.ProfileName), noop, nil
	case config.ProfileRedis:
		client, err := NewRedisClient(ctx, RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, noop, err
		}
		logger.Debug("using redis profile store", slog.String("addr", cfg.RedisAddr), slog.String("profile", cfg.ProfileName))
		return NewRedisStore(client, cfg.ProfileName), client.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown profile backend %q", cfg.ProfileBackend)
	}
}
