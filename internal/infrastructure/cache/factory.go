package cache

import (
	"github.com/plfog/backoffice/internal/domain/core"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Backends bundles the redis-or-memory implementations the app needs
type Backends struct {
	Settings core.SettingCache
	JobLock  shared.JobLock
	client   *redis.Client
}

// Close releases the redis connection, if any
func (b *Backends) Close() error {
	if b.client == nil {
		return nil
	}
	return b.client.Close()
}

// Redis returns the shared client, nil when running in memory
func (b *Backends) Redis() *redis.Client {
	return b.client
}

// NewBackends connects to redis when enabled. When redis is disabled or
// unreachable it falls back to process-local implementations and logs why.
func NewBackends(cfg config.RedisConfig, logger *zap.Logger) *Backends {
	if !cfg.Enabled {
		logger.Info("Redis disabled, using in-memory caches")
		return inMemoryBackends()
	}

	client, err := NewRedisClient(cfg)
	if err != nil {
		logger.Warn("Redis unavailable, falling back to in-memory caches",
			zap.String("addr", cfg.Addr()),
			zap.Error(err))
		return inMemoryBackends()
	}

	logger.Info("Connected to Redis", zap.String("addr", cfg.Addr()))
	return NewRedisBackends(client, logger)
}

// NewRedisBackends builds backends on an existing client
func NewRedisBackends(client *redis.Client, logger *zap.Logger) *Backends {
	return &Backends{
		Settings: NewRedisSettingCache(client, logger),
		JobLock:  NewRedisJobLock(client),
		client:   client,
	}
}

func inMemoryBackends() *Backends {
	return &Backends{
		Settings: NewInMemorySettingCache(),
		JobLock:  NewInMemoryJobLock(),
	}
}
