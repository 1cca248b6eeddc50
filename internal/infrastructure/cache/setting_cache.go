package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/plfog/backoffice/internal/domain/core"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	settingKeyPrefix  = "setting:"
	defaultSettingTTL = 5 * time.Minute
)

// RedisSettingCache implements core.SettingCache with JSON documents in redis
type RedisSettingCache struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

var _ core.SettingCache = (*RedisSettingCache)(nil)

// NewRedisSettingCache wraps an existing client
func NewRedisSettingCache(client *redis.Client, logger *zap.Logger) *RedisSettingCache {
	return &RedisSettingCache{
		client: client,
		prefix: settingKeyPrefix,
		logger: logger,
	}
}

// Get reads a cached setting
func (c *RedisSettingCache) Get(ctx context.Context, key string) (*core.Setting, error) {
	raw, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		c.logger.Debug("Setting cache miss", zap.String("key", key))
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached setting: %w", err)
	}

	var s core.Setting
	if err := json.Unmarshal(raw, &s); err != nil {
		// A corrupt entry is dropped and treated as a miss
		c.logger.Warn("Discarding unreadable cached setting", zap.String("key", key), zap.Error(err))
		_ = c.client.Del(ctx, c.prefix+key).Err()
		return nil, nil
	}
	return &s, nil
}

// Set stores the setting for ttl, or the default TTL when ttl is zero
func (c *RedisSettingCache) Set(ctx context.Context, setting *core.Setting, ttl time.Duration) error {
	if setting == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultSettingTTL
	}
	raw, err := json.Marshal(setting)
	if err != nil {
		return fmt.Errorf("failed to encode setting: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+setting.Key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache setting: %w", err)
	}
	return nil
}

// Invalidate removes the cached entry
func (c *RedisSettingCache) Invalidate(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate setting: %w", err)
	}
	return nil
}

type settingEntry struct {
	setting   core.Setting
	expiresAt time.Time
}

// InMemorySettingCache is a process-local core.SettingCache, used when
// redis is disabled
type InMemorySettingCache struct {
	mu      sync.RWMutex
	entries map[string]settingEntry
	now     func() time.Time
}

var _ core.SettingCache = (*InMemorySettingCache)(nil)

// NewInMemorySettingCache creates an empty cache
func NewInMemorySettingCache() *InMemorySettingCache {
	return &InMemorySettingCache{
		entries: make(map[string]settingEntry),
		now:     time.Now,
	}
}

// Get returns a copy of the cached setting when it has not expired
func (c *InMemorySettingCache) Get(_ context.Context, key string) (*core.Setting, error) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, nil
	}
	s := entry.setting
	return &s, nil
}

// Set stores a copy of setting
func (c *InMemorySettingCache) Set(_ context.Context, setting *core.Setting, ttl time.Duration) error {
	if setting == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultSettingTTL
	}
	c.mu.Lock()
	c.entries[setting.Key] = settingEntry{setting: *setting, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// Invalidate removes the entry
func (c *InMemorySettingCache) Invalidate(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}
