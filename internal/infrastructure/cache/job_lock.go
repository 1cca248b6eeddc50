package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const jobLockPrefix = "job:lock:"

// RedisJobLock implements shared.JobLock with SETNX so every server
// instance shares one lock
type RedisJobLock struct {
	client *redis.Client
	prefix string
}

var _ shared.JobLock = (*RedisJobLock)(nil)

// NewRedisJobLock wraps an existing client
func NewRedisJobLock(client *redis.Client) *RedisJobLock {
	return &RedisJobLock{client: client, prefix: jobLockPrefix}
}

// TryAcquire sets the lock key only when it is absent
func (l *RedisJobLock) TryAcquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := l.client.SetNX(ctx, l.prefix+name, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire job lock %s: %w", name, err)
	}
	return ok, nil
}

// Release deletes the lock key
func (l *RedisJobLock) Release(ctx context.Context, name string) error {
	if err := l.client.Del(ctx, l.prefix+name).Err(); err != nil {
		return fmt.Errorf("failed to release job lock %s: %w", name, err)
	}
	return nil
}

// InMemoryJobLock only guards runs within this process
type InMemoryJobLock struct {
	mu    sync.Mutex
	locks map[string]time.Time
}

var _ shared.JobLock = (*InMemoryJobLock)(nil)

// NewInMemoryJobLock creates an empty lock table
func NewInMemoryJobLock() *InMemoryJobLock {
	return &InMemoryJobLock{locks: make(map[string]time.Time)}
}

// TryAcquire takes the lock unless a live holder exists
func (l *InMemoryJobLock) TryAcquire(_ context.Context, name string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if until, held := l.locks[name]; held && now.Before(until) {
		return false, nil
	}
	l.locks[name] = now.Add(ttl)
	return true, nil
}

// Release drops the lock
func (l *InMemoryJobLock) Release(_ context.Context, name string) error {
	l.mu.Lock()
	delete(l.locks, name)
	l.mu.Unlock()
	return nil
}
