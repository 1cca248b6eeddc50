package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/plfog/backoffice/internal/domain/core"
	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func mustSetting(t *testing.T, key string, value any, kind core.SettingType) *core.Setting {
	t.Helper()
	s, err := core.NewSetting(key, value, kind)
	require.NoError(t, err)
	return s
}

func TestRedisSettingCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	c := NewRedisSettingCache(client, zap.NewNop())

	got, err := c.Get(ctx, "site.name")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, mustSetting(t, "site.name", "Past Lives", core.SettingTypeText), time.Minute))
	assert.True(t, mr.Exists("setting:site.name"))

	got, err = c.Get(ctx, "site.name")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Past Lives", got.Value)
	assert.Equal(t, core.SettingTypeText, got.Type)

	t.Run("entries expire", func(t *testing.T) {
		mr.FastForward(2 * time.Minute)
		got, err := c.Get(ctx, "site.name")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("invalidate", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, mustSetting(t, "limit", 10, core.SettingTypeNumber), 0))
		require.NoError(t, c.Invalidate(ctx, "limit"))
		assert.False(t, mr.Exists("setting:limit"))
	})

	t.Run("corrupt entry is a miss", func(t *testing.T) {
		require.NoError(t, mr.Set("setting:broken", "{not json"))
		got, err := c.Get(ctx, "broken")
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.False(t, mr.Exists("setting:broken"))
	})

	t.Run("redis down surfaces an error", func(t *testing.T) {
		mr.SetError("LOADING")
		defer mr.SetError("")
		_, err := c.Get(ctx, "site.name")
		assert.Error(t, err)
	})
}

func TestInMemorySettingCache(t *testing.T) {
	ctx := context.Background()
	c := NewInMemorySettingCache()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, mustSetting(t, "flag", true, core.SettingTypeBoolean), time.Minute))
	got, err := c.Get(ctx, "flag")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, true, got.Value)

	got.Value = false
	again, _ := c.Get(ctx, "flag")
	assert.Equal(t, true, again.Value, "callers get a copy")

	now = now.Add(2 * time.Minute)
	got, err = c.Get(ctx, "flag")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, c.Set(ctx, mustSetting(t, "flag", true, core.SettingTypeBoolean), 0))
	require.NoError(t, c.Invalidate(ctx, "flag"))
	got, _ = c.Get(ctx, "flag")
	assert.Nil(t, got)
}

func TestRedisJobLock(t *testing.T) {
	ctx := context.Background()
	mr, client := newMiniredis(t)
	lock := NewRedisJobLock(client)

	ok, err := lock.TryAcquire(ctx, "bill-tabs", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = lock.TryAcquire(ctx, "bill-tabs", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, lock.Release(ctx, "bill-tabs"))
	ok, err = lock.TryAcquire(ctx, "bill-tabs", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = lock.TryAcquire(ctx, "bill-tabs", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "expired lock can be taken")
}

func TestInMemoryJobLock(t *testing.T) {
	ctx := context.Background()
	lock := NewInMemoryJobLock()

	ok, _ := lock.TryAcquire(ctx, "job", time.Hour)
	assert.True(t, ok)
	ok, _ = lock.TryAcquire(ctx, "job", time.Hour)
	assert.False(t, ok)
	ok, _ = lock.TryAcquire(ctx, "other", time.Hour)
	assert.True(t, ok)

	require.NoError(t, lock.Release(ctx, "job"))
	ok, _ = lock.TryAcquire(ctx, "job", time.Millisecond)
	assert.True(t, ok)
	time.Sleep(5 * time.Millisecond)
	ok, _ = lock.TryAcquire(ctx, "job", time.Hour)
	assert.True(t, ok)
}

func TestNewBackends(t *testing.T) {
	t.Run("disabled uses memory", func(t *testing.T) {
		b := NewBackends(config.RedisConfig{Enabled: false}, zap.NewNop())
		assert.IsType(t, &InMemorySettingCache{}, b.Settings)
		assert.IsType(t, &InMemoryJobLock{}, b.JobLock)
		assert.Nil(t, b.Redis())
		assert.NoError(t, b.Close())
	})

	t.Run("enabled connects", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		defer mr.Close()

		b := NewBackends(config.RedisConfig{Enabled: true, Host: mr.Host(), Port: mustPort(t, mr)}, zap.NewNop())
		defer b.Close()
		assert.IsType(t, &RedisSettingCache{}, b.Settings)
		assert.NotNil(t, b.Redis())
	})

	t.Run("unreachable falls back", func(t *testing.T) {
		mr, err := miniredis.Run()
		require.NoError(t, err)
		port := mustPort(t, mr)
		mr.Close()

		b := NewBackends(config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: port}, zap.NewNop())
		assert.IsType(t, &InMemoryJobLock{}, b.JobLock)
	})
}

func mustPort(t *testing.T, mr *miniredis.Miniredis) int {
	t.Helper()
	var port int
	_, err := fmt.Sscanf(mr.Port(), "%d", &port)
	require.NoError(t, err)
	return port
}
