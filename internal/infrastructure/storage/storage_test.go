package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testS3Config() config.StorageConfig {
	return config.StorageConfig{
		Enabled:           true,
		Endpoint:          "http://localhost:9000",
		Bucket:            "plfog-documents",
		AccessKeyID:       "minio",
		SecretAccessKey:   "minio-secret",
		UsePathStyle:      true,
		PresignExpiration: 10 * time.Minute,
	}
}

func TestNewS3Storage_Validation(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		mutate  func(*config.StorageConfig)
		wantErr string
	}{
		{"missing bucket", func(c *config.StorageConfig) { c.Bucket = "" }, "bucket is required"},
		{"half credentials", func(c *config.StorageConfig) { c.SecretAccessKey = "" }, "must be set together"},
		{"bad endpoint", func(c *config.StorageConfig) { c.Endpoint = "not a url" }, "invalid storage endpoint"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testS3Config()
			tt.mutate(&cfg)
			_, err := NewS3Storage(ctx, cfg, zap.NewNop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestS3Storage_PresignGet(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3Storage(ctx, testS3Config(), zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "plfog-documents", s.Bucket())

	_, _, err = s.PresignGet(ctx, "", 0)
	assert.ErrorIs(t, err, errEmptyKey)

	u, expiresAt, err := s.PresignGet(ctx, "guilds/glass/safety.pdf", 0)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://localhost:9000/plfog-documents/guilds/glass/safety.pdf?"))
	assert.Contains(t, u, "X-Amz-Expires=600")
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)

	u, _, err = s.PresignGet(ctx, "guilds/glass/safety.pdf", time.Minute)
	require.NoError(t, err)
	assert.Contains(t, u, "X-Amz-Expires=60")
}

func TestS3Storage_EmptyKey(t *testing.T) {
	ctx := context.Background()
	s, err := NewS3Storage(ctx, testS3Config(), zap.NewNop())
	require.NoError(t, err)

	assert.ErrorIs(t, s.Put(ctx, "", strings.NewReader("x"), 1, "text/plain"), errEmptyKey)
	assert.ErrorIs(t, s.Delete(ctx, ""), errEmptyKey)
	_, err = s.Exists(ctx, "")
	assert.ErrorIs(t, err, errEmptyKey)
}

func TestMemoryStorage(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStorage("http://files.test")

	require.NoError(t, m.Put(ctx, "tools/lathe/manual.pdf", strings.NewReader("%PDF"), 4, "application/pdf"))
	ok, err := m.Exists(ctx, "tools/lathe/manual.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	data, ct, ok := m.Object("tools/lathe/manual.pdf")
	require.True(t, ok)
	assert.Equal(t, "%PDF", string(data))
	assert.Equal(t, "application/pdf", ct)

	u, _, err := m.PresignGet(ctx, "tools/lathe/manual.pdf", time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(u, "http://files.test/tools%2Flathe%2Fmanual.pdf?expires="))

	require.NoError(t, m.Delete(ctx, "tools/lathe/manual.pdf"))
	ok, err = m.Exists(ctx, "tools/lathe/manual.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNew(t *testing.T) {
	ctx := context.Background()
	s, err := New(ctx, config.StorageConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &MemoryStorage{}, s)

	s, err = New(ctx, testS3Config(), zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &S3Storage{}, s)

	_, err = New(ctx, config.StorageConfig{Enabled: true}, zap.NewNop())
	assert.Error(t, err)
}
