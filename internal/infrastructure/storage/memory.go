package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/config"
	"go.uber.org/zap"
)

var _ shared.ObjectStorage = (*MemoryStorage)(nil)

// MemoryStorage keeps objects in process memory. It backs local development
// when no bucket is configured, and tests.
type MemoryStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

// NewMemoryStorage creates an empty store that presigns under baseURL
func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{BaseURL: baseURL, objects: make(map[string]memoryObject)}
}

func (m *MemoryStorage) Put(_ context.Context, key string, body io.Reader, _ int64, contentType string) error {
	if key == "" {
		return errEmptyKey
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memoryObject{data: buf.Bytes(), contentType: contentType}
	return nil
}

func (m *MemoryStorage) PresignGet(_ context.Context, key string, expires time.Duration) (string, time.Time, error) {
	if key == "" {
		return "", time.Time{}, errEmptyKey
	}
	if expires <= 0 {
		expires = 15 * time.Minute
	}
	expiresAt := time.Now().Add(expires)
	u := fmt.Sprintf("%s/%s?expires=%d", m.BaseURL, url.PathEscape(key), expiresAt.Unix())
	return u, expiresAt, nil
}

func (m *MemoryStorage) Delete(_ context.Context, key string) error {
	if key == "" {
		return errEmptyKey
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *MemoryStorage) Exists(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, errEmptyKey
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.objects[key]
	return ok, nil
}

// Object returns a stored object's bytes and content type
func (m *MemoryStorage) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	return obj.data, obj.contentType, ok
}

// New picks S3 when storage is enabled, otherwise an in-memory store
func New(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (shared.ObjectStorage, error) {
	if !cfg.Enabled {
		logger.Warn("Object storage disabled, documents are kept in memory")
		return NewMemoryStorage("http://localhost/documents"), nil
	}
	s3, err := NewS3Storage(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return s3, nil
}
