package shared

import (
	"context"
	"io"
	"time"
)

// ObjectStorage stores uploaded documents under opaque keys
type ObjectStorage interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	// PresignGet returns a time-limited download URL; expires <= 0 uses the
	// backend default
	PresignGet(ctx context.Context, key string, expires time.Duration) (string, time.Time, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
