package shared

import (
	"context"
	"time"
)

// JobLock guards a named job so only one run happens at a time, across
// every process sharing the lock backend
type JobLock interface {
	// TryAcquire takes the lock for ttl. It returns false without error when
	// another holder has it.
	TryAcquire(ctx context.Context, name string, ttl time.Duration) (bool, error)

	// Release drops the lock early
	Release(ctx context.Context, name string) error
}
