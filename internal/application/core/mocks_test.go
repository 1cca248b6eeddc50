package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/core"
	"github.com/stretchr/testify/mock"
)

type MockSettingRepository struct {
	mock.Mock
}

func (m *MockSettingRepository) FindByKey(ctx context.Context, key string) (*core.Setting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*core.Setting), args.Error(1)
}

func (m *MockSettingRepository) Upsert(ctx context.Context, setting *core.Setting) error {
	return m.Called(ctx, setting).Error(0)
}

type MockPushSubscriptionRepository struct {
	mock.Mock
}

func (m *MockPushSubscriptionRepository) UpsertByEndpoint(ctx context.Context, sub *core.PushSubscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockPushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return m.Called(ctx, userID, endpoint).Error(0)
}

func (m *MockPushSubscriptionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]core.PushSubscription, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]core.PushSubscription), args.Error(1)
}

// failingCache errors on every call
type failingCache struct{ err error }

func (c failingCache) Get(context.Context, string) (*core.Setting, error) { return nil, c.err }
func (c failingCache) Set(context.Context, *core.Setting, time.Duration) error {
	return c.err
}
func (c failingCache) Invalidate(context.Context, string) error { return c.err }
