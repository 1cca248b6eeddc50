package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/core"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSettingRepository implements core.SettingRepository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// FindByKey finds a setting by key
func (r *GormSettingRepository) FindByKey(ctx context.Context, key string) (*core.Setting, error) {
	var s core.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Upsert inserts the setting or overwrites value, type and editor on key conflict
func (r *GormSettingRepository) Upsert(ctx context.Context, setting *core.Setting) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_by_id", "updated_at"}),
	}).Create(setting).Error
}

// GormPushSubscriptionRepository implements core.PushSubscriptionRepository
type GormPushSubscriptionRepository struct {
	db *gorm.DB
}

// NewGormPushSubscriptionRepository creates a new GormPushSubscriptionRepository
func NewGormPushSubscriptionRepository(db *gorm.DB) *GormPushSubscriptionRepository {
	return &GormPushSubscriptionRepository{db: db}
}

// UpsertByEndpoint creates the subscription or moves an existing endpoint to
// the new user and keys
func (r *GormPushSubscriptionRepository) UpsertByEndpoint(ctx context.Context, sub *core.PushSubscription) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "endpoint"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "p256dh", "auth", "updated_at"}),
	}).Create(sub).Error
}

// DeleteByEndpoint removes the user's subscription for endpoint, if any
func (r *GormPushSubscriptionRepository) DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND endpoint = ?", userID, endpoint).
		Delete(&core.PushSubscription{}).Error
}

// FindByUser lists the user's subscriptions
func (r *GormPushSubscriptionRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]core.PushSubscription, error) {
	var subs []core.PushSubscription
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}
