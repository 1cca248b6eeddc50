// Package core serves runtime settings and push subscriptions.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/core"
	"github.com/plfog/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// SettingService reads settings through a cache and writes them back to
// the database. Cache failures degrade to database reads.
type SettingService struct {
	repo   core.SettingRepository
	cache  core.SettingCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewSettingService creates a setting service
func NewSettingService(repo core.SettingRepository, cache core.SettingCache, ttl time.Duration, logger *zap.Logger) *SettingService {
	return &SettingService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// Get returns the value stored under key, or def when the key is unset
func (s *SettingService) Get(ctx context.Context, key string, def any) (any, error) {
	setting, err := s.Lookup(ctx, key)
	if errors.Is(err, shared.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	return setting.Value, nil
}

// Lookup returns the full setting record
func (s *SettingService) Lookup(ctx context.Context, key string) (*core.Setting, error) {
	cached, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("Setting cache read failed", zap.String("key", key), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	setting, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, setting, s.ttl); err != nil {
		s.logger.Warn("Setting cache write failed", zap.String("key", key), zap.Error(err))
	}
	return setting, nil
}

// Set upserts the setting and drops any cached copy
func (s *SettingService) Set(ctx context.Context, key string, value any, kind core.SettingType, updatedBy *uuid.UUID) (*core.Setting, error) {
	setting, err := core.NewSetting(key, value, kind)
	if err != nil {
		return nil, err
	}
	setting.UpdatedByID = updatedBy
	if err := s.repo.Upsert(ctx, setting); err != nil {
		s.logger.Error("Failed to save setting", zap.String("key", setting.Key), zap.Error(err))
		return nil, err
	}
	if err := s.cache.Invalidate(ctx, setting.Key); err != nil {
		s.logger.Warn("Setting cache invalidation failed", zap.String("key", setting.Key), zap.Error(err))
	}
	s.logger.Info("Setting updated", zap.String("key", setting.Key), zap.String("type", string(setting.Type)))
	return setting, nil
}
