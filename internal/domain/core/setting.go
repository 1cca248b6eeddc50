// Package core holds site-wide records that belong to no single area:
// runtime settings and browser push subscriptions.
package core

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
)

// SettingType describes how a setting value should be read
type SettingType string

const (
	SettingTypeText    SettingType = "text"
	SettingTypeNumber  SettingType = "number"
	SettingTypeBoolean SettingType = "boolean"
	SettingTypeJSON    SettingType = "json"
)

// Choices implements shared.Choices
func (SettingType) Choices() []string {
	return []string{string(SettingTypeText), string(SettingTypeNumber), string(SettingTypeBoolean), string(SettingTypeJSON)}
}

// Setting is a key/value pair editable at runtime. Value holds any JSON
// document.
type Setting struct {
	shared.BaseEntity
	Key         string         `gorm:"type:varchar(255);not null;uniqueIndex" json:"key"`
	Value       any            `gorm:"type:text;serializer:json" json:"value"`
	Type        SettingType    `gorm:"type:varchar(20);not null;default:'text'" json:"type"`
	UpdatedByID *uuid.UUID     `gorm:"type:uuid" json:"updated_by_id,omitempty"`
	UpdatedBy   *identity.User `gorm:"foreignKey:UpdatedByID" json:"updated_by,omitempty"`
}

// TableName returns the table name for GORM
func (Setting) TableName() string {
	return "settings"
}

// NewSetting validates key and type
func NewSetting(key string, value any, kind SettingType) (*Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, shared.NewDomainError("INVALID_SETTING_KEY", "Setting key cannot be empty")
	}
	if kind == "" {
		kind = SettingTypeText
	}
	if !shared.ContainsChoice(kind, string(kind)) {
		return nil, shared.NewDomainError("INVALID_SETTING_TYPE", "Unknown setting type")
	}
	return &Setting{
		BaseEntity: shared.NewBaseEntity(),
		Key:        key,
		Value:      value,
		Type:       kind,
	}, nil
}

func (s *Setting) String() string {
	return s.Key
}

// SettingRepository persists settings
type SettingRepository interface {
	FindByKey(ctx context.Context, key string) (*Setting, error)
	// Upsert inserts the setting or replaces value and type on key conflict
	Upsert(ctx context.Context, setting *Setting) error
}

// SettingCache keeps recently read settings close to the service
type SettingCache interface {
	// Get returns nil, nil on a miss
	Get(ctx context.Context, key string) (*Setting, error)
	Set(ctx context.Context, setting *Setting, ttl time.Duration) error
	Invalidate(ctx context.Context, key string) error
}
