package core

import (
	"context"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
)

// PushSubscription is a browser Web Push registration
type PushSubscription struct {
	shared.BaseEntity
	UserID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User     *identity.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Endpoint string         `gorm:"type:varchar(500);not null;uniqueIndex" json:"endpoint"`
	P256dh   string         `gorm:"column:p256dh;type:varchar(100);not null" json:"p256dh"`
	Auth     string         `gorm:"type:varchar(50);not null" json:"auth"`
}

// TableName returns the table name for GORM
func (PushSubscription) TableName() string {
	return "push_subscriptions"
}

// NewPushSubscription requires all three browser-supplied fields
func NewPushSubscription(userID uuid.UUID, endpoint, p256dh, auth string) (*PushSubscription, error) {
	if endpoint == "" || p256dh == "" || auth == "" {
		return nil, shared.NewDomainError("MISSING_FIELDS", "Missing required fields")
	}
	if len(endpoint) > 500 {
		return nil, shared.NewDomainError("INVALID_ENDPOINT", "Endpoint cannot exceed 500 characters")
	}
	return &PushSubscription{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		Endpoint:   endpoint,
		P256dh:     p256dh,
		Auth:       auth,
	}, nil
}

// String renders "email - endpoint prefix..."
func (p *PushSubscription) String() string {
	email := ""
	if p.User != nil {
		email = p.User.Email
	}
	ep := p.Endpoint
	if len(ep) > 50 {
		ep = ep[:50]
	}
	return email + " - " + ep + "..."
}

// PushSubscriptionRepository persists push subscriptions
type PushSubscriptionRepository interface {
	// UpsertByEndpoint creates the subscription or reassigns the existing
	// endpoint's user and keys
	UpsertByEndpoint(ctx context.Context, sub *PushSubscription) error
	// DeleteByEndpoint removes the user's subscription; missing rows are not an error
	DeleteByEndpoint(ctx context.Context, userID uuid.UUID, endpoint string) error
	FindByUser(ctx context.Context, userID uuid.UUID) ([]PushSubscription, error)
}
