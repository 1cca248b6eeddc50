package core

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/core"
	"github.com/plfog/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

var ErrMissingEndpoint = shared.NewDomainError("MISSING_ENDPOINT", "Missing endpoint")

// PushService registers browsers for Web Push
type PushService struct {
	repo      core.PushSubscriptionRepository
	publicKey string
	logger    *zap.Logger
}

// NewPushService creates a push service advertising the VAPID public key
func NewPushService(repo core.PushSubscriptionRepository, vapidPublicKey string, logger *zap.Logger) *PushService {
	return &PushService{repo: repo, publicKey: vapidPublicKey, logger: logger}
}

// VAPIDPublicKey is the application server key browsers subscribe with
func (s *PushService) VAPIDPublicKey() string {
	return s.publicKey
}

// Subscribe stores the browser subscription for user. A known endpoint is
// moved to this user with the new keys.
func (s *PushService) Subscribe(ctx context.Context, userID uuid.UUID, endpoint, p256dh, auth string) (*core.PushSubscription, error) {
	sub, err := core.NewPushSubscription(userID, strings.TrimSpace(endpoint), p256dh, auth)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpsertByEndpoint(ctx, sub); err != nil {
		return nil, err
	}
	s.logger.Debug("Push subscription saved", zap.String("user_id", userID.String()))
	return sub, nil
}

// Unsubscribe removes the user's subscription for endpoint, if any
func (s *PushService) Unsubscribe(ctx context.Context, userID uuid.UUID, endpoint string) error {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ErrMissingEndpoint
	}
	return s.repo.DeleteByEndpoint(ctx, userID, endpoint)
}

// Subscriptions lists the user's registered browsers
func (s *PushService) Subscriptions(ctx context.Context, userID uuid.UUID) ([]core.PushSubscription, error) {
	return s.repo.FindByUser(ctx, userID)
}
