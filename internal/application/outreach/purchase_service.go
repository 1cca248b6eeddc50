package outreach

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/application/commerce"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/outreach"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// OrderablePurchase is the orderable type recorded on purchase orders
const OrderablePurchase = "outreach.buyablepurchase"

var ErrBuyableInactive = shared.NewDomainError("BUYABLE_INACTIVE", "Item is not for sale")

// PurchaseResult is the recorded purchase and its tab order
type PurchaseResult struct {
	Purchase *outreach.BuyablePurchase `json:"purchase"`
	Order    *billing.Order            `json:"order"`
}

// PurchaseService sells buyables onto members' tabs
type PurchaseService struct {
	scope  commerce.TransactionScope
	logger *zap.Logger
	now    func() time.Time
}

// NewPurchaseService creates a purchase service
func NewPurchaseService(scope commerce.TransactionScope, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{
		scope:  scope,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Purchase records qty units bought by userID, bumps the sold counter and
// puts unit_price x qty on the buyer's tab
func (s *PurchaseService) Purchase(ctx context.Context, buyableID, userID uuid.UUID, qty int) (*PurchaseResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "outreach", "purchase",
		"buyable_id", buyableID.String(), "quantity", qty)
	defer span.End()

	var result *PurchaseResult
	err := s.scope.Execute(ctx, func(repos commerce.TransactionalRepositories) error {
		buyable, err := repos.Buyables().FindByID(ctx, buyableID)
		if err != nil {
			return err
		}
		if !buyable.IsActive {
			return ErrBuyableInactive
		}
		purchase, err := outreach.NewBuyablePurchase(buyable.ID, userID, qty)
		if err != nil {
			return err
		}
		purchase.PurchasedAt = s.now()

		desc := buyable.Name
		if qty > 1 {
			desc = fmt.Sprintf("%s x%d", buyable.Name, qty)
		}
		order, err := commerce.TabOrder(userID, desc, purchase.TotalCost(buyable.UnitPrice),
			buyable.RevenueSplitID, OrderablePurchase, purchase.ID)
		if err != nil {
			return err
		}
		if err := repos.Orders().Save(ctx, order); err != nil {
			return err
		}
		purchase.OrderID = &order.ID
		if err := repos.Buyables().SavePurchase(ctx, purchase); err != nil {
			return err
		}
		if err := repos.Buyables().IncrementSold(ctx, buyable.ID, qty); err != nil {
			return err
		}
		result = &PurchaseResult{Purchase: purchase, Order: order}
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Buyable purchased",
		zap.String("buyable_id", buyableID.String()),
		zap.String("user_id", userID.String()),
		zap.Int("quantity", qty),
		zap.String("total", result.Order.FormattedAmount()))
	return result, nil
}
