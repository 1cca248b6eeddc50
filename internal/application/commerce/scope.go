// Package commerce holds the pieces shared by flows that put an order on a
// member's tab: class enrollment, tool rental and counter purchases.
package commerce

import (
	"context"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/education"
	"github.com/plfog/backoffice/internal/domain/outreach"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/domain/tools"
	"github.com/shopspring/decimal"
)

// TransactionalRepositories exposes the repositories bound to one transaction
type TransactionalRepositories interface {
	Orders() billing.OrderRepository
	Classes() education.ClassRepository
	Rentals() tools.RentalRepository
	Buyables() outreach.BuyableRepository
}

// TransactionScope runs fn atomically. Any error rolls back every write fn made.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TabOrder builds an on-tab order for amount dollars, pointing back at the
// object it pays for
func TabOrder(userID uuid.UUID, description string, amount decimal.Decimal, splitID *uuid.UUID, orderableType string, orderableID uuid.UUID) (*billing.Order, error) {
	order, err := billing.NewOrder(userID, description, shared.ToCents(amount), splitID)
	if err != nil {
		return nil, err
	}
	return order.For(orderableType, orderableID), nil
}
