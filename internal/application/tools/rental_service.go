package tools

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/application/commerce"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/domain/tools"
	"github.com/plfog/backoffice/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderableRental is the orderable type recorded on rental orders
const OrderableRental = "tools.rental"

var ErrRentableUnavailable = shared.NewDomainError("RENTABLE_UNAVAILABLE", "Rentable is not available")

// ReturnResult is the closed rental with its charge
type ReturnResult struct {
	Rental *tools.Rental   `json:"rental"`
	Cost   decimal.Decimal `json:"cost"`
	Order  *billing.Order  `json:"order,omitempty"`
}

// RentalService checks tools out and back in
type RentalService struct {
	scope  commerce.TransactionScope
	logger *zap.Logger
	now    func() time.Time
}

// NewRentalService creates a rental service
func NewRentalService(scope commerce.TransactionScope, logger *zap.Logger) *RentalService {
	return &RentalService{
		scope:  scope,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Checkout starts a rental now, due at due. The rentable must be active
// with no rental outstanding.
func (s *RentalService) Checkout(ctx context.Context, rentableID, userID uuid.UUID, due time.Time) (*tools.Rental, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tools", "checkout", "rentable_id", rentableID.String())
	defer span.End()

	var rental *tools.Rental
	err := s.scope.Execute(ctx, func(repos commerce.TransactionalRepositories) error {
		rentable, err := repos.Rentals().FindRentable(ctx, rentableID)
		if err != nil {
			return err
		}
		active, err := repos.Rentals().CountActiveRentals(ctx, rentable.ID)
		if err != nil {
			return err
		}
		if !rentable.IsAvailable(active) {
			return ErrRentableUnavailable
		}
		rental, err = tools.NewRental(rentable.ID, userID, s.now(), due)
		if err != nil {
			return err
		}
		rental.Rentable = rentable
		return repos.Rentals().SaveRental(ctx, rental)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Rental checked out",
		zap.String("rental_id", rental.ID.String()),
		zap.String("user_id", userID.String()),
		zap.Time("due_at", rental.DueAt))
	return rental, nil
}

// Return closes the rental, charges every started period and puts the
// charge on the renter's tab under the rentable's revenue split. A free
// rental gets no order.
func (s *RentalService) Return(ctx context.Context, id uuid.UUID) (*ReturnResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "tools", "return", "rental_id", id.String())
	defer span.End()

	var result *ReturnResult
	err := s.scope.Execute(ctx, func(repos commerce.TransactionalRepositories) error {
		rental, err := repos.Rentals().FindRental(ctx, id)
		if err != nil {
			return err
		}
		now := s.now()
		if err := rental.MarkReturned(now); err != nil {
			return err
		}
		result = &ReturnResult{Rental: rental, Cost: rental.CalculateCost(now)}

		if result.Cost.IsPositive() {
			order, err := commerce.TabOrder(rental.UserID, "Rental: "+rentalName(rental), result.Cost,
				rental.Rentable.RevenueSplitID, OrderableRental, rental.ID)
			if err != nil {
				return err
			}
			if err := repos.Orders().Save(ctx, order); err != nil {
				return err
			}
			rental.OrderID = &order.ID
			result.Order = order
		}
		return repos.Rentals().SaveRental(ctx, rental)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, "cost_cents", shared.ToCents(result.Cost))
	s.logger.Info("Rental returned",
		zap.String("rental_id", id.String()),
		zap.String("cost", shared.FormatDecimal(result.Cost)))
	return result, nil
}

func rentalName(r *tools.Rental) string {
	if r.Rentable != nil && r.Rentable.Tool != nil {
		return r.Rentable.Tool.Name
	}
	return r.RentableID.String()
}
