package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PayoutService derives payouts from revenue splits and records distribution
type PayoutService struct {
	orderRepo  billing.OrderRepository
	payoutRepo billing.PayoutRepository
	metrics    Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// NewPayoutService creates a payout service. metrics may be nil.
func NewPayoutService(
	orderRepo billing.OrderRepository,
	payoutRepo billing.PayoutRepository,
	metrics Metrics,
	logger *zap.Logger,
) *PayoutService {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &PayoutService{
		orderRepo:  orderRepo,
		payoutRepo: payoutRepo,
		metrics:    metrics,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// ProcessPayoutReport aggregates paid orders issued between start and end
// (calendar dates, inclusive) into pending payouts, one per payee, and
// stores them together
func (s *PayoutService) ProcessPayoutReport(ctx context.Context, start, end time.Time) ([]*billing.Payout, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "payout", "process_report",
		"period_start", shared.DateOf(start).Format(shared.DateLayout),
		"period_end", shared.DateOf(end).Format(shared.DateLayout))
	defer span.End()

	if shared.DateOf(end).Before(shared.DateOf(start)) {
		err := shared.NewDomainError("INVALID_PERIOD", "Period end cannot be before period start")
		telemetry.RecordError(span, err)
		return nil, err
	}

	orders, err := s.orderRepo.FindPaidWithSplitBetween(ctx, start, end)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	payouts := billing.AggregatePayouts(orders, start, end)
	if len(payouts) > 0 {
		if err := s.payoutRepo.SaveAll(ctx, payouts); err != nil {
			s.logger.Error("Failed to save payouts", zap.Error(err))
			telemetry.RecordError(span, err)
			return nil, err
		}
	}
	for _, p := range payouts {
		s.metrics.PayoutCreated(ctx, string(p.PayeeType), p.Amount)
	}

	telemetry.SetAttributes(span, "orders", len(orders), "payouts", len(payouts))
	s.logger.Info("Payout report processed",
		zap.Int("orders", len(orders)),
		zap.Int("payouts", len(payouts)))
	return payouts, nil
}

// DistributePayout marks a pending payout as paid out by user by
func (s *PayoutService) DistributePayout(ctx context.Context, id, by uuid.UUID) (*billing.Payout, error) {
	payout, err := s.payoutRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := payout.MarkDistributed(by, s.now()); err != nil {
		return nil, err
	}
	if err := s.payoutRepo.Save(ctx, payout); err != nil {
		return nil, err
	}
	s.logger.Info("Payout distributed",
		zap.String("payout_id", id.String()),
		zap.String("distributed_by", by.String()))
	return payout, nil
}
