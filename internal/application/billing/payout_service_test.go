package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func paidOrder(t *testing.T, amount int64, split *billing.RevenueSplit) billing.Order {
	t.Helper()
	o, err := billing.NewOrder(uuid.New(), "Class fee", amount, &split.ID)
	require.NoError(t, err)
	o.Status = billing.OrderStatusPaid
	o.RevenueSplit = split
	return *o
}

func TestPayoutService_ProcessPayoutReport(t *testing.T) {
	ctx := context.Background()
	start := shared.MustDate("2025-03-01")
	end := shared.MustDate("2025-03-31")

	guildID := uuid.New()
	instructorID := uuid.New()
	split, err := billing.NewRevenueSplit("Glass class", []billing.SplitEntry{
		{EntityType: billing.EntityTypeGuild, EntityID: guildID, Percentage: decimal.NewFromInt(60)},
		{EntityType: billing.EntityTypeUser, EntityID: instructorID, Percentage: decimal.NewFromInt(40)},
	})
	require.NoError(t, err)

	t.Run("creates one pending payout per payee", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		payoutRepo := new(MockPayoutRepository)
		metrics := newRecordingMetrics()
		svc := NewPayoutService(orderRepo, payoutRepo, metrics, zap.NewNop())

		orders := []billing.Order{paidOrder(t, 10000, split), paidOrder(t, 3333, split)}
		orderRepo.On("FindPaidWithSplitBetween", mock.Anything, start, end).Return(orders, nil)
		payoutRepo.On("SaveAll", mock.Anything, mock.AnythingOfType("[]*billing.Payout")).Return(nil)

		payouts, err := svc.ProcessPayoutReport(ctx, start, end)
		require.NoError(t, err)
		require.Len(t, payouts, 2)

		assert.Equal(t, billing.EntityTypeGuild, payouts[0].PayeeType)
		assert.Equal(t, guildID, payouts[0].PayeeID)
		assert.Equal(t, int64(6000+1999), payouts[0].Amount)
		assert.Equal(t, billing.EntityTypeUser, payouts[1].PayeeType)
		assert.Equal(t, int64(4000+1333), payouts[1].Amount)
		for _, p := range payouts {
			assert.Equal(t, billing.PayoutStatusPending, p.Status)
			assert.True(t, p.PeriodStart.Equal(start))
			assert.True(t, p.PeriodEnd.Equal(end))
		}
		assert.Equal(t, int64(13332), metrics.payoutCents)
	})

	t.Run("no orders saves nothing", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		payoutRepo := new(MockPayoutRepository)
		svc := NewPayoutService(orderRepo, payoutRepo, nil, zap.NewNop())
		orderRepo.On("FindPaidWithSplitBetween", mock.Anything, start, end).Return([]billing.Order{}, nil)

		payouts, err := svc.ProcessPayoutReport(ctx, start, end)
		require.NoError(t, err)
		assert.Empty(t, payouts)
		payoutRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("rejects inverted period", func(t *testing.T) {
		svc := NewPayoutService(new(MockOrderRepository), new(MockPayoutRepository), nil, zap.NewNop())
		_, err := svc.ProcessPayoutReport(ctx, end, start)
		assert.Error(t, err)
	})

	t.Run("save failure is returned", func(t *testing.T) {
		orderRepo := new(MockOrderRepository)
		payoutRepo := new(MockPayoutRepository)
		svc := NewPayoutService(orderRepo, payoutRepo, nil, zap.NewNop())
		orderRepo.On("FindPaidWithSplitBetween", mock.Anything, start, end).
			Return([]billing.Order{paidOrder(t, 500, split)}, nil)
		payoutRepo.On("SaveAll", mock.Anything, mock.Anything).Return(errors.New("tx aborted"))

		payouts, err := svc.ProcessPayoutReport(ctx, start, end)
		assert.EqualError(t, err, "tx aborted")
		assert.Nil(t, payouts)
	})
}

func TestPayoutService_DistributePayout(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 4, 2, 15, 0, 0, 0, time.UTC)
	staffID := uuid.New()

	t.Run("pending payout is distributed", func(t *testing.T) {
		payoutRepo := new(MockPayoutRepository)
		svc := NewPayoutService(new(MockOrderRepository), payoutRepo, nil, zap.NewNop())
		svc.now = func() time.Time { return now }

		payout := billing.NewPendingPayout(billing.PayeeKey{Type: billing.EntityTypeOrg}, 1200, now, now)
		payoutRepo.On("FindByID", ctx, payout.ID).Return(payout, nil)
		payoutRepo.On("Save", ctx, payout).Return(nil)

		got, err := svc.DistributePayout(ctx, payout.ID, staffID)
		require.NoError(t, err)
		assert.True(t, got.IsDistributed())
		assert.Equal(t, now, *got.DistributedAt)
		assert.Equal(t, staffID, *got.DistributedByID)
	})

	t.Run("already distributed", func(t *testing.T) {
		payoutRepo := new(MockPayoutRepository)
		svc := NewPayoutService(new(MockOrderRepository), payoutRepo, nil, zap.NewNop())

		payout := billing.NewPendingPayout(billing.PayeeKey{Type: billing.EntityTypeOrg}, 1200, now, now)
		require.NoError(t, payout.MarkDistributed(staffID, now))
		payoutRepo.On("FindByID", ctx, payout.ID).Return(payout, nil)

		_, err := svc.DistributePayout(ctx, payout.ID, staffID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		payoutRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("missing payout", func(t *testing.T) {
		payoutRepo := new(MockPayoutRepository)
		svc := NewPayoutService(new(MockOrderRepository), payoutRepo, nil, zap.NewNop())
		id := uuid.New()
		payoutRepo.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := svc.DistributePayout(ctx, id, staffID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}
