package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormOrderRepository_PayoutWindowInBusinessZone(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	la, err := time.LoadLocation("America/Los_Angeles")
	require.NoError(t, err)
	orders := NewGormOrderRepository(db).InLocation(la)

	split, err := billing.NewRevenueSplit("Org", []billing.SplitEntry{{Percentage: dec("100")}})
	require.NoError(t, err)
	require.NoError(t, NewGormRevenueSplitRepository(db).Save(ctx, split))
	carol := mustUser(t, db, "carol")

	paidAt := func(issued time.Time) *billing.Order {
		o, err := billing.NewOrder(carol.ID, "Kiln firing", 1500, &split.ID)
		require.NoError(t, err)
		o.IssuedAt = issued
		o.Status = billing.OrderStatusPaid
		require.NoError(t, orders.Save(ctx, o))
		return o
	}

	// Feb 29 19:00 in Los Angeles
	paidAt(time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC))
	// Mar 1 00:00 in Los Angeles
	first := paidAt(time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	// Mar 31 19:00 in Los Angeles
	last := paidAt(time.Date(2024, 4, 1, 2, 0, 0, 0, time.UTC))
	// Apr 1 00:00 in Los Angeles
	paidAt(time.Date(2024, 4, 1, 7, 0, 0, 0, time.UTC))

	found, err := orders.FindPaidWithSplitBetween(ctx, day("2024-03-01"), day("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, first.ID, found[0].ID)
	assert.Equal(t, last.ID, found[1].ID)

	utc, err := NewGormOrderRepository(db).FindPaidWithSplitBetween(ctx, day("2024-03-01"), day("2024-03-31"))
	require.NoError(t, err)
	require.Len(t, utc, 2)
	assert.Equal(t, first.ID, utc[1].ID)
}

func TestGormOrderRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	orders := NewGormOrderRepository(db)
	splits := NewGormRevenueSplitRepository(db)

	split, err := billing.NewRevenueSplit("Guild 70/30", []billing.SplitEntry{
		{EntityType: billing.EntityTypeGuild, EntityID: uuid.New(), Percentage: dec("70")},
		{Percentage: dec("30")},
	})
	require.NoError(t, err)
	require.NoError(t, splits.Save(ctx, split))

	alice := mustUser(t, db, "alice")
	bob := mustUser(t, db, "bob")

	newOrder := func(user uuid.UUID, amount int64, issued string, status billing.OrderStatus, withSplit bool) *billing.Order {
		var splitID *uuid.UUID
		if withSplit {
			splitID = &split.ID
		}
		o, err := billing.NewOrder(user, "Laser time", amount, splitID)
		require.NoError(t, err)
		o.IssuedAt = day(issued).Add(15 * time.Hour)
		o.Status = status
		require.NoError(t, orders.Save(ctx, o))
		return o
	}

	tab1 := newOrder(alice.ID, 1000, "2024-03-02", billing.OrderStatusOnTab, true)
	tab2 := newOrder(alice.ID, 500, "2024-03-01", billing.OrderStatusOnTab, false)
	newOrder(bob.ID, 700, "2024-03-03", billing.OrderStatusOnTab, false)
	paidIn := newOrder(bob.ID, 2000, "2024-03-31", billing.OrderStatusPaid, true)
	newOrder(bob.ID, 2000, "2024-04-01", billing.OrderStatusPaid, true)
	newOrder(bob.ID, 2000, "2024-03-15", billing.OrderStatusPaid, false)

	t.Run("paid with split honours inclusive end date", func(t *testing.T) {
		found, err := orders.FindPaidWithSplitBetween(ctx, day("2024-03-01"), day("2024-03-31"))
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, paidIn.ID, found[0].ID)
		require.NotNil(t, found[0].RevenueSplit)
		assert.Len(t, found[0].RevenueSplit.Splits, 2)
		assert.Equal(t, billing.EntityTypeOrg, found[0].RevenueSplit.Splits[1].Payee().Type)
	})

	t.Run("users with tab", func(t *testing.T) {
		ids, err := orders.FindUserIDsWithTab(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, []uuid.UUID{alice.ID, bob.ID}, ids)
	})

	t.Run("on tab oldest first", func(t *testing.T) {
		tab, err := orders.FindOnTabByUser(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, tab, 2)
		assert.Equal(t, tab2.ID, tab[0].ID)
		assert.Equal(t, int64(1500), billing.TotalCents(tab))
	})

	t.Run("mark billed skips orders already billed", func(t *testing.T) {
		at := time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC)
		n, err := orders.MarkBilled(ctx, []uuid.UUID{tab1.ID, tab2.ID, paidIn.ID}, at)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		again, err := orders.MarkBilled(ctx, []uuid.UUID{tab1.ID}, at)
		require.NoError(t, err)
		assert.Zero(t, again)

		o, err := orders.FindByID(ctx, tab1.ID)
		require.NoError(t, err)
		assert.Equal(t, billing.OrderStatusBilled, o.Status)
		require.NotNil(t, o.BilledAt)
	})
}

func TestGormInvoiceAndPayoutRepositories(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	invoices := NewGormInvoiceRepository(db)
	payouts := NewGormPayoutRepository(db)

	u := mustUser(t, db, "payer")
	o, err := billing.NewOrder(u.ID, "Class fee", 4500, nil)
	require.NoError(t, err)

	inv := billing.NewOpenInvoice(u.ID, []billing.Order{*o})
	inv.StripeInvoiceID = "in_123"
	require.NoError(t, invoices.Save(ctx, inv))

	list, err := invoices.FindByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(4500), list[0].AmountDue)
	require.Len(t, list[0].LineItems, 1)
	assert.Equal(t, "Class fee", list[0].LineItems[0].Description)

	start, end := day("2024-03-01"), day("2024-03-31")
	p1 := billing.NewPendingPayout(billing.PayeeKey{Type: billing.EntityTypeOrg}, 1599, start, end)
	p2 := billing.NewPendingPayout(billing.PayeeKey{Type: billing.EntityTypeGuild, ID: uuid.New()}, 1399, start, end)
	p2.InvoiceIDs = []uuid.UUID{inv.ID}
	require.NoError(t, payouts.SaveAll(ctx, []*billing.Payout{p1, p2}))

	got, err := payouts.FindByID(ctx, p2.ID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{inv.ID}, got.InvoiceIDs)
	assert.Equal(t, "2024-03-31", got.PeriodEnd.Format(shared.DateLayout))

	_, err = payouts.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormSubscriptionRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormSubscriptionRepository(db)

	plan, err := billing.NewSubscriptionPlan("Monthly Access", dec("150"), billing.IntervalMonthly)
	require.NoError(t, err)
	require.NoError(t, repo.SavePlan(ctx, plan))

	u := mustUser(t, db, "subscriber")
	sub := &billing.MemberSubscription{
		BaseEntity:         shared.NewBaseEntity(),
		UserID:             u.ID,
		SubscriptionPlanID: plan.ID,
		Status:             billing.SubscriptionStatusActive,
		StartsAt:           day("2024-01-01"),
	}
	require.NoError(t, repo.Save(ctx, sub))

	active, err := repo.FindActiveByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.NotNil(t, active[0].SubscriptionPlan)
	assert.True(t, active[0].SubscriptionPlan.IsActive)

	require.NoError(t, sub.Cancel(time.Now()))
	require.NoError(t, repo.Save(ctx, sub))
	active, err = repo.FindActiveByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestGormOrderRepository_MarkBilled_DatabaseError(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectExec(`UPDATE "orders" SET`).WillReturnError(assert.AnError)

	_, err := NewGormOrderRepository(db.DB).MarkBilled(context.Background(), []uuid.UUID{uuid.New()}, time.Now())
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormOrderRepository_FindByID_NotFound(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := NewGormOrderRepository(db.DB).FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
