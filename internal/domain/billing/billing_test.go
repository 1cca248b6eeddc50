package billing

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pct(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func paidOrder(t *testing.T, amount int64, split *RevenueSplit) Order {
	t.Helper()
	o, err := NewOrder(uuid.New(), "Workshop", amount, &split.ID)
	require.NoError(t, err)
	o.Status = OrderStatusPaid
	o.RevenueSplit = split
	return *o
}

func TestAggregatePayouts(t *testing.T) {
	start, end := shared.MustDate("2025-01-01"), shared.MustDate("2025-01-31")
	guild := uuid.New()
	person := uuid.New()

	workshop, err := NewRevenueSplit("Guild Workshop", []SplitEntry{
		{EntityType: EntityTypeGuild, EntityID: guild, Percentage: pct("70")},
		{EntityType: EntityTypeOrg, Percentage: pct("30")},
	})
	require.NoError(t, err)
	class, err := NewRevenueSplit("Class Revenue", []SplitEntry{
		{EntityType: EntityTypeUser, EntityID: person, Percentage: pct("60")},
		{Percentage: pct("40")},
	})
	require.NoError(t, err)

	orders := []Order{
		paidOrder(t, 1001, workshop),
		paidOrder(t, 2500, class),
		paidOrder(t, 999, workshop),
	}

	payouts := AggregatePayouts(orders, start, end)
	require.Len(t, payouts, 3)

	// 1001*0.7 = 700.7 -> 700, 999*0.7 = 699.3 -> 699
	assert.Equal(t, EntityTypeGuild, payouts[0].PayeeType)
	assert.Equal(t, guild, payouts[0].PayeeID)
	assert.Equal(t, int64(1399), payouts[0].Amount)

	// 1001*0.3 = 300, 2500*0.4 = 1000 (defaulted to org), 999*0.3 = 299
	assert.Equal(t, EntityTypeOrg, payouts[1].PayeeType)
	assert.Equal(t, uuid.Nil, payouts[1].PayeeID)
	assert.Equal(t, int64(1599), payouts[1].Amount)

	assert.Equal(t, EntityTypeUser, payouts[2].PayeeType)
	assert.Equal(t, int64(1500), payouts[2].Amount)

	for _, p := range payouts {
		assert.Equal(t, PayoutStatusPending, p.Status)
		assert.Equal(t, start, p.PeriodStart)
		assert.Equal(t, end, p.PeriodEnd)
	}
}

func TestAggregatePayouts_NoOrders(t *testing.T) {
	assert.Empty(t, AggregatePayouts(nil, time.Now(), time.Now()))
}

func TestSplitEntry_MissingKeysDecodeToDefaults(t *testing.T) {
	var entries []SplitEntry
	require.NoError(t, json.Unmarshal([]byte(`[{"percentage": 25}, {}]`), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, PayeeKey{Type: EntityTypeOrg, ID: uuid.Nil}, entries[0].Payee())
	assert.True(t, entries[0].Percentage.Equal(pct("25")))
	assert.True(t, entries[1].Percentage.IsZero())
}

func TestNewRevenueSplit_Validation(t *testing.T) {
	_, err := NewRevenueSplit("", nil)
	assert.Error(t, err)
	_, err = NewRevenueSplit("Too much", []SplitEntry{{Percentage: pct("60")}, {Percentage: pct("41")}})
	assert.Error(t, err)
	_, err = NewRevenueSplit("Negative", []SplitEntry{{Percentage: pct("-1")}})
	assert.Error(t, err)
}

func TestOrder(t *testing.T) {
	o, err := NewOrder(uuid.New(), "Laser cutter time", 12345, nil)
	require.NoError(t, err)
	assert.True(t, o.IsOnTab())
	assert.Equal(t, "$123.45", o.FormattedAmount())

	now := time.Now()
	require.NoError(t, o.MarkBilled(now))
	assert.Equal(t, OrderStatusBilled, o.Status)
	require.NotNil(t, o.BilledAt)
	assert.Error(t, o.MarkBilled(now), "billed orders are never re-billed")

	require.NoError(t, o.MarkPaid())
	assert.True(t, o.IsPaid())
	o.MarkFailed()
	assert.True(t, o.IsFailed())

	_, err = NewOrder(uuid.Nil, "x", 1, nil)
	assert.Error(t, err)
	_, err = NewOrder(uuid.New(), " ", 1, nil)
	assert.Error(t, err)
	_, err = NewOrder(uuid.New(), "x", -1, nil)
	assert.Error(t, err)
}

func TestInvoice(t *testing.T) {
	user := uuid.New()
	a, _ := NewOrder(user, "Day pass", 2500, nil)
	b, _ := NewOrder(user, "Filament", 1050, nil)

	inv := NewOpenInvoice(user, []Order{*a, *b})
	assert.Equal(t, InvoiceStatusOpen, inv.Status)
	assert.Equal(t, int64(3550), inv.AmountDue)
	assert.Equal(t, "$35.50", inv.FormattedAmountDue())
	assert.Equal(t, "$0.00", inv.FormattedAmountPaid())
	assert.Equal(t, []LineItem{{"Day pass", 2500}, {"Filament", 1050}}, inv.LineItems)

	require.NoError(t, inv.MarkPaid(time.Now()))
	assert.True(t, inv.IsPaid())
	assert.Equal(t, inv.AmountDue, inv.AmountPaid)
	assert.Error(t, inv.MarkPaid(time.Now()))
}

func TestPayout_MarkDistributed(t *testing.T) {
	p := NewPendingPayout(PayeeKey{Type: EntityTypeGuild, ID: uuid.New()}, 5000, time.Now(), time.Now())
	assert.Equal(t, "$50.00", p.FormattedAmount())

	by := uuid.New()
	require.NoError(t, p.MarkDistributed(by, time.Now()))
	assert.True(t, p.IsDistributed())
	assert.Equal(t, by, *p.DistributedByID)
	assert.Error(t, p.MarkDistributed(by, time.Now()))
}

func TestSubscription(t *testing.T) {
	plan := &SubscriptionPlan{Name: "Monthly Access", Price: pct("150"), Interval: IntervalMonthly}
	assert.Equal(t, "$150.00", plan.FormattedPrice())
	assert.Equal(t, "Monthly Access ($150.00/monthly)", plan.String())

	sub := &MemberSubscription{SubscriptionPlan: plan, Status: SubscriptionStatusActive}
	assert.True(t, sub.EffectivePrice().Equal(pct("150")))

	sub.DiscountPercentage = shared.DecimalPtr(pct("10"))
	assert.True(t, sub.EffectivePrice().Equal(pct("135")))

	require.NoError(t, sub.Cancel(time.Now()))
	assert.False(t, sub.IsActive())
	assert.Error(t, sub.Cancel(time.Now()))
}
