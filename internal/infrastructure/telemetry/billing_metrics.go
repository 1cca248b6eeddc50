package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
var (
	AttrInvoiceSource = attribute.Key("invoice_source")
	AttrPayeeType     = attribute.Key("payee_type")
	AttrStripeOp      = attribute.Key("stripe_operation")
)

var ErrMeterNil = errors.New("billing metrics: nil meter")

// BillingMetrics counts tab billing, invoicing and payout activity
type BillingMetrics struct {
	ordersBilled    metric.Int64Counter
	invoicesCreated metric.Int64Counter
	stripeFailures  metric.Int64Counter
	payoutsCreated  metric.Int64Counter
	payoutCents     metric.Int64Counter
}

func NewBillingMetrics(meter metric.Meter) (*BillingMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	bm := &BillingMetrics{}
	for _, c := range []struct {
		dst              *metric.Int64Counter
		name, desc, unit string
	}{
		{&bm.ordersBilled, "plfog_orders_billed_total", "Orders moved from tab to billed", "{orders}"},
		{&bm.invoicesCreated, "plfog_invoices_created_total", "Invoices created, by source", "{invoices}"},
		{&bm.stripeFailures, "plfog_stripe_failures_total", "Failed Stripe calls, by operation", "{errors}"},
		{&bm.payoutsCreated, "plfog_payouts_created_total", "Pending payouts created, by payee type", "{payouts}"},
		{&bm.payoutCents, "plfog_payout_amount_total", "Pending payout amounts in cents", "{cents}"},
	} {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}
	return bm, nil
}

// OrdersBilled records n orders leaving the tab
func (bm *BillingMetrics) OrdersBilled(ctx context.Context, n int) {
	bm.ordersBilled.Add(ctx, int64(n))
}

// InvoiceCreated records one invoice; source is "local" or "stripe"
func (bm *BillingMetrics) InvoiceCreated(ctx context.Context, source string) {
	bm.invoicesCreated.Add(ctx, 1, metric.WithAttributes(AttrInvoiceSource.String(source)))
}

func (bm *BillingMetrics) StripeFailure(ctx context.Context, operation string) {
	bm.stripeFailures.Add(ctx, 1, metric.WithAttributes(AttrStripeOp.String(operation)))
}

// PayoutCreated records one pending payout and its amount
func (bm *BillingMetrics) PayoutCreated(ctx context.Context, payeeType string, cents int64) {
	attrs := metric.WithAttributes(AttrPayeeType.String(payeeType))
	bm.payoutsCreated.Add(ctx, 1, attrs)
	bm.payoutCents.Add(ctx, cents, attrs)
}
