package billing

import (
	"time"

	"github.com/plfog/backoffice/internal/domain/shared"
)

// AggregatePayouts sums each split entry's share of every order by payee
// and returns one pending payout per payee, in first-seen order.
// Orders without a loaded revenue split contribute nothing. Shares are
// truncated to whole cents per order before summing.
func AggregatePayouts(orders []Order, start, end time.Time) []*Payout {
	totals := make(map[PayeeKey]int64)
	var keys []PayeeKey
	for _, o := range orders {
		if o.RevenueSplit == nil {
			continue
		}
		for _, entry := range o.RevenueSplit.Splits {
			key := entry.Payee()
			if _, seen := totals[key]; !seen {
				keys = append(keys, key)
			}
			totals[key] += shared.PercentOf(o.Amount, entry.Percentage)
		}
	}

	payouts := make([]*Payout, 0, len(keys))
	for _, key := range keys {
		payouts = append(payouts, NewPendingPayout(key, totals[key], start, end))
	}
	return payouts
}
