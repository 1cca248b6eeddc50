package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// OrderRepository persists orders
type OrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	// FindPaidWithSplitBetween returns paid orders that carry a revenue split
	// and whose issued_at calendar date, in the business timezone, lies in
	// [start, end]. The split is preloaded.
	FindPaidWithSplitBetween(ctx context.Context, start, end time.Time) ([]Order, error)
	// FindUserIDsWithTab returns distinct users that have on-tab orders
	FindUserIDsWithTab(ctx context.Context) ([]uuid.UUID, error)
	FindOnTabByUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	// MarkBilled flips the given on-tab orders to billed. Orders no longer
	// on tab are left alone; the number updated is returned.
	MarkBilled(ctx context.Context, ids []uuid.UUID, at time.Time) (int64, error)
	Save(ctx context.Context, order *Order) error
}

// InvoiceRepository persists invoices
type InvoiceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]Invoice, error)
	Save(ctx context.Context, invoice *Invoice) error
}

// PayoutRepository persists payouts
type PayoutRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payout, error)
	// SaveAll writes every payout in a single transaction
	SaveAll(ctx context.Context, payouts []*Payout) error
	Save(ctx context.Context, payout *Payout) error
}

// RevenueSplitRepository persists revenue splits
type RevenueSplitRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*RevenueSplit, error)
	FindByName(ctx context.Context, name string) (*RevenueSplit, error)
	Save(ctx context.Context, split *RevenueSplit) error
}

// SubscriptionRepository persists subscription plans and member subscriptions
type SubscriptionRepository interface {
	FindPlanByName(ctx context.Context, name string) (*SubscriptionPlan, error)
	SavePlan(ctx context.Context, plan *SubscriptionPlan) error
	FindActiveByUser(ctx context.Context, userID uuid.UUID) ([]MemberSubscription, error)
	Save(ctx context.Context, sub *MemberSubscription) error
}

// Customer is the payment provider's record of a user
type Customer struct {
	ID    string
	Email string
	Name  string
}

// ProviderInvoice is the payment provider's finalized invoice
type ProviderInvoice struct {
	ID     string
	PDFURL string
	Status string
}

// InvoiceGateway is the slice of the payment provider the billing flow uses
type InvoiceGateway interface {
	// FindCustomerByEmail returns nil, nil when no customer matches
	FindCustomerByEmail(ctx context.Context, email string) (*Customer, error)
	CreateCustomer(ctx context.Context, email, name string) (*Customer, error)
	// CreateInvoiceItem adds a pending item and returns its provider id
	CreateInvoiceItem(ctx context.Context, customerID string, amount int64, description string) (string, error)
	// DeleteInvoiceItem removes an item that never made it onto a
	// finalized invoice
	DeleteInvoiceItem(ctx context.Context, itemID string) error
	// CreateAndFinalizeInvoice creates an auto-advancing invoice from the
	// customer's pending items and finalizes it
	CreateAndFinalizeInvoice(ctx context.Context, customerID string) (*ProviderInvoice, error)
}
