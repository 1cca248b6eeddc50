package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
)

// InvoiceStatus mirrors Stripe's invoice states
type InvoiceStatus string

const (
	InvoiceStatusDraft         InvoiceStatus = "draft"
	InvoiceStatusOpen          InvoiceStatus = "open"
	InvoiceStatusPaid          InvoiceStatus = "paid"
	InvoiceStatusVoid          InvoiceStatus = "void"
	InvoiceStatusUncollectible InvoiceStatus = "uncollectible"
)

// Choices implements shared.Choices
func (InvoiceStatus) Choices() []string {
	return []string{
		string(InvoiceStatusDraft), string(InvoiceStatusOpen), string(InvoiceStatusPaid),
		string(InvoiceStatusVoid), string(InvoiceStatusUncollectible),
	}
}

// LineItem is one row of an invoice, amount in cents
type LineItem struct {
	Description string `json:"description"`
	Amount      int64  `json:"amount"`
}

// LineItemsFor builds one line item per order
func LineItemsFor(orders []Order) []LineItem {
	items := make([]LineItem, 0, len(orders))
	for _, o := range orders {
		items = append(items, LineItem{Description: o.Description, Amount: o.Amount})
	}
	return items
}

// Invoice is a bill sent to a user, optionally mirrored in Stripe
type Invoice struct {
	shared.BaseEntity
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User            *identity.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	StripeInvoiceID string         `gorm:"type:varchar(255);index" json:"stripe_invoice_id"`
	AmountDue       int64          `gorm:"not null" json:"amount_due"`
	AmountPaid      int64          `gorm:"not null;default:0" json:"amount_paid"`
	Status          InvoiceStatus  `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	LineItems       []LineItem     `gorm:"type:jsonb;serializer:json" json:"line_items"`
	PDFURL          string         `gorm:"column:pdf_url;type:varchar(500)" json:"pdf_url"`
	IssuedAt        time.Time      `gorm:"not null" json:"issued_at"`
	PaidAt          *time.Time     `json:"paid_at,omitempty"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewOpenInvoice creates an open invoice covering orders
func NewOpenInvoice(userID uuid.UUID, orders []Order) *Invoice {
	return &Invoice{
		BaseEntity: shared.NewBaseEntity(),
		UserID:     userID,
		AmountDue:  TotalCents(orders),
		Status:     InvoiceStatusOpen,
		LineItems:  LineItemsFor(orders),
		IssuedAt:   time.Now().UTC(),
	}
}

func (i *Invoice) FormattedAmountDue() string  { return shared.FormatCents(i.AmountDue) }
func (i *Invoice) FormattedAmountPaid() string { return shared.FormatCents(i.AmountPaid) }
func (i *Invoice) IsPaid() bool                { return i.Status == InvoiceStatusPaid }

func (i *Invoice) String() string {
	return fmt.Sprintf("Invoice %s - %s (%s)", i.ID, i.FormattedAmountDue(), i.Status)
}

// MarkPaid settles the invoice in full
func (i *Invoice) MarkPaid(now time.Time) error {
	if i.Status != InvoiceStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "Only open invoices can be paid")
	}
	i.Status = InvoiceStatusPaid
	i.AmountPaid = i.AmountDue
	i.PaidAt = &now
	i.Touch()
	return nil
}
