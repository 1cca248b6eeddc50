package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
)

// OrderStatus is the billing state of an order
type OrderStatus string

const (
	OrderStatusOnTab  OrderStatus = "on_tab"
	OrderStatusBilled OrderStatus = "billed"
	OrderStatusPaid   OrderStatus = "paid"
	OrderStatusFailed OrderStatus = "failed"
)

// Choices implements shared.Choices
func (OrderStatus) Choices() []string {
	return []string{string(OrderStatusOnTab), string(OrderStatusBilled), string(OrderStatusPaid), string(OrderStatusFailed)}
}

// Order is a charge to a user, optionally pointing back at the thing bought
type Order struct {
	shared.BaseEntity
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User           *identity.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Description    string         `gorm:"type:varchar(500);not null" json:"description"`
	Amount         int64          `gorm:"not null" json:"amount"`
	RevenueSplitID *uuid.UUID     `gorm:"type:uuid;index" json:"revenue_split_id,omitempty"`
	RevenueSplit   *RevenueSplit  `gorm:"foreignKey:RevenueSplitID" json:"revenue_split,omitempty"`
	Status         OrderStatus    `gorm:"type:varchar(20);not null;default:'on_tab';index" json:"status"`
	OrderableType  string         `gorm:"type:varchar(100)" json:"orderable_type"`
	OrderableID    *uuid.UUID     `gorm:"type:uuid" json:"orderable_id,omitempty"`
	IssuedAt       time.Time      `gorm:"not null;index" json:"issued_at"`
	BilledAt       *time.Time     `json:"billed_at,omitempty"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates an on-tab order issued now. amount is in cents.
func NewOrder(userID uuid.UUID, description string, amount int64, splitID *uuid.UUID) (*Order, error) {
	description = strings.TrimSpace(description)
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "Order user is required")
	}
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Order description cannot be empty")
	}
	if len(description) > 500 {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Order description cannot exceed 500 characters")
	}
	if amount < 0 {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Order amount cannot be negative")
	}
	return &Order{
		BaseEntity:     shared.NewBaseEntity(),
		UserID:         userID,
		Description:    description,
		Amount:         amount,
		RevenueSplitID: splitID,
		Status:         OrderStatusOnTab,
		IssuedAt:       time.Now().UTC(),
	}, nil
}

// For records the object the order pays for
func (o *Order) For(orderableType string, id uuid.UUID) *Order {
	o.OrderableType = orderableType
	o.OrderableID = &id
	return o
}

// FormattedAmount renders the amount as dollars
func (o *Order) FormattedAmount() string {
	return shared.FormatCents(o.Amount)
}

func (o *Order) String() string {
	return fmt.Sprintf("Order %s - %s (%s)", o.ID, o.Description, o.FormattedAmount())
}

func (o *Order) IsOnTab() bool  { return o.Status == OrderStatusOnTab }
func (o *Order) IsPaid() bool   { return o.Status == OrderStatusPaid }
func (o *Order) IsFailed() bool { return o.Status == OrderStatusFailed }

// MarkBilled moves an on-tab order to billed
func (o *Order) MarkBilled(now time.Time) error {
	if !o.IsOnTab() {
		return shared.NewDomainError("INVALID_STATE", "Only on-tab orders can be billed")
	}
	o.Status = OrderStatusBilled
	o.BilledAt = &now
	o.Touch()
	return nil
}

// MarkPaid records settlement of a billed order
func (o *Order) MarkPaid() error {
	if o.Status != OrderStatusBilled && o.Status != OrderStatusOnTab {
		return shared.NewDomainError("INVALID_STATE", "Order cannot be marked paid")
	}
	o.Status = OrderStatusPaid
	o.Touch()
	return nil
}

// MarkFailed records a failed charge
func (o *Order) MarkFailed() {
	o.Status = OrderStatusFailed
	o.Touch()
}

// TotalCents sums order amounts
func TotalCents(orders []Order) int64 {
	var total int64
	for _, o := range orders {
		total += o.Amount
	}
	return total
}
