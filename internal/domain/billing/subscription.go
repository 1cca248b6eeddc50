package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Interval is a subscription billing cadence
type Interval string

const (
	IntervalMonthly Interval = "monthly"
	IntervalYearly  Interval = "yearly"
)

// Choices implements shared.Choices
func (Interval) Choices() []string {
	return []string{string(IntervalMonthly), string(IntervalYearly)}
}

// SubscriptionPlan is a recurring product sold through Stripe
type SubscriptionPlan struct {
	shared.BaseEntity
	Name          string          `gorm:"type:varchar(255);not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Price         decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"price"`
	Interval      Interval        `gorm:"type:varchar(20);not null" json:"interval"`
	StripePriceID string          `gorm:"type:varchar(255)" json:"stripe_price_id"`
	PlanType      string          `gorm:"type:varchar(50)" json:"plan_type"`
	IsActive      bool            `gorm:"not null" json:"is_active"`
}

// TableName returns the table name for GORM
func (SubscriptionPlan) TableName() string {
	return "subscription_plans"
}

// NewSubscriptionPlan creates an active plan
func NewSubscriptionPlan(name string, price decimal.Decimal, interval Interval) (*SubscriptionPlan, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_PLAN_NAME", "Plan name cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PLAN_PRICE", "Price cannot be negative")
	}
	if !shared.ContainsChoice(interval, string(interval)) {
		return nil, shared.NewDomainError("INVALID_INTERVAL", "Interval must be monthly or yearly")
	}
	return &SubscriptionPlan{
		BaseEntity: shared.NewBaseEntity(),
		Name:       strings.TrimSpace(name),
		Price:      price,
		Interval:   interval,
		IsActive:   true,
	}, nil
}

// FormattedPrice renders the price with two places
func (p *SubscriptionPlan) FormattedPrice() string {
	return shared.FormatDecimal(p.Price)
}

// String renders "name ($price/interval)"
func (p *SubscriptionPlan) String() string {
	return fmt.Sprintf("%s ($%s/%s)", p.Name, p.Price.StringFixed(2), p.Interval)
}

// SubscriptionStatus is the state of a member subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"
)

// Choices implements shared.Choices
func (SubscriptionStatus) Choices() []string {
	return []string{string(SubscriptionStatusActive), string(SubscriptionStatusCancelled), string(SubscriptionStatusPastDue)}
}

// MemberSubscription binds a user to a subscription plan
type MemberSubscription struct {
	shared.BaseEntity
	UserID               uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	User                 *identity.User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	SubscriptionPlanID   uuid.UUID          `gorm:"type:uuid;not null;index" json:"subscription_plan_id"`
	SubscriptionPlan     *SubscriptionPlan  `gorm:"foreignKey:SubscriptionPlanID" json:"subscription_plan,omitempty"`
	StripeSubscriptionID string             `gorm:"type:varchar(255)" json:"stripe_subscription_id"`
	Status               SubscriptionStatus `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	DiscountPercentage   *decimal.Decimal   `gorm:"type:decimal(5,2)" json:"discount_percentage,omitempty"`
	StartsAt             time.Time          `gorm:"not null" json:"starts_at"`
	EndsAt               *time.Time         `json:"ends_at,omitempty"`
	NextBillingAt        *time.Time         `json:"next_billing_at,omitempty"`
	CancelledAt          *time.Time         `json:"cancelled_at,omitempty"`
}

// TableName returns the table name for GORM
func (MemberSubscription) TableName() string {
	return "member_subscriptions"
}

func (s *MemberSubscription) IsActive() bool {
	return s.Status == SubscriptionStatusActive
}

// EffectivePrice is the plan price less the discount percentage.
// The plan must be loaded.
func (s *MemberSubscription) EffectivePrice() decimal.Decimal {
	if s.SubscriptionPlan == nil {
		return decimal.Zero
	}
	price := s.SubscriptionPlan.Price
	if s.DiscountPercentage != nil && !s.DiscountPercentage.IsZero() {
		return price.Sub(price.Mul(*s.DiscountPercentage).Div(shared.Hundred))
	}
	return price
}

// Cancel ends the subscription now
func (s *MemberSubscription) Cancel(now time.Time) error {
	if s.Status == SubscriptionStatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "Subscription is already cancelled")
	}
	s.Status = SubscriptionStatusCancelled
	s.CancelledAt = &now
	s.Touch()
	return nil
}
