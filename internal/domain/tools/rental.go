package tools

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RentalPeriod is the billing unit of a rentable
type RentalPeriod string

const (
	RentalPeriodHours RentalPeriod = "hours"
	RentalPeriodDays  RentalPeriod = "days"
	RentalPeriodWeeks RentalPeriod = "weeks"
)

// Choices implements shared.Choices
func (RentalPeriod) Choices() []string {
	return []string{string(RentalPeriodHours), string(RentalPeriodDays), string(RentalPeriodWeeks)}
}

// Duration is the length of one period
func (p RentalPeriod) Duration() time.Duration {
	switch p {
	case RentalPeriodHours:
		return time.Hour
	case RentalPeriodDays:
		return 24 * time.Hour
	default:
		return 7 * 24 * time.Hour
	}
}

// Rentable offers a tool for paid checkout
type Rentable struct {
	shared.BaseEntity
	ToolID         uuid.UUID             `gorm:"type:uuid;not null;index" json:"tool_id"`
	Tool           *Tool                 `gorm:"foreignKey:ToolID" json:"tool,omitempty"`
	RentalPeriod   RentalPeriod          `gorm:"type:varchar(20);not null" json:"rental_period"`
	CostPerPeriod  decimal.Decimal       `gorm:"type:decimal(8,2);not null" json:"cost_per_period"`
	RevenueSplitID *uuid.UUID            `gorm:"type:uuid" json:"revenue_split_id,omitempty"`
	RevenueSplit   *billing.RevenueSplit `gorm:"foreignKey:RevenueSplitID" json:"revenue_split,omitempty"`
	IsActive       bool                  `gorm:"not null" json:"is_active"`
}

// TableName returns the table name for GORM
func (Rentable) TableName() string {
	return "rentables"
}

// NewRentable creates an active rentable for tool
func NewRentable(toolID uuid.UUID, period RentalPeriod, cost decimal.Decimal) (*Rentable, error) {
	if !shared.ContainsChoice(period, string(period)) {
		return nil, shared.NewDomainError("INVALID_RENTAL_PERIOD", "Unknown rental period")
	}
	if cost.IsNegative() {
		return nil, shared.NewDomainError("INVALID_COST", "Cost per period cannot be negative")
	}
	return &Rentable{
		BaseEntity:    shared.NewBaseEntity(),
		ToolID:        toolID,
		RentalPeriod:  period,
		CostPerPeriod: cost,
		IsActive:      true,
	}, nil
}

// FormattedCost renders "$x.xx/period"
func (r *Rentable) FormattedCost() string {
	return fmt.Sprintf("$%s/%s", r.CostPerPeriod.StringFixed(2), r.RentalPeriod)
}

func (r *Rentable) String() string {
	name := ""
	if r.Tool != nil {
		name = r.Tool.Name
	}
	return name + " - " + r.FormattedCost()
}

// IsAvailable reports whether the rentable can be checked out given the
// number of its rentals currently active
func (r *Rentable) IsAvailable(activeRentals int64) bool {
	return r.IsActive && activeRentals == 0
}

// RentalStatus is the state of a rental
type RentalStatus string

const (
	RentalStatusActive   RentalStatus = "active"
	RentalStatusReturned RentalStatus = "returned"
	RentalStatusOverdue  RentalStatus = "overdue"
)

// Choices implements shared.Choices
func (RentalStatus) Choices() []string {
	return []string{string(RentalStatusActive), string(RentalStatusReturned), string(RentalStatusOverdue)}
}

// Rental is a checkout of a rentable by a user
type Rental struct {
	shared.BaseEntity
	RentableID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"rentable_id"`
	Rentable     *Rentable      `gorm:"foreignKey:RentableID" json:"rentable,omitempty"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User         *identity.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CheckedOutAt time.Time      `gorm:"not null" json:"checked_out_at"`
	DueAt        time.Time      `gorm:"not null" json:"due_at"`
	ReturnedAt   *time.Time     `json:"returned_at,omitempty"`
	Status       RentalStatus   `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	OrderID      *uuid.UUID     `gorm:"type:uuid" json:"order_id,omitempty"`
	Order        *billing.Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// TableName returns the table name for GORM
func (Rental) TableName() string {
	return "rentals"
}

// NewRental checks out rentable to user until due
func NewRental(rentableID, userID uuid.UUID, checkedOut, due time.Time) (*Rental, error) {
	if !due.After(checkedOut) {
		return nil, shared.NewDomainError("INVALID_DUE_DATE", "Due date must be after checkout")
	}
	return &Rental{
		BaseEntity:   shared.NewBaseEntity(),
		RentableID:   rentableID,
		UserID:       userID,
		CheckedOutAt: checkedOut,
		DueAt:        due,
		Status:       RentalStatusActive,
	}, nil
}

func (r *Rental) IsActive() bool   { return r.Status == RentalStatusActive }
func (r *Rental) IsReturned() bool { return r.Status == RentalStatusReturned }

// IsOverdue reports whether an active rental is past due at now
func (r *Rental) IsOverdue(now time.Time) bool {
	return r.IsActive() && r.DueAt.Before(now)
}

// MarkReturned closes the rental
func (r *Rental) MarkReturned(now time.Time) error {
	if r.IsReturned() {
		return shared.NewDomainError("INVALID_STATE", "Rental is already returned")
	}
	r.Status = RentalStatusReturned
	r.ReturnedAt = &now
	r.Touch()
	return nil
}

// CalculateCost charges every started period. The rentable must be loaded.
func (r *Rental) CalculateCost(now time.Time) decimal.Decimal {
	if r.Rentable == nil {
		return decimal.Zero
	}
	end := now
	if r.ReturnedAt != nil {
		end = *r.ReturnedAt
	}
	periods := math.Ceil(float64(end.Sub(r.CheckedOutAt)) / float64(r.Rentable.RentalPeriod.Duration()))
	if periods < 0 {
		periods = 0
	}
	return decimal.NewFromFloat(periods).Mul(r.Rentable.CostPerPeriod)
}

func (r *Rental) String() string {
	var tool, user string
	if r.Rentable != nil && r.Rentable.Tool != nil {
		tool = r.Rentable.Tool.Name
	}
	if r.User != nil {
		user = r.User.Username
	}
	return fmt.Sprintf("%s - %s (%s)", tool, user, r.Status)
}
