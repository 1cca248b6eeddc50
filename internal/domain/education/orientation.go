package education

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/domain/tools"
	"github.com/shopspring/decimal"
)

// Orientation is a guild's safety introduction to a set of tools
type Orientation struct {
	shared.BaseEntity
	GuildID         uuid.UUID             `gorm:"type:uuid;not null;index" json:"guild_id"`
	Guild           *membership.Guild     `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	Name            string                `gorm:"type:varchar(255);not null" json:"name"`
	Description     string                `gorm:"type:text" json:"description"`
	DurationMinutes int                   `gorm:"not null" json:"duration_minutes"`
	Price           decimal.Decimal       `gorm:"type:decimal(8,2);not null" json:"price"`
	RevenueSplitID  *uuid.UUID            `gorm:"type:uuid" json:"revenue_split_id,omitempty"`
	RevenueSplit    *billing.RevenueSplit `gorm:"foreignKey:RevenueSplitID" json:"revenue_split,omitempty"`
	IsActive        bool                  `gorm:"not null" json:"is_active"`
	Tools           []tools.Tool          `gorm:"many2many:orientation_tools;" json:"tools,omitempty"`
	Orienters       []identity.User       `gorm:"many2many:orientation_orienters;" json:"orienters,omitempty"`
}

// TableName returns the table name for GORM
func (Orientation) TableName() string {
	return "orientations"
}

// NewOrientation creates an active orientation for guild
func NewOrientation(guildID uuid.UUID, name string, minutes int, price decimal.Decimal) (*Orientation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ORIENTATION_NAME", "Orientation name cannot be empty")
	}
	if minutes <= 0 {
		return nil, shared.NewDomainError("INVALID_DURATION", "Duration must be positive")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	return &Orientation{
		BaseEntity:      shared.NewBaseEntity(),
		GuildID:         guildID,
		Name:            name,
		DurationMinutes: minutes,
		Price:           price,
		IsActive:        true,
	}, nil
}

func (o *Orientation) String() string {
	return o.Name
}

// FormattedPrice renders the price with two places
func (o *Orientation) FormattedPrice() string {
	return shared.FormatDecimal(o.Price)
}

// OrientationStatus is the state of a scheduled orientation
type OrientationStatus string

const (
	OrientationStatusPending   OrientationStatus = "pending"
	OrientationStatusClaimed   OrientationStatus = "claimed"
	OrientationStatusCompleted OrientationStatus = "completed"
	OrientationStatusCancelled OrientationStatus = "cancelled"
)

// Choices implements shared.Choices
func (OrientationStatus) Choices() []string {
	return []string{
		string(OrientationStatusPending), string(OrientationStatusClaimed),
		string(OrientationStatusCompleted), string(OrientationStatusCancelled),
	}
}

// ScheduledOrientation is a member's booking for an orientation
type ScheduledOrientation struct {
	shared.BaseEntity
	OrientationID uuid.UUID         `gorm:"type:uuid;not null;index" json:"orientation_id"`
	Orientation   *Orientation      `gorm:"foreignKey:OrientationID" json:"orientation,omitempty"`
	UserID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *identity.User    `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ScheduledAt   time.Time         `gorm:"not null" json:"scheduled_at"`
	ClaimedByID   *uuid.UUID        `gorm:"type:uuid" json:"claimed_by_id,omitempty"`
	ClaimedAt     *time.Time        `json:"claimed_at,omitempty"`
	CompletedAt   *time.Time        `json:"completed_at,omitempty"`
	Status        OrientationStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	OrderID       *uuid.UUID        `gorm:"type:uuid" json:"order_id,omitempty"`
	Order         *billing.Order    `gorm:"foreignKey:OrderID" json:"order,omitempty"`
}

// TableName returns the table name for GORM
func (ScheduledOrientation) TableName() string {
	return "scheduled_orientations"
}

// NewScheduledOrientation books user into orientation at a time
func NewScheduledOrientation(orientationID, userID uuid.UUID, at time.Time) *ScheduledOrientation {
	return &ScheduledOrientation{
		BaseEntity:    shared.NewBaseEntity(),
		OrientationID: orientationID,
		UserID:        userID,
		ScheduledAt:   at,
		Status:        OrientationStatusPending,
	}
}

func (s *ScheduledOrientation) IsPending() bool   { return s.Status == OrientationStatusPending }
func (s *ScheduledOrientation) IsClaimed() bool   { return s.Status == OrientationStatusClaimed }
func (s *ScheduledOrientation) IsCompleted() bool { return s.Status == OrientationStatusCompleted }

// Claim assigns an orienter to a pending booking
func (s *ScheduledOrientation) Claim(by uuid.UUID, now time.Time) error {
	if !s.IsPending() {
		return shared.NewDomainError("INVALID_STATE", "Only pending orientations can be claimed")
	}
	s.Status = OrientationStatusClaimed
	s.ClaimedByID = &by
	s.ClaimedAt = &now
	s.Touch()
	return nil
}

// Complete finishes a claimed booking
func (s *ScheduledOrientation) Complete(now time.Time) error {
	if !s.IsClaimed() {
		return shared.NewDomainError("INVALID_STATE", "Only claimed orientations can be completed")
	}
	s.Status = OrientationStatusCompleted
	s.CompletedAt = &now
	s.Touch()
	return nil
}

// Cancel drops a booking that has not been completed
func (s *ScheduledOrientation) Cancel() error {
	if s.IsCompleted() {
		return shared.NewDomainError("INVALID_STATE", "Completed orientations cannot be cancelled")
	}
	s.Status = OrientationStatusCancelled
	s.Touch()
	return nil
}

func (s *ScheduledOrientation) String() string {
	var name, user string
	if s.Orientation != nil {
		name = s.Orientation.Name
	}
	if s.User != nil {
		user = s.User.Username
	}
	return fmt.Sprintf("%s - %s (%s)", name, user, s.Status)
}
