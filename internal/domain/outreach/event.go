package outreach

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/billing"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Event is a public happening at the space
type Event struct {
	shared.BaseEntity
	GuildID        *uuid.UUID        `gorm:"type:uuid;index" json:"guild_id,omitempty"`
	Guild          *membership.Guild `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	Name           string            `gorm:"type:varchar(255);not null" json:"name"`
	Description    string            `gorm:"type:text" json:"description"`
	StartsAt       time.Time         `gorm:"not null;index" json:"starts_at"`
	EndsAt         *time.Time        `json:"ends_at,omitempty"`
	Location       string            `gorm:"type:varchar(255)" json:"location"`
	IsRecurring    bool              `gorm:"not null;default:false" json:"is_recurring"`
	RecurrenceRule string            `gorm:"type:varchar(255)" json:"recurrence_rule"`
	CreatedByID    *uuid.UUID        `gorm:"type:uuid" json:"created_by_id,omitempty"`
	IsPublished    bool              `gorm:"not null;default:false" json:"is_published"`
}

// TableName returns the table name for GORM
func (Event) TableName() string {
	return "events"
}

func (e *Event) String() string {
	return e.Name
}

// Buyable is a good sold over the counter (snacks, materials, merch)
type Buyable struct {
	shared.BaseEntity
	GuildID           *uuid.UUID            `gorm:"type:uuid;index" json:"guild_id,omitempty"`
	Guild             *membership.Guild     `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	Name              string                `gorm:"type:varchar(255);not null" json:"name"`
	Description       string                `gorm:"type:text" json:"description"`
	Image             string                `gorm:"type:varchar(500)" json:"image"`
	UnitPrice         decimal.Decimal       `gorm:"type:decimal(8,2);not null" json:"unit_price"`
	RevenueSplitID    *uuid.UUID            `gorm:"type:uuid" json:"revenue_split_id,omitempty"`
	RevenueSplit      *billing.RevenueSplit `gorm:"foreignKey:RevenueSplitID" json:"revenue_split,omitempty"`
	TotalQuantitySold int                   `gorm:"not null;default:0" json:"total_quantity_sold"`
	IsActive          bool                  `gorm:"not null" json:"is_active"`
}

// TableName returns the table name for GORM
func (Buyable) TableName() string {
	return "buyables"
}

// NewBuyable creates an active buyable
func NewBuyable(name string, unitPrice decimal.Decimal) (*Buyable, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_BUYABLE_NAME", "Buyable name cannot be empty")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}
	return &Buyable{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		UnitPrice:  unitPrice,
		IsActive:   true,
	}, nil
}

func (b *Buyable) String() string {
	return b.Name
}

// FormattedPrice renders the unit price with two places
func (b *Buyable) FormattedPrice() string {
	return shared.FormatDecimal(b.UnitPrice)
}

// BuyablePurchase records a sale of a buyable to a user
type BuyablePurchase struct {
	shared.BaseEntity
	BuyableID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"buyable_id"`
	Buyable     *Buyable       `gorm:"foreignKey:BuyableID" json:"buyable,omitempty"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *identity.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Quantity    int            `gorm:"not null;default:1" json:"quantity"`
	OrderID     *uuid.UUID     `gorm:"type:uuid" json:"order_id,omitempty"`
	Order       *billing.Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	PurchasedAt time.Time      `gorm:"not null" json:"purchased_at"`
}

// TableName returns the table name for GORM
func (BuyablePurchase) TableName() string {
	return "buyable_purchases"
}

// NewBuyablePurchase records qty units bought now
func NewBuyablePurchase(buyableID, userID uuid.UUID, qty int) (*BuyablePurchase, error) {
	if qty < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	return &BuyablePurchase{
		BaseEntity:  shared.NewBaseEntity(),
		BuyableID:   buyableID,
		UserID:      userID,
		Quantity:    qty,
		PurchasedAt: time.Now(),
	}, nil
}

// TotalCost is unit price times quantity
func (p *BuyablePurchase) TotalCost(unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

func (p *BuyablePurchase) String() string {
	var name, user string
	if p.Buyable != nil {
		name = p.Buyable.Name
	}
	if p.User != nil {
		user = p.User.Username
	}
	return fmt.Sprintf("%s x%d - %s", name, p.Quantity, user)
}
