package billing

import (
	"strings"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// EntityType names who receives a share of a revenue split
type EntityType string

const (
	EntityTypeUser  EntityType = "user"
	EntityTypeGuild EntityType = "guild"
	EntityTypeOrg   EntityType = "org"
)

// Choices implements shared.Choices
func (EntityType) Choices() []string {
	return []string{string(EntityTypeUser), string(EntityTypeGuild), string(EntityTypeOrg)}
}

// SplitEntry is one recipient of a revenue split. Missing keys decode to
// their zero values, which the payout aggregation reads as "org", the nil
// entity and 0 percent.
type SplitEntry struct {
	EntityType EntityType      `json:"entity_type,omitempty"`
	EntityID   uuid.UUID       `json:"entity_id,omitempty"`
	Percentage decimal.Decimal `json:"percentage"`
}

// Payee resolves the entry's recipient, applying the org default
func (e SplitEntry) Payee() PayeeKey {
	t := e.EntityType
	if t == "" {
		t = EntityTypeOrg
	}
	return PayeeKey{Type: t, ID: e.EntityID}
}

// RevenueSplit divides order income between recipients
type RevenueSplit struct {
	shared.BaseEntity
	Name   string       `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Splits []SplitEntry `gorm:"type:jsonb;serializer:json" json:"splits"`
	Notes  string       `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (RevenueSplit) TableName() string {
	return "revenue_splits"
}

// NewRevenueSplit validates and creates a split. Percentages must be
// non-negative and may not total more than 100.
func NewRevenueSplit(name string, entries []SplitEntry) (*RevenueSplit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_SPLIT_NAME", "Revenue split name cannot be empty")
	}
	total := decimal.Zero
	for _, e := range entries {
		if e.Percentage.IsNegative() {
			return nil, shared.NewDomainError("INVALID_PERCENTAGE", "Split percentage cannot be negative")
		}
		total = total.Add(e.Percentage)
	}
	if total.GreaterThan(shared.Hundred) {
		return nil, shared.NewDomainError("INVALID_PERCENTAGE", "Split percentages cannot exceed 100")
	}
	return &RevenueSplit{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Splits:     entries,
	}, nil
}

func (s *RevenueSplit) String() string {
	return s.Name
}
