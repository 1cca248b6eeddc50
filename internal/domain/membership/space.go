package membership

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DefaultPricePerSqft prices spaces without a manual price
var DefaultPricePerSqft = decimal.RequireFromString("3.75")

// SpaceType classifies a rentable space
type SpaceType string

const (
	SpaceTypeStudio  SpaceType = "studio"
	SpaceTypeStorage SpaceType = "storage"
	SpaceTypeParking SpaceType = "parking"
	SpaceTypeDesk    SpaceType = "desk"
	SpaceTypeOther   SpaceType = "other"
)

// Choices implements shared.Choices
func (SpaceType) Choices() []string {
	return []string{
		string(SpaceTypeStudio), string(SpaceTypeStorage), string(SpaceTypeParking),
		string(SpaceTypeDesk), string(SpaceTypeOther),
	}
}

// SpaceStatus is the occupancy state of a space
type SpaceStatus string

const (
	SpaceStatusAvailable   SpaceStatus = "available"
	SpaceStatusOccupied    SpaceStatus = "occupied"
	SpaceStatusMaintenance SpaceStatus = "maintenance"
)

// Choices implements shared.Choices
func (SpaceStatus) Choices() []string {
	return []string{string(SpaceStatusAvailable), string(SpaceStatusOccupied), string(SpaceStatusMaintenance)}
}

// Space is a studio, storage unit, parking spot or desk
type Space struct {
	shared.BaseEntity
	SpaceID       string           `gorm:"column:space_id;type:varchar(20);not null;uniqueIndex" json:"space_id"`
	Name          string           `gorm:"type:varchar(255)" json:"name"`
	SpaceType     SpaceType        `gorm:"type:varchar(20);not null" json:"space_type"`
	SizeSqft      *decimal.Decimal `gorm:"type:decimal(8,2)" json:"size_sqft,omitempty"`
	Width         *decimal.Decimal `gorm:"type:decimal(6,2)" json:"width,omitempty"`
	Depth         *decimal.Decimal `gorm:"type:decimal(6,2)" json:"depth,omitempty"`
	RatePerSqft   *decimal.Decimal `gorm:"type:decimal(6,2)" json:"rate_per_sqft,omitempty"`
	IsRentable    bool             `gorm:"not null" json:"is_rentable"`
	ManualPrice   *decimal.Decimal `gorm:"type:decimal(8,2)" json:"manual_price,omitempty"`
	Status        SpaceStatus      `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	FloorplanRef  string           `gorm:"type:varchar(100)" json:"floorplan_ref"`
	Notes         string           `gorm:"type:text" json:"notes"`
	SubletGuildID *uuid.UUID       `gorm:"type:uuid;index" json:"sublet_guild_id,omitempty"`
}

// TableName returns the table name for GORM
func (Space) TableName() string {
	return "spaces"
}

// NewSpace creates an available, rentable space
func NewSpace(spaceID, name string, spaceType SpaceType) (*Space, error) {
	spaceID = strings.TrimSpace(spaceID)
	if spaceID == "" {
		return nil, shared.NewDomainError("INVALID_SPACE_ID", "Space ID cannot be empty")
	}
	if len(spaceID) > 20 {
		return nil, shared.NewDomainError("INVALID_SPACE_ID", "Space ID cannot exceed 20 characters")
	}
	if !shared.ContainsChoice(spaceType, string(spaceType)) {
		return nil, shared.NewDomainError("INVALID_SPACE_TYPE", "Unknown space type")
	}
	return &Space{
		BaseEntity: shared.NewBaseEntity(),
		SpaceID:    spaceID,
		Name:       name,
		SpaceType:  spaceType,
		Status:     SpaceStatusAvailable,
		IsRentable: true,
	}, nil
}

// String renders "space_id - name", or just the space id when unnamed
func (s *Space) String() string {
	if s.Name != "" {
		return s.SpaceID + " - " + s.Name
	}
	return s.SpaceID
}

// FullPrice is the manual price, else size at the default rate, else nil
func (s *Space) FullPrice() *decimal.Decimal {
	if s.ManualPrice != nil {
		p := *s.ManualPrice
		return &p
	}
	if s.SizeSqft != nil {
		p := s.SizeSqft.Mul(DefaultPricePerSqft)
		return &p
	}
	return nil
}

// VacancyValue is what an available space would earn; zero otherwise
func (s *Space) VacancyValue() decimal.Decimal {
	if s.Status != SpaceStatusAvailable {
		return decimal.Zero
	}
	return shared.DecimalOrZero(s.FullPrice())
}

// ActualRevenue sums rent of this space's leases active on asOf
func (s *Space) ActualRevenue(leases []Lease, asOf time.Time) decimal.Decimal {
	return SumMonthlyRent(ActiveLeases(s.leasesOf(leases), asOf))
}

// RevenueLoss is FullPrice minus ActualRevenue, nil when unpriced
func (s *Space) RevenueLoss(leases []Lease, asOf time.Time) *decimal.Decimal {
	fp := s.FullPrice()
	if fp == nil {
		return nil
	}
	loss := fp.Sub(s.ActualRevenue(leases, asOf))
	return &loss
}

// CurrentOccupants lists the distinct tenants of active leases on asOf.
// Members and guilds may both appear.
func (s *Space) CurrentOccupants(leases []Lease, asOf time.Time) []TenantRef {
	seen := make(map[TenantRef]struct{})
	var out []TenantRef
	for _, l := range ActiveLeases(s.leasesOf(leases), asOf) {
		ref := l.Tenant()
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	return out
}

// SetStatus changes occupancy state
func (s *Space) SetStatus(status SpaceStatus) error {
	if !shared.ContainsChoice(status, string(status)) {
		return shared.NewDomainError("INVALID_SPACE_STATUS", "Unknown space status")
	}
	s.Status = status
	s.Touch()
	return nil
}

func (s *Space) leasesOf(leases []Lease) []Lease {
	var out []Lease
	for _, l := range leases {
		if l.SpaceID == s.ID {
			out = append(out, l)
		}
	}
	return out
}

// SpaceRevenue is a space annotated with its active lease rent total
type SpaceRevenue struct {
	Space                Space
	ActiveLeaseRentTotal decimal.Decimal
}
