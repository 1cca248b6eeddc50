package membership

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// LeaseType is the commitment shape of a lease
type LeaseType string

const (
	LeaseTypeMonthToMonth LeaseType = "month_to_month"
	LeaseTypeAnnual       LeaseType = "annual"
)

// Choices implements shared.Choices
func (LeaseType) Choices() []string {
	return []string{string(LeaseTypeMonthToMonth), string(LeaseTypeAnnual)}
}

// TenantType identifies what kind of party holds a lease
type TenantType string

const (
	TenantTypeMember TenantType = "member"
	TenantTypeGuild  TenantType = "guild"
)

// Choices implements shared.Choices
func (TenantType) Choices() []string {
	return []string{string(TenantTypeMember), string(TenantTypeGuild)}
}

// TenantRef points at a lease holder, either a Member or a Guild
type TenantRef struct {
	Type TenantType `json:"type"`
	ID   uuid.UUID  `json:"id"`
}

// Lease is a recurring-rent agreement between a tenant and a space
type Lease struct {
	shared.BaseEntity
	TenantType        TenantType       `gorm:"type:varchar(20);not null;index:idx_lease_tenant,priority:1" json:"tenant_type"`
	TenantID          uuid.UUID        `gorm:"type:uuid;not null;index:idx_lease_tenant,priority:2" json:"tenant_id"`
	SpaceID           uuid.UUID        `gorm:"type:uuid;not null;index" json:"space_id"`
	Space             *Space           `gorm:"foreignKey:SpaceID" json:"space,omitempty"`
	LeaseType         LeaseType        `gorm:"type:varchar(20);not null" json:"lease_type"`
	BasePrice         decimal.Decimal  `gorm:"type:decimal(8,2);not null" json:"base_price"`
	MonthlyRent       decimal.Decimal  `gorm:"type:decimal(8,2);not null" json:"monthly_rent"`
	StartDate         time.Time        `gorm:"type:date;not null;index" json:"start_date"`
	EndDate           *time.Time       `gorm:"type:date" json:"end_date,omitempty"`
	CommittedUntil    *time.Time       `gorm:"type:date" json:"committed_until,omitempty"`
	DepositRequired   *decimal.Decimal `gorm:"type:decimal(8,2)" json:"deposit_required,omitempty"`
	DepositPaidDate   *time.Time       `gorm:"type:date" json:"deposit_paid_date,omitempty"`
	DepositPaidAmount *decimal.Decimal `gorm:"type:decimal(8,2)" json:"deposit_paid_amount,omitempty"`
	DiscountReason    string           `gorm:"type:text" json:"discount_reason"`
	IsSplit           bool             `gorm:"not null;default:false" json:"is_split"`
	PrepaidThrough    *time.Time       `gorm:"type:date" json:"prepaid_through,omitempty"`
	Notes             string           `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Lease) TableName() string {
	return "leases"
}

// NewLease creates a lease for tenant on space starting on start
func NewLease(tenant TenantRef, spaceID uuid.UUID, leaseType LeaseType, basePrice, monthlyRent decimal.Decimal, start time.Time) (*Lease, error) {
	if tenant.ID == uuid.Nil || (tenant.Type != TenantTypeMember && tenant.Type != TenantTypeGuild) {
		return nil, shared.NewDomainError("INVALID_TENANT", "Lease tenant must be a member or guild")
	}
	if spaceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SPACE", "Lease space is required")
	}
	if leaseType != LeaseTypeMonthToMonth && leaseType != LeaseTypeAnnual {
		return nil, shared.NewDomainError("INVALID_LEASE_TYPE", "Unknown lease type")
	}
	if monthlyRent.IsNegative() || basePrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RENT", "Rent cannot be negative")
	}
	return &Lease{
		BaseEntity:  shared.NewBaseEntity(),
		TenantType:  tenant.Type,
		TenantID:    tenant.ID,
		SpaceID:     spaceID,
		LeaseType:   leaseType,
		BasePrice:   basePrice,
		MonthlyRent: monthlyRent,
		StartDate:   shared.DateOf(start),
	}, nil
}

// Tenant returns the lease holder reference
func (l *Lease) Tenant() TenantRef {
	return TenantRef{Type: l.TenantType, ID: l.TenantID}
}

// IsActiveOn reports whether the lease covers day d. Both ends are inclusive;
// an open end date means the lease runs indefinitely.
func (l *Lease) IsActiveOn(d time.Time) bool {
	day := shared.DateOf(d)
	if l.StartDate.IsZero() || shared.DateOf(l.StartDate).After(day) {
		return false
	}
	if l.EndDate != nil && shared.DateOf(*l.EndDate).Before(day) {
		return false
	}
	return true
}

// IsActive reports whether the lease covers today
func (l *Lease) IsActive() bool {
	return l.IsActiveOn(time.Now())
}

// End closes the lease on the given day
func (l *Lease) End(on time.Time) error {
	day := shared.DateOf(on)
	if day.Before(shared.DateOf(l.StartDate)) {
		return shared.NewDomainError("INVALID_END_DATE", "Lease cannot end before it starts")
	}
	l.EndDate = &day
	l.Touch()
	return nil
}

// RecordDeposit stores a deposit payment
func (l *Lease) RecordDeposit(amount decimal.Decimal, on time.Time) {
	l.DepositPaidAmount = &amount
	l.DepositPaidDate = shared.DatePtr(on)
	l.Touch()
}

// Label renders "tenant @ space (YYYY-MM-DD)"
func (l *Lease) Label(tenantName, spaceName string) string {
	return fmt.Sprintf("%s @ %s (%s)", tenantName, spaceName, l.StartDate.Format(shared.DateLayout))
}

// ActiveLeases keeps only the leases active on asOf
func ActiveLeases(leases []Lease, asOf time.Time) []Lease {
	var out []Lease
	for _, l := range leases {
		if l.IsActiveOn(asOf) {
			out = append(out, l)
		}
	}
	return out
}

// SumMonthlyRent adds up monthly rent, 0.00 for an empty slice
func SumMonthlyRent(leases []Lease) decimal.Decimal {
	total := decimal.Zero
	for _, l := range leases {
		total = total.Add(l.MonthlyRent)
	}
	return total
}
