package membership

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MemberStatus is the lifecycle state of a member
type MemberStatus string

const (
	MemberStatusActive    MemberStatus = "active"
	MemberStatusFormer    MemberStatus = "former"
	MemberStatusSuspended MemberStatus = "suspended"
)

// Choices implements shared.Choices
func (MemberStatus) Choices() []string {
	return []string{string(MemberStatusActive), string(MemberStatusFormer), string(MemberStatusSuspended)}
}

// MemberRole is the member's working relationship with the space
type MemberRole string

const (
	MemberRoleStandard   MemberRole = "standard"
	MemberRoleGuildLead  MemberRole = "guild_lead"
	MemberRoleWorkTrade  MemberRole = "work_trade"
	MemberRoleEmployee   MemberRole = "employee"
	MemberRoleContractor MemberRole = "contractor"
	MemberRoleVolunteer  MemberRole = "volunteer"
)

// Choices implements shared.Choices
func (MemberRole) Choices() []string {
	return []string{
		string(MemberRoleStandard), string(MemberRoleGuildLead), string(MemberRoleWorkTrade),
		string(MemberRoleEmployee), string(MemberRoleContractor), string(MemberRoleVolunteer),
	}
}

// Member is a person holding a membership. A member may exist without a
// user account (imported from the legacy spreadsheet, for example).
type Member struct {
	shared.BaseEntity
	UserID                       *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"user_id,omitempty"`
	FullLegalName                string          `gorm:"type:varchar(255);not null;index" json:"full_legal_name"`
	PreferredName                string          `gorm:"type:varchar(255)" json:"preferred_name"`
	Email                        string          `gorm:"type:varchar(254)" json:"email"`
	Phone                        string          `gorm:"type:varchar(20)" json:"phone"`
	BillingName                  string          `gorm:"type:varchar(255)" json:"billing_name"`
	EmergencyContactName         string          `gorm:"type:varchar(255)" json:"emergency_contact_name"`
	EmergencyContactPhone        string          `gorm:"type:varchar(20)" json:"emergency_contact_phone"`
	EmergencyContactRelationship string          `gorm:"type:varchar(100)" json:"emergency_contact_relationship"`
	MembershipPlanID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"membership_plan_id"`
	MembershipPlan               *MembershipPlan `gorm:"foreignKey:MembershipPlanID" json:"membership_plan,omitempty"`
	Status                       MemberStatus    `gorm:"type:varchar(20);not null;default:'active';index" json:"status"`
	Role                         MemberRole      `gorm:"type:varchar(20);not null;default:'standard'" json:"role"`
	JoinDate                     *time.Time      `gorm:"type:date" json:"join_date,omitempty"`
	CancellationDate             *time.Time      `gorm:"type:date" json:"cancellation_date,omitempty"`
	CommittedUntil               *time.Time      `gorm:"type:date" json:"committed_until,omitempty"`
	Notes                        string          `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Member) TableName() string {
	return "members"
}

// NewMember creates an active, standard-role member on the given plan
func NewMember(fullLegalName string, planID uuid.UUID) (*Member, error) {
	fullLegalName = strings.TrimSpace(fullLegalName)
	if fullLegalName == "" {
		return nil, shared.NewDomainError("INVALID_MEMBER_NAME", "Full legal name cannot be empty")
	}
	if planID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_MEMBER_PLAN", "Membership plan is required")
	}
	return &Member{
		BaseEntity:       shared.NewBaseEntity(),
		FullLegalName:    fullLegalName,
		MembershipPlanID: planID,
		Status:           MemberStatusActive,
		Role:             MemberRoleStandard,
	}, nil
}

// DisplayName returns the preferred name when set, else the legal name
func (m *Member) DisplayName() string {
	if m.PreferredName != "" {
		return m.PreferredName
	}
	return m.FullLegalName
}

func (m *Member) String() string {
	return m.DisplayName()
}

// IsActive reports whether the member is in good standing
func (m *Member) IsActive() bool {
	return m.Status == MemberStatusActive
}

// Cancel marks the member former as of the given date
func (m *Member) Cancel(on time.Time) error {
	if m.Status == MemberStatusFormer {
		return shared.NewDomainError("INVALID_STATE", "Member is already former")
	}
	m.Status = MemberStatusFormer
	m.CancellationDate = shared.DatePtr(on)
	m.Touch()
	return nil
}

// Suspend suspends an active member
func (m *Member) Suspend() error {
	if m.Status != MemberStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active members can be suspended")
	}
	m.Status = MemberStatusSuspended
	m.Touch()
	return nil
}

// Reinstate returns a suspended or former member to active
func (m *Member) Reinstate() {
	m.Status = MemberStatusActive
	m.CancellationDate = nil
	m.Touch()
}

// MembershipMonthlyDues is the plan's monthly price. The plan must be loaded.
func (m *Member) MembershipMonthlyDues() decimal.Decimal {
	if m.MembershipPlan == nil {
		return decimal.Zero
	}
	return m.MembershipPlan.MonthlyPrice
}

// StudioStorageTotal sums monthly rent over the member's leases active on asOf
func (m *Member) StudioStorageTotal(leases []Lease, asOf time.Time) decimal.Decimal {
	return SumMonthlyRent(ActiveLeases(m.leasesOf(leases), asOf))
}

// TotalMonthlySpend is dues plus studio/storage rent
func (m *Member) TotalMonthlySpend(leases []Lease, asOf time.Time) decimal.Decimal {
	return m.MembershipMonthlyDues().Add(m.StudioStorageTotal(leases, asOf))
}

// ActiveLeases filters leases down to this member's leases active on asOf
func (m *Member) ActiveLeases(leases []Lease, asOf time.Time) []Lease {
	return ActiveLeases(m.leasesOf(leases), asOf)
}

// CurrentSpaceIDs returns the distinct spaces the member leases on asOf
func (m *Member) CurrentSpaceIDs(leases []Lease, asOf time.Time) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{})
	var out []uuid.UUID
	for _, l := range m.ActiveLeases(leases, asOf) {
		if _, ok := seen[l.SpaceID]; ok {
			continue
		}
		seen[l.SpaceID] = struct{}{}
		out = append(out, l.SpaceID)
	}
	return out
}

func (m *Member) leasesOf(leases []Lease) []Lease {
	var out []Lease
	for _, l := range leases {
		if l.TenantType == TenantTypeMember && l.TenantID == m.ID {
			out = append(out, l)
		}
	}
	return out
}

// MemberLeaseTotals is a member annotated with its active lease aggregates
type MemberLeaseTotals struct {
	Member           Member
	ActiveLeaseCount int64
	TotalMonthlyRent decimal.Decimal
}
