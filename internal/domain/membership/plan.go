package membership

import (
	"strings"

	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MembershipPlan is a priced membership tier such as "Standard"
type MembershipPlan struct {
	shared.BaseEntity
	Name            string           `gorm:"type:varchar(100);not null;uniqueIndex" json:"name"`
	MonthlyPrice    decimal.Decimal  `gorm:"type:decimal(8,2);not null" json:"monthly_price"`
	DepositRequired *decimal.Decimal `gorm:"type:decimal(8,2)" json:"deposit_required,omitempty"`
	Notes           string           `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (MembershipPlan) TableName() string {
	return "membership_plans"
}

// NewMembershipPlan creates a plan with the given monthly price
func NewMembershipPlan(name string, monthlyPrice decimal.Decimal) (*MembershipPlan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PLAN_NAME", "Plan name cannot be empty")
	}
	if monthlyPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PLAN_PRICE", "Monthly price cannot be negative")
	}
	return &MembershipPlan{
		BaseEntity:   shared.NewBaseEntity(),
		Name:         name,
		MonthlyPrice: monthlyPrice,
	}, nil
}

func (p *MembershipPlan) String() string {
	return p.Name
}
