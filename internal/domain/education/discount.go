package education

import (
	"strings"

	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// DiscountType says how a discount value is applied
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "percentage"
	DiscountTypeFixed      DiscountType = "fixed"
)

// Choices implements shared.Choices
func (DiscountType) Choices() []string {
	return []string{string(DiscountTypePercentage), string(DiscountTypeFixed)}
}

// ClassDiscountCode is a promo code redeemable at class registration
type ClassDiscountCode struct {
	shared.BaseEntity
	Code          string          `gorm:"type:varchar(50);not null;uniqueIndex" json:"code"`
	DiscountType  DiscountType    `gorm:"type:varchar(20);not null" json:"discount_type"`
	DiscountValue decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"discount_value"`
	IsActive      bool            `gorm:"not null" json:"is_active"`
}

// TableName returns the table name for GORM
func (ClassDiscountCode) TableName() string {
	return "class_discount_codes"
}

// NewClassDiscountCode creates an active code
func NewClassDiscountCode(code string, kind DiscountType, value decimal.Decimal) (*ClassDiscountCode, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Discount code cannot be empty")
	}
	if !shared.ContainsChoice(kind, string(kind)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_TYPE", "Unknown discount type")
	}
	if value.IsNegative() {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Discount value cannot be negative")
	}
	if kind == DiscountTypePercentage && value.GreaterThan(shared.Hundred) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT_VALUE", "Percentage discount cannot exceed 100")
	}
	return &ClassDiscountCode{
		BaseEntity:    shared.NewBaseEntity(),
		Code:          code,
		DiscountType:  kind,
		DiscountValue: value,
		IsActive:      true,
	}, nil
}

func (c *ClassDiscountCode) String() string {
	return c.Code
}

// CalculateDiscount returns the amount taken off price. A fixed discount
// never exceeds the price.
func (c *ClassDiscountCode) CalculateDiscount(price decimal.Decimal) decimal.Decimal {
	if c.DiscountType == DiscountTypePercentage {
		return price.Mul(c.DiscountValue).Div(shared.Hundred)
	}
	return decimal.Min(c.DiscountValue, price)
}
