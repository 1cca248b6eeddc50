package shared

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Hundred is used for percentage arithmetic
var Hundred = decimal.NewFromInt(100)

// FormatCents renders an integer cent amount as dollars, e.g. 12345 -> "$123.45"
func FormatCents(cents int64) string {
	return fmt.Sprintf("$%.2f", float64(cents)/100)
}

// FormatDecimal renders a decimal dollar amount with two places, e.g. "$50.00"
func FormatDecimal(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

// ToCents converts a dollar amount to integer cents, rounding half away from zero
func ToCents(d decimal.Decimal) int64 {
	return d.Mul(Hundred).Round(0).IntPart()
}

// PercentOf returns amount*pct/100 truncated toward zero
func PercentOf(amount int64, pct decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(pct).Div(Hundred).IntPart()
}

// DecimalOrZero dereferences an optional decimal
func DecimalOrZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// DecimalPtr returns a pointer to d
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
