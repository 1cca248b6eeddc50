package fixture

import (
	"regexp"
	"strings"

	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/shopspring/decimal"
)

var (
	storageCode   = regexp.MustCompile(`^S(\d+)\s+Storage\s*-\s*Space\s+(\d+)`)
	woodCode      = regexp.MustCompile(`^(W\d+)\s*-`)
	parkingCode   = regexp.MustCompile(`^Parking Space(?:\s*#(\d+))?`)
	c30Code       = regexp.MustCompile(`^(C30)\s*\(`)
	studioCode    = regexp.MustCompile(`^([A-Z]\d+[a-z]?)`)
	prefixedCode  = regexp.MustCompile(`^([A-Z]+\d+[a-z]?)`)
	numericPrefix = regexp.MustCompile(`^([\d.]+)`)
	dimensions    = regexp.MustCompile(`^([\d.]+)\s*[xX]\s*([\d.]+)`)
	airtableID    = regexp.MustCompile(`\s+-\s+\d+$`)
	trailingDash  = regexp.MustCompile(`\s+-$`)
	numericCode   = regexp.MustCompile(`^\s*[\d.]+\s*$`)
)

// maxSpaceID is the width of the space_id column
const maxSpaceID = 20

// ExtractSpaceID derives the canonical space id from a spreadsheet code:
//
//	"S1 Storage - Space 5"  -> "S1-5"
//	"W3 - Wood Storage"     -> "W3"
//	"Parking Space #2"      -> "P2"
//	"A1 Studio"             -> "A1"
func ExtractSpaceID(spaceCode string) string {
	code := strings.TrimSpace(spaceCode)

	if m := storageCode.FindStringSubmatch(code); m != nil {
		return "S" + m[1] + "-" + m[2]
	}
	if m := woodCode.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	if m := parkingCode.FindStringSubmatch(code); m != nil {
		if m[1] == "" {
			return "P1"
		}
		return "P" + m[1]
	}
	if strings.HasPrefix(strings.ToLower(code), "mezzanine") {
		return "Mezzanine"
	}
	if m := c30Code.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	if m := studioCode.FindStringSubmatch(code); m != nil {
		return m[1]
	}
	if m := prefixedCode.FindStringSubmatch(code); m != nil {
		return m[1]
	}

	if r := []rune(code); len(r) > maxSpaceID {
		return string(r[:maxSpaceID])
	}
	return code
}

// ClassifySpaceType infers the space type from the raw code and its id
func ClassifySpaceType(spaceCode, spaceID string) membership.SpaceType {
	switch {
	case strings.HasPrefix(spaceID, "S"), strings.HasPrefix(spaceID, "W"):
		return membership.SpaceTypeStorage
	case strings.Contains(spaceCode, "Parking"):
		return membership.SpaceTypeParking
	case spaceID == "Mezzanine":
		return membership.SpaceTypeOther
	default:
		return membership.SpaceTypeStudio
	}
}

// ParseCurrency parses "$2,175.00" style amounts. Blank or unparseable
// values are nil.
func ParseCurrency(value string) *decimal.Decimal {
	cleaned := strings.NewReplacer("$", "", ",", "").Replace(value)
	return parseDecimal(strings.TrimSpace(cleaned))
}

// ParseSqft parses square footage, ignoring "*" and "~" markers and any
// trailing annotation
func ParseSqft(value string) *decimal.Decimal {
	m := numericPrefix.FindStringSubmatch(stripMarkers(value))
	if m == nil {
		return nil
	}
	return parseDecimal(m[1])
}

// ParseDimensions parses "8.5 x 8" into width and depth
func ParseDimensions(value string) (width, depth *decimal.Decimal) {
	cleaned := stripMarkers(value)
	switch strings.ToUpper(cleaned) {
	case "", "X", "SEE NOTES":
		return nil, nil
	}
	m := dimensions.FindStringSubmatch(cleaned)
	if m == nil {
		return nil, nil
	}
	width, depth = parseDecimal(m[1]), parseDecimal(m[2])
	if width == nil || depth == nil {
		return nil, nil
	}
	return width, depth
}

// ParseRate parses the $/sqft column
func ParseRate(value string) *decimal.Decimal {
	return parseDecimal(strings.TrimSpace(value))
}

var memberAliases = map[string]string{
	"Ochen": "Ochen Kaylan",
	"Ha'Ne": "Ha'ne",
}

// CleanMemberName strips the Airtable " - 123" suffix and a trailing dash,
// then applies the known aliases
func CleanMemberName(raw string) string {
	name := strings.TrimSpace(raw)
	name = airtableID.ReplaceAllString(name, "")
	name = trailingDash.ReplaceAllString(name, "")
	if alias, ok := memberAliases[name]; ok {
		return alias
	}
	return name
}

// IsNumericCode reports codes such as "12" or "3.5" that mark subtotal rows
func IsNumericCode(code string) bool {
	return numericCode.MatchString(code)
}

func stripMarkers(value string) string {
	s := strings.TrimLeft(strings.TrimSpace(value), "*")
	return strings.TrimSpace(strings.TrimLeft(s, "~"))
}

func parseDecimal(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

// FormatDecimal renders d keeping the precision it was written with, so
// "255.00" stays "255.00" and "100" stays "100"
func FormatDecimal(d *decimal.Decimal) *string {
	if d == nil {
		return nil
	}
	var s string
	if exp := d.Exponent(); exp < 0 {
		s = d.StringFixed(-exp)
	} else {
		s = d.String()
	}
	return &s
}
