// Package fixture converts the legacy space-rental spreadsheet into a
// fixture file and loads fixture files into the database.
package fixture

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/plfog/backoffice/internal/infrastructure/csvimport"
	"github.com/shopspring/decimal"
)

const (
	StandardPlanPK    = 1
	StandardPlanName  = "Standard"
	StandardPlanPrice = "130.00"
	// CreatedAt stamps every generated record
	CreatedAt      = "2025-01-01T00:00:00Z"
	leaseStartDate = "2025-01-01"
)

// Columns of the spreadsheet export, in order
var Columns = []string{
	"space_code", "label", "member", "full_price", "open", "actual_amount_paid",
	"dollar_loss", "dimensions", "sqft", "deviation", "earn_money",
	"paid_deposit", "notes", "accurate_complete", "rate_per_sqft",
}

// GuildSpaces maps guild-held space ids to the guild name
var GuildSpaces = map[string]string{
	"A2b":  "Glass Guild",
	"A22b": "Textiles Guild",
	"A28":  "Tech Guild",
	"A33":  "Art Framing Guild",
	"A34":  "Art Framing Guild",
	"A51":  "Prison Outreach Guild",
	"A52":  "Glass Guild",
	"B21":  "Art Framing Guild",
	"B32a": "Gallery & Retail Guild",
	"B32c": "Gallery & Retail Guild",
	"C28":  "Leatherwork Guild",
	"C54":  "Ceramics Guild",
}

var (
	plmSubUnits    = setOf("A2c", "A2d", "A2e", "A2f", "A2g")
	facilitySpaces = setOf("A21b", "A24", "B5", "B9b", "B32b", "C29", "C29b", "C30", "C60")
)

const batteryStorageSpaceID = "C12"

var preferredNames = map[string]string{
	"Ochen Kaylan": "Ochen",
}

type leaseOverride struct {
	leaseType      string
	discountReason string
	prepaidThrough string
	rent           *decimal.Decimal
	split          bool
}

type overrideKey struct{ spaceID, member string }

var zeroRent = decimal.RequireFromString("0.00")

var leaseOverrides = map[overrideKey]leaseOverride{
	{"A14a", "Elle McGillagreen"}: {
		prepaidThrough: "2025-12-20",
		discountReason: "Paid for one year. $150/month minus $270 for prepayment. Expires December 20, 2025.",
	},
	{"B16", "Sy Baskent"}: {
		prepaidThrough: "2026-12-01",
		rent:           &zeroRent,
		discountReason: "Purchased planer for $3600, covers rent through December 2026",
	},
	{"B1", "Francisco Salgado"}: {
		prepaidThrough: "2026-07-01",
		leaseType:      "annual",
		discountReason: "One year term prepaid",
	},
	{"B2", "Brian Boring"}: {
		leaseType:      "annual",
		discountReason: "One year term (10% discount)",
	},
	{"B11", "Sloan Coffin"}: {
		leaseType:      "annual",
		discountReason: "10% annual discount",
	},
	{"B12", "Sloan Coffin"}: {
		leaseType:      "annual",
		discountReason: "10% annual discount",
	},
	{"A26", "Kira Hosler"}: {
		prepaidThrough: "2025-12-31",
		discountReason: "Paid $3500 for Jan-Dec 2025",
	},
	{"A44", "Allyson Barlow"}: {
		split: true,
	},
}

func setOf(ids ...string) map[string]struct{} {
	s := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Row is a cleaned spreadsheet row
type Row struct {
	SpaceCode  string
	Label      string
	MemberRaw  string
	FullPrice  *decimal.Decimal
	OpenValue  *decimal.Decimal
	ActualPaid *decimal.Decimal
	Notes      string
	SpaceID    string
	SpaceType  string
	Sqft       *decimal.Decimal
	Width      *decimal.Decimal
	Depth      *decimal.Decimal
	Rate       *decimal.Decimal
	Deposit    *decimal.Decimal
}

// ParseRow cleans one raw spreadsheet row
func ParseRow(r csvimport.Row) Row {
	code := strings.TrimSpace(r.Get("space_code"))
	spaceID := ExtractSpaceID(code)
	width, depth := ParseDimensions(r.Get("dimensions"))
	return Row{
		SpaceCode:  code,
		Label:      strings.TrimSpace(r.Get("label")),
		MemberRaw:  strings.TrimSpace(r.Get("member")),
		FullPrice:  ParseCurrency(r.Get("full_price")),
		OpenValue:  ParseCurrency(r.Get("open")),
		ActualPaid: ParseCurrency(r.Get("actual_amount_paid")),
		Notes:      strings.TrimSpace(r.Get("notes")),
		SpaceID:    spaceID,
		SpaceType:  string(ClassifySpaceType(code, spaceID)),
		Sqft:       ParseSqft(r.Get("sqft")),
		Width:      width,
		Depth:      depth,
		Rate:       ParseRate(r.Get("rate_per_sqft")),
		Deposit:    ParseCurrency(r.Get("paid_deposit")),
	}
}

type pendingLease struct {
	pk      int
	spaceID string
	fields  LeaseFields
}

// Result accumulates the records built from the spreadsheet
type Result struct {
	guilds     map[string]int
	guildNames []string
	members    map[string]int
	memberList []string
	spaces     []SpaceFields
	leases     []pendingLease
	Warnings   []string
}

func newResult() *Result {
	return &Result{
		guilds:  make(map[string]int),
		members: make(map[string]int),
	}
}

func (res *Result) guildPK(name string) int {
	if pk, ok := res.guilds[name]; ok {
		return pk
	}
	res.guildNames = append(res.guildNames, name)
	res.guilds[name] = len(res.guildNames)
	return res.guilds[name]
}

func (res *Result) memberPK(raw string) int {
	name := CleanMemberName(raw)
	if pk, ok := res.members[name]; ok {
		return pk
	}
	res.memberList = append(res.memberList, name)
	res.members[name] = len(res.memberList)
	return res.members[name]
}

func (res *Result) warn(format string, args ...any) {
	res.Warnings = append(res.Warnings, fmt.Sprintf(format, args...))
}

// Generate reads the spreadsheet export and classifies every row
func Generate(r io.Reader) (*Result, error) {
	parser, err := csvimport.NewReader(r, csvimport.Columns(Columns...), csvimport.KeepSpace())
	if err != nil {
		return nil, err
	}

	res := newResult()
	for {
		raw, err := parser.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		code := raw.Get("space_code")
		if strings.TrimSpace(code) == "" || IsNumericCode(code) {
			continue
		}

		row := ParseRow(raw)
		if res.nonTenantRow(row) || res.guildRow(row) {
			continue
		}
		res.tenantRow(row)
	}
	return res, nil
}

func (res *Result) addSpace(row Row, rentable bool, status, notes string, manualPrice *decimal.Decimal) {
	res.spaces = append(res.spaces, SpaceFields{
		SpaceID:     row.SpaceID,
		Name:        row.SpaceCode,
		SpaceType:   row.SpaceType,
		SizeSqft:    FormatDecimal(row.Sqft),
		Width:       FormatDecimal(row.Width),
		Depth:       FormatDecimal(row.Depth),
		RatePerSqft: FormatDecimal(row.Rate),
		IsRentable:  rentable,
		ManualPrice: FormatDecimal(manualPrice),
		Status:      status,
		Notes:       notes,
		CreatedAt:   CreatedAt,
	})
}

func labelNotes(row Row) string {
	if row.Notes == "" {
		return row.Label
	}
	return strings.TrimSpace(row.Label + ". " + row.Notes)
}

func openNotes(prefix string, row Row) string {
	if row.OpenValue == nil {
		return row.Notes
	}
	note := prefix + *FormatDecimal(row.OpenValue)
	return strings.Trim(note+". "+row.Notes, ". ")
}

// nonTenantRow handles spaces that get no lease: shelves, storage, facility
// areas, sub-units and vacancies
func (res *Result) nonTenantRow(row Row) bool {
	_, facility := facilitySpaces[row.SpaceID]
	_, subUnit := plmSubUnits[row.SpaceID]
	member := CleanMemberName(row.MemberRaw)
	_, guildSpace := GuildSpaces[row.SpaceID]

	switch {
	case row.MemberRaw == "PLM Shelf":
		res.addSpace(row, false, "maintenance", "PLM shelf - not for rent", nil)
	case row.SpaceID == batteryStorageSpaceID:
		res.addSpace(row, false, "maintenance", strings.TrimSpace("Battery storage. "+row.Notes), nil)
	case facility:
		res.addSpace(row, false, "maintenance", labelNotes(row), row.FullPrice)
	case subUnit:
		res.addSpace(row, false, "occupied", strings.TrimSpace("Sub-unit of A2b (Glass Guild). "+row.Notes), nil)
	case row.Label == "Open" && row.MemberRaw == "X":
		res.addSpace(row, true, "available", openNotes("Half-rent amount: $", row), row.FullPrice)
	case row.MemberRaw == "Open":
		res.addSpace(row, true, "available", openNotes("Available at: $", row), row.FullPrice)
	case member == "PLM" && !guildSpace:
		res.warn("Unclassified PLM row: %s (%s) - creating as facility space", row.SpaceID, row.Label)
		res.addSpace(row, false, "maintenance", labelNotes(row), row.FullPrice)
	case member == "Battery storage":
		res.addSpace(row, false, "maintenance", strings.TrimSpace("Battery storage. "+row.Notes), nil)
	default:
		return false
	}
	return true
}

func orZero(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return &zeroRent
	}
	return d
}

func (res *Result) addLease(row Row, tenantType string, objectID int, base, rent *decimal.Decimal) *LeaseFields {
	res.leases = append(res.leases, pendingLease{
		pk:      len(res.leases) + 1,
		spaceID: row.SpaceID,
		fields: LeaseFields{
			ContentType:       []string{"membership", tenantType},
			ObjectID:          objectID,
			LeaseType:         "month_to_month",
			BasePrice:         *FormatDecimal(base),
			MonthlyRent:       *FormatDecimal(rent),
			StartDate:         leaseStartDate,
			DepositRequired:   FormatDecimal(row.Deposit),
			DepositPaidAmount: FormatDecimal(row.Deposit),
			Notes:             row.Notes,
			CreatedAt:         CreatedAt,
		},
	})
	return &res.leases[len(res.leases)-1].fields
}

func (res *Result) guildRow(row Row) bool {
	name, ok := GuildSpaces[row.SpaceID]
	if !ok {
		return false
	}
	pk := res.guildPK(name)
	res.addSpace(row, true, "occupied", row.Notes, row.FullPrice)
	if row.ActualPaid != nil || row.FullPrice != nil {
		res.addLease(row, "guild", pk, orZero(row.FullPrice), orZero(row.ActualPaid))
	}
	return true
}

func (res *Result) tenantRow(row Row) {
	pk := res.memberPK(row.MemberRaw)
	member := CleanMemberName(row.MemberRaw)
	res.addSpace(row, true, "occupied", row.Notes, row.FullPrice)

	rent := orZero(row.ActualPaid)
	override, hasOverride := leaseOverrides[overrideKey{row.SpaceID, member}]
	if override.rent != nil {
		rent = override.rent
	}

	lease := res.addLease(row, "member", pk, orZero(row.FullPrice), rent)
	lease.IsSplit = row.OpenValue != nil && row.ActualPaid != nil && row.ActualPaid.IsPositive()
	if hasOverride {
		if override.leaseType != "" {
			lease.LeaseType = override.leaseType
		}
		lease.DiscountReason = override.discountReason
		if override.prepaidThrough != "" {
			p := override.prepaidThrough
			lease.PrepaidThrough = &p
		}
		lease.IsSplit = lease.IsSplit || override.split
	}

	if rent.IsZero() && override.rent == nil && row.ActualPaid != nil && row.ActualPaid.IsZero() {
		res.warn("$0 rent occupied space: %s (%s)", row.SpaceID, member)
	}
}

// Records assembles the fixture: plan, guilds, members, spaces, then
// leases with their space resolved to its record pk
func (res *Result) Records() []Record {
	records := []Record{{
		Model: ModelPlan,
		PK:    StandardPlanPK,
		Fields: PlanFields{
			Name:         StandardPlanName,
			MonthlyPrice: StandardPlanPrice,
			Notes:        "Standard membership plan for all members.",
			CreatedAt:    CreatedAt,
		},
	}}

	for i, name := range res.guildNames {
		records = append(records, Record{Model: ModelGuild, PK: i + 1, Fields: GuildFields{
			Name:      name,
			CreatedAt: CreatedAt,
		}})
	}

	for i, name := range res.memberList {
		records = append(records, Record{Model: ModelMember, PK: i + 1, Fields: MemberFields{
			FullLegalName:  name,
			PreferredName:  preferredNames[name],
			MembershipPlan: StandardPlanPK,
			Status:         "active",
			Role:           "standard",
			CreatedAt:      CreatedAt,
		}})
	}

	// a repeated space id resolves to its last occurrence
	spacePK := make(map[string]int, len(res.spaces))
	for i, s := range res.spaces {
		spacePK[s.SpaceID] = i + 1
		records = append(records, Record{Model: ModelSpace, PK: i + 1, Fields: s})
	}

	for _, l := range res.leases {
		fields := l.fields
		fields.Space = spacePK[l.spaceID]
		records = append(records, Record{Model: ModelLease, PK: l.pk, Fields: fields})
	}
	return records
}

// WriteReport writes the human-readable summary of the run
func (res *Result) WriteReport(w io.Writer) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "FIXTURE GENERATION REPORT")
	fmt.Fprintln(w, rule)

	fmt.Fprintln(w, "\nModel counts:")
	fmt.Fprintln(w, "  MembershipPlan: 1")
	fmt.Fprintf(w, "  Guild:          %d\n", len(res.guildNames))
	fmt.Fprintf(w, "  Member:         %d\n", len(res.memberList))
	fmt.Fprintf(w, "  Space:          %d\n", len(res.spaces))
	fmt.Fprintf(w, "  Lease:          %d\n", len(res.leases))
	total := 1 + len(res.guildNames) + len(res.memberList) + len(res.spaces) + len(res.leases)
	fmt.Fprintf(w, "  TOTAL:          %d\n", total)

	fmt.Fprintln(w, "\nGuilds created:")
	for i, name := range res.guildNames {
		fmt.Fprintf(w, "  [%d] %s\n", i+1, name)
	}

	fmt.Fprintln(w, "\nMembers created:")
	for i, name := range res.memberList {
		suffix := ""
		if pref := preferredNames[name]; pref != "" {
			suffix = fmt.Sprintf(" (preferred: \"%s\")", pref)
		}
		fmt.Fprintf(w, "  [%3d] %s%s\n", i+1, name, suffix)
	}

	var split, zero []pendingLease
	for _, l := range res.leases {
		if l.fields.IsSplit {
			split = append(split, l)
		}
		if l.fields.MonthlyRent == "0.00" || l.fields.MonthlyRent == "0" {
			zero = append(zero, l)
		}
	}
	if len(split) > 0 {
		fmt.Fprintf(w, "\nSplit spaces (%d):\n", len(split))
		for _, l := range split {
			fmt.Fprintf(w, "  %s: rent=%s\n", l.spaceID, l.fields.MonthlyRent)
		}
	}
	if len(zero) > 0 {
		fmt.Fprintf(w, "\n$0 rent leases (%d):\n", len(zero))
		for _, l := range zero {
			fmt.Fprintf(w, "  %s: %s #%d\n", l.spaceID, l.fields.ContentType[1], l.fields.ObjectID)
		}
	}

	if len(res.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", len(res.Warnings))
		for _, msg := range res.Warnings {
			fmt.Fprintf(w, "  WARNING: %s\n", msg)
		}
	}
	fmt.Fprintf(w, "\n%s\n", rule)
}

// GuildNames returns the guilds in pk order
func (res *Result) GuildNames() []string {
	return append([]string(nil), res.guildNames...)
}

// MemberNames returns the members in pk order
func (res *Result) MemberNames() []string {
	return append([]string(nil), res.memberList...)
}
