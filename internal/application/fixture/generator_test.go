package fixture

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const header = "Space Code,Label,Member,Full Price,Open,Actual Amount Paid,Dollar Loss,Dimensions,Sq Ft,Deviation,Earn Money,Paid Deposit,Notes,Accurate/Complete,$/sqft\n"

func sheet(rows ...string) string {
	return header + strings.Join(rows, "\n") + "\n"
}

func generate(t *testing.T, csv string) *Result {
	t.Helper()
	res, err := Generate(strings.NewReader(csv))
	require.NoError(t, err)
	return res
}

func recordsOf(res *Result, model string) []Record {
	var out []Record
	for _, r := range res.Records() {
		if r.Model == model {
			out = append(out, r)
		}
	}
	return out
}

func TestGenerate_SkipsBlankAndNumericCodes(t *testing.T) {
	res := generate(t, sheet(
		",,,,,,,,,,,,,,",
		"  ,Studio,Jane,,,,,,,,,,,,",
		"12,,,,,,,,,,,,,,",
		"3.5,,,,,,,,,,,,,,",
	))
	assert.Empty(t, res.spaces)
	assert.Len(t, res.Records(), 1)
}

func TestGenerate_TenantRow(t *testing.T) {
	res := generate(t, sheet(
		`A1 Studio,Studio,Jane Doe - 12,$255.00,,$255.00,,8.5 x 8,68,,,$100.00,"Corner, by window",,3.75`,
		`A3 Studio,Studio,Jane Doe,$300.00,,$280.00,,,,,,,,,`,
	))

	members := recordsOf(res, ModelMember)
	require.Len(t, members, 1)
	mf := members[0].Fields.(MemberFields)
	assert.Equal(t, "Jane Doe", mf.FullLegalName)
	assert.Equal(t, StandardPlanPK, mf.MembershipPlan)
	assert.Equal(t, "active", mf.Status)

	spaces := recordsOf(res, ModelSpace)
	require.Len(t, spaces, 2)
	sf := spaces[0].Fields.(SpaceFields)
	assert.Equal(t, "A1", sf.SpaceID)
	assert.Equal(t, "A1 Studio", sf.Name)
	assert.Equal(t, "studio", sf.SpaceType)
	assert.Equal(t, "occupied", sf.Status)
	assert.True(t, sf.IsRentable)
	assert.Equal(t, "68", *sf.SizeSqft)
	assert.Equal(t, "8.5", *sf.Width)
	assert.Equal(t, "255.00", *sf.ManualPrice)
	assert.Equal(t, "Corner, by window", sf.Notes)

	leases := recordsOf(res, ModelLease)
	require.Len(t, leases, 2)
	lf := leases[0].Fields.(LeaseFields)
	assert.Equal(t, []string{"membership", "member"}, lf.ContentType)
	assert.Equal(t, 1, lf.ObjectID)
	assert.Equal(t, 1, lf.Space)
	assert.Equal(t, "month_to_month", lf.LeaseType)
	assert.Equal(t, "255.00", lf.BasePrice)
	assert.Equal(t, "255.00", lf.MonthlyRent)
	assert.Equal(t, "2025-01-01", lf.StartDate)
	assert.Equal(t, "100.00", *lf.DepositRequired)
	assert.Equal(t, "100.00", *lf.DepositPaidAmount)
	assert.False(t, lf.IsSplit)

	assert.Equal(t, 2, leases[1].Fields.(LeaseFields).Space)
}

func TestGenerate_SplitAndZeroRent(t *testing.T) {
	res := generate(t, sheet(
		`A5 Studio,Studio,Pat Lee,$400.00,$200.00,$200.00,,,,,,,,,`,
		`A6 Studio,Studio,Sam Roe,$300.00,,$0.00,,,,,,,,,`,
		`A44 Studio,Studio,Allyson Barlow,$300.00,,$300.00,,,,,,,,,`,
	))

	leases := recordsOf(res, ModelLease)
	require.Len(t, leases, 3)
	assert.True(t, leases[0].Fields.(LeaseFields).IsSplit)
	assert.False(t, leases[1].Fields.(LeaseFields).IsSplit)
	assert.True(t, leases[2].Fields.(LeaseFields).IsSplit)

	assert.Equal(t, []string{"$0 rent occupied space: A6 (Sam Roe)"}, res.Warnings)
}

func TestGenerate_LeaseOverrides(t *testing.T) {
	res := generate(t, sheet(
		`B16 Studio,Studio,Sy Baskent,$400.00,,$0.00,,,,,,,,,`,
		`B1 Studio,Studio,Francisco Salgado,$350.00,,$315.00,,,,,,,,,`,
	))
	leases := recordsOf(res, ModelLease)
	require.Len(t, leases, 2)

	b16 := leases[0].Fields.(LeaseFields)
	assert.Equal(t, "0.00", b16.MonthlyRent)
	assert.Equal(t, "2026-12-01", *b16.PrepaidThrough)
	assert.Contains(t, b16.DiscountReason, "planer")

	b1 := leases[1].Fields.(LeaseFields)
	assert.Equal(t, "annual", b1.LeaseType)
	assert.Equal(t, "2026-07-01", *b1.PrepaidThrough)

	assert.Empty(t, res.Warnings)
}

func TestGenerate_GuildRows(t *testing.T) {
	res := generate(t, sheet(
		`A2b Glass Shop,Guild,PLM,$800.00,,$400.00,,,,,,,,,`,
		`A52 Glass Annex,Guild,PLM,,,,,,,,,,,,`,
		`B32a Gallery,Guild,PLM,$500.00,,,,,,,,,,,`,
	))

	assert.Equal(t, []string{"Glass Guild", "Gallery & Retail Guild"}, res.GuildNames())
	assert.Empty(t, res.MemberNames())

	spaces := recordsOf(res, ModelSpace)
	require.Len(t, spaces, 3)
	for _, s := range spaces {
		assert.Equal(t, "occupied", s.Fields.(SpaceFields).Status)
	}

	leases := recordsOf(res, ModelLease)
	require.Len(t, leases, 2, "A52 has neither price so gets no lease")
	first := leases[0].Fields.(LeaseFields)
	assert.Equal(t, []string{"membership", "guild"}, first.ContentType)
	assert.Equal(t, 1, first.ObjectID)
	assert.Equal(t, "800.00", first.BasePrice)
	assert.Equal(t, "400.00", first.MonthlyRent)

	second := leases[1].Fields.(LeaseFields)
	assert.Equal(t, 2, second.ObjectID)
	assert.Equal(t, 3, second.Space)
	assert.Equal(t, "0.00", second.MonthlyRent)
}

func TestGenerate_NonTenantRows(t *testing.T) {
	res := generate(t, sheet(
		`A9 Shelf,Shelf,PLM Shelf,,,,,,,,,,,,`,
		`C12 Batteries,Storage,Someone,,,,,,,,,,keep dry,,`,
		`B5 Bathroom,Bathroom,PLM,$100.00,,,,,,,,,,,`,
		`A2d Kiln,Kiln,PLM,,,,,,,,,,,,`,
		`A7 Studio,Open,X,$300.00,$150.00,,,,,,,,,,`,
		`W2 - Wood Storage,Wood,Open,$40.00,$40.00,,,,,,,,rack,,`,
		`D1 Loading,Loading,PLM,,,,,,,,,,,,`,
		`E4 Corner,Storage,Battery storage,,,,,,,,,,,,`,
	))

	spaces := recordsOf(res, ModelSpace)
	require.Len(t, spaces, 8)
	assert.Empty(t, recordsOf(res, ModelLease))
	assert.Empty(t, res.MemberNames())

	want := []struct {
		status   string
		rentable bool
		notes    string
	}{
		{"maintenance", false, "PLM shelf - not for rent"},
		{"maintenance", false, "Battery storage. keep dry"},
		{"maintenance", false, "Bathroom"},
		{"occupied", false, "Sub-unit of A2b (Glass Guild)."},
		{"available", true, "Half-rent amount: $150.00"},
		{"available", true, "Available at: $40.00. rack"},
		{"maintenance", false, "Loading"},
		{"maintenance", false, "Battery storage."},
	}
	for i, w := range want {
		sf := spaces[i].Fields.(SpaceFields)
		assert.Equal(t, w.status, sf.Status, sf.SpaceID)
		assert.Equal(t, w.rentable, sf.IsRentable, sf.SpaceID)
		assert.Equal(t, w.notes, sf.Notes, sf.SpaceID)
	}
	assert.Equal(t, "100.00", *spaces[2].Fields.(SpaceFields).ManualPrice)
	assert.Equal(t, "storage", spaces[5].Fields.(SpaceFields).SpaceType)

	assert.Equal(t, []string{"Unclassified PLM row: D1 (Loading) - creating as facility space"}, res.Warnings)
}

func TestGenerate_MemberAliases(t *testing.T) {
	res := generate(t, sheet(
		`A10 Studio,Studio,Ochen,$200.00,,$200.00,,,,,,,,,`,
		`A11 Studio,Studio,Ochen Kaylan - 9,$200.00,,$200.00,,,,,,,,,`,
	))
	require.Equal(t, []string{"Ochen Kaylan"}, res.MemberNames())
	mf := recordsOf(res, ModelMember)[0].Fields.(MemberFields)
	assert.Equal(t, "Ochen", mf.PreferredName)
}

func TestGenerate_RecordOrderAndJSON(t *testing.T) {
	res := generate(t, sheet(
		`A1 Studio,Studio,Jane Doe,$255.00,,$255.00,,,,,,,,,`,
		`B32c Gallery,Guild,PLM,$500.00,,$250.00,,,,,,,,,`,
	))

	var models []string
	for _, r := range res.Records() {
		models = append(models, r.Model)
	}
	assert.Equal(t, []string{ModelPlan, ModelGuild, ModelMember, ModelSpace, ModelSpace, ModelLease, ModelLease}, models)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(res.Records()))
	out := buf.String()
	assert.Contains(t, out, `"model":"membership.membershipplan","pk":1`)
	assert.Contains(t, out, `"Gallery & Retail Guild"`)
	assert.Contains(t, out, `"deposit_required":null`)
	assert.Contains(t, out, `"created_at":"2025-01-01T00:00:00Z"`)
}

func TestWriteReport(t *testing.T) {
	res := generate(t, sheet(
		`A5 Studio,Studio,Pat Lee,$400.00,$200.00,$200.00,,,,,,,,,`,
		`A6 Studio,Studio,Ochen,$300.00,,$0.00,,,,,,,,,`,
		`A2b Glass Shop,Guild,PLM,$800.00,,$400.00,,,,,,,,,`,
	))

	var buf bytes.Buffer
	res.WriteReport(&buf)
	out := buf.String()

	assert.True(t, strings.HasPrefix(out, strings.Repeat("=", 60)+"\nFIXTURE GENERATION REPORT\n"))
	assert.Contains(t, out, "  Guild:          1\n")
	assert.Contains(t, out, "  Member:         2\n")
	assert.Contains(t, out, "  Space:          3\n")
	assert.Contains(t, out, "  Lease:          3\n")
	assert.Contains(t, out, "  TOTAL:          10\n")
	assert.Contains(t, out, "  [1] Glass Guild\n")
	assert.Contains(t, out, "  [  2] Ochen Kaylan (preferred: \"Ochen\")\n")
	assert.Contains(t, out, "Split spaces (1):\n  A5: rent=200.00\n")
	assert.Contains(t, out, "$0 rent leases (1):\n  A6: member #2\n")
	assert.Contains(t, out, "  WARNING: $0 rent occupied space: A6 (Ochen Kaylan)\n")
}

func TestGenerate_EmptyInput(t *testing.T) {
	_, err := Generate(strings.NewReader(""))
	assert.Error(t, err)
}
