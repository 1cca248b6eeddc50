package seed

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

// Offset is a signed duration relative to the moment the seed runs,
// written as "3d", "-21h" or "1d3h"
type Offset time.Duration

var offsetPart = regexp.MustCompile(`(\d+)([dhm])`)

// UnmarshalYAML implements yaml.Unmarshaler
func (o *Offset) UnmarshalYAML(node *yaml.Node) error {
	d, err := ParseOffset(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*o = Offset(d)
	return nil
}

// From returns t shifted by the offset
func (o Offset) From(t time.Time) time.Time {
	return t.Add(time.Duration(o))
}

// ParseOffset parses an Offset string
func ParseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	sign := time.Duration(1)
	switch {
	case strings.HasPrefix(s, "-"):
		sign = -1
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if s == "0" {
		return 0, nil
	}
	parts := offsetPart.FindAllStringSubmatch(s, -1)
	var matched int
	var d time.Duration
	for _, p := range parts {
		matched += len(p[0])
		n, _ := strconv.Atoi(p[1])
		switch p[2] {
		case "d":
			d += time.Duration(n) * 24 * time.Hour
		case "h":
			d += time.Duration(n) * time.Hour
		case "m":
			d += time.Duration(n) * time.Minute
		}
	}
	if len(parts) == 0 || matched != len(s) {
		return 0, fmt.Errorf("invalid offset %q", s)
	}
	return sign * d, nil
}

// Dataset is the demo data set. Rows refer to each other by natural key:
// users by username, members by their user's username, guilds, tools,
// plans and splits by name, spaces by space id and leads by email.
type Dataset struct {
	Settings            []SettingRow      `yaml:"settings"`
	Admin               UserRow           `yaml:"admin"`
	DemoPassword        string            `yaml:"demo_password"`
	Users               []UserRow         `yaml:"users"`
	Plans               []PlanRow         `yaml:"plans"`
	Members             []MemberRow       `yaml:"members"`
	Guilds              []GuildRow        `yaml:"guilds"`
	GuildMemberships    []GuildMemberRow  `yaml:"guild_memberships"`
	GuildVotes          []GuildVoteRow    `yaml:"guild_votes"`
	GuildDocuments      []DocumentRow     `yaml:"guild_documents"`
	Wishlist            []WishlistRow     `yaml:"wishlist"`
	Spaces              []SpaceRow        `yaml:"spaces"`
	Leases              []LeaseRow        `yaml:"leases"`
	Tools               []ToolRow         `yaml:"tools"`
	Reservations        []ReservationRow  `yaml:"reservations"`
	RevenueSplits       []SplitRow        `yaml:"revenue_splits"`
	Rentables           []RentableRow     `yaml:"rentables"`
	Orders              []OrderRow        `yaml:"orders"`
	Rentals             []RentalRow       `yaml:"rentals"`
	Invoices            []InvoiceRow      `yaml:"invoices"`
	PayoutPeriod        PeriodRow         `yaml:"payout_period"`
	Payouts             []PayoutRow       `yaml:"payouts"`
	SubscriptionPlans   []SubPlanRow      `yaml:"subscription_plans"`
	MemberSubscriptions []SubscriptionRow `yaml:"member_subscriptions"`
	DiscountCodes       []DiscountRow     `yaml:"discount_codes"`
	Classes             []ClassRow        `yaml:"classes"`
	Orientations        []OrientationRow  `yaml:"orientations"`
	Leads               []LeadRow         `yaml:"leads"`
	Tours               []TourRow         `yaml:"tours"`
	Events              []EventRow        `yaml:"events"`
	Buyables            []BuyableRow      `yaml:"buyables"`
	Purchases           []PurchaseRow     `yaml:"purchases"`
	Schedules           []ScheduleRow     `yaml:"schedules"`
	ToolDocuments       []DocumentRow     `yaml:"tool_documents"`
}

type SettingRow struct {
	Key   string `yaml:"key"`
	Value any    `yaml:"value"`
	Type  string `yaml:"type"`
}

type UserRow struct {
	Username  string `yaml:"username"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
}

type PlanRow struct {
	Name            string  `yaml:"name"`
	MonthlyPrice    string  `yaml:"monthly_price"`
	DepositRequired *string `yaml:"deposit_required"`
}

type MemberRow struct {
	User          string `yaml:"user"`
	LegalName     string `yaml:"legal_name"`
	PreferredName string `yaml:"preferred_name"`
	Phone         string `yaml:"phone"`
	Status        string `yaml:"status"`
	Role          string `yaml:"role"`
	Plan          string `yaml:"plan"`
	JoinedDaysAgo int    `yaml:"joined_days_ago"`
}

type GuildRow struct {
	Name        string `yaml:"name"`
	Intro       string `yaml:"intro"`
	Description string `yaml:"description"`
	Icon        string `yaml:"icon"`
	Lead        string `yaml:"lead"`
}

type GuildMemberRow struct {
	Guild string `yaml:"guild"`
	User  string `yaml:"user"`
	Lead  bool   `yaml:"lead"`
}

// GuildVoteRow lists a member's guilds in priority order
type GuildVoteRow struct {
	Member string   `yaml:"member"`
	Guilds []string `yaml:"guilds"`
}

// DocumentRow is a placeholder document attached to a guild or tool
type DocumentRow struct {
	Owner      string `yaml:"owner"`
	Name       string `yaml:"name"`
	UploadedBy string `yaml:"uploaded_by"`
}

type WishlistRow struct {
	Guild       string `yaml:"guild"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Link        string `yaml:"link"`
	Cost        string `yaml:"cost"`
	Fulfilled   bool   `yaml:"fulfilled"`
	CreatedBy   string `yaml:"created_by"`
}

type SpaceRow struct {
	SpaceID     string  `yaml:"space_id"`
	Name        string  `yaml:"name"`
	Type        string  `yaml:"type"`
	SizeSqft    *string `yaml:"size_sqft"`
	RatePerSqft *string `yaml:"rate_per_sqft"`
	ManualPrice *string `yaml:"manual_price"`
	Status      string  `yaml:"status"`
	SubletGuild string  `yaml:"sublet_guild"`
}

// LeaseRow names exactly one of Guild or Member as the tenant
type LeaseRow struct {
	Guild       string `yaml:"guild"`
	Member      string `yaml:"member"`
	Space       string `yaml:"space"`
	Type        string `yaml:"type"`
	BasePrice   string `yaml:"base_price"`
	MonthlyRent string `yaml:"monthly_rent"`
}

type ToolRow struct {
	Guild       string `yaml:"guild"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Value       string `yaml:"value"`
	Reservable  bool   `yaml:"reservable"`
	Rentable    bool   `yaml:"rentable"`
}

type ReservationRow struct {
	Tool   string `yaml:"tool"`
	User   string `yaml:"user"`
	Starts Offset `yaml:"starts"`
	Ends   Offset `yaml:"ends"`
	Status string `yaml:"status"`
}

type SplitRow struct {
	Name    string          `yaml:"name"`
	Notes   string          `yaml:"notes"`
	Entries []SplitEntryRow `yaml:"entries"`
}

// SplitEntryRow names its payee by username or guild name; org entries
// have no payee
type SplitEntryRow struct {
	Type       string `yaml:"type"`
	Payee      string `yaml:"payee"`
	Percentage string `yaml:"percentage"`
}

type RentableRow struct {
	Tool   string `yaml:"tool"`
	Period string `yaml:"period"`
	Cost   string `yaml:"cost"`
	Split  string `yaml:"split"`
}

// OrderRef finds an order by its user and description
type OrderRef struct {
	User        string `yaml:"user"`
	Description string `yaml:"description"`
}

type OrderRow struct {
	User        string `yaml:"user"`
	Description string `yaml:"description"`
	Amount      int64  `yaml:"amount"`
	Status      string `yaml:"status"`
	Issued      Offset `yaml:"issued"`
	Split       string `yaml:"split"`
}

type RentalRow struct {
	Rentable   string    `yaml:"rentable"`
	User       string    `yaml:"user"`
	CheckedOut Offset    `yaml:"checked_out"`
	Due        Offset    `yaml:"due"`
	Status     string    `yaml:"status"`
	Order      *OrderRef `yaml:"order"`
}

type InvoiceRow struct {
	User       string  `yaml:"user"`
	StripeID   string  `yaml:"stripe_id"`
	AmountDue  int64   `yaml:"amount_due"`
	AmountPaid int64   `yaml:"amount_paid"`
	Status     string  `yaml:"status"`
	Issued     Offset  `yaml:"issued"`
	Paid       *Offset `yaml:"paid"`
}

type PeriodRow struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

type PayoutRow struct {
	PayeeType string `yaml:"payee_type"`
	Payee     string `yaml:"payee"`
	Amount    int64  `yaml:"amount"`
	Status    string `yaml:"status"`
}

type SubPlanRow struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Interval    string `yaml:"interval"`
	PlanType    string `yaml:"plan_type"`
}

type SubscriptionRow struct {
	User      string  `yaml:"user"`
	Plan      string  `yaml:"plan"`
	Status    string  `yaml:"status"`
	Starts    Offset  `yaml:"starts"`
	Ends      *Offset `yaml:"ends"`
	Cancelled *Offset `yaml:"cancelled"`
}

type DiscountRow struct {
	Code   string `yaml:"code"`
	Type   string `yaml:"type"`
	Value  string `yaml:"value"`
	Active bool   `yaml:"active"`
}

type ClassRow struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Location      string   `yaml:"location"`
	Price         string   `yaml:"price"`
	MaxStudents   int      `yaml:"max_students"`
	Guild         string   `yaml:"guild"`
	Instructor    string   `yaml:"instructor"`
	Status        string   `yaml:"status"`
	SessionIn     Offset   `yaml:"session_in"`
	Split         string   `yaml:"split"`
	DiscountCodes []string `yaml:"discount_codes"`
	Students      []string `yaml:"students"`
}

type OrientationRow struct {
	Guild       string          `yaml:"guild"`
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Minutes     int             `yaml:"minutes"`
	Price       string          `yaml:"price"`
	Split       string          `yaml:"split"`
	Tools       []string        `yaml:"tools"`
	Orienter    string          `yaml:"orienter"`
	Scheduled   []ScheduledSlot `yaml:"scheduled"`
}

type ScheduledSlot struct {
	User string `yaml:"user"`
	In   Offset `yaml:"in"`
}

type LeadRow struct {
	Name      string `yaml:"name"`
	Email     string `yaml:"email"`
	Phone     string `yaml:"phone"`
	Status    string `yaml:"status"`
	Source    string `yaml:"source"`
	Interests string `yaml:"interests"`
}

type TourRow struct {
	Lead   string `yaml:"lead"`
	At     Offset `yaml:"at"`
	Status string `yaml:"status"`
	Notes  string `yaml:"notes"`
}

type EventRow struct {
	Name           string `yaml:"name"`
	Description    string `yaml:"description"`
	Starts         Offset `yaml:"starts"`
	Ends           Offset `yaml:"ends"`
	Location       string `yaml:"location"`
	RecurrenceRule string `yaml:"recurrence_rule"`
	Published      bool   `yaml:"published"`
	Guild          string `yaml:"guild"`
	Creator        string `yaml:"creator"`
}

type BuyableRow struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Price       string `yaml:"price"`
	Active      bool   `yaml:"active"`
	Guild       string `yaml:"guild"`
	Split       string `yaml:"split"`
}

type PurchaseRow struct {
	Buyable   string    `yaml:"buyable"`
	User      string    `yaml:"user"`
	Quantity  int       `yaml:"quantity"`
	Purchased Offset    `yaml:"purchased"`
	Order     *OrderRef `yaml:"order"`
}

type ScheduleRow struct {
	User   string     `yaml:"user"`
	Blocks []BlockRow `yaml:"blocks"`
}

type BlockRow struct {
	Day   int    `yaml:"day"`
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// ParseDataset decodes a dataset, rejecting unknown keys
func ParseDataset(r io.Reader) (*Dataset, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var ds Dataset
	if err := dec.Decode(&ds); err != nil {
		return nil, fmt.Errorf("decode seed dataset: %w", err)
	}
	return &ds, nil
}

// Demo returns the embedded demo dataset
func Demo() (*Dataset, error) {
	return ParseDataset(bytes.NewReader(demoYAML))
}
