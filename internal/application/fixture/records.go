package fixture

// Model labels used in fixture files
const (
	ModelPlan   = "membership.membershipplan"
	ModelGuild  = "membership.guild"
	ModelMember = "membership.member"
	ModelSpace  = "membership.space"
	ModelLease  = "membership.lease"
)

// Record is one fixture entry: {"model", "pk", "fields"}
type Record struct {
	Model  string `json:"model"`
	PK     int    `json:"pk"`
	Fields any    `json:"fields"`
}

// Field layouts, in the order they are written. The validate tags are
// checked on load.

type PlanFields struct {
	Name            string  `json:"name" validate:"required,max=100"`
	MonthlyPrice    string  `json:"monthly_price" validate:"required,numeric"`
	DepositRequired *string `json:"deposit_required" validate:"omitempty,numeric"`
	Notes           string  `json:"notes"`
	CreatedAt       string  `json:"created_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type GuildFields struct {
	Name      string `json:"name" validate:"required,max=255"`
	GuildLead *int   `json:"guild_lead"`
	Notes     string `json:"notes"`
	CreatedAt string `json:"created_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type MemberFields struct {
	User                         *int    `json:"user"`
	FullLegalName                string  `json:"full_legal_name" validate:"required,max=255"`
	PreferredName                string  `json:"preferred_name" validate:"max=255"`
	Email                        string  `json:"email" validate:"omitempty,email"`
	Phone                        string  `json:"phone" validate:"max=20"`
	BillingName                  string  `json:"billing_name"`
	EmergencyContactName         string  `json:"emergency_contact_name"`
	EmergencyContactPhone        string  `json:"emergency_contact_phone" validate:"max=20"`
	EmergencyContactRelationship string  `json:"emergency_contact_relationship" validate:"max=100"`
	MembershipPlan               int     `json:"membership_plan" validate:"required"`
	Status                       string  `json:"status" validate:"required,oneof=active former suspended"`
	Role                         string  `json:"role" validate:"required,oneof=standard guild_lead work_trade employee contractor volunteer"`
	JoinDate                     *string `json:"join_date" validate:"omitempty,datetime=2006-01-02"`
	CancellationDate             *string `json:"cancellation_date" validate:"omitempty,datetime=2006-01-02"`
	CommittedUntil               *string `json:"committed_until" validate:"omitempty,datetime=2006-01-02"`
	Notes                        string  `json:"notes"`
	CreatedAt                    string  `json:"created_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type SpaceFields struct {
	SpaceID      string  `json:"space_id" validate:"required,max=20"`
	Name         string  `json:"name" validate:"max=255"`
	SpaceType    string  `json:"space_type" validate:"required,oneof=studio storage parking desk other"`
	SizeSqft     *string `json:"size_sqft" validate:"omitempty,numeric"`
	Width        *string `json:"width" validate:"omitempty,numeric"`
	Depth        *string `json:"depth" validate:"omitempty,numeric"`
	RatePerSqft  *string `json:"rate_per_sqft" validate:"omitempty,numeric"`
	IsRentable   bool    `json:"is_rentable"`
	ManualPrice  *string `json:"manual_price" validate:"omitempty,numeric"`
	Status       string  `json:"status" validate:"required,oneof=available occupied maintenance"`
	FloorplanRef string  `json:"floorplan_ref" validate:"max=100"`
	Notes        string  `json:"notes"`
	CreatedAt    string  `json:"created_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

type LeaseFields struct {
	ContentType       []string `json:"content_type" validate:"len=2"`
	ObjectID          int      `json:"object_id" validate:"required"`
	Space             int      `json:"space" validate:"required"`
	LeaseType         string   `json:"lease_type" validate:"required,oneof=month_to_month annual"`
	BasePrice         string   `json:"base_price" validate:"required,numeric"`
	MonthlyRent       string   `json:"monthly_rent" validate:"required,numeric"`
	StartDate         string   `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate           *string  `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	CommittedUntil    *string  `json:"committed_until" validate:"omitempty,datetime=2006-01-02"`
	DepositRequired   *string  `json:"deposit_required" validate:"omitempty,numeric"`
	DepositPaidDate   *string  `json:"deposit_paid_date" validate:"omitempty,datetime=2006-01-02"`
	DepositPaidAmount *string  `json:"deposit_paid_amount" validate:"omitempty,numeric"`
	DiscountReason    string   `json:"discount_reason"`
	IsSplit           bool     `json:"is_split"`
	PrepaidThrough    *string  `json:"prepaid_through" validate:"omitempty,datetime=2006-01-02"`
	Notes             string   `json:"notes"`
	CreatedAt         string   `json:"created_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}
