package membership

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
	asciiOnly    = transform.Chain(norm.NFKD, runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})))
)

// Slugify lowercases s, drops non-ASCII and punctuation, and joins words
// with hyphens: "3D Printing Guild" -> "3d-printing-guild".
func Slugify(s string) string {
	ascii, _, err := transform.String(asciiOnly, s)
	if err != nil {
		ascii = s
	}
	ascii = slugStrip.ReplaceAllString(strings.ToLower(ascii), "")
	ascii = slugCollapse.ReplaceAllString(ascii, "-")
	return strings.Trim(ascii, "-_")
}

// Guild is a sub-community of members organised around a craft
type Guild struct {
	shared.BaseEntity
	Name        string     `gorm:"type:varchar(255);not null;uniqueIndex" json:"name"`
	Slug        string     `gorm:"type:varchar(255);uniqueIndex" json:"slug"`
	GuildLeadID *uuid.UUID `gorm:"type:uuid;index" json:"guild_lead_id,omitempty"`
	GuildLead   *Member    `gorm:"foreignKey:GuildLeadID" json:"guild_lead,omitempty"`
	Intro       string     `gorm:"type:text" json:"intro"`
	Description string     `gorm:"type:text" json:"description"`
	Icon        string     `gorm:"type:varchar(50)" json:"icon"`
	IsActive    bool       `gorm:"not null" json:"is_active"`
	Notes       string     `gorm:"type:text" json:"notes"`
}

// TableName returns the table name for GORM
func (Guild) TableName() string {
	return "guilds"
}

// NewGuild creates an active guild with a slug derived from its name
func NewGuild(name string) (*Guild, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_GUILD_NAME", "Guild name cannot be empty")
	}
	g := &Guild{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		IsActive:   true,
	}
	g.EnsureSlug()
	return g, nil
}

// EnsureSlug fills the slug from the name when it is empty.
// An existing slug is never rewritten, so renames keep their URL.
func (g *Guild) EnsureSlug() {
	if g.Slug == "" {
		g.Slug = Slugify(g.Name)
	}
}

func (g *Guild) String() string {
	return g.Name
}

// ActiveLeases filters leases held by this guild and active on asOf
func (g *Guild) ActiveLeases(leases []Lease, asOf time.Time) []Lease {
	var out []Lease
	for _, l := range ActiveLeases(leases, asOf) {
		if l.TenantType == TenantTypeGuild && l.TenantID == g.ID {
			out = append(out, l)
		}
	}
	return out
}

// Sublets filters spaces sublet to this guild
func (g *Guild) Sublets(spaces []Space) []Space {
	var out []Space
	for _, s := range spaces {
		if s.SubletGuildID != nil && *s.SubletGuildID == g.ID {
			out = append(out, s)
		}
	}
	return out
}

// MaxVotePriority is the number of ranked guild votes a member may cast
const MaxVotePriority = 3

// GuildVote is a member's ranked preference for a guild
type GuildVote struct {
	shared.BaseEntity
	MemberID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_vote_member_priority,priority:1;uniqueIndex:uq_vote_member_guild,priority:1" json:"member_id"`
	Member   *Member   `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	GuildID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:uq_vote_member_guild,priority:2" json:"guild_id"`
	Guild    *Guild    `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	Priority int       `gorm:"not null;uniqueIndex:uq_vote_member_priority,priority:2" json:"priority"`
}

// TableName returns the table name for GORM
func (GuildVote) TableName() string {
	return "guild_votes"
}

// NewGuildVote creates a vote with priority 1..MaxVotePriority
func NewGuildVote(memberID, guildID uuid.UUID, priority int) (*GuildVote, error) {
	if priority < 1 || priority > MaxVotePriority {
		return nil, shared.NewDomainError("INVALID_PRIORITY", fmt.Sprintf("Priority must be between 1 and %d", MaxVotePriority))
	}
	return &GuildVote{
		BaseEntity: shared.NewBaseEntity(),
		MemberID:   memberID,
		GuildID:    guildID,
		Priority:   priority,
	}, nil
}

// String renders "member → guild (#p)". Associations must be loaded.
func (v *GuildVote) String() string {
	var member, guild string
	if v.Member != nil {
		member = v.Member.DisplayName()
	}
	if v.Guild != nil {
		guild = v.Guild.Name
	}
	return fmt.Sprintf("%s → %s (#%d)", member, guild, v.Priority)
}

// GuildMembership links a user to a guild
type GuildMembership struct {
	shared.BaseEntity
	GuildID  uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_guild_user,priority:1" json:"guild_id"`
	Guild    *Guild         `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	UserID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:uq_guild_user,priority:2" json:"user_id"`
	User     *identity.User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	IsLead   bool           `gorm:"not null;default:false" json:"is_lead"`
	JoinedAt time.Time      `gorm:"not null;autoCreateTime" json:"joined_at"`
}

// TableName returns the table name for GORM
func (GuildMembership) TableName() string {
	return "guild_memberships"
}

// NewGuildMembership creates a membership record
func NewGuildMembership(guildID, userID uuid.UUID, isLead bool) *GuildMembership {
	return &GuildMembership{
		BaseEntity: shared.NewBaseEntity(),
		GuildID:    guildID,
		UserID:     userID,
		IsLead:     isLead,
		JoinedAt:   time.Now(),
	}
}

// String renders "username - guild (Lead|Member)"
func (gm *GuildMembership) String() string {
	role := "Member"
	if gm.IsLead {
		role = "Lead"
	}
	var username, guild string
	if gm.User != nil {
		username = gm.User.Username
	}
	if gm.Guild != nil {
		guild = gm.Guild.Name
	}
	return fmt.Sprintf("%s - %s (%s)", username, guild, role)
}

// GuildDocument is a file attached to a guild; FilePath is the object key
type GuildDocument struct {
	shared.BaseEntity
	GuildID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"guild_id"`
	Guild        *Guild     `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	Name         string     `gorm:"type:varchar(255);not null" json:"name"`
	FilePath     string     `gorm:"type:varchar(500);not null" json:"file_path"`
	UploadedByID *uuid.UUID `gorm:"type:uuid;index" json:"uploaded_by_id,omitempty"`
}

// TableName returns the table name for GORM
func (GuildDocument) TableName() string {
	return "guild_documents"
}

func (d *GuildDocument) String() string {
	return d.Name
}

// GuildWishlistItem is equipment a guild would like to acquire
type GuildWishlistItem struct {
	shared.BaseEntity
	GuildID       uuid.UUID        `gorm:"type:uuid;not null;index" json:"guild_id"`
	Guild         *Guild           `gorm:"foreignKey:GuildID" json:"guild,omitempty"`
	Name          string           `gorm:"type:varchar(255);not null" json:"name"`
	Description   string           `gorm:"type:text" json:"description"`
	Link          string           `gorm:"type:varchar(200)" json:"link"`
	EstimatedCost *decimal.Decimal `gorm:"type:decimal(8,2)" json:"estimated_cost,omitempty"`
	IsFulfilled   bool             `gorm:"not null;default:false" json:"is_fulfilled"`
	CreatedByID   *uuid.UUID       `gorm:"type:uuid;index" json:"created_by_id,omitempty"`
}

// TableName returns the table name for GORM
func (GuildWishlistItem) TableName() string {
	return "guild_wishlist_items"
}

func (w *GuildWishlistItem) String() string {
	return w.Name
}

// Fulfill marks the item acquired
func (w *GuildWishlistItem) Fulfill() {
	w.IsFulfilled = true
	w.Touch()
}
