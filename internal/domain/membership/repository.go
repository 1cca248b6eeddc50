package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/shared"
)

// PlanRepository persists membership plans
type PlanRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*MembershipPlan, error)
	FindByName(ctx context.Context, name string) (*MembershipPlan, error)
	Save(ctx context.Context, plan *MembershipPlan) error
}

// MemberRepository persists members
type MemberRepository interface {
	// FindByID preloads the membership plan
	FindByID(ctx context.Context, id uuid.UUID) (*Member, error)
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Member, error)
	FindByLegalName(ctx context.Context, name string) (*Member, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Member, error)
	// FindActive returns members with status active
	FindActive(ctx context.Context) ([]Member, error)
	// WithLeaseTotals annotates every member with the count and rent total
	// of its leases active on asOf
	WithLeaseTotals(ctx context.Context, asOf time.Time) ([]MemberLeaseTotals, error)
	Save(ctx context.Context, member *Member) error
}

// SpaceRepository persists spaces
type SpaceRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Space, error)
	FindBySpaceID(ctx context.Context, spaceID string) (*Space, error)
	// FindAll returns every space ordered by space_id
	FindAll(ctx context.Context) ([]Space, error)
	FindAvailable(ctx context.Context) ([]Space, error)
	// WithRevenue annotates every space with the rent of its leases active on asOf
	WithRevenue(ctx context.Context, asOf time.Time) ([]SpaceRevenue, error)
	FindSubletTo(ctx context.Context, guildID uuid.UUID) ([]Space, error)
	Save(ctx context.Context, space *Space) error
}

// LeaseRepository persists leases
type LeaseRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Lease, error)
	// FindByTenant returns the tenant's leases, newest start date first
	FindByTenant(ctx context.Context, tenant TenantRef) ([]Lease, error)
	FindBySpace(ctx context.Context, spaceID uuid.UUID) ([]Lease, error)
	// FindActive returns leases active on asOf with their space preloaded
	FindActive(ctx context.Context, asOf time.Time) ([]Lease, error)
	FindByTenantAndSpace(ctx context.Context, tenant TenantRef, spaceID uuid.UUID, start time.Time) (*Lease, error)
	Save(ctx context.Context, lease *Lease) error
}

// GuildRepository persists guilds and their satellite records
type GuildRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Guild, error)
	FindByName(ctx context.Context, name string) (*Guild, error)
	FindBySlug(ctx context.Context, slug string) (*Guild, error)
	// FindAll returns guilds ordered by name
	FindAll(ctx context.Context) ([]Guild, error)
	// Save fills an empty slug before writing
	Save(ctx context.Context, guild *Guild) error
	SaveMembership(ctx context.Context, m *GuildMembership) error
	SaveVote(ctx context.Context, v *GuildVote) error
	SaveWishlistItem(ctx context.Context, item *GuildWishlistItem) error
}

// GuildDocumentRepository persists guild document metadata
type GuildDocumentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*GuildDocument, error)
	FindByGuild(ctx context.Context, guildID uuid.UUID) ([]GuildDocument, error)
	Save(ctx context.Context, doc *GuildDocument) error
}

// ScheduleRepository persists member schedules
type ScheduleRepository interface {
	// FindByUserID preloads the blocks
	FindByUserID(ctx context.Context, userID uuid.UUID) (*MemberSchedule, error)
	Save(ctx context.Context, schedule *MemberSchedule) error
	SaveBlock(ctx context.Context, block *ScheduleBlock) error
}
