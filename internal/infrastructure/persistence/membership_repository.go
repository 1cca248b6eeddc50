package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeLeaseScope keeps leases whose [start_date, end_date] covers asOf
func activeLeaseScope(asOf time.Time) func(*gorm.DB) *gorm.DB {
	day := shared.DateOf(asOf)
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("leases.start_date <= ?", day).
			Where("leases.end_date IS NULL OR leases.end_date >= ?", day)
	}
}

// leaseAggregate is one row of a GROUP BY over active leases
type leaseAggregate struct {
	GroupKey   uuid.UUID
	LeaseCount int64
	RentTotal  decimal.NullDecimal
}

// GormPlanRepository implements membership.PlanRepository using GORM
type GormPlanRepository struct {
	db *gorm.DB
}

// NewGormPlanRepository creates a new GormPlanRepository
func NewGormPlanRepository(db *gorm.DB) *GormPlanRepository {
	return &GormPlanRepository{db: db}
}

// FindByID finds a plan by ID
func (r *GormPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.MembershipPlan, error) {
	var plan membership.MembershipPlan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

// FindByName finds a plan by its unique name
func (r *GormPlanRepository) FindByName(ctx context.Context, name string) (*membership.MembershipPlan, error) {
	var plan membership.MembershipPlan
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&plan).Error; err != nil {
		return nil, notFound(err)
	}
	return &plan, nil
}

// Save inserts or updates a plan
func (r *GormPlanRepository) Save(ctx context.Context, plan *membership.MembershipPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// GormMemberRepository implements membership.MemberRepository using GORM
type GormMemberRepository struct {
	db *gorm.DB
}

// NewGormMemberRepository creates a new GormMemberRepository
func NewGormMemberRepository(db *gorm.DB) *GormMemberRepository {
	return &GormMemberRepository{db: db}
}

// FindByID finds a member with its plan
func (r *GormMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	var m membership.Member
	if err := r.db.WithContext(ctx).Preload("MembershipPlan").First(&m, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// FindByUserID finds the member linked to a user account
func (r *GormMemberRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*membership.Member, error) {
	var m membership.Member
	if err := r.db.WithContext(ctx).Preload("MembershipPlan").Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// FindByLegalName finds a member by exact legal name
func (r *GormMemberRepository) FindByLegalName(ctx context.Context, name string) (*membership.Member, error) {
	var m membership.Member
	if err := r.db.WithContext(ctx).Where("full_legal_name = ?", name).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// FindAll lists members, optionally narrowed by status and a name search
func (r *GormMemberRepository) FindAll(ctx context.Context, filter shared.Filter) ([]membership.Member, error) {
	q := r.db.WithContext(ctx).Model(&membership.Member{}).Preload("MembershipPlan")
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("full_legal_name LIKE ? OR preferred_name LIKE ? OR email LIKE ?", like, like, like)
	}
	if status, ok := filter.Filters["status"]; ok {
		q = q.Where("status = ?", status)
	}
	var members []membership.Member
	if err := q.Scopes(Paginate(filter, MemberSortFields, "full_legal_name")).Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// FindActive returns active members ordered by legal name
func (r *GormMemberRepository) FindActive(ctx context.Context) ([]membership.Member, error) {
	var members []membership.Member
	if err := r.db.WithContext(ctx).Preload("MembershipPlan").
		Where("status = ?", membership.MemberStatusActive).
		Order("full_legal_name").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// WithLeaseTotals returns every member with the count and rent total of its
// active leases. Members without leases report zero.
func (r *GormMemberRepository) WithLeaseTotals(ctx context.Context, asOf time.Time) ([]membership.MemberLeaseTotals, error) {
	var members []membership.Member
	if err := r.db.WithContext(ctx).Preload("MembershipPlan").Order("full_legal_name").Find(&members).Error; err != nil {
		return nil, err
	}

	var rows []leaseAggregate
	if err := r.db.WithContext(ctx).Model(&membership.Lease{}).
		Select("tenant_id AS group_key, COUNT(*) AS lease_count, SUM(monthly_rent) AS rent_total").
		Where("tenant_type = ?", membership.TenantTypeMember).
		Scopes(activeLeaseScope(asOf)).
		Group("tenant_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	byMember := make(map[uuid.UUID]leaseAggregate, len(rows))
	for _, row := range rows {
		byMember[row.GroupKey] = row
	}

	out := make([]membership.MemberLeaseTotals, 0, len(members))
	for _, m := range members {
		agg := byMember[m.ID]
		total := decimal.Zero
		if agg.RentTotal.Valid {
			total = agg.RentTotal.Decimal
		}
		out = append(out, membership.MemberLeaseTotals{
			Member:           m,
			ActiveLeaseCount: agg.LeaseCount,
			TotalMonthlyRent: total,
		})
	}
	return out, nil
}

// Save inserts or updates a member row
func (r *GormMemberRepository) Save(ctx context.Context, member *membership.Member) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(member).Error
}

// GormSpaceRepository implements membership.SpaceRepository using GORM
type GormSpaceRepository struct {
	db *gorm.DB
}

// NewGormSpaceRepository creates a new GormSpaceRepository
func NewGormSpaceRepository(db *gorm.DB) *GormSpaceRepository {
	return &GormSpaceRepository{db: db}
}

// FindByID finds a space by primary key
func (r *GormSpaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Space, error) {
	var s membership.Space
	if err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// FindBySpaceID finds a space by its human identifier such as "S-101"
func (r *GormSpaceRepository) FindBySpaceID(ctx context.Context, spaceID string) (*membership.Space, error) {
	var s membership.Space
	if err := r.db.WithContext(ctx).Where("space_id = ?", spaceID).First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// FindAll returns every space ordered by space_id
func (r *GormSpaceRepository) FindAll(ctx context.Context) ([]membership.Space, error) {
	var spaces []membership.Space
	if err := r.db.WithContext(ctx).Order("space_id").Find(&spaces).Error; err != nil {
		return nil, err
	}
	return spaces, nil
}

// FindAvailable returns spaces with status available, rentable or not
func (r *GormSpaceRepository) FindAvailable(ctx context.Context) ([]membership.Space, error) {
	var spaces []membership.Space
	if err := r.db.WithContext(ctx).
		Where("status = ?", membership.SpaceStatusAvailable).
		Order("space_id").
		Find(&spaces).Error; err != nil {
		return nil, err
	}
	return spaces, nil
}

// WithRevenue returns every space with the rent total of its active leases
func (r *GormSpaceRepository) WithRevenue(ctx context.Context, asOf time.Time) ([]membership.SpaceRevenue, error) {
	spaces, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var rows []leaseAggregate
	if err := r.db.WithContext(ctx).Model(&membership.Lease{}).
		Select("space_id AS group_key, COUNT(*) AS lease_count, SUM(monthly_rent) AS rent_total").
		Scopes(activeLeaseScope(asOf)).
		Group("space_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	bySpace := make(map[uuid.UUID]decimal.Decimal, len(rows))
	for _, row := range rows {
		if row.RentTotal.Valid {
			bySpace[row.GroupKey] = row.RentTotal.Decimal
		}
	}

	out := make([]membership.SpaceRevenue, 0, len(spaces))
	for _, s := range spaces {
		total, ok := bySpace[s.ID]
		if !ok {
			total = decimal.Zero
		}
		out = append(out, membership.SpaceRevenue{Space: s, ActiveLeaseRentTotal: total})
	}
	return out, nil
}

// FindSubletTo returns the spaces sublet to a guild
func (r *GormSpaceRepository) FindSubletTo(ctx context.Context, guildID uuid.UUID) ([]membership.Space, error) {
	var spaces []membership.Space
	if err := r.db.WithContext(ctx).Where("sublet_guild_id = ?", guildID).Order("space_id").Find(&spaces).Error; err != nil {
		return nil, err
	}
	return spaces, nil
}

// Save inserts or updates a space
func (r *GormSpaceRepository) Save(ctx context.Context, space *membership.Space) error {
	return r.db.WithContext(ctx).Save(space).Error
}

// GormLeaseRepository implements membership.LeaseRepository using GORM
type GormLeaseRepository struct {
	db *gorm.DB
}

// NewGormLeaseRepository creates a new GormLeaseRepository
func NewGormLeaseRepository(db *gorm.DB) *GormLeaseRepository {
	return &GormLeaseRepository{db: db}
}

// FindByID finds a lease with its space
func (r *GormLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Lease, error) {
	var l membership.Lease
	if err := r.db.WithContext(ctx).Preload("Space").First(&l, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// FindByTenant returns the tenant's leases, newest first
func (r *GormLeaseRepository) FindByTenant(ctx context.Context, tenant membership.TenantRef) ([]membership.Lease, error) {
	var leases []membership.Lease
	if err := r.db.WithContext(ctx).Preload("Space").
		Where("tenant_type = ? AND tenant_id = ?", tenant.Type, tenant.ID).
		Order("start_date DESC").
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindBySpace returns the space's leases, newest first
func (r *GormLeaseRepository) FindBySpace(ctx context.Context, spaceID uuid.UUID) ([]membership.Lease, error) {
	var leases []membership.Lease
	if err := r.db.WithContext(ctx).
		Where("space_id = ?", spaceID).
		Order("start_date DESC").
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindActive returns the leases active on asOf
func (r *GormLeaseRepository) FindActive(ctx context.Context, asOf time.Time) ([]membership.Lease, error) {
	var leases []membership.Lease
	if err := r.db.WithContext(ctx).Preload("Space").
		Scopes(activeLeaseScope(asOf)).
		Order("start_date").
		Find(&leases).Error; err != nil {
		return nil, err
	}
	return leases, nil
}

// FindByTenantAndSpace finds the lease identified by tenant, space and start date
func (r *GormLeaseRepository) FindByTenantAndSpace(ctx context.Context, tenant membership.TenantRef, spaceID uuid.UUID, start time.Time) (*membership.Lease, error) {
	var l membership.Lease
	if err := r.db.WithContext(ctx).
		Where("tenant_type = ? AND tenant_id = ? AND space_id = ? AND start_date = ?",
			tenant.Type, tenant.ID, spaceID, shared.DateOf(start)).
		First(&l).Error; err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// Save inserts or updates a lease row
func (r *GormLeaseRepository) Save(ctx context.Context, lease *membership.Lease) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(lease).Error
}

// GormGuildRepository implements membership.GuildRepository using GORM
type GormGuildRepository struct {
	db *gorm.DB
}

// NewGormGuildRepository creates a new GormGuildRepository
func NewGormGuildRepository(db *gorm.DB) *GormGuildRepository {
	return &GormGuildRepository{db: db}
}

// FindByID finds a guild with its lead
func (r *GormGuildRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Guild, error) {
	var g membership.Guild
	if err := r.db.WithContext(ctx).Preload("GuildLead").First(&g, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

// FindByName finds a guild by its unique name
func (r *GormGuildRepository) FindByName(ctx context.Context, name string) (*membership.Guild, error) {
	var g membership.Guild
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

// FindBySlug finds a guild by slug
func (r *GormGuildRepository) FindBySlug(ctx context.Context, slug string) (*membership.Guild, error) {
	var g membership.Guild
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&g).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

// FindAll returns guilds ordered by name
func (r *GormGuildRepository) FindAll(ctx context.Context) ([]membership.Guild, error) {
	var guilds []membership.Guild
	if err := r.db.WithContext(ctx).Order("name").Find(&guilds).Error; err != nil {
		return nil, err
	}
	return guilds, nil
}

// Save fills an empty slug and writes the guild row
func (r *GormGuildRepository) Save(ctx context.Context, guild *membership.Guild) error {
	guild.EnsureSlug()
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(guild).Error
}

// SaveMembership inserts or updates a guild membership
func (r *GormGuildRepository) SaveMembership(ctx context.Context, m *membership.GuildMembership) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(m).Error
}

// SaveVote inserts or updates a vote. The unique indexes reject a second
// vote at the same priority or for the same guild.
func (r *GormGuildRepository) SaveVote(ctx context.Context, v *membership.GuildVote) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(v).Error
}

// SaveWishlistItem inserts or updates a wishlist item
func (r *GormGuildRepository) SaveWishlistItem(ctx context.Context, item *membership.GuildWishlistItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

// GormGuildDocumentRepository implements membership.GuildDocumentRepository
type GormGuildDocumentRepository struct {
	db *gorm.DB
}

// NewGormGuildDocumentRepository creates a new GormGuildDocumentRepository
func NewGormGuildDocumentRepository(db *gorm.DB) *GormGuildDocumentRepository {
	return &GormGuildDocumentRepository{db: db}
}

// FindByID finds a document by ID
func (r *GormGuildDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.GuildDocument, error) {
	var d membership.GuildDocument
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &d, nil
}

// FindByGuild lists the guild's documents, newest first
func (r *GormGuildDocumentRepository) FindByGuild(ctx context.Context, guildID uuid.UUID) ([]membership.GuildDocument, error) {
	var docs []membership.GuildDocument
	if err := r.db.WithContext(ctx).Where("guild_id = ?", guildID).Order("created_at DESC").Find(&docs).Error; err != nil {
		return nil, err
	}
	return docs, nil
}

// Save inserts or updates document metadata
func (r *GormGuildDocumentRepository) Save(ctx context.Context, doc *membership.GuildDocument) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(doc).Error
}

// GormScheduleRepository implements membership.ScheduleRepository using GORM
type GormScheduleRepository struct {
	db *gorm.DB
}

// NewGormScheduleRepository creates a new GormScheduleRepository
func NewGormScheduleRepository(db *gorm.DB) *GormScheduleRepository {
	return &GormScheduleRepository{db: db}
}

// FindByUserID returns the user's schedule with blocks ordered by day and start
func (r *GormScheduleRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*membership.MemberSchedule, error) {
	var s membership.MemberSchedule
	if err := r.db.WithContext(ctx).
		Preload("Blocks", func(db *gorm.DB) *gorm.DB { return db.Order("day_of_week, start_time") }).
		Where("user_id = ?", userID).
		First(&s).Error; err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

// Save inserts or updates the schedule row
func (r *GormScheduleRepository) Save(ctx context.Context, schedule *membership.MemberSchedule) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(schedule).Error
}

// SaveBlock inserts or updates a block
func (r *GormScheduleRepository) SaveBlock(ctx context.Context, block *membership.ScheduleBlock) error {
	return r.db.WithContext(ctx).Save(block).Error
}
