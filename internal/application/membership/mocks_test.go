package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*membership.Member, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByLegalName(ctx context.Context, name string) (*membership.Member, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Member), args.Error(1)
}

func (m *MockMemberRepository) FindAll(ctx context.Context, filter shared.Filter) ([]membership.Member, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]membership.Member), args.Error(1)
}

func (m *MockMemberRepository) FindActive(ctx context.Context) ([]membership.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]membership.Member), args.Error(1)
}

func (m *MockMemberRepository) WithLeaseTotals(ctx context.Context, asOf time.Time) ([]membership.MemberLeaseTotals, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]membership.MemberLeaseTotals), args.Error(1)
}

func (m *MockMemberRepository) Save(ctx context.Context, member *membership.Member) error {
	return m.Called(ctx, member).Error(0)
}

type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindByTenant(ctx context.Context, tenant membership.TenantRef) ([]membership.Lease, error) {
	args := m.Called(ctx, tenant)
	return args.Get(0).([]membership.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindBySpace(ctx context.Context, spaceID uuid.UUID) ([]membership.Lease, error) {
	args := m.Called(ctx, spaceID)
	return args.Get(0).([]membership.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindActive(ctx context.Context, asOf time.Time) ([]membership.Lease, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]membership.Lease), args.Error(1)
}

func (m *MockLeaseRepository) FindByTenantAndSpace(ctx context.Context, tenant membership.TenantRef, spaceID uuid.UUID, start time.Time) (*membership.Lease, error) {
	args := m.Called(ctx, tenant, spaceID, start)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Lease), args.Error(1)
}

func (m *MockLeaseRepository) Save(ctx context.Context, lease *membership.Lease) error {
	return m.Called(ctx, lease).Error(0)
}

type MockSpaceRepository struct {
	mock.Mock
}

func (m *MockSpaceRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Space, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Space), args.Error(1)
}

func (m *MockSpaceRepository) FindBySpaceID(ctx context.Context, spaceID string) (*membership.Space, error) {
	args := m.Called(ctx, spaceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Space), args.Error(1)
}

func (m *MockSpaceRepository) FindAll(ctx context.Context) ([]membership.Space, error) {
	args := m.Called(ctx)
	return args.Get(0).([]membership.Space), args.Error(1)
}

func (m *MockSpaceRepository) FindAvailable(ctx context.Context) ([]membership.Space, error) {
	args := m.Called(ctx)
	return args.Get(0).([]membership.Space), args.Error(1)
}

func (m *MockSpaceRepository) WithRevenue(ctx context.Context, asOf time.Time) ([]membership.SpaceRevenue, error) {
	args := m.Called(ctx, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]membership.SpaceRevenue), args.Error(1)
}

func (m *MockSpaceRepository) FindSubletTo(ctx context.Context, guildID uuid.UUID) ([]membership.Space, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).([]membership.Space), args.Error(1)
}

func (m *MockSpaceRepository) Save(ctx context.Context, space *membership.Space) error {
	return m.Called(ctx, space).Error(0)
}

type MockGuildRepository struct {
	mock.Mock
}

func (m *MockGuildRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.Guild, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Guild), args.Error(1)
}

func (m *MockGuildRepository) FindByName(ctx context.Context, name string) (*membership.Guild, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Guild), args.Error(1)
}

func (m *MockGuildRepository) FindBySlug(ctx context.Context, slug string) (*membership.Guild, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.Guild), args.Error(1)
}

func (m *MockGuildRepository) FindAll(ctx context.Context) ([]membership.Guild, error) {
	args := m.Called(ctx)
	return args.Get(0).([]membership.Guild), args.Error(1)
}

func (m *MockGuildRepository) Save(ctx context.Context, guild *membership.Guild) error {
	return m.Called(ctx, guild).Error(0)
}

func (m *MockGuildRepository) SaveMembership(ctx context.Context, gm *membership.GuildMembership) error {
	return m.Called(ctx, gm).Error(0)
}

func (m *MockGuildRepository) SaveVote(ctx context.Context, v *membership.GuildVote) error {
	return m.Called(ctx, v).Error(0)
}

func (m *MockGuildRepository) SaveWishlistItem(ctx context.Context, item *membership.GuildWishlistItem) error {
	return m.Called(ctx, item).Error(0)
}

type MockGuildDocumentRepository struct {
	mock.Mock
}

func (m *MockGuildDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*membership.GuildDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*membership.GuildDocument), args.Error(1)
}

func (m *MockGuildDocumentRepository) FindByGuild(ctx context.Context, guildID uuid.UUID) ([]membership.GuildDocument, error) {
	args := m.Called(ctx, guildID)
	return args.Get(0).([]membership.GuildDocument), args.Error(1)
}

func (m *MockGuildDocumentRepository) Save(ctx context.Context, doc *membership.GuildDocument) error {
	return m.Called(ctx, doc).Error(0)
}
