// Package membership serves member, space and guild views over the
// membership domain.
package membership

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// MemberSummary is a member's current leases and monthly money picture
type MemberSummary struct {
	Member             *membership.Member
	ActiveLeases       []membership.Lease
	CurrentSpaces      []membership.Space
	MembershipDues     decimal.Decimal
	StudioStorageTotal decimal.Decimal
	TotalMonthlySpend  decimal.Decimal
	AsOf               time.Time
}

// MemberService answers questions about members
type MemberService struct {
	memberRepo membership.MemberRepository
	leaseRepo  membership.LeaseRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewMemberService creates a member service
func NewMemberService(memberRepo membership.MemberRepository, leaseRepo membership.LeaseRepository, logger *zap.Logger) *MemberService {
	return &MemberService{
		memberRepo: memberRepo,
		leaseRepo:  leaseRepo,
		logger:     logger,
		now:        shared.Today,
	}
}

// Summary loads the member with plan and leases and totals them as of today
func (s *MemberService) Summary(ctx context.Context, id uuid.UUID) (*MemberSummary, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "membership", "member_summary", "member_id", id.String())
	defer span.End()

	member, err := s.memberRepo.FindByID(ctx, id)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	leases, err := s.leaseRepo.FindByTenant(ctx, membership.TenantRef{Type: membership.TenantTypeMember, ID: member.ID})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	asOf := s.now()
	active := member.ActiveLeases(leases, asOf)
	summary := &MemberSummary{
		Member:             member,
		ActiveLeases:       active,
		CurrentSpaces:      []membership.Space{},
		MembershipDues:     member.MembershipMonthlyDues(),
		StudioStorageTotal: member.StudioStorageTotal(leases, asOf),
		TotalMonthlySpend:  member.TotalMonthlySpend(leases, asOf),
		AsOf:               asOf,
	}

	spaces := make(map[uuid.UUID]membership.Space, len(active))
	for _, l := range active {
		if l.Space != nil {
			spaces[l.SpaceID] = *l.Space
		}
	}
	for _, spaceID := range member.CurrentSpaceIDs(leases, asOf) {
		if sp, ok := spaces[spaceID]; ok {
			summary.CurrentSpaces = append(summary.CurrentSpaces, sp)
		}
	}
	return summary, nil
}

// Directory lists every member with the count and rent of leases active today
func (s *MemberService) Directory(ctx context.Context) ([]membership.MemberLeaseTotals, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "membership", "member_directory")
	defer span.End()

	rows, err := s.memberRepo.WithLeaseTotals(ctx, s.now())
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	telemetry.SetAttributes(span, "members", len(rows))
	return rows, nil
}
