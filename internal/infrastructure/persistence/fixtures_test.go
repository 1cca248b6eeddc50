package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func mustUser(t *testing.T, db *gorm.DB, username string) *identity.User {
	t.Helper()
	u, err := identity.NewUser(username, username+"@example.com", "", "")
	require.NoError(t, err)
	require.NoError(t, NewGormUserRepository(db).Save(context.Background(), u))
	return u
}

func mustPlan(t *testing.T, db *gorm.DB, name, price string) *membership.MembershipPlan {
	t.Helper()
	p, err := membership.NewMembershipPlan(name, dec(price))
	require.NoError(t, err)
	require.NoError(t, NewGormPlanRepository(db).Save(context.Background(), p))
	return p
}

func mustMember(t *testing.T, db *gorm.DB, name string, plan *membership.MembershipPlan) *membership.Member {
	t.Helper()
	m, err := membership.NewMember(name, plan.ID)
	require.NoError(t, err)
	require.NoError(t, NewGormMemberRepository(db).Save(context.Background(), m))
	return m
}

func mustSpace(t *testing.T, db *gorm.DB, spaceID string) *membership.Space {
	t.Helper()
	s, err := membership.NewSpace(spaceID, "Studio "+spaceID, membership.SpaceTypeStudio)
	require.NoError(t, err)
	require.NoError(t, NewGormSpaceRepository(db).Save(context.Background(), s))
	return s
}

func mustLease(t *testing.T, db *gorm.DB, tenant membership.TenantRef, space *membership.Space, rent string, start time.Time, end *time.Time) *membership.Lease {
	t.Helper()
	l, err := membership.NewLease(tenant, space.ID, membership.LeaseTypeMonthToMonth, dec(rent), dec(rent), start)
	require.NoError(t, err)
	if end != nil {
		require.NoError(t, l.End(*end))
	}
	require.NoError(t, NewGormLeaseRepository(db).Save(context.Background(), l))
	return l
}
