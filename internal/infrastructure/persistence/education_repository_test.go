package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/plfog/backoffice/internal/domain/education"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/membership"
	"github.com/plfog/backoffice/internal/domain/tools"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormClassRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormClassRepository(db)

	code, err := education.NewClassDiscountCode("SPRING10", education.DiscountTypePercentage, dec("10"))
	require.NoError(t, err)
	require.NoError(t, repo.SaveDiscountCode(ctx, code))

	teacher := mustUser(t, db, "teacher")
	class, err := education.NewMakerClass("Intro to Welding", dec("120.00"))
	require.NoError(t, err)
	class.Instructors = []identity.User{*teacher}
	class.DiscountCodes = []education.ClassDiscountCode{*code}
	require.NoError(t, repo.Save(ctx, class))

	start := time.Date(2024, 5, 4, 17, 0, 0, 0, time.UTC)
	session, err := education.NewClassSession(class.ID, start, start.Add(3*time.Hour))
	require.NoError(t, err)
	require.NoError(t, repo.SaveSession(ctx, session))

	loaded, err := repo.FindByID(ctx, class.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Instructors, 1)
	require.Len(t, loaded.DiscountCodes, 1)
	require.Len(t, loaded.Sessions, 1)
	assert.True(t, loaded.AcceptsCode(code))

	t.Run("clearing links", func(t *testing.T) {
		loaded.Instructors = nil
		require.NoError(t, repo.Save(ctx, loaded))
		again, err := repo.FindByID(ctx, class.ID)
		require.NoError(t, err)
		assert.Empty(t, again.Instructors)
		assert.Len(t, again.DiscountCodes, 1)
	})

	t.Run("discount code lookup ignores case", func(t *testing.T) {
		found, err := repo.FindDiscountCode(ctx, " spring10 ")
		require.NoError(t, err)
		assert.Equal(t, code.ID, found.ID)
	})

	t.Run("students", func(t *testing.T) {
		s, err := education.NewStudent(class.ID, "Sam Student", "sam@example.com")
		require.NoError(t, err)
		require.NoError(t, repo.SaveStudent(ctx, s))
		n, err := repo.CountStudents(ctx, class.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestGormOrientationRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormOrientationRepository(db)

	guild, err := membership.NewGuild("Metal")
	require.NoError(t, err)
	require.NoError(t, NewGormGuildRepository(db).Save(ctx, guild))

	lathe, err := tools.NewTool("Lathe", &guild.ID)
	require.NoError(t, err)
	require.NoError(t, NewGormToolRepository(db).Save(ctx, lathe))

	o, err := education.NewOrientation(guild.ID, "Lathe Basics", 60, dec("40"))
	require.NoError(t, err)
	o.Tools = []tools.Tool{*lathe}
	require.NoError(t, repo.Save(ctx, o))

	loaded, err := repo.FindByID(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Tools, 1)
	assert.Equal(t, "Lathe", loaded.Tools[0].Name)

	byName, err := repo.FindByName(ctx, guild.ID, "Lathe Basics")
	require.NoError(t, err)
	assert.Equal(t, o.ID, byName.ID)

	u := mustUser(t, db, "learner")
	booking := education.NewScheduledOrientation(o.ID, u.ID, time.Now().Add(24*time.Hour))
	require.NoError(t, repo.SaveScheduled(ctx, booking))

	orienter := mustUser(t, db, "orienter")
	require.NoError(t, booking.Claim(orienter.ID, time.Now()))
	require.NoError(t, repo.SaveScheduled(ctx, booking))

	got, err := repo.FindScheduled(ctx, booking.ID)
	require.NoError(t, err)
	assert.Equal(t, education.OrientationStatusClaimed, got.Status)
	require.NotNil(t, got.Orientation)
}
