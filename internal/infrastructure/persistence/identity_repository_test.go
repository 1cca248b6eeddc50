package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormUserRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormUserRepository(db)

	alice := mustUser(t, db, "Alice")
	bob := mustUser(t, db, "bob")

	t.Run("find by username ignores case", func(t *testing.T) {
		u, err := repo.FindByUsername(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, alice.ID, u.ID)
	})

	t.Run("missing user maps to ErrNotFound", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("find by ids skips unknown", func(t *testing.T) {
		users, err := repo.FindByIDs(ctx, []uuid.UUID{alice.ID, bob.ID, uuid.New()})
		require.NoError(t, err)
		assert.Len(t, users, 2)

		none, err := repo.FindByIDs(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("password round trip", func(t *testing.T) {
		require.NoError(t, bob.SetPassword("s3cret"))
		require.NoError(t, repo.Save(ctx, bob))
		u, err := repo.FindByID(ctx, bob.ID)
		require.NoError(t, err)
		assert.True(t, u.CheckPassword("s3cret"))
	})

	t.Run("delete non superusers keeps admins", func(t *testing.T) {
		admin := mustUser(t, db, "admin")
		admin.PromoteToSuperuser()
		require.NoError(t, repo.Save(ctx, admin))

		n, err := repo.DeleteNonSuperusers(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		_, err = repo.FindByID(ctx, admin.ID)
		assert.NoError(t, err)
		_, err = repo.FindByID(ctx, alice.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormPermissionRepository_Ensure(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewGormPermissionRepository(db)

	created, err := repo.Ensure(ctx, []*identity.Permission{
		identity.NewPermission(identity.ActionView, "Lease", "lease"),
		identity.NewPermission(identity.ActionChange, "Lease", "lease"),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	created, err = repo.Ensure(ctx, []*identity.Permission{
		identity.NewPermission(identity.ActionView, "Lease", "lease"),
		identity.NewPermission(identity.ActionDelete, "Lease", "lease"),
		identity.NewPermission(identity.ActionDelete, "Lease", "lease"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "change_lease", all[0].Codename)

	some, err := repo.FindByCodenames(ctx, []string{"view_lease", "view_nothing"})
	require.NoError(t, err)
	assert.Len(t, some, 1)
}

func TestGormGroupRepository(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	groups := NewGormGroupRepository(db)
	perms := NewGormPermissionRepository(db)

	_, err := perms.Ensure(ctx, []*identity.Permission{
		identity.NewPermission(identity.ActionView, "Member", "member"),
		identity.NewPermission(identity.ActionAdd, "Member", "member"),
		identity.NewPermission(identity.ActionView, "Space", "space"),
	})
	require.NoError(t, err)

	g, err := identity.NewGroup("Guild Manager")
	require.NoError(t, err)
	require.NoError(t, groups.Save(ctx, g))

	first, err := perms.FindByCodenames(ctx, []string{"view_member", "add_member"})
	require.NoError(t, err)
	require.NoError(t, groups.ReplacePermissions(ctx, g, first))

	second, err := perms.FindByCodenames(ctx, []string{"view_space"})
	require.NoError(t, err)
	require.NoError(t, groups.ReplacePermissions(ctx, g, second))

	loaded, err := groups.FindByName(ctx, "Guild Manager")
	require.NoError(t, err)
	assert.Equal(t, []string{"view_space"}, loaded.Codenames())

	u := mustUser(t, db, "lead")
	require.NoError(t, groups.AddUser(ctx, g, u))
	require.NoError(t, groups.AddUser(ctx, g, u))

	withGroups, err := NewGormUserRepository(db).FindByUsername(ctx, "lead")
	require.NoError(t, err)
	require.Len(t, withGroups.Groups, 1)
	assert.Equal(t, []string{"view_space"}, identity.EffectiveCodenames(withGroups, nil))

	_, err = groups.FindByName(ctx, "Nobody")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
