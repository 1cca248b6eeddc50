package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/auth"
	"github.com/plfog/backoffice/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestAuthService() (*AuthService, *MockUserRepository, *MockPermissionRepository, *auth.MemoryRevocations) {
	userRepo := new(MockUserRepository)
	permRepo := new(MockPermissionRepository)
	revoked := auth.NewMemoryRevocations()
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-at-least-32-chars",
		AccessTokenExpiration: time.Hour,
		Issuer:                "plfog-test",
	})
	return NewAuthService(userRepo, permRepo, jwtService, revoked, zap.NewNop()), userRepo, permRepo, revoked
}

func newTestUser(t *testing.T, password string) *identity.User {
	t.Helper()
	u, err := identity.NewUser("ada", "ada@example.com", "Ada", "Lovelace")
	require.NoError(t, err)
	require.NoError(t, u.SetPassword(password))
	return u
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("issues token with group permissions", func(t *testing.T) {
		svc, userRepo, permRepo, _ := newTestAuthService()
		user := newTestUser(t, "s3cret!")
		user.Groups = []identity.Group{{
			Name: "tour-guide",
			Permissions: []identity.Permission{
				{Codename: "view_tour"}, {Codename: "view_lead"},
			},
		}}
		userRepo.On("FindByUsername", ctx, "ada").Return(user, nil)

		result, err := svc.Login(ctx, LoginInput{Username: "ada", Password: "s3cret!"})
		require.NoError(t, err)
		assert.NotEmpty(t, result.AccessToken)
		assert.Equal(t, "Bearer", result.TokenType)
		assert.Equal(t, "Ada Lovelace", result.User.DisplayName)
		assert.Equal(t, []string{"view_lead", "view_tour"}, result.User.Permissions)
		permRepo.AssertNotCalled(t, "FindAll", mock.Anything)
	})

	t.Run("superuser receives the catalogue", func(t *testing.T) {
		svc, userRepo, permRepo, _ := newTestAuthService()
		user := newTestUser(t, "pw")
		user.PromoteToSuperuser()
		userRepo.On("FindByUsername", ctx, "ada").Return(user, nil)
		permRepo.On("FindAll", ctx).Return([]identity.Permission{{Codename: "view_member"}, {Codename: "add_member"}}, nil)

		result, err := svc.Login(ctx, LoginInput{Username: "ada", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, []string{"add_member", "view_member"}, result.User.Permissions)
		assert.True(t, result.User.IsSuperuser)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, userRepo, _, _ := newTestAuthService()
		userRepo.On("FindByUsername", ctx, "ghost").Return(nil, shared.ErrNotFound)

		_, err := svc.Login(ctx, LoginInput{Username: "ghost", Password: "x"})
		require.Error(t, err)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_CREDENTIALS", de.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, userRepo, _, _ := newTestAuthService()
		userRepo.On("FindByUsername", ctx, "ada").Return(newTestUser(t, "right"), nil)

		_, err := svc.Login(ctx, LoginInput{Username: "ada", Password: "wrong"})
		assert.ErrorIs(t, err, errInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		svc, userRepo, _, _ := newTestAuthService()
		user := newTestUser(t, "pw")
		user.IsActive = false
		userRepo.On("FindByUsername", ctx, "ada").Return(user, nil)

		_, err := svc.Login(ctx, LoginInput{Username: "ada", Password: "pw"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not active")
	})

	t.Run("repository failure is passed through", func(t *testing.T) {
		svc, userRepo, _, _ := newTestAuthService()
		boom := errors.New("db down")
		userRepo.On("FindByUsername", ctx, "ada").Return(nil, boom)

		_, err := svc.Login(ctx, LoginInput{Username: "ada", Password: "pw"})
		assert.ErrorIs(t, err, boom)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	svc, userRepo, _, revocations := newTestAuthService()
	userRepo.On("FindByUsername", ctx, "ada").Return(newTestUser(t, "pw"), nil)

	result, err := svc.Login(ctx, LoginInput{Username: "ada", Password: "pw"})
	require.NoError(t, err)

	claims, err := svc.tokens.Parse(result.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims))

	revoked, err := revocations.IsRevoked(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}
