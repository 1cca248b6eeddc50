package identity

import (
	"context"
	"errors"

	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"github.com/plfog/backoffice/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService logs members in and out
type AuthService struct {
	userRepo identity.UserRepository
	permRepo identity.PermissionRepository
	tokens   *auth.JWTService
	revoked  auth.Revocations
	logger   *zap.Logger
}

func NewAuthService(
	userRepo identity.UserRepository,
	permRepo identity.PermissionRepository,
	tokens *auth.JWTService,
	revoked auth.Revocations,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		permRepo: permRepo,
		tokens:   tokens,
		revoked:  revoked,
		logger:   logger,
	}
}

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// Login verifies the password and issues a token carrying the user's
// effective permission codenames
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt", zap.String("username", input.Username))

	user, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Error("Failed to load user during login", zap.Error(err))
			return nil, err
		}
		s.logger.Warn("User not found during login", zap.String("username", input.Username))
		return nil, errInvalidCredentials
	}

	if !user.IsActive {
		s.logger.Warn("Login attempt for inactive account", zap.String("username", input.Username))
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	if !user.CheckPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("username", input.Username))
		return nil, errInvalidCredentials
	}

	permissions, err := s.EffectivePermissions(ctx, user)
	if err != nil {
		s.logger.Error("Failed to collect user permissions", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user permissions")
	}

	token, err := s.tokens.Issue(auth.Subject{
		UserID:      user.ID,
		Username:    user.Username,
		IsStaff:     user.IsStaff,
		IsSuperuser: user.IsSuperuser,
		Permissions: permissions,
	})
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	s.logger.Info("User logged in successfully",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	return &LoginResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		User:        userInfo(user, permissions),
	}, nil
}

// EffectivePermissions is the union of the user's group permissions, or
// the whole catalogue for a superuser. Groups must be preloaded.
func (s *AuthService) EffectivePermissions(ctx context.Context, user *identity.User) ([]string, error) {
	var all []identity.Permission
	if user.IsSuperuser {
		var err error
		all, err = s.permRepo.FindAll(ctx)
		if err != nil {
			return nil, err
		}
	}
	return identity.EffectiveCodenames(user, all), nil
}

// Logout revokes the token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.revoked.Revoke(ctx, claims.ID, claims.TTL()); err != nil {
		s.logger.Error("Failed to revoke token", zap.String("user_id", claims.UserID), zap.Error(err))
		return err
	}
	s.logger.Info("User logged out", zap.String("user_id", claims.UserID))
	return nil
}
