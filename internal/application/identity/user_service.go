package identity

import (
	"context"
	"errors"

	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService manages accounts
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

// Create registers an account with a password, optionally as superuser
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*identity.User, error) {
	existing, err := s.userRepo.FindByUsername(ctx, input.Username)
	if err == nil && existing != nil {
		return nil, shared.NewDomainError("USERNAME_EXISTS", "A user with that username already exists")
	}
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err := identity.NewUser(input.Username, input.Email, input.FirstName, input.LastName)
	if err != nil {
		return nil, err
	}
	if err := user.SetPassword(input.Password); err != nil {
		return nil, err
	}
	if input.Superuser {
		user.PromoteToSuperuser()
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to create user", zap.String("username", input.Username), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("username", user.Username),
		zap.Bool("superuser", user.IsSuperuser))
	return user, nil
}
