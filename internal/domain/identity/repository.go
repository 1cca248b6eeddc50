package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	// FindByUsername preloads groups and their permissions
	FindByUsername(ctx context.Context, username string) (*User, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]User, error)
	// DeleteNonSuperusers removes every account without the superuser flag
	DeleteNonSuperusers(ctx context.Context) (int64, error)
}

// GroupRepository persists groups and their permission sets
type GroupRepository interface {
	FindByName(ctx context.Context, name string) (*Group, error)
	Save(ctx context.Context, group *Group) error
	// ReplacePermissions swaps the group's permission set for perms
	ReplacePermissions(ctx context.Context, group *Group, perms []Permission) error
	AddUser(ctx context.Context, group *Group, user *User) error
}

// PermissionRepository persists the permission catalogue
type PermissionRepository interface {
	FindAll(ctx context.Context) ([]Permission, error)
	FindByCodenames(ctx context.Context, codenames []string) ([]Permission, error)
	// Ensure creates any permission in perms whose codename does not exist yet
	// and returns how many were created.
	Ensure(ctx context.Context, perms []*Permission) (int, error)
}
