package identity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/domain/identity"
)

// LoginInput contains the input for user login
type LoginInput struct {
	Username string
	Password string
}

// LoginResult contains the result of a successful login
type LoginResult struct {
	AccessToken string
	ExpiresAt   time.Time
	TokenType   string
	User        UserInfo
}

// UserInfo contains basic user information returned after login
type UserInfo struct {
	ID          uuid.UUID
	Username    string
	DisplayName string
	Email       string
	IsStaff     bool
	IsSuperuser bool
	Permissions []string
}

func userInfo(u *identity.User, permissions []string) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName(),
		Email:       u.Email,
		IsStaff:     u.IsStaff,
		IsSuperuser: u.IsSuperuser,
		Permissions: permissions,
	}
}

// CreateUserInput contains input for creating an account
type CreateUserInput struct {
	Username  string
	Email     string
	FirstName string
	LastName  string
	Password  string
	Superuser bool
}

// ModelRef names a model that receives the four standard permissions
type ModelRef struct {
	// Name is the Go type name, e.g. "GuildMembership"
	Name string
	// VerboseName is the human label, e.g. "guild membership"
	VerboseName string
}

// RoleResult reports what SetupRoles did to one group
type RoleResult struct {
	Name            string
	Created         bool
	PermissionCount int
}

// Message renders the result the way the setup-roles command prints it
func (r RoleResult) Message() string {
	action := "Updated"
	if r.Created {
		action = "Created"
	}
	return fmt.Sprintf("%s group '%s' with %d permissions", action, r.Name, r.PermissionCount)
}
