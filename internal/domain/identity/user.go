package identity

import (
	"regexp"
	"strings"

	"github.com/plfog/backoffice/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_\-.@+]+$`)

// User is an account that can sign in to the back office.
// Members, students and orderers all reference users.
type User struct {
	shared.BaseEntity
	Username     string  `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
	Email        string  `gorm:"type:varchar(254);index" json:"email"`
	FirstName    string  `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string  `gorm:"type:varchar(150)" json:"last_name"`
	PasswordHash string  `gorm:"type:varchar(255)" json:"-"`
	IsStaff      bool    `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool    `gorm:"not null;default:false" json:"is_superuser"`
	IsActive     bool    `gorm:"not null" json:"is_active"`
	Groups       []Group `gorm:"many2many:user_groups;" json:"groups,omitempty"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates an active user. The password may be empty for accounts
// that never sign in directly (imported members, for instance).
func NewUser(username, email, firstName, lastName string) (*User, error) {
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	return &User{
		BaseEntity: shared.NewBaseEntity(),
		Username:   username,
		Email:      strings.TrimSpace(email),
		FirstName:  firstName,
		LastName:   lastName,
		IsActive:   true,
	}, nil
}

// FullName returns "First Last" with surrounding space removed
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// DisplayName returns the full name, falling back to the username
func (u *User) DisplayName() string {
	if name := u.FullName(); name != "" {
		return name
	}
	return u.Username
}

// String renders the user the way listings show it
func (u *User) String() string {
	return u.Username
}

// SetPassword hashes and stores a new password
func (u *User) SetPassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	u.Touch()
	return nil
}

// CheckPassword reports whether password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// CanLogin reports whether the account may authenticate
func (u *User) CanLogin() bool {
	return u.IsActive && u.PasswordHash != ""
}

// PromoteToSuperuser grants staff and superuser flags
func (u *User) PromoteToSuperuser() {
	u.IsStaff = true
	u.IsSuperuser = true
	u.Touch()
}

func validateUsername(username string) error {
	if username == "" {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot be empty")
	}
	if len(username) > 150 {
		return shared.NewDomainError("INVALID_USERNAME", "Username cannot exceed 150 characters")
	}
	if !usernameRegex.MatchString(username) {
		return shared.NewDomainError("INVALID_USERNAME", "Username can only contain letters, numbers and @/./+/-/_")
	}
	return nil
}
