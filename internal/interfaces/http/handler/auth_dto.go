package handler

import (
	"time"

	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/application/identity"
	"github.com/plfog/backoffice/internal/infrastructure/auth"
)

type LoginRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Password string `json:"password" binding:"required,max=128"`
}

type sessionToken struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
	TokenType   string    `json:"token_type"`
}

type sessionUser struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	Permissions []string  `json:"permissions"`
}

// LoginResponse carries the bearer token and the account it was issued to
type LoginResponse struct {
	Token sessionToken `json:"token"`
	User  sessionUser  `json:"user"`
}

func loginResponse(r *identity.LoginResult) LoginResponse {
	u := r.User
	return LoginResponse{
		Token: sessionToken{AccessToken: r.AccessToken, ExpiresAt: r.ExpiresAt, TokenType: r.TokenType},
		User: sessionUser{
			ID: u.ID, Username: u.Username, DisplayName: u.DisplayName, Email: u.Email,
			IsStaff: u.IsStaff, IsSuperuser: u.IsSuperuser, Permissions: u.Permissions,
		},
	}
}

// CurrentUserResponse is what the presented token says about the caller
type CurrentUserResponse struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	IsStaff     bool      `json:"is_staff"`
	IsSuperuser bool      `json:"is_superuser"`
	Permissions []string  `json:"permissions"`
	ExpiresAt   time.Time `json:"expires_at"`
}

func currentUser(c *auth.Claims) CurrentUserResponse {
	resp := CurrentUserResponse{
		ID: c.UserID, Username: c.Username,
		IsStaff: c.IsStaff, IsSuperuser: c.IsSuperuser, Permissions: c.Permissions,
	}
	if c.ExpiresAt != nil {
		resp.ExpiresAt = c.ExpiresAt.Time
	}
	return resp
}
