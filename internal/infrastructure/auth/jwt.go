package auth

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/plfog/backoffice/internal/infrastructure/config"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrTokenNotYetValid = errors.New("token is not yet valid")
	ErrTokenRevoked     = errors.New("token has been revoked")
)

// Claims is the access token payload. Permissions holds the member's
// effective "action_model" codenames at login time.
type Claims struct {
	jwt.RegisteredClaims
	UserID      string   `json:"user_id"`
	Username    string   `json:"username"`
	IsStaff     bool     `json:"is_staff,omitempty"`
	IsSuperuser bool     `json:"is_superuser,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
}

// Subject is the account a token is issued for
type Subject struct {
	UserID      uuid.UUID
	Username    string
	IsStaff     bool
	IsSuperuser bool
	Permissions []string
}

// Token is a signed access token
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
	TokenType   string
}

// JWTService issues and parses HS256 access tokens
type JWTService struct {
	secret []byte
	ttl    time.Duration
	issuer string
	now    func() time.Time
}

func NewJWTService(cfg config.JWTConfig) *JWTService {
	return &JWTService{
		secret: []byte(cfg.Secret),
		ttl:    cfg.AccessTokenExpiration,
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

// Issue signs a token for sub with a fresh jti
func (s *JWTService) Issue(sub Subject) (*Token, error) {
	issued := s.now()
	expires := issued.Add(s.ttl)

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   sub.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(expires),
			NotBefore: jwt.NewNumericDate(issued),
			IssuedAt:  jwt.NewNumericDate(issued),
		},
		UserID:      sub.UserID.String(),
		Username:    sub.Username,
		IsStaff:     sub.IsStaff,
		IsSuperuser: sub.IsSuperuser,
		Permissions: sub.Permissions,
	}).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{AccessToken: signed, ExpiresAt: expires, TokenType: "Bearer"}, nil
}

// Parse verifies raw and returns its claims. Every failure wraps one of
// the Err*Token errors above.
func (s *JWTService) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenNotValidYet):
		return nil, ErrTokenNotYetValid
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, fmt.Errorf("%w: bad user_id %q", ErrInvalidToken, claims.UserID)
	}
	return claims, nil
}

// HasPermission reports whether the token grants codename. Superusers hold
// every permission.
func (c *Claims) HasPermission(codename string) bool {
	return c.IsSuperuser || slices.Contains(c.Permissions, codename)
}

// TTL is the time left before the token expires, never negative
func (c *Claims) TTL() time.Duration {
	if c.ExpiresAt == nil {
		return 0
	}
	return max(time.Until(c.ExpiresAt.Time), 0)
}
