package middleware

import (
	"errors"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/infrastructure/auth"
	"github.com/plfog/backoffice/internal/infrastructure/logger"
	"github.com/plfog/backoffice/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Gin keys set for authenticated requests. JWTUserIDKey is also what the
// request logger reads.
const (
	JWTClaimsKey   = "jwt_claims"
	JWTUserIDKey   = "user_id"
	JWTUsernameKey = "username"

	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// AuthConfig configures Authenticate
type AuthConfig struct {
	Tokens *auth.JWTService
	// Revoked is optional. A lookup error lets the token through.
	Revoked auth.Revocations
	// Public paths are served without a token
	Public []string
	Logger *zap.Logger
}

// Authenticate requires a valid bearer token on every path not listed in
// cfg.Public and stores its claims on the context.
func Authenticate(cfg AuthConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		if slices.Contains(cfg.Public, c.Request.URL.Path) {
			c.Next()
			return
		}

		raw, ok := bearerToken(c)
		if !ok {
			rejectToken(c, log, auth.ErrInvalidToken)
			return
		}
		claims, err := cfg.Tokens.Parse(raw)
		if err != nil {
			rejectToken(c, log, err)
			return
		}

		if cfg.Revoked != nil {
			revoked, err := cfg.Revoked.IsRevoked(c.Request.Context(), claims.ID)
			switch {
			case err != nil:
				log.Error("Revocation lookup failed", zap.String("jti", claims.ID), zap.Error(err))
			case revoked:
				rejectToken(c, log, auth.ErrTokenRevoked)
				return
			}
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(JWTUserIDKey, claims.UserID)
		c.Set(JWTUsernameKey, claims.Username)
		c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	raw, ok := strings.CutPrefix(c.GetHeader(AuthHeaderKey), BearerPrefix)
	raw = strings.TrimSpace(raw)
	return raw, ok && raw != ""
}

func rejectToken(c *gin.Context, log *zap.Logger, err error) {
	code, msg := dto.ErrCodeUnauthorized, "Authentication required"
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		code, msg = dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		code, msg = dto.ErrCodeTokenInvalid, "Token has been revoked"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		code, msg = dto.ErrCodeTokenInvalid, "Token is not yet valid"
	}
	log.Debug("Rejected bearer token", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, msg, GetRequestID(c)))
}

// GetJWTClaims returns the claims Authenticate stored, or nil
func GetJWTClaims(c *gin.Context) *auth.Claims {
	claims, _ := c.Value(JWTClaimsKey).(*auth.Claims)
	return claims
}

func GetJWTUserID(c *gin.Context) string {
	return c.GetString(JWTUserIDKey)
}

func GetJWTUsername(c *gin.Context) string {
	return c.GetString(JWTUsernameKey)
}
