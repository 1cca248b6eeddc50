package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/domain/identity"
	"github.com/plfog/backoffice/internal/infrastructure/logger"
	"github.com/plfog/backoffice/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RequireStaff lets staff and superusers through
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := GetJWTClaims(c); claims == nil || !(claims.IsStaff || claims.IsSuperuser) {
			deny(c, "is_staff")
			return
		}
		c.Next()
	}
}

// RequirePermission checks a single codename such as "view_tab"
func RequirePermission(codename string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !HasPermission(c, codename) {
			deny(c, codename)
			return
		}
		c.Next()
	}
}

// RequireModelPermission checks the codename for the model named by the
// route parameter param. The action follows the HTTP method: GET view,
// POST add, PUT and PATCH change, DELETE delete.
func RequireModelPermission(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		codename := identity.Codename(MethodToAction(c.Request.Method), c.Param(param))
		if !HasPermission(c, codename) {
			deny(c, codename)
			return
		}
		c.Next()
	}
}

// MethodToAction maps an HTTP method to a permission action
func MethodToAction(method string) string {
	switch method {
	case http.MethodPost:
		return identity.ActionAdd
	case http.MethodPut, http.MethodPatch:
		return identity.ActionChange
	case http.MethodDelete:
		return identity.ActionDelete
	}
	return identity.ActionView
}

// HasPermission reports whether the authenticated user holds codename
func HasPermission(c *gin.Context, codename string) bool {
	claims := GetJWTClaims(c)
	return claims != nil && claims.HasPermission(codename)
}

func deny(c *gin.Context, required string) {
	logger.FromGin(c).Info("Permission denied",
		zap.String("user_id", GetJWTUserID(c)),
		zap.String("required", required),
	)
	c.AbortWithStatusJSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, "Access denied: insufficient permissions", GetRequestID(c)))
}
