package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/application/identity"
	"github.com/plfog/backoffice/internal/interfaces/http/middleware"
)

// AuthHandler serves /auth: login, logout and the current session
type AuthHandler struct {
	BaseHandler
	sessions *identity.AuthService
}

func NewAuthHandler(sessions *identity.AuthService) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

// Login exchanges a username and password for a bearer token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.bindError(c, err)
		return
	}
	result, err := h.sessions.Login(c.Request.Context(), identity.LoginInput{Username: req.Username, Password: req.Password})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, loginResponse(result))
}

// Logout revokes the presented token until it expires
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	if err := h.sessions.Logout(c.Request.Context(), claims); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}

func (h *AuthHandler) Me(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	h.Success(c, currentUser(claims))
}
