package handler

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/application/core"
)

// PushHandler registers browsers for Web Push notifications
type PushHandler struct {
	BaseHandler
	pushService *core.PushService
}

// NewPushHandler creates a new push handler
func NewPushHandler(pushService *core.PushService) *PushHandler {
	return &PushHandler{pushService: pushService}
}

// SubscribeRequest is the browser's PushSubscription, flattened
type SubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	P256dh   string `json:"p256dh"`
	Auth     string `json:"auth"`
}

// UnsubscribeRequest names the endpoint to forget
type UnsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
}

// VAPIDKey handles GET /api/v1/push/vapid-key
func (h *PushHandler) VAPIDKey(c *gin.Context) {
	h.Success(c, gin.H{"vapid_public_key": h.pushService.VAPIDPublicKey()})
}

// Subscribe handles POST /api/v1/push/subscribe
func (h *PushHandler) Subscribe(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Endpoint) == "" || req.P256dh == "" || req.Auth == "" {
		h.BadRequest(c, "Missing required fields")
		return
	}
	if _, err := h.pushService.Subscribe(c.Request.Context(), userID, req.Endpoint, req.P256dh, req.Auth); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}

// Unsubscribe handles POST /api/v1/push/unsubscribe. Unknown endpoints are
// ignored.
func (h *PushHandler) Unsubscribe(c *gin.Context) {
	userID, ok := h.requireUser(c)
	if !ok {
		return
	}
	var req UnsubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid JSON")
		return
	}
	if strings.TrimSpace(req.Endpoint) == "" {
		h.BadRequest(c, "Missing endpoint")
		return
	}
	if err := h.pushService.Unsubscribe(c.Request.Context(), userID, req.Endpoint); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, nil)
}
