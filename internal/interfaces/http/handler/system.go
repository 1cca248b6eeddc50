package handler

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/plfog/backoffice/internal/infrastructure/persistence"
	"github.com/plfog/backoffice/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// DatabaseCheck is satisfied by *persistence.Database
type DatabaseCheck interface {
	Check(ctx context.Context) (persistence.PoolStats, error)
}

// SystemHandler serves health, readiness, build info and the service
// worker script
type SystemHandler struct {
	BaseHandler
	serviceWorkerPath string
	db                DatabaseCheck
	startTime         time.Time
}

// NewSystemHandler creates a new SystemHandler. serviceWorkerPath is the
// file served at /sw.js; db may be nil, in which case /ready only reports
// that the process is up.
func NewSystemHandler(serviceWorkerPath string, db DatabaseCheck) *SystemHandler {
	return &SystemHandler{
		serviceWorkerPath: serviceWorkerPath,
		db:                db,
		startTime:         time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health handles GET /health. The body is not wrapped in a Response.
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles GET /ready: 503 until the database answers within two
// seconds
func (h *SystemHandler) Ready(c *gin.Context) {
	if h.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	stats, err := h.db.Check(ctx)
	if err != nil {
		middlewareLogger(c).Warn("Readiness check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "database": stats})
}

// GetSystemInfo handles GET /api/v1/system/info
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(SystemInfoResponse{
		Name:      "plfog back office",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}))
}

// ServiceWorker handles GET /sw.js with a root scope so the worker can
// control every page
func (h *SystemHandler) ServiceWorker(c *gin.Context) {
	body, err := os.ReadFile(h.serviceWorkerPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			c.String(http.StatusNotFound, "Service worker not found")
			return
		}
		middlewareLogger(c).Error("Failed to read service worker", zap.String("path", h.serviceWorkerPath), zap.Error(err))
		c.String(http.StatusInternalServerError, "Service worker unavailable")
		return
	}
	c.Header("Service-Worker-Allowed", "/")
	c.Header("Cache-Control", "no-cache")
	c.Data(http.StatusOK, "application/javascript", body)
}
