package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/middleware"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// SystemSettingsHandler handles the maintenance switch and health checks
type SystemSettingsHandler struct {
	settingsService *services.SettingsService
	ping            func(ctx context.Context) error
}

// NewSystemSettingsHandler creates a new SystemSettingsHandler. ping checks
// the storage backend and may be nil.
func NewSystemSettingsHandler(settingsService *services.SettingsService, ping func(ctx context.Context) error) *SystemSettingsHandler {
	return &SystemSettingsHandler{
		settingsService: settingsService,
		ping:            ping,
	}
}

// Health handles GET /health
func (h *SystemSettingsHandler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetMaintenance handles GET /maintenance
func (h *SystemSettingsHandler) GetMaintenance(c *gin.Context) {
	settings, err := h.settingsService.GetMaintenance(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to get maintenance settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// SetMaintenance handles POST /maintenance
func (h *SystemSettingsHandler) SetMaintenance(c *gin.Context) {
	var request struct {
		Enabled *bool  `json:"enabled" binding:"required"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	settings, err := h.settingsService.SetMaintenance(c.Request.Context(), *request.Enabled, request.Message, middleware.ActorID(c))
	if err != nil {
		respondError(c, err, "Failed to update maintenance settings")
		return
	}
	c.JSON(http.StatusOK, settings)
}
