package handlers

import (
	"net/http"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/middleware"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// VenueHandler handles venue administration requests
type VenueHandler struct {
	venueService *services.VenueService
}

// NewVenueHandler creates a new VenueHandler
func NewVenueHandler(venueService *services.VenueService) *VenueHandler {
	return &VenueHandler{venueService: venueService}
}

// GetVenues handles GET /venues?difficulty=
func (h *VenueHandler) GetVenues(c *gin.Context) {
	page, limit := pagination(c)
	venues, total, err := h.venueService.GetVenues(c.Request.Context(), c.Query("difficulty"), page, limit)
	if err != nil {
		respondError(c, err, "Failed to get venues")
		return
	}
	c.JSON(http.StatusOK, gin.H{"venues": venues, "total": total, "page": page, "limit": limit})
}

// SetDifficulty handles PUT /venues/:id/difficulty
func (h *VenueHandler) SetDifficulty(c *gin.Context) {
	var request struct {
		DifficultyLevel string `json:"difficultyLevel" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.venueService.SetDifficulty(c.Request.Context(), c.Param("id"), request.DifficultyLevel, middleware.ActorID(c)); err != nil {
		respondError(c, err, "Failed to update difficulty")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Difficulty level updated"})
}

// SetCertification handles PUT /venues/:id/certification
func (h *VenueHandler) SetCertification(c *gin.Context) {
	var request struct {
		CertificationStatus string `json:"certificationStatus" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.venueService.SetCertification(c.Request.Context(), c.Param("id"), request.CertificationStatus, middleware.ActorID(c)); err != nil {
		respondError(c, err, "Failed to update certification")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Certification status updated"})
}

// RecordInspection handles PUT /venues/:id/inspection
func (h *VenueHandler) RecordInspection(c *gin.Context) {
	var request struct {
		Date   time.Time `json:"date" binding:"required"`
		Status string    `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.venueService.RecordInspection(c.Request.Context(), c.Param("id"), request.Date, request.Status, middleware.ActorID(c)); err != nil {
		respondError(c, err, "Failed to record inspection")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Inspection recorded"})
}

// SetBoost handles PUT /venues/:id/boost
func (h *VenueHandler) SetBoost(c *gin.Context) {
	var request struct {
		Boosted *bool `json:"boosted" binding:"required"`
		Days    int   `json:"days"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	expiresAt, err := h.venueService.SetBoost(c.Request.Context(), c.Param("id"), *request.Boosted, request.Days, middleware.ActorID(c))
	if err != nil {
		respondError(c, err, "Failed to update boost")
		return
	}
	c.JSON(http.StatusOK, gin.H{"boosted": *request.Boosted, "boostExpiresAt": expiresAt})
}
