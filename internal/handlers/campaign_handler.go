package handlers

import (
	"net/http"

	"github.com/ArowuTest/safeplate-admin-backend/internal/middleware"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CampaignHandler handles campaign requests
type CampaignHandler struct {
	campaignService *services.CampaignService
	activator       *services.CampaignActivator
}

// NewCampaignHandler creates a new CampaignHandler
func NewCampaignHandler(campaignService *services.CampaignService, activator *services.CampaignActivator) *CampaignHandler {
	return &CampaignHandler{
		campaignService: campaignService,
		activator:       activator,
	}
}

// GetCampaigns handles GET /campaigns
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	page, limit := pagination(c)
	campaigns, total, err := h.campaignService.GetCampaigns(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err, "Failed to get campaigns")
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns, "total": total, "page": page, "limit": limit})
}

// GetCampaign handles GET /campaigns/:id
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get campaign")
		return
	}
	c.JSON(http.StatusOK, campaign)
}

// CreateCampaign handles POST /campaigns
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var input services.CampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	campaign, err := h.campaignService.CreateCampaign(c.Request.Context(), input, middleware.ActorID(c))
	if err != nil {
		respondError(c, err, "Failed to create campaign")
		return
	}
	c.JSON(http.StatusCreated, campaign)
}

// SetStatus handles PUT /campaigns/:id/status
func (h *CampaignHandler) SetStatus(c *gin.Context) {
	var request struct {
		IsActive *bool `json:"isActive" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.activator.SetActive(c.Request.Context(), c.Param("id"), *request.IsActive, middleware.ActorID(c))
	if err != nil {
		respondError(c, err, "Failed to update campaign status")
		return
	}
	c.JSON(http.StatusOK, result)
}
