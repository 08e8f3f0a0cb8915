package handlers

import (
	"net/http"

	"github.com/ArowuTest/safeplate-admin-backend/internal/middleware"
	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// ReviewHandler handles the referral and certification review queues
type ReviewHandler struct {
	referrals      *services.ReferralReviewer
	certifications *services.CertificationReviewer
}

// NewReviewHandler creates a new ReviewHandler
func NewReviewHandler(referrals *services.ReferralReviewer, certifications *services.CertificationReviewer) *ReviewHandler {
	return &ReviewHandler{
		referrals:      referrals,
		certifications: certifications,
	}
}

// ListReferrals handles GET /referrals?status=
func (h *ReviewHandler) ListReferrals(c *gin.Context) {
	status, err := reviewStatusQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	page, limit := pagination(c)
	referrals, err := h.referrals.ListReferrals(c.Request.Context(), status, page, limit)
	if err != nil {
		respondError(c, err, "Failed to get referrals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"referrals": referrals, "page": page, "limit": limit})
}

// UpdateReferralStatus handles PUT /referrals/:id/status
func (h *ReviewHandler) UpdateReferralStatus(c *gin.Context) {
	var request statusRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	result, err := h.referrals.Transition(c.Request.Context(), c.Param("id"), models.ReviewStatus(request.Status), request.Note, middleware.ActorID(c))
	if err != nil {
		respondError(c, err, "Failed to update referral")
		return
	}
	c.JSON(http.StatusOK, result)
}

// ListCertificationRequests handles GET /certification-requests?status=
func (h *ReviewHandler) ListCertificationRequests(c *gin.Context) {
	status, err := reviewStatusQuery(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	page, limit := pagination(c)
	requests, err := h.certifications.ListRequests(c.Request.Context(), status, page, limit)
	if err != nil {
		respondError(c, err, "Failed to get certification requests")
		return
	}
	c.JSON(http.StatusOK, gin.H{"requests": requests, "page": page, "limit": limit})
}

// UpdateCertificationStatus handles PUT /certification-requests/:id/status.
// With certifyVenue set, an approval also certifies the venue.
func (h *ReviewHandler) UpdateCertificationStatus(c *gin.Context) {
	var request struct {
		statusRequest
		CertifyVenue bool `json:"certifyVenue"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	actorID := middleware.ActorID(c)
	target := models.ReviewStatus(request.Status)
	result, err := h.certifications.Transition(c.Request.Context(), c.Param("id"), target, request.Note, actorID)
	if err != nil {
		respondError(c, err, "Failed to update certification request")
		return
	}

	certified := false
	if request.CertifyVenue && target == models.ReviewApproved {
		if err := h.certifications.CertifyVenue(c.Request.Context(), result.VenueID, actorID); err != nil {
			respondError(c, err, "Request approved but venue certification failed")
			return
		}
		certified = true
	}
	c.JSON(http.StatusOK, gin.H{"result": result, "venueCertified": certified})
}
