package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArowuTest/safeplate-admin-backend/internal/middleware"
	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// CouponHandler handles coupon queries and issuance
type CouponHandler struct {
	couponService *services.CouponService
	issuer        *services.RewardIssuer
}

// NewCouponHandler creates a new CouponHandler
func NewCouponHandler(couponService *services.CouponService, issuer *services.RewardIssuer) *CouponHandler {
	return &CouponHandler{
		couponService: couponService,
		issuer:        issuer,
	}
}

// GetUserCoupons handles GET /coupons?userId=&activeOnly=
func (h *CouponHandler) GetUserCoupons(c *gin.Context) {
	activeOnly, err := strconv.ParseBool(c.DefaultQuery("activeOnly", "false"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "activeOnly must be true or false"})
		return
	}
	coupons, err := h.couponService.GetUserCoupons(c.Request.Context(), c.Query("userId"), activeOnly)
	if err != nil {
		respondError(c, err, "Failed to get coupons")
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

// IssueCoupons handles POST /coupons
func (h *CouponHandler) IssueCoupons(c *gin.Context) {
	var request struct {
		Audience audienceRequest       `json:"audience"`
		Template models.CouponTemplate `json:"template"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.issuer.Issue(c.Request.Context(), request.Template, request.Audience.spec(), middleware.ActorID(c))
	var issuanceErr *services.IssuanceError
	if errors.As(err, &issuanceErr) {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Coupon issuance stopped: " + issuanceErr.Err.Error(),
			"batchId":   issuanceErr.BatchID,
			"persisted": issuanceErr.Persisted,
			"targeted":  issuanceErr.Targeted,
		})
		return
	}
	if err != nil {
		respondError(c, err, "Failed to issue coupons")
		return
	}
	c.JSON(http.StatusCreated, result)
}
