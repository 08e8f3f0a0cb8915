// Package handlers contains the gin handlers of the admin API. Handlers only
// bind input, call one service and map the typed errors to HTTP statuses.
package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 200
)

// statusFor maps service errors to HTTP statuses
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidArgument),
		errors.Is(err, services.ErrInvalidTemplate),
		errors.Is(err, services.ErrInvalidExpiry),
		errors.Is(err, services.ErrInvalidTransition):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrVenueNotFound),
		errors.Is(err, services.ErrRequestNotFound),
		errors.Is(err, services.ErrCampaignNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyResolved):
		return http.StatusConflict
	case errors.Is(err, services.ErrEmptyAudience):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		log.WithError(err).WithField("path", c.FullPath()).Error(action + " failed")
	}
	c.JSON(status, gin.H{"error": action + ": " + err.Error()})
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// pagination reads page and limit query parameters with defaults and bounds
func pagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(defaultPage)))
	if err != nil || page < 1 {
		page = defaultPage
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit < 1 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// audienceRequest is the JSON form of an audience
type audienceRequest struct {
	Kind    string   `json:"kind" binding:"required,oneof=single explicit segment"`
	UserID  string   `json:"userId"`
	UserIDs []string `json:"userIds"`
	Segment string   `json:"segment"`
}

func (a audienceRequest) spec() models.AudienceSpec {
	switch a.Kind {
	case "single":
		return models.SingleUser(a.UserID)
	case "explicit":
		return models.ExplicitUsers(a.UserIDs...)
	}
	return models.SegmentAudience(models.Segment(a.Segment))
}

// statusRequest moves a review request
type statusRequest struct {
	Status string  `json:"status" binding:"required"`
	Note   *string `json:"note"`
}

func reviewStatusQuery(c *gin.Context) (models.ReviewStatus, error) {
	raw := c.Query("status")
	if raw == "" {
		return "", nil
	}
	return models.ParseReviewStatus(raw)
}
