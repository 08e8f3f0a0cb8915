package handlers

import (
	"net/http"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// NotificationHandler handles ad-hoc notifications
type NotificationHandler struct {
	notificationService *services.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

// Broadcast handles POST /notifications
func (h *NotificationHandler) Broadcast(c *gin.Context) {
	var request struct {
		Audience audienceRequest   `json:"audience"`
		Title    string            `json:"title" binding:"required"`
		Body     string            `json:"body" binding:"required"`
		Data     map[string]string `json:"data"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}

	result, err := h.notificationService.Broadcast(c.Request.Context(), request.Audience.spec(), models.Message{
		Title: request.Title,
		Body:  request.Body,
		Data:  request.Data,
	})
	if err != nil {
		respondError(c, err, "Failed to send notification")
		return
	}
	c.JSON(http.StatusOK, result)
}
