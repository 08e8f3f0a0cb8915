package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/ArowuTest/safeplate-admin-backend/internal/middleware"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	"github.com/gin-gonic/gin"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService         *services.UserService
	notificationService *services.NotificationService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, notificationService *services.NotificationService) *UserHandler {
	return &UserHandler{
		userService:         userService,
		notificationService: notificationService,
	}
}

// GetAllUsers handles GET /users?banned=
func (h *UserHandler) GetAllUsers(c *gin.Context) {
	page, limit := pagination(c)
	var banned *bool
	if raw, ok := c.GetQuery("banned"); ok {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "banned must be true or false"})
			return
		}
		banned = &b
	}
	users, total, err := h.userService.GetAllUsers(c.Request.Context(), banned, page, limit)
	if err != nil {
		respondError(c, err, "Failed to get users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users, "total": total, "page": page, "limit": limit})
}

// GetUserByID handles GET /users/:id
func (h *UserHandler) GetUserByID(c *gin.Context) {
	user, err := h.userService.GetUserByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// BanUser handles POST /users/:id/ban
func (h *UserHandler) BanUser(c *gin.Context) {
	var request struct {
		Reason string `json:"reason"`
	}
	// the body is optional; an empty one bans with the default reason
	if err := c.ShouldBindJSON(&request); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}
	if err := h.userService.BanUser(c.Request.Context(), c.Param("id"), request.Reason, middleware.ActorID(c)); err != nil {
		respondError(c, err, "Failed to ban user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User banned successfully"})
}

// UnbanUser handles POST /users/:id/unban
func (h *UserHandler) UnbanUser(c *gin.Context) {
	if err := h.userService.UnbanUser(c.Request.Context(), c.Param("id"), middleware.ActorID(c)); err != nil {
		respondError(c, err, "Failed to unban user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User unbanned successfully"})
}

// SetPremium handles PUT /users/:id/premium
func (h *UserHandler) SetPremium(c *gin.Context) {
	var request struct {
		IsPremium *bool `json:"isPremium" binding:"required"`
		Months    int   `json:"months"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	expiresAt, err := h.userService.SetPremium(c.Request.Context(), c.Param("id"), *request.IsPremium, request.Months, middleware.ActorID(c))
	if err != nil {
		respondError(c, err, "Failed to update premium status")
		return
	}
	c.JSON(http.StatusOK, gin.H{"isPremium": *request.IsPremium, "premiumExpiresAt": expiresAt})
}

// GetPoints handles GET /users/:id/points
func (h *UserHandler) GetPoints(c *gin.Context) {
	balance, history, err := h.userService.GetPoints(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to get points")
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": balance, "history": history})
}

// AdjustPoints handles PUT /users/:id/points
func (h *UserHandler) AdjustPoints(c *gin.Context) {
	var request struct {
		Delta  int    `json:"delta" binding:"required"`
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		badRequest(c, err)
		return
	}
	balance, err := h.userService.AdjustPoints(c.Request.Context(), c.Param("id"), request.Delta, request.Reason, middleware.ActorID(c))
	if err != nil {
		respondError(c, err, "Failed to adjust points")
		return
	}
	c.JSON(http.StatusOK, gin.H{"points": balance})
}

// GetUserNotifications handles GET /users/:id/notifications
func (h *UserHandler) GetUserNotifications(c *gin.Context) {
	page, limit := pagination(c)
	notifications, err := h.notificationService.GetUserNotifications(c.Request.Context(), c.Param("id"), page, limit)
	if err != nil {
		respondError(c, err, "Failed to get notifications")
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications, "page": page, "limit": limit})
}
