package routes

import (
	"github.com/ArowuTest/safeplate-admin-backend/internal/config"
	"github.com/ArowuTest/safeplate-admin-backend/internal/handlers"
	"github.com/ArowuTest/safeplate-admin-backend/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandlerDependencies groups the handlers the router mounts
type HandlerDependencies struct {
	UserHandler         *handlers.UserHandler
	VenueHandler        *handlers.VenueHandler
	CouponHandler       *handlers.CouponHandler
	CampaignHandler     *handlers.CampaignHandler
	ReviewHandler       *handlers.ReviewHandler
	NotificationHandler *handlers.NotificationHandler
	SettingsHandler     *handlers.SystemSettingsHandler
	StatsHandler        *handlers.StatsHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.LoggerMiddleware())

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", deps.SettingsHandler.Health)
		public.GET("/maintenance", deps.SettingsHandler.GetMaintenance)
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(cfg))
	{
		users := protected.Group("/users")
		{
			users.GET("", deps.UserHandler.GetAllUsers)
			users.GET("/:id", deps.UserHandler.GetUserByID)
			users.POST("/:id/ban", deps.UserHandler.BanUser)
			users.POST("/:id/unban", deps.UserHandler.UnbanUser)
			users.PUT("/:id/premium", deps.UserHandler.SetPremium)
			users.GET("/:id/points", deps.UserHandler.GetPoints)
			users.PUT("/:id/points", deps.UserHandler.AdjustPoints)
			users.GET("/:id/notifications", deps.UserHandler.GetUserNotifications)
		}

		venues := protected.Group("/venues")
		{
			venues.GET("", deps.VenueHandler.GetVenues)
			venues.PUT("/:id/difficulty", deps.VenueHandler.SetDifficulty)
			venues.PUT("/:id/certification", deps.VenueHandler.SetCertification)
			venues.PUT("/:id/inspection", deps.VenueHandler.RecordInspection)
			venues.PUT("/:id/boost", deps.VenueHandler.SetBoost)
		}

		coupons := protected.Group("/coupons")
		{
			coupons.GET("", deps.CouponHandler.GetUserCoupons)
			coupons.POST("", deps.CouponHandler.IssueCoupons)
		}

		campaigns := protected.Group("/campaigns")
		{
			campaigns.GET("", deps.CampaignHandler.GetCampaigns)
			campaigns.GET("/:id", deps.CampaignHandler.GetCampaign)
			campaigns.POST("", deps.CampaignHandler.CreateCampaign)
			campaigns.PUT("/:id/status", deps.CampaignHandler.SetStatus)
		}

		referrals := protected.Group("/referrals")
		{
			referrals.GET("", deps.ReviewHandler.ListReferrals)
			referrals.PUT("/:id/status", deps.ReviewHandler.UpdateReferralStatus)
		}

		certifications := protected.Group("/certification-requests")
		{
			certifications.GET("", deps.ReviewHandler.ListCertificationRequests)
			certifications.PUT("/:id/status", deps.ReviewHandler.UpdateCertificationStatus)
		}

		protected.GET("/stats", deps.StatsHandler.GetStats)
		protected.POST("/notifications", deps.NotificationHandler.Broadcast)
		protected.POST("/maintenance", deps.SettingsHandler.SetMaintenance)
	}

	return router
}
