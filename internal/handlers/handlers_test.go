package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/api/routes"
	"github.com/ArowuTest/safeplate-admin-backend/internal/config"
	"github.com/ArowuTest/safeplate-admin-backend/internal/handlers"
	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories/memory"
	"github.com/ArowuTest/safeplate-admin-backend/internal/services"
	"github.com/ArowuTest/safeplate-admin-backend/internal/utils"
	"github.com/ArowuTest/safeplate-admin-backend/pkg/push"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "handler-test-secret"

type testServer struct {
	router *gin.Engine
	repos  *memory.Repositories
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{AllowedHosts: []string{"*"}},
		JWT:    config.JWTConfig{Secret: testSecret},
	}
	repos := memory.NewRepositories(memory.New())

	resolver := services.NewAudienceResolver(repos.Users)
	ledger := services.NewPointsLedger(repos.Users)
	dispatcher := services.NewNotificationDispatcher(repos.Users, repos.Notifications, push.NewMockGateway("mock"), services.DispatcherConfig{
		Concurrency: 4,
		Timeout:     time.Second,
	})
	notificationService := services.NewNotificationService(resolver, dispatcher, repos.Notifications)
	statsService := services.NewStatsService(repos.Users, repos.Venues, repos.Coupons, repos.Campaigns,
		repos.Referrals, repos.Certifications, repos.Notifications)

	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		UserHandler:         handlers.NewUserHandler(services.NewUserService(repos.Users, ledger), notificationService),
		VenueHandler:        handlers.NewVenueHandler(services.NewVenueService(repos.Venues)),
		CouponHandler:       handlers.NewCouponHandler(services.NewCouponService(repos.Coupons), services.NewRewardIssuer(repos.Coupons, resolver, dispatcher)),
		CampaignHandler:     handlers.NewCampaignHandler(services.NewCampaignService(repos.Campaigns), services.NewCampaignActivator(repos.Campaigns, resolver, dispatcher)),
		ReviewHandler:       handlers.NewReviewHandler(services.NewReferralReviewer(repos.Referrals, repos.Venues, ledger, dispatcher, 50), services.NewCertificationReviewer(repos.Certifications, repos.Venues)),
		NotificationHandler: handlers.NewNotificationHandler(notificationService),
		SettingsHandler:     handlers.NewSystemSettingsHandler(services.NewSettingsService(repos.Settings), nil),
		StatsHandler:        handlers.NewStatsHandler(statsService),
	})

	token, err := utils.GenerateJWT("admin-1", "admin", testSecret, time.Hour)
	require.NoError(t, err)

	return &testServer{router: router, repos: repos, token: token}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func (s *testServer) seedUser(t *testing.T, id string, tier models.Tier) {
	t.Helper()
	require.NoError(t, s.repos.Users.Create(context.Background(), &models.User{
		ID:                  id,
		Tier:                tier,
		NotificationAddress: "token-" + id,
	}))
}

func TestPublicRoutes(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/api/v1/health", "/api/v1/maintenance", "/metrics"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestIssueCouponsEndpoint(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "u1", models.TierGold)
	s.seedUser(t, "u2", models.TierGold)

	template := gin.H{
		"code":          "WELCOME",
		"description":   "Welcome gift",
		"discountValue": 10,
		"venueId":       "v1",
		"venueName":     "Green Bowl",
		"expiresAt":     time.Now().Add(24 * time.Hour).UTC().Format(time.RFC3339),
	}

	w := s.do(t, http.MethodPost, "/api/v1/coupons", gin.H{
		"audience": gin.H{"kind": "segment", "segment": "gold"},
		"template": template,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result services.IssueResult
	decode(t, w, &result)
	assert.Equal(t, 2, result.Targeted)
	assert.Len(t, result.Coupons, 2)
	assert.Equal(t, 2, result.Notification.Delivered)

	w = s.do(t, http.MethodGet, "/api/v1/coupons?userId=u1&activeOnly=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Coupons []models.Coupon `json:"coupons"`
	}
	decode(t, w, &listed)
	require.Len(t, listed.Coupons, 1)
	assert.Equal(t, "admin-1", listed.Coupons[0].CreatedBy)

	w = s.do(t, http.MethodPost, "/api/v1/coupons", gin.H{
		"audience": gin.H{"kind": "segment", "segment": "silver"},
		"template": template,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	expired := gin.H{}
	for k, v := range template {
		expired[k] = v
	}
	expired["expiresAt"] = time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	w = s.do(t, http.MethodPost, "/api/v1/coupons", gin.H{
		"audience": gin.H{"kind": "single", "userId": "u1"},
		"template": expired,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/coupons", gin.H{
		"audience": gin.H{"kind": "everyone"},
		"template": template,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCampaignEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "u1", models.TierSilver)

	w := s.do(t, http.MethodPost, "/api/v1/campaigns", gin.H{
		"title":           "Silver spring",
		"description":     "Extra rewards",
		"audienceSegment": "silver",
		"startAt":         time.Now().Add(-time.Hour).UTC().Format(time.RFC3339),
		"endAt":           time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var campaign models.Campaign
	decode(t, w, &campaign)
	assert.False(t, campaign.IsActive)

	w = s.do(t, http.MethodPut, "/api/v1/campaigns/"+campaign.ID+"/status", gin.H{"isActive": true})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var activation services.ActivationResult
	decode(t, w, &activation)
	assert.True(t, activation.FannedOut)
	assert.Equal(t, 1, activation.Notification.Attempted)

	w = s.do(t, http.MethodPut, "/api/v1/campaigns/"+campaign.ID+"/status", gin.H{"isActive": true})
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &activation)
	assert.False(t, activation.FannedOut)

	w = s.do(t, http.MethodPut, "/api/v1/campaigns/missing/status", gin.H{"isActive": true})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/campaigns/"+campaign.ID+"/status", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReferralEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "sub", models.TierNone)
	ref := &models.ReferralRequest{
		SubmitterUserID: "sub",
		VenueName:       "Corner Cafe",
		Location:        &models.GeoPoint{Lat: 1, Lng: 2},
	}
	require.NoError(t, s.repos.Referrals.Create(context.Background(), ref))

	w := s.do(t, http.MethodGet, "/api/v1/referrals?status=pending", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ref.ID)

	w = s.do(t, http.MethodGet, "/api/v1/referrals?status=bogus", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/referrals/"+ref.ID+"/status", gin.H{"status": "approved", "note": "welcome"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.ReviewResult
	decode(t, w, &result)
	assert.True(t, result.Changed)
	assert.True(t, result.PointsAwarded)
	assert.NotEmpty(t, result.VenueID)

	w = s.do(t, http.MethodPut, "/api/v1/referrals/"+ref.ID+"/status", gin.H{"status": "rejected"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/referrals/"+ref.ID+"/status", gin.H{"status": "pending"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/users/sub/points", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var points struct {
		Points int `json:"points"`
	}
	decode(t, w, &points)
	assert.Equal(t, 50, points.Points)
}

func TestCertificationEndpointCanCertifyVenue(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	venue := &models.Venue{Name: "Vegan Hub", CertificationStatus: models.CertificationPending}
	require.NoError(t, s.repos.Venues.Create(ctx, venue))
	req := &models.CertificationRequest{VenueID: venue.ID, SubmitterOwnerID: "owner"}
	require.NoError(t, s.repos.Certifications.Create(ctx, req))

	w := s.do(t, http.MethodPut, "/api/v1/certification-requests/"+req.ID+"/status", gin.H{
		"status":       "approved",
		"certifyVenue": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"venueCertified":true`)

	stored, err := s.repos.Venues.FindByID(ctx, venue.ID)
	require.NoError(t, err)
	assert.Equal(t, models.CertificationCertified, stored.CertificationStatus)
}

func TestUserAdminEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "u1", models.TierBronze)
	s.seedUser(t, "u2", models.TierNone)
	s.seedUser(t, "u3", models.TierNone)

	w := s.do(t, http.MethodPost, "/api/v1/users/u1/ban", gin.H{"reason": "fraud"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/users/u1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var user models.User
	decode(t, w, &user)
	assert.True(t, user.Banned)
	assert.Equal(t, "admin-1", user.BannedBy)

	w = s.do(t, http.MethodPost, "/api/v1/users/u2/ban", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(t, http.MethodGet, "/api/v1/users/u2", nil)
	decode(t, w, &user)
	assert.Equal(t, services.DefaultBanReason, user.BanReason)

	w = s.do(t, http.MethodGet, "/api/v1/users?banned=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var banned struct {
		Users []models.User `json:"users"`
		Total int64         `json:"total"`
	}
	decode(t, w, &banned)
	assert.EqualValues(t, 2, banned.Total)
	require.Len(t, banned.Users, 2)

	w = s.do(t, http.MethodGet, "/api/v1/users?banned=false", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)

	w = s.do(t, http.MethodGet, "/api/v1/users?banned=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPut, "/api/v1/users/u1/premium", gin.H{"isPremium": true, "months": 2})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "premiumExpiresAt")

	w = s.do(t, http.MethodPut, "/api/v1/users/u1/points", gin.H{"delta": -20, "reason": "refund"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"points":0}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/users/ghost", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/users?page=1&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":3`)
}

func TestBroadcastAndNotificationLog(t *testing.T) {
	s := newTestServer(t)
	s.seedUser(t, "u1", models.TierNone)

	w := s.do(t, http.MethodPost, "/api/v1/notifications", gin.H{
		"audience": gin.H{"kind": "explicit", "userIds": []string{"u1", "u1", "ghost"}},
		"title":    "Hello",
		"body":     "World",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result services.BroadcastResult
	decode(t, w, &result)
	assert.Equal(t, 2, result.Targeted)
	assert.Equal(t, 1, result.Notification.Delivered)

	w = s.do(t, http.MethodGet, "/api/v1/users/u1/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.NotificationSent)
}

func TestVenueAndMaintenanceEndpoints(t *testing.T) {
	s := newTestServer(t)
	venue := &models.Venue{Name: "Bistro", DifficultyLevel: models.DifficultyPopular}
	require.NoError(t, s.repos.Venues.Create(context.Background(), venue))

	w := s.do(t, http.MethodPut, "/api/v1/venues/"+venue.ID+"/difficulty", gin.H{"difficultyLevel": "technical"})
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/venues/"+venue.ID+"/difficulty", gin.H{"difficultyLevel": "hard"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/venues/"+venue.ID+"/boost", gin.H{"boosted": true})
	assert.Equal(t, http.StatusOK, w.Code)
	w = s.do(t, http.MethodPut, "/api/v1/venues/missing/boost", gin.H{"boosted": true})
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(t, http.MethodGet, "/api/v1/venues?difficulty=technical", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), venue.ID)
	assert.Contains(t, w.Body.String(), `"total":1`)
	w = s.do(t, http.MethodGet, "/api/v1/venues?difficulty=popular", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":0`)

	w = s.do(t, http.MethodPost, "/api/v1/maintenance", gin.H{"enabled": true})
	require.Equal(t, http.StatusOK, w.Code)
	var settings models.MaintenanceSettings
	decode(t, w, &settings)
	assert.True(t, settings.Enabled)
	assert.Equal(t, models.DefaultMaintenanceMessage, settings.Message)
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	s.seedUser(t, "u1", models.TierGold)
	s.seedUser(t, "u2", models.TierNone)
	require.NoError(t, s.repos.Users.SetBanned(ctx, "u2", true, "spam", "admin-1", time.Now()))
	require.NoError(t, s.repos.Venues.Create(ctx, &models.Venue{Name: "Bistro"}))
	require.NoError(t, s.repos.Referrals.Create(ctx, &models.ReferralRequest{SubmitterUserID: "u1", VenueName: "Cafe"}))
	require.NoError(t, s.repos.Referrals.Create(ctx, &models.ReferralRequest{SubmitterUserID: "u1", VenueName: "Bar", Status: models.ReviewRejected}))
	require.NoError(t, s.repos.Certifications.Create(ctx, &models.CertificationRequest{VenueID: "v1", SubmitterOwnerID: "o1"}))

	w := s.do(t, http.MethodPost, "/api/v1/notifications", gin.H{
		"audience": gin.H{"kind": "single", "userId": "u1"},
		"title":    "Hi",
		"body":     "There",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stats services.Stats
	decode(t, w, &stats)
	assert.Equal(t, services.Stats{
		Users:                 2,
		BannedUsers:           1,
		Venues:                1,
		Coupons:               0,
		Campaigns:             0,
		Notifications:         1,
		PendingReferrals:      1,
		PendingCertifications: 1,
	}, stats)
}
