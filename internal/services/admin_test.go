package services

import (
	"context"
	"testing"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServicePremium(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedUser(t, repos, "u1", "", false, false)
	svc := NewUserService(repos.Users, NewPointsLedger(repos.Users))
	svc.now = fixedClock

	expiresAt, err := svc.SetPremium(ctx, "u1", true, 3, "admin")
	require.NoError(t, err)
	require.NotNil(t, expiresAt)
	assert.Equal(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), *expiresAt)

	user, err := svc.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.IsPremium)
	assert.True(t, user.PremiumActive(testNow))

	// granting again without months keeps the stored expiry
	expiresAt, err = svc.SetPremium(ctx, "u1", true, 0, "admin")
	require.NoError(t, err)
	assert.Nil(t, expiresAt)
	user, err = svc.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, user.PremiumExpiresAt)
	assert.Equal(t, time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC), user.PremiumExpiresAt.UTC())

	expiresAt, err = svc.SetPremium(ctx, "u1", false, 0, "admin")
	require.NoError(t, err)
	assert.Nil(t, expiresAt)
	user, err = svc.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, user.IsPremium)
	assert.Nil(t, user.PremiumExpiresAt)

	_, err = svc.SetPremium(ctx, "u1", true, -1, "admin")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.SetPremium(ctx, "ghost", true, 1, "admin")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserServiceBan(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedUser(t, repos, "u1", "", false, false)
	svc := NewUserService(repos.Users, NewPointsLedger(repos.Users))
	svc.now = fixedClock

	seedUser(t, repos, "u2", "", false, false)
	require.NoError(t, svc.BanUser(ctx, "u2", "", "admin"))
	quiet, err := svc.GetUserByID(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, quiet.Banned)
	assert.Equal(t, DefaultBanReason, quiet.BanReason)

	require.NoError(t, svc.BanUser(ctx, "u1", "spam", "admin"))

	user, err := svc.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, user.Banned)
	assert.Equal(t, "spam", user.BanReason)
	assert.Equal(t, "admin", user.BannedBy)

	require.NoError(t, svc.UnbanUser(ctx, "u1", "admin"))
	user, err = svc.GetUserByID(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, user.Banned)
	assert.Empty(t, user.BanReason)

	assert.ErrorIs(t, svc.BanUser(ctx, "ghost", "spam", "admin"), ErrUserNotFound)

	banned := true
	users, total, err := svc.GetAllUsers(ctx, &banned, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "u2", users[0].ID)

	banned = false
	users, total, err = svc.GetAllUsers(ctx, &banned, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "u1", users[0].ID)
}

func TestUserServicePoints(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedUser(t, repos, "u1", "", false, false)
	svc := NewUserService(repos.Users, NewPointsLedger(repos.Users))

	balance, err := svc.AdjustPoints(ctx, "u1", 30, "", "admin")
	require.NoError(t, err)
	assert.Equal(t, 30, balance)

	_, err = svc.AdjustPoints(ctx, "u1", 0, "noop", "admin")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	balance, history, err := svc.GetPoints(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 30, balance)
	require.Len(t, history, 1)
	assert.Equal(t, DefaultAdjustmentReason, history[0].Reason)

	users, total, err := svc.GetAllUsers(ctx, nil, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, users, 1)
}

func TestVenueServiceBoost(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	venue := &models.Venue{Name: "Bistro", DifficultyLevel: models.DifficultyPopular}
	require.NoError(t, repos.Venues.Create(ctx, venue))
	svc := NewVenueService(repos.Venues)
	svc.now = fixedClock

	expiresAt, err := svc.SetBoost(ctx, venue.ID, true, 0, "admin")
	require.NoError(t, err)
	require.NotNil(t, expiresAt)
	assert.Equal(t, testNow.AddDate(0, 0, DefaultBoostDays), *expiresAt)

	expiresAt, err = svc.SetBoost(ctx, venue.ID, true, 7, "admin")
	require.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 0, 7), *expiresAt)

	stored, err := svc.GetVenueByID(ctx, venue.ID)
	require.NoError(t, err)
	assert.True(t, stored.BoostActive(testNow))

	expiresAt, err = svc.SetBoost(ctx, venue.ID, false, 0, "admin")
	require.NoError(t, err)
	assert.Nil(t, expiresAt)

	_, err = svc.SetBoost(ctx, venue.ID, true, -2, "admin")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = svc.SetBoost(ctx, "ghost", true, 1, "admin")
	assert.ErrorIs(t, err, ErrVenueNotFound)
}

func TestVenueServiceClassification(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	a := &models.Venue{Name: "A", DifficultyLevel: models.DifficultyPopular}
	b := &models.Venue{Name: "B", DifficultyLevel: models.DifficultyPopular}
	require.NoError(t, repos.Venues.Create(ctx, a))
	require.NoError(t, repos.Venues.Create(ctx, b))
	svc := NewVenueService(repos.Venues)

	require.NoError(t, svc.SetDifficulty(ctx, a.ID, "technical", "admin"))
	assert.ErrorIs(t, svc.SetDifficulty(ctx, a.ID, "extreme", "admin"), ErrInvalidArgument)
	require.NoError(t, svc.SetCertification(ctx, a.ID, "scheduled", "admin"))
	assert.ErrorIs(t, svc.SetCertification(ctx, a.ID, "maybe", "admin"), ErrInvalidArgument)
	require.NoError(t, svc.RecordInspection(ctx, a.ID, testNow, "passed", "admin"))
	assert.ErrorIs(t, svc.RecordInspection(ctx, a.ID, time.Time{}, "passed", "admin"), ErrInvalidArgument)

	technical, total, err := svc.GetVenues(ctx, "technical", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, technical, 1)
	assert.Equal(t, a.ID, technical[0].ID)
	assert.Equal(t, models.CertificationScheduled, technical[0].CertificationStatus)
	assert.Equal(t, "passed", technical[0].LastInspectionStatus)

	popular, total, err := svc.GetVenues(ctx, "popular", 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total, "total counts the filtered set")
	require.Len(t, popular, 1)
	assert.Equal(t, b.ID, popular[0].ID)

	all, total, err := svc.GetVenues(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.EqualValues(t, 2, total)

	_, _, err = svc.GetVenues(ctx, "weird", 1, 10)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestSettingsServiceMaintenance(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	svc := NewSettingsService(repos.Settings)
	svc.now = fixedClock

	current, err := svc.GetMaintenance(ctx)
	require.NoError(t, err)
	assert.False(t, current.Enabled)

	updated, err := svc.SetMaintenance(ctx, true, "", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultMaintenanceMessage, updated.Message)

	current, err = svc.GetMaintenance(ctx)
	require.NoError(t, err)
	assert.True(t, current.Enabled)
	assert.Equal(t, "admin", current.UpdatedBy)
	assert.Equal(t, testNow, current.UpdatedAt)
}

func TestBroadcastAndCoupons(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedUser(t, repos, "u1", models.TierBronze, false, false)
	seedUser(t, repos, "u2", models.TierBronze, false, false)
	notifier := &recordingNotifier{}
	svc := NewNotificationService(NewAudienceResolver(repos.Users), notifier, repos.Notifications)

	result, err := svc.Broadcast(ctx, models.SegmentAudience(models.SegmentBronze), models.Message{Title: "Hello", Body: "News"})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Targeted)
	assert.Equal(t, 2, result.Notification.Delivered)

	_, err = svc.Broadcast(ctx, models.SingleUser("u1"), models.Message{Title: "Hello"})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	coupons := NewCouponService(repos.Coupons)
	_, err = coupons.GetUserCoupons(ctx, "", false)
	assert.ErrorIs(t, err, ErrInvalidArgument)
	list, err := coupons.GetUserCoupons(ctx, "u1", true)
	require.NoError(t, err)
	assert.Empty(t, list)
}
