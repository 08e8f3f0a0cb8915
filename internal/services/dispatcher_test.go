package services

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchCountsEveryAttempt(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedUser(t, repos, "ok-1", "", false, false)
	seedUser(t, repos, "ok-2", "", false, false)
	seedUser(t, repos, "bad", "", false, false)
	seedUser(t, repos, "silent", "", false, true)

	gw := newFakeGateway()
	gw.fail["token-bad"] = true
	d := NewNotificationDispatcher(repos.Users, repos.Notifications, gw, DispatcherConfig{Concurrency: 4, Timeout: time.Second})

	msg := models.Message{Title: "Hi", Body: "There", Data: map[string]string{"type": models.NotificationTypeCampaign}}
	result := d.Dispatch(ctx, []string{"ok-1", "ok-2", "bad", "silent", "missing"}, msg)

	assert.Equal(t, 5, result.Attempted)
	assert.Equal(t, 2, result.Delivered)
	assert.Equal(t, 3, result.Failed())
	assert.Len(t, gw.sentTo("token-ok-1"), 1)
	assert.Len(t, gw.sentTo("token-ok-2"), 1)
	assert.Equal(t, "campaign", gw.sentTo("token-ok-1")[0].Data["type"])

	statusOf := func(userID string) string {
		records, err := repos.Notifications.FindByUserID(ctx, userID, 1, 10)
		require.NoError(t, err)
		require.Len(t, records, 1, userID)
		assert.Equal(t, models.NotificationTypeCampaign, records[0].Type)
		return records[0].Status
	}
	assert.Equal(t, models.NotificationSent, statusOf("ok-1"))
	assert.Equal(t, models.NotificationFailed, statusOf("bad"))
	assert.Equal(t, models.NotificationNoAddress, statusOf("silent"))
	assert.Equal(t, models.NotificationNoAddress, statusOf("missing"))
}

func TestDispatchEmptyAudience(t *testing.T) {
	repos := newTestRepos(t)
	gw := newFakeGateway()
	d := NewNotificationDispatcher(repos.Users, nil, gw, DispatcherConfig{})

	result := d.Dispatch(context.Background(), nil, models.Message{Title: "x", Body: "y"})
	assert.Equal(t, models.DispatchResult{}, result)
	assert.Zero(t, gw.total())
}

func TestDispatchTimesOutSlowSends(t *testing.T) {
	repos := newTestRepos(t)
	seedUser(t, repos, "u1", "", false, false)
	seedUser(t, repos, "u2", "", false, false)

	gw := newFakeGateway()
	gw.delay = 2 * time.Second
	d := NewNotificationDispatcher(repos.Users, nil, gw, DispatcherConfig{Concurrency: 2, Timeout: 20 * time.Millisecond})

	start := time.Now()
	result := d.Dispatch(context.Background(), []string{"u1", "u2"}, models.Message{Title: "x", Body: "y"})

	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, 2, result.Attempted)
	assert.Zero(t, result.Delivered)
}

func TestDispatchRespectsConcurrencyLimit(t *testing.T) {
	repos := newTestRepos(t)
	ids := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		id := fmt.Sprintf("u%02d", i)
		seedUser(t, repos, id, "", false, false)
		ids = append(ids, id)
	}

	gw := newFakeGateway()
	gw.delay = 5 * time.Millisecond
	d := NewNotificationDispatcher(repos.Users, nil, gw, DispatcherConfig{Concurrency: 3, Timeout: time.Second})

	result := d.Dispatch(context.Background(), ids, models.Message{Title: "x", Body: "y"})
	assert.Equal(t, 20, result.Attempted)
	assert.Equal(t, 20, result.Delivered)
	assert.LessOrEqual(t, gw.peak.Load(), int32(3))
}

func TestDispatchSurvivesCallerCancellation(t *testing.T) {
	repos := newTestRepos(t)
	seedUser(t, repos, "u1", "", false, false)
	gw := newFakeGateway()
	d := NewNotificationDispatcher(repos.Users, nil, gw, DispatcherConfig{Concurrency: 1, Timeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result := d.Dispatch(ctx, []string{"u1"}, models.Message{Title: "x", Body: "y"})
	assert.Equal(t, 1, result.Delivered)
}

func TestDispatchWithRateLimit(t *testing.T) {
	repos := newTestRepos(t)
	seedUser(t, repos, "u1", "", false, false)
	seedUser(t, repos, "u2", "", false, false)
	gw := newFakeGateway()
	d := NewNotificationDispatcher(repos.Users, nil, gw, DispatcherConfig{
		Concurrency:   2,
		Timeout:       time.Second,
		RatePerSecond: 1000,
		Burst:         1,
	})

	result := d.Dispatch(context.Background(), []string{"u1", "u2"}, models.Message{Title: "x", Body: "y"})
	assert.Equal(t, 2, result.Delivered)
}

func TestMessageTypeDefaultsToGeneral(t *testing.T) {
	assert.Equal(t, models.NotificationTypeGeneral, models.Message{}.Type())
	assert.Equal(t, "coupon", models.Message{Data: map[string]string{"type": "coupon"}}.Type())
}
