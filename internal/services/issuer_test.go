package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyCouponRepository stores the first okCount coupons of a batch, then fails
type flakyCouponRepository struct {
	repositories.CouponRepository
	okCount int
}

func (r *flakyCouponRepository) CreateBatch(ctx context.Context, coupons []*models.Coupon) (int, error) {
	if len(coupons) <= r.okCount {
		return r.CouponRepository.CreateBatch(ctx, coupons)
	}
	n, err := r.CouponRepository.CreateBatch(ctx, coupons[:r.okCount])
	if err != nil {
		return n, err
	}
	return n, errors.New("write concern timeout")
}

func validTemplate() models.CouponTemplate {
	return models.CouponTemplate{
		BaseCode:      "SPRING",
		Description:   "Spring special",
		DiscountValue: 15,
		VenueID:       "venue-1",
		VenueName:     "Green Bowl",
		ExpiresAt:     testNow.Add(30 * 24 * time.Hour),
	}
}

func TestIssueCreatesOneCouponPerUser(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedUser(t, repos, "alice-0001-aaaa", models.TierGold, false, false)
	seedUser(t, repos, "bob-0002-bbbb", models.TierGold, false, false)
	seedUser(t, repos, "carol-0003", models.TierSilver, false, false)

	notifier := &recordingNotifier{}
	issuer := NewRewardIssuer(repos.Coupons, NewAudienceResolver(repos.Users), notifier)
	issuer.now = fixedClock

	result, err := issuer.Issue(ctx, validTemplate(), models.SegmentAudience(models.SegmentGold), "admin-1")
	require.NoError(t, err)
	assert.Equal(t, 2, result.Targeted)
	require.Len(t, result.Coupons, 2)
	assert.NotEmpty(t, result.BatchID)

	codes := map[string]bool{}
	for _, c := range result.Coupons {
		assert.Equal(t, result.BatchID, c.IssuingBatchID)
		assert.Equal(t, "admin-1", c.CreatedBy)
		assert.False(t, c.IsUsed)
		codes[c.Code] = true
	}
	assert.Len(t, codes, 2)

	alice, err := repos.Coupons.FindByOwner(ctx, "alice-0001-aaaa", true, testNow)
	require.NoError(t, err)
	require.Len(t, alice, 1)
	assert.Equal(t, "SPRING-alice-00", alice[0].Code)
	assert.Equal(t, 15.0, alice[0].DiscountValue)

	carol, err := repos.Coupons.FindByOwner(ctx, "carol-0003", false, testNow)
	require.NoError(t, err)
	assert.Empty(t, carol)

	calls := notifier.Calls()
	require.Len(t, calls, 1)
	assert.ElementsMatch(t, []string{"alice-0001-aaaa", "bob-0002-bbbb"}, calls[0].userIDs)
	assert.Equal(t, "New coupon available!", calls[0].msg.Title)
	assert.Equal(t, "Spring special - 15% off at Green Bowl", calls[0].msg.Body)
	assert.Equal(t, models.NotificationTypeCoupon, calls[0].msg.Type())
	assert.Equal(t, result.BatchID, calls[0].msg.Data["batchId"])
}

func TestIssueExplicitListIsDeduplicated(t *testing.T) {
	repos := newTestRepos(t)
	issuer := NewRewardIssuer(repos.Coupons, NewAudienceResolver(repos.Users), &recordingNotifier{})
	issuer.now = fixedClock

	result, err := issuer.Issue(context.Background(), validTemplate(), models.ExplicitUsers("u1", "u2", "u1"), "admin")
	require.NoError(t, err)
	assert.Len(t, result.Coupons, 2)

	count, err := repos.Coupons.Count(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
}

func TestIssueRejectsBadInput(t *testing.T) {
	repos := newTestRepos(t)
	notifier := &recordingNotifier{}
	issuer := NewRewardIssuer(repos.Coupons, NewAudienceResolver(repos.Users), notifier)
	issuer.now = fixedClock

	noCode := validTemplate()
	noCode.BaseCode = ""
	_, err := issuer.Issue(context.Background(), noCode, models.SingleUser("u1"), "admin")
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	zeroDiscount := validTemplate()
	zeroDiscount.DiscountValue = 0
	_, err = issuer.Issue(context.Background(), zeroDiscount, models.SingleUser("u1"), "admin")
	assert.ErrorIs(t, err, ErrInvalidTemplate)

	expired := validTemplate()
	expired.ExpiresAt = testNow
	_, err = issuer.Issue(context.Background(), expired, models.SingleUser("u1"), "admin")
	assert.ErrorIs(t, err, ErrInvalidExpiry)

	_, err = issuer.Issue(context.Background(), validTemplate(), models.SegmentAudience(models.SegmentPremium), "admin")
	assert.ErrorIs(t, err, ErrEmptyAudience)

	count, err := repos.Coupons.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, notifier.Calls())
}

func TestIssueStopsOnStorageFailure(t *testing.T) {
	repos := newTestRepos(t)
	notifier := &recordingNotifier{}
	flaky := &flakyCouponRepository{CouponRepository: repos.Coupons, okCount: 1}
	issuer := NewRewardIssuer(flaky, NewAudienceResolver(repos.Users), notifier)
	issuer.now = fixedClock

	_, err := issuer.Issue(context.Background(), validTemplate(), models.ExplicitUsers("u1", "u2", "u3"), "admin")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIssuanceFailed)

	var issuanceErr *IssuanceError
	require.ErrorAs(t, err, &issuanceErr)
	assert.Equal(t, 1, issuanceErr.Persisted)
	assert.Equal(t, 3, issuanceErr.Targeted)
	assert.Empty(t, notifier.Calls())
}

func TestIssueKeepsCouponsWhenDeliveryFails(t *testing.T) {
	ctx := context.Background()
	repos := newTestRepos(t)
	seedUser(t, repos, "u1", "", false, false)
	gw := newFakeGateway()
	gw.fail["token-u1"] = true
	dispatcher := NewNotificationDispatcher(repos.Users, repos.Notifications, gw, DispatcherConfig{Concurrency: 1, Timeout: time.Second})
	issuer := NewRewardIssuer(repos.Coupons, NewAudienceResolver(repos.Users), dispatcher)
	issuer.now = fixedClock

	result, err := issuer.Issue(ctx, validTemplate(), models.SingleUser("u1"), "admin")
	require.NoError(t, err)
	assert.Equal(t, models.DispatchResult{Attempted: 1, Delivered: 0}, result.Notification)

	coupons, err := repos.Coupons.FindByOwner(ctx, "u1", true, testNow)
	require.NoError(t, err)
	assert.Len(t, coupons, 1)
}

func TestCouponCode(t *testing.T) {
	assert.Equal(t, "X-abc", CouponCode("X", "abc"))
	assert.Equal(t, "X-12345678", CouponCode("X", "1234567890"))
	assert.Equal(t, "X-ééééééé", CouponCode("X", "ééééééé"))
}
