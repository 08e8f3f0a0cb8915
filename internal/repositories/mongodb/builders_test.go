package mongodb

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestSegmentFilter(t *testing.T) {
	cases := []struct {
		seg  models.Segment
		want bson.M
	}{
		{models.SegmentAll, bson.M{}},
		{models.SegmentPremium, bson.M{"isPremium": true}},
		{models.SegmentBronze, bson.M{"tier": "bronze"}},
		{models.SegmentSilver, bson.M{"tier": "silver"}},
		{models.SegmentGold, bson.M{"tier": "gold"}},
	}
	for _, tc := range cases {
		t.Run(string(tc.seg), func(t *testing.T) {
			got, err := segmentFilter(tc.seg)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := segmentFilter("platinum")
	assert.Error(t, err)
}

func TestPointsDeltaPipeline(t *testing.T) {
	at := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	pipeline := pointsDeltaPipeline(models.PointsEntry{
		Delta:         -1_000_000_000,
		Reason:        "$weird reason",
		ActorID:       "admin-1",
		Timestamp:     at,
		CorrelationID: "ref-1",
	})
	require.Len(t, pipeline, 1)

	set := pipeline[0].(bson.M)["$set"].(bson.M)

	points := set["points"].(bson.M)["$max"].(bson.A)
	assert.Equal(t, 0, points[0], "balance is clamped at zero")
	add := points[1].(bson.M)["$add"].(bson.A)
	assert.Equal(t, -1_000_000_000, add[1])

	history := set["pointsHistory"].(bson.M)["$concatArrays"].(bson.A)
	appended := history[1].(bson.A)[0].(bson.M)["$literal"].(bson.M)
	assert.Equal(t, -1_000_000_000, appended["delta"], "history keeps the requested delta")
	assert.Equal(t, "$weird reason", appended["reason"])
	assert.Equal(t, "admin-1", appended["actorId"])
	assert.Equal(t, "ref-1", appended["correlationId"])
	assert.Equal(t, at, set["updatedAt"])
}

func TestPointsDeltaPipelineOmitsEmptyCorrelation(t *testing.T) {
	pipeline := pointsDeltaPipeline(models.PointsEntry{Delta: 5, Reason: "bonus"})
	set := pipeline[0].(bson.M)["$set"].(bson.M)
	history := set["pointsHistory"].(bson.M)["$concatArrays"].(bson.A)
	appended := history[1].(bson.A)[0].(bson.M)["$literal"].(bson.M)
	_, ok := appended["correlationId"]
	assert.False(t, ok)
}

func TestOwnerFilter(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, bson.M{"userId": "u1"}, ownerFilter("u1", false, now))
	assert.Equal(t, bson.M{
		"userId":    "u1",
		"isUsed":    false,
		"expiresAt": bson.M{"$gt": now},
	}, ownerFilter("u1", true, now))
}

func TestTransitionUpdate(t *testing.T) {
	at := time.Now()
	note := "looks good"

	assert.Equal(t, bson.M{"_id": "r1", "status": models.ReviewPending}, transitionFilter("r1", models.ReviewPending))

	withNote := transitionUpdate(models.StatusChange{From: models.ReviewPending, To: models.ReviewApproved, Note: &note, ActorID: "a", At: at})
	set := withNote["$set"].(bson.M)
	assert.Equal(t, models.ReviewApproved, set["status"])
	assert.Equal(t, "looks good", set["decisionNote"])
	assert.Equal(t, "a", set["decidedBy"])

	withoutNote := transitionUpdate(models.StatusChange{From: models.ReviewPending, To: models.ReviewRejected, At: at})
	_, ok := withoutNote["$set"].(bson.M)["decisionNote"]
	assert.False(t, ok, "absent note leaves the stored one alone")
}

func TestExpiredFilterAndVenueFilter(t *testing.T) {
	now := time.Now()
	assert.Equal(t, bson.M{"boosted": true, "boostExpiresAt": bson.M{"$lt": now}}, expiredFilter("boosted", "boostExpiresAt", now))
	assert.Equal(t, bson.M{}, venueFilter(""))
	assert.Equal(t, bson.M{"difficultyLevel": models.DifficultyTechnical}, venueFilter(models.DifficultyTechnical))
	assert.Equal(t, bson.M{}, statusFilter(""))
}

func TestTranslateErr(t *testing.T) {
	assert.NoError(t, translateErr(nil))
	assert.ErrorIs(t, translateErr(mongo.ErrNoDocuments), repositories.ErrNotFound)
	assert.ErrorIs(t, translateErr(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), repositories.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.ErrorIs(t, translateErr(dup), repositories.ErrDuplicate)

	other := errors.New("boom")
	assert.Equal(t, other, translateErr(other))
}

func TestPageOptions(t *testing.T) {
	opts := pageOptions(3, 20, "createdAt")
	require.NotNil(t, opts.Skip)
	require.NotNil(t, opts.Limit)
	assert.Equal(t, int64(40), *opts.Skip)
	assert.Equal(t, int64(20), *opts.Limit)

	unbounded := pageOptions(0, 0, "createdAt")
	assert.Nil(t, unbounded.Limit)
	assert.Nil(t, unbounded.Skip)
}

func TestIndexSpecsCouponUniqueness(t *testing.T) {
	specs := indexSpecs()
	coupons := specs[couponsCollection]
	require.NotEmpty(t, coupons)
	require.NotNil(t, coupons[0].Options)
	require.NotNil(t, coupons[0].Options.Unique)
	assert.True(t, *coupons[0].Options.Unique)
}

func TestPremiumUpdate(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	expires := now.AddDate(0, 3, 0)

	withExpiry := premiumUpdate(true, &expires, "admin-1", now)
	assert.Equal(t, expires, withExpiry["$set"].(bson.M)["premiumExpiresAt"])
	assert.NotContains(t, withExpiry, "$unset")

	keep := premiumUpdate(true, nil, "admin-1", now)
	assert.NotContains(t, keep["$set"].(bson.M), "premiumExpiresAt")
	assert.NotContains(t, keep, "$unset", "granting without months keeps the stored expiry")

	off := premiumUpdate(false, nil, "admin-1", now)
	assert.Equal(t, false, off["$set"].(bson.M)["isPremium"])
	assert.Equal(t, bson.M{"premiumExpiresAt": ""}, off["$unset"])
}

func TestUserFilter(t *testing.T) {
	banned, active := true, false

	assert.Equal(t, bson.M{}, userFilter(repositories.UserFilter{}))
	assert.Equal(t, bson.M{"banned": true}, userFilter(repositories.UserFilter{Banned: &banned}))
	assert.Equal(t, bson.M{"banned": bson.M{"$ne": true}}, userFilter(repositories.UserFilter{Banned: &active}))
}
