package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.CouponRepository = (*CouponRepository)(nil)

// CouponRepository handles MongoDB operations for Coupon
type CouponRepository struct {
	collection *mongo.Collection
}

// NewCouponRepository creates a new CouponRepository
func NewCouponRepository(db *mongo.Database) *CouponRepository {
	return &CouponRepository{
		collection: db.Collection(couponsCollection),
	}
}

// CreateBatch writes all coupons with one ordered bulk insert
func (r *CouponRepository) CreateBatch(ctx context.Context, coupons []*models.Coupon) (int, error) {
	if len(coupons) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(coupons))
	now := time.Now()
	for i, c := range coupons {
		if c.ID == "" {
			c.ID = newID()
		}
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		docs[i] = c
	}

	_, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	if err == nil {
		return len(coupons), nil
	}

	// Ordered inserts stop at the first failing document, so its index is
	// the number of coupons that made it in.
	var bwe mongo.BulkWriteException
	if errors.As(err, &bwe) && len(bwe.WriteErrors) > 0 {
		first := bwe.WriteErrors[0].Index
		for _, we := range bwe.WriteErrors[1:] {
			if we.Index < first {
				first = we.Index
			}
		}
		return first, translateErr(err)
	}

	persisted, countErr := r.collection.CountDocuments(ctx, bson.M{"issuingBatchId": coupons[0].IssuingBatchID})
	if countErr != nil {
		return 0, err
	}
	return int(persisted), err
}

// FindByOwner lists a user's coupons, newest first
func (r *CouponRepository) FindByOwner(ctx context.Context, ownerID string, activeOnly bool, now time.Time) ([]*models.Coupon, error) {
	cursor, err := r.collection.Find(ctx, ownerFilter(ownerID, activeOnly, now), pageOptions(1, 0, "createdAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Coupon](ctx, cursor)
}

// Count counts all coupons
func (r *CouponRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// ownerFilter selects a user's coupons; activeOnly keeps unused, unexpired ones
func ownerFilter(ownerID string, activeOnly bool, now time.Time) bson.M {
	filter := bson.M{"userId": ownerID}
	if activeOnly {
		filter["isUsed"] = false
		filter["expiresAt"] = bson.M{"$gt": now}
	}
	return filter
}
