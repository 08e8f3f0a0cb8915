package mongodb

import (
	"context"
	"errors"

	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection names
const (
	usersCollection          = "users"
	venuesCollection         = "venues"
	couponsCollection        = "coupons"
	campaignsCollection      = "campaigns"
	referralsCollection      = "referrals"
	certificationsCollection = "certification_requests"
	notificationsCollection  = "notifications"
	settingsCollection       = "app_settings"
)

// translateErr maps driver errors onto the repository sentinels
func translateErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return repositories.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return errors.Join(repositories.ErrDuplicate, err)
	}
	return err
}

// newID returns a fresh string id for documents created by this backend
func newID() string {
	return primitive.NewObjectID().Hex()
}

// pageOptions builds skip/limit/sort options. limit <= 0 means no limit.
func pageOptions(page, limit int, sortField string) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: sortField, Value: -1}})
	if limit <= 0 {
		return opts
	}
	if page < 1 {
		page = 1
	}
	return opts.SetSkip(int64((page - 1) * limit)).SetLimit(int64(limit))
}

// exists reports whether a document with the given id is stored
func exists(ctx context.Context, coll *mongo.Collection, id string) (bool, error) {
	n, err := coll.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// conditionalResult interprets a conditional single-document update. A miss
// on an existing document means the condition no longer held.
func conditionalResult(ctx context.Context, coll *mongo.Collection, id string, res *mongo.UpdateResult) (bool, error) {
	if res.MatchedCount > 0 {
		return true, nil
	}
	found, err := exists(ctx, coll, id)
	if err != nil {
		return false, err
	}
	if !found {
		return false, repositories.ErrNotFound
	}
	return false, nil
}

// decodeAll drains a cursor into a non-nil slice
func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]*T, error) {
	defer cursor.Close(ctx)
	var out []*T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []*T{}
	}
	return out, nil
}
