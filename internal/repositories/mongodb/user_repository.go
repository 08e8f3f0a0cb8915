package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time check to ensure UserRepository implements the interface
var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository handles MongoDB operations for User
type UserRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{
		collection: db.Collection(usersCollection),
	}
}

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = newID()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	_, err := r.collection.InsertOne(ctx, user)
	return translateErr(err)
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&user); err != nil {
		return nil, translateErr(err)
	}
	return &user, nil
}

// FindAll retrieves a page of users matching filter, newest first
func (r *UserRepository) FindAll(ctx context.Context, filter repositories.UserFilter, page, limit int) ([]*models.User, error) {
	opts := pageOptions(page, limit, "createdAt").SetProjection(bson.M{"pointsHistory": 0})
	cursor, err := r.collection.Find(ctx, userFilter(filter), opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.User](ctx, cursor)
}

// Count counts users matching filter
func (r *UserRepository) Count(ctx context.Context, filter repositories.UserFilter) (int64, error) {
	return r.collection.CountDocuments(ctx, userFilter(filter))
}

// FindIDsBySegment returns the ids of the users currently in seg
func (r *UserRepository) FindIDsBySegment(ctx context.Context, seg models.Segment) ([]string, error) {
	filter, err := segmentFilter(seg)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	ids := []string{}
	for cursor.Next(ctx) {
		var row struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		ids = append(ids, row.ID)
	}
	return ids, cursor.Err()
}

// ApplyPointsDelta clamps and appends in a single pipeline update
func (r *UserRepository) ApplyPointsDelta(ctx context.Context, id string, entry models.PointsEntry) (int, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{"points": 1})

	var updated struct {
		Points int `bson:"points"`
	}
	err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, pointsDeltaPipeline(entry), opts).Decode(&updated)
	if err != nil {
		return 0, translateErr(err)
	}
	return updated.Points, nil
}

// SetBanned bans or unbans a user
func (r *UserRepository) SetBanned(ctx context.Context, id string, banned bool, reason, actorID string, at time.Time) error {
	var update bson.M
	if banned {
		update = bson.M{
			"$set": bson.M{
				"banned":    true,
				"banReason": reason,
				"bannedAt":  at,
				"bannedBy":  actorID,
				"updatedAt": at,
			},
		}
	} else {
		update = bson.M{
			"$set":   bson.M{"banned": false, "updatedAt": at},
			"$unset": bson.M{"banReason": "", "bannedAt": "", "bannedBy": ""},
		}
	}
	return r.updateOne(ctx, id, update)
}

// SetPremium turns premium on or off. Turning it on without expiresAt keeps
// any stored expiry; turning it off clears it.
func (r *UserRepository) SetPremium(ctx context.Context, id string, premium bool, expiresAt *time.Time, actorID string) error {
	return r.updateOne(ctx, id, premiumUpdate(premium, expiresAt, actorID, time.Now()))
}

// ExpirePremium clears premium flags whose expiry has passed
func (r *UserRepository) ExpirePremium(ctx context.Context, now time.Time) (int64, error) {
	update := bson.M{
		"$set":   bson.M{"isPremium": false, "updatedAt": now},
		"$unset": bson.M{"premiumExpiresAt": ""},
	}
	res, err := r.collection.UpdateMany(ctx, expiredFilter("isPremium", "premiumExpiresAt", now), update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *UserRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func premiumUpdate(premium bool, expiresAt *time.Time, actorID string, now time.Time) bson.M {
	set := bson.M{
		"isPremium": premium,
		"updatedAt": now,
		"updatedBy": actorID,
	}
	update := bson.M{"$set": set}
	switch {
	case !premium:
		update["$unset"] = bson.M{"premiumExpiresAt": ""}
	case expiresAt != nil:
		set["premiumExpiresAt"] = *expiresAt
	}
	return update
}

func userFilter(filter repositories.UserFilter) bson.M {
	if filter.Banned == nil {
		return bson.M{}
	}
	if *filter.Banned {
		return bson.M{"banned": true}
	}
	// documents written before banning existed have no field
	return bson.M{"banned": bson.M{"$ne": true}}
}

// segmentFilter translates a segment into a users query
func segmentFilter(seg models.Segment) (bson.M, error) {
	switch seg {
	case models.SegmentAll:
		return bson.M{}, nil
	case models.SegmentPremium:
		return bson.M{"isPremium": true}, nil
	}
	if tier, ok := seg.Tier(); ok {
		return bson.M{"tier": string(tier)}, nil
	}
	return nil, fmt.Errorf("unknown audience segment %q", seg)
}

// pointsDeltaPipeline builds the update pipeline that applies
// points = max(0, points + delta) and appends entry to pointsHistory.
func pointsDeltaPipeline(entry models.PointsEntry) bson.A {
	doc := bson.M{
		"delta":     entry.Delta,
		"reason":    entry.Reason,
		"actorId":   entry.ActorID,
		"timestamp": entry.Timestamp,
	}
	if entry.CorrelationID != "" {
		doc["correlationId"] = entry.CorrelationID
	}
	return bson.A{
		bson.M{"$set": bson.M{
			"points": bson.M{"$max": bson.A{
				0,
				bson.M{"$add": bson.A{bson.M{"$ifNull": bson.A{"$points", 0}}, entry.Delta}},
			}},
			"pointsHistory": bson.M{"$concatArrays": bson.A{
				bson.M{"$ifNull": bson.A{"$pointsHistory", bson.A{}}},
				bson.A{bson.M{"$literal": doc}},
			}},
			"updatedAt": entry.Timestamp,
		}},
	}
}

// expiredFilter matches documents whose flag is set and whose expiry lies before now
func expiredFilter(flag, expiryField string, now time.Time) bson.M {
	return bson.M{
		flag:        true,
		expiryField: bson.M{"$lt": now},
	}
}
