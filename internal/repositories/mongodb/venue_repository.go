package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ repositories.VenueRepository = (*VenueRepository)(nil)

// VenueRepository handles MongoDB operations for Venue
type VenueRepository struct {
	collection *mongo.Collection
}

// NewVenueRepository creates a new VenueRepository
func NewVenueRepository(db *mongo.Database) *VenueRepository {
	return &VenueRepository{
		collection: db.Collection(venuesCollection),
	}
}

// Create inserts a venue. A caller supplied id that already exists yields ErrDuplicate.
func (r *VenueRepository) Create(ctx context.Context, venue *models.Venue) error {
	if venue.ID == "" {
		venue.ID = newID()
	}
	now := time.Now()
	venue.CreatedAt = now
	venue.UpdatedAt = now
	_, err := r.collection.InsertOne(ctx, venue)
	return translateErr(err)
}

// FindByID finds a venue by ID
func (r *VenueRepository) FindByID(ctx context.Context, id string) (*models.Venue, error) {
	var venue models.Venue
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&venue); err != nil {
		return nil, translateErr(err)
	}
	return &venue, nil
}

// FindAll lists venues, optionally restricted to one difficulty level
func (r *VenueRepository) FindAll(ctx context.Context, difficulty models.DifficultyLevel, page, limit int) ([]*models.Venue, error) {
	cursor, err := r.collection.Find(ctx, venueFilter(difficulty), pageOptions(page, limit, "createdAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Venue](ctx, cursor)
}

// Count counts venues matching the same filter as FindAll
func (r *VenueRepository) Count(ctx context.Context, difficulty models.DifficultyLevel) (int64, error) {
	return r.collection.CountDocuments(ctx, venueFilter(difficulty))
}

// SetDifficulty updates the difficulty level
func (r *VenueRepository) SetDifficulty(ctx context.Context, id string, level models.DifficultyLevel, actorID string) error {
	return r.set(ctx, id, bson.M{"difficultyLevel": level}, nil, actorID)
}

// SetCertification updates the certification status
func (r *VenueRepository) SetCertification(ctx context.Context, id string, status models.CertificationStatus, actorID string) error {
	return r.set(ctx, id, bson.M{"certificationStatus": status}, nil, actorID)
}

// RecordInspection stores the outcome of the latest inspection
func (r *VenueRepository) RecordInspection(ctx context.Context, id string, date time.Time, status, actorID string) error {
	return r.set(ctx, id, bson.M{"lastInspectionDate": date, "lastInspectionStatus": status}, nil, actorID)
}

// SetBoost boosts a venue until expiresAt, or removes the boost
func (r *VenueRepository) SetBoost(ctx context.Context, id string, boosted bool, expiresAt *time.Time, actorID string) error {
	if boosted && expiresAt != nil {
		return r.set(ctx, id, bson.M{"boosted": true, "boostExpiresAt": *expiresAt}, nil, actorID)
	}
	return r.set(ctx, id, bson.M{"boosted": boosted}, bson.M{"boostExpiresAt": ""}, actorID)
}

// ExpireBoosts removes boosts whose expiry has passed
func (r *VenueRepository) ExpireBoosts(ctx context.Context, now time.Time) (int64, error) {
	update := bson.M{
		"$set":   bson.M{"boosted": false, "updatedAt": now},
		"$unset": bson.M{"boostExpiresAt": ""},
	}
	res, err := r.collection.UpdateMany(ctx, expiredFilter("boosted", "boostExpiresAt", now), update)
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

func (r *VenueRepository) set(ctx context.Context, id string, set, unset bson.M, actorID string) error {
	set["updatedAt"] = time.Now()
	set["updatedBy"] = actorID
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func venueFilter(difficulty models.DifficultyLevel) bson.M {
	if difficulty == "" {
		return bson.M{}
	}
	return bson.M{"difficultyLevel": difficulty}
}
