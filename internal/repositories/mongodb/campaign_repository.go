package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.CampaignRepository = (*CampaignRepository)(nil)

// CampaignRepository implements the repositories.CampaignRepository interface
type CampaignRepository struct {
	collection *mongo.Collection
}

// NewCampaignRepository creates a new CampaignRepository
func NewCampaignRepository(db *mongo.Database) *CampaignRepository {
	return &CampaignRepository{
		collection: db.Collection(campaignsCollection),
	}
}

// Create creates a new campaign
func (r *CampaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		campaign.ID = newID()
	}
	campaign.CreatedAt = time.Now()
	campaign.UpdatedAt = campaign.CreatedAt
	if campaign.Rewards == nil {
		campaign.Rewards = []models.RewardDescriptor{}
	}
	_, err := r.collection.InsertOne(ctx, campaign)
	return translateErr(err)
}

// FindByID finds a campaign by ID
func (r *CampaignRepository) FindByID(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&campaign); err != nil {
		return nil, translateErr(err)
	}
	return &campaign, nil
}

// FindAll finds all campaigns with pagination
func (r *CampaignRepository) FindAll(ctx context.Context, page, limit int) ([]*models.Campaign, error) {
	cursor, err := r.collection.Find(ctx, bson.M{}, pageOptions(page, limit, "startAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Campaign](ctx, cursor)
}

// Count counts all campaigns
func (r *CampaignRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}

// SetActive swaps the isActive flag atomically and returns the previous value
func (r *CampaignRepository) SetActive(ctx context.Context, id string, active bool, actorID string) (bool, error) {
	update := bson.M{
		"$set": bson.M{
			"isActive":  active,
			"updatedBy": actorID,
			"updatedAt": time.Now(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.Before).
		SetProjection(bson.M{"isActive": 1})

	var previous struct {
		IsActive bool `bson:"isActive"`
	}
	if err := r.collection.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&previous); err != nil {
		return false, translateErr(err)
	}
	return previous.IsActive, nil
}
