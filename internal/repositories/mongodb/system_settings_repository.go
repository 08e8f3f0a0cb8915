package mongodb

import (
	"context"
	"errors"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const maintenanceDocID = "maintenance"

var _ repositories.SettingsRepository = (*SettingsRepository)(nil)

// SettingsRepository implements repositories.SettingsRepository
type SettingsRepository struct {
	collection *mongo.Collection
}

// NewSettingsRepository creates a new SettingsRepository
func NewSettingsRepository(db *mongo.Database) *SettingsRepository {
	return &SettingsRepository{
		collection: db.Collection(settingsCollection),
	}
}

// GetMaintenance retrieves the maintenance switch. A missing document reads as disabled.
func (r *SettingsRepository) GetMaintenance(ctx context.Context) (*models.MaintenanceSettings, error) {
	var settings models.MaintenanceSettings
	err := r.collection.FindOne(ctx, bson.M{"_id": maintenanceDocID}).Decode(&settings)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return &models.MaintenanceSettings{Message: models.DefaultMaintenanceMessage}, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateMaintenance upserts the maintenance switch
func (r *SettingsRepository) UpdateMaintenance(ctx context.Context, settings *models.MaintenanceSettings) error {
	update := bson.M{"$set": settings}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": maintenanceDocID}, update, options.Update().SetUpsert(true))
	return err
}
