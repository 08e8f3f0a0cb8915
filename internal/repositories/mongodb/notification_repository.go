package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var _ repositories.NotificationRepository = (*NotificationRepository)(nil)

// NotificationRepository implements the repositories.NotificationRepository interface
type NotificationRepository struct {
	collection *mongo.Collection
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{
		collection: db.Collection(notificationsCollection),
	}
}

// Create records one delivery attempt
func (r *NotificationRepository) Create(ctx context.Context, notification *models.Notification) error {
	if notification.ID == "" {
		notification.ID = newID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	_, err := r.collection.InsertOne(ctx, notification)
	return translateErr(err)
}

// FindByUserID finds notifications by user with pagination
func (r *NotificationRepository) FindByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Notification, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"userId": userID}, pageOptions(page, limit, "createdAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Notification](ctx, cursor)
}

// Count counts all notifications
func (r *NotificationRepository) Count(ctx context.Context) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{})
}
