package mongodb

import (
	"context"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	_ repositories.ReferralRepository      = (*ReferralRepository)(nil)
	_ repositories.CertificationRepository = (*CertificationRepository)(nil)
)

// ReferralRepository handles MongoDB operations for ReferralRequest
type ReferralRepository struct {
	collection *mongo.Collection
}

// NewReferralRepository creates a new ReferralRepository
func NewReferralRepository(db *mongo.Database) *ReferralRepository {
	return &ReferralRepository{
		collection: db.Collection(referralsCollection),
	}
}

// Create inserts a referral request
func (r *ReferralRepository) Create(ctx context.Context, referral *models.ReferralRequest) error {
	if referral.ID == "" {
		referral.ID = newID()
	}
	if referral.Status == "" {
		referral.Status = models.ReviewPending
	}
	referral.CreatedAt = time.Now()
	referral.UpdatedAt = referral.CreatedAt
	_, err := r.collection.InsertOne(ctx, referral)
	return translateErr(err)
}

// FindByID finds a referral request by ID
func (r *ReferralRepository) FindByID(ctx context.Context, id string) (*models.ReferralRequest, error) {
	var referral models.ReferralRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&referral); err != nil {
		return nil, translateErr(err)
	}
	return &referral, nil
}

// FindByStatus lists referral requests in a status; an empty status lists all
func (r *ReferralRepository) FindByStatus(ctx context.Context, status models.ReviewStatus, page, limit int) ([]*models.ReferralRequest, error) {
	cursor, err := r.collection.Find(ctx, statusFilter(status), pageOptions(page, limit, "createdAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.ReferralRequest](ctx, cursor)
}

// CountByStatus counts referral requests in a status; an empty status counts all
func (r *ReferralRepository) CountByStatus(ctx context.Context, status models.ReviewStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, statusFilter(status))
}

// TransitionStatus moves the request from change.From to change.To
func (r *ReferralRepository) TransitionStatus(ctx context.Context, id string, change models.StatusChange) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, transitionFilter(id, change.From), transitionUpdate(change))
	if err != nil {
		return false, err
	}
	return conditionalResult(ctx, r.collection, id, res)
}

// SetDecisionNote overwrites the decision note
func (r *ReferralRepository) SetDecisionNote(ctx context.Context, id string, note string, actorID string) error {
	return setDecisionNote(ctx, r.collection, id, note, actorID)
}

// SetResultingVenue records the venue created from this referral, once
func (r *ReferralRepository) SetResultingVenue(ctx context.Context, id string, venueID string) (bool, error) {
	filter := bson.M{"_id": id, "resultingVenueId": bson.M{"$in": bson.A{nil, ""}}}
	update := bson.M{"$set": bson.M{"resultingVenueId": venueID, "updatedAt": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return conditionalResult(ctx, r.collection, id, res)
}

// ClaimPointsAward flips pointsAwarded to true if no one has yet
func (r *ReferralRepository) ClaimPointsAward(ctx context.Context, id string) (bool, error) {
	filter := bson.M{"_id": id, "pointsAwarded": bson.M{"$ne": true}}
	update := bson.M{"$set": bson.M{"pointsAwarded": true, "updatedAt": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}
	return conditionalResult(ctx, r.collection, id, res)
}

// ReleasePointsAward resets pointsAwarded after a failed credit
func (r *ReferralRepository) ReleasePointsAward(ctx context.Context, id string) error {
	update := bson.M{"$set": bson.M{"pointsAwarded": false, "updatedAt": time.Now()}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// CertificationRepository handles MongoDB operations for CertificationRequest
type CertificationRepository struct {
	collection *mongo.Collection
}

// NewCertificationRepository creates a new CertificationRepository
func NewCertificationRepository(db *mongo.Database) *CertificationRepository {
	return &CertificationRepository{
		collection: db.Collection(certificationsCollection),
	}
}

// Create inserts a certification request
func (r *CertificationRepository) Create(ctx context.Context, request *models.CertificationRequest) error {
	if request.ID == "" {
		request.ID = newID()
	}
	if request.Status == "" {
		request.Status = models.ReviewPending
	}
	request.CreatedAt = time.Now()
	request.UpdatedAt = request.CreatedAt
	_, err := r.collection.InsertOne(ctx, request)
	return translateErr(err)
}

// FindByID finds a certification request by ID
func (r *CertificationRepository) FindByID(ctx context.Context, id string) (*models.CertificationRequest, error) {
	var request models.CertificationRequest
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&request); err != nil {
		return nil, translateErr(err)
	}
	return &request, nil
}

// FindByStatus lists certification requests in a status; an empty status lists all
func (r *CertificationRepository) FindByStatus(ctx context.Context, status models.ReviewStatus, page, limit int) ([]*models.CertificationRequest, error) {
	cursor, err := r.collection.Find(ctx, statusFilter(status), pageOptions(page, limit, "createdAt"))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.CertificationRequest](ctx, cursor)
}

// TransitionStatus moves the request from change.From to change.To
func (r *CertificationRepository) CountByStatus(ctx context.Context, status models.ReviewStatus) (int64, error) {
	return r.collection.CountDocuments(ctx, statusFilter(status))
}

func (r *CertificationRepository) TransitionStatus(ctx context.Context, id string, change models.StatusChange) (bool, error) {
	res, err := r.collection.UpdateOne(ctx, transitionFilter(id, change.From), transitionUpdate(change))
	if err != nil {
		return false, err
	}
	return conditionalResult(ctx, r.collection, id, res)
}

// SetDecisionNote overwrites the decision note
func (r *CertificationRepository) SetDecisionNote(ctx context.Context, id string, note string, actorID string) error {
	return setDecisionNote(ctx, r.collection, id, note, actorID)
}

func setDecisionNote(ctx context.Context, coll *mongo.Collection, id, note, actorID string) error {
	update := bson.M{"$set": bson.M{"decisionNote": note, "decidedBy": actorID, "updatedAt": time.Now()}}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func statusFilter(status models.ReviewStatus) bson.M {
	if status == "" {
		return bson.M{}
	}
	return bson.M{"status": status}
}

// transitionFilter only matches while the stored status is still from
func transitionFilter(id string, from models.ReviewStatus) bson.M {
	return bson.M{"_id": id, "status": from}
}

func transitionUpdate(change models.StatusChange) bson.M {
	set := bson.M{
		"status":    change.To,
		"decidedBy": change.ActorID,
		"decidedAt": change.At,
		"updatedAt": change.At,
	}
	if change.Note != nil {
		set["decisionNote"] = *change.Note
	}
	return bson.M{"$set": set}
}
