package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
)

var (
	// ErrNotFound is returned when the addressed document does not exist
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when an insert collides with an existing id or unique key
	ErrDuplicate = errors.New("duplicate document")
)

// UserFilter narrows user listings. Nil fields match every user.
type UserFilter struct {
	Banned *bool
}

// UserRepository defines the interface for user data operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindAll(ctx context.Context, filter UserFilter, page, limit int) ([]*models.User, error)
	Count(ctx context.Context, filter UserFilter) (int64, error)
	// FindIDsBySegment returns the ids of users matching seg at call time
	FindIDsBySegment(ctx context.Context, seg models.Segment) ([]string, error)
	// ApplyPointsDelta sets points to max(0, points+entry.Delta) and appends entry
	// to the history in one atomic document update. Returns the new balance.
	ApplyPointsDelta(ctx context.Context, id string, entry models.PointsEntry) (int, error)
	SetBanned(ctx context.Context, id string, banned bool, reason, actorID string, at time.Time) error
	SetPremium(ctx context.Context, id string, premium bool, expiresAt *time.Time, actorID string) error
	// ExpirePremium clears the premium flag of users whose expiry is before now
	ExpirePremium(ctx context.Context, now time.Time) (int64, error)
}

// VenueRepository defines the interface for venue data operations
type VenueRepository interface {
	Create(ctx context.Context, venue *models.Venue) error
	FindByID(ctx context.Context, id string) (*models.Venue, error)
	FindAll(ctx context.Context, difficulty models.DifficultyLevel, page, limit int) ([]*models.Venue, error)
	// Count counts venues at difficulty, or all venues when difficulty is empty
	Count(ctx context.Context, difficulty models.DifficultyLevel) (int64, error)
	SetDifficulty(ctx context.Context, id string, level models.DifficultyLevel, actorID string) error
	SetCertification(ctx context.Context, id string, status models.CertificationStatus, actorID string) error
	RecordInspection(ctx context.Context, id string, date time.Time, status, actorID string) error
	SetBoost(ctx context.Context, id string, boosted bool, expiresAt *time.Time, actorID string) error
	ExpireBoosts(ctx context.Context, now time.Time) (int64, error)
}

// CouponRepository defines the interface for coupon data operations
type CouponRepository interface {
	// CreateBatch inserts coupons in order and stops at the first failure.
	// It returns how many coupons were persisted.
	CreateBatch(ctx context.Context, coupons []*models.Coupon) (int, error)
	FindByOwner(ctx context.Context, ownerID string, activeOnly bool, now time.Time) ([]*models.Coupon, error)
	Count(ctx context.Context) (int64, error)
}

// CampaignRepository defines the interface for campaign data operations
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	FindByID(ctx context.Context, id string) (*models.Campaign, error)
	FindAll(ctx context.Context, page, limit int) ([]*models.Campaign, error)
	Count(ctx context.Context) (int64, error)
	// SetActive stores the flag and returns the value it replaced
	SetActive(ctx context.Context, id string, active bool, actorID string) (bool, error)
}

// ReferralRepository defines the interface for referral request operations
type ReferralRepository interface {
	Create(ctx context.Context, referral *models.ReferralRequest) error
	FindByID(ctx context.Context, id string) (*models.ReferralRequest, error)
	FindByStatus(ctx context.Context, status models.ReviewStatus, page, limit int) ([]*models.ReferralRequest, error)
	CountByStatus(ctx context.Context, status models.ReviewStatus) (int64, error)
	// TransitionStatus applies change only while the stored status equals change.From.
	// It reports false when the stored status had already moved.
	TransitionStatus(ctx context.Context, id string, change models.StatusChange) (bool, error)
	// SetDecisionNote overwrites the note without touching the status
	SetDecisionNote(ctx context.Context, id string, note string, actorID string) error
	// SetResultingVenue records venueID only when no venue was recorded yet
	SetResultingVenue(ctx context.Context, id string, venueID string) (bool, error)
	// ClaimPointsAward flips pointsAwarded false->true. Only one caller ever gets true.
	ClaimPointsAward(ctx context.Context, id string) (bool, error)
	// ReleasePointsAward undoes a claim whose credit could not be applied
	ReleasePointsAward(ctx context.Context, id string) error
}

// CertificationRepository defines the interface for certification request operations
type CertificationRepository interface {
	Create(ctx context.Context, request *models.CertificationRequest) error
	FindByID(ctx context.Context, id string) (*models.CertificationRequest, error)
	FindByStatus(ctx context.Context, status models.ReviewStatus, page, limit int) ([]*models.CertificationRequest, error)
	CountByStatus(ctx context.Context, status models.ReviewStatus) (int64, error)
	TransitionStatus(ctx context.Context, id string, change models.StatusChange) (bool, error)
	SetDecisionNote(ctx context.Context, id string, note string, actorID string) error
}

// NotificationRepository defines the interface for notification log operations
type NotificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	FindByUserID(ctx context.Context, userID string, page, limit int) ([]*models.Notification, error)
	Count(ctx context.Context) (int64, error)
}

// SettingsRepository defines the interface for app settings operations
type SettingsRepository interface {
	GetMaintenance(ctx context.Context) (*models.MaintenanceSettings, error)
	UpdateMaintenance(ctx context.Context, settings *models.MaintenanceSettings) error
}
