package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/observability"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Notifier fans a message out to users
type Notifier interface {
	Dispatch(ctx context.Context, userIDs []string, msg models.Message) models.DispatchResult
}

var _ Notifier = (*NotificationDispatcher)(nil)

// IssueResult describes one issuance batch
type IssueResult struct {
	BatchID      string                `json:"batchId"`
	Coupons      []*models.Coupon      `json:"coupons"`
	Targeted     int                   `json:"targeted"`
	Notification models.DispatchResult `json:"notification"`
}

// IssuanceError reports a batch that stopped before every coupon was stored.
// It matches ErrIssuanceFailed with errors.Is.
type IssuanceError struct {
	BatchID   string
	Persisted int
	Targeted  int
	Err       error
}

func (e *IssuanceError) Error() string {
	return fmt.Sprintf("%s: batch %s persisted %d of %d coupons: %v", ErrIssuanceFailed, e.BatchID, e.Persisted, e.Targeted, e.Err)
}

func (e *IssuanceError) Unwrap() []error {
	return []error{ErrIssuanceFailed, e.Err}
}

// RewardIssuer creates per-user coupons from a template and notifies the owners
type RewardIssuer struct {
	couponRepo repositories.CouponRepository
	resolver   *AudienceResolver
	notifier   Notifier
	validate   *validator.Validate
	metrics    *observability.EngineMetrics
	now        func() time.Time
}

// NewRewardIssuer creates a new RewardIssuer
func NewRewardIssuer(couponRepo repositories.CouponRepository, resolver *AudienceResolver, notifier Notifier) *RewardIssuer {
	return &RewardIssuer{
		couponRepo: couponRepo,
		resolver:   resolver,
		notifier:   notifier,
		validate:   validator.New(),
		metrics:    observability.Engine(),
		now:        time.Now,
	}
}

// Issue creates exactly one coupon per audience member. Coupons are written
// as one ordered batch; the first storage failure stops the batch and the
// call fails with an IssuanceError. Once every coupon is stored the owners
// are notified, and notification failures never undo the coupons.
func (s *RewardIssuer) Issue(ctx context.Context, tmpl models.CouponTemplate, audience models.AudienceSpec, actorID string) (*IssueResult, error) {
	if err := s.validate.Struct(tmpl); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTemplate, err)
	}
	now := s.now()
	if !tmpl.ExpiresAt.After(now) {
		return nil, ErrInvalidExpiry
	}

	userIDs, err := s.resolver.Resolve(ctx, audience)
	if err != nil {
		return nil, err
	}

	batchID := uuid.NewString()
	coupons := make([]*models.Coupon, 0, len(userIDs))
	for _, userID := range userIDs {
		coupons = append(coupons, &models.Coupon{
			OwnerUserID:    userID,
			Code:           CouponCode(tmpl.BaseCode, userID),
			Description:    tmpl.Description,
			DiscountValue:  tmpl.DiscountValue,
			VenueID:        tmpl.VenueID,
			VenueName:      tmpl.VenueName,
			ExpiresAt:      tmpl.ExpiresAt.UTC(),
			IssuingBatchID: batchID,
			CreatedBy:      actorID,
			CreatedAt:      now.UTC(),
		})
	}

	persisted, err := s.couponRepo.CreateBatch(ctx, coupons)
	if err != nil {
		s.metrics.ObserveIssued(persisted, true)
		log.WithError(err).WithFields(log.Fields{
			"batch_id":  batchID,
			"persisted": persisted,
			"targeted":  len(coupons),
		}).Error("Coupon batch stopped")
		return nil, &IssuanceError{BatchID: batchID, Persisted: persisted, Targeted: len(coupons), Err: err}
	}
	s.metrics.ObserveIssued(persisted, false)

	notification := s.notifier.Dispatch(ctx, userIDs, models.Message{
		Title: "New coupon available!",
		Body:  fmt.Sprintf("%s - %s%% off at %s", tmpl.Description, strconv.FormatFloat(tmpl.DiscountValue, 'f', -1, 64), tmpl.VenueName),
		Data: map[string]string{
			"type":       models.NotificationTypeCoupon,
			"couponCode": tmpl.BaseCode,
			"venueId":    tmpl.VenueID,
			"venueName":  tmpl.VenueName,
			"batchId":    batchID,
		},
	})

	log.WithFields(log.Fields{
		"batch_id":  batchID,
		"audience":  audience.String(),
		"created":   len(coupons),
		"delivered": notification.Delivered,
	}).Info("Coupons issued")

	return &IssueResult{
		BatchID:      batchID,
		Coupons:      coupons,
		Targeted:     len(userIDs),
		Notification: notification,
	}, nil
}

// CouponCode derives a user's code from the batch base code and the first
// eight characters of the user id.
func CouponCode(base, userID string) string {
	suffix := []rune(userID)
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return base + "-" + string(suffix)
}
