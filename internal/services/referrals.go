package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/observability"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ReferralBonusReason is the history reason of the submitter's approval bonus
const ReferralBonusReason = "referral approved"

// referralVenueNamespace scopes the venue ids derived from referral ids
var referralVenueNamespace = uuid.MustParse("6f1c0a52-3b7e-4c1e-9a57-2f8d4b6e9c31")

// ReferralVenueID is the id of the venue created from a referral. It is
// derived from the referral id so a retried creation collides instead of
// creating a second venue.
func ReferralVenueID(referralID string) string {
	return uuid.NewSHA1(referralVenueNamespace, []byte(referralID)).String()
}

// ReviewResult describes the effects of one review transition
type ReviewResult struct {
	RequestID string              `json:"requestId"`
	Status    models.ReviewStatus `json:"status"`
	// Changed is true when this call moved the request out of pending
	Changed       bool                   `json:"changed"`
	VenueID       string                 `json:"venueId,omitempty"`
	VenueCreated  bool                   `json:"venueCreated,omitempty"`
	PointsAwarded bool                   `json:"pointsAwarded,omitempty"`
	NewBalance    *int                   `json:"newBalance,omitempty"`
	Notification  *models.DispatchResult `json:"notification,omitempty"`
	// Warnings lists side effects that failed after the status was stored
	Warnings []string `json:"warnings,omitempty"`
}

// ReferralReviewer drives the referral review state machine
type ReferralReviewer struct {
	referralRepo repositories.ReferralRepository
	venueRepo    repositories.VenueRepository
	ledger       *PointsLedger
	notifier     Notifier
	bonus        int
	metrics      *observability.EngineMetrics
	now          func() time.Time
}

// NewReferralReviewer creates a new ReferralReviewer. bonus is the number of
// points credited to the submitter on approval.
func NewReferralReviewer(
	referralRepo repositories.ReferralRepository,
	venueRepo repositories.VenueRepository,
	ledger *PointsLedger,
	notifier Notifier,
	bonus int,
) *ReferralReviewer {
	return &ReferralReviewer{
		referralRepo: referralRepo,
		venueRepo:    venueRepo,
		ledger:       ledger,
		notifier:     notifier,
		bonus:        bonus,
		metrics:      observability.Engine(),
		now:          time.Now,
	}
}

// Transition moves a pending referral to target. A resolved referral only
// accepts its own status again; re-approving finishes any approval step
// that did not complete before, without notifying the submitter twice.
// A nil note leaves the stored decision note unchanged.
func (r *ReferralReviewer) Transition(ctx context.Context, referralID string, target models.ReviewStatus, note *string, actorID string) (*ReviewResult, error) {
	if err := checkTarget(target); err != nil {
		return nil, err
	}

	referral, err := r.referralRepo.FindByID(ctx, referralID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load referral %s: %w", referralID, err)
	}

	changed := false
	if referral.Status == models.ReviewPending {
		changed, err = r.referralRepo.TransitionStatus(ctx, referralID, models.StatusChange{
			From:    models.ReviewPending,
			To:      target,
			Note:    note,
			ActorID: actorID,
			At:      r.now().UTC(),
		})
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrRequestNotFound
		}
		if err != nil {
			return nil, fmt.Errorf("update referral %s: %w", referralID, err)
		}
		if !changed {
			// Someone else resolved it between our read and write.
			if referral, err = r.referralRepo.FindByID(ctx, referralID); err != nil {
				return nil, fmt.Errorf("reload referral %s: %w", referralID, err)
			}
		}
	}

	if !changed {
		if referral.Status != target {
			return nil, fmt.Errorf("referral %s is %s: %w", referralID, referral.Status, ErrAlreadyResolved)
		}
		if note != nil {
			if err := r.referralRepo.SetDecisionNote(ctx, referralID, *note, actorID); err != nil {
				return nil, fmt.Errorf("update referral %s note: %w", referralID, err)
			}
		}
	}

	result := &ReviewResult{RequestID: referralID, Status: target, Changed: changed}
	if changed {
		r.metrics.ObserveTransition("referral", string(target))
	}
	if target == models.ReviewApproved {
		r.applyApproval(ctx, referral, actorID, result)
	}

	log.WithFields(log.Fields{
		"referral_id": referralID,
		"status":      target,
		"changed":     changed,
		"venue_id":    result.VenueID,
		"points":      result.PointsAwarded,
		"warnings":    len(result.Warnings),
	}).Info("Referral reviewed")
	return result, nil
}

// applyApproval runs the one-time approval effects in order. Each step is
// guarded by its own conditional write, so running it again is harmless.
func (r *ReferralReviewer) applyApproval(ctx context.Context, referral *models.ReferralRequest, actorID string, result *ReviewResult) {
	if err := r.ensureVenue(ctx, referral, result); err != nil {
		log.WithError(err).WithField("referral_id", referral.ID).Error("Referral venue creation failed")
		result.Warnings = append(result.Warnings, "venue: "+err.Error())
	}

	if err := r.awardPoints(ctx, referral, actorID, result); err != nil {
		log.WithError(err).WithField("referral_id", referral.ID).Error("Referral bonus failed")
		result.Warnings = append(result.Warnings, "points: "+err.Error())
	}

	if !result.Changed {
		return
	}
	notification := r.notifier.Dispatch(ctx, []string{referral.SubmitterUserID}, r.approvalMessage(referral, result))
	result.Notification = &notification
}

func (r *ReferralReviewer) ensureVenue(ctx context.Context, referral *models.ReferralRequest, result *ReviewResult) error {
	if referral.ResultingVenueID != "" {
		result.VenueID = referral.ResultingVenueID
		return nil
	}
	if !referral.ProposesVenue() {
		return nil
	}

	venue := &models.Venue{
		ID:                  ReferralVenueID(referral.ID),
		Name:                referral.VenueName,
		Category:            referral.VenueCategory,
		Location:            *referral.Location,
		Address:             referral.Address,
		DietaryOptions:      referral.DietaryOptions,
		DifficultyLevel:     models.DifficultyPopular,
		CertificationStatus: models.CertificationNone,
		Boosted:             false,
		OriginReferralID:    referral.ID,
	}
	created := true
	if err := r.venueRepo.Create(ctx, venue); err != nil {
		if !errors.Is(err, repositories.ErrDuplicate) {
			return err
		}
		created = false
	}

	linked, err := r.referralRepo.SetResultingVenue(ctx, referral.ID, venue.ID)
	if err != nil {
		return err
	}
	if !linked {
		current, err := r.referralRepo.FindByID(ctx, referral.ID)
		if err != nil {
			return err
		}
		result.VenueID = current.ResultingVenueID
		result.VenueCreated = created && current.ResultingVenueID == venue.ID
		return nil
	}
	result.VenueID = venue.ID
	result.VenueCreated = created
	return nil
}

func (r *ReferralReviewer) awardPoints(ctx context.Context, referral *models.ReferralRequest, actorID string, result *ReviewResult) error {
	if referral.PointsAwarded {
		return nil
	}
	claimed, err := r.referralRepo.ClaimPointsAward(ctx, referral.ID)
	if err != nil {
		return err
	}
	if !claimed {
		return nil
	}

	balance, err := r.ledger.CreditWithCorrelation(ctx, referral.SubmitterUserID, r.bonus, ReferralBonusReason, actorID, referral.ID)
	if err != nil {
		if releaseErr := r.referralRepo.ReleasePointsAward(ctx, referral.ID); releaseErr != nil {
			log.WithError(releaseErr).WithField("referral_id", referral.ID).Error("Failed to release referral points claim")
		}
		return err
	}
	result.PointsAwarded = true
	result.NewBalance = &balance
	return nil
}

func (r *ReferralReviewer) approvalMessage(referral *models.ReferralRequest, result *ReviewResult) models.Message {
	body := fmt.Sprintf("Thanks! %s was approved.", referral.VenueName)
	if referral.VenueName == "" {
		body = "Thanks! Your referral was approved."
	}
	if result.PointsAwarded {
		body += fmt.Sprintf(" You earned %d points.", r.bonus)
	}
	data := map[string]string{
		"type":       models.NotificationTypeReferral,
		"referralId": referral.ID,
		"status":     string(models.ReviewApproved),
	}
	if result.VenueID != "" {
		data["venueId"] = result.VenueID
	}
	return models.Message{Title: "Referral approved!", Body: body, Data: data}
}

// ListReferrals lists referral requests by status; an empty status lists all
func (r *ReferralReviewer) ListReferrals(ctx context.Context, status models.ReviewStatus, page, limit int) ([]*models.ReferralRequest, error) {
	return r.referralRepo.FindByStatus(ctx, status, page, limit)
}

// checkTarget accepts only the statuses a pending request may move to
func checkTarget(target models.ReviewStatus) error {
	switch target {
	case models.ReviewApproved, models.ReviewRejected, models.ReviewCancelled:
		return nil
	}
	return fmt.Errorf("%w: cannot move a request to %q", ErrInvalidTransition, target)
}
