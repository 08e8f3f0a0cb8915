package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/observability"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// PointsLedger is the only writer of user point balances
type PointsLedger struct {
	userRepo repositories.UserRepository
	metrics  *observability.EngineMetrics
	now      func() time.Time
}

// NewPointsLedger creates a new PointsLedger
func NewPointsLedger(userRepo repositories.UserRepository) *PointsLedger {
	return &PointsLedger{
		userRepo: userRepo,
		metrics:  observability.Engine(),
		now:      time.Now,
	}
}

// Credit applies delta to a user's balance and records it in the history.
// The balance never goes below zero; the history keeps the requested delta.
func (l *PointsLedger) Credit(ctx context.Context, userID string, delta int, reason, actorID string) (int, error) {
	return l.CreditWithCorrelation(ctx, userID, delta, reason, actorID, "")
}

// CreditWithCorrelation is Credit with a correlation id stored on the
// history entry, linking it to the operation that caused it.
func (l *PointsLedger) CreditWithCorrelation(ctx context.Context, userID string, delta int, reason, actorID, correlationID string) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
	}
	entry := models.PointsEntry{
		Delta:         delta,
		Reason:        reason,
		ActorID:       actorID,
		Timestamp:     l.now().UTC(),
		CorrelationID: correlationID,
	}

	balance, err := l.userRepo.ApplyPointsDelta(ctx, userID, entry)
	if errors.Is(err, repositories.ErrNotFound) {
		return 0, fmt.Errorf("credit %s: %w", userID, ErrUserNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("credit %s: %w", userID, err)
	}

	l.metrics.ObserveCredit(delta, balance == 0)
	log.WithFields(log.Fields{
		"user_id": userID,
		"delta":   delta,
		"balance": balance,
		"actor":   actorID,
		"reason":  reason,
	}).Debug("Points credited")
	return balance, nil
}

// Balance returns the current balance and full history of a user.
func (l *PointsLedger) Balance(ctx context.Context, userID string) (int, []models.PointsEntry, error) {
	user, err := l.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return 0, nil, ErrUserNotFound
	}
	if err != nil {
		return 0, nil, err
	}
	history := user.PointsHistory
	if history == nil {
		history = []models.PointsEntry{}
	}
	return user.Points, history, nil
}
