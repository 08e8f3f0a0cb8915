package services

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/observability"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"github.com/ArowuTest/safeplate-admin-backend/pkg/push"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// DispatcherConfig bounds a fan-out
type DispatcherConfig struct {
	Concurrency   int
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
}

// NotificationDispatcher sends one message to many users concurrently.
// Individual failures are counted, never returned.
type NotificationDispatcher struct {
	userRepo         repositories.UserRepository
	notificationRepo repositories.NotificationRepository
	gateway          push.Gateway
	limiter          *rate.Limiter
	concurrency      int
	timeout          time.Duration
	metrics          *observability.DispatchMetrics
}

// NewNotificationDispatcher creates a new NotificationDispatcher.
// notificationRepo may be nil, in which case attempts are not recorded.
func NewNotificationDispatcher(
	userRepo repositories.UserRepository,
	notificationRepo repositories.NotificationRepository,
	gateway push.Gateway,
	cfg DispatcherConfig,
) *NotificationDispatcher {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}
	return &NotificationDispatcher{
		userRepo:         userRepo,
		notificationRepo: notificationRepo,
		gateway:          gateway,
		limiter:          limiter,
		concurrency:      cfg.Concurrency,
		timeout:          cfg.Timeout,
		metrics:          observability.Dispatch(),
	}
}

// Dispatch attempts exactly one delivery per entry of userIDs and waits for
// all of them. A failed or slow attempt never cancels the others. Cancelling
// ctx does not abort attempts already scheduled; each one is bounded by the
// configured timeout instead.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, userIDs []string, msg models.Message) models.DispatchResult {
	result := models.DispatchResult{Attempted: len(userIDs)}
	if len(userIDs) == 0 {
		return result
	}
	d.metrics.ObserveBatch(msg.Type(), len(userIDs))

	base := context.WithoutCancel(ctx)
	var delivered atomic.Int64

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for _, userID := range userIDs {
		userID := userID
		g.Go(func() error {
			if d.deliver(base, userID, msg) {
				delivered.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	result.Delivered = int(delivered.Load())
	log.WithFields(log.Fields{
		"type":      msg.Type(),
		"attempted": result.Attempted,
		"delivered": result.Delivered,
	}).Info("Notification fan-out finished")
	return result
}

// deliver performs one bounded attempt and reports whether it succeeded
func (d *NotificationDispatcher) deliver(ctx context.Context, userID string, msg models.Message) bool {
	attemptCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	start := time.Now()
	record := &models.Notification{
		UserID: userID,
		Title:  msg.Title,
		Body:   msg.Body,
		Type:   msg.Type(),
		Status: models.NotificationFailed,
	}

	messageID, err := d.send(attemptCtx, userID, msg)
	switch {
	case err == nil:
		record.Status = models.NotificationSent
		record.MessageID = messageID
		record.Provider = d.gateway.Name()
	case errors.Is(err, errNoAddress):
		record.Status = models.NotificationNoAddress
		record.Error = err.Error()
	default:
		record.Error = err.Error()
		record.Provider = d.gateway.Name()
		log.WithError(err).WithField("user_id", userID).Warn("Push delivery failed")
	}

	d.metrics.ObserveAttempt(record.Type, record.Status, record.Provider, time.Since(start))
	d.record(ctx, record)
	return record.Status == models.NotificationSent
}

var errNoAddress = errors.New("user has no notification address")

func (d *NotificationDispatcher) send(ctx context.Context, userID string, msg models.Message) (string, error) {
	user, err := d.userRepo.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return "", errNoAddress
	}
	if err != nil {
		return "", err
	}
	if user.NotificationAddress == "" {
		return "", errNoAddress
	}
	if d.limiter != nil {
		if err := d.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}
	return d.gateway.Send(ctx, user.NotificationAddress, push.Message{
		Title: msg.Title,
		Body:  msg.Body,
		Data:  msg.Data,
	})
}

// record stores the attempt outcome; failures here only get logged
func (d *NotificationDispatcher) record(ctx context.Context, n *models.Notification) {
	if d.notificationRepo == nil {
		return
	}
	recordCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	if err := d.notificationRepo.Create(recordCtx, n); err != nil {
		log.WithError(err).WithField("user_id", n.UserID).Warn("Failed to record notification attempt")
	}
}
