// Package jobs runs periodic maintenance: expiring premium memberships and venue boosts.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/observability"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// Scheduler owns the cron runner
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	userRepo  repositories.UserRepository
	venueRepo repositories.VenueRepository
	metrics   *observability.EngineMetrics
	now       func() time.Time
}

// NewScheduler creates a scheduler that runs the maintenance job on spec
// (standard cron syntax or descriptors such as "@every 15m").
func NewScheduler(spec string, userRepo repositories.UserRepository, venueRepo repositories.VenueRepository) *Scheduler {
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(time.UTC)),
		spec:      spec,
		userRepo:  userRepo,
		venueRepo: venueRepo,
		metrics:   observability.Engine(),
		now:       time.Now,
	}
}

// Start registers the jobs and starts the runner
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		log.Debug("[CRON] Expiring premium memberships and boosts")
		if err := s.RunOnce(ctx); err != nil {
			log.WithError(err).Error("[CRON] Maintenance run failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule maintenance %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.WithField("schedule", s.spec).Info("Job scheduler started")
	return nil
}

// Stop stops the runner and waits for a running job to finish
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Job scheduler stopped")
}

// RunOnce clears expired premium flags and boosts. Both steps run even if
// the first one fails.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	now := s.now().UTC()

	premium, premiumErr := s.userRepo.ExpirePremium(ctx, now)
	if premiumErr == nil {
		s.metrics.ObserveExpired("premium", premium)
	}
	boosts, boostErr := s.venueRepo.ExpireBoosts(ctx, now)
	if boostErr == nil {
		s.metrics.ObserveExpired("boost", boosts)
	}

	log.WithFields(log.Fields{
		"premium_expired": premium,
		"boosts_expired":  boosts,
	}).Info("Maintenance run finished")

	switch {
	case premiumErr != nil && boostErr != nil:
		return fmt.Errorf("expire premium: %v; expire boosts: %w", premiumErr, boostErr)
	case premiumErr != nil:
		return fmt.Errorf("expire premium: %w", premiumErr)
	case boostErr != nil:
		return fmt.Errorf("expire boosts: %w", boostErr)
	}
	return nil
}
