package services

import (
	"context"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
	log "github.com/sirupsen/logrus"
)

// SettingsService handles app-wide settings
type SettingsService struct {
	settingsRepo repositories.SettingsRepository
	now          func() time.Time
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(settingsRepo repositories.SettingsRepository) *SettingsService {
	return &SettingsService{
		settingsRepo: settingsRepo,
		now:          time.Now,
	}
}

// GetMaintenance retrieves the maintenance switch
func (s *SettingsService) GetMaintenance(ctx context.Context) (*models.MaintenanceSettings, error) {
	return s.settingsRepo.GetMaintenance(ctx)
}

// SetMaintenance turns maintenance mode on or off. An empty message keeps the default text.
func (s *SettingsService) SetMaintenance(ctx context.Context, enabled bool, message, actorID string) (*models.MaintenanceSettings, error) {
	if message == "" {
		message = models.DefaultMaintenanceMessage
	}
	settings := &models.MaintenanceSettings{
		Enabled:   enabled,
		Message:   message,
		UpdatedAt: s.now().UTC(),
		UpdatedBy: actorID,
	}
	if err := s.settingsRepo.UpdateMaintenance(ctx, settings); err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"enabled": enabled, "actor": actorID}).Info("Maintenance mode updated")
	return settings, nil
}
