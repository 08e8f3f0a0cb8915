package memory

import (
	"context"
	"sort"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
)

var (
	_ repositories.NotificationRepository = (*NotificationRepository)(nil)
	_ repositories.SettingsRepository     = (*SettingsRepository)(nil)
)

// NotificationRepository is the in-memory notification log
type NotificationRepository struct {
	s *Store
}

// Create appends a delivery record
func (r *NotificationRepository) Create(_ context.Context, notification *models.Notification) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if notification.ID == "" {
		notification.ID = newID()
	}
	if notification.CreatedAt.IsZero() {
		notification.CreatedAt = time.Now()
	}
	c := *notification
	r.s.notifications = append(r.s.notifications, &c)
	return nil
}

// FindByUserID lists a user's delivery records, newest first
func (r *NotificationRepository) FindByUserID(_ context.Context, userID string, pageNum, limit int) ([]*models.Notification, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	out := []*models.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			c := *n
			out = append(out, &c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, pageNum, limit), nil
}

// Count counts all delivery records
func (r *NotificationRepository) Count(_ context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.notifications)), nil
}

// SettingsRepository holds the maintenance switch in memory
type SettingsRepository struct {
	s *Store
}

// GetMaintenance returns the stored switch or a disabled default
func (r *SettingsRepository) GetMaintenance(_ context.Context) (*models.MaintenanceSettings, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.s.maintenance == nil {
		return &models.MaintenanceSettings{Message: models.DefaultMaintenanceMessage}, nil
	}
	c := *r.s.maintenance
	return &c, nil
}

// UpdateMaintenance replaces the switch
func (r *SettingsRepository) UpdateMaintenance(_ context.Context, settings *models.MaintenanceSettings) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *settings
	r.s.maintenance = &c
	return nil
}
