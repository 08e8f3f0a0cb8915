package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
)

var _ repositories.UserRepository = (*UserRepository)(nil)

// UserRepository is the in-memory users collection
type UserRepository struct {
	s *Store
}

// Create inserts a user
func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.ID == "" {
		user.ID = newID()
	}
	if _, ok := r.s.users[user.ID]; ok {
		return fmt.Errorf("user %s: %w", user.ID, repositories.ErrDuplicate)
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = cloneUser(user)
	return nil
}

// FindByID finds a user by ID
func (r *UserRepository) FindByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return cloneUser(u), nil
}

// FindAll lists users matching filter, newest first
func (r *UserRepository) FindAll(_ context.Context, filter repositories.UserFilter, pageNum, limit int) ([]*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	all := collect(r.s.users, userMatch(filter), cloneUser, func(a, b *models.User) bool {
		return a.CreatedAt.After(b.CreatedAt)
	})
	return page(all, pageNum, limit), nil
}

// Count counts users matching filter
func (r *UserRepository) Count(_ context.Context, filter repositories.UserFilter) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return count(r.s.users, userMatch(filter)), nil
}

func userMatch(filter repositories.UserFilter) func(*models.User) bool {
	return func(u *models.User) bool {
		return filter.Banned == nil || u.Banned == *filter.Banned
	}
}

// FindIDsBySegment returns the ids of users in seg, ordered by id
func (r *UserRepository) FindIDsBySegment(_ context.Context, seg models.Segment) ([]string, error) {
	if _, err := models.ParseSegment(string(seg)); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	matched := collect(r.s.users, seg.Matches, cloneUser, func(a, b *models.User) bool {
		return a.ID < b.ID
	})
	ids := make([]string, 0, len(matched))
	for _, u := range matched {
		ids = append(ids, u.ID)
	}
	return ids, nil
}

// ApplyPointsDelta clamps the balance at zero and appends entry
func (r *UserRepository) ApplyPointsDelta(_ context.Context, id string, entry models.PointsEntry) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return 0, repositories.ErrNotFound
	}
	u.Points = max(0, u.Points+entry.Delta)
	u.PointsHistory = append(u.PointsHistory, entry)
	u.UpdatedAt = entry.Timestamp
	return u.Points, nil
}

// SetBanned bans or unbans a user
func (r *UserRepository) SetBanned(_ context.Context, id string, banned bool, reason, actorID string, at time.Time) error {
	return r.update(id, func(u *models.User) {
		u.Banned = banned
		if banned {
			u.BanReason = reason
			u.BannedAt = &at
			u.BannedBy = actorID
		} else {
			u.BanReason = ""
			u.BannedAt = nil
			u.BannedBy = ""
		}
		u.UpdatedAt = at
	})
}

// SetPremium turns premium on or off
func (r *UserRepository) SetPremium(_ context.Context, id string, premium bool, expiresAt *time.Time, _ string) error {
	return r.update(id, func(u *models.User) {
		u.IsPremium = premium
		switch {
		case !premium:
			u.PremiumExpiresAt = nil
		case expiresAt != nil:
			u.PremiumExpiresAt = cloneTime(expiresAt)
		}
		u.UpdatedAt = time.Now()
	})
}

// ExpirePremium clears premium flags whose expiry has passed
func (r *UserRepository) ExpirePremium(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, u := range r.s.users {
		if u.IsPremium && u.PremiumExpiresAt != nil && u.PremiumExpiresAt.Before(now) {
			u.IsPremium = false
			u.PremiumExpiresAt = nil
			u.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

func (r *UserRepository) update(id string, fn func(*models.User)) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return repositories.ErrNotFound
	}
	fn(u)
	return nil
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
