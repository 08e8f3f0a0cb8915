package services

import (
	"context"
	"fmt"

	"github.com/ArowuTest/safeplate-admin-backend/internal/models"
	"github.com/ArowuTest/safeplate-admin-backend/internal/repositories"
)

// AudienceResolver turns an audience description into concrete user ids
type AudienceResolver struct {
	userRepo repositories.UserRepository
}

// NewAudienceResolver creates a new AudienceResolver
func NewAudienceResolver(userRepo repositories.UserRepository) *AudienceResolver {
	return &AudienceResolver{
		userRepo: userRepo,
	}
}

// Resolve returns the ordered, duplicate-free user ids described by spec.
// A single user is returned as is, without checking that it exists. Explicit
// lists keep their first-seen order. Segments are evaluated against the
// store at call time.
func (r *AudienceResolver) Resolve(ctx context.Context, spec models.AudienceSpec) ([]string, error) {
	switch spec.Kind {
	case models.AudienceSingle:
		if spec.UserID == "" {
			return nil, fmt.Errorf("%w: empty user id", ErrInvalidArgument)
		}
		return []string{spec.UserID}, nil

	case models.AudienceExplicit:
		ids := dedupe(spec.UserIDs)
		if len(ids) == 0 {
			return nil, ErrEmptyAudience
		}
		return ids, nil

	case models.AudienceSegment:
		if _, err := models.ParseSegment(string(spec.Segment)); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
		}
		ids, err := r.userRepo.FindIDsBySegment(ctx, spec.Segment)
		if err != nil {
			return nil, fmt.Errorf("resolve segment %s: %w", spec.Segment, err)
		}
		ids = dedupe(ids)
		if len(ids) == 0 {
			return nil, ErrEmptyAudience
		}
		return ids, nil
	}
	return nil, fmt.Errorf("%w: unknown audience kind %s", ErrInvalidArgument, spec.Kind)
}

// dedupe drops empty and repeated ids, keeping the first occurrence
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
