package models

import (
	"fmt"
	"time"
)

// ReviewStatus is the state of a referral or certification request
type ReviewStatus string

const (
	ReviewPending   ReviewStatus = "pending"
	ReviewApproved  ReviewStatus = "approved"
	ReviewRejected  ReviewStatus = "rejected"
	ReviewCancelled ReviewStatus = "cancelled"
)

// ParseReviewStatus validates a raw review status.
func ParseReviewStatus(raw string) (ReviewStatus, error) {
	switch s := ReviewStatus(raw); s {
	case ReviewPending, ReviewApproved, ReviewRejected, ReviewCancelled:
		return s, nil
	}
	return "", fmt.Errorf("invalid review status %q", raw)
}

// Terminal reports whether no further transition is expected from s.
func (s ReviewStatus) Terminal() bool {
	switch s {
	case ReviewApproved, ReviewRejected, ReviewCancelled:
		return true
	}
	return false
}

// ReferralRequest is a community-submitted venue proposal.
// ResultingVenueID and PointsAwarded are each set at most once.
type ReferralRequest struct {
	ID               string       `bson:"_id" json:"id"`
	SubmitterUserID  string       `bson:"userId" json:"userId"`
	VenueName        string       `bson:"venueName" json:"venueName"`
	VenueCategory    string       `bson:"venueCategory,omitempty" json:"venueCategory,omitempty"`
	Location         *GeoPoint    `bson:"location,omitempty" json:"location,omitempty"`
	Address          string       `bson:"address,omitempty" json:"address,omitempty"`
	DietaryOptions   []string     `bson:"dietaryOptions,omitempty" json:"dietaryOptions,omitempty"`
	Notes            string       `bson:"notes,omitempty" json:"notes,omitempty"`
	Status           ReviewStatus `bson:"status" json:"status"`
	DecisionNote     string       `bson:"decisionNote,omitempty" json:"decisionNote,omitempty"`
	DecidedBy        string       `bson:"decidedBy,omitempty" json:"decidedBy,omitempty"`
	DecidedAt        *time.Time   `bson:"decidedAt,omitempty" json:"decidedAt,omitempty"`
	ResultingVenueID string       `bson:"resultingVenueId,omitempty" json:"resultingVenueId,omitempty"`
	PointsAwarded    bool         `bson:"pointsAwarded" json:"pointsAwarded"`
	CreatedAt        time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// ProposesVenue reports whether the proposal has enough data to create a venue.
func (r *ReferralRequest) ProposesVenue() bool {
	return r.VenueName != "" && r.Location != nil
}

// CertificationRequest is a venue owner's request to be certified
type CertificationRequest struct {
	ID               string       `bson:"_id" json:"id"`
	VenueID          string       `bson:"venueId" json:"venueId"`
	VenueName        string       `bson:"venueName,omitempty" json:"venueName,omitempty"`
	SubmitterOwnerID string       `bson:"ownerId" json:"ownerId"`
	Source           string       `bson:"source,omitempty" json:"source,omitempty"`
	Status           ReviewStatus `bson:"status" json:"status"`
	DecisionNote     string       `bson:"decisionNote,omitempty" json:"decisionNote,omitempty"`
	DecidedBy        string       `bson:"decidedBy,omitempty" json:"decidedBy,omitempty"`
	DecidedAt        *time.Time   `bson:"decidedAt,omitempty" json:"decidedAt,omitempty"`
	CreatedAt        time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// StatusChange describes one review transition as persisted.
type StatusChange struct {
	From    ReviewStatus
	To      ReviewStatus
	Note    *string
	ActorID string
	At      time.Time
}
