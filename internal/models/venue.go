package models

import (
	"fmt"
	"time"
)

// DifficultyLevel classifies how hard a venue is for users with dietary restrictions
type DifficultyLevel string

const (
	DifficultyPopular      DifficultyLevel = "popular"
	DifficultyIntermediate DifficultyLevel = "intermediate"
	DifficultyTechnical    DifficultyLevel = "technical"
)

// ParseDifficultyLevel validates a raw difficulty level.
func ParseDifficultyLevel(raw string) (DifficultyLevel, error) {
	switch d := DifficultyLevel(raw); d {
	case DifficultyPopular, DifficultyIntermediate, DifficultyTechnical:
		return d, nil
	}
	return "", fmt.Errorf("invalid difficulty level %q (use popular, intermediate or technical)", raw)
}

// CertificationStatus is the venue certification lifecycle
type CertificationStatus string

const (
	CertificationNone      CertificationStatus = "none"
	CertificationPending   CertificationStatus = "pending"
	CertificationScheduled CertificationStatus = "scheduled"
	CertificationCertified CertificationStatus = "certified"
)

// ParseCertificationStatus validates a raw certification status.
func ParseCertificationStatus(raw string) (CertificationStatus, error) {
	switch c := CertificationStatus(raw); c {
	case CertificationNone, CertificationPending, CertificationScheduled, CertificationCertified:
		return c, nil
	}
	return "", fmt.Errorf("invalid certification status %q", raw)
}

// GeoPoint is a latitude/longitude pair
type GeoPoint struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Venue represents an establishment listed in the app
type Venue struct {
	ID                   string              `bson:"_id" json:"id"`
	Name                 string              `bson:"name" json:"name"`
	Category             string              `bson:"category,omitempty" json:"category,omitempty"`
	Location             GeoPoint            `bson:"location" json:"location"`
	Address              string              `bson:"address,omitempty" json:"address,omitempty"`
	DietaryOptions       []string            `bson:"dietaryOptions,omitempty" json:"dietaryOptions,omitempty"`
	DifficultyLevel      DifficultyLevel     `bson:"difficultyLevel" json:"difficultyLevel"`
	CertificationStatus  CertificationStatus `bson:"certificationStatus" json:"certificationStatus"`
	Boosted              bool                `bson:"boosted" json:"boosted"`
	BoostExpiresAt       *time.Time          `bson:"boostExpiresAt,omitempty" json:"boostExpiresAt,omitempty"`
	OriginReferralID     string              `bson:"originReferralId,omitempty" json:"originReferralId,omitempty"`
	LastInspectionDate   *time.Time          `bson:"lastInspectionDate,omitempty" json:"lastInspectionDate,omitempty"`
	LastInspectionStatus string              `bson:"lastInspectionStatus,omitempty" json:"lastInspectionStatus,omitempty"`
	UpdatedBy            string              `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	CreatedAt            time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt            time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// BoostActive reports whether the venue is boosted at t.
func (v *Venue) BoostActive(t time.Time) bool {
	if !v.Boosted {
		return false
	}
	return v.BoostExpiresAt == nil || t.Before(*v.BoostExpiresAt)
}
