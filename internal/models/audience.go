package models

import (
	"fmt"
)

// Segment is a named group of users used for bulk targeting
type Segment string

const (
	SegmentAll     Segment = "all"
	SegmentPremium Segment = "premium"
	SegmentBronze  Segment = "bronze"
	SegmentSilver  Segment = "silver"
	SegmentGold    Segment = "gold"
)

// ParseSegment converts a raw string into a Segment.
func ParseSegment(raw string) (Segment, error) {
	switch s := Segment(raw); s {
	case SegmentAll, SegmentPremium, SegmentBronze, SegmentSilver, SegmentGold:
		return s, nil
	}
	return "", fmt.Errorf("unknown audience segment %q", raw)
}

// Tier returns the tier a tier segment selects on. ok is false for the
// all and premium segments.
func (s Segment) Tier() (tier Tier, ok bool) {
	switch s {
	case SegmentBronze:
		return TierBronze, true
	case SegmentSilver:
		return TierSilver, true
	case SegmentGold:
		return TierGold, true
	}
	return "", false
}

// Matches reports whether the stored attributes of u place it in s.
func (s Segment) Matches(u *User) bool {
	switch s {
	case SegmentAll:
		return true
	case SegmentPremium:
		return u.IsPremium
	case SegmentBronze, SegmentSilver, SegmentGold:
		tier, _ := s.Tier()
		return u.EffectiveTier() == tier
	}
	return false
}

// AudienceKind tells which of the AudienceSpec fields is meaningful.
type AudienceKind int

const (
	AudienceSingle AudienceKind = iota + 1
	AudienceExplicit
	AudienceSegment
)

func (k AudienceKind) String() string {
	switch k {
	case AudienceSingle:
		return "single"
	case AudienceExplicit:
		return "explicit"
	case AudienceSegment:
		return "segment"
	}
	return fmt.Sprintf("AudienceKind(%d)", int(k))
}

// AudienceSpec is an abstract description of who should receive something.
// Build one with SingleUser, ExplicitUsers or SegmentAudience.
type AudienceSpec struct {
	Kind    AudienceKind
	UserID  string
	UserIDs []string
	Segment Segment
}

// SingleUser targets exactly one user id.
func SingleUser(userID string) AudienceSpec {
	return AudienceSpec{Kind: AudienceSingle, UserID: userID}
}

// ExplicitUsers targets a caller supplied list of user ids.
func ExplicitUsers(userIDs ...string) AudienceSpec {
	return AudienceSpec{Kind: AudienceExplicit, UserIDs: userIDs}
}

// SegmentAudience targets every user in a segment at resolution time.
func SegmentAudience(segment Segment) AudienceSpec {
	return AudienceSpec{Kind: AudienceSegment, Segment: segment}
}

func (a AudienceSpec) String() string {
	switch a.Kind {
	case AudienceSingle:
		return "single(" + a.UserID + ")"
	case AudienceExplicit:
		return fmt.Sprintf("explicit(%d)", len(a.UserIDs))
	case AudienceSegment:
		return "segment(" + string(a.Segment) + ")"
	}
	return a.Kind.String()
}
