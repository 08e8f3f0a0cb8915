package services

import "errors"

// Audience and issuance errors
var (
	// ErrEmptyAudience is returned when a segment or explicit list resolves to nobody
	ErrEmptyAudience = errors.New("audience resolved to no users")
	// ErrInvalidTemplate is returned for a malformed coupon template
	ErrInvalidTemplate = errors.New("invalid coupon template")
	// ErrInvalidExpiry is returned when a coupon template expires in the past
	ErrInvalidExpiry = errors.New("coupon expiry must be in the future")
	// ErrIssuanceFailed is returned when a coupon batch could not be fully persisted
	ErrIssuanceFailed = errors.New("coupon issuance failed")
)

// Lookup errors
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrVenueNotFound    = errors.New("venue not found")
	ErrRequestNotFound  = errors.New("request not found")
	ErrCampaignNotFound = errors.New("campaign not found")
)

// State machine errors
var (
	// ErrAlreadyResolved is returned when a resolved request is moved to a different status
	ErrAlreadyResolved = errors.New("request already resolved")
	// ErrInvalidTransition is returned for targets the state machine does not accept
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ErrInvalidArgument is returned for malformed input to admin operations
var ErrInvalidArgument = errors.New("invalid argument")
