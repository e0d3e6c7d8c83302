package model

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the services and the storage layer.
var (
	ErrNotFound                  = errors.New("not found")
	ErrValidation                = errors.New("validation error")
	ErrConflict                  = errors.New("conflict")
	ErrStorage                   = errors.New("storage error")
	ErrDuplicateActiveInfraction = errors.New("an active infraction of this type already exists")
	ErrNoActiveInfraction        = errors.New("no active infraction")
	ErrCampaignAlreadyOpen       = errors.New("an open campaign already exists for this user")
	ErrCampaignClosed            = errors.New("campaign is closed")
	ErrMappingExists             = errors.New("an identical mapping already exists")
	ErrActionAlreadyRecorded     = errors.New("action already recorded")
	ErrInfractionRestored        = errors.New("infraction was restored")
	ErrUnauthorized              = errors.New("missing required claim")
)

// ValidationError rejects input before anything is written.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// GatewayError describes a Discord call that failed after the matching
// audit write had already committed.
type GatewayError struct {
	Op        string
	GuildID   string
	SubjectID string
	Err       error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s for user %s in guild %s: %v", e.Op, e.SubjectID, e.GuildID, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }
