package model

import "time"

// InfractionType is the kind of moderation effect an infraction represents.
type InfractionType string

const (
	InfractionNotice  InfractionType = "Notice"
	InfractionWarning InfractionType = "Warning"
	InfractionMute    InfractionType = "Mute"
	InfractionBan     InfractionType = "Ban"
)

// Valid reports whether t is a known infraction type.
func (t InfractionType) Valid() bool {
	switch t {
	case InfractionNotice, InfractionWarning, InfractionMute, InfractionBan:
		return true
	}
	return false
}

// Exclusive reports whether at most one active infraction of this type may
// exist per guild member.
func (t InfractionType) Exclusive() bool {
	return t == InfractionMute || t == InfractionBan
}

// PendingEffect marks an infraction whose real-world effect still has to be
// pushed to Discord by the reconciliation pass.
type PendingEffect string

const (
	EffectNone   PendingEffect = ""
	EffectApply  PendingEffect = "apply"
	EffectRemove PendingEffect = "remove"
)

// InfractionState is the lifecycle state of an infraction at a point in time.
type InfractionState string

const (
	StateActive    InfractionState = "Active"
	StateExpired   InfractionState = "Expired"
	StateRescinded InfractionState = "Rescinded"
	StateDeleted   InfractionState = "Deleted"
)

// Infraction is one recorded moderation effect against a guild member.
type Infraction struct {
	ID          int64
	GuildID     string
	SubjectID   string
	Type        InfractionType
	Reason      string
	Duration    *time.Duration // nil means permanent
	CreatedAt   time.Time
	CreatedByID string

	RescindReason *string

	CreateActionID  int64
	RescindActionID *int64
	UpdateActionID  *int64
	RestoreActionID *int64
	DeleteActionID  *int64

	PendingEffect PendingEffect
}

// ExpiresAt returns the moment a temporary infraction lapses.
func (i Infraction) ExpiresAt() (time.Time, bool) {
	if i.Duration == nil {
		return time.Time{}, false
	}
	return i.CreatedAt.Add(*i.Duration), true
}

// IsRescinded reports whether the infraction is currently rescinded.
// A restored infraction is no longer rescinded.
func (i Infraction) IsRescinded() bool {
	return i.RescindActionID != nil && i.RestoreActionID == nil
}

// IsDeleted reports whether the infraction was removed from search results.
func (i Infraction) IsDeleted() bool {
	return i.DeleteActionID != nil
}

// IsExpired reports whether a temporary infraction has run its course at now.
func (i Infraction) IsExpired(now time.Time) bool {
	expiresAt, ok := i.ExpiresAt()
	return ok && !now.Before(expiresAt)
}

// IsActive reports whether the infraction is in force at now.
func (i Infraction) IsActive(now time.Time) bool {
	return i.State(now) == StateActive
}

// State derives the lifecycle state at now. Expiry is never stored.
func (i Infraction) State(now time.Time) InfractionState {
	switch {
	case i.IsDeleted():
		return StateDeleted
	case i.IsRescinded():
		return StateRescinded
	case i.IsExpired(now):
		return StateExpired
	default:
		return StateActive
	}
}

// InfractionSortField is a column infractions can be ordered by.
type InfractionSortField string

const (
	SortByID      InfractionSortField = "id"
	SortByCreated InfractionSortField = "created"
	SortByType    InfractionSortField = "type"
	SortBySubject InfractionSortField = "subject"
)

// InfractionSort is one ordering key of a search.
type InfractionSort struct {
	Field      InfractionSortField
	Descending bool
}

// InfractionSearchCriteria filters SearchInfractions. Zero values do not filter.
type InfractionSearchCriteria struct {
	GuildID     string
	SubjectID   string
	CreatedByID string
	Types       []InfractionType
	IsDeleted   *bool
	IsRescinded *bool
	// ActiveAt, when set, keeps only infractions in force at that moment.
	ActiveAt    *time.Time
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}
