package model

import "time"

// ActionType identifies what kind of state change an ActionLogEntry records.
type ActionType string

const (
	ActionInfractionCreate  ActionType = "InfractionCreate"
	ActionInfractionRescind ActionType = "InfractionRescind"
	ActionInfractionUpdate  ActionType = "InfractionUpdate"
	ActionInfractionRestore ActionType = "InfractionRestore"
	ActionInfractionDelete  ActionType = "InfractionDelete"

	ActionCampaignCreate ActionType = "CampaignCreate"
	ActionCampaignClose  ActionType = "CampaignClose"
	ActionCommentCreate  ActionType = "CommentCreate"
	ActionCommentDelete  ActionType = "CommentDelete"

	ActionClaimMappingCreate             ActionType = "ClaimMappingCreate"
	ActionClaimMappingRescind            ActionType = "ClaimMappingRescind"
	ActionDesignatedChannelMappingCreate ActionType = "DesignatedChannelMappingCreate"
	ActionDesignatedChannelMappingDelete ActionType = "DesignatedChannelMappingDelete"
	ActionDesignatedRoleMappingCreate    ActionType = "DesignatedRoleMappingCreate"
	ActionDesignatedRoleMappingDelete    ActionType = "DesignatedRoleMappingDelete"

	ActionTagCreate ActionType = "TagActionCreate"
	ActionTagModify ActionType = "TagActionModify"
	ActionTagDelete ActionType = "TagActionDelete"
)

var actionTypes = map[ActionType]struct{}{
	ActionInfractionCreate:               {},
	ActionInfractionRescind:              {},
	ActionInfractionUpdate:               {},
	ActionInfractionRestore:              {},
	ActionInfractionDelete:               {},
	ActionCampaignCreate:                 {},
	ActionCampaignClose:                  {},
	ActionCommentCreate:                  {},
	ActionCommentDelete:                  {},
	ActionClaimMappingCreate:             {},
	ActionClaimMappingRescind:            {},
	ActionDesignatedChannelMappingCreate: {},
	ActionDesignatedChannelMappingDelete: {},
	ActionDesignatedRoleMappingCreate:    {},
	ActionDesignatedRoleMappingDelete:    {},
	ActionTagCreate:                      {},
	ActionTagModify:                      {},
	ActionTagDelete:                      {},
}

// Valid reports whether t is a known action type.
func (t ActionType) Valid() bool {
	_, ok := actionTypes[t]
	return ok
}

// ActionLogEntry is an immutable record of one state-changing operation.
// Every infraction, campaign, comment and mapping references the entries
// that created and later changed it.
type ActionLogEntry struct {
	ID        int64
	GuildID   string
	Type      ActionType
	CreatedAt time.Time
	CreatedBy Actor

	// OriginalInfractionReason is only set on InfractionUpdate entries.
	OriginalInfractionReason *string
}
