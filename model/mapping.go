package model

import "time"

// MappingKind distinguishes the configuration mappings sharing the
// create/delete action pair pattern.
type MappingKind string

const (
	MappingClaim             MappingKind = "claim"
	MappingDesignatedChannel MappingKind = "channel"
	MappingDesignatedRole    MappingKind = "role"
)

func (k MappingKind) Valid() bool {
	switch k {
	case MappingClaim, MappingDesignatedChannel, MappingDesignatedRole:
		return true
	}
	return false
}

// CreateActionType is the action recorded when a mapping of this kind is created.
func (k MappingKind) CreateActionType() ActionType {
	switch k {
	case MappingClaim:
		return ActionClaimMappingCreate
	case MappingDesignatedChannel:
		return ActionDesignatedChannelMappingCreate
	default:
		return ActionDesignatedRoleMappingCreate
	}
}

// DeleteActionType is the action recorded when a mapping of this kind is removed.
func (k MappingKind) DeleteActionType() ActionType {
	switch k {
	case MappingClaim:
		return ActionClaimMappingRescind
	case MappingDesignatedChannel:
		return ActionDesignatedChannelMappingDelete
	default:
		return ActionDesignatedRoleMappingDelete
	}
}

// ClaimMappingType says whether a claim mapping grants or denies its claim.
type ClaimMappingType string

const (
	ClaimGranted ClaimMappingType = "Granted"
	ClaimDenied  ClaimMappingType = "Denied"
)

// AuthorizationClaim is a permission that can be mapped to roles or users.
type AuthorizationClaim string

const (
	ClaimAuthorizationConfigure        AuthorizationClaim = "AuthorizationConfigure"
	ClaimDesignatedChannelMappingRead  AuthorizationClaim = "DesignatedChannelMappingRead"
	ClaimDesignatedChannelMappingWrite AuthorizationClaim = "DesignatedChannelMappingWrite"
	ClaimDesignatedRoleMappingRead     AuthorizationClaim = "DesignatedRoleMappingRead"
	ClaimDesignatedRoleMappingWrite    AuthorizationClaim = "DesignatedRoleMappingWrite"
	ClaimModerationNote                AuthorizationClaim = "ModerationNote"
	ClaimModerationWarn                AuthorizationClaim = "ModerationWarn"
	ClaimModerationMute                AuthorizationClaim = "ModerationMute"
	ClaimModerationBan                 AuthorizationClaim = "ModerationBan"
	ClaimModerationRescind             AuthorizationClaim = "ModerationRescind"
	ClaimModerationRead                AuthorizationClaim = "ModerationRead"
	ClaimModerationUpdateInfraction    AuthorizationClaim = "ModerationUpdateInfraction"
	ClaimModerationDeleteInfraction    AuthorizationClaim = "ModerationDeleteInfraction"
	ClaimPromotionsCreateCampaign      AuthorizationClaim = "PromotionsCreateCampaign"
	ClaimPromotionsComment             AuthorizationClaim = "PromotionsComment"
	ClaimPromotionsCloseCampaign       AuthorizationClaim = "PromotionsCloseCampaign"
	ClaimPromotionsRead                AuthorizationClaim = "PromotionsRead"
	ClaimLogViewMessageLogs            AuthorizationClaim = "LogViewMessageLogs"
)

// AuthorizationClaims lists every claim in declaration order.
var AuthorizationClaims = []AuthorizationClaim{
	ClaimAuthorizationConfigure,
	ClaimDesignatedChannelMappingRead,
	ClaimDesignatedChannelMappingWrite,
	ClaimDesignatedRoleMappingRead,
	ClaimDesignatedRoleMappingWrite,
	ClaimModerationNote,
	ClaimModerationWarn,
	ClaimModerationMute,
	ClaimModerationBan,
	ClaimModerationRescind,
	ClaimModerationRead,
	ClaimModerationUpdateInfraction,
	ClaimModerationDeleteInfraction,
	ClaimPromotionsCreateCampaign,
	ClaimPromotionsComment,
	ClaimPromotionsCloseCampaign,
	ClaimPromotionsRead,
	ClaimLogViewMessageLogs,
}

// DesignatedChannelType is a functional purpose a channel can be assigned to.
type DesignatedChannelType string

const (
	ChannelModerationLog          DesignatedChannelType = "ModerationLog"
	ChannelMessageLog             DesignatedChannelType = "MessageLog"
	ChannelPromotionLog           DesignatedChannelType = "PromotionLog"
	ChannelPromotionNotifications DesignatedChannelType = "PromotionNotifications"
	ChannelUnmoderated            DesignatedChannelType = "Unmoderated"
	ChannelCommunityUpdates       DesignatedChannelType = "CommunityUpdates"
)

var DesignatedChannelTypes = []DesignatedChannelType{
	ChannelModerationLog,
	ChannelMessageLog,
	ChannelPromotionLog,
	ChannelPromotionNotifications,
	ChannelUnmoderated,
	ChannelCommunityUpdates,
}

// DesignatedRoleType is a functional purpose a role can be assigned to.
type DesignatedRoleType string

const (
	RoleRank           DesignatedRoleType = "Rank"
	RoleModerationMute DesignatedRoleType = "ModerationMute"
	RolePingable       DesignatedRoleType = "Pingable"
)

var DesignatedRoleTypes = []DesignatedRoleType{
	RoleRank,
	RoleModerationMute,
	RolePingable,
}

// ValidDesignation reports whether designation is meaningful for kind.
func ValidDesignation(kind MappingKind, designation string) bool {
	switch kind {
	case MappingClaim:
		for _, c := range AuthorizationClaims {
			if string(c) == designation {
				return true
			}
		}
	case MappingDesignatedChannel:
		for _, c := range DesignatedChannelTypes {
			if string(c) == designation {
				return true
			}
		}
	case MappingDesignatedRole:
		for _, r := range DesignatedRoleTypes {
			if string(r) == designation {
				return true
			}
		}
	}
	return false
}

// Mapping is a guild-scoped configuration row. Which of RoleID, UserID and
// ChannelID is set depends on Kind: claims target a role or a user, channel
// designations a channel, role designations a role.
type Mapping struct {
	ID          int64
	Kind        MappingKind
	GuildID     string
	RoleID      string
	UserID      string
	ChannelID   string
	Designation string
	ClaimType   ClaimMappingType
	CreatedAt   time.Time
	CreatedByID string

	CreateActionID int64
	DeleteActionID *int64
}

func (m Mapping) IsActive() bool {
	return m.DeleteActionID == nil
}

// MappingCriteria filters GetActiveMappings. Zero values do not filter.
type MappingCriteria struct {
	GuildID     string
	Kind        MappingKind
	Designation string
	RoleID      string
	UserID      string
	ChannelID   string
}
