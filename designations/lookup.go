package designations

import (
	"context"
	"fmt"

	"modix/model"
)

// HasClaim decides whether a member holds claim. A mapping for the user
// wins over mappings for their roles, and at the same level a denial wins
// over a grant. Developers hold every claim.
func (s *Service) HasClaim(ctx context.Context, guildID, userID string, roleIDs []string, claim model.AuthorizationClaim) (bool, error) {
	if _, ok := s.developers[userID]; ok {
		return true, nil
	}

	mappings, err := s.store.ListActive(ctx, model.MappingCriteria{
		GuildID:     guildID,
		Kind:        model.MappingClaim,
		Designation: string(claim),
	})
	if err != nil {
		return false, err
	}

	roles := make(map[string]struct{}, len(roleIDs))
	for _, id := range roleIDs {
		roles[id] = struct{}{}
	}

	var userGrant, userDeny, roleGrant, roleDeny bool
	for _, m := range mappings {
		switch {
		case m.UserID != "" && m.UserID == userID:
			userGrant = userGrant || m.ClaimType == model.ClaimGranted
			userDeny = userDeny || m.ClaimType == model.ClaimDenied
		case m.RoleID != "":
			if _, ok := roles[m.RoleID]; !ok {
				continue
			}
			roleGrant = roleGrant || m.ClaimType == model.ClaimGranted
			roleDeny = roleDeny || m.ClaimType == model.ClaimDenied
		}
	}

	switch {
	case userDeny:
		return false, nil
	case userGrant:
		return true, nil
	case roleDeny:
		return false, nil
	default:
		return roleGrant, nil
	}
}

// DesignatedChannels returns the channels of a guild assigned to typ.
func (s *Service) DesignatedChannels(ctx context.Context, guildID string, typ model.DesignatedChannelType) ([]string, error) {
	mappings, err := s.store.ListActive(ctx, model.MappingCriteria{
		GuildID:     guildID,
		Kind:        model.MappingDesignatedChannel,
		Designation: string(typ),
	})
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(mappings))
	for i, m := range mappings {
		ids[i] = m.ChannelID
	}
	return ids, nil
}

// MuteRoleID returns the role designated as the guild's mute role. The
// oldest mapping wins when several exist.
func (s *Service) MuteRoleID(ctx context.Context, guildID string) (string, error) {
	mappings, err := s.store.ListActive(ctx, model.MappingCriteria{
		GuildID:     guildID,
		Kind:        model.MappingDesignatedRole,
		Designation: string(model.RoleModerationMute),
	})
	if err != nil {
		return "", err
	}
	if len(mappings) == 0 {
		return "", fmt.Errorf("mute role for guild %s: %w", guildID, model.ErrNotFound)
	}
	return mappings[0].RoleID, nil
}

// IsRankRole reports whether roleID is designated as a rank.
func (s *Service) IsRankRole(ctx context.Context, guildID, roleID string) (bool, error) {
	mappings, err := s.store.ListActive(ctx, model.MappingCriteria{
		GuildID:     guildID,
		Kind:        model.MappingDesignatedRole,
		Designation: string(model.RoleRank),
		RoleID:      roleID,
	})
	if err != nil {
		return false, err
	}
	return len(mappings) > 0, nil
}
