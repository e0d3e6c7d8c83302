// Package gateway pushes infraction effects to Discord.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"
)

// session is the part of *discordgo.Session the gateway calls.
type session interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildBanCreateWithReason(guildID, userID, reason string, days int, options ...discordgo.RequestOption) error
	GuildBanDelete(guildID, userID string, options ...discordgo.RequestOption) error
}

type muteRoleResolver interface {
	MuteRoleID(ctx context.Context, guildID string) (string, error)
}

// Discord implements moderation.Gateway with role and ban calls.
type Discord struct {
	session session
	roles   muteRoleResolver
}

func NewDiscord(s session, roles muteRoleResolver) *Discord {
	return &Discord{session: s, roles: roles}
}

func (d *Discord) muteRole(ctx context.Context, guildID string) (string, error) {
	roleID, err := d.roles.MuteRoleID(ctx, guildID)
	if err != nil {
		return "", fmt.Errorf("resolve mute role: %w", err)
	}
	return roleID, nil
}

// ApplyMute adds the guild's designated mute role. A member who has left
// is not an error; the role is added again when they rejoin.
func (d *Discord) ApplyMute(ctx context.Context, guildID, userID, reason string) error {
	roleID, err := d.muteRole(ctx, guildID)
	if err != nil {
		return err
	}
	err = d.session.GuildMemberRoleAdd(guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(auditReason(reason)))
	if isCode(err, discordgo.ErrCodeUnknownMember) {
		return nil
	}
	return err
}

func (d *Discord) RemoveMute(ctx context.Context, guildID, userID string) error {
	roleID, err := d.muteRole(ctx, guildID)
	if err != nil {
		return err
	}
	err = d.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx))
	if isCode(err, discordgo.ErrCodeUnknownMember) {
		return nil
	}
	return err
}

func (d *Discord) ApplyBan(ctx context.Context, guildID, userID, reason string, pruneDays int) error {
	return d.session.GuildBanCreateWithReason(guildID, userID, auditReason(reason), pruneDays, discordgo.WithContext(ctx))
}

// RemoveBan lifts a ban. Lifting a ban that no longer exists succeeds.
func (d *Discord) RemoveBan(ctx context.Context, guildID, userID string) error {
	err := d.session.GuildBanDelete(guildID, userID, discordgo.WithContext(ctx))
	if isCode(err, discordgo.ErrCodeUnknownBan) {
		return nil
	}
	return err
}

// GrantRole adds roleID to a member, used when a promotion is accepted.
func (d *Discord) GrantRole(ctx context.Context, guildID, userID, roleID string) error {
	return d.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx))
}

func isCode(err error, code int) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil && restErr.Message.Code == code {
		return true
	}
	// Unknown bans come back as a bare 404 on some API versions.
	return code == discordgo.ErrCodeUnknownBan && restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// Audit log reasons are capped at 512 characters.
func auditReason(reason string) string {
	r := []rune(reason)
	if len(r) > 512 {
		return string(r[:512])
	}
	return reason
}
