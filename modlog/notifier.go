// Package modlog posts audit embeds to a guild's designated log channels.
package modlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"modix/model"
	"modix/moderation"
)

type Level string

const (
	Info  Level = "INFO"
	Warn  Level = "WARN"
	Error Level = "ERROR"
)

func color(level Level) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

type sender interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

type channelResolver interface {
	DesignatedChannels(ctx context.Context, guildID string, typ model.DesignatedChannelType) ([]string, error)
}

// Notifier implements moderation.Notifier and promotions.Notifier.
type Notifier struct {
	session  sender
	channels channelResolver
	log      *zap.Logger
}

func New(s sender, channels channelResolver, log *zap.Logger) *Notifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Notifier{session: s, channels: channels, log: log.With(zap.String("service", "modlog"))}
}

func (n *Notifier) NotifyInfraction(ctx context.Context, action model.ActionType, res moderation.Result, actor model.Actor) {
	inf := res.Infraction
	level := Info
	if res.Pending() {
		level = Warn
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "Infraction", Value: fmt.Sprintf("#%d (%s)", inf.ID, inf.Type), Inline: true},
		{Name: "Subject", Value: mention(inf.SubjectID), Inline: true},
		{Name: "Moderator", Value: mention(actor.UserID), Inline: true},
		{Name: "Reason", Value: truncate(inf.Reason, 1024)},
	}
	if inf.Duration != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Duration", Value: inf.Duration.String(), Inline: true})
	}
	if action == model.ActionInfractionRescind && inf.RescindReason != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Rescind reason", Value: truncate(*inf.RescindReason, 1024)})
	}
	if res.Pending() {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Effect",
			Value: truncate(fmt.Sprintf("Discord call failed, queued for retry: %v", res.EffectErr), 1024),
		})
	}

	n.post(ctx, inf.GuildID, model.ChannelModerationLog, level, string(action), fields)
}

func (n *Notifier) NotifyCampaign(ctx context.Context, action model.ActionType, campaign model.PromotionCampaign, comment *model.PromotionComment, actor model.Actor) {
	fields := []*discordgo.MessageEmbedField{
		{Name: "Campaign", Value: fmt.Sprintf("#%d", campaign.ID), Inline: true},
		{Name: "Subject", Value: mention(campaign.SubjectID), Inline: true},
		{Name: "Target role", Value: "<@&" + campaign.TargetRoleID + ">", Inline: true},
		{Name: "By", Value: mention(actor.UserID), Inline: true},
	}
	if campaign.Outcome != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Outcome", Value: string(*campaign.Outcome), Inline: true})
	}
	if comment != nil && action == model.ActionCommentCreate {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  string(comment.Sentiment),
			Value: truncate(comment.Content, 1024),
		})
	}

	n.post(ctx, campaign.GuildID, model.ChannelPromotionLog, Info, string(action), fields)
}

// NotifyMapping records configuration changes in the moderation log.
func (n *Notifier) NotifyMapping(ctx context.Context, action model.ActionType, m model.Mapping, actor model.Actor) {
	target := mention(m.UserID)
	switch {
	case m.ChannelID != "":
		target = "<#" + m.ChannelID + ">"
	case m.RoleID != "":
		target = "<@&" + m.RoleID + ">"
	}
	value := m.Designation
	if m.ClaimType != "" {
		value = fmt.Sprintf("%s (%s)", m.Designation, m.ClaimType)
	}

	n.post(ctx, m.GuildID, model.ChannelModerationLog, Info, string(action), []*discordgo.MessageEmbedField{
		{Name: "Mapping", Value: fmt.Sprintf("#%d", m.ID), Inline: true},
		{Name: "Target", Value: target, Inline: true},
		{Name: "Designation", Value: value, Inline: true},
		{Name: "By", Value: mention(actor.UserID), Inline: true},
	})
}

func (n *Notifier) post(ctx context.Context, guildID string, typ model.DesignatedChannelType, level Level, title string, fields []*discordgo.MessageEmbedField) {
	channels, err := n.channels.DesignatedChannels(ctx, guildID, typ)
	if err != nil {
		n.log.Warn("failed to resolve log channels", zap.String("guild_id", guildID), zap.Error(err))
		return
	}

	embed := &discordgo.MessageEmbed{
		Title:     title,
		Color:     color(level),
		Fields:    fields,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	for _, channelID := range channels {
		if _, err := n.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx)); err != nil {
			n.log.Warn("failed to post log embed",
				zap.String("guild_id", guildID),
				zap.String("channel_id", channelID),
				zap.Error(err))
		}
	}
}

func mention(userID string) string {
	if userID == "" {
		return "-"
	}
	return "<@" + userID + ">"
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
