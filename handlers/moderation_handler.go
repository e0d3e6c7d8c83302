package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"modix/model"
	"modix/moderation"
	"modix/utils"
)

func (h *handler) handleNote(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.createInfraction(ctx, s, i, model.InfractionNotice, model.ClaimModerationNote)
}

func (h *handler) handleWarn(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.createInfraction(ctx, s, i, model.InfractionWarning, model.ClaimModerationWarn)
}

func (h *handler) handleMute(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.createInfraction(ctx, s, i, model.InfractionMute, model.ClaimModerationMute)
}

func (h *handler) handleBan(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.createInfraction(ctx, s, i, model.InfractionBan, model.ClaimModerationBan)
}

func (h *handler) handleUnmute(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.rescindActive(ctx, s, i, model.InfractionMute, model.ClaimModerationMute)
}

func (h *handler) handleUnban(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	h.rescindActive(ctx, s, i, model.InfractionBan, model.ClaimModerationBan)
}

func (h *handler) createInfraction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, typ model.InfractionType, claim model.AuthorizationClaim) {
	if !h.authorize(ctx, s, i, claim) {
		return
	}
	opts := parseOptions(i.ApplicationCommandData())
	duration, err := opts.duration("duration")
	if err != nil {
		msg, _ := userMessage(err)
		utils.SendErrorResponse(s, i, msg)
		return
	}
	if !h.deferReply(s, i, false) {
		return
	}

	res, err := h.bot.Moderation.CreateInfraction(ctx, moderation.CreateInfractionInput{
		GuildID:   i.GuildID,
		SubjectID: opts.id("user"),
		Type:      typ,
		Reason:    opts.string("reason"),
		Duration:  duration,
	}, actorOf(i))
	if err != nil {
		h.fail(s, i, "create infraction", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, resultMessage("Recorded", res))

	if typ == model.InfractionWarning || typ == model.InfractionMute {
		h.notifySubject(ctx, s, res.Infraction)
	}
}

// notifySubject tells a member about their infraction in a direct message.
// Notes stay private and banned users can no longer be reached.
func (h *handler) notifySubject(ctx context.Context, s *discordgo.Session, inf model.Infraction) {
	guildName := inf.GuildID
	if g, err := s.State.Guild(inf.GuildID); err == nil {
		guildName = g.Name
	}
	embed := &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("You received a %s in %s", strings.ToLower(string(inf.Type)), guildName),
		Description: inf.Reason,
		Color:       stateColors[model.StateActive],
	}
	if inf.Duration != nil {
		embed.Fields = []*discordgo.MessageEmbedField{{Name: "Duration", Value: utils.FormatDuration(*inf.Duration)}}
	}
	if err := utils.SendPrivateEmbedMessage(ctx, s, inf.SubjectID, embed); err != nil {
		h.log.Debug("could not notify subject", zap.Int64("infraction_id", inf.ID), zap.Error(err))
	}
}

func (h *handler) rescindActive(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, typ model.InfractionType, claim model.AuthorizationClaim) {
	if !h.authorize(ctx, s, i, claim) {
		return
	}
	if !h.deferReply(s, i, false) {
		return
	}
	opts := parseOptions(i.ApplicationCommandData())

	res, err := h.bot.Moderation.RescindInfraction(ctx, i.GuildID, opts.id("user"), typ, actorOf(i), opts.string("reason"))
	if err != nil {
		h.fail(s, i, "rescind infraction", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, resultMessage("Rescinded", res))
}
