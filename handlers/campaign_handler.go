package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"modix/model"
	"modix/utils"
)

func (h *handler) handleCampaign(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := parseOptions(i.ApplicationCommandData())
	switch opts.sub {
	case "start":
		h.startCampaign(ctx, s, i, opts)
	case "comment":
		h.commentOnCampaign(ctx, s, i, opts)
	case "close":
		h.closeCampaign(ctx, s, i, opts)
	case "uncomment":
		h.deleteComment(ctx, s, i, opts)
	case "show":
		h.showCampaign(ctx, s, i, opts)
	case "list":
		h.listCampaigns(ctx, s, i, opts)
	}
}

func (h *handler) startCampaign(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimPromotionsCreateCampaign) {
		return
	}
	if !h.deferReply(s, i, false) {
		return
	}
	campaign, err := h.bot.Promotions.CreateCampaign(ctx, opts.id("user"), opts.id("role"), actorOf(i), opts.string("comment"))
	if err != nil {
		h.fail(s, i, "create campaign", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("📣 Campaign #%d opened to promote <@%s> to <@&%s>.",
		campaign.ID, campaign.SubjectID, campaign.TargetRoleID))
}

func (h *handler) commentOnCampaign(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimPromotionsComment) {
		return
	}
	if !h.deferReply(s, i, true) {
		return
	}
	comment, err := h.bot.Promotions.AddComment(ctx, opts.int("id"),
		model.CommentSentiment(opts.string("sentiment")), opts.string("content"), actorOf(i))
	if err != nil {
		h.fail(s, i, "add comment", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("✅ Comment #%d added to campaign #%d.", comment.ID, comment.CampaignID))
}

func (h *handler) closeCampaign(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimPromotionsCloseCampaign) {
		return
	}
	if !h.deferReply(s, i, false) {
		return
	}
	outcome := model.CampaignOutcome(opts.string("outcome"))
	campaign, err := h.bot.Promotions.CloseCampaign(ctx, opts.int("id"), outcome, actorOf(i))
	if err != nil {
		h.fail(s, i, "close campaign", err)
		return
	}

	msg := fmt.Sprintf("Campaign #%d closed: **%s**.", campaign.ID, outcome)
	if outcome == model.OutcomeAccepted {
		if err := h.bot.Gateway.GrantRole(ctx, i.GuildID, campaign.SubjectID, campaign.TargetRoleID); err != nil {
			h.log.Warn("failed to grant promotion role",
				zap.Int64("campaign_id", campaign.ID),
				zap.String("role_id", campaign.TargetRoleID),
				zap.Error(err))
			msg += fmt.Sprintf("\n⚠️ Could not give <@&%s> to <@%s>; please add it by hand.", campaign.TargetRoleID, campaign.SubjectID)
		} else {
			msg += fmt.Sprintf("\n🎉 <@%s> now has <@&%s>.", campaign.SubjectID, campaign.TargetRoleID)
		}
	}
	utils.SendFollowUp(s, i.Interaction, msg)
}

func (h *handler) deleteComment(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimPromotionsComment) {
		return
	}
	if !h.deferReply(s, i, true) {
		return
	}
	id := opts.int("comment_id")
	if err := h.bot.Promotions.DeleteComment(ctx, id, actorOf(i)); err != nil {
		h.fail(s, i, "delete comment", err)
		return
	}
	utils.SendFollowUp(s, i.Interaction, fmt.Sprintf("🗑️ Deleted comment #%d.", id))
}

func (h *handler) showCampaign(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimPromotionsRead) {
		return
	}
	if !h.deferReply(s, i, true) {
		return
	}
	id := opts.int("id")
	campaign, err := h.bot.Promotions.GetCampaign(ctx, i.GuildID, id)
	if err != nil {
		h.fail(s, i, "get campaign", err)
		return
	}
	comments, err := h.bot.Promotions.GetComments(ctx, i.GuildID, id)
	if err != nil {
		h.fail(s, i, "get comments", err)
		return
	}
	utils.SendFollowUpEmbeds(s, i.Interaction, campaignEmbed(campaign, comments))
}

func (h *handler) listCampaigns(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimPromotionsRead) {
		return
	}
	if !h.deferReply(s, i, true) {
		return
	}
	all, _ := opts.bool("all")
	campaigns, err := h.bot.Promotions.SearchCampaigns(ctx, model.CampaignSearchCriteria{GuildID: i.GuildID, OpenOnly: !all})
	if err != nil {
		h.fail(s, i, "search campaigns", err)
		return
	}
	if len(campaigns) == 0 {
		utils.SendFollowUp(s, i.Interaction, "No campaigns found.")
		return
	}

	var b strings.Builder
	for _, c := range campaigns {
		status := "open"
		if c.Outcome != nil {
			status = strings.ToLower(string(*c.Outcome))
		}
		line := fmt.Sprintf("`#%d` <@%s> → <@&%s> (%s)\n", c.ID, c.SubjectID, c.TargetRoleID, status)
		if b.Len()+len(line) > 1900 {
			b.WriteString("…")
			break
		}
		b.WriteString(line)
	}
	utils.SendFollowUp(s, i.Interaction, b.String())
}
