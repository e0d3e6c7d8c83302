package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"modix/designations"
	"modix/model"
	"modix/utils"
)

const defaultHistoryLimit = 15

func writeClaim(kind model.MappingKind) model.AuthorizationClaim {
	switch kind {
	case model.MappingDesignatedChannel:
		return model.ClaimDesignatedChannelMappingWrite
	case model.MappingDesignatedRole:
		return model.ClaimDesignatedRoleMappingWrite
	default:
		return model.ClaimAuthorizationConfigure
	}
}

func readClaims(kind model.MappingKind) []model.AuthorizationClaim {
	switch kind {
	case model.MappingDesignatedChannel:
		return []model.AuthorizationClaim{model.ClaimDesignatedChannelMappingRead, model.ClaimDesignatedChannelMappingWrite}
	case model.MappingDesignatedRole:
		return []model.AuthorizationClaim{model.ClaimDesignatedRoleMappingRead, model.ClaimDesignatedRoleMappingWrite}
	default:
		return []model.AuthorizationClaim{model.ClaimAuthorizationConfigure}
	}
}

func (h *handler) handleConfig(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	opts := parseOptions(i.ApplicationCommandData())
	switch opts.sub {
	case "designate-channel":
		h.createMapping(ctx, s, i, designations.MappingInput{
			Kind:        model.MappingDesignatedChannel,
			ChannelID:   opts.id("channel"),
			Designation: opts.string("type"),
		})
	case "designate-role":
		h.createMapping(ctx, s, i, designations.MappingInput{
			Kind:        model.MappingDesignatedRole,
			RoleID:      opts.id("role"),
			Designation: opts.string("type"),
		})
	case "grant", "deny":
		claimType := model.ClaimGranted
		if opts.sub == "deny" {
			claimType = model.ClaimDenied
		}
		h.createMapping(ctx, s, i, designations.MappingInput{
			Kind:        model.MappingClaim,
			RoleID:      opts.id("role"),
			UserID:      opts.id("user"),
			Designation: opts.string("claim"),
			ClaimType:   claimType,
		})
	case "remove":
		h.removeMapping(ctx, s, i, opts)
	case "list":
		h.listMappings(ctx, s, i, opts)
	case "history":
		h.showHistory(ctx, s, i, opts)
	}
}

func (h *handler) createMapping(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, in designations.MappingInput) {
	if !h.authorize(ctx, s, i, writeClaim(in.Kind)) {
		return
	}
	if !h.deferReply(s, i, true) {
		return
	}
	in.GuildID = i.GuildID
	actor := actorOf(i)

	id, err := h.bot.Designations.CreateMapping(ctx, in, actor)
	if err != nil {
		h.fail(s, i, "create mapping", err)
		return
	}
	m := model.Mapping{
		ID:          id,
		Kind:        in.Kind,
		GuildID:     in.GuildID,
		RoleID:      in.RoleID,
		UserID:      in.UserID,
		ChannelID:   in.ChannelID,
		Designation: in.Designation,
		ClaimType:   in.ClaimType,
	}
	h.bot.ModLog.NotifyMapping(ctx, in.Kind.CreateActionType(), m, actor)
	utils.SendFollowUp(s, i.Interaction, "✅ Added "+mappingLine(m))
}

func (h *handler) removeMapping(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	m, err := h.bot.Designations.GetMapping(ctx, i.GuildID, opts.int("id"))
	if err != nil {
		msg, _ := userMessage(err)
		utils.SendErrorResponse(s, i, msg)
		return
	}
	if !h.authorize(ctx, s, i, writeClaim(m.Kind)) {
		return
	}
	if !h.deferReply(s, i, true) {
		return
	}
	actor := actorOf(i)
	if err := h.bot.Designations.DeleteMapping(ctx, m.ID, actor); err != nil {
		h.fail(s, i, "delete mapping", err)
		return
	}
	h.bot.ModLog.NotifyMapping(ctx, m.Kind.DeleteActionType(), m, actor)
	utils.SendFollowUp(s, i.Interaction, "🗑️ Removed "+mappingLine(m))
}

func (h *handler) listMappings(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	kind := model.MappingKind(opts.string("kind"))
	if !h.authorize(ctx, s, i, readClaims(kind)...) {
		return
	}
	if !h.deferReply(s, i, true) {
		return
	}
	mappings, err := h.bot.Designations.GetActiveMappings(ctx, model.MappingCriteria{GuildID: i.GuildID, Kind: kind})
	if err != nil {
		h.fail(s, i, "list mappings", err)
		return
	}
	if len(mappings) == 0 {
		utils.SendFollowUp(s, i.Interaction, "Nothing is configured yet.")
		return
	}

	var b strings.Builder
	for _, m := range mappings {
		line := mappingLine(m) + "\n"
		if b.Len()+len(line) > 1900 {
			b.WriteString("…")
			break
		}
		b.WriteString(line)
	}
	utils.SendFollowUp(s, i.Interaction, b.String())
}

func (h *handler) showHistory(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts options) {
	if !h.authorize(ctx, s, i, model.ClaimAuthorizationConfigure) {
		return
	}
	if !h.deferReply(s, i, true) {
		return
	}
	limit := defaultHistoryLimit
	if opts.has("limit") {
		limit = int(opts.int("limit"))
	}
	entries, err := h.bot.Actions.History(ctx, i.GuildID, nil, limit)
	if err != nil {
		h.fail(s, i, "action history", err)
		return
	}
	if len(entries) == 0 {
		utils.SendFollowUp(s, i.Interaction, "The action log is empty.")
		return
	}

	var b strings.Builder
	for _, e := range entries {
		fmt.Fprintf(&b, "`#%d` %s **%s** by <@%s>\n", e.ID, timestamp(e.CreatedAt), e.Type, e.CreatedBy.UserID)
	}
	utils.SendFollowUp(s, i.Interaction, b.String())
}
