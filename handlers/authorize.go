package handlers

import (
	"context"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"modix/model"
	"modix/utils"
)

func actorOf(i *discordgo.InteractionCreate) model.Actor {
	return model.Actor{GuildID: i.GuildID, UserID: utils.MemberUserID(i)}
}

// authorize answers the interaction with a refusal and returns false when
// the member holds none of claims.
func (h *handler) authorize(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, claims ...model.AuthorizationClaim) bool {
	if utils.IsAdministrator(i.Member) {
		return true
	}
	var roles []string
	if i.Member != nil {
		roles = i.Member.Roles
	}
	userID := utils.MemberUserID(i)
	for _, claim := range claims {
		ok, err := h.bot.Designations.HasClaim(ctx, i.GuildID, userID, roles, claim)
		if err != nil {
			h.log.Error("claim check failed", zap.String("claim", string(claim)), zap.Error(err))
			utils.SendErrorResponse(s, i, "Could not check your permissions. Please try again.")
			return false
		}
		if ok {
			return true
		}
	}
	msg, _ := userMessage(model.ErrUnauthorized)
	utils.SendErrorResponse(s, i, msg)
	return false
}

// fail reports err on a deferred interaction.
func (h *handler) fail(s *discordgo.Session, i *discordgo.InteractionCreate, op string, err error) {
	msg, known := userMessage(err)
	if !known {
		h.log.Error(op+" failed",
			zap.String("guild_id", i.GuildID),
			zap.String("user_id", utils.MemberUserID(i)),
			zap.Error(err))
	}
	utils.SendFollowUpError(s, i.Interaction, msg)
}

// deferReply acknowledges the interaction; false means Discord rejected it.
func (h *handler) deferReply(s *discordgo.Session, i *discordgo.InteractionCreate, ephemeral bool) bool {
	if err := utils.DeferResponse(s, i, ephemeral); err != nil {
		h.log.Warn("failed to defer interaction", zap.Error(err))
		return false
	}
	return true
}
