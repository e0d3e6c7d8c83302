package handlers

import (
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"modix/model"
	"modix/moderation"
	"modix/promotions"
	"modix/utils"
)

var stateColors = map[model.InfractionState]int{
	model.StateActive:    0xE67E22,
	model.StateExpired:   0x95A5A6,
	model.StateRescinded: 0x2ECC71,
	model.StateDeleted:   0x34495E,
}

func timestamp(t time.Time) string {
	return fmt.Sprintf("<t:%d:f>", t.Unix())
}

func infractionEmbed(inf model.Infraction, now time.Time) *discordgo.MessageEmbed {
	state := inf.State(now)
	fields := []*discordgo.MessageEmbedField{
		{Name: "Subject", Value: "<@" + inf.SubjectID + ">", Inline: true},
		{Name: "Moderator", Value: "<@" + inf.CreatedByID + ">", Inline: true},
		{Name: "State", Value: string(state), Inline: true},
		{Name: "Created", Value: timestamp(inf.CreatedAt), Inline: true},
	}
	if expiresAt, ok := inf.ExpiresAt(); ok {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   "Expires",
			Value:  fmt.Sprintf("%s (%s)", timestamp(expiresAt), utils.FormatDuration(*inf.Duration)),
			Inline: true,
		})
	}
	fields = append(fields, &discordgo.MessageEmbedField{Name: "Reason", Value: inf.Reason})
	if inf.RescindReason != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Rescind reason", Value: *inf.RescindReason})
	}
	return &discordgo.MessageEmbed{
		Title:  fmt.Sprintf("Infraction #%d: %s", inf.ID, inf.Type),
		Color:  stateColors[state],
		Fields: fields,
	}
}

// infractionLine is the one-line form used in search results.
func infractionLine(inf model.Infraction, now time.Time) string {
	reason := []rune(inf.Reason)
	if len(reason) > 60 {
		reason = append(reason[:59], '…')
	}
	line := fmt.Sprintf("`#%d` **%s** <@%s> %s", inf.ID, inf.Type, inf.SubjectID, timestamp(inf.CreatedAt))
	if state := inf.State(now); state != model.StateActive {
		line += " _" + strings.ToLower(string(state)) + "_"
	}
	return line + "\n> " + string(reason)
}

// resultMessage describes the outcome of an operation that touches Discord.
func resultMessage(verb string, res moderation.Result) string {
	msg := fmt.Sprintf("✅ %s infraction #%d (%s) for <@%s>.", verb, res.Infraction.ID, res.Infraction.Type, res.Infraction.SubjectID)
	if res.Pending() {
		msg += "\n⚠️ Discord could not be updated right now; the change will be retried automatically."
	}
	return msg
}

func campaignEmbed(c model.PromotionCampaign, comments []model.PromotionComment) *discordgo.MessageEmbed {
	tally := promotions.CountSentiments(comments)
	status := "Open"
	color := 0x3498DB
	if c.Outcome != nil {
		status = string(*c.Outcome)
		color = 0x95A5A6
	}

	var b strings.Builder
	for _, cm := range comments {
		if cm.IsDeleted() {
			continue
		}
		fmt.Fprintf(&b, "`#%d` **%s** <@%s>: %s\n", cm.ID, cm.Sentiment, cm.CreatedByID, cm.Content)
	}
	body := b.String()
	if r := []rune(body); len(r) > 4000 {
		body = string(r[:3999]) + "…"
	}

	return &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Campaign #%d", c.ID),
		Description: body,
		Color:       color,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Subject", Value: "<@" + c.SubjectID + ">", Inline: true},
			{Name: "Target role", Value: "<@&" + c.TargetRoleID + ">", Inline: true},
			{Name: "Status", Value: status, Inline: true},
			{Name: "Votes", Value: fmt.Sprintf("👍 %d  👎 %d  😐 %d", tally.Approve, tally.Oppose, tally.Neutral), Inline: true},
			{Name: "Opened", Value: timestamp(c.CreatedAt), Inline: true},
		},
	}
}

func mappingLine(m model.Mapping) string {
	var target string
	switch {
	case m.ChannelID != "":
		target = "<#" + m.ChannelID + ">"
	case m.RoleID != "":
		target = "<@&" + m.RoleID + ">"
	default:
		target = "<@" + m.UserID + ">"
	}
	line := fmt.Sprintf("`#%d` %s → **%s**", m.ID, target, m.Designation)
	if m.ClaimType != "" {
		line += " (" + string(m.ClaimType) + ")"
	}
	return line
}
