package defs

import "github.com/bwmarrin/discordgo"

var Campaign = &discordgo.ApplicationCommand{
	Name:         "campaign",
	Description:  "Promotion campaigns",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "start",
			Description: "Nominate a member for a rank",
			Options: []*discordgo.ApplicationCommandOption{
				userOption("Member to nominate"),
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Rank to promote to", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "comment", Description: "Why they deserve it", Required: true, MaxLength: 1000},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "comment",
			Description: "Comment on an open campaign",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "id", Description: "Campaign ID", Required: true, MinValue: &minID},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "sentiment",
					Description: "Your stance",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Approve", Value: "Approve"},
						{Name: "Oppose", Value: "Oppose"},
						{Name: "Neutral", Value: "Neutral"},
					},
				},
				{Type: discordgo.ApplicationCommandOptionString, Name: "content", Description: "Comment", Required: true, MaxLength: 1000},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "close",
			Description: "Accept or reject a campaign",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "id", Description: "Campaign ID", Required: true, MinValue: &minID},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "outcome",
					Description: "Result",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Accept", Value: "Accepted"},
						{Name: "Reject", Value: "Rejected"},
					},
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "uncomment",
			Description: "Delete a comment",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "comment_id", Description: "Comment ID", Required: true, MinValue: &minID},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "show",
			Description: "Show a campaign and its comments",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "id", Description: "Campaign ID", Required: true, MinValue: &minID},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "List campaigns",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "all", Description: "Include closed campaigns"},
			},
		},
	},
}
