package defs

import (
	"github.com/bwmarrin/discordgo"
	"modix/model"
)

func choices[T ~string](values []T) []*discordgo.ApplicationCommandOptionChoice {
	out := make([]*discordgo.ApplicationCommandOptionChoice, len(values))
	for i, v := range values {
		out[i] = &discordgo.ApplicationCommandOptionChoice{Name: string(v), Value: string(v)}
	}
	return out
}

func claimSubcommand(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionString, Name: "claim", Description: "Claim", Required: true, Choices: choices(model.AuthorizationClaims)},
			{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role the mapping applies to"},
			{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "User the mapping applies to"},
		},
	}
}

var Config = &discordgo.ApplicationCommand{
	Name:         "config",
	Description:  "Guild configuration",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "designate-channel",
			Description: "Assign a purpose to a channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionChannel,
					Name:         "channel",
					Description:  "Channel",
					Required:     true,
					ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
				},
				{Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "Purpose", Required: true, Choices: choices(model.DesignatedChannelTypes)},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "designate-role",
			Description: "Assign a purpose to a role",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: "role", Description: "Role", Required: true},
				{Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "Purpose", Required: true, Choices: choices(model.DesignatedRoleTypes)},
			},
		},
		claimSubcommand("grant", "Grant a claim to a role or user"),
		claimSubcommand("deny", "Deny a claim to a role or user"),
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "remove",
			Description: "Remove a mapping",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "id", Description: "Mapping ID", Required: true, MinValue: &minID},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "list",
			Description: "List current mappings",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "kind",
					Description: "Mapping kind",
					Required:    true,
					Choices: []*discordgo.ApplicationCommandOptionChoice{
						{Name: "Claims", Value: string(model.MappingClaim)},
						{Name: "Channels", Value: string(model.MappingDesignatedChannel)},
						{Name: "Roles", Value: string(model.MappingDesignatedRole)},
					},
				},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "history",
			Description: "Recent entries of the action log",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "limit", Description: "Entries to show (default 15)", MinValue: &minID, MaxValue: 25},
			},
		},
	},
}
