package defs

import "github.com/bwmarrin/discordgo"

var infractionTypeChoices = []*discordgo.ApplicationCommandOptionChoice{
	{Name: "Notice", Value: "Notice"},
	{Name: "Warning", Value: "Warning"},
	{Name: "Mute", Value: "Mute"},
	{Name: "Ban", Value: "Ban"},
}

func infractionIDOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionInteger,
		Name:        "id",
		Description: "Infraction ID",
		Required:    true,
		MinValue:    &minID,
	}
}

var Infraction = &discordgo.ApplicationCommand{
	Name:         "infraction",
	Description:  "Search and manage infractions",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "search",
			Description: "Search infractions, newest first",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Subject of the infractions"},
				{Type: discordgo.ApplicationCommandOptionUser, Name: "moderator", Description: "Who recorded them"},
				{Type: discordgo.ApplicationCommandOptionString, Name: "type", Description: "Infraction type", Choices: infractionTypeChoices},
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "active", Description: "Only infractions currently in force"},
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "include_deleted", Description: "Include deleted infractions"},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: "limit", Description: "Maximum results (default 10)", MinValue: &minID, MaxValue: maxLimit},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "show",
			Description: "Show one infraction",
			Options:     []*discordgo.ApplicationCommandOption{infractionIDOption()},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "rescind",
			Description: "Rescind an infraction and lift its effect",
			Options: []*discordgo.ApplicationCommandOption{
				infractionIDOption(),
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Why it is rescinded", MaxLength: 1000},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "update",
			Description: "Change the reason or duration of an infraction once",
			Options: []*discordgo.ApplicationCommandOption{
				infractionIDOption(),
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "New reason", MaxLength: 1000},
				{Type: discordgo.ApplicationCommandOptionString, Name: "duration", Description: "New duration, counted from now"},
				{Type: discordgo.ApplicationCommandOptionBoolean, Name: "permanent", Description: "Remove the duration"},
			},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "restore",
			Description: "Undo a rescind",
			Options:     []*discordgo.ApplicationCommandOption{infractionIDOption()},
		},
		{
			Type:        discordgo.ApplicationCommandOptionSubCommand,
			Name:        "delete",
			Description: "Hide an infraction from searches",
			Options:     []*discordgo.ApplicationCommandOption{infractionIDOption()},
		},
	},
}
