package defs

import "github.com/bwmarrin/discordgo"

var guildOnly = false

var (
	maxLimit    = 100.0
	minID       = 1.0
)

func userOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: description,
		Required:    true,
	}
}

func reasonOption(required bool) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "reason",
		Description: "Reason recorded with the infraction",
		Required:    required,
		MaxLength:   1000,
	}
}

func durationOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "duration",
		Description: description,
		Required:    false,
	}
}

var Note = &discordgo.ApplicationCommand{
	Name:         "note",
	Description:  "Record a note about a member",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member the note is about"),
		reasonOption(true),
	},
}

var Warn = &discordgo.ApplicationCommand{
	Name:         "warn",
	Description:  "Warn a member",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to warn"),
		reasonOption(true),
	},
}

var Mute = &discordgo.ApplicationCommand{
	Name:         "mute",
	Description:  "Mute a member with the designated mute role",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to mute"),
		reasonOption(true),
		durationOption("How long, e.g. 30m, 12h or 7d. Permanent when omitted"),
	},
}

var Ban = &discordgo.ApplicationCommand{
	Name:         "ban",
	Description:  "Ban a member",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to ban"),
		reasonOption(true),
		durationOption("How long, e.g. 1d or 30d. Permanent when omitted"),
	},
}

var Unmute = &discordgo.ApplicationCommand{
	Name:         "unmute",
	Description:  "Rescind a member's active mute",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("Member to unmute"),
		reasonOption(false),
	},
}

var Unban = &discordgo.ApplicationCommand{
	Name:         "unban",
	Description:  "Rescind a user's active ban",
	DMPermission: &guildOnly,
	Options: []*discordgo.ApplicationCommandOption{
		userOption("User to unban"),
		reasonOption(false),
	},
}
