package commands

import (
	"github.com/bwmarrin/discordgo"
	"modix/commands/defs"
)

// All returns every slash command the bot registers.
func All() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		defs.Note,
		defs.Warn,
		defs.Mute,
		defs.Ban,
		defs.Unmute,
		defs.Unban,
		defs.Infraction,
		defs.Campaign,
		defs.Config,
		defs.SystemInfo,
	}
}
