package defs

import "github.com/bwmarrin/discordgo"

var SystemInfo = &discordgo.ApplicationCommand{
	Name:         "sysinfo",
	Description:  "Display bot and system status information",
	DMPermission: &guildOnly,
}
