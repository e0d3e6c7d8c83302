package utils

import "github.com/bwmarrin/discordgo"

// IsAdministrator reports whether the invoking member holds the guild's
// Administrator permission, which bypasses claim checks.
func IsAdministrator(member *discordgo.Member) bool {
	return member != nil && member.Permissions&discordgo.PermissionAdministrator != 0
}

// MemberUserID returns the ID of the member or, outside guilds, the user.
func MemberUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
