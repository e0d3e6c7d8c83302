package model

// Actor identifies the guild member performing an action.
type Actor struct {
	GuildID string
	UserID  string
}

// SystemActor returns the actor used for actions the bot takes on its own,
// such as expiring temporary infractions.
func SystemActor(guildID, botUserID string) Actor {
	return Actor{GuildID: guildID, UserID: botUserID}
}
