package bot

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"modix/commands"
)

// Run opens the gateway session, registers the slash commands, starts the
// scheduler and blocks until the process is signalled.
func (b *Bot) Run() error {
	if err := b.Session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}
	appID := b.Session.State.User.ID
	b.Moderation.SetSystemUserID(appID)

	if !b.GetConfig().DisableCommandUnregister {
		b.Log.Info("Unregistering guild commands from all guilds...")
		guilds, err := b.Session.UserGuilds(200, "", "", false)
		if err != nil {
			b.Log.Warn("could not fetch guilds", zap.Error(err))
		}
		for _, guild := range guilds {
			b.UnregisterCommands(guild.ID)
		}
	}

	if err := b.RefreshCommands(); err != nil {
		return err
	}

	b.scheduler.Start()

	b.Log.Info("Bot is now running. Press CTRL-C to exit.", zap.String("user", b.Session.State.User.Username))
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc
	return nil
}

// RefreshCommands overwrites the application's global commands.
func (b *Bot) RefreshCommands() error {
	cmds := commands.All()
	b.Log.Info("Registering commands", zap.Int("count", len(cmds)))
	registered, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, "", cmds)
	if err != nil {
		return fmt.Errorf("cannot register commands: %w", err)
	}
	b.RegisteredCommands = registered
	return nil
}

// UnregisterCommands removes leftover guild-scoped commands.
func (b *Bot) UnregisterCommands(guildID string) {
	if _, err := b.Session.ApplicationCommandBulkOverwrite(b.Session.State.User.ID, guildID, []*discordgo.ApplicationCommand{}); err != nil {
		b.Log.Warn("cannot unregister guild commands", zap.String("guild_id", guildID), zap.Error(err))
	}
}
