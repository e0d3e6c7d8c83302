package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"modix/bot"
)

// commandTimeout bounds the work done for one interaction.
const commandTimeout = 30 * time.Second

type commandHandler func(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate)

func Register(b *bot.Bot) {
	h := &handler{bot: b, log: b.Log.With(zap.String("service", "handlers"))}
	b.CommandHandlers = h.commandHandlers()
	h.addHandlers()
}

type handler struct {
	bot *bot.Bot
	log *zap.Logger
}

func (h *handler) commandHandlers() map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	routes := map[string]commandHandler{
		"note":       h.handleNote,
		"warn":       h.handleWarn,
		"mute":       h.handleMute,
		"ban":        h.handleBan,
		"unmute":     h.handleUnmute,
		"unban":      h.handleUnban,
		"infraction": h.handleInfraction,
		"campaign":   h.handleCampaign,
		"config":     h.handleConfig,
		"sysinfo":    h.handleSystemInfo,
	}

	out := make(map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate), len(routes))
	for name, fn := range routes {
		fn := fn
		out[name] = func(s *discordgo.Session, i *discordgo.InteractionCreate) {
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()
			fn(ctx, s, i)
		}
	}
	return out
}

func (h *handler) addHandlers() {
	h.bot.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		h.log.Info("Logged in", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
	})
	h.bot.Session.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		if i.GuildID == "" {
			return
		}
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			if fn, ok := h.bot.CommandHandlers[i.ApplicationCommandData().Name]; ok {
				fn(s, i)
			}
		case discordgo.InteractionMessageComponent:
			customID := i.MessageComponentData().CustomID
			if strings.HasPrefix(customID, searchPagePrefix) {
				ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
				defer cancel()
				h.handleSearchPage(ctx, s, i, customID)
			}
		}
	})
	h.bot.Session.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		if m.Member == nil || m.User == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
		defer cancel()
		if err := h.bot.Moderation.ReapplyActiveEffects(ctx, m.GuildID, m.User.ID); err != nil {
			h.log.Warn("failed to re-apply active infractions",
				zap.String("guild_id", m.GuildID),
				zap.String("user_id", m.User.ID),
				zap.Error(err))
		}
	})
}
