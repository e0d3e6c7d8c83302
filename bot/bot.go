package bot

import (
	"sync/atomic"

	"github.com/bwmarrin/discordgo"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"modix/auditlog"
	"modix/designations"
	"modix/gateway"
	"modix/model"
	"modix/moderation"
	"modix/modlog"
	"modix/promotions"
	"modix/utils/database"
	"modix/utils/database/actions"
	"modix/utils/database/campaigns"
	"modix/utils/database/infractions"
	"modix/utils/database/mappings"
)

// Services bundles everything command handlers call into.
type Services struct {
	Actions      *auditlog.Recorder
	Moderation   *moderation.Service
	Promotions   *promotions.Service
	Designations *designations.Service
	Gateway      *gateway.Discord
	ModLog       *modlog.Notifier
}

type Bot struct {
	Session            *discordgo.Session
	RegisteredCommands []*discordgo.ApplicationCommand
	CommandHandlers    map[string]func(s *discordgo.Session, i *discordgo.InteractionCreate)
	DB                 *sqlx.DB
	Log                *zap.Logger
	Services

	config    atomic.Value // *model.Config
	scheduler *Scheduler
}

func (b *Bot) GetConfig() *model.Config {
	return b.config.Load().(*model.Config)
}

func New(cfg *model.Config, db *sqlx.DB, log *zap.Logger) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.BotToken)
	if err != nil {
		return nil, err
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	b := &Bot{
		Session: dg,
		DB:      db,
		Log:     log,
	}
	b.config.Store(cfg)
	b.Services = newServices(cfg, db, dg, log)
	b.scheduler = NewScheduler(b.Moderation, cfg.ExpirySweepInterval, cfg.ReconcileInterval, log)
	return b, nil
}

func newServices(cfg *model.Config, db *sqlx.DB, dg *discordgo.Session, log *zap.Logger) Services {
	clock := model.SystemClock{}
	tx := database.NewTxManager(db)
	recorder := auditlog.New(actions.New(db), clock)

	desig := designations.NewService(mappings.New(db), recorder, tx, cfg.DeveloperUserIDs, log)
	gw := gateway.NewDiscord(dg, desig)
	notifier := modlog.New(dg, desig, log)

	return Services{
		Actions: recorder,
		Moderation: moderation.NewService(infractions.New(db), recorder, tx, gw, notifier, clock, log, moderation.Options{
			GatewayTimeout: cfg.GatewayTimeout,
			BanPruneDays:   cfg.BanPruneDays,
		}),
		Promotions:   promotions.NewService(campaigns.New(db), recorder, tx, desig, notifier, log),
		Designations: desig,
		Gateway:      gw,
		ModLog:       notifier,
	}
}

func (b *Bot) Close() {
	b.Log.Info("Gracefully shutting down.")
	b.scheduler.Stop()
	if err := b.Session.Close(); err != nil {
		b.Log.Warn("error closing session", zap.Error(err))
	}
}
