// Package moderation runs the infraction lifecycle: create, rescind, update,
// restore, delete, search and expiry. Every change is committed together
// with its action log entry before the Discord effect is attempted; a failed
// effect leaves the infraction flagged for Reconcile instead of rolling back.
package moderation

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"modix/model"
)

type infractionStore interface {
	Insert(ctx context.Context, inf model.Infraction) (int64, error)
	Get(ctx context.Context, id int64) (model.Infraction, error)
	FindActive(ctx context.Context, guildID, subjectID string, typ model.InfractionType, now time.Time) ([]model.Infraction, error)
	ListDue(ctx context.Context, now time.Time) ([]model.Infraction, error)
	ListPending(ctx context.Context) ([]model.Infraction, error)
	Search(ctx context.Context, criteria model.InfractionSearchCriteria, sorts []model.InfractionSort) ([]model.Infraction, error)
	CountActiveByType(ctx context.Context, guildID string, now time.Time) (map[model.InfractionType]int, error)
	SetRescinded(ctx context.Context, id, actionID int64, reason *string) error
	SetUpdated(ctx context.Context, id, actionID int64, reason string, createdAt time.Time, d *time.Duration) error
	SetRestored(ctx context.Context, id, actionID int64) error
	SetDeleted(ctx context.Context, id, actionID int64) error
	SetPendingEffect(ctx context.Context, id int64, effect model.PendingEffect) error
}

type actionRecorder interface {
	RecordAction(ctx context.Context, guildID string, typ model.ActionType, actor model.Actor) (model.ActionLogEntry, error)
	RecordInfractionUpdate(ctx context.Context, guildID string, actor model.Actor, originalReason string) (model.ActionLogEntry, error)
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Gateway applies and undoes infraction effects on Discord. Implementations
// must tolerate repeated calls for an effect that is already in place.
type Gateway interface {
	ApplyMute(ctx context.Context, guildID, userID, reason string) error
	RemoveMute(ctx context.Context, guildID, userID string) error
	ApplyBan(ctx context.Context, guildID, userID, reason string, pruneDays int) error
	RemoveBan(ctx context.Context, guildID, userID string) error
}

// Notifier hears about committed infraction changes. Calls are best effort.
type Notifier interface {
	NotifyInfraction(ctx context.Context, action model.ActionType, res Result, actor model.Actor)
}

// Options tunes the service.
type Options struct {
	GatewayTimeout time.Duration
	BanPruneDays   int
	// SystemUserID is recorded as the actor of automatic expiries until
	// SetSystemUserID replaces it.
	SystemUserID string
}

type Service struct {
	store    infractionStore
	actions  actionRecorder
	tx       txRunner
	gateway  Gateway
	notifier Notifier
	clock    model.Clock
	log      *zap.Logger
	opts     Options

	locks      *keyedMutex
	systemUser atomic.Value
}

func NewService(
	store infractionStore,
	actions actionRecorder,
	tx txRunner,
	gateway Gateway,
	notifier Notifier,
	clock model.Clock,
	log *zap.Logger,
	opts Options,
) *Service {
	if opts.GatewayTimeout <= 0 {
		opts.GatewayTimeout = 10 * time.Second
	}
	if opts.BanPruneDays < 0 || opts.BanPruneDays > 7 {
		opts.BanPruneDays = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	s := &Service{
		store:    store,
		actions:  actions,
		tx:       tx,
		gateway:  gateway,
		notifier: notifier,
		clock:    clock,
		log:      log.With(zap.String("service", "moderation")),
		opts:     opts,
		locks:    newKeyedMutex(),
	}
	s.systemUser.Store(opts.SystemUserID)
	return s
}

// SetSystemUserID sets the user recorded as the actor of automatic expiries,
// normally the bot's own account once the gateway session is ready.
func (s *Service) SetSystemUserID(id string) {
	s.systemUser.Store(id)
}

func (s *Service) systemActor(guildID string) model.Actor {
	id, _ := s.systemUser.Load().(string)
	return model.SystemActor(guildID, id)
}

// now is truncated to the precision the database keeps.
func (s *Service) now() time.Time {
	return s.clock.Now().UTC().Truncate(time.Millisecond)
}

func (s *Service) notify(ctx context.Context, action model.ActionType, res Result, actor model.Actor) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyInfraction(ctx, action, res, actor)
}

func checkActor(guildID string, actor model.Actor) error {
	if actor.UserID == "" {
		return model.NewValidationError("actor", "actor is required")
	}
	if actor.GuildID != guildID {
		return model.NewValidationError("actor", "actor belongs to a different guild")
	}
	return nil
}
