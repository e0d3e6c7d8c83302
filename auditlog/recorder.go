// Package auditlog records the immutable action log every other mutation
// hangs off. Callers run RecordAction inside the same transaction as the row
// that will reference the returned entry.
package auditlog

import (
	"context"
	"fmt"
	"time"

	"modix/model"
)

type entryStore interface {
	Insert(ctx context.Context, entry model.ActionLogEntry) (model.ActionLogEntry, error)
	Get(ctx context.Context, id int64) (model.ActionLogEntry, error)
	ListByGuild(ctx context.Context, guildID string, types []model.ActionType, limit int) ([]model.ActionLogEntry, error)
}

// Recorder appends action log entries.
type Recorder struct {
	store entryStore
	clock model.Clock
}

func New(store entryStore, clock model.Clock) *Recorder {
	return &Recorder{store: store, clock: clock}
}

// RecordAction appends one entry of type typ performed by actor in guildID.
func (r *Recorder) RecordAction(ctx context.Context, guildID string, typ model.ActionType, actor model.Actor) (model.ActionLogEntry, error) {
	return r.record(ctx, model.ActionLogEntry{
		GuildID:   guildID,
		Type:      typ,
		CreatedBy: actor,
	})
}

// RecordInfractionUpdate appends an InfractionUpdate entry carrying the
// reason the infraction had before the edit.
func (r *Recorder) RecordInfractionUpdate(ctx context.Context, guildID string, actor model.Actor, originalReason string) (model.ActionLogEntry, error) {
	return r.record(ctx, model.ActionLogEntry{
		GuildID:                  guildID,
		Type:                     model.ActionInfractionUpdate,
		CreatedBy:                actor,
		OriginalInfractionReason: &originalReason,
	})
}

func (r *Recorder) record(ctx context.Context, entry model.ActionLogEntry) (model.ActionLogEntry, error) {
	if entry.GuildID == "" {
		return model.ActionLogEntry{}, model.NewValidationError("guild_id", "guild is required")
	}
	if !entry.Type.Valid() {
		return model.ActionLogEntry{}, model.NewValidationError("type", fmt.Sprintf("unknown action type %q", entry.Type))
	}
	if entry.CreatedBy.UserID == "" {
		return model.ActionLogEntry{}, model.NewValidationError("actor", "actor is required")
	}
	if entry.CreatedBy.GuildID != "" && entry.CreatedBy.GuildID != entry.GuildID {
		return model.ActionLogEntry{}, model.NewValidationError("actor", "actor belongs to a different guild")
	}

	// Stored with millisecond precision.
	entry.CreatedAt = r.clock.Now().UTC().Truncate(time.Millisecond)
	entry.CreatedBy.GuildID = entry.GuildID

	saved, err := r.store.Insert(ctx, entry)
	if err != nil {
		return model.ActionLogEntry{}, fmt.Errorf("record %s: %w", entry.Type, err)
	}
	return saved, nil
}

// Get returns one entry.
func (r *Recorder) Get(ctx context.Context, id int64) (model.ActionLogEntry, error) {
	return r.store.Get(ctx, id)
}

// History returns the newest entries of a guild, optionally only some types.
func (r *Recorder) History(ctx context.Context, guildID string, types []model.ActionType, limit int) ([]model.ActionLogEntry, error) {
	return r.store.ListByGuild(ctx, guildID, types, limit)
}
