// Package actions persists the append-only action log.
package actions

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"modix/model"
	"modix/utils/database"
)

// Repo stores ActionLogEntry rows. It never updates or deletes them.
type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID                       int64          `db:"id"`
	GuildID                  string         `db:"guild_id"`
	Type                     string         `db:"type"`
	CreatedAt                int64          `db:"created_at"`
	CreatedByID              string         `db:"created_by_id"`
	OriginalInfractionReason sql.NullString `db:"original_infraction_reason"`
}

func (r row) toModel() model.ActionLogEntry {
	entry := model.ActionLogEntry{
		ID:        r.ID,
		GuildID:   r.GuildID,
		Type:      model.ActionType(r.Type),
		CreatedAt: database.FromMillis(r.CreatedAt),
		CreatedBy: model.Actor{GuildID: r.GuildID, UserID: r.CreatedByID},
	}
	if r.OriginalInfractionReason.Valid {
		reason := r.OriginalInfractionReason.String
		entry.OriginalInfractionReason = &reason
	}
	return entry
}

// Insert appends entry and returns it with its assigned ID.
func (r *Repo) Insert(ctx context.Context, entry model.ActionLogEntry) (model.ActionLogEntry, error) {
	q := database.QuerierFromCtx(ctx, r.db)

	var original sql.NullString
	if entry.OriginalInfractionReason != nil {
		original = sql.NullString{String: *entry.OriginalInfractionReason, Valid: true}
	}

	res, err := q.ExecContext(ctx,
		`INSERT INTO action_log (guild_id, type, created_at, created_by_id, original_infraction_reason)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.GuildID, string(entry.Type), database.ToMillis(entry.CreatedAt), entry.CreatedBy.UserID, original)
	if err != nil {
		return model.ActionLogEntry{}, database.MapError(err, "failed to insert action log entry", nil)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.ActionLogEntry{}, fmt.Errorf("failed to get last insert ID: %w: %w", model.ErrStorage, err)
	}
	entry.ID = id
	return entry, nil
}

// Get returns the entry with the given ID.
func (r *Repo) Get(ctx context.Context, id int64) (model.ActionLogEntry, error) {
	var rec row
	err := sqlx.GetContext(ctx, database.QuerierFromCtx(ctx, r.db), &rec,
		`SELECT * FROM action_log WHERE id = ?`, id)
	if err != nil {
		return model.ActionLogEntry{}, database.MapError(err, fmt.Sprintf("failed to get action log entry %d", id), nil)
	}
	return rec.toModel(), nil
}

// ListByGuild returns the newest entries of a guild, optionally restricted
// to some action types.
func (r *Repo) ListByGuild(ctx context.Context, guildID string, types []model.ActionType, limit int) ([]model.ActionLogEntry, error) {
	query := sq.Select("*").From("action_log").
		Where(sq.Eq{"guild_id": guildID}).
		OrderBy("id DESC")
	if len(types) > 0 {
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = string(t)
		}
		query = query.Where(sq.Eq{"type": names})
	}
	if limit > 0 {
		query = query.Limit(uint64(limit))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build action log query: %w", err)
	}

	var rows []row
	if err := sqlx.SelectContext(ctx, database.QuerierFromCtx(ctx, r.db), &rows, stmt, args...); err != nil {
		return nil, database.MapError(err, fmt.Sprintf("failed to list action log for guild %s", guildID), nil)
	}

	entries := make([]model.ActionLogEntry, len(rows))
	for i, rec := range rows {
		entries[i] = rec.toModel()
	}
	return entries, nil
}
