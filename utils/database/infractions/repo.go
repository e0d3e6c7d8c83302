// Package infractions persists infractions. Every state transition column
// is written at most once: updates are guarded with "IS NULL" so a repeated
// transition affects no rows and reports model.ErrActionAlreadyRecorded.
package infractions

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"modix/model"
	"modix/utils/database"
)

type Repo struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Repo {
	return &Repo{db: db}
}

type row struct {
	ID              int64          `db:"id"`
	GuildID         string         `db:"guild_id"`
	SubjectID       string         `db:"subject_id"`
	Type            string         `db:"type"`
	Reason          string         `db:"reason"`
	DurationMs      sql.NullInt64  `db:"duration_ms"`
	ExpiresAt       sql.NullInt64  `db:"expires_at"`
	RescindReason   sql.NullString `db:"rescind_reason"`
	CreateActionID  int64          `db:"create_action_id"`
	RescindActionID sql.NullInt64  `db:"rescind_action_id"`
	UpdateActionID  sql.NullInt64  `db:"update_action_id"`
	RestoreActionID sql.NullInt64  `db:"restore_action_id"`
	DeleteActionID  sql.NullInt64  `db:"delete_action_id"`
	PendingEffect   string         `db:"pending_effect"`
	CreatedAt       int64          `db:"created_at"`
	CreatedByID     string         `db:"created_by_id"`
}

func nullableID(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	id := v.Int64
	return &id
}

func (r row) toModel() model.Infraction {
	inf := model.Infraction{
		ID:              r.ID,
		GuildID:         r.GuildID,
		SubjectID:       r.SubjectID,
		Type:            model.InfractionType(r.Type),
		Reason:          r.Reason,
		CreatedAt:       database.FromMillis(r.CreatedAt),
		CreatedByID:     r.CreatedByID,
		CreateActionID:  r.CreateActionID,
		RescindActionID: nullableID(r.RescindActionID),
		UpdateActionID:  nullableID(r.UpdateActionID),
		RestoreActionID: nullableID(r.RestoreActionID),
		DeleteActionID:  nullableID(r.DeleteActionID),
		PendingEffect:   model.PendingEffect(r.PendingEffect),
	}
	if r.DurationMs.Valid {
		d := time.Duration(r.DurationMs.Int64) * time.Millisecond
		inf.Duration = &d
	}
	if r.RescindReason.Valid {
		reason := r.RescindReason.String
		inf.RescindReason = &reason
	}
	return inf
}

func durationColumns(createdAt time.Time, d *time.Duration) (sql.NullInt64, sql.NullInt64) {
	if d == nil {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: d.Milliseconds(), Valid: true},
		sql.NullInt64{Int64: database.ToMillis(createdAt.Add(*d)), Valid: true}
}

func baseSelect() sq.SelectBuilder {
	return sq.Select("i.*", "ca.created_at AS created_at", "ca.created_by_id AS created_by_id").
		From("infractions i").
		Join("action_log ca ON ca.id = i.create_action_id")
}

// activeAt is the predicate for infractions in force at now.
func activeAt(now time.Time) sq.Sqlizer {
	return sq.And{
		sq.Or{sq.Eq{"i.rescind_action_id": nil}, sq.NotEq{"i.restore_action_id": nil}},
		sq.Eq{"i.delete_action_id": nil},
		sq.Or{sq.Eq{"i.expires_at": nil}, sq.Gt{"i.expires_at": database.ToMillis(now)}},
	}
}

func (r *Repo) selectMany(ctx context.Context, query sq.SelectBuilder, op string) ([]model.Infraction, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build query to %s: %w", op, err)
	}

	var rows []row
	if err := sqlx.SelectContext(ctx, database.QuerierFromCtx(ctx, r.db), &rows, stmt, args...); err != nil {
		return nil, database.MapError(err, "failed to "+op, nil)
	}

	result := make([]model.Infraction, len(rows))
	for i, rec := range rows {
		result[i] = rec.toModel()
	}
	return result, nil
}

// Insert stores a new infraction. CreatedAt must match its create action.
func (r *Repo) Insert(ctx context.Context, inf model.Infraction) (int64, error) {
	durationMs, expiresAt := durationColumns(inf.CreatedAt, inf.Duration)

	res, err := database.QuerierFromCtx(ctx, r.db).ExecContext(ctx,
		`INSERT INTO infractions (guild_id, subject_id, type, reason, duration_ms, expires_at, create_action_id, pending_effect)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inf.GuildID, inf.SubjectID, string(inf.Type), inf.Reason, durationMs, expiresAt, inf.CreateActionID, string(inf.PendingEffect))
	if err != nil {
		return 0, database.MapError(err, "failed to insert infraction", nil)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w: %w", model.ErrStorage, err)
	}
	return id, nil
}

// Get returns one infraction, deleted or not.
func (r *Repo) Get(ctx context.Context, id int64) (model.Infraction, error) {
	stmt, args, err := baseSelect().Where(sq.Eq{"i.id": id}).ToSql()
	if err != nil {
		return model.Infraction{}, fmt.Errorf("failed to build infraction query: %w", err)
	}

	var rec row
	if err := sqlx.GetContext(ctx, database.QuerierFromCtx(ctx, r.db), &rec, stmt, args...); err != nil {
		return model.Infraction{}, database.MapError(err, fmt.Sprintf("failed to get infraction %d", id), nil)
	}
	return rec.toModel(), nil
}

// FindActive returns the infractions of one type in force for a member at now.
func (r *Repo) FindActive(ctx context.Context, guildID, subjectID string, typ model.InfractionType, now time.Time) ([]model.Infraction, error) {
	query := baseSelect().
		Where(sq.Eq{"i.guild_id": guildID, "i.subject_id": subjectID, "i.type": string(typ)}).
		Where(activeAt(now)).
		OrderBy("i.id ASC")
	return r.selectMany(ctx, query, fmt.Sprintf("find active %s for user %s in guild %s", typ, subjectID, guildID))
}

// ListDue returns unrescinded temporary mutes and bans whose time ran out at
// or before now.
func (r *Repo) ListDue(ctx context.Context, now time.Time) ([]model.Infraction, error) {
	query := baseSelect().
		Where(sq.Eq{
			"i.type":              []string{string(model.InfractionMute), string(model.InfractionBan)},
			"i.rescind_action_id": nil,
		}).
		Where(sq.NotEq{"i.expires_at": nil}).
		Where(sq.LtOrEq{"i.expires_at": database.ToMillis(now)}).
		OrderBy("i.expires_at ASC", "i.id ASC")
	return r.selectMany(ctx, query, "list due infractions")
}

// ListPending returns infractions whose Discord effect still has to be pushed.
func (r *Repo) ListPending(ctx context.Context) ([]model.Infraction, error) {
	query := baseSelect().
		Where(sq.NotEq{"i.pending_effect": string(model.EffectNone)}).
		OrderBy("i.id ASC")
	return r.selectMany(ctx, query, "list infractions with pending effects")
}

var sortColumns = map[model.InfractionSortField]string{
	model.SortByID:      "i.id",
	model.SortByCreated: "ca.created_at",
	model.SortByType:    "i.type",
	model.SortBySubject: "i.subject_id",
}

// Search returns infractions matching criteria in a stable total order.
// Ties left by sorts are broken by ID ascending.
func (r *Repo) Search(ctx context.Context, criteria model.InfractionSearchCriteria, sorts []model.InfractionSort) ([]model.Infraction, error) {
	query := baseSelect()

	if criteria.GuildID != "" {
		query = query.Where(sq.Eq{"i.guild_id": criteria.GuildID})
	}
	if criteria.SubjectID != "" {
		query = query.Where(sq.Eq{"i.subject_id": criteria.SubjectID})
	}
	if criteria.CreatedByID != "" {
		query = query.Where(sq.Eq{"ca.created_by_id": criteria.CreatedByID})
	}
	if len(criteria.Types) > 0 {
		types := make([]string, len(criteria.Types))
		for i, t := range criteria.Types {
			types[i] = string(t)
		}
		query = query.Where(sq.Eq{"i.type": types})
	}
	if criteria.IsDeleted != nil {
		if *criteria.IsDeleted {
			query = query.Where(sq.NotEq{"i.delete_action_id": nil})
		} else {
			query = query.Where(sq.Eq{"i.delete_action_id": nil})
		}
	}
	if criteria.IsRescinded != nil {
		rescinded := sq.And{sq.NotEq{"i.rescind_action_id": nil}, sq.Eq{"i.restore_action_id": nil}}
		if *criteria.IsRescinded {
			query = query.Where(rescinded)
		} else {
			query = query.Where(sq.Or{sq.Eq{"i.rescind_action_id": nil}, sq.NotEq{"i.restore_action_id": nil}})
		}
	}
	if criteria.ActiveAt != nil {
		query = query.Where(activeAt(*criteria.ActiveAt))
	}
	if criteria.CreatedFrom != nil {
		query = query.Where(sq.GtOrEq{"ca.created_at": database.ToMillis(*criteria.CreatedFrom)})
	}
	if criteria.CreatedTo != nil {
		query = query.Where(sq.LtOrEq{"ca.created_at": database.ToMillis(*criteria.CreatedTo)})
	}

	orderedByID := false
	for _, s := range sorts {
		col, ok := sortColumns[s.Field]
		if !ok {
			return nil, model.NewValidationError("sort", fmt.Sprintf("unknown sort field %q", s.Field))
		}
		dir := "ASC"
		if s.Descending {
			dir = "DESC"
		}
		query = query.OrderBy(col + " " + dir)
		if s.Field == model.SortByID {
			orderedByID = true
			break
		}
	}
	if !orderedByID {
		query = query.OrderBy("i.id ASC")
	}

	if criteria.Limit > 0 {
		query = query.Limit(uint64(criteria.Limit))
	}
	if criteria.Offset > 0 {
		if criteria.Limit <= 0 {
			// SQLite only accepts OFFSET after a LIMIT.
			query = query.Limit(math.MaxInt64)
		}
		query = query.Offset(uint64(criteria.Offset))
	}

	return r.selectMany(ctx, query, "search infractions")
}

// CountActiveByType counts infractions in force per type in a guild.
func (r *Repo) CountActiveByType(ctx context.Context, guildID string, now time.Time) (map[model.InfractionType]int, error) {
	query := sq.Select("i.type", "COUNT(*)").From("infractions i").Where(activeAt(now)).GroupBy("i.type")
	if guildID != "" {
		query = query.Where(sq.Eq{"i.guild_id": guildID})
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build count query: %w", err)
	}

	rows, err := database.QuerierFromCtx(ctx, r.db).QueryxContext(ctx, stmt, args...)
	if err != nil {
		return nil, database.MapError(err, "failed to count active infractions", nil)
	}
	defer rows.Close()

	counts := make(map[model.InfractionType]int)
	for rows.Next() {
		var typ string
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, fmt.Errorf("failed to scan infraction count row: %w: %w", model.ErrStorage, err)
		}
		counts[model.InfractionType(typ)] = count
	}
	return counts, rows.Err()
}

func (r *Repo) exec(ctx context.Context, op string, setOnce error, stmt string, args ...any) error {
	res, err := database.QuerierFromCtx(ctx, r.db).ExecContext(ctx, stmt, args...)
	if err != nil {
		return database.MapError(err, "failed to "+op, nil)
	}
	return database.ExpectOneRow(res, op, setOnce)
}

// SetRescinded records the rescind action.
func (r *Repo) SetRescinded(ctx context.Context, id, actionID int64, reason *string) error {
	var rescindReason sql.NullString
	if reason != nil {
		rescindReason = sql.NullString{String: *reason, Valid: true}
	}
	return r.exec(ctx, fmt.Sprintf("rescind infraction %d", id), model.ErrActionAlreadyRecorded,
		`UPDATE infractions SET rescind_action_id = ?, rescind_reason = ? WHERE id = ? AND rescind_action_id IS NULL`,
		actionID, rescindReason, id)
}

// SetUpdated replaces reason and duration and records the update action.
func (r *Repo) SetUpdated(ctx context.Context, id, actionID int64, reason string, createdAt time.Time, d *time.Duration) error {
	durationMs, expiresAt := durationColumns(createdAt, d)
	return r.exec(ctx, fmt.Sprintf("update infraction %d", id), model.ErrActionAlreadyRecorded,
		`UPDATE infractions SET reason = ?, duration_ms = ?, expires_at = ?, update_action_id = ?
		 WHERE id = ? AND update_action_id IS NULL`,
		reason, durationMs, expiresAt, actionID, id)
}

// SetRestored records the restore action on a rescinded infraction.
func (r *Repo) SetRestored(ctx context.Context, id, actionID int64) error {
	return r.exec(ctx, fmt.Sprintf("restore infraction %d", id), model.ErrActionAlreadyRecorded,
		`UPDATE infractions SET restore_action_id = ?
		 WHERE id = ? AND restore_action_id IS NULL AND rescind_action_id IS NOT NULL`,
		actionID, id)
}

// SetDeleted hides the infraction from searches.
func (r *Repo) SetDeleted(ctx context.Context, id, actionID int64) error {
	return r.exec(ctx, fmt.Sprintf("delete infraction %d", id), model.ErrActionAlreadyRecorded,
		`UPDATE infractions SET delete_action_id = ? WHERE id = ? AND delete_action_id IS NULL`,
		actionID, id)
}

// SetPendingEffect flags (or clears, with model.EffectNone) a Discord effect
// awaiting reconciliation.
func (r *Repo) SetPendingEffect(ctx context.Context, id int64, effect model.PendingEffect) error {
	return r.exec(ctx, fmt.Sprintf("set pending effect of infraction %d", id), model.ErrNotFound,
		`UPDATE infractions SET pending_effect = ? WHERE id = ?`, string(effect), id)
}
