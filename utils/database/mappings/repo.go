// Package mappings persists claim mappings and designated channel/role
// mappings. A mapping is current while its delete_action_id is NULL.
package mappings

import (
	"context"
	"database/sql"
	"fmt"

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
	ID             int64         `db:"id"`
	Kind           string        `db:"kind"`
	GuildID        string        `db:"guild_id"`
	RoleID         string        `db:"role_id"`
	UserID         string        `db:"user_id"`
	ChannelID      string        `db:"channel_id"`
	Designation    string        `db:"designation"`
	ClaimType      string        `db:"claim_type"`
	CreateActionID int64         `db:"create_action_id"`
	DeleteActionID sql.NullInt64 `db:"delete_action_id"`
	CreatedAt      int64         `db:"created_at"`
	CreatedByID    string        `db:"created_by_id"`
}

func (r row) toModel() model.Mapping {
	m := model.Mapping{
		ID:             r.ID,
		Kind:           model.MappingKind(r.Kind),
		GuildID:        r.GuildID,
		RoleID:         r.RoleID,
		UserID:         r.UserID,
		ChannelID:      r.ChannelID,
		Designation:    r.Designation,
		ClaimType:      model.ClaimMappingType(r.ClaimType),
		CreatedAt:      database.FromMillis(r.CreatedAt),
		CreatedByID:    r.CreatedByID,
		CreateActionID: r.CreateActionID,
	}
	if r.DeleteActionID.Valid {
		id := r.DeleteActionID.Int64
		m.DeleteActionID = &id
	}
	return m
}

func baseSelect() sq.SelectBuilder {
	return sq.Select("m.*", "ca.created_at AS created_at", "ca.created_by_id AS created_by_id").
		From("configuration_mappings m").
		Join("action_log ca ON ca.id = m.create_action_id")
}

func (r *Repo) Insert(ctx context.Context, m model.Mapping) (int64, error) {
	res, err := database.QuerierFromCtx(ctx, r.db).ExecContext(ctx,
		`INSERT INTO configuration_mappings (kind, guild_id, role_id, user_id, channel_id, designation, claim_type, create_action_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		string(m.Kind), m.GuildID, m.RoleID, m.UserID, m.ChannelID, m.Designation, string(m.ClaimType), m.CreateActionID)
	if err != nil {
		return 0, database.MapError(err, "failed to insert mapping", model.ErrMappingExists)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w: %w", model.ErrStorage, err)
	}
	return id, nil
}

func (r *Repo) Get(ctx context.Context, id int64) (model.Mapping, error) {
	stmt, args, err := baseSelect().Where(sq.Eq{"m.id": id}).ToSql()
	if err != nil {
		return model.Mapping{}, fmt.Errorf("failed to build mapping query: %w", err)
	}
	var rec row
	if err := sqlx.GetContext(ctx, database.QuerierFromCtx(ctx, r.db), &rec, stmt, args...); err != nil {
		return model.Mapping{}, database.MapError(err, fmt.Sprintf("failed to get mapping %d", id), nil)
	}
	return rec.toModel(), nil
}

// ListActive returns current mappings matching criteria, oldest first.
// Empty criteria fields do not filter.
func (r *Repo) ListActive(ctx context.Context, criteria model.MappingCriteria) ([]model.Mapping, error) {
	query := baseSelect().Where(sq.Eq{"m.delete_action_id": nil}).OrderBy("m.id ASC")

	filters := sq.Eq{}
	if criteria.GuildID != "" {
		filters["m.guild_id"] = criteria.GuildID
	}
	if criteria.Kind != "" {
		filters["m.kind"] = string(criteria.Kind)
	}
	if criteria.Designation != "" {
		filters["m.designation"] = criteria.Designation
	}
	if criteria.RoleID != "" {
		filters["m.role_id"] = criteria.RoleID
	}
	if criteria.UserID != "" {
		filters["m.user_id"] = criteria.UserID
	}
	if criteria.ChannelID != "" {
		filters["m.channel_id"] = criteria.ChannelID
	}
	if len(filters) > 0 {
		query = query.Where(filters)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build mapping list query: %w", err)
	}
	var rows []row
	if err := sqlx.SelectContext(ctx, database.QuerierFromCtx(ctx, r.db), &rows, stmt, args...); err != nil {
		return nil, database.MapError(err, "failed to list mappings", nil)
	}
	result := make([]model.Mapping, len(rows))
	for i, rec := range rows {
		result[i] = rec.toModel()
	}
	return result, nil
}

// SetDeleted records the delete action once.
func (r *Repo) SetDeleted(ctx context.Context, id, actionID int64) error {
	res, err := database.QuerierFromCtx(ctx, r.db).ExecContext(ctx,
		`UPDATE configuration_mappings SET delete_action_id = ? WHERE id = ? AND delete_action_id IS NULL`,
		actionID, id)
	if err != nil {
		return database.MapError(err, fmt.Sprintf("failed to delete mapping %d", id), nil)
	}
	return database.ExpectOneRow(res, fmt.Sprintf("delete mapping %d", id), model.ErrActionAlreadyRecorded)
}
