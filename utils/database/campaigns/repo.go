// Package campaigns persists promotion campaigns and their comments.
package campaigns

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

type campaignRow struct {
	ID             int64          `db:"id"`
	GuildID        string         `db:"guild_id"`
	SubjectID      string         `db:"subject_id"`
	TargetRoleID   string         `db:"target_role_id"`
	Outcome        sql.NullString `db:"outcome"`
	CreateActionID int64          `db:"create_action_id"`
	CloseActionID  sql.NullInt64  `db:"close_action_id"`
	CreatedAt      int64          `db:"created_at"`
	CreatedByID    string         `db:"created_by_id"`
}

func (r campaignRow) toModel() model.PromotionCampaign {
	c := model.PromotionCampaign{
		ID:             r.ID,
		GuildID:        r.GuildID,
		SubjectID:      r.SubjectID,
		TargetRoleID:   r.TargetRoleID,
		CreatedAt:      database.FromMillis(r.CreatedAt),
		CreatedByID:    r.CreatedByID,
		CreateActionID: r.CreateActionID,
	}
	if r.CloseActionID.Valid {
		id := r.CloseActionID.Int64
		c.CloseActionID = &id
	}
	if r.Outcome.Valid {
		outcome := model.CampaignOutcome(r.Outcome.String)
		c.Outcome = &outcome
	}
	return c
}

type commentRow struct {
	ID             int64         `db:"id"`
	CampaignID     int64         `db:"campaign_id"`
	Sentiment      string        `db:"sentiment"`
	Content        string        `db:"content"`
	CreateActionID int64         `db:"create_action_id"`
	DeleteActionID sql.NullInt64 `db:"delete_action_id"`
	CreatedAt      int64         `db:"created_at"`
	CreatedByID    string        `db:"created_by_id"`
}

func (r commentRow) toModel() model.PromotionComment {
	c := model.PromotionComment{
		ID:             r.ID,
		CampaignID:     r.CampaignID,
		Sentiment:      model.CommentSentiment(r.Sentiment),
		Content:        r.Content,
		CreatedAt:      database.FromMillis(r.CreatedAt),
		CreatedByID:    r.CreatedByID,
		CreateActionID: r.CreateActionID,
	}
	if r.DeleteActionID.Valid {
		id := r.DeleteActionID.Int64
		c.DeleteActionID = &id
	}
	return c
}

func campaignSelect() sq.SelectBuilder {
	return sq.Select("c.*", "ca.created_at AS created_at", "ca.created_by_id AS created_by_id").
		From("promotion_campaigns c").
		Join("action_log ca ON ca.id = c.create_action_id")
}

func commentSelect() sq.SelectBuilder {
	return sq.Select("m.*", "ca.created_at AS created_at", "ca.created_by_id AS created_by_id").
		From("promotion_comments m").
		Join("action_log ca ON ca.id = m.create_action_id")
}

// InsertCampaign stores a new open campaign. A second open campaign for the
// same member violates a unique index and reports model.ErrCampaignAlreadyOpen.
func (r *Repo) InsertCampaign(ctx context.Context, c model.PromotionCampaign) (int64, error) {
	res, err := database.QuerierFromCtx(ctx, r.db).ExecContext(ctx,
		`INSERT INTO promotion_campaigns (guild_id, subject_id, target_role_id, create_action_id) VALUES (?, ?, ?, ?)`,
		c.GuildID, c.SubjectID, c.TargetRoleID, c.CreateActionID)
	if err != nil {
		return 0, database.MapError(err, "failed to insert campaign", model.ErrCampaignAlreadyOpen)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w: %w", model.ErrStorage, err)
	}
	return id, nil
}

func (r *Repo) GetCampaign(ctx context.Context, id int64) (model.PromotionCampaign, error) {
	stmt, args, err := campaignSelect().Where(sq.Eq{"c.id": id}).ToSql()
	if err != nil {
		return model.PromotionCampaign{}, fmt.Errorf("failed to build campaign query: %w", err)
	}
	var rec campaignRow
	if err := sqlx.GetContext(ctx, database.QuerierFromCtx(ctx, r.db), &rec, stmt, args...); err != nil {
		return model.PromotionCampaign{}, database.MapError(err, fmt.Sprintf("failed to get campaign %d", id), nil)
	}
	return rec.toModel(), nil
}

// SearchCampaigns lists campaigns, newest first.
func (r *Repo) SearchCampaigns(ctx context.Context, criteria model.CampaignSearchCriteria) ([]model.PromotionCampaign, error) {
	query := campaignSelect().OrderBy("c.id DESC")
	if criteria.GuildID != "" {
		query = query.Where(sq.Eq{"c.guild_id": criteria.GuildID})
	}
	if criteria.SubjectID != "" {
		query = query.Where(sq.Eq{"c.subject_id": criteria.SubjectID})
	}
	if criteria.OpenOnly {
		query = query.Where(sq.Eq{"c.close_action_id": nil})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build campaign search: %w", err)
	}
	var rows []campaignRow
	if err := sqlx.SelectContext(ctx, database.QuerierFromCtx(ctx, r.db), &rows, stmt, args...); err != nil {
		return nil, database.MapError(err, "failed to search campaigns", nil)
	}
	result := make([]model.PromotionCampaign, len(rows))
	for i, rec := range rows {
		result[i] = rec.toModel()
	}
	return result, nil
}

// SetClosed records the close action and outcome once.
func (r *Repo) SetClosed(ctx context.Context, id, actionID int64, outcome model.CampaignOutcome) error {
	res, err := database.QuerierFromCtx(ctx, r.db).ExecContext(ctx,
		`UPDATE promotion_campaigns SET close_action_id = ?, outcome = ? WHERE id = ? AND close_action_id IS NULL`,
		actionID, string(outcome), id)
	if err != nil {
		return database.MapError(err, fmt.Sprintf("failed to close campaign %d", id), nil)
	}
	return database.ExpectOneRow(res, fmt.Sprintf("close campaign %d", id), model.ErrCampaignClosed)
}

func (r *Repo) InsertComment(ctx context.Context, c model.PromotionComment) (int64, error) {
	res, err := database.QuerierFromCtx(ctx, r.db).ExecContext(ctx,
		`INSERT INTO promotion_comments (campaign_id, sentiment, content, create_action_id) VALUES (?, ?, ?, ?)`,
		c.CampaignID, string(c.Sentiment), c.Content, c.CreateActionID)
	if err != nil {
		return 0, database.MapError(err, "failed to insert campaign comment", nil)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w: %w", model.ErrStorage, err)
	}
	return id, nil
}

func (r *Repo) GetComment(ctx context.Context, id int64) (model.PromotionComment, error) {
	stmt, args, err := commentSelect().Where(sq.Eq{"m.id": id}).ToSql()
	if err != nil {
		return model.PromotionComment{}, fmt.Errorf("failed to build comment query: %w", err)
	}
	var rec commentRow
	if err := sqlx.GetContext(ctx, database.QuerierFromCtx(ctx, r.db), &rec, stmt, args...); err != nil {
		return model.PromotionComment{}, database.MapError(err, fmt.Sprintf("failed to get comment %d", id), nil)
	}
	return rec.toModel(), nil
}

// ListComments returns a campaign's comments in the order they were made.
func (r *Repo) ListComments(ctx context.Context, campaignID int64, includeDeleted bool) ([]model.PromotionComment, error) {
	query := commentSelect().Where(sq.Eq{"m.campaign_id": campaignID}).OrderBy("m.id ASC")
	if !includeDeleted {
		query = query.Where(sq.Eq{"m.delete_action_id": nil})
	}
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build comment list query: %w", err)
	}
	var rows []commentRow
	if err := sqlx.SelectContext(ctx, database.QuerierFromCtx(ctx, r.db), &rows, stmt, args...); err != nil {
		return nil, database.MapError(err, fmt.Sprintf("failed to list comments of campaign %d", campaignID), nil)
	}
	result := make([]model.PromotionComment, len(rows))
	for i, rec := range rows {
		result[i] = rec.toModel()
	}
	return result, nil
}

func (r *Repo) SetCommentDeleted(ctx context.Context, id, actionID int64) error {
	res, err := database.QuerierFromCtx(ctx, r.db).ExecContext(ctx,
		`UPDATE promotion_comments SET delete_action_id = ? WHERE id = ? AND delete_action_id IS NULL`,
		actionID, id)
	if err != nil {
		return database.MapError(err, fmt.Sprintf("failed to delete comment %d", id), nil)
	}
	return database.ExpectOneRow(res, fmt.Sprintf("delete comment %d", id), model.ErrActionAlreadyRecorded)
}
