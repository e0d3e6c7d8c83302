// Package promotions manages promotion campaigns and the comments members
// leave on them. Granting the target role when a campaign is accepted is up
// to the caller.
package promotions

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"modix/model"
)

const maxCommentLength = 1000

type campaignStore interface {
	InsertCampaign(ctx context.Context, c model.PromotionCampaign) (int64, error)
	GetCampaign(ctx context.Context, id int64) (model.PromotionCampaign, error)
	SearchCampaigns(ctx context.Context, criteria model.CampaignSearchCriteria) ([]model.PromotionCampaign, error)
	SetClosed(ctx context.Context, id, actionID int64, outcome model.CampaignOutcome) error
	InsertComment(ctx context.Context, c model.PromotionComment) (int64, error)
	GetComment(ctx context.Context, id int64) (model.PromotionComment, error)
	ListComments(ctx context.Context, campaignID int64, includeDeleted bool) ([]model.PromotionComment, error)
	SetCommentDeleted(ctx context.Context, id, actionID int64) error
}

type actionRecorder interface {
	RecordAction(ctx context.Context, guildID string, typ model.ActionType, actor model.Actor) (model.ActionLogEntry, error)
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// RankChecker tells whether a role may be the target of a campaign.
type RankChecker interface {
	IsRankRole(ctx context.Context, guildID, roleID string) (bool, error)
}

// Notifier hears about committed campaign changes. comment is nil for
// events that do not involve one.
type Notifier interface {
	NotifyCampaign(ctx context.Context, action model.ActionType, campaign model.PromotionCampaign, comment *model.PromotionComment, actor model.Actor)
}

type Service struct {
	store    campaignStore
	actions  actionRecorder
	tx       txRunner
	ranks    RankChecker
	notifier Notifier
	log      *zap.Logger
}

// NewService wires the service. ranks and notifier may be nil.
func NewService(store campaignStore, actions actionRecorder, tx txRunner, ranks RankChecker, notifier Notifier, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    store,
		actions:  actions,
		tx:       tx,
		ranks:    ranks,
		notifier: notifier,
		log:      log.With(zap.String("service", "promotions")),
	}
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return model.NewValidationError("content", "comment is required")
	}
	if len([]rune(content)) > maxCommentLength {
		return model.NewValidationError("content", fmt.Sprintf("comment must be at most %d characters", maxCommentLength))
	}
	return nil
}

func checkActor(actor model.Actor) error {
	if actor.GuildID == "" || actor.UserID == "" {
		return model.NewValidationError("actor", "actor is required")
	}
	return nil
}

// CreateCampaign opens a campaign to move subjectID to targetRoleID in the
// actor's guild, with the actor's comment as its first approving comment.
func (s *Service) CreateCampaign(ctx context.Context, subjectID, targetRoleID string, actor model.Actor, comment string) (model.PromotionCampaign, error) {
	if err := checkActor(actor); err != nil {
		return model.PromotionCampaign{}, err
	}
	if subjectID == "" {
		return model.PromotionCampaign{}, model.NewValidationError("subject_id", "subject is required")
	}
	if subjectID == actor.UserID {
		return model.PromotionCampaign{}, model.NewValidationError("subject_id", "you cannot nominate yourself")
	}
	if targetRoleID == "" {
		return model.PromotionCampaign{}, model.NewValidationError("target_role_id", "target role is required")
	}
	if err := validateContent(comment); err != nil {
		return model.PromotionCampaign{}, err
	}
	if s.ranks != nil {
		ok, err := s.ranks.IsRankRole(ctx, actor.GuildID, targetRoleID)
		if err != nil {
			return model.PromotionCampaign{}, err
		}
		if !ok {
			return model.PromotionCampaign{}, model.NewValidationError("target_role_id", "target role is not a rank")
		}
	}

	var (
		campaign model.PromotionCampaign
		first    model.PromotionComment
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		open, err := s.store.SearchCampaigns(ctx, model.CampaignSearchCriteria{
			GuildID: actor.GuildID, SubjectID: subjectID, OpenOnly: true,
		})
		if err != nil {
			return err
		}
		if len(open) > 0 {
			return fmt.Errorf("campaign %d for user %s: %w", open[0].ID, subjectID, model.ErrCampaignAlreadyOpen)
		}

		entry, err := s.actions.RecordAction(ctx, actor.GuildID, model.ActionCampaignCreate, actor)
		if err != nil {
			return err
		}
		id, err := s.store.InsertCampaign(ctx, model.PromotionCampaign{
			GuildID:        actor.GuildID,
			SubjectID:      subjectID,
			TargetRoleID:   targetRoleID,
			CreateActionID: entry.ID,
		})
		if err != nil {
			return err
		}

		first, err = s.insertComment(ctx, id, model.SentimentApprove, comment, actor)
		if err != nil {
			return err
		}
		campaign, err = s.store.GetCampaign(ctx, id)
		return err
	})
	if err != nil {
		return model.PromotionCampaign{}, fmt.Errorf("create campaign: %w", err)
	}

	s.log.Info("campaign created",
		zap.Int64("campaign_id", campaign.ID),
		zap.String("subject_id", subjectID),
		zap.String("target_role_id", targetRoleID),
		zap.String("actor_id", actor.UserID))
	s.notify(ctx, model.ActionCampaignCreate, campaign, &first, actor)
	return campaign, nil
}

func (s *Service) insertComment(ctx context.Context, campaignID int64, sentiment model.CommentSentiment, content string, actor model.Actor) (model.PromotionComment, error) {
	entry, err := s.actions.RecordAction(ctx, actor.GuildID, model.ActionCommentCreate, actor)
	if err != nil {
		return model.PromotionComment{}, err
	}
	id, err := s.store.InsertComment(ctx, model.PromotionComment{
		CampaignID:     campaignID,
		Sentiment:      sentiment,
		Content:        strings.TrimSpace(content),
		CreateActionID: entry.ID,
	})
	if err != nil {
		return model.PromotionComment{}, err
	}
	return s.store.GetComment(ctx, id)
}

// AddComment records a member's opinion on an open campaign. Each member
// keeps at most one live comment per campaign and the subject cannot
// comment on their own campaign.
func (s *Service) AddComment(ctx context.Context, campaignID int64, sentiment model.CommentSentiment, content string, actor model.Actor) (model.PromotionComment, error) {
	if err := checkActor(actor); err != nil {
		return model.PromotionComment{}, err
	}
	if !sentiment.Valid() {
		return model.PromotionComment{}, model.NewValidationError("sentiment", fmt.Sprintf("unknown sentiment %q", sentiment))
	}
	if err := validateContent(content); err != nil {
		return model.PromotionComment{}, err
	}

	var (
		campaign model.PromotionCampaign
		comment  model.PromotionComment
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		var err error
		campaign, err = s.getInGuild(ctx, campaignID, actor.GuildID)
		if err != nil {
			return err
		}
		if !campaign.IsOpen() {
			return fmt.Errorf("campaign %d: %w", campaignID, model.ErrCampaignClosed)
		}
		if campaign.SubjectID == actor.UserID {
			return model.NewValidationError("actor", "you cannot comment on your own campaign")
		}

		existing, err := s.store.ListComments(ctx, campaignID, false)
		if err != nil {
			return err
		}
		for _, c := range existing {
			if c.CreatedByID == actor.UserID {
				return fmt.Errorf("comment %d on campaign %d: %w", c.ID, campaignID, model.ErrConflict)
			}
		}

		comment, err = s.insertComment(ctx, campaignID, sentiment, content, actor)
		return err
	})
	if err != nil {
		return model.PromotionComment{}, fmt.Errorf("comment on campaign %d: %w", campaignID, err)
	}

	s.notify(ctx, model.ActionCommentCreate, campaign, &comment, actor)
	return comment, nil
}

// CloseCampaign settles a campaign once.
func (s *Service) CloseCampaign(ctx context.Context, campaignID int64, outcome model.CampaignOutcome, actor model.Actor) (model.PromotionCampaign, error) {
	if err := checkActor(actor); err != nil {
		return model.PromotionCampaign{}, err
	}
	if !outcome.Valid() {
		return model.PromotionCampaign{}, model.NewValidationError("outcome", fmt.Sprintf("unknown outcome %q", outcome))
	}

	var closed model.PromotionCampaign
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		campaign, err := s.getInGuild(ctx, campaignID, actor.GuildID)
		if err != nil {
			return err
		}
		if !campaign.IsOpen() {
			return fmt.Errorf("campaign %d: %w", campaignID, model.ErrCampaignClosed)
		}

		entry, err := s.actions.RecordAction(ctx, actor.GuildID, model.ActionCampaignClose, actor)
		if err != nil {
			return err
		}
		if err := s.store.SetClosed(ctx, campaignID, entry.ID, outcome); err != nil {
			return err
		}
		closed, err = s.store.GetCampaign(ctx, campaignID)
		return err
	})
	if err != nil {
		return model.PromotionCampaign{}, fmt.Errorf("close campaign %d: %w", campaignID, err)
	}

	s.log.Info("campaign closed",
		zap.Int64("campaign_id", campaignID),
		zap.String("outcome", string(outcome)),
		zap.String("actor_id", actor.UserID))
	s.notify(ctx, model.ActionCampaignClose, closed, nil, actor)
	return closed, nil
}

// DeleteComment retracts a comment on an open campaign.
func (s *Service) DeleteComment(ctx context.Context, commentID int64, actor model.Actor) error {
	if err := checkActor(actor); err != nil {
		return err
	}

	var (
		campaign model.PromotionCampaign
		deleted  model.PromotionComment
	)
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		comment, err := s.store.GetComment(ctx, commentID)
		if err != nil {
			return err
		}
		campaign, err = s.getInGuild(ctx, comment.CampaignID, actor.GuildID)
		if err != nil {
			return err
		}
		if !campaign.IsOpen() {
			return fmt.Errorf("campaign %d: %w", campaign.ID, model.ErrCampaignClosed)
		}
		if comment.IsDeleted() {
			return fmt.Errorf("comment %d: %w", commentID, model.ErrActionAlreadyRecorded)
		}

		entry, err := s.actions.RecordAction(ctx, actor.GuildID, model.ActionCommentDelete, actor)
		if err != nil {
			return err
		}
		if err := s.store.SetCommentDeleted(ctx, commentID, entry.ID); err != nil {
			return err
		}
		deleted, err = s.store.GetComment(ctx, commentID)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}

	s.notify(ctx, model.ActionCommentDelete, campaign, &deleted, actor)
	return nil
}

// GetCampaign returns a campaign of guildID.
func (s *Service) GetCampaign(ctx context.Context, guildID string, id int64) (model.PromotionCampaign, error) {
	return s.getInGuild(ctx, id, guildID)
}

func (s *Service) SearchCampaigns(ctx context.Context, criteria model.CampaignSearchCriteria) ([]model.PromotionCampaign, error) {
	return s.store.SearchCampaigns(ctx, criteria)
}

// GetComments returns the live comments of a campaign, oldest first.
func (s *Service) GetComments(ctx context.Context, guildID string, campaignID int64) ([]model.PromotionComment, error) {
	if _, err := s.getInGuild(ctx, campaignID, guildID); err != nil {
		return nil, err
	}
	return s.store.ListComments(ctx, campaignID, false)
}

func (s *Service) getInGuild(ctx context.Context, id int64, guildID string) (model.PromotionCampaign, error) {
	c, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return model.PromotionCampaign{}, err
	}
	if c.GuildID != guildID {
		return model.PromotionCampaign{}, fmt.Errorf("campaign %d: %w", id, model.ErrNotFound)
	}
	return c, nil
}

func (s *Service) notify(ctx context.Context, action model.ActionType, campaign model.PromotionCampaign, comment *model.PromotionComment, actor model.Actor) {
	if s.notifier == nil {
		return
	}
	s.notifier.NotifyCampaign(ctx, action, campaign, comment, actor)
}
