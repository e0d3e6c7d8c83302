package campaigns_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modix/model"
	"modix/utils/database/actions"
	"modix/utils/database/campaigns"
	"modix/utils/database/testhelper"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newAction(t *testing.T, repo *actions.Repo, typ model.ActionType) int64 {
	t.Helper()
	entry, err := repo.Insert(context.Background(), model.ActionLogEntry{
		GuildID:   "1",
		Type:      typ,
		CreatedAt: t0,
		CreatedBy: model.Actor{GuildID: "1", UserID: "2"},
	})
	require.NoError(t, err)
	return entry.ID
}

func TestRepo_OneOpenCampaignPerSubject(t *testing.T) {
	ctx := context.Background()
	db := testhelper.SetupTestDB(t)
	acts, repo := actions.New(db), campaigns.New(db)

	id, err := repo.InsertCampaign(ctx, model.PromotionCampaign{
		GuildID: "1", SubjectID: "9", TargetRoleID: "7",
		CreateActionID: newAction(t, acts, model.ActionCampaignCreate),
	})
	require.NoError(t, err)

	_, err = repo.InsertCampaign(ctx, model.PromotionCampaign{
		GuildID: "1", SubjectID: "9", TargetRoleID: "8",
		CreateActionID: newAction(t, acts, model.ActionCampaignCreate),
	})
	require.ErrorIs(t, err, model.ErrCampaignAlreadyOpen)

	require.NoError(t, repo.SetClosed(ctx, id, newAction(t, acts, model.ActionCampaignClose), model.OutcomeRejected))

	err = repo.SetClosed(ctx, id, newAction(t, acts, model.ActionCampaignClose), model.OutcomeAccepted)
	require.ErrorIs(t, err, model.ErrCampaignClosed)

	closed, err := repo.GetCampaign(ctx, id)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())
	require.NotNil(t, closed.Outcome)
	assert.Equal(t, model.OutcomeRejected, *closed.Outcome)

	_, err = repo.InsertCampaign(ctx, model.PromotionCampaign{
		GuildID: "1", SubjectID: "9", TargetRoleID: "8",
		CreateActionID: newAction(t, acts, model.ActionCampaignCreate),
	})
	require.NoError(t, err)

	open, err := repo.SearchCampaigns(ctx, model.CampaignSearchCriteria{GuildID: "1", OpenOnly: true})
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "8", open[0].TargetRoleID)
}

func TestRepo_Comments(t *testing.T) {
	ctx := context.Background()
	db := testhelper.SetupTestDB(t)
	acts, repo := actions.New(db), campaigns.New(db)

	campaignID, err := repo.InsertCampaign(ctx, model.PromotionCampaign{
		GuildID: "1", SubjectID: "9", TargetRoleID: "7",
		CreateActionID: newAction(t, acts, model.ActionCampaignCreate),
	})
	require.NoError(t, err)

	first, err := repo.InsertComment(ctx, model.PromotionComment{
		CampaignID: campaignID, Sentiment: model.SentimentApprove, Content: "yes",
		CreateActionID: newAction(t, acts, model.ActionCommentCreate),
	})
	require.NoError(t, err)
	_, err = repo.InsertComment(ctx, model.PromotionComment{
		CampaignID: campaignID, Sentiment: model.SentimentOppose, Content: "no",
		CreateActionID: newAction(t, acts, model.ActionCommentCreate),
	})
	require.NoError(t, err)

	require.NoError(t, repo.SetCommentDeleted(ctx, first, newAction(t, acts, model.ActionCommentDelete)))
	err = repo.SetCommentDeleted(ctx, first, newAction(t, acts, model.ActionCommentDelete))
	require.ErrorIs(t, err, model.ErrActionAlreadyRecorded)

	live, err := repo.ListComments(ctx, campaignID, false)
	require.NoError(t, err)
	require.Len(t, live, 1)
	assert.Equal(t, "no", live[0].Content)

	all, err := repo.ListComments(ctx, campaignID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = repo.GetComment(ctx, 12345)
	require.ErrorIs(t, err, model.ErrNotFound)
}
