package promotions_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modix/auditlog"
	"modix/model"
	"modix/promotions"
	"modix/utils/database"
	"modix/utils/database/actions"
	"modix/utils/database/campaigns"
	"modix/utils/database/testhelper"
)

const (
	guildID = "10"
	rankID  = "77"
)

var (
	nominator = model.Actor{GuildID: guildID, UserID: "1"}
	voter     = model.Actor{GuildID: guildID, UserID: "2"}
	subjectID = "3"
)

type rankSet map[string]bool

func (r rankSet) IsRankRole(_ context.Context, _, roleID string) (bool, error) {
	return r[roleID], nil
}

type fixture struct {
	svc      *promotions.Service
	recorder *auditlog.Recorder
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testhelper.SetupTestDB(t)
	recorder := auditlog.New(actions.New(db), model.SystemClock{})
	svc := promotions.NewService(campaigns.New(db), recorder, database.NewTxManager(db), rankSet{rankID: true}, nil, nil)
	return fixture{svc: svc, recorder: recorder}
}

func TestCreateCampaign(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	campaign, err := f.svc.CreateCampaign(ctx, subjectID, rankID, nominator, "great helper")
	require.NoError(t, err)
	assert.True(t, campaign.IsOpen())
	assert.Equal(t, nominator.UserID, campaign.CreatedByID)

	entry, err := f.recorder.Get(ctx, campaign.CreateActionID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionCampaignCreate, entry.Type)

	comments, err := f.svc.GetComments(ctx, guildID, campaign.ID)
	require.NoError(t, err)
	require.Len(t, comments, 1)
	assert.Equal(t, model.SentimentApprove, comments[0].Sentiment)
	assert.Equal(t, "great helper", comments[0].Content)

	_, err = f.svc.CreateCampaign(ctx, subjectID, rankID, voter, "me too")
	require.ErrorIs(t, err, model.ErrCampaignAlreadyOpen)

	// Nothing of the rejected attempt was written.
	history, err := f.recorder.History(ctx, guildID, nil, 0)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestCreateCampaign_Validation(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.CreateCampaign(ctx, nominator.UserID, rankID, nominator, "me")
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.CreateCampaign(ctx, subjectID, "not-a-rank", nominator, "ok")
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.CreateCampaign(ctx, subjectID, rankID, nominator, " ")
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestAddComment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	campaign, err := f.svc.CreateCampaign(ctx, subjectID, rankID, nominator, "great helper")
	require.NoError(t, err)

	comment, err := f.svc.AddComment(ctx, campaign.ID, model.SentimentOppose, "too new", voter)
	require.NoError(t, err)
	assert.Equal(t, voter.UserID, comment.CreatedByID)

	_, err = f.svc.AddComment(ctx, campaign.ID, model.SentimentApprove, "changed my mind", voter)
	require.ErrorIs(t, err, model.ErrConflict)

	_, err = f.svc.AddComment(ctx, campaign.ID, model.SentimentApprove, "pick me",
		model.Actor{GuildID: guildID, UserID: subjectID})
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.AddComment(ctx, campaign.ID, "Meh", "x", voter)
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.AddComment(ctx, campaign.ID, model.SentimentNeutral, "x", model.Actor{GuildID: "other", UserID: "5"})
	require.ErrorIs(t, err, model.ErrNotFound)

	// Retracting frees the slot for a new opinion.
	require.NoError(t, f.svc.DeleteComment(ctx, comment.ID, voter))
	_, err = f.svc.AddComment(ctx, campaign.ID, model.SentimentApprove, "changed my mind", voter)
	require.NoError(t, err)

	comments, err := f.svc.GetComments(ctx, guildID, campaign.ID)
	require.NoError(t, err)
	tally := promotions.CountSentiments(comments)
	assert.Equal(t, promotions.Tally{Approve: 2}, tally)
	assert.Equal(t, 2, tally.Total())
}

func TestCloseCampaign(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	campaign, err := f.svc.CreateCampaign(ctx, subjectID, rankID, nominator, "great helper")
	require.NoError(t, err)
	comments, err := f.svc.GetComments(ctx, guildID, campaign.ID)
	require.NoError(t, err)

	_, err = f.svc.CloseCampaign(ctx, campaign.ID, "Maybe", nominator)
	require.ErrorIs(t, err, model.ErrValidation)

	closed, err := f.svc.CloseCampaign(ctx, campaign.ID, model.OutcomeAccepted, nominator)
	require.NoError(t, err)
	assert.False(t, closed.IsOpen())
	require.NotNil(t, closed.Outcome)
	assert.Equal(t, model.OutcomeAccepted, *closed.Outcome)

	entry, err := f.recorder.Get(ctx, *closed.CloseActionID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionCampaignClose, entry.Type)

	_, err = f.svc.CloseCampaign(ctx, campaign.ID, model.OutcomeRejected, nominator)
	require.ErrorIs(t, err, model.ErrCampaignClosed)

	_, err = f.svc.AddComment(ctx, campaign.ID, model.SentimentApprove, "late", voter)
	require.ErrorIs(t, err, model.ErrCampaignClosed)

	err = f.svc.DeleteComment(ctx, comments[0].ID, nominator)
	require.ErrorIs(t, err, model.ErrCampaignClosed)

	// A closed campaign no longer blocks a new one.
	_, err = f.svc.CreateCampaign(ctx, subjectID, rankID, nominator, "second try")
	require.NoError(t, err)

	open, err := f.svc.SearchCampaigns(ctx, model.CampaignSearchCriteria{GuildID: guildID, OpenOnly: true})
	require.NoError(t, err)
	assert.Len(t, open, 1)
}

func TestDeleteComment(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	campaign, err := f.svc.CreateCampaign(ctx, subjectID, rankID, nominator, "great helper")
	require.NoError(t, err)
	comment, err := f.svc.AddComment(ctx, campaign.ID, model.SentimentNeutral, "unsure", voter)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteComment(ctx, comment.ID, voter))

	err = f.svc.DeleteComment(ctx, comment.ID, voter)
	require.ErrorIs(t, err, model.ErrActionAlreadyRecorded)

	err = f.svc.DeleteComment(ctx, 999, voter)
	require.True(t, errors.Is(err, model.ErrNotFound))

	comments, err := f.svc.GetComments(ctx, guildID, campaign.ID)
	require.NoError(t, err)
	assert.Len(t, comments, 1)
}
