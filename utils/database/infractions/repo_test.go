package infractions_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modix/model"
	"modix/utils/database"
	"modix/utils/database/actions"
	"modix/utils/database/infractions"
	"modix/utils/database/testhelper"
)

const (
	guildID = "100"
	modID   = "200"
	userID  = "300"
)

var t0 = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	actions *actions.Repo
	repo    *infractions.Repo
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testhelper.SetupTestDB(t)
	return fixture{actions: actions.New(db), repo: infractions.New(db)}
}

func (f fixture) action(t *testing.T, typ model.ActionType, at time.Time) int64 {
	t.Helper()
	entry, err := f.actions.Insert(context.Background(), model.ActionLogEntry{
		GuildID:   guildID,
		Type:      typ,
		CreatedAt: at,
		CreatedBy: model.Actor{GuildID: guildID, UserID: modID},
	})
	require.NoError(t, err)
	return entry.ID
}

func (f fixture) insert(t *testing.T, subject string, typ model.InfractionType, at time.Time, d *time.Duration) model.Infraction {
	t.Helper()
	inf := model.Infraction{
		GuildID:        guildID,
		SubjectID:      subject,
		Type:           typ,
		Reason:         "reason",
		Duration:       d,
		CreatedAt:      at,
		CreateActionID: f.action(t, model.ActionInfractionCreate, at),
	}
	id, err := f.repo.Insert(context.Background(), inf)
	require.NoError(t, err)
	got, err := f.repo.Get(context.Background(), id)
	require.NoError(t, err)
	return got
}

func durationPtr(d time.Duration) *time.Duration { return &d }

func TestRepo_InsertAndGet(t *testing.T) {
	f := setup(t)

	got := f.insert(t, userID, model.InfractionMute, t0, durationPtr(time.Hour))

	assert.Equal(t, guildID, got.GuildID)
	assert.Equal(t, userID, got.SubjectID)
	assert.Equal(t, model.InfractionMute, got.Type)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, modID, got.CreatedByID)
	require.NotNil(t, got.Duration)
	assert.Equal(t, time.Hour, *got.Duration)
	assert.Nil(t, got.RescindActionID)
	assert.Equal(t, model.EffectNone, got.PendingEffect)
}

func TestRepo_GetUnknown(t *testing.T) {
	f := setup(t)

	_, err := f.repo.Get(context.Background(), 42)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestRepo_InsertRequiresCreateAction(t *testing.T) {
	f := setup(t)

	_, err := f.repo.Insert(context.Background(), model.Infraction{
		GuildID:        guildID,
		SubjectID:      userID,
		Type:           model.InfractionNotice,
		Reason:         "orphan",
		CreateActionID: 999,
	})
	require.Error(t, err)
}

func TestRepo_SetOnceColumns(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	inf := f.insert(t, userID, model.InfractionBan, t0, nil)

	first := f.action(t, model.ActionInfractionRescind, t0.Add(time.Minute))
	require.NoError(t, f.repo.SetRescinded(ctx, inf.ID, first, nil))

	second := f.action(t, model.ActionInfractionRescind, t0.Add(2*time.Minute))
	err := f.repo.SetRescinded(ctx, inf.ID, second, nil)
	require.ErrorIs(t, err, model.ErrActionAlreadyRecorded)

	got, err := f.repo.Get(ctx, inf.ID)
	require.NoError(t, err)
	require.NotNil(t, got.RescindActionID)
	assert.Equal(t, first, *got.RescindActionID)

	del := f.action(t, model.ActionInfractionDelete, t0.Add(3*time.Minute))
	require.NoError(t, f.repo.SetDeleted(ctx, inf.ID, del))
	err = f.repo.SetDeleted(ctx, inf.ID, f.action(t, model.ActionInfractionDelete, t0))
	require.ErrorIs(t, err, model.ErrActionAlreadyRecorded)
}

func TestRepo_SetRestoredRequiresRescind(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	inf := f.insert(t, userID, model.InfractionWarning, t0, nil)

	err := f.repo.SetRestored(ctx, inf.ID, f.action(t, model.ActionInfractionRestore, t0))
	require.ErrorIs(t, err, model.ErrActionAlreadyRecorded)

	require.NoError(t, f.repo.SetRescinded(ctx, inf.ID, f.action(t, model.ActionInfractionRescind, t0), nil))
	require.NoError(t, f.repo.SetRestored(ctx, inf.ID, f.action(t, model.ActionInfractionRestore, t0)))

	got, err := f.repo.Get(ctx, inf.ID)
	require.NoError(t, err)
	assert.False(t, got.IsRescinded())
	assert.True(t, got.IsActive(t0))
}

func TestRepo_SetUpdatedRecomputesExpiry(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	inf := f.insert(t, userID, model.InfractionMute, t0, durationPtr(time.Hour))

	action := f.action(t, model.ActionInfractionUpdate, t0.Add(time.Minute))
	require.NoError(t, f.repo.SetUpdated(ctx, inf.ID, action, "edited", inf.CreatedAt, durationPtr(2*time.Hour)))

	due, err := f.repo.ListDue(ctx, t0.Add(90*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, due)

	due, err = f.repo.ListDue(ctx, t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "edited", due[0].Reason)
}

func TestRepo_FindActiveBoundaries(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.insert(t, userID, model.InfractionMute, t0, durationPtr(time.Hour))

	active, err := f.repo.FindActive(ctx, guildID, userID, model.InfractionMute, t0.Add(time.Hour-time.Millisecond))
	require.NoError(t, err)
	assert.Len(t, active, 1)

	active, err = f.repo.FindActive(ctx, guildID, userID, model.InfractionMute, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestRepo_ListDueSkipsRescindedAndPermanent(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	f.insert(t, "1", model.InfractionMute, t0, durationPtr(time.Minute))
	rescinded := f.insert(t, "2", model.InfractionBan, t0, durationPtr(time.Minute))
	f.insert(t, "3", model.InfractionBan, t0, nil)
	f.insert(t, "4", model.InfractionWarning, t0, durationPtr(time.Minute))
	require.NoError(t, f.repo.SetRescinded(ctx, rescinded.ID, f.action(t, model.ActionInfractionRescind, t0), nil))

	due, err := f.repo.ListDue(ctx, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, "1", due[0].SubjectID)
}

func TestRepo_SearchOrdering(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	a := f.insert(t, "1", model.InfractionNotice, t0, nil)
	b := f.insert(t, "2", model.InfractionWarning, t0, nil)
	c := f.insert(t, "3", model.InfractionNotice, t0.Add(time.Minute), nil)

	got, err := f.repo.Search(ctx, model.InfractionSearchCriteria{GuildID: guildID},
		[]model.InfractionSort{{Field: model.SortByCreated, Descending: true}})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, ids(got))

	again, err := f.repo.Search(ctx, model.InfractionSearchCriteria{GuildID: guildID},
		[]model.InfractionSort{{Field: model.SortByCreated, Descending: true}})
	require.NoError(t, err)
	assert.Equal(t, got, again)

	page, err := f.repo.Search(ctx, model.InfractionSearchCriteria{GuildID: guildID, Offset: 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{b.ID, c.ID}, ids(page))

	notices, err := f.repo.Search(ctx, model.InfractionSearchCriteria{
		GuildID: guildID,
		Types:   []model.InfractionType{model.InfractionNotice},
		Limit:   1,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{a.ID}, ids(notices))

	_, err = f.repo.Search(ctx, model.InfractionSearchCriteria{}, []model.InfractionSort{{Field: "bogus"}})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestRepo_SearchFlags(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	live := f.insert(t, "1", model.InfractionNotice, t0, nil)
	rescinded := f.insert(t, "2", model.InfractionNotice, t0, nil)
	deleted := f.insert(t, "3", model.InfractionNotice, t0, nil)
	require.NoError(t, f.repo.SetRescinded(ctx, rescinded.ID, f.action(t, model.ActionInfractionRescind, t0), nil))
	require.NoError(t, f.repo.SetDeleted(ctx, deleted.ID, f.action(t, model.ActionInfractionDelete, t0)))

	yes, no := true, false

	got, err := f.repo.Search(ctx, model.InfractionSearchCriteria{IsDeleted: &no}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{live.ID, rescinded.ID}, ids(got))

	got, err = f.repo.Search(ctx, model.InfractionSearchCriteria{IsRescinded: &yes}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{rescinded.ID}, ids(got))

	now := t0.Add(time.Hour)
	got, err = f.repo.Search(ctx, model.InfractionSearchCriteria{ActiveAt: &now}, nil)
	require.NoError(t, err)
	assert.Equal(t, []int64{live.ID}, ids(got))
}

func TestRepo_PendingEffect(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	inf := f.insert(t, userID, model.InfractionBan, t0, nil)

	require.NoError(t, f.repo.SetPendingEffect(ctx, inf.ID, model.EffectApply))
	pending, err := f.repo.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, model.EffectApply, pending[0].PendingEffect)

	require.NoError(t, f.repo.SetPendingEffect(ctx, inf.ID, model.EffectNone))
	pending, err = f.repo.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRepo_RollbackDiscardsWrites(t *testing.T) {
	ctx := context.Background()
	db := testhelper.SetupTestDB(t)
	f := fixture{actions: actions.New(db), repo: infractions.New(db)}
	tx := database.NewTxManager(db)

	err := tx.RunInTx(ctx, func(ctx context.Context) error {
		entry, err := f.actions.Insert(ctx, model.ActionLogEntry{
			GuildID: guildID, Type: model.ActionInfractionCreate, CreatedAt: t0,
			CreatedBy: model.Actor{GuildID: guildID, UserID: modID},
		})
		require.NoError(t, err)
		_, err = f.repo.Insert(ctx, model.Infraction{
			GuildID: guildID, SubjectID: userID, Type: model.InfractionNotice,
			Reason: "x", CreatedAt: t0, CreateActionID: entry.ID,
		})
		require.NoError(t, err)
		return model.ErrConflict
	})
	require.ErrorIs(t, err, model.ErrConflict)

	got, err := f.repo.Search(ctx, model.InfractionSearchCriteria{}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	entries, err := f.actions.ListByGuild(ctx, guildID, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRepo_CountActiveByType(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.insert(t, "1", model.InfractionWarning, t0, nil)
	f.insert(t, "2", model.InfractionWarning, t0, nil)
	f.insert(t, "3", model.InfractionMute, t0, durationPtr(time.Minute))

	counts, err := f.repo.CountActiveByType(ctx, guildID, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, map[model.InfractionType]int{model.InfractionWarning: 2}, counts)
}

func ids(infs []model.Infraction) []int64 {
	out := make([]int64, len(infs))
	for i, inf := range infs {
		out[i] = inf.ID
	}
	return out
}
