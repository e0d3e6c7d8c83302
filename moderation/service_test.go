package moderation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"modix/auditlog"
	"modix/model"
	"modix/moderation"
	"modix/utils/database"
	"modix/utils/database/actions"
	"modix/utils/database/infractions"
	"modix/utils/database/testhelper"
)

const (
	guildID = "1000"
	modID   = "2000"
	userID  = "3000"
	botID   = "9999"
)

var (
	t0  = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mod = model.Actor{GuildID: guildID, UserID: modID}
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

type fakeGateway struct {
	mu     sync.Mutex
	err    error
	calls  []string
	muted  map[string]bool
	banned map[string]bool
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{muted: map[string]bool{}, banned: map[string]bool{}}
}

func (g *fakeGateway) record(call string, apply func()) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, call)
	if g.err != nil {
		return g.err
	}
	apply()
	return nil
}

func (g *fakeGateway) ApplyMute(_ context.Context, _, userID, _ string) error {
	return g.record("ApplyMute:"+userID, func() { g.muted[userID] = true })
}

func (g *fakeGateway) RemoveMute(_ context.Context, _, userID string) error {
	return g.record("RemoveMute:"+userID, func() { delete(g.muted, userID) })
}

func (g *fakeGateway) ApplyBan(_ context.Context, _, userID, _ string, _ int) error {
	return g.record("ApplyBan:"+userID, func() { g.banned[userID] = true })
}

func (g *fakeGateway) RemoveBan(_ context.Context, _, userID string) error {
	return g.record("RemoveBan:"+userID, func() { delete(g.banned, userID) })
}

func (g *fakeGateway) Fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.err = err
}

func (g *fakeGateway) Calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.calls...)
}

func (g *fakeGateway) Muted(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.muted[userID]
}

func (g *fakeGateway) Banned(userID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.banned[userID]
}

// Forget drops every effect, as Discord does when a member leaves.
func (g *fakeGateway) Forget(userID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.muted, userID)
	g.calls = nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	actions []model.ActionType
}

func (n *fakeNotifier) NotifyInfraction(_ context.Context, action model.ActionType, _ moderation.Result, _ model.Actor) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.actions = append(n.actions, action)
}

type fixture struct {
	svc      *moderation.Service
	recorder *auditlog.Recorder
	gateway  *fakeGateway
	clock    *fakeClock
	notifier *fakeNotifier
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := testhelper.SetupTestDB(t)
	clock := &fakeClock{now: t0}
	recorder := auditlog.New(actions.New(db), clock)
	gw := newFakeGateway()
	notifier := &fakeNotifier{}
	svc := moderation.NewService(
		infractions.New(db),
		recorder,
		database.NewTxManager(db),
		gw,
		notifier,
		clock,
		nil,
		moderation.Options{GatewayTimeout: time.Second, SystemUserID: botID},
	)
	return fixture{svc: svc, recorder: recorder, gateway: gw, clock: clock, notifier: notifier}
}

func durationPtr(d time.Duration) *time.Duration { return &d }

func strPtr(s string) *string { return &s }

func (f fixture) create(t *testing.T, typ model.InfractionType, d *time.Duration) moderation.Result {
	t.Helper()
	res, err := f.svc.CreateInfraction(context.Background(), moderation.CreateInfractionInput{
		GuildID:   guildID,
		SubjectID: userID,
		Type:      typ,
		Reason:    "being rude",
		Duration:  d,
	}, mod)
	require.NoError(t, err)
	return res
}

func TestCreateInfraction_WarningWritesActionLog(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	res := f.create(t, model.InfractionWarning, nil)

	assert.Equal(t, moderation.EffectNotApplicable, res.Effect)
	assert.Empty(t, f.gateway.Calls())

	inf := res.Infraction
	assert.Equal(t, model.InfractionWarning, inf.Type)
	assert.Equal(t, "being rude", inf.Reason)
	assert.Equal(t, t0, inf.CreatedAt)
	assert.Equal(t, modID, inf.CreatedByID)
	assert.True(t, inf.IsActive(t0))

	entry, err := f.recorder.Get(ctx, inf.CreateActionID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionInfractionCreate, entry.Type)
	assert.Equal(t, mod, entry.CreatedBy)
	assert.Equal(t, inf.CreatedAt, entry.CreatedAt)
}

func TestCreateInfraction_MuteAppliesEffect(t *testing.T) {
	f := setup(t)

	res := f.create(t, model.InfractionMute, durationPtr(time.Hour))

	assert.Equal(t, moderation.EffectApplied, res.Effect)
	assert.NoError(t, res.EffectErr)
	assert.True(t, f.gateway.Muted(userID))
	assert.Equal(t, []model.ActionType{model.ActionInfractionCreate}, f.notifier.actions)
}

func TestCreateInfraction_DuplicateActiveMute(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.create(t, model.InfractionMute, durationPtr(time.Hour))

	_, err := f.svc.CreateInfraction(ctx, moderation.CreateInfractionInput{
		GuildID: guildID, SubjectID: userID, Type: model.InfractionMute, Reason: "again",
	}, mod)
	require.ErrorIs(t, err, model.ErrDuplicateActiveInfraction)

	// A ban is a different exclusive type and may coexist with the mute.
	f.create(t, model.InfractionBan, nil)

	// Notices and warnings never conflict.
	f.create(t, model.InfractionWarning, nil)
	f.create(t, model.InfractionWarning, nil)

	all, err := f.svc.SearchInfractions(ctx, model.InfractionSearchCriteria{GuildID: guildID})
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestCreateInfraction_AfterExpiryAllowsNewMute(t *testing.T) {
	f := setup(t)
	f.create(t, model.InfractionMute, durationPtr(time.Hour))

	f.clock.Set(t0.Add(time.Hour))
	second := f.create(t, model.InfractionMute, nil)
	assert.Equal(t, moderation.EffectApplied, second.Effect)

	// The sweep rescinds the old mute but must not lift the new one.
	expired, err := f.svc.ExpireDueInfractions(context.Background())
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.True(t, f.gateway.Muted(userID))
	assert.NotContains(t, f.gateway.Calls(), "RemoveMute:"+userID)
}

func TestCreateInfraction_Validation(t *testing.T) {
	f := setup(t)

	tests := []struct {
		name  string
		input moderation.CreateInfractionInput
		actor model.Actor
	}{
		{
			name:  "empty reason",
			input: moderation.CreateInfractionInput{GuildID: guildID, SubjectID: userID, Type: model.InfractionNotice, Reason: "  "},
			actor: mod,
		},
		{
			name:  "unknown type",
			input: moderation.CreateInfractionInput{GuildID: guildID, SubjectID: userID, Type: "Kick", Reason: "x"},
			actor: mod,
		},
		{
			name:  "zero duration",
			input: moderation.CreateInfractionInput{GuildID: guildID, SubjectID: userID, Type: model.InfractionMute, Reason: "x", Duration: durationPtr(0)},
			actor: mod,
		},
		{
			name:  "negative duration",
			input: moderation.CreateInfractionInput{GuildID: guildID, SubjectID: userID, Type: model.InfractionBan, Reason: "x", Duration: durationPtr(-time.Minute)},
			actor: mod,
		},
		{
			name:  "duration on a warning",
			input: moderation.CreateInfractionInput{GuildID: guildID, SubjectID: userID, Type: model.InfractionWarning, Reason: "x", Duration: durationPtr(time.Hour)},
			actor: mod,
		},
		{
			name:  "self infraction",
			input: moderation.CreateInfractionInput{GuildID: guildID, SubjectID: modID, Type: model.InfractionNotice, Reason: "x"},
			actor: mod,
		},
		{
			name:  "actor from another guild",
			input: moderation.CreateInfractionInput{GuildID: guildID, SubjectID: userID, Type: model.InfractionNotice, Reason: "x"},
			actor: model.Actor{GuildID: "other", UserID: modID},
		},
		{
			name:  "missing subject",
			input: moderation.CreateInfractionInput{GuildID: guildID, Type: model.InfractionNotice, Reason: "x"},
			actor: mod,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.CreateInfraction(context.Background(), tt.input, tt.actor)
			require.ErrorIs(t, err, model.ErrValidation)
		})
	}

	all, err := f.svc.SearchInfractions(context.Background(), model.InfractionSearchCriteria{})
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, f.gateway.Calls())
}

func TestCreateInfraction_ConcurrentMutesOnlyOneWins(t *testing.T) {
	f := setup(t)

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.CreateInfraction(context.Background(), moderation.CreateInfractionInput{
				GuildID: guildID, SubjectID: userID, Type: model.InfractionMute, Reason: "spam",
			}, mod)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, model.ErrDuplicateActiveInfraction)
	}
	assert.Equal(t, 1, succeeded)
}

func TestCreateInfraction_GatewayFailureIsPending(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.gateway.Fail(errors.New("discord unavailable"))

	res := f.create(t, model.InfractionBan, nil)

	assert.True(t, res.Pending())
	var gwErr *model.GatewayError
	require.ErrorAs(t, res.EffectErr, &gwErr)
	assert.Equal(t, userID, gwErr.SubjectID)
	assert.Equal(t, model.EffectApply, res.Infraction.PendingEffect)

	stored, err := f.svc.GetInfraction(ctx, guildID, res.Infraction.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EffectApply, stored.PendingEffect)
	assert.True(t, stored.IsActive(t0))

	resolved, err := f.svc.Reconcile(ctx)
	require.Error(t, err)
	assert.Zero(t, resolved)

	f.gateway.Fail(nil)
	resolved, err = f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	assert.True(t, f.gateway.Banned(userID))

	stored, err = f.svc.GetInfraction(ctx, guildID, res.Infraction.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EffectNone, stored.PendingEffect)

	resolved, err = f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Zero(t, resolved)
}

func TestReconcile_DropsApplyForInactiveInfraction(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.gateway.Fail(errors.New("timeout"))
	res := f.create(t, model.InfractionMute, durationPtr(time.Minute))
	require.True(t, res.Pending())

	f.gateway.Fail(nil)
	f.clock.Set(t0.Add(time.Hour))

	resolved, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	assert.False(t, f.gateway.Muted(userID))
}

func TestRescind_GatewayFailureQueuesRemove(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	f.create(t, model.InfractionMute, nil)

	f.gateway.Fail(errors.New("discord unavailable"))
	res, err := f.svc.RescindInfraction(ctx, guildID, userID, model.InfractionMute, mod, "appeal accepted")
	require.NoError(t, err)
	assert.True(t, res.Pending())
	assert.Equal(t, model.EffectRemove, res.Infraction.PendingEffect)
	assert.True(t, res.Infraction.IsRescinded())
	assert.True(t, f.gateway.Muted(userID))

	f.gateway.Fail(nil)
	resolved, err := f.svc.Reconcile(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, resolved)
	assert.False(t, f.gateway.Muted(userID))
}

func TestRescindInfraction_ByCriteria(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	_, err := f.svc.RescindInfraction(ctx, guildID, userID, model.InfractionBan, mod, "")
	require.ErrorIs(t, err, model.ErrNoActiveInfraction)

	_, err = f.svc.RescindInfraction(ctx, guildID, userID, model.InfractionWarning, mod, "")
	require.ErrorIs(t, err, model.ErrValidation)

	created := f.create(t, model.InfractionBan, nil)
	require.True(t, f.gateway.Banned(userID))

	res, err := f.svc.RescindInfraction(ctx, guildID, userID, model.InfractionBan, mod, "appeal accepted")
	require.NoError(t, err)
	assert.Equal(t, created.Infraction.ID, res.Infraction.ID)
	assert.Equal(t, moderation.EffectApplied, res.Effect)
	assert.False(t, f.gateway.Banned(userID))
	require.NotNil(t, res.Infraction.RescindReason)
	assert.Equal(t, "appeal accepted", *res.Infraction.RescindReason)

	entry, err := f.recorder.Get(ctx, *res.Infraction.RescindActionID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionInfractionRescind, entry.Type)

	_, err = f.svc.RescindInfraction(ctx, guildID, userID, model.InfractionBan, mod, "")
	require.ErrorIs(t, err, model.ErrNoActiveInfraction)
}

func TestRescindInfractionByID(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	warning := f.create(t, model.InfractionWarning, nil)

	res, err := f.svc.RescindInfractionByID(ctx, warning.Infraction.ID, mod, "")
	require.NoError(t, err)
	assert.Equal(t, moderation.EffectNotApplicable, res.Effect)
	assert.Nil(t, res.Infraction.RescindReason)
	assert.Equal(t, model.StateRescinded, res.Infraction.State(t0))

	_, err = f.svc.RescindInfractionByID(ctx, warning.Infraction.ID, mod, "")
	require.ErrorIs(t, err, model.ErrActionAlreadyRecorded)

	_, err = f.svc.RescindInfractionByID(ctx, 4242, mod, "")
	require.ErrorIs(t, err, model.ErrNotFound)

	_, err = f.svc.RescindInfractionByID(ctx, warning.Infraction.ID, model.Actor{GuildID: "other", UserID: modID}, "")
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestExpireDueInfractions_Boundaries(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	created := f.create(t, model.InfractionMute, durationPtr(time.Hour))

	f.clock.Set(t0.Add(time.Hour - time.Millisecond))
	expired, err := f.svc.ExpireDueInfractions(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)
	active, err := f.svc.ActiveInfraction(ctx, guildID, userID, model.InfractionMute)
	require.NoError(t, err)
	assert.Equal(t, created.Infraction.ID, active.ID)

	// Reading an expired infraction does not rescind it.
	f.clock.Set(t0.Add(time.Hour + time.Millisecond))
	_, err = f.svc.ActiveInfraction(ctx, guildID, userID, model.InfractionMute)
	require.ErrorIs(t, err, model.ErrNoActiveInfraction)
	stored, err := f.svc.GetInfraction(ctx, guildID, created.Infraction.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.RescindActionID)
	assert.Equal(t, model.StateExpired, stored.State(f.clock.Now()))

	expired, err = f.svc.ExpireDueInfractions(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, created.Infraction.ID, expired[0].ID)
	assert.False(t, f.gateway.Muted(userID))
	require.NotNil(t, expired[0].RescindReason)
	assert.Equal(t, "Expired", *expired[0].RescindReason)

	entry, err := f.recorder.Get(ctx, *expired[0].RescindActionID)
	require.NoError(t, err)
	assert.Equal(t, botID, entry.CreatedBy.UserID)

	expired, err = f.svc.ExpireDueInfractions(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)
}

func TestExpireDueInfractions_IncludesDeleted(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	created := f.create(t, model.InfractionMute, durationPtr(time.Minute))
	require.NoError(t, f.svc.DeleteInfraction(ctx, created.Infraction.ID, mod))

	f.clock.Set(t0.Add(time.Hour))
	expired, err := f.svc.ExpireDueInfractions(ctx)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.False(t, f.gateway.Muted(userID))
}

func TestUpdateInfraction(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	created := f.create(t, model.InfractionMute, durationPtr(time.Hour))

	err := f.svc.UpdateInfraction(ctx, created.Infraction.ID, moderation.UpdateInfractionInput{}, mod)
	require.ErrorIs(t, err, model.ErrValidation)

	err = f.svc.UpdateInfraction(ctx, created.Infraction.ID, moderation.UpdateInfractionInput{
		Reason:   strPtr("spamming links"),
		Duration: durationPtr(2 * time.Hour),
	}, mod)
	require.NoError(t, err)

	updated, err := f.svc.GetInfraction(ctx, guildID, created.Infraction.ID)
	require.NoError(t, err)
	assert.Equal(t, "spamming links", updated.Reason)
	require.NotNil(t, updated.Duration)
	assert.Equal(t, 2*time.Hour, *updated.Duration)
	require.NotNil(t, updated.UpdateActionID)

	entry, err := f.recorder.Get(ctx, *updated.UpdateActionID)
	require.NoError(t, err)
	assert.Equal(t, model.ActionInfractionUpdate, entry.Type)
	require.NotNil(t, entry.OriginalInfractionReason)
	assert.Equal(t, "being rude", *entry.OriginalInfractionReason)

	// The new duration moves the expiry.
	f.clock.Set(t0.Add(90 * time.Minute))
	expired, err := f.svc.ExpireDueInfractions(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)

	err = f.svc.UpdateInfraction(ctx, created.Infraction.ID, moderation.UpdateInfractionInput{Reason: strPtr("third")}, mod)
	require.ErrorIs(t, err, model.ErrActionAlreadyRecorded)
}

func TestUpdateInfraction_ClearDuration(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	created := f.create(t, model.InfractionBan, durationPtr(time.Hour))

	require.NoError(t, f.svc.UpdateInfraction(ctx, created.Infraction.ID,
		moderation.UpdateInfractionInput{ClearDuration: true}, mod))

	f.clock.Set(t0.Add(48 * time.Hour))
	expired, err := f.svc.ExpireDueInfractions(ctx)
	require.NoError(t, err)
	assert.Empty(t, expired)
	assert.True(t, f.gateway.Banned(userID))
}

func TestRestoreInfraction(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	created := f.create(t, model.InfractionBan, nil)

	_, err := f.svc.RestoreInfraction(ctx, created.Infraction.ID, mod)
	require.ErrorIs(t, err, model.ErrValidation)

	_, err = f.svc.RescindInfractionByID(ctx, created.Infraction.ID, mod, "mistake")
	require.NoError(t, err)
	assert.False(t, f.gateway.Banned(userID))

	res, err := f.svc.RestoreInfraction(ctx, created.Infraction.ID, mod)
	require.NoError(t, err)
	assert.Equal(t, moderation.EffectApplied, res.Effect)
	assert.True(t, res.Infraction.IsActive(t0))
	assert.True(t, f.gateway.Banned(userID))

	_, err = f.svc.RestoreInfraction(ctx, created.Infraction.ID, mod)
	require.ErrorIs(t, err, model.ErrActionAlreadyRecorded)

	// The rescind slot is spent.
	_, err = f.svc.RescindInfractionByID(ctx, created.Infraction.ID, mod, "")
	require.ErrorIs(t, err, model.ErrActionAlreadyRecorded)
	require.ErrorIs(t, err, model.ErrInfractionRestored)

	_, err = f.svc.RescindInfraction(ctx, guildID, userID, model.InfractionBan, mod, "")
	require.ErrorIs(t, err, model.ErrInfractionRestored)
	assert.True(t, f.gateway.Banned(userID))
}

func TestUpdateInfraction_RestoredRejectsDuration(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	created := f.create(t, model.InfractionMute, nil)
	id := created.Infraction.ID

	_, err := f.svc.RescindInfractionByID(ctx, id, mod, "mistake")
	require.NoError(t, err)
	_, err = f.svc.RestoreInfraction(ctx, id, mod)
	require.NoError(t, err)

	err = f.svc.UpdateInfraction(ctx, id, moderation.UpdateInfractionInput{Duration: durationPtr(time.Hour)}, mod)
	require.ErrorIs(t, err, model.ErrValidation)

	f.clock.Set(t0.Add(2 * time.Hour))
	inf, err := f.svc.GetInfraction(ctx, guildID, id)
	require.NoError(t, err)
	assert.Nil(t, inf.Duration)
	assert.Nil(t, inf.UpdateActionID)
	assert.True(t, inf.IsActive(f.clock.Now()))
	assert.True(t, f.gateway.Muted(userID))

	// Reason-only edits are still allowed.
	require.NoError(t, f.svc.UpdateInfraction(ctx, id, moderation.UpdateInfractionInput{Reason: strPtr("repeat offence")}, mod))
}

func TestRestoreInfraction_Conflicts(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	first := f.create(t, model.InfractionMute, nil)
	_, err := f.svc.RescindInfractionByID(ctx, first.Infraction.ID, mod, "")
	require.NoError(t, err)
	f.create(t, model.InfractionMute, nil)

	_, err = f.svc.RestoreInfraction(ctx, first.Infraction.ID, mod)
	require.ErrorIs(t, err, model.ErrDuplicateActiveInfraction)

	temporary, err := f.svc.CreateInfraction(ctx, moderation.CreateInfractionInput{
		GuildID: guildID, SubjectID: "4000", Type: model.InfractionBan, Reason: "x", Duration: durationPtr(time.Hour),
	}, mod)
	require.NoError(t, err)
	_, err = f.svc.RescindInfractionByID(ctx, temporary.Infraction.ID, mod, "")
	require.NoError(t, err)
	_, err = f.svc.RestoreInfraction(ctx, temporary.Infraction.ID, mod)
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestDeleteInfraction(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	created := f.create(t, model.InfractionMute, nil)
	callsBefore := len(f.gateway.Calls())

	require.NoError(t, f.svc.DeleteInfraction(ctx, created.Infraction.ID, mod))
	assert.Len(t, f.gateway.Calls(), callsBefore)

	err := f.svc.DeleteInfraction(ctx, created.Infraction.ID, mod)
	require.ErrorIs(t, err, model.ErrActionAlreadyRecorded)

	notDeleted := false
	visible, err := f.svc.SearchInfractions(ctx, model.InfractionSearchCriteria{GuildID: guildID, IsDeleted: &notDeleted})
	require.NoError(t, err)
	assert.Empty(t, visible)

	stored, err := f.svc.GetInfraction(ctx, guildID, created.Infraction.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsDeleted())
	assert.Equal(t, model.StateDeleted, stored.State(t0))

	_, err = f.svc.RestoreInfraction(ctx, created.Infraction.ID, mod)
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestSearchInfractions_StableOrder(t *testing.T) {
	ctx := context.Background()
	f := setup(t)
	a := f.create(t, model.InfractionNotice, nil)
	b := f.create(t, model.InfractionWarning, nil)
	f.clock.Set(t0.Add(time.Minute))
	c := f.create(t, model.InfractionNotice, nil)

	first, err := f.svc.SearchInfractions(ctx, model.InfractionSearchCriteria{GuildID: guildID})
	require.NoError(t, err)
	second, err := f.svc.SearchInfractions(ctx, model.InfractionSearchCriteria{GuildID: guildID})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.Len(t, first, 3)
	assert.Equal(t, c.Infraction.ID, first[0].ID)
	assert.Equal(t, a.Infraction.ID, first[1].ID)
	assert.Equal(t, b.Infraction.ID, first[2].ID)

	byType, err := f.svc.SearchInfractions(ctx, model.InfractionSearchCriteria{GuildID: guildID},
		model.InfractionSort{Field: model.SortByType})
	require.NoError(t, err)
	require.Len(t, byType, 3)
	assert.Equal(t, []int64{a.Infraction.ID, c.Infraction.ID, b.Infraction.ID},
		[]int64{byType[0].ID, byType[1].ID, byType[2].ID})

	_, err = f.svc.SearchInfractions(ctx, model.InfractionSearchCriteria{Limit: -1})
	require.ErrorIs(t, err, model.ErrValidation)
}

func TestReapplyActiveEffects(t *testing.T) {
	ctx := context.Background()
	f := setup(t)

	require.NoError(t, f.svc.ReapplyActiveEffects(ctx, guildID, userID))
	assert.Empty(t, f.gateway.Calls())

	f.create(t, model.InfractionMute, nil)
	f.gateway.Forget(userID)

	require.NoError(t, f.svc.ReapplyActiveEffects(ctx, guildID, userID))
	assert.True(t, f.gateway.Muted(userID))
	assert.Equal(t, []string{"ApplyMute:" + userID}, f.gateway.Calls())
}
