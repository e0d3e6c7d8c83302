package moderation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"modix/model"
)

// Reconcile retries Discord effects that failed after their infraction was
// recorded. The current state of each infraction decides what is pushed: an
// apply for an infraction that is no longer active is dropped, and a remove
// is dropped when another active infraction still needs the effect. It
// returns how many flags were resolved.
func (s *Service) Reconcile(ctx context.Context) (int, error) {
	pending, err := s.store.ListPending(ctx)
	if err != nil {
		return 0, fmt.Errorf("list pending effects: %w", err)
	}

	resolved := 0
	var errs []error
	for _, inf := range pending {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		ok, err := s.reconcileOne(ctx, inf)
		if err != nil {
			errs = append(errs, fmt.Errorf("reconcile infraction %d: %w", inf.ID, err))
			continue
		}
		if ok {
			resolved++
		}
	}

	if len(pending) > 0 {
		s.log.Info("reconciliation finished",
			zap.Int("pending", len(pending)),
			zap.Int("resolved", resolved))
	}
	return resolved, errors.Join(errs...)
}

func (s *Service) reconcileOne(ctx context.Context, inf model.Infraction) (bool, error) {
	unlock := s.lockSubject(inf.GuildID, inf.SubjectID, inf.Type)
	defer unlock()

	current, err := s.store.Get(ctx, inf.ID)
	if err != nil {
		return false, err
	}

	var res Result
	switch current.PendingEffect {
	case model.EffectNone:
		return false, nil
	case model.EffectApply:
		if !current.IsActive(s.now()) {
			if err := s.store.SetPendingEffect(ctx, current.ID, model.EffectNone); err != nil {
				return false, err
			}
			return true, nil
		}
		res = s.pushEffect(ctx, current, model.EffectApply)
	case model.EffectRemove:
		res = s.undoEffect(ctx, current)
		if res.Effect == EffectNotApplicable {
			if err := s.store.SetPendingEffect(ctx, current.ID, model.EffectNone); err != nil {
				return false, err
			}
			return true, nil
		}
	default:
		return false, fmt.Errorf("unknown pending effect %q", current.PendingEffect)
	}

	if res.Pending() {
		return false, res.EffectErr
	}
	return true, nil
}

// ReapplyActiveEffects re-applies the active mute of a member who rejoined
// the guild. Bans need nothing: a banned user cannot rejoin.
func (s *Service) ReapplyActiveEffects(ctx context.Context, guildID, userID string) error {
	unlock := s.lockSubject(guildID, userID, model.InfractionMute)
	defer unlock()

	active, err := s.store.FindActive(ctx, guildID, userID, model.InfractionMute, s.now())
	if err != nil {
		return err
	}
	if len(active) == 0 {
		return nil
	}

	res := s.pushEffect(ctx, active[len(active)-1], model.EffectApply)
	if res.Pending() {
		return res.EffectErr
	}
	s.log.Info("re-applied mute on rejoin",
		zap.String("guild_id", guildID),
		zap.String("user_id", userID),
		zap.Int64("infraction_id", res.Infraction.ID))
	return nil
}
