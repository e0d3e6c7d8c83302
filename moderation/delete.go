package moderation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"modix/model"
)

// DeleteInfraction hides an infraction from searches. Discord is left alone:
// a deleted temporary mute still lapses through the expiry sweep.
func (s *Service) DeleteInfraction(ctx context.Context, id int64, actor model.Actor) error {
	inf, err := s.getInGuild(ctx, id, actor.GuildID)
	if err != nil {
		return err
	}
	if err := checkActor(inf.GuildID, actor); err != nil {
		return err
	}

	var deleted model.Infraction
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.IsDeleted() {
			return fmt.Errorf("infraction %d: %w", id, model.ErrActionAlreadyRecorded)
		}

		entry, err := s.actions.RecordAction(ctx, current.GuildID, model.ActionInfractionDelete, actor)
		if err != nil {
			return err
		}
		if err := s.store.SetDeleted(ctx, id, entry.ID); err != nil {
			return err
		}
		deleted, err = s.store.Get(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("delete infraction %d: %w", id, err)
	}

	s.log.Info("infraction deleted", zap.Int64("infraction_id", id), zap.String("actor_id", actor.UserID))
	s.notify(ctx, model.ActionInfractionDelete, Result{Infraction: deleted, Effect: EffectNotApplicable}, actor)
	return nil
}
