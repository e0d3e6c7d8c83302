package moderation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"modix/model"
)

// RestoreInfraction makes a rescinded infraction active again and re-applies
// its effect. Temporary mutes and bans cannot be restored: once rescinded
// they would never be swept again.
func (s *Service) RestoreInfraction(ctx context.Context, id int64, actor model.Actor) (Result, error) {
	inf, err := s.getInGuild(ctx, id, actor.GuildID)
	if err != nil {
		return Result{}, err
	}
	if err := checkActor(inf.GuildID, actor); err != nil {
		return Result{}, err
	}

	unlock := s.lockSubject(inf.GuildID, inf.SubjectID, inf.Type)
	defer unlock()

	var restored model.Infraction
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		switch {
		case current.IsDeleted():
			return model.NewValidationError("id", "deleted infractions cannot be restored")
		case current.RestoreActionID != nil:
			return fmt.Errorf("infraction %d: %w", id, model.ErrActionAlreadyRecorded)
		case current.RescindActionID == nil:
			return model.NewValidationError("id", "only rescinded infractions can be restored")
		case current.Duration != nil:
			return model.NewValidationError("id", "temporary infractions cannot be restored")
		}

		if current.Type.Exclusive() {
			active, err := s.store.FindActive(ctx, current.GuildID, current.SubjectID, current.Type, s.now())
			if err != nil {
				return err
			}
			if len(active) > 0 {
				return fmt.Errorf("%s for user %s: infraction %d: %w",
					current.Type, current.SubjectID, active[0].ID, model.ErrDuplicateActiveInfraction)
			}
		}

		entry, err := s.actions.RecordAction(ctx, current.GuildID, model.ActionInfractionRestore, actor)
		if err != nil {
			return err
		}
		if err := s.store.SetRestored(ctx, id, entry.ID); err != nil {
			return err
		}
		restored, err = s.store.Get(ctx, id)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("restore infraction %d: %w", id, err)
	}

	s.log.Info("infraction restored", zap.Int64("infraction_id", id), zap.String("actor_id", actor.UserID))

	res := s.pushEffect(ctx, restored, model.EffectApply)
	s.notify(ctx, model.ActionInfractionRestore, res, actor)
	return res, nil
}
