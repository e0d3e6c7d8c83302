package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"modix/model"
)

// UpdateInfractionInput lists the fields to change. Nil fields are kept.
type UpdateInfractionInput struct {
	Reason   *string
	Duration *time.Duration
	// ClearDuration makes a temporary mute or ban permanent.
	ClearDuration bool
}

func (in UpdateInfractionInput) validate(typ model.InfractionType) error {
	if in.Reason == nil && in.Duration == nil && !in.ClearDuration {
		return model.NewValidationError("input", "nothing to update")
	}
	if in.Duration != nil && in.ClearDuration {
		return model.NewValidationError("duration", "cannot set and clear the duration at once")
	}
	if in.Reason != nil {
		if err := validateReason(*in.Reason); err != nil {
			return err
		}
	}
	if in.ClearDuration && !typ.Exclusive() {
		return model.NewValidationError("duration", fmt.Sprintf("%s infractions have no duration", typ))
	}
	return validateDuration(typ, in.Duration)
}

// UpdateInfraction edits the reason and/or duration in place. The previous
// reason is kept on the InfractionUpdate action log entry. An infraction can
// be updated once.
func (s *Service) UpdateInfraction(ctx context.Context, id int64, in UpdateInfractionInput, actor model.Actor) error {
	inf, err := s.getInGuild(ctx, id, actor.GuildID)
	if err != nil {
		return err
	}
	if err := checkActor(inf.GuildID, actor); err != nil {
		return err
	}
	if err := in.validate(inf.Type); err != nil {
		return err
	}

	unlock := s.lockSubject(inf.GuildID, inf.SubjectID, inf.Type)
	defer unlock()

	var updated model.Infraction
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if current.IsDeleted() {
			return model.NewValidationError("id", "deleted infractions cannot be updated")
		}
		if in.Duration != nil && current.RestoreActionID != nil {
			// The rescind slot is spent, so the expiry sweep could never lift it.
			return model.NewValidationError("duration", "restored infractions cannot be given a duration")
		}
		if current.UpdateActionID != nil {
			return fmt.Errorf("infraction %d: %w", id, model.ErrActionAlreadyRecorded)
		}

		reason := current.Reason
		if in.Reason != nil {
			reason = strings.TrimSpace(*in.Reason)
		}
		duration := current.Duration
		switch {
		case in.ClearDuration:
			duration = nil
		case in.Duration != nil:
			duration = in.Duration
		}

		entry, err := s.actions.RecordInfractionUpdate(ctx, current.GuildID, actor, current.Reason)
		if err != nil {
			return err
		}
		if err := s.store.SetUpdated(ctx, id, entry.ID, reason, current.CreatedAt, duration); err != nil {
			return err
		}
		updated, err = s.store.Get(ctx, id)
		return err
	})
	if err != nil {
		return fmt.Errorf("update infraction %d: %w", id, err)
	}

	s.log.Info("infraction updated", zap.Int64("infraction_id", id), zap.String("actor_id", actor.UserID))
	s.notify(ctx, model.ActionInfractionUpdate, Result{Infraction: updated, Effect: EffectNotApplicable}, actor)
	return nil
}
