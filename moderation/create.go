package moderation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"modix/model"
)

const maxReasonLength = 1000

// CreateInfractionInput describes a new infraction.
type CreateInfractionInput struct {
	GuildID   string
	SubjectID string
	Type      model.InfractionType
	Reason    string
	// Duration makes a mute or ban temporary. Nil means permanent.
	Duration *time.Duration
}

func validateReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return model.NewValidationError("reason", "reason is required")
	}
	if len([]rune(reason)) > maxReasonLength {
		return model.NewValidationError("reason", fmt.Sprintf("reason must be at most %d characters", maxReasonLength))
	}
	return nil
}

func validateDuration(typ model.InfractionType, d *time.Duration) error {
	if d == nil {
		return nil
	}
	if !typ.Exclusive() {
		return model.NewValidationError("duration", fmt.Sprintf("%s infractions cannot have a duration", typ))
	}
	if *d < time.Millisecond {
		return model.NewValidationError("duration", "duration must be positive")
	}
	return nil
}

func (in CreateInfractionInput) Validate(actor model.Actor) error {
	if in.GuildID == "" {
		return model.NewValidationError("guild_id", "guild is required")
	}
	if in.SubjectID == "" {
		return model.NewValidationError("subject_id", "subject is required")
	}
	if !in.Type.Valid() {
		return model.NewValidationError("type", fmt.Sprintf("unknown infraction type %q", in.Type))
	}
	if err := validateReason(in.Reason); err != nil {
		return err
	}
	if err := validateDuration(in.Type, in.Duration); err != nil {
		return err
	}
	if err := checkActor(in.GuildID, actor); err != nil {
		return err
	}
	if in.SubjectID == actor.UserID {
		return model.NewValidationError("subject_id", "you cannot infract yourself")
	}
	return nil
}

// CreateInfraction records a new infraction and then applies its effect.
// A second active mute or ban for the same member is refused with
// model.ErrDuplicateActiveInfraction.
func (s *Service) CreateInfraction(ctx context.Context, in CreateInfractionInput, actor model.Actor) (Result, error) {
	if err := in.Validate(actor); err != nil {
		return Result{}, err
	}

	unlock := s.lockSubject(in.GuildID, in.SubjectID, in.Type)
	defer unlock()

	var created model.Infraction
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if in.Type.Exclusive() {
			active, err := s.store.FindActive(ctx, in.GuildID, in.SubjectID, in.Type, s.now())
			if err != nil {
				return err
			}
			if len(active) > 0 {
				return fmt.Errorf("%s for user %s: infraction %d: %w",
					in.Type, in.SubjectID, active[0].ID, model.ErrDuplicateActiveInfraction)
			}
		}

		entry, err := s.actions.RecordAction(ctx, in.GuildID, model.ActionInfractionCreate, actor)
		if err != nil {
			return err
		}

		id, err := s.store.Insert(ctx, model.Infraction{
			GuildID:        in.GuildID,
			SubjectID:      in.SubjectID,
			Type:           in.Type,
			Reason:         strings.TrimSpace(in.Reason),
			Duration:       in.Duration,
			CreatedAt:      entry.CreatedAt,
			CreateActionID: entry.ID,
		})
		if err != nil {
			return err
		}

		created, err = s.store.Get(ctx, id)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("create %s infraction: %w", in.Type, err)
	}

	s.log.Info("infraction created",
		zap.Int64("infraction_id", created.ID),
		zap.String("guild_id", created.GuildID),
		zap.String("subject_id", created.SubjectID),
		zap.String("type", string(created.Type)),
		zap.String("actor_id", actor.UserID))

	res := s.pushEffect(ctx, created, model.EffectApply)
	s.notify(ctx, model.ActionInfractionCreate, res, actor)
	return res, nil
}
