package moderation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"modix/model"
)

// RescindInfraction rescinds the active mute or ban of a member. Notices and
// warnings are never active in that sense and can only be rescinded by ID.
func (s *Service) RescindInfraction(ctx context.Context, guildID, subjectID string, typ model.InfractionType, actor model.Actor, reason string) (Result, error) {
	if !typ.Exclusive() {
		return Result{}, model.NewValidationError("type",
			fmt.Sprintf("%s infractions can only be rescinded by ID", typ))
	}
	if subjectID == "" {
		return Result{}, model.NewValidationError("subject_id", "subject is required")
	}
	if err := checkActor(guildID, actor); err != nil {
		return Result{}, err
	}

	unlock := s.lockSubject(guildID, subjectID, typ)
	defer unlock()

	var rescinded model.Infraction
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		active, err := s.store.FindActive(ctx, guildID, subjectID, typ, s.now())
		if err != nil {
			return err
		}
		if len(active) == 0 {
			return fmt.Errorf("%s for user %s in guild %s: %w", typ, subjectID, guildID, model.ErrNoActiveInfraction)
		}
		rescinded, err = s.rescindInTx(ctx, active[len(active)-1], actor, reason)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("rescind %s: %w", typ, err)
	}

	return s.afterRescind(ctx, rescinded, actor), nil
}

// RescindInfractionByID rescinds one infraction whatever its type.
func (s *Service) RescindInfractionByID(ctx context.Context, id int64, actor model.Actor, reason string) (Result, error) {
	inf, err := s.getInGuild(ctx, id, actor.GuildID)
	if err != nil {
		return Result{}, err
	}
	if err := checkActor(inf.GuildID, actor); err != nil {
		return Result{}, err
	}

	unlock := s.lockSubject(inf.GuildID, inf.SubjectID, inf.Type)
	defer unlock()

	var rescinded model.Infraction
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		rescinded, err = s.rescindInTx(ctx, current, actor, reason)
		return err
	})
	if err != nil {
		return Result{}, fmt.Errorf("rescind infraction %d: %w", id, err)
	}

	return s.afterRescind(ctx, rescinded, actor), nil
}

// rescindInTx writes the rescind action. A restored infraction has already
// used its rescind slot and cannot be rescinded again.
func (s *Service) rescindInTx(ctx context.Context, inf model.Infraction, actor model.Actor, reason string) (model.Infraction, error) {
	if inf.RestoreActionID != nil {
		return model.Infraction{}, fmt.Errorf("infraction %d: %w: %w", inf.ID, model.ErrInfractionRestored, model.ErrActionAlreadyRecorded)
	}
	if inf.RescindActionID != nil {
		return model.Infraction{}, fmt.Errorf("infraction %d: %w", inf.ID, model.ErrActionAlreadyRecorded)
	}

	entry, err := s.actions.RecordAction(ctx, inf.GuildID, model.ActionInfractionRescind, actor)
	if err != nil {
		return model.Infraction{}, err
	}

	var rescindReason *string
	if trimmed := strings.TrimSpace(reason); trimmed != "" {
		rescindReason = &trimmed
	}
	if err := s.store.SetRescinded(ctx, inf.ID, entry.ID, rescindReason); err != nil {
		return model.Infraction{}, err
	}
	return s.store.Get(ctx, inf.ID)
}

func (s *Service) afterRescind(ctx context.Context, inf model.Infraction, actor model.Actor) Result {
	s.log.Info("infraction rescinded",
		zap.Int64("infraction_id", inf.ID),
		zap.String("guild_id", inf.GuildID),
		zap.String("subject_id", inf.SubjectID),
		zap.String("actor_id", actor.UserID))

	res := s.undoEffect(ctx, inf)
	s.notify(ctx, model.ActionInfractionRescind, res, actor)
	return res
}

// getInGuild hides infractions of other guilds behind model.ErrNotFound.
func (s *Service) getInGuild(ctx context.Context, id int64, guildID string) (model.Infraction, error) {
	inf, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Infraction{}, err
	}
	if inf.GuildID != guildID {
		return model.Infraction{}, fmt.Errorf("infraction %d: %w", id, model.ErrNotFound)
	}
	return inf, nil
}
