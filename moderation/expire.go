package moderation

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"modix/model"
)

const expiryReason = "Expired"

// ExpireDueInfractions rescinds every temporary mute and ban whose time has
// run out, as the system actor, and undoes its effect. It returns the
// infractions it rescinded. Failures on one infraction do not stop the
// others; they are joined into the returned error.
func (s *Service) ExpireDueInfractions(ctx context.Context) ([]model.Infraction, error) {
	due, err := s.store.ListDue(ctx, s.now())
	if err != nil {
		return nil, fmt.Errorf("list due infractions: %w", err)
	}

	var (
		processed []model.Infraction
		errs      []error
	)
	for _, inf := range due {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}
		expired, ok, err := s.expireOne(ctx, inf)
		if err != nil {
			s.log.Error("failed to expire infraction", zap.Int64("infraction_id", inf.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("expire infraction %d: %w", inf.ID, err))
			continue
		}
		if ok {
			processed = append(processed, expired)
		}
	}

	if len(processed) > 0 {
		s.log.Info("expired infractions", zap.Int("count", len(processed)))
	}
	return processed, errors.Join(errs...)
}

func (s *Service) expireOne(ctx context.Context, inf model.Infraction) (model.Infraction, bool, error) {
	unlock := s.lockSubject(inf.GuildID, inf.SubjectID, inf.Type)
	defer unlock()

	actor := s.systemActor(inf.GuildID)

	var rescinded model.Infraction
	skipped := false
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		current, err := s.store.Get(ctx, inf.ID)
		if err != nil {
			return err
		}
		// Rescinded by someone else since ListDue ran.
		if current.RescindActionID != nil {
			skipped = true
			return nil
		}
		rescinded, err = s.rescindInTx(ctx, current, actor, expiryReason)
		return err
	})
	if err != nil || skipped {
		return model.Infraction{}, false, err
	}

	res := s.undoEffect(ctx, rescinded)
	s.notify(ctx, model.ActionInfractionRescind, res, actor)
	return res.Infraction, true, nil
}
