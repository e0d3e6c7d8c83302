package moderation

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"modix/model"
)

func (s *Service) callGateway(ctx context.Context, inf model.Infraction, effect model.PendingEffect) error {
	ctx, cancel := context.WithTimeout(ctx, s.opts.GatewayTimeout)
	defer cancel()

	switch {
	case inf.Type == model.InfractionMute && effect == model.EffectApply:
		return s.gateway.ApplyMute(ctx, inf.GuildID, inf.SubjectID, inf.Reason)
	case inf.Type == model.InfractionMute && effect == model.EffectRemove:
		return s.gateway.RemoveMute(ctx, inf.GuildID, inf.SubjectID)
	case inf.Type == model.InfractionBan && effect == model.EffectApply:
		return s.gateway.ApplyBan(ctx, inf.GuildID, inf.SubjectID, inf.Reason, s.opts.BanPruneDays)
	case inf.Type == model.InfractionBan && effect == model.EffectRemove:
		return s.gateway.RemoveBan(ctx, inf.GuildID, inf.SubjectID)
	}
	return fmt.Errorf("no gateway effect %q for %s infractions", effect, inf.Type)
}

func gatewayOp(inf model.Infraction, effect model.PendingEffect) string {
	if effect == model.EffectApply {
		return "apply " + string(inf.Type)
	}
	return "remove " + string(inf.Type)
}

// pushEffect applies or removes the Discord side of a committed infraction.
// On failure the infraction is flagged so Reconcile can retry.
func (s *Service) pushEffect(ctx context.Context, inf model.Infraction, effect model.PendingEffect) Result {
	if !inf.Type.Exclusive() {
		return Result{Infraction: inf, Effect: EffectNotApplicable}
	}

	err := s.callGateway(ctx, inf, effect)
	if err == nil {
		if inf.PendingEffect != model.EffectNone {
			if clearErr := s.store.SetPendingEffect(ctx, inf.ID, model.EffectNone); clearErr != nil {
				s.log.Error("failed to clear pending effect", zap.Int64("infraction_id", inf.ID), zap.Error(clearErr))
			} else {
				inf.PendingEffect = model.EffectNone
			}
		}
		return Result{Infraction: inf, Effect: EffectApplied}
	}

	gwErr := &model.GatewayError{
		Op:        gatewayOp(inf, effect),
		GuildID:   inf.GuildID,
		SubjectID: inf.SubjectID,
		Err:       err,
	}
	s.log.Warn("discord effect failed, queued for reconciliation",
		zap.Int64("infraction_id", inf.ID),
		zap.String("op", gwErr.Op),
		zap.Error(err))

	return Result{Infraction: s.flagPending(ctx, inf, effect), Effect: EffectPending, EffectErr: gwErr}
}

func (s *Service) flagPending(ctx context.Context, inf model.Infraction, effect model.PendingEffect) model.Infraction {
	if inf.PendingEffect == effect {
		return inf
	}
	if err := s.store.SetPendingEffect(ctx, inf.ID, effect); err != nil {
		s.log.Error("failed to flag pending effect", zap.Int64("infraction_id", inf.ID), zap.Error(err))
		return inf
	}
	inf.PendingEffect = effect
	return inf
}

// undoEffect removes the Discord side of inf unless another active
// infraction of the same type keeps it in force. The caller holds the
// subject lock.
func (s *Service) undoEffect(ctx context.Context, inf model.Infraction) Result {
	if !inf.Type.Exclusive() {
		return Result{Infraction: inf, Effect: EffectNotApplicable}
	}

	others, err := s.store.FindActive(ctx, inf.GuildID, inf.SubjectID, inf.Type, s.now())
	if err != nil {
		s.log.Error("failed to check for other active infractions", zap.Int64("infraction_id", inf.ID), zap.Error(err))
		return Result{Infraction: s.flagPending(ctx, inf, model.EffectRemove), Effect: EffectPending, EffectErr: err}
	}
	for _, other := range others {
		if other.ID != inf.ID {
			s.log.Info("effect kept by another active infraction",
				zap.Int64("infraction_id", inf.ID), zap.Int64("kept_by", other.ID))
			return Result{Infraction: inf, Effect: EffectNotApplicable}
		}
	}
	return s.pushEffect(ctx, inf, model.EffectRemove)
}
