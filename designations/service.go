// Package designations manages guild configuration mappings: authorization
// claims granted or denied to roles and users, and channels and roles
// designated for a purpose. A mapping is never edited; it is replaced by
// deleting it and creating a new one.
package designations

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"modix/model"
)

type mappingStore interface {
	Insert(ctx context.Context, m model.Mapping) (int64, error)
	Get(ctx context.Context, id int64) (model.Mapping, error)
	ListActive(ctx context.Context, criteria model.MappingCriteria) ([]model.Mapping, error)
	SetDeleted(ctx context.Context, id, actionID int64) error
}

type actionRecorder interface {
	RecordAction(ctx context.Context, guildID string, typ model.ActionType, actor model.Actor) (model.ActionLogEntry, error)
}

type txRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Service struct {
	store      mappingStore
	actions    actionRecorder
	tx         txRunner
	developers map[string]struct{}
	log        *zap.Logger
}

// NewService wires the service. Users in developerIDs hold every claim.
func NewService(store mappingStore, actions actionRecorder, tx txRunner, developerIDs []string, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	devs := make(map[string]struct{}, len(developerIDs))
	for _, id := range developerIDs {
		if id != "" {
			devs[id] = struct{}{}
		}
	}
	return &Service{
		store:      store,
		actions:    actions,
		tx:         tx,
		developers: devs,
		log:        log.With(zap.String("service", "designations")),
	}
}

// MappingInput describes a new mapping. Which target field is required
// depends on Kind: claims take exactly one of RoleID or UserID, channel
// designations a ChannelID, role designations a RoleID.
type MappingInput struct {
	Kind        model.MappingKind
	GuildID     string
	RoleID      string
	UserID      string
	ChannelID   string
	Designation string
	ClaimType   model.ClaimMappingType
}

func (in MappingInput) Validate() error {
	if in.GuildID == "" {
		return model.NewValidationError("guild_id", "guild is required")
	}
	if !in.Kind.Valid() {
		return model.NewValidationError("kind", fmt.Sprintf("unknown mapping kind %q", in.Kind))
	}
	if !model.ValidDesignation(in.Kind, in.Designation) {
		return model.NewValidationError("designation", fmt.Sprintf("%q is not a valid %s designation", in.Designation, in.Kind))
	}

	switch in.Kind {
	case model.MappingClaim:
		if (in.RoleID == "") == (in.UserID == "") {
			return model.NewValidationError("target", "a claim targets exactly one role or user")
		}
		if in.ChannelID != "" {
			return model.NewValidationError("channel_id", "claims cannot target a channel")
		}
		if in.ClaimType != model.ClaimGranted && in.ClaimType != model.ClaimDenied {
			return model.NewValidationError("claim_type", fmt.Sprintf("unknown claim type %q", in.ClaimType))
		}
	case model.MappingDesignatedChannel:
		if in.ChannelID == "" || in.RoleID != "" || in.UserID != "" {
			return model.NewValidationError("target", "a channel designation targets one channel")
		}
		if in.ClaimType != "" {
			return model.NewValidationError("claim_type", "only claims have a claim type")
		}
	case model.MappingDesignatedRole:
		if in.RoleID == "" || in.ChannelID != "" || in.UserID != "" {
			return model.NewValidationError("target", "a role designation targets one role")
		}
		if in.ClaimType != "" {
			return model.NewValidationError("claim_type", "only claims have a claim type")
		}
	}
	return nil
}

// CreateMapping records a new mapping. An identical current mapping is
// refused with model.ErrMappingExists.
func (s *Service) CreateMapping(ctx context.Context, in MappingInput, actor model.Actor) (int64, error) {
	if err := in.Validate(); err != nil {
		return 0, err
	}
	if actor.UserID == "" || actor.GuildID != in.GuildID {
		return 0, model.NewValidationError("actor", "actor must belong to the mapping's guild")
	}

	var id int64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		entry, err := s.actions.RecordAction(ctx, in.GuildID, in.Kind.CreateActionType(), actor)
		if err != nil {
			return err
		}
		id, err = s.store.Insert(ctx, model.Mapping{
			Kind:           in.Kind,
			GuildID:        in.GuildID,
			RoleID:         in.RoleID,
			UserID:         in.UserID,
			ChannelID:      in.ChannelID,
			Designation:    in.Designation,
			ClaimType:      in.ClaimType,
			CreateActionID: entry.ID,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("create %s mapping: %w", in.Kind, err)
	}

	s.log.Info("mapping created",
		zap.Int64("mapping_id", id),
		zap.String("kind", string(in.Kind)),
		zap.String("designation", in.Designation),
		zap.String("actor_id", actor.UserID))
	return id, nil
}

// DeleteMapping retires a mapping of the actor's guild.
func (s *Service) DeleteMapping(ctx context.Context, id int64, actor model.Actor) error {
	if actor.UserID == "" {
		return model.NewValidationError("actor", "actor is required")
	}

	var kind model.MappingKind
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		m, err := s.store.Get(ctx, id)
		if err != nil {
			return err
		}
		if m.GuildID != actor.GuildID {
			return fmt.Errorf("mapping %d: %w", id, model.ErrNotFound)
		}
		if !m.IsActive() {
			return fmt.Errorf("mapping %d: %w", id, model.ErrActionAlreadyRecorded)
		}
		kind = m.Kind

		entry, err := s.actions.RecordAction(ctx, m.GuildID, m.Kind.DeleteActionType(), actor)
		if err != nil {
			return err
		}
		return s.store.SetDeleted(ctx, id, entry.ID)
	})
	if err != nil {
		return fmt.Errorf("delete mapping %d: %w", id, err)
	}

	s.log.Info("mapping deleted",
		zap.Int64("mapping_id", id),
		zap.String("kind", string(kind)),
		zap.String("actor_id", actor.UserID))
	return nil
}

// GetActiveMappings lists current mappings matching criteria.
func (s *Service) GetActiveMappings(ctx context.Context, criteria model.MappingCriteria) ([]model.Mapping, error) {
	if criteria.GuildID == "" {
		return nil, model.NewValidationError("guild_id", "guild is required")
	}
	return s.store.ListActive(ctx, criteria)
}

// GetMapping returns a mapping of guildID, including removed ones.
func (s *Service) GetMapping(ctx context.Context, guildID string, id int64) (model.Mapping, error) {
	m, err := s.store.Get(ctx, id)
	if err != nil {
		return model.Mapping{}, err
	}
	if m.GuildID != guildID {
		return model.Mapping{}, fmt.Errorf("mapping %d: %w", id, model.ErrNotFound)
	}
	return m, nil
}
