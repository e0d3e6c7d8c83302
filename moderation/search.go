package moderation

import (
	"context"
	"fmt"

	"modix/model"
)

const maxSearchLimit = 1000

// DefaultSort lists newest infractions first.
var DefaultSort = []model.InfractionSort{{Field: model.SortByCreated, Descending: true}}

// SearchInfractions returns matching infractions in a stable total order:
// the given sort keys, then ID ascending. It never changes anything.
func (s *Service) SearchInfractions(ctx context.Context, criteria model.InfractionSearchCriteria, sorts ...model.InfractionSort) ([]model.Infraction, error) {
	if criteria.Limit < 0 || criteria.Offset < 0 {
		return nil, model.NewValidationError("limit", "limit and offset must not be negative")
	}
	if criteria.Limit > maxSearchLimit {
		criteria.Limit = maxSearchLimit
	}
	if criteria.CreatedFrom != nil && criteria.CreatedTo != nil && criteria.CreatedTo.Before(*criteria.CreatedFrom) {
		return nil, model.NewValidationError("created", "date range ends before it starts")
	}
	for _, t := range criteria.Types {
		if !t.Valid() {
			return nil, model.NewValidationError("type", fmt.Sprintf("unknown infraction type %q", t))
		}
	}
	if len(sorts) == 0 {
		sorts = DefaultSort
	}
	return s.store.Search(ctx, criteria, sorts)
}

// GetInfraction returns one infraction, including deleted ones.
func (s *Service) GetInfraction(ctx context.Context, guildID string, id int64) (model.Infraction, error) {
	return s.getInGuild(ctx, id, guildID)
}

// ActiveInfraction returns the active mute or ban of a member, or
// model.ErrNoActiveInfraction.
func (s *Service) ActiveInfraction(ctx context.Context, guildID, subjectID string, typ model.InfractionType) (model.Infraction, error) {
	active, err := s.store.FindActive(ctx, guildID, subjectID, typ, s.now())
	if err != nil {
		return model.Infraction{}, err
	}
	if len(active) == 0 {
		return model.Infraction{}, fmt.Errorf("%s for user %s: %w", typ, subjectID, model.ErrNoActiveInfraction)
	}
	return active[len(active)-1], nil
}

// CountActive counts infractions in force per type. An empty guildID counts
// across every guild.
func (s *Service) CountActive(ctx context.Context, guildID string) (map[model.InfractionType]int, error) {
	return s.store.CountActiveByType(ctx, guildID, s.now())
}
