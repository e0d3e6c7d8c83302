package handlers

import (
	"context"
	"errors"

	"modix/model"
)

// userMessage turns a service error into text safe to show in Discord.
// Unknown errors return ok=false and should be logged.
func userMessage(err error) (string, bool) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return verr.Message, true
	case errors.Is(err, model.ErrDuplicateActiveInfraction):
		return "That member already has an active infraction of this type.", true
	case errors.Is(err, model.ErrNoActiveInfraction):
		return "That member has no active infraction of this type.", true
	case errors.Is(err, model.ErrCampaignAlreadyOpen):
		return "That member already has an open campaign.", true
	case errors.Is(err, model.ErrCampaignClosed):
		return "That campaign is already closed.", true
	case errors.Is(err, model.ErrMappingExists):
		return "An identical mapping already exists.", true
	case errors.Is(err, model.ErrInfractionRestored):
		return "That infraction was restored and cannot be rescinded again. Lift it in Discord directly.", true
	case errors.Is(err, model.ErrActionAlreadyRecorded):
		return "That change has already been made and cannot be repeated.", true
	case errors.Is(err, model.ErrNotFound):
		return "Nothing was found with that ID in this server.", true
	case errors.Is(err, model.ErrConflict):
		return "That conflicts with an existing record.", true
	case errors.Is(err, model.ErrUnauthorized):
		return "You do not have permission to use this command.", true
	case errors.Is(err, context.DeadlineExceeded):
		return "The request timed out. Please try again.", true
	}
	return "Something went wrong. The error has been logged.", false
}
