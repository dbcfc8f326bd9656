package consultation

import (
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

func isSpecialist(sp *models.Specialist, actor Actor) bool {
	return sp != nil && sp.UserID != nil && *sp.UserID == actor.UserID
}

// Authorize decides who may drive a consultation to target. The specialist
// confirms and completes, either party cancels, admins may do anything.
func Authorize(c *models.Consultation, sp *models.Specialist, actor Actor, target Status) error {
	if actor.IsAdmin() {
		return nil
	}

	switch target {
	case StatusConfirmed, StatusCompleted:
		if isSpecialist(sp, actor) {
			return nil
		}
	case StatusCancelled:
		if c.UserID == actor.UserID || isSpecialist(sp, actor) {
			return nil
		}
	}
	return httperr.Forbidden("not_owner", "You are not allowed to modify this consultation.")
}

// ===============================
// Domain Actions
// ===============================

func Transition(c *models.Consultation, target Status, now time.Time) (bool, error) {
	changed, err := CanTransition(Status(c.Status), target)
	if err != nil || !changed {
		return false, err
	}

	c.Status = string(target)
	c.UpdatedAt = now
	return true, nil
}

// Quote derives the charge for kind. A client price is tolerated only when
// it matches.
func Quote(kind string, clientPrice *float64) (Kind, float64, error) {
	k, ok := ParseKind(kind)
	if !ok {
		return "", 0, httperr.Validation("invalid_consultation_type", "Invalid consultation type.")
	}
	offer, _ := OfferFor(k)
	if clientPrice != nil && *clientPrice != offer.Price {
		return "", 0, httperr.Validation("price_mismatch", "The price does not match the selected consultation type.")
	}
	return k, offer.Price, nil
}
