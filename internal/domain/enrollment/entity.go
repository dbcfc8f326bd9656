package enrollment

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

// Authorize: the owner or an admin may mutate an enrollment.
func Authorize(e *models.Enrollment, actor Actor) error {
	if e.UserID == actor.UserID || actor.IsAdmin() {
		return nil
	}
	return httperr.Forbidden("not_owner", "You are not allowed to modify this enrollment.")
}

// ===============================
// Domain Actions
// ===============================

func Activate(e *models.Enrollment, now time.Time) (bool, error) {
	changed, err := CanActivate(Status(e.Status))
	if err != nil || !changed {
		return false, err
	}

	e.Status = string(StatusActive)
	e.PaidAt = &now
	e.UpdatedAt = now
	return true, nil
}

func Cancel(e *models.Enrollment, actor Actor, now time.Time) (bool, error) {
	changed, err := CanCancel(Status(e.Status))
	if err != nil || !changed {
		return false, err
	}

	e.Status = string(StatusCancelled)
	e.DeletedAt.Time = now
	e.DeletedAt.Valid = true
	e.DeletedBy = &actor.UserID
	e.UpdatedAt = now
	return true, nil
}

// Reenroll brings a cancelled enrollment back to pending on the same row.
func Reenroll(e *models.Enrollment, now time.Time) error {
	if err := CanReenroll(Status(e.Status)); err != nil {
		return err
	}

	e.Status = string(StatusPending)
	e.PaidAt = nil
	e.DeletedAt.Valid = false
	e.DeletedAt.Time = time.Time{}
	e.DeletedBy = nil
	e.UpdatedAt = now
	return nil
}
