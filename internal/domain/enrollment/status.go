package enrollment

import "github.com/BruksfildServices01/consult-scheduler/internal/httperr"

// ===============================
// Enrollment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func InitialStatus() Status {
	return StatusPending
}

// ===============================
// Validations
// ===============================

// CanActivate reports whether activation changes anything. Activating an
// active enrollment is a no-op.
func CanActivate(current Status) (bool, error) {
	switch current {
	case StatusPending:
		return true, nil
	case StatusActive:
		return false, nil
	default:
		return false, httperr.ErrBusiness("illegal_transition")
	}
}

// CanCancel: completed courses stay completed.
func CanCancel(current Status) (bool, error) {
	switch current {
	case StatusPending, StatusActive:
		return true, nil
	case StatusCancelled:
		return false, nil
	default:
		return false, httperr.Conflict("illegal_transition", "A completed course cannot be cancelled.")
	}
}

// CanReenroll: only a cancelled enrollment may return to pending.
func CanReenroll(current Status) error {
	if current != StatusCancelled {
		return httperr.ErrBusiness("already_enrolled")
	}
	return nil
}
