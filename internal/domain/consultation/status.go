package consultation

import "github.com/BruksfildServices01/consult-scheduler/internal/httperr"

// ===============================
// Consultation Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func InitialStatus() Status {
	return StatusPending
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ===============================
// Validations
// ===============================

// CanTransition reports whether moving to target changes state. Asking for
// the current state is a no-op, anything off the table is illegal.
func CanTransition(current, target Status) (bool, error) {
	if current == target {
		return false, nil
	}
	for _, next := range transitions[current] {
		if next == target {
			return true, nil
		}
	}
	return false, httperr.ErrBusiness("illegal_transition")
}
