package consultation

import (
	"context"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type Repository interface {
	// -------- Specialist --------
	GetSpecialist(
		ctx context.Context,
		specialistID uuid.UUID,
	) (*models.Specialist, error)

	// -------- Slots --------
	ListOpenSlots(
		ctx context.Context,
		specialistID uuid.UUID,
		date string,
	) ([]models.TimeSlot, error)

	// ReserveSlot claims the slot and inserts the consultation atomically.
	// Losing the race yields slot_not_available, nothing is written.
	ReserveSlot(
		ctx context.Context,
		c *models.Consultation,
	) error

	// ReleaseSlot clears the reservation flag after a cancellation.
	ReleaseSlot(
		ctx context.Context,
		slotID uuid.UUID,
	) error

	// -------- Consultation (state change) --------
	GetConsultation(
		ctx context.Context,
		consultationID uuid.UUID,
	) (*models.Consultation, error)

	// UpdateStatus applies only while the row is still in fromStatus.
	UpdateStatus(
		ctx context.Context,
		c *models.Consultation,
		fromStatus string,
	) error
}
