package consultation

import (
	"context"

	"github.com/google/uuid"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/consultation"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

// ListOpenSlots returns the unreserved slots of one specialist on one day.
// Callers use it to refresh after losing a reservation race.
type ListOpenSlots struct {
	repo domain.Repository
}

func NewListOpenSlots(repo domain.Repository) *ListOpenSlots {
	return &ListOpenSlots{repo: repo}
}

func (uc *ListOpenSlots) Execute(
	ctx context.Context,
	specialistID uuid.UUID,
	date string,
) ([]models.TimeSlot, error) {

	if !timezone.IsValidDate(date) {
		return nil, httperr.Validation("invalid_date", "date must be YYYY-MM-DD.")
	}

	if _, err := uc.repo.GetSpecialist(ctx, specialistID); err != nil {
		return nil, err
	}

	return uc.repo.ListOpenSlots(ctx, specialistID, date)
}
