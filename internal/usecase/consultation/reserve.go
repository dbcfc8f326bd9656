package consultation

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/consultation"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/metrics"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/notify"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

type ReserveInput struct {
	UserID       uuid.UUID
	SpecialistID uuid.UUID
	SlotID       uuid.UUID
	Kind         string
	Notes        *string
	ClientPrice  *float64
	Origin       audit.Origin
}

type ReserveSlot struct {
	repo    domain.Repository
	audit   audit.Recorder
	metrics *metrics.Metrics
	notify  notify.Publisher
	log     *slog.Logger
	now     func() time.Time
}

func NewReserveSlot(
	repo domain.Repository,
	rec audit.Recorder,
	m *metrics.Metrics,
	pub notify.Publisher,
	log *slog.Logger,
) *ReserveSlot {
	if log == nil {
		log = slog.Default()
	}
	return &ReserveSlot{
		repo:    repo,
		audit:   rec,
		metrics: m,
		notify:  pub,
		log:     log,
		now:     timezone.Now,
	}
}

func (uc *ReserveSlot) Execute(
	ctx context.Context,
	in ReserveInput,
) (*models.Consultation, error) {

	start := uc.now()

	kind, price, err := domain.Quote(in.Kind, in.ClientPrice)
	if err != nil {
		return nil, err
	}
	if in.Notes != nil && utf8.RuneCountInString(*in.Notes) > domain.MaxNotesLength {
		return nil, httperr.Validation("notes_too_long", "Notes must be at most 1000 characters.")
	}

	c := &models.Consultation{
		UserID:           in.UserID,
		SpecialistID:     in.SpecialistID,
		TimeSlotID:       in.SlotID,
		ConsultationType: string(kind),
		Price:            price,
		Notes:            in.Notes,
		Status:           string(domain.InitialStatus()),
		CreatedAt:        start,
		UpdatedAt:        start,
	}

	if err := uc.repo.ReserveSlot(ctx, c); err != nil {
		uc.metrics.Reservation(reservationOutcome(err))
		if httperr.KindOf(err) == httperr.KindTransient {
			uc.log.Warn("reservation outcome unknown", "slot_id", in.SlotID, "error", err)
			uc.audit.RecordError(audit.ErrorEvent{
				ActorID:  &in.UserID,
				Function: "book_consultation",
				Err:      err,
				RequestData: map[string]any{
					"time_slot_id":  in.SlotID.String(),
					"specialist_id": in.SpecialistID.String(),
				},
			})
		}
		return nil, err
	}

	uc.metrics.Reservation("booked")

	uc.audit.Record(audit.Event{
		ActorID:    &in.UserID,
		Action:     "consultation_booked",
		EntityType: "consultation",
		EntityID:   c.ID.String(),
		Metadata: map[string]any{
			"status":            "created",
			"time_slot_id":      c.TimeSlotID.String(),
			"specialist_id":     c.SpecialistID.String(),
			"consultation_type": c.ConsultationType,
			"price":             c.Price,
		},
		Duration: uc.now().Sub(start),
	}.WithOrigin(in.Origin))

	notify.Send(ctx, uc.notify, uc.log, notify.ConsultationBooked, c)

	return c, nil
}

func reservationOutcome(err error) string {
	switch httperr.KindOf(err) {
	case httperr.KindConflict:
		return "slot_not_available"
	case httperr.KindNotFound:
		return "slot_not_found"
	case httperr.KindTransient:
		return "unknown"
	default:
		return "error"
	}
}
