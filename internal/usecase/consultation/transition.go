package consultation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/consultation"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/metrics"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/notify"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

type TransitionInput struct {
	ConsultationID uuid.UUID
	Target         domain.Status
	Actor          domain.Actor
	Origin         audit.Origin
}

type Result struct {
	Consultation *models.Consultation
	Changed      bool
	Message      string
}

// TransitionConsultation drives confirm, complete and cancel.
type TransitionConsultation struct {
	repo    domain.Repository
	audit   audit.Recorder
	metrics *metrics.Metrics
	notify  notify.Publisher
	log     *slog.Logger
	now     func() time.Time
}

func NewTransitionConsultation(
	repo domain.Repository,
	rec audit.Recorder,
	m *metrics.Metrics,
	pub notify.Publisher,
	log *slog.Logger,
) *TransitionConsultation {
	if log == nil {
		log = slog.Default()
	}
	return &TransitionConsultation{
		repo:    repo,
		audit:   rec,
		metrics: m,
		notify:  pub,
		log:     log,
		now:     timezone.Now,
	}
}

func (uc *TransitionConsultation) Execute(
	ctx context.Context,
	in TransitionInput,
) (*Result, error) {

	start := uc.now()
	action := actionFor(in.Target)

	res, err := uc.execute(ctx, in, start)
	switch {
	case err != nil:
		uc.metrics.Transition("consultation", action, "rejected")
	case !res.Changed:
		uc.metrics.Transition("consultation", action, "noop")
	default:
		uc.metrics.Transition("consultation", action, "applied")
	}
	return res, err
}

func (uc *TransitionConsultation) execute(
	ctx context.Context,
	in TransitionInput,
	start time.Time,
) (*Result, error) {

	c, err := uc.repo.GetConsultation(ctx, in.ConsultationID)
	if err != nil {
		return nil, err
	}

	sp, err := uc.repo.GetSpecialist(ctx, c.SpecialistID)
	if err != nil {
		if httperr.KindOf(err) != httperr.KindNotFound {
			return nil, err
		}
		sp = nil
	}

	if err := domain.Authorize(c, sp, in.Actor, in.Target); err != nil {
		return nil, err
	}

	from := c.Status
	changed, err := domain.Transition(c, in.Target, uc.now())
	if err != nil {
		return nil, err
	}
	if !changed {
		return &Result{
			Consultation: c,
			Message:      fmt.Sprintf("Consultation is already %s.", c.Status),
		}, nil
	}

	if err := uc.repo.UpdateStatus(ctx, c, from); err != nil {
		return nil, err
	}

	if in.Target == domain.StatusCancelled {
		uc.releaseSlot(ctx, c, in.Actor)
	}

	uc.audit.Record(audit.Event{
		ActorID:    &in.Actor.UserID,
		Action:     "consultation_" + string(in.Target),
		EntityType: "consultation",
		EntityID:   c.ID.String(),
		Metadata: map[string]any{
			"status":          string(in.Target),
			"previous_status": from,
			"time_slot_id":    c.TimeSlotID.String(),
		},
		Duration: uc.now().Sub(start),
	}.WithOrigin(in.Origin))

	notify.Send(ctx, uc.notify, uc.log, notificationFor(in.Target), c)

	return &Result{
		Consultation: c,
		Changed:      true,
		Message:      fmt.Sprintf("Consultation %s successfully.", c.Status),
	}, nil
}

// releaseSlot is a secondary write; the cancellation already stands.
func (uc *TransitionConsultation) releaseSlot(ctx context.Context, c *models.Consultation, actor domain.Actor) {
	if err := uc.repo.ReleaseSlot(ctx, c.TimeSlotID); err != nil {
		uc.log.Warn("failed to free slot after cancellation",
			"consultation_id", c.ID, "time_slot_id", c.TimeSlotID, "error", err)
		uc.audit.RecordError(audit.ErrorEvent{
			ActorID:  &actor.UserID,
			Function: "consultation-actions",
			Err:      err,
			RequestData: map[string]any{
				"consultation_id": c.ID.String(),
				"time_slot_id":    c.TimeSlotID.String(),
			},
		})
	}
}

func actionFor(target domain.Status) string {
	switch target {
	case domain.StatusConfirmed:
		return "confirm"
	case domain.StatusCompleted:
		return "complete"
	case domain.StatusCancelled:
		return "cancel"
	default:
		return string(target)
	}
}

func notificationFor(target domain.Status) string {
	switch target {
	case domain.StatusConfirmed:
		return notify.ConsultationConfirmed
	case domain.StatusCompleted:
		return notify.ConsultationCompleted
	default:
		return notify.ConsultationCancelled
	}
}
