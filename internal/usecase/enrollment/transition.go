package enrollment

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/enrollment"
	"github.com/BruksfildServices01/consult-scheduler/internal/metrics"
	"github.com/BruksfildServices01/consult-scheduler/internal/notify"
)

type TransitionInput struct {
	EnrollmentID uuid.UUID
	Actor        domain.Actor
	Origin       audit.Origin
}

// ===============================
// Activate
// ===============================

// Activate acknowledges payment: pending becomes active and the progress
// baseline is created.
type Activate struct {
	deps
}

func NewActivate(
	repo domain.Repository,
	rec audit.Recorder,
	m *metrics.Metrics,
	pub notify.Publisher,
	log *slog.Logger,
) *Activate {
	return &Activate{deps: newDeps(repo, rec, m, pub, log)}
}

func (uc *Activate) Execute(
	ctx context.Context,
	in TransitionInput,
) (*Result, error) {
	res, err := uc.execute(ctx, in)
	uc.observe("activate", res, err)
	return res, err
}

func (uc *Activate) execute(ctx context.Context, in TransitionInput) (*Result, error) {
	start := uc.now()

	e, err := uc.repo.GetLive(ctx, in.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(e, in.Actor); err != nil {
		return nil, err
	}

	from := e.Status
	changed, err := domain.Activate(e, start)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &Result{Enrollment: e, Message: "Enrollment is already active."}, nil
	}

	progress, err := uc.repo.ActivateWithProgress(ctx, e, start)
	if err != nil {
		return nil, err
	}

	uc.audit.Record(audit.Event{
		ActorID:    &in.Actor.UserID,
		Action:     "enrollment_activate",
		EntityType: "enrollment",
		EntityID:   e.ID.String(),
		Metadata: map[string]any{
			"status":          "activated",
			"previous_status": from,
			"course_id":       e.CourseID.String(),
			"total_lessons":   progress.TotalLessons,
		},
		Duration: uc.now().Sub(start),
	}.WithOrigin(in.Origin))

	notify.Send(ctx, uc.notify, uc.log, notify.EnrollmentActivated, e)

	return &Result{
		Enrollment: e,
		Progress:   progress,
		Changed:    true,
		Message:    "Enrollment activated successfully.",
	}, nil
}

// ===============================
// Cancel
// ===============================

// Cancel soft-deletes the enrollment; the row stays for re-enrollment.
type Cancel struct {
	deps
}

func NewCancel(
	repo domain.Repository,
	rec audit.Recorder,
	m *metrics.Metrics,
	pub notify.Publisher,
	log *slog.Logger,
) *Cancel {
	return &Cancel{deps: newDeps(repo, rec, m, pub, log)}
}

func (uc *Cancel) Execute(
	ctx context.Context,
	in TransitionInput,
) (*Result, error) {
	res, err := uc.execute(ctx, in)
	uc.observe("cancel", res, err)
	return res, err
}

func (uc *Cancel) execute(ctx context.Context, in TransitionInput) (*Result, error) {
	start := uc.now()

	// soft-deleted rows are invisible here, a second cancel is a not-found
	e, err := uc.repo.GetLive(ctx, in.EnrollmentID)
	if err != nil {
		return nil, err
	}
	if err := domain.Authorize(e, in.Actor); err != nil {
		return nil, err
	}

	from := e.Status
	changed, err := domain.Cancel(e, in.Actor, start)
	if err != nil {
		return nil, err
	}
	if !changed {
		return &Result{Enrollment: e, Message: "Enrollment is already cancelled."}, nil
	}

	if err := uc.repo.Cancel(ctx, e, from); err != nil {
		return nil, err
	}

	uc.audit.Record(audit.Event{
		ActorID:    &in.Actor.UserID,
		Action:     "enrollment_cancel",
		EntityType: "enrollment",
		EntityID:   e.ID.String(),
		Metadata: map[string]any{
			"status":          "cancelled",
			"previous_status": from,
			"soft_deleted":    true,
			"course_id":       e.CourseID.String(),
		},
		Duration: uc.now().Sub(start),
	}.WithOrigin(in.Origin))

	notify.Send(ctx, uc.notify, uc.log, notify.EnrollmentCancelled, e)

	return &Result{Enrollment: e, Changed: true, Message: "Enrollment cancelled successfully."}, nil
}
