package enrollment

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/enrollment"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/metrics"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/notify"
	"github.com/BruksfildServices01/consult-scheduler/internal/timezone"
)

type EnrollInput struct {
	Actor    domain.Actor
	CourseID uuid.UUID
	Origin   audit.Origin
}

type Result struct {
	Enrollment *models.Enrollment
	Progress   *models.CourseProgress
	Changed    bool
	Message    string
}

// deps is shared by the enrollment use cases.
type deps struct {
	repo    domain.Repository
	audit   audit.Recorder
	metrics *metrics.Metrics
	notify  notify.Publisher
	log     *slog.Logger
	now     func() time.Time
}

func newDeps(
	repo domain.Repository,
	rec audit.Recorder,
	m *metrics.Metrics,
	pub notify.Publisher,
	log *slog.Logger,
) deps {
	if log == nil {
		log = slog.Default()
	}
	return deps{repo: repo, audit: rec, metrics: m, notify: pub, log: log, now: timezone.Now}
}

func (d deps) observe(action string, res *Result, err error) {
	switch {
	case err != nil:
		d.metrics.Transition("enrollment", action, "rejected")
	case !res.Changed:
		d.metrics.Transition("enrollment", action, "noop")
	default:
		d.metrics.Transition("enrollment", action, "applied")
	}
}

// ===============================
// Enroll
// ===============================

type Enroll struct {
	deps
}

func NewEnroll(
	repo domain.Repository,
	rec audit.Recorder,
	m *metrics.Metrics,
	pub notify.Publisher,
	log *slog.Logger,
) *Enroll {
	return &Enroll{deps: newDeps(repo, rec, m, pub, log)}
}

func (uc *Enroll) Execute(
	ctx context.Context,
	in EnrollInput,
) (*Result, error) {
	res, err := uc.execute(ctx, in)
	uc.observe("enroll", res, err)
	return res, err
}

func (uc *Enroll) execute(ctx context.Context, in EnrollInput) (*Result, error) {
	start := uc.now()

	course, err := uc.repo.GetCourse(ctx, in.CourseID)
	if err != nil {
		return nil, err
	}

	existing, err := uc.repo.FindForUser(ctx, in.Actor.UserID, in.CourseID)
	if err != nil && httperr.KindOf(err) != httperr.KindNotFound {
		return nil, err
	}

	var (
		e       *models.Enrollment
		status  string
		message string
	)

	if existing == nil {
		e = &models.Enrollment{
			UserID:    in.Actor.UserID,
			CourseID:  in.CourseID,
			Status:    string(domain.InitialStatus()),
			CreatedAt: start,
			UpdatedAt: start,
		}
		if err := uc.repo.Create(ctx, e); err != nil {
			return nil, err
		}
		status, message = "created", "Enrollment created successfully."
	} else {
		e = existing
		if err := domain.Reenroll(e, start); err != nil {
			return nil, err
		}
		if err := uc.repo.Reenroll(ctx, e); err != nil {
			return nil, err
		}
		status, message = "reactivated", "Enrollment reactivated successfully."
	}

	uc.audit.Record(audit.Event{
		ActorID:    &in.Actor.UserID,
		Action:     "enrollment_enroll",
		EntityType: "enrollment",
		EntityID:   e.ID.String(),
		Metadata: map[string]any{
			"status":       status,
			"course_id":    course.ID.String(),
			"course_title": course.Title,
		},
		Duration: uc.now().Sub(start),
	}.WithOrigin(in.Origin))

	notify.Send(ctx, uc.notify, uc.log, notify.EnrollmentCreated, e)

	return &Result{Enrollment: e, Changed: true, Message: message}, nil
}
