package enrollment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/enrollment"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/consult-scheduler/internal/logging"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/notify"
	"github.com/BruksfildServices01/consult-scheduler/internal/testutil"
)

type recorderStub struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recorderStub) Record(ev audit.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorderStub) RecordError(audit.ErrorEvent) {}

type fixture struct {
	db       *gorm.DB
	rec      *recorderStub
	enroll   *Enroll
	activate *Activate
	cancel   *Cancel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	repo := repository.NewEnrollmentGormRepository(db)
	rec := &recorderStub{}
	log := logging.Discard()

	return &fixture{
		db:       db,
		rec:      rec,
		enroll:   NewEnroll(repo, rec, nil, notify.Nop(), log),
		activate: NewActivate(repo, rec, nil, notify.Nop(), log),
		cancel:   NewCancel(repo, rec, nil, notify.Nop(), log),
	}
}

func student() domain.Actor {
	return domain.Actor{UserID: uuid.New(), Role: models.RoleStudent}
}

func TestEnroll_PendingThenActivateCreatesProgress(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, f.db, 3)
	actor := student()

	res, err := f.enroll.Execute(ctx, EnrollInput{Actor: actor, CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, "pending", res.Enrollment.Status)
	assert.Equal(t, "Enrollment created successfully.", res.Message)

	res, err = f.activate.Execute(ctx, TransitionInput{EnrollmentID: res.Enrollment.ID, Actor: actor})
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Equal(t, "active", res.Enrollment.Status)
	require.NotNil(t, res.Enrollment.PaidAt)

	var p models.CourseProgress
	require.NoError(t, f.db.Where("user_id = ? AND course_id = ?", actor.UserID, course.ID).Take(&p).Error)
	assert.Equal(t, 0, p.CompletedLessons)
	assert.Equal(t, 3, p.TotalLessons)
	assert.False(t, p.IsCompleted)
}

func TestActivate_IsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, f.db, 2)
	actor := student()

	res, err := f.enroll.Execute(ctx, EnrollInput{Actor: actor, CourseID: course.ID})
	require.NoError(t, err)
	id := res.Enrollment.ID

	_, err = f.activate.Execute(ctx, TransitionInput{EnrollmentID: id, Actor: actor})
	require.NoError(t, err)

	res, err = f.activate.Execute(ctx, TransitionInput{EnrollmentID: id, Actor: actor})
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Contains(t, res.Message, "already active")

	var n int64
	require.NoError(t, f.db.Model(&models.CourseProgress{}).Where("user_id = ?", actor.UserID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestCancel_ThenReenrollReusesRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, f.db, 1)
	actor := student()

	res, err := f.enroll.Execute(ctx, EnrollInput{Actor: actor, CourseID: course.ID})
	require.NoError(t, err)
	id := res.Enrollment.ID

	_, err = f.activate.Execute(ctx, TransitionInput{EnrollmentID: id, Actor: actor})
	require.NoError(t, err)

	res, err = f.cancel.Execute(ctx, TransitionInput{EnrollmentID: id, Actor: actor})
	require.NoError(t, err)
	assert.True(t, res.Changed)

	// the soft-deleted row is no longer addressable
	_, err = f.cancel.Execute(ctx, TransitionInput{EnrollmentID: id, Actor: actor})
	assert.Equal(t, httperr.KindNotFound, httperr.KindOf(err))

	res, err = f.enroll.Execute(ctx, EnrollInput{Actor: actor, CourseID: course.ID})
	require.NoError(t, err)
	assert.Equal(t, id, res.Enrollment.ID)
	assert.Equal(t, "pending", res.Enrollment.Status)
	assert.Nil(t, res.Enrollment.PaidAt)
	assert.Equal(t, "Enrollment reactivated successfully.", res.Message)

	var rows int64
	require.NoError(t, f.db.Unscoped().Model(&models.Enrollment{}).
		Where("user_id = ? AND course_id = ?", actor.UserID, course.ID).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)
}

func TestEnroll_AlreadyEnrolled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, f.db, 0)
	actor := student()

	_, err := f.enroll.Execute(ctx, EnrollInput{Actor: actor, CourseID: course.ID})
	require.NoError(t, err)

	_, err = f.enroll.Execute(ctx, EnrollInput{Actor: actor, CourseID: course.ID})
	assert.True(t, httperr.IsBusiness(err, "already_enrolled"))
}

func TestEnroll_UnknownCourse(t *testing.T) {
	f := newFixture(t)
	_, err := f.enroll.Execute(context.Background(), EnrollInput{Actor: student(), CourseID: uuid.New()})
	assert.True(t, httperr.IsBusiness(err, "course_not_found"))
}

func TestTransitions_ForeignActorRejectedInEveryState(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	stranger := domain.Actor{UserID: uuid.New(), Role: models.RoleInstructor}

	for _, status := range []string{"pending", "active", "completed"} {
		course := testutil.SeedCourse(t, f.db, 1)
		owner := student()
		res, err := f.enroll.Execute(ctx, EnrollInput{Actor: owner, CourseID: course.ID})
		require.NoError(t, err)
		id := res.Enrollment.ID
		require.NoError(t, f.db.Model(&models.Enrollment{}).Where("id = ?", id).Update("status", status).Error)

		_, err = f.activate.Execute(ctx, TransitionInput{EnrollmentID: id, Actor: stranger})
		assert.Equal(t, httperr.KindForbidden, httperr.KindOf(err), status)
		_, err = f.cancel.Execute(ctx, TransitionInput{EnrollmentID: id, Actor: stranger})
		assert.Equal(t, httperr.KindForbidden, httperr.KindOf(err), status)

		var stored models.Enrollment
		require.NoError(t, f.db.First(&stored, "id = ?", id).Error)
		assert.Equal(t, status, stored.Status)
	}
}

func TestAdminMayActivateForOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, f.db, 1)

	res, err := f.enroll.Execute(ctx, EnrollInput{Actor: student(), CourseID: course.ID})
	require.NoError(t, err)

	admin := domain.Actor{UserID: uuid.New(), Role: models.RoleAdmin}
	res, err = f.activate.Execute(ctx, TransitionInput{EnrollmentID: res.Enrollment.ID, Actor: admin})
	require.NoError(t, err)
	assert.True(t, res.Changed)
}

func TestCompletedCannotBeCancelled(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	course := testutil.SeedCourse(t, f.db, 1)
	actor := student()

	res, err := f.enroll.Execute(ctx, EnrollInput{Actor: actor, CourseID: course.ID})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Enrollment{}).Where("id = ?", res.Enrollment.ID).Update("status", "completed").Error)

	_, err = f.cancel.Execute(ctx, TransitionInput{EnrollmentID: res.Enrollment.ID, Actor: actor})
	assert.True(t, httperr.IsBusiness(err, "illegal_transition"))
}

func TestAuditCarriesDuration(t *testing.T) {
	f := newFixture(t)
	course := testutil.SeedCourse(t, f.db, 1)

	tick := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	f.enroll.now = func() time.Time {
		tick = tick.Add(5 * time.Millisecond)
		return tick
	}

	_, err := f.enroll.Execute(context.Background(), EnrollInput{
		Actor:    student(),
		CourseID: course.ID,
		Origin:   audit.Origin{IPAddress: "10.0.0.1", UserAgent: "test"},
	})
	require.NoError(t, err)

	require.Len(t, f.rec.events, 1)
	ev := f.rec.events[0]
	assert.Equal(t, 5*time.Millisecond, ev.Duration)
	assert.Equal(t, "10.0.0.1", ev.IPAddress)
	assert.Equal(t, "created", ev.Metadata["status"])
	assert.Equal(t, course.Title, ev.Metadata["course_title"])
}
