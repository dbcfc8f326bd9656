package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/enrollment"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
	"github.com/BruksfildServices01/consult-scheduler/internal/testutil"
)

func TestEnrollmentRepository_CreateDuplicatePair(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEnrollmentGormRepository(db)
	ctx := context.Background()

	course := testutil.SeedCourse(t, db, 0)
	user := uuid.New()

	require.NoError(t, repo.Create(ctx, &models.Enrollment{UserID: user, CourseID: course.ID, Status: "pending"}))
	err := repo.Create(ctx, &models.Enrollment{UserID: user, CourseID: course.ID, Status: "pending"})
	assert.True(t, httperr.IsBusiness(err, "already_enrolled"))
}

func TestEnrollmentRepository_ActivateCreatesSingleProgress(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEnrollmentGormRepository(db)
	ctx := context.Background()

	course := testutil.SeedCourse(t, db, 4)
	e := &models.Enrollment{UserID: uuid.New(), CourseID: course.ID, Status: "pending"}
	require.NoError(t, repo.Create(ctx, e))

	now := time.Now().UTC()
	_, err := domain.Activate(e, now)
	require.NoError(t, err)

	progress, err := repo.ActivateWithProgress(ctx, e, now)
	require.NoError(t, err)
	assert.Equal(t, 4, progress.TotalLessons)
	assert.Equal(t, 0, progress.CompletedLessons)

	// a second conditional activation finds no pending row
	_, err = repo.ActivateWithProgress(ctx, e, now)
	assert.True(t, httperr.IsBusiness(err, "concurrent_update"))

	var n int64
	require.NoError(t, db.Model(&models.CourseProgress{}).Where("user_id = ? AND course_id = ?", e.UserID, course.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestEnrollmentRepository_LessonCountFallback(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEnrollmentGormRepository(db)
	ctx := context.Background()

	course := &models.Course{Title: "No lessons yet", LessonsCount: 7}
	require.NoError(t, db.Create(course).Error)

	e := &models.Enrollment{UserID: uuid.New(), CourseID: course.ID, Status: "pending"}
	require.NoError(t, repo.Create(ctx, e))
	_, _ = domain.Activate(e, time.Now())

	progress, err := repo.ActivateWithProgress(ctx, e, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 7, progress.TotalLessons)
}

func TestEnrollmentRepository_CancelThenReenrollKeepsOneRow(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEnrollmentGormRepository(db)
	ctx := context.Background()

	course := testutil.SeedCourse(t, db, 1)
	user := uuid.New()
	e := &models.Enrollment{UserID: user, CourseID: course.ID, Status: "pending"}
	require.NoError(t, repo.Create(ctx, e))

	_, err := domain.Cancel(e, domain.Actor{UserID: user}, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Cancel(ctx, e, "pending"))

	_, err = repo.GetLive(ctx, e.ID)
	assert.True(t, httperr.IsBusiness(err, "enrollment_not_found"))

	found, err := repo.FindForUser(ctx, user, course.ID)
	require.NoError(t, err)
	require.NoError(t, domain.Reenroll(found, time.Now()))
	require.NoError(t, repo.Reenroll(ctx, found))

	live, err := repo.GetLive(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "pending", live.Status)
	assert.Nil(t, live.PaidAt)
	assert.Nil(t, live.DeletedBy)

	var total int64
	require.NoError(t, db.Unscoped().Model(&models.Enrollment{}).Where("user_id = ? AND course_id = ?", user, course.ID).Count(&total).Error)
	assert.EqualValues(t, 1, total)
}

func TestEnrollmentRepository_ReactivationResetsProgress(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewEnrollmentGormRepository(db)
	ctx := context.Background()

	course := testutil.SeedCourse(t, db, 2)
	user := uuid.New()
	e := &models.Enrollment{UserID: user, CourseID: course.ID, Status: "pending"}
	require.NoError(t, repo.Create(ctx, e))

	_, err := domain.Activate(e, time.Now())
	require.NoError(t, err)
	_, err = repo.ActivateWithProgress(ctx, e, time.Now())
	require.NoError(t, err)

	require.NoError(t, db.Model(&models.CourseProgress{}).
		Where("user_id = ? AND course_id = ?", user, course.ID).
		Updates(map[string]any{"completed_lessons": 2, "is_completed": true}).Error)
	require.NoError(t, db.Omit("Course").Create(&models.Lesson{CourseID: course.ID, Title: "bonus"}).Error)

	_, err = domain.Cancel(e, domain.Actor{UserID: user}, time.Now())
	require.NoError(t, err)
	require.NoError(t, repo.Cancel(ctx, e, "active"))

	found, err := repo.FindForUser(ctx, user, course.ID)
	require.NoError(t, err)
	require.NoError(t, domain.Reenroll(found, time.Now()))
	require.NoError(t, repo.Reenroll(ctx, found))

	_, err = domain.Activate(found, time.Now())
	require.NoError(t, err)
	progress, err := repo.ActivateWithProgress(ctx, found, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 0, progress.CompletedLessons)
	assert.Equal(t, 3, progress.TotalLessons)
	assert.False(t, progress.IsCompleted)

	var n int64
	require.NoError(t, db.Model(&models.CourseProgress{}).Where("user_id = ? AND course_id = ?", user, course.ID).Count(&n).Error)
	assert.EqualValues(t, 1, n)
}

func TestIdentityRepository_GetUserRole(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewIdentityGormRepository(db)
	ctx := context.Background()

	admin := uuid.New()
	require.NoError(t, db.Create(&models.UserRole{UserID: admin, Role: models.RoleAdmin}).Error)

	role, err := repo.GetUserRole(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, role)

	role, err = repo.GetUserRole(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, role)
}
