package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/enrollment"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type EnrollmentGormRepository struct {
	db *gorm.DB
}

func NewEnrollmentGormRepository(db *gorm.DB) *EnrollmentGormRepository {
	return &EnrollmentGormRepository{db: db}
}

// --------------------------------------------------
// Course
// --------------------------------------------------

func (r *EnrollmentGormRepository) GetCourse(
	ctx context.Context,
	courseID uuid.UUID,
) (*models.Course, error) {

	var course models.Course
	if err := r.db.WithContext(ctx).First(&course, "id = ?", courseID).Error; err != nil {
		return nil, httperr.FromStore(err, "course_not_found")
	}
	return &course, nil
}

// --------------------------------------------------
// Enrollment (lookup)
// --------------------------------------------------

func (r *EnrollmentGormRepository) FindForUser(
	ctx context.Context,
	userID uuid.UUID,
	courseID uuid.UUID,
) (*models.Enrollment, error) {

	var e models.Enrollment
	if err := r.db.WithContext(ctx).
		Unscoped().
		Where("user_id = ? AND course_id = ?", userID, courseID).
		Take(&e).Error; err != nil {
		return nil, httperr.FromStore(err, "enrollment_not_found")
	}
	return &e, nil
}

func (r *EnrollmentGormRepository) GetLive(
	ctx context.Context,
	enrollmentID uuid.UUID,
) (*models.Enrollment, error) {

	var e models.Enrollment
	if err := r.db.WithContext(ctx).First(&e, "id = ?", enrollmentID).Error; err != nil {
		return nil, httperr.FromStore(err, "enrollment_not_found")
	}
	return &e, nil
}

// --------------------------------------------------
// Enrollment (state change)
// --------------------------------------------------

func (r *EnrollmentGormRepository) Create(
	ctx context.Context,
	e *models.Enrollment,
) error {

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(e).Error; err != nil {
		if httperr.KindOf(httperr.FromStore(err, "")) == httperr.KindConflict {
			// lost a concurrent enroll for the same pair
			return httperr.ErrBusiness("already_enrolled")
		}
		return httperr.FromStore(err, "course_not_found")
	}
	return nil
}

func (r *EnrollmentGormRepository) Reenroll(
	ctx context.Context,
	e *models.Enrollment,
) error {

	res := r.db.WithContext(ctx).
		Unscoped().
		Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", e.ID, string(domain.StatusCancelled)).
		Updates(map[string]any{
			"status":     e.Status,
			"paid_at":    nil,
			"deleted_at": nil,
			"deleted_by": nil,
			"updated_at": e.UpdatedAt,
		})
	if res.Error != nil {
		return httperr.FromStore(res.Error, "enrollment_not_found")
	}
	if res.RowsAffected != 1 {
		return errConcurrentUpdate()
	}
	return nil
}

func (r *EnrollmentGormRepository) ActivateWithProgress(
	ctx context.Context,
	e *models.Enrollment,
	startedAt time.Time,
) (*models.CourseProgress, error) {

	var progress models.CourseProgress

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Enrollment{}).
			Where("id = ? AND status = ?", e.ID, string(domain.StatusPending)).
			Updates(map[string]any{
				"status":     e.Status,
				"paid_at":    e.PaidAt,
				"updated_at": e.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 1 {
			return errConcurrentUpdate()
		}

		total, err := lessonTotal(tx, e.CourseID)
		if err != nil {
			return err
		}

		progress = models.CourseProgress{
			UserID:           e.UserID,
			CourseID:         e.CourseID,
			TotalLessons:     total,
			CompletedLessons: 0,
			StartedAt:        startedAt,
		}

		// a reactivation after cancel restarts the baseline
		if err := tx.
			Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"total_lessons", "completed_lessons", "is_completed", "started_at", "completed_at",
				}),
			}).
			Create(&progress).Error; err != nil {
			return err
		}

		var stored models.CourseProgress
		if err := tx.
			Where("user_id = ? AND course_id = ?", e.UserID, e.CourseID).
			Take(&stored).Error; err != nil {
			return err
		}
		progress = stored
		return nil
	})
	if err != nil {
		return nil, httperr.FromStore(err, "enrollment_not_found")
	}
	return &progress, nil
}

// lessonTotal counts lessons, falling back to the course's declared count.
func lessonTotal(tx *gorm.DB, courseID uuid.UUID) (int, error) {
	var n int64
	if err := tx.Model(&models.Lesson{}).Where("course_id = ?", courseID).Count(&n).Error; err != nil {
		return 0, err
	}
	if n > 0 {
		return int(n), nil
	}

	var course models.Course
	if err := tx.Select("lessons_count").First(&course, "id = ?", courseID).Error; err != nil {
		return 0, err
	}
	return course.LessonsCount, nil
}

func (r *EnrollmentGormRepository) Cancel(
	ctx context.Context,
	e *models.Enrollment,
	fromStatus string,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Enrollment{}).
		Where("id = ? AND status = ?", e.ID, fromStatus).
		Updates(map[string]any{
			"status":     e.Status,
			"deleted_at": e.DeletedAt.Time,
			"deleted_by": e.DeletedBy,
			"updated_at": e.UpdatedAt,
		})
	if res.Error != nil {
		return httperr.FromStore(res.Error, "enrollment_not_found")
	}
	if res.RowsAffected != 1 {
		return errConcurrentUpdate()
	}
	return nil
}

// Compile-time check
var _ domain.Repository = (*EnrollmentGormRepository)(nil)
