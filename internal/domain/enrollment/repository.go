package enrollment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

type Repository interface {
	// -------- Course --------
	GetCourse(
		ctx context.Context,
		courseID uuid.UUID,
	) (*models.Course, error)

	// -------- Enrollment (lookup) --------

	// FindForUser includes soft-deleted rows.
	FindForUser(
		ctx context.Context,
		userID uuid.UUID,
		courseID uuid.UUID,
	) (*models.Enrollment, error)

	// GetLive excludes soft-deleted rows.
	GetLive(
		ctx context.Context,
		enrollmentID uuid.UUID,
	) (*models.Enrollment, error)

	// -------- Enrollment (state change) --------
	Create(
		ctx context.Context,
		e *models.Enrollment,
	) error

	// Reenroll applies only while the row is still cancelled.
	Reenroll(
		ctx context.Context,
		e *models.Enrollment,
	) error

	// ActivateWithProgress flips pending to active and creates the progress
	// baseline in one transaction.
	ActivateWithProgress(
		ctx context.Context,
		e *models.Enrollment,
		startedAt time.Time,
	) (*models.CourseProgress, error)

	// Cancel applies only from a cancellable state.
	Cancel(
		ctx context.Context,
		e *models.Enrollment,
		fromStatus string,
	) error
}
