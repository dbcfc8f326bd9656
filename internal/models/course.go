package models

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title        string    `gorm:"size:200;not null" json:"title"`
	LessonsCount int       `gorm:"default:0" json:"lessons_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Lesson struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course   Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Title    string    `gorm:"size:200" json:"title"`

	CreatedAt time.Time `json:"created_at"`
}

// CourseProgress is the per-user baseline created when an enrollment activates.
type CourseProgress struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_progress_user_course" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_course_progress_user_course" json:"course_id"`

	TotalLessons     int  `gorm:"not null;default:0" json:"total_lessons"`
	CompletedLessons int  `gorm:"not null;default:0" json:"completed_lessons"`
	IsCompleted      bool `gorm:"not null;default:false" json:"is_completed"`

	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
}

func (CourseProgress) TableName() string {
	return "course_progress"
}
