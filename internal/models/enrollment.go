package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Enrollment struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// One row per (user, course), re-enrolling reuses it.
	UserID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course" json:"user_id"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_user_course" json:"course_id"`
	Course   Course    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	Status string     `gorm:"size:20;not null;default:'pending'" json:"status"`
	PaidAt *time.Time `json:"paid_at"`

	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	DeletedBy *uuid.UUID     `gorm:"type:uuid" json:"deleted_by"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
