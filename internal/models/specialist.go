package models

import (
	"time"

	"github.com/google/uuid"
)

type Specialist struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// UserID is the identity allowed to confirm and complete consultations.
	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`

	FullName    string `gorm:"size:150;not null" json:"full_name"`
	Specialty   string `gorm:"size:100" json:"specialty"`
	IsAvailable bool   `gorm:"default:true" json:"is_available"`

	CreatedAt time.Time `json:"created_at"`
}
