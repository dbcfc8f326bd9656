package models

import (
	"time"

	"github.com/google/uuid"
)

type Consultation struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	SpecialistID uuid.UUID `gorm:"type:uuid;not null;index" json:"specialist_id"`

	// At most one non-cancelled consultation per slot.
	TimeSlotID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_consultations_active_slot,where:status <> 'cancelled'" json:"time_slot_id"`
	TimeSlot   TimeSlot  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	ConsultationType string  `gorm:"size:10;not null" json:"consultation_type"`
	Price            float64 `gorm:"not null" json:"price"`
	Notes            *string `gorm:"size:1000" json:"notes"`

	Status string `gorm:"size:20;not null;default:'pending'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
