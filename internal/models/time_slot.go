package models

import (
	"time"

	"github.com/google/uuid"
)

type TimeSlot struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	SpecialistID uuid.UUID  `gorm:"type:uuid;not null;index:idx_time_slots_specialist_date" json:"specialist_id"`
	Specialist   Specialist `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`

	SlotDate string `gorm:"size:10;not null;index:idx_time_slots_specialist_date" json:"slot_date"`
	SlotTime string `gorm:"size:5;not null" json:"slot_time"`

	// IsBooked is flipped only by the reservation path and by cancellation.
	IsBooked bool `gorm:"not null;default:false" json:"is_booked"`

	CreatedAt time.Time `json:"created_at"`
}
