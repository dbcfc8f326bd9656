package models

import (
	"time"

	"github.com/google/uuid"
)

type RateLimit struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rate_limits_key" json:"user_id"`
	ActionType  string    `gorm:"size:50;not null;uniqueIndex:idx_rate_limits_key" json:"action_type"`
	WindowStart time.Time `gorm:"not null;uniqueIndex:idx_rate_limits_key" json:"window_start"`

	RequestCount int `gorm:"not null;default:0" json:"request_count"`

	CreatedAt time.Time `json:"created_at"`
}
