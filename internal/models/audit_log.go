package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ActivityLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	Action string     `gorm:"size:50;not null;index" json:"action"`

	EntityType string         `gorm:"size:50" json:"entity_type"`
	EntityID   string         `gorm:"size:255" json:"entity_id"`
	Metadata   datatypes.JSON `gorm:"type:jsonb" json:"metadata"`

	IPAddress string `gorm:"size:64" json:"ip_address"`
	UserAgent string `gorm:"type:text" json:"user_agent"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

type ErrorLog struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID       *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"`
	FunctionName string         `gorm:"size:100;not null" json:"function_name"`
	ErrorMessage string         `gorm:"type:text;not null" json:"error_message"`
	ErrorStack   string         `gorm:"type:text" json:"error_stack"`
	RequestData  datatypes.JSON `gorm:"type:jsonb" json:"request_data"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
