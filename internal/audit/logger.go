package audit

import (
	"context"
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/consult-scheduler/internal/models"
)

// Logger persists audit rows into the activity and error logs.
type Logger struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Logger {
	return &Logger{db: db}
}

func (l *Logger) Log(ctx context.Context, ev Event) error {
	meta := map[string]any{}
	for k, v := range ev.Metadata {
		meta[k] = v
	}
	meta["duration_ms"] = ev.Duration.Milliseconds()

	row := models.ActivityLog{
		UserID:     ev.ActorID,
		Action:     ev.Action,
		EntityType: ev.EntityType,
		EntityID:   ev.EntityID,
		Metadata:   encode(meta),
		IPAddress:  ev.IPAddress,
		UserAgent:  ev.UserAgent,
	}

	return l.db.WithContext(ctx).Create(&row).Error
}

func (l *Logger) LogError(ctx context.Context, ev ErrorEvent) error {
	msg := ""
	if ev.Err != nil {
		msg = ev.Err.Error()
	}

	row := models.ErrorLog{
		UserID:       ev.ActorID,
		FunctionName: ev.Function,
		ErrorMessage: msg,
		ErrorStack:   ev.Stack,
		RequestData:  encode(ev.RequestData),
	}

	return l.db.WithContext(ctx).Create(&row).Error
}

func encode(v map[string]any) datatypes.JSON {
	if len(v) == 0 {
		return nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
