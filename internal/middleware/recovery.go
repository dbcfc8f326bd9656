package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
)

// Recovery answers panics with a generic 500. The stack only goes to the
// error log.
func Recovery(rec audit.Recorder, log *slog.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		stack := string(debug.Stack())
		log.Error("panic recovered", "path", c.Request.URL.Path, "panic", recovered)

		actor := UserID(c)
		ev := audit.ErrorEvent{
			Function: c.FullPath(),
			Err:      fmt.Errorf("panic: %v", recovered),
			Stack:    stack,
			RequestData: map[string]any{
				"method": c.Request.Method,
				"path":   c.Request.URL.Path,
			},
		}
		if actor != uuid.Nil {
			ev.ActorID = &actor
		}
		rec.RecordError(ev)

		httperr.Internal(c, "internal_error", "An unexpected error occurred.")
	})
}

// StoreTimeout bounds every store call made while serving the request.
func StoreTimeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
