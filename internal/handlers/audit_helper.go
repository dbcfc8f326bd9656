package handlers

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
	"github.com/BruksfildServices01/consult-scheduler/internal/ratelimit"
)

// Guard carries what every action endpoint needs around its use case:
// the limiter and the audit trail of rejected requests.
type Guard struct {
	audit   audit.Recorder
	limiter *ratelimit.Limiter
	log     *slog.Logger
}

func NewGuard(rec audit.Recorder, limiter *ratelimit.Limiter, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.Default()
	}
	return &Guard{audit: rec, limiter: limiter, log: log}
}

// attempt describes one request for audit purposes.
type attempt struct {
	function   string
	action     string
	entityType string
	entityID   string
	actor      uuid.UUID
	start      time.Time
	request    map[string]any
}

func (g *Guard) begin(c *gin.Context, function, action, entityType string) *attempt {
	return &attempt{
		function:   function,
		action:     action,
		entityType: entityType,
		actor:      middleware.UserID(c),
		start:      time.Now(),
	}
}

// allow consumes one unit of the caller's budget for action. On denial the
// 429 is already written.
func (g *Guard) allow(c *gin.Context, at *attempt, action ratelimit.Action) bool {
	if g.limiter == nil {
		return true
	}
	d := g.limiter.CheckAndIncrement(c.Request.Context(), at.actor, action)
	if d.Allowed {
		return true
	}

	g.reject(c, at, httperr.RateLimited(d.RetryAfter), map[string]any{
		"max_requests": d.Limit,
	})
	return false
}

// reject audits a failed request and writes the error response.
func (g *Guard) reject(c *gin.Context, at *attempt, err error, extra map[string]any) {
	meta := map[string]any{
		"status":     rejectionStatus(err),
		"error_code": errorCode(err),
	}
	for k, v := range extra {
		meta[k] = v
	}

	ev := audit.Event{
		Action:     at.action,
		EntityType: at.entityType,
		EntityID:   at.entityID,
		Metadata:   meta,
		Duration:   time.Since(at.start),
	}
	if at.actor != uuid.Nil {
		actor := at.actor
		ev.ActorID = &actor
	}
	g.audit.Record(ev.WithOrigin(middleware.Origin(c)))

	kind := httperr.KindOf(err)
	if kind == httperr.KindUnexpected || kind == httperr.KindTransient {
		g.log.Error("request failed", "function", at.function, "action", at.action, "error", err)
		ee := audit.ErrorEvent{
			Function:    at.function,
			Err:         err,
			Stack:       string(debug.Stack()),
			RequestData: at.request,
		}
		if ev.ActorID != nil {
			ee.ActorID = ev.ActorID
		}
		g.audit.RecordError(ee)
	}

	httperr.Respond(c, err)
}

func rejectionStatus(err error) string {
	switch httperr.KindOf(err) {
	case httperr.KindValidation:
		return "validation_failed"
	case httperr.KindRateLimited:
		return "rate_limited"
	case httperr.KindUnauthenticated, httperr.KindForbidden:
		return "unauthorized"
	case httperr.KindNotFound, httperr.KindConflict:
		return errorCode(err)
	case httperr.KindTransient:
		return "unknown"
	default:
		return "error"
	}
}

func errorCode(err error) string {
	var be *httperr.BusinessError
	if errors.As(err, &be) {
		return be.Code
	}
	return "internal_error"
}

// requireID resolves a reference field whose presence depends on the action.
// Its shape was already checked by the binding tags.
func requireID(field string, raw *string) (uuid.UUID, error) {
	if raw == nil || *raw == "" {
		return uuid.Nil, httperr.Validation("missing_"+field, field+" is required.")
	}
	id, err := uuid.Parse(*raw)
	if err != nil {
		return uuid.Nil, httperr.Validation("invalid_"+field, field+" must be a valid UUID.")
	}
	return id, nil
}
