package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/enrollment"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
	"github.com/BruksfildServices01/consult-scheduler/internal/ratelimit"
	ucEnrollment "github.com/BruksfildServices01/consult-scheduler/internal/usecase/enrollment"
)

// ======================================================
// HANDLER
// ======================================================

type EnrollmentHandler struct {
	enroll   *ucEnrollment.Enroll
	activate *ucEnrollment.Activate
	cancel   *ucEnrollment.Cancel
	guard    *Guard
}

func NewEnrollmentHandler(
	enroll *ucEnrollment.Enroll,
	activate *ucEnrollment.Activate,
	cancel *ucEnrollment.Cancel,
	guard *Guard,
) *EnrollmentHandler {
	return &EnrollmentHandler{
		enroll:   enroll,
		activate: activate,
		cancel:   cancel,
		guard:    guard,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type EnrollmentActionRequest struct {
	Action       string  `json:"action" binding:"required,oneof=enroll activate cancel"`
	CourseID     *string `json:"course_id" binding:"omitempty,uuid"`
	EnrollmentID *string `json:"enrollment_id" binding:"omitempty,uuid"`
}

// enrollmentCommand is closed over the three actions; each variant runs itself.
type enrollmentCommand interface {
	rateAction() ratelimit.Action
	entityID() string
	run(ctx context.Context, h *EnrollmentHandler, actor domain.Actor, o audit.Origin) (*ucEnrollment.Result, error)
}

type enrollCommand struct{ courseID uuid.UUID }

func (enrollCommand) rateAction() ratelimit.Action { return ratelimit.ActionEnroll }
func (enrollCommand) entityID() string             { return "" }

func (cmd enrollCommand) run(ctx context.Context, h *EnrollmentHandler, actor domain.Actor, o audit.Origin) (*ucEnrollment.Result, error) {
	return h.enroll.Execute(ctx, ucEnrollment.EnrollInput{Actor: actor, CourseID: cmd.courseID, Origin: o})
}

type activateCommand struct{ enrollmentID uuid.UUID }

func (activateCommand) rateAction() ratelimit.Action { return ratelimit.ActionActivate }
func (cmd activateCommand) entityID() string         { return cmd.enrollmentID.String() }

func (cmd activateCommand) run(ctx context.Context, h *EnrollmentHandler, actor domain.Actor, o audit.Origin) (*ucEnrollment.Result, error) {
	return h.activate.Execute(ctx, ucEnrollment.TransitionInput{EnrollmentID: cmd.enrollmentID, Actor: actor, Origin: o})
}

type cancelCommand struct{ enrollmentID uuid.UUID }

func (cancelCommand) rateAction() ratelimit.Action { return ratelimit.ActionCancel }
func (cmd cancelCommand) entityID() string         { return cmd.enrollmentID.String() }

func (cmd cancelCommand) run(ctx context.Context, h *EnrollmentHandler, actor domain.Actor, o audit.Origin) (*ucEnrollment.Result, error) {
	return h.cancel.Execute(ctx, ucEnrollment.TransitionInput{EnrollmentID: cmd.enrollmentID, Actor: actor, Origin: o})
}

func parseEnrollmentCommand(req EnrollmentActionRequest) (enrollmentCommand, error) {
	switch req.Action {
	case "enroll":
		id, err := requireID("course_id", req.CourseID)
		if err != nil {
			return nil, err
		}
		return enrollCommand{courseID: id}, nil
	case "activate", "cancel":
		id, err := requireID("enrollment_id", req.EnrollmentID)
		if err != nil {
			return nil, err
		}
		if req.Action == "activate" {
			return activateCommand{enrollmentID: id}, nil
		}
		return cancelCommand{enrollmentID: id}, nil
	default:
		return nil, httperr.Validation("invalid_action", "action must be one of enroll, activate, cancel.")
	}
}

// ======================================================
// POST /enrollment-actions
// ======================================================

func (h *EnrollmentHandler) Handle(c *gin.Context) {
	at := h.guard.begin(c, "process-enrollment", "enrollment_request", "enrollment")

	var req EnrollmentActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.guard.reject(c, at, bindError(err), nil)
		return
	}
	at.request = map[string]any{"action": req.Action}

	cmd, err := parseEnrollmentCommand(req)
	if err != nil {
		h.guard.reject(c, at, err, nil)
		return
	}
	at.action = string(cmd.rateAction())
	at.entityID = cmd.entityID()

	if !h.guard.allow(c, at, cmd.rateAction()) {
		return
	}

	actor := domain.Actor{UserID: at.actor, Role: middleware.UserRole(c)}
	res, err := cmd.run(c.Request.Context(), h, actor, middleware.Origin(c))
	if err != nil {
		h.guard.reject(c, at, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"enrollment": res.Enrollment,
		"message":    res.Message,
	})
}
