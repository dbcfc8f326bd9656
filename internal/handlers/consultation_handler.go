package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/BruksfildServices01/consult-scheduler/internal/audit"
	domain "github.com/BruksfildServices01/consult-scheduler/internal/domain/consultation"
	"github.com/BruksfildServices01/consult-scheduler/internal/httperr"
	"github.com/BruksfildServices01/consult-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/consult-scheduler/internal/middleware"
	"github.com/BruksfildServices01/consult-scheduler/internal/ratelimit"
	ucConsultation "github.com/BruksfildServices01/consult-scheduler/internal/usecase/consultation"
)

// ======================================================
// HANDLER
// ======================================================

type ConsultationHandler struct {
	reserve    *ucConsultation.ReserveSlot
	transition *ucConsultation.TransitionConsultation
	listSlots  *ucConsultation.ListOpenSlots
	guard      *Guard
}

func NewConsultationHandler(
	reserve *ucConsultation.ReserveSlot,
	transition *ucConsultation.TransitionConsultation,
	listSlots *ucConsultation.ListOpenSlots,
	guard *Guard,
) *ConsultationHandler {
	return &ConsultationHandler{
		reserve:    reserve,
		transition: transition,
		listSlots:  listSlots,
		guard:      guard,
	}
}

// ======================================================
// REQUESTS
// ======================================================

type BookConsultationRequest struct {
	TimeSlotID       string   `json:"time_slot_id" binding:"required,uuid"`
	SpecialistID     string   `json:"specialist_id" binding:"required,uuid"`
	ConsultationType string   `json:"consultation_type" binding:"required,oneof=video audio chat"`
	Price            *float64 `json:"price" binding:"omitempty,gte=0"`
	Notes            *string  `json:"notes" binding:"omitempty,max=1000"`
}

type ConsultationActionRequest struct {
	Action         string `json:"action" binding:"required,oneof=confirm complete cancel"`
	ConsultationID string `json:"consultation_id" binding:"required,uuid"`
}

type ListSlotsQuery struct {
	SpecialistID string `form:"specialist_id" binding:"required,uuid"`
	Date         string `form:"date"`
}

// consultationCommand is closed over confirm, complete and cancel.
type consultationCommand interface {
	rateAction() ratelimit.Action
	run(ctx context.Context, h *ConsultationHandler, id uuid.UUID, actor domain.Actor, o audit.Origin) (*ucConsultation.Result, error)
}

type confirmCommand struct{}

func (confirmCommand) rateAction() ratelimit.Action { return ratelimit.ActionConfirm }

func (confirmCommand) run(ctx context.Context, h *ConsultationHandler, id uuid.UUID, actor domain.Actor, o audit.Origin) (*ucConsultation.Result, error) {
	return h.transition.Execute(ctx, ucConsultation.TransitionInput{
		ConsultationID: id, Target: domain.StatusConfirmed, Actor: actor, Origin: o,
	})
}

type completeCommand struct{}

func (completeCommand) rateAction() ratelimit.Action { return ratelimit.ActionComplete }

func (completeCommand) run(ctx context.Context, h *ConsultationHandler, id uuid.UUID, actor domain.Actor, o audit.Origin) (*ucConsultation.Result, error) {
	return h.transition.Execute(ctx, ucConsultation.TransitionInput{
		ConsultationID: id, Target: domain.StatusCompleted, Actor: actor, Origin: o,
	})
}

type cancelConsultationCommand struct{}

func (cancelConsultationCommand) rateAction() ratelimit.Action {
	return ratelimit.ActionConsultationCancel
}

func (cancelConsultationCommand) run(ctx context.Context, h *ConsultationHandler, id uuid.UUID, actor domain.Actor, o audit.Origin) (*ucConsultation.Result, error) {
	return h.transition.Execute(ctx, ucConsultation.TransitionInput{
		ConsultationID: id, Target: domain.StatusCancelled, Actor: actor, Origin: o,
	})
}

func parseConsultationCommand(action string) (consultationCommand, error) {
	switch action {
	case "confirm":
		return confirmCommand{}, nil
	case "complete":
		return completeCommand{}, nil
	case "cancel":
		return cancelConsultationCommand{}, nil
	default:
		return nil, httperr.Validation("invalid_action", "action must be one of confirm, complete, cancel.")
	}
}

// ======================================================
// POST /rpc/book_consultation
// ======================================================

func (h *ConsultationHandler) Book(c *gin.Context) {
	at := h.guard.begin(c, "book_consultation", string(ratelimit.ActionBook), "consultation")

	var req BookConsultationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.guard.reject(c, at, bindError(err), nil)
		return
	}

	in, err := parseBooking(req)
	if err != nil {
		h.guard.reject(c, at, err, nil)
		return
	}
	at.entityID = in.SlotID.String()
	at.request = map[string]any{
		"time_slot_id":      in.SlotID.String(),
		"specialist_id":     in.SpecialistID.String(),
		"consultation_type": in.Kind,
	}

	if !h.guard.allow(c, at, ratelimit.ActionBook) {
		return
	}

	in.UserID = at.actor
	in.Origin = middleware.Origin(c)

	consultation, err := h.reserve.Execute(c.Request.Context(), in)
	if err != nil {
		h.guard.reject(c, at, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"consultation": consultation,
		"message":      "Consultation booked successfully.",
	})
}

func parseBooking(req BookConsultationRequest) (ucConsultation.ReserveInput, error) {
	var in ucConsultation.ReserveInput

	slotID, err := requireID("time_slot_id", &req.TimeSlotID)
	if err != nil {
		return in, err
	}
	specialistID, err := requireID("specialist_id", &req.SpecialistID)
	if err != nil {
		return in, err
	}

	// pricing is rechecked by the use case, rejecting here keeps bad input off the store
	if _, _, err := domain.Quote(req.ConsultationType, req.Price); err != nil {
		return in, err
	}

	var notes *string
	if req.Notes != nil {
		if n := strings.TrimSpace(*req.Notes); n != "" {
			notes = &n
		}
	}

	in.SlotID = slotID
	in.SpecialistID = specialistID
	in.Kind = req.ConsultationType
	in.ClientPrice = req.Price
	in.Notes = notes
	return in, nil
}

// ======================================================
// POST /consultation-actions
// ======================================================

func (h *ConsultationHandler) Handle(c *gin.Context) {
	at := h.guard.begin(c, "consultation-actions", "consultation_request", "consultation")

	var req ConsultationActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.guard.reject(c, at, bindError(err), nil)
		return
	}
	at.request = map[string]any{"action": req.Action}

	cmd, err := parseConsultationCommand(req.Action)
	if err != nil {
		h.guard.reject(c, at, err, nil)
		return
	}
	at.action = string(cmd.rateAction())

	id, err := requireID("consultation_id", &req.ConsultationID)
	if err != nil {
		h.guard.reject(c, at, err, nil)
		return
	}
	at.entityID = id.String()

	if !h.guard.allow(c, at, cmd.rateAction()) {
		return
	}

	actor := domain.Actor{UserID: at.actor, Role: middleware.UserRole(c)}
	res, err := cmd.run(c.Request.Context(), h, id, actor, middleware.Origin(c))
	if err != nil {
		h.guard.reject(c, at, err, nil)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"consultation": res.Consultation,
		"message":      res.Message,
	})
}

// ======================================================
// GET /time-slots
// ======================================================

func (h *ConsultationHandler) ListSlots(c *gin.Context) {
	var q ListSlotsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httperr.Respond(c, bindError(err))
		return
	}
	specialistID, err := requireID("specialist_id", &q.SpecialistID)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	slots, err := h.listSlots.Execute(c.Request.Context(), specialistID, q.Date)
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	httpresp.List(c, slots)
}
