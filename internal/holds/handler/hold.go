package handler

import (
	"encoding/json"
	"net/http"

	"guidecal/internal/holds/repository"
	"guidecal/internal/holds/service"
	apperrors "guidecal/pkg/errors"
	httputil "guidecal/pkg/http"
	"guidecal/pkg/logger"
	"guidecal/pkg/middleware"
	"guidecal/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// holdCreateRequest is the wire shape for hold creation. Dates travel as
// YYYY-MM-DD; identity comes from the actor headers, not the body.
type holdCreateRequest struct {
	HoldeeID       string `json:"holdee_id"`
	HoldeeType     string `json:"holdee_type"`
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	RequestMessage string `json:"request_message,omitempty"`
}

type HoldHandler struct {
	service service.HoldService
	log     *logger.Logger
}

func NewHoldHandler(service service.HoldService, log *logger.Logger) *HoldHandler {
	return &HoldHandler{
		service: service,
		log:     log,
	}
}

func (h *HoldHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Actor identity is required"))
		return
	}

	var req holdCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadBody(w, "Create")
		return
	}

	startDate, err := httputil.ExtractDate(req.StartDate, "start_date")
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}
	endDate, err := httputil.ExtractDate(req.EndDate, "end_date")
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	hold := &model.AvailabilityHold{
		HoldeeID:       req.HoldeeID,
		HoldeeType:     req.HoldeeType,
		RequesterID:    actor.ID,
		RequesterType:  actor.Role,
		StartDate:      startDate,
		EndDate:        endDate,
		RequestMessage: req.RequestMessage,
	}

	if err := h.service.Request(r.Context(), hold); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, hold); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *HoldHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	hold, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, hold); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HoldHandler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	query := r.URL.Query()
	filter := repository.HoldFilter{
		HoldeeID:      query.Get("holdee_id"),
		HoldeeType:    query.Get("holdee_type"),
		RequesterID:   query.Get("requester_id"),
		RequesterType: query.Get("requester_type"),
		Status:        query.Get("status"),
	}

	holds, total, err := h.service.List(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeError(w, "List", err)
		return
	}

	if err := httputil.WritePaginated(w, holds, total, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "List", "operation", "WritePaginated", "error", err)
	}
}

func (h *HoldHandler) Respond(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Respond", apperrors.Unauthorized("Actor identity is required"))
		return
	}

	var decision model.HoldDecision
	if err := json.NewDecoder(r.Body).Decode(&decision); err != nil {
		h.writeBadBody(w, "Respond")
		return
	}

	hold, err := h.service.Respond(r.Context(), ps.ByName("id"), actor.ID, actor.Role, &decision)
	if err != nil {
		h.writeError(w, "Respond", err)
		return
	}

	if err := httputil.WriteSuccess(w, hold); err != nil {
		h.log.Error("failed to write success response", "handler", "Respond", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HoldHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Cancel", apperrors.Unauthorized("Actor identity is required"))
		return
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), actor.ID); err != nil {
		h.writeError(w, "Cancel", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *HoldHandler) Expire(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	expired, err := h.service.ExpireStale(r.Context())
	if err != nil {
		h.writeError(w, "Expire", err)
		return
	}

	if err := httputil.WriteSuccess(w, expired); err != nil {
		h.log.Error("failed to write success response", "handler", "Expire", "operation", "WriteSuccess", "error", err)
	}
}

func (h *HoldHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/holds", h.Create)
	router.GET("/api/v1/holds", h.List)
	router.GET("/api/v1/holds/id/:id", h.GetByID)
	router.POST("/api/v1/holds/id/:id/respond", h.Respond)
	router.POST("/api/v1/holds/id/:id/cancel", h.Cancel)
	router.POST("/api/v1/holds/expire", h.Expire)
}

func (h *HoldHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *HoldHandler) writeBadBody(w http.ResponseWriter, handlerName string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "operation", "WriteJSON", "error", writeErr)
	}
}
