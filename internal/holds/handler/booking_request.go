package handler

import (
	"encoding/json"
	"net/http"

	"guidecal/internal/holds/service"
	apperrors "guidecal/pkg/errors"
	httputil "guidecal/pkg/http"
	"guidecal/pkg/logger"
	"guidecal/pkg/middleware"
	"guidecal/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type bookingRequestCreateRequest struct {
	JobID      string `json:"job_id"`
	TargetID   string `json:"target_id"`
	TargetRole string `json:"target_role"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Message    string `json:"message,omitempty"`
}

type BookingRequestHandler struct {
	service service.BookingRequestService
	log     *logger.Logger
}

func NewBookingRequestHandler(service service.BookingRequestService, log *logger.Logger) *BookingRequestHandler {
	return &BookingRequestHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingRequestHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Actor identity is required"))
		return
	}

	var req bookingRequestCreateRequest
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

	request := &model.BookingRequest{
		JobID:         req.JobID,
		RequesterID:   actor.ID,
		RequesterRole: actor.Role,
		TargetID:      req.TargetID,
		TargetRole:    req.TargetRole,
		StartDate:     startDate,
		EndDate:       endDate,
		Message:       req.Message,
	}

	if err := h.service.Request(r.Context(), request); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, request); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingRequestHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	request, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, request); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingRequestHandler) ListForJob(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requests, err := h.service.ListForJob(r.Context(), ps.ByName("jobId"))
	if err != nil {
		h.writeError(w, "ListForJob", err)
		return
	}

	if err := httputil.WriteSuccess(w, requests); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForJob", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingRequestHandler) Respond(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
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

	request, err := h.service.Respond(r.Context(), ps.ByName("id"), actor.ID, actor.Role, &decision)
	if err != nil {
		h.writeError(w, "Respond", err)
		return
	}

	if err := httputil.WriteSuccess(w, request); err != nil {
		h.log.Error("failed to write success response", "handler", "Respond", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingRequestHandler) Expire(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	expired, err := h.service.ExpireStale(r.Context())
	if err != nil {
		h.writeError(w, "Expire", err)
		return
	}

	if err := httputil.WriteSuccess(w, expired); err != nil {
		h.log.Error("failed to write success response", "handler", "Expire", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingRequestHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/booking-requests", h.Create)
	router.GET("/api/v1/booking-requests/id/:id", h.GetByID)
	router.GET("/api/v1/booking-requests/job/:jobId", h.ListForJob)
	router.POST("/api/v1/booking-requests/id/:id/respond", h.Respond)
	router.POST("/api/v1/booking-requests/expire", h.Expire)
}

func (h *BookingRequestHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingRequestHandler) writeBadBody(w http.ResponseWriter, handlerName string) {
	if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); writeErr != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "operation", "WriteJSON", "error", writeErr)
	}
}
