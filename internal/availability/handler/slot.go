package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"guidecal/internal/availability/service"
	apperrors "guidecal/pkg/errors"
	httputil "guidecal/pkg/http"
	"guidecal/pkg/logger"
	"guidecal/pkg/middleware"
	"guidecal/pkg/model"

	"github.com/julienschmidt/httprouter"
)

// defaultListWindow bounds owner listings when the caller gives no range.
const defaultListWindow = 90 * 24 * time.Hour

type SlotHandler struct {
	service service.SlotService
	log     *logger.Logger
}

func NewSlotHandler(service service.SlotService, log *logger.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log,
	}
}

func (h *SlotHandler) Create(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Create", apperrors.Unauthorized("Actor identity is required"))
		return
	}
	if actor.ID != ps.ByName("ownerId") {
		h.writeError(w, "Create", apperrors.Forbidden("Only the owner may create availability slots"))
		return
	}

	var slot model.AvailabilitySlot
	if err := json.NewDecoder(r.Body).Decode(&slot); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "Create", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	slot.OwnerRole = ps.ByName("ownerType")
	slot.OwnerID = ps.ByName("ownerId")

	if err := h.service.Create(r.Context(), &slot); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Create", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteCreated(w, slot); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *SlotHandler) ListForOwner(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerRole := ps.ByName("ownerType")
	ownerID := ps.ByName("ownerId")

	from, to, err := httputil.ExtractTimeRange(r)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForOwner", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	start, end := resolveRange(from, to)

	slots, err := h.service.ListForOwner(r.Context(), ownerID, ownerRole, start, end)
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "ListForOwner", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListForOwner", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SlotHandler) UpdateStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "UpdateStatus", apperrors.Unauthorized("Actor identity is required"))
		return
	}

	id := ps.ByName("slotId")

	var update model.SlotUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		if writeErr := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
			Error: "Invalid request body",
		}); writeErr != nil {
			h.log.Error("failed to write JSON response", "handler", "UpdateStatus", "operation", "WriteJSON", "error", writeErr)
		}
		return
	}

	if err := h.service.UpdateStatus(r.Context(), id, actor.ID, &update); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "UpdateStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SlotHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.writeError(w, "Delete", apperrors.Unauthorized("Actor identity is required"))
		return
	}

	id := ps.ByName("slotId")

	if err := h.service.Delete(r.Context(), id, actor.ID); err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "Delete", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	httputil.WriteNoContent(w)
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/owner/:ownerType/:ownerId", h.ListForOwner)
	router.POST("/api/v1/availability/owner/:ownerType/:ownerId", h.Create)
	router.PATCH("/api/v1/availability/slot/:slotId", h.UpdateStatus)
	router.DELETE("/api/v1/availability/slot/:slotId", h.Delete)
}

func (h *SlotHandler) writeError(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}

func resolveRange(from, to *time.Time) (time.Time, time.Time) {
	start := time.Now().UTC().Truncate(24 * time.Hour)
	if from != nil {
		start = *from
	}
	end := start.Add(defaultListWindow)
	if to != nil {
		end = *to
	}
	return start, end
}
