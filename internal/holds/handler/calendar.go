package handler

import (
	"net/http"
	"time"

	"guidecal/internal/holds/service"
	apperrors "guidecal/pkg/errors"
	httputil "guidecal/pkg/http"
	"guidecal/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

const (
	// defaultCalendarWindow is rendered when the caller gives no explicit
	// window.
	defaultCalendarWindow = 30
	// maxCalendarWindow bounds the snapshot fetch and the rendered payload.
	maxCalendarWindow = 366
)

type CalendarHandler struct {
	service service.HoldService
	log     *logger.Logger
}

func NewCalendarHandler(service service.HoldService, log *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		service: service,
		log:     log,
	}
}

// View renders the per-day status calendar a requester sees before placing a
// hold.
func (h *CalendarHandler) View(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	ownerRole := ps.ByName("ownerType")
	ownerID := ps.ByName("ownerId")

	query := r.URL.Query()
	from := time.Now().UTC()
	if s := query.Get("from"); s != "" {
		parsed, err := httputil.ExtractDate(s, "from")
		if err != nil {
			h.writeError(w, err)
			return
		}
		from = parsed
	}

	to := from.AddDate(0, 0, defaultCalendarWindow-1)
	if s := query.Get("to"); s != "" {
		parsed, err := httputil.ExtractDate(s, "to")
		if err != nil {
			h.writeError(w, err)
			return
		}
		to = parsed
	}

	if to.Before(from) {
		h.writeError(w, apperrors.InvalidInput("to must not be before from"))
		return
	}
	if to.After(from.AddDate(0, 0, maxCalendarWindow-1)) {
		h.writeError(w, apperrors.InvalidInput("calendar window must not exceed 366 days"))
		return
	}

	cells, err := h.service.CalendarView(r.Context(), ownerID, ownerRole, from, to)
	if err != nil {
		h.writeError(w, err)
		return
	}

	if err := httputil.WriteSuccess(w, cells); err != nil {
		h.log.Error("failed to write success response", "handler", "View", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CalendarHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/calendar/:ownerType/:ownerId", h.View)
}

func (h *CalendarHandler) writeError(w http.ResponseWriter, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", "View", "operation", "WriteError", "error", writeErr)
	}
}
