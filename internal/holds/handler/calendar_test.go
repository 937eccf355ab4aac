package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"guidecal/pkg/calendar"
	apperrors "guidecal/pkg/errors"
	"guidecal/pkg/logger"
	"guidecal/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
)

func newTestCalendarHandler(svc *mockHoldService) *CalendarHandler {
	log := logger.New(logger.Config{
		Level:   logger.LevelError,
		Format:  logger.FormatText,
		Service: "test",
	})
	return NewCalendarHandler(svc, log)
}

func calendarParams() httprouter.Params {
	return httprouter.Params{
		{Key: "ownerType", Value: model.RoleGuide},
		{Key: "ownerId", Value: "guide-42"},
	}
}

func TestCalendarHandler_View(t *testing.T) {
	t.Run("renders the requested window", func(t *testing.T) {
		var gotFrom, gotTo time.Time
		svc := &mockHoldService{
			calendarFunc: func(ctx context.Context, ownerID, ownerRole string, from, to time.Time) ([]calendar.DayCell, error) {
				gotFrom, gotTo = from, to
				return []calendar.DayCell{{Date: from.Format("2006-01-02"), Status: calendar.DayUnset}}, nil
			},
		}
		h := newTestCalendarHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar/guide/guide-42?from=2026-10-01&to=2026-10-07", nil)
		w := httptest.NewRecorder()

		h.View(w, req, calendarParams())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), gotFrom)
		assert.Equal(t, time.Date(2026, 10, 7, 0, 0, 0, 0, time.UTC), gotTo)
	})

	t.Run("window at the maximum passes", func(t *testing.T) {
		called := false
		svc := &mockHoldService{
			calendarFunc: func(ctx context.Context, ownerID, ownerRole string, from, to time.Time) ([]calendar.DayCell, error) {
				called = true
				return []calendar.DayCell{}, nil
			},
		}
		h := newTestCalendarHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar/guide/guide-42?from=2026-01-01&to=2027-01-01", nil)
		w := httptest.NewRecorder()

		h.View(w, req, calendarParams())

		assert.Equal(t, http.StatusOK, w.Code)
		assert.True(t, called)
	})

	t.Run("oversized window is rejected before rendering", func(t *testing.T) {
		called := false
		svc := &mockHoldService{
			calendarFunc: func(ctx context.Context, ownerID, ownerRole string, from, to time.Time) ([]calendar.DayCell, error) {
				called = true
				return []calendar.DayCell{}, nil
			},
		}
		h := newTestCalendarHandler(svc)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar/guide/guide-42?from=2026-01-01&to=4026-01-01", nil)
		w := httptest.NewRecorder()

		h.View(w, req, calendarParams())

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), apperrors.CodeInvalidInput)
		assert.False(t, called)
	})

	t.Run("inverted window is rejected", func(t *testing.T) {
		h := newTestCalendarHandler(&mockHoldService{})

		req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar/guide/guide-42?from=2026-10-07&to=2026-10-01", nil)
		w := httptest.NewRecorder()

		h.View(w, req, calendarParams())

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
