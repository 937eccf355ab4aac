package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"guidecal/internal/holds/repository"
	"guidecal/pkg/calendar"
	apperrors "guidecal/pkg/errors"
	"guidecal/pkg/logger"
	"guidecal/pkg/middleware"
	"guidecal/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock service for testing
type mockHoldService struct {
	requestFunc  func(ctx context.Context, hold *model.AvailabilityHold) error
	respondFunc  func(ctx context.Context, id, actorID, actorRole string, decision *model.HoldDecision) (*model.AvailabilityHold, error)
	cancelFunc   func(ctx context.Context, id, actorID string) error
	expireFunc   func(ctx context.Context) ([]*model.AvailabilityHold, error)
	calendarFunc func(ctx context.Context, ownerID, ownerRole string, from, to time.Time) ([]calendar.DayCell, error)
}

func (m *mockHoldService) Request(ctx context.Context, hold *model.AvailabilityHold) error {
	if m.requestFunc != nil {
		return m.requestFunc(ctx, hold)
	}
	hold.ID = "65f1a2b3c4d5e6f7a8b9c0d1"
	hold.Status = model.HoldPending
	return nil
}

func (m *mockHoldService) GetByID(ctx context.Context, id string) (*model.AvailabilityHold, error) {
	return nil, apperrors.NotFoundWithID("Hold", id)
}

func (m *mockHoldService) List(ctx context.Context, filter repository.HoldFilter, limit int, offset int64) ([]*model.AvailabilityHold, int64, error) {
	return []*model.AvailabilityHold{}, 0, nil
}

func (m *mockHoldService) Respond(ctx context.Context, id, actorID, actorRole string, decision *model.HoldDecision) (*model.AvailabilityHold, error) {
	if m.respondFunc != nil {
		return m.respondFunc(ctx, id, actorID, actorRole, decision)
	}
	return nil, apperrors.NotFoundWithID("Hold", id)
}

func (m *mockHoldService) Cancel(ctx context.Context, id, actorID string) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, actorID)
	}
	return nil
}

func (m *mockHoldService) ExpireStale(ctx context.Context) ([]*model.AvailabilityHold, error) {
	if m.expireFunc != nil {
		return m.expireFunc(ctx)
	}
	return []*model.AvailabilityHold{}, nil
}

func (m *mockHoldService) CalendarView(ctx context.Context, ownerID, ownerRole string, from, to time.Time) ([]calendar.DayCell, error) {
	if m.calendarFunc != nil {
		return m.calendarFunc(ctx, ownerID, ownerRole, from, to)
	}
	return []calendar.DayCell{}, nil
}

func newTestHandler(svc *mockHoldService) *HoldHandler {
	log := logger.New(logger.Config{
		Level:   logger.LevelError,
		Format:  logger.FormatText,
		Service: "test",
	})
	return NewHoldHandler(svc, log)
}

func withActor(r *http.Request, id, role string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ActorKey, middleware.Actor{ID: id, Role: role})
	return r.WithContext(ctx)
}

func TestHoldHandler_Create(t *testing.T) {
	t.Run("creates hold from actor identity", func(t *testing.T) {
		var got *model.AvailabilityHold
		svc := &mockHoldService{
			requestFunc: func(ctx context.Context, hold *model.AvailabilityHold) error {
				got = hold
				hold.ID = "65f1a2b3c4d5e6f7a8b9c0d1"
				return nil
			},
		}
		h := newTestHandler(svc)

		body := `{"holdee_id":"guide-7","holdee_type":"guide","start_date":"2026-06-10","end_date":"2026-06-14","request_message":"city tour"}`
		req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/holds", strings.NewReader(body)), "agency-3", model.RoleAgency)
		w := httptest.NewRecorder()

		h.Create(w, req, httprouter.Params{})

		assert.Equal(t, http.StatusCreated, w.Code)
		require.NotNil(t, got)
		assert.Equal(t, "agency-3", got.RequesterID)
		assert.Equal(t, model.RoleAgency, got.RequesterType)
		assert.Equal(t, time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC), got.StartDate)
	})

	t.Run("missing actor is unauthorized", func(t *testing.T) {
		h := newTestHandler(&mockHoldService{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/holds", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		h.Create(w, req, httprouter.Params{})

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed date is a bad request", func(t *testing.T) {
		h := newTestHandler(&mockHoldService{})

		body := `{"holdee_id":"guide-7","holdee_type":"guide","start_date":"June 10","end_date":"2026-06-14"}`
		req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/holds", strings.NewReader(body)), "agency-3", model.RoleAgency)
		w := httptest.NewRecorder()

		h.Create(w, req, httprouter.Params{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHoldHandler_Respond_StatusCodes(t *testing.T) {
	cases := []struct {
		name       string
		serviceErr error
		wantStatus int
		wantCode   string
	}{
		{"conflict maps to 409", apperrors.Conflict("dates no longer free"), http.StatusConflict, apperrors.CodeConflict},
		{"already resolved maps to 409", apperrors.AlreadyResolved("already declined"), http.StatusConflict, apperrors.CodeAlreadyResolved},
		{"expired maps to 410", apperrors.HoldExpired("window closed"), http.StatusGone, apperrors.CodeHoldExpired},
		{"forbidden maps to 403", apperrors.Forbidden("not the holdee"), http.StatusForbidden, apperrors.CodeForbidden},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockHoldService{
				respondFunc: func(ctx context.Context, id, actorID, actorRole string, decision *model.HoldDecision) (*model.AvailabilityHold, error) {
					return nil, tc.serviceErr
				},
			}
			h := newTestHandler(svc)

			body := `{"decision":"accepted"}`
			req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/holds/id/x/respond", strings.NewReader(body)), "guide-7", model.RoleGuide)
			w := httptest.NewRecorder()

			h.Respond(w, req, httprouter.Params{{Key: "id", Value: "65f1a2b3c4d5e6f7a8b9c0d1"}})

			assert.Equal(t, tc.wantStatus, w.Code)

			var resp struct {
				Code string `json:"code"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantCode, resp.Code)
		})
	}
}

func TestHoldHandler_Respond_PartialFailureDegrades(t *testing.T) {
	svc := &mockHoldService{
		respondFunc: func(ctx context.Context, id, actorID, actorRole string, decision *model.HoldDecision) (*model.AvailabilityHold, error) {
			return nil, apperrors.PartialFailure("accepted without blocking", nil, map[string]any{"hold_id": id})
		},
	}
	h := newTestHandler(svc)

	body := `{"decision":"accepted"}`
	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/holds/id/x/respond", strings.NewReader(body)), "guide-7", model.RoleGuide)
	w := httptest.NewRecorder()

	h.Respond(w, req, httprouter.Params{{Key: "id", Value: "65f1a2b3c4d5e6f7a8b9c0d1"}})

	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// Reconciliation details stay in the log, not in the response.
	assert.NotContains(t, w.Body.String(), "hold_id")
	assert.Contains(t, w.Body.String(), apperrors.CodeInternal)
}

func TestHoldHandler_Cancel(t *testing.T) {
	var cancelledBy string
	svc := &mockHoldService{
		cancelFunc: func(ctx context.Context, id, actorID string) error {
			cancelledBy = actorID
			return nil
		},
	}
	h := newTestHandler(svc)

	req := withActor(httptest.NewRequest(http.MethodPost, "/api/v1/holds/id/x/cancel", nil), "agency-3", model.RoleAgency)
	w := httptest.NewRecorder()

	h.Cancel(w, req, httprouter.Params{{Key: "id", Value: "65f1a2b3c4d5e6f7a8b9c0d1"}})

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "agency-3", cancelledBy)
}

func TestHoldHandler_Expire(t *testing.T) {
	expired := []*model.AvailabilityHold{
		{ID: "65f1a2b3c4d5e6f7a8b9c0d1", Status: model.HoldExpired},
	}
	svc := &mockHoldService{
		expireFunc: func(ctx context.Context) ([]*model.AvailabilityHold, error) {
			return expired, nil
		},
	}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/holds/expire", nil)
	w := httptest.NewRecorder()

	h.Expire(w, req, httprouter.Params{})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.HoldExpired)
}
