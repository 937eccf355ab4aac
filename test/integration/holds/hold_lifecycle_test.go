package holds

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"guidecal/test/common"
)

// End-to-end hold lifecycle against a running holds service. Run with:
//
//	TEST_SERVER_URL=http://localhost:8081 go test ./test/integration/holds/...
func TestHoldLifecycle(t *testing.T) {
	suite := common.NewIntegrationTestSuite(t)

	holdeeID := fmt.Sprintf("guide-it-%d", time.Now().UnixNano())
	requester := suite.HTTPClient.WithActor("agency-it-1", "agency")
	holdee := suite.HTTPClient.WithActor(holdeeID, "guide")

	start := time.Now().UTC().AddDate(0, 1, 0)
	end := start.AddDate(0, 0, 3)

	createBody := map[string]any{
		"holdee_id":       holdeeID,
		"holdee_type":     "guide",
		"start_date":      start.Format("2006-01-02"),
		"end_date":        end.Format("2006-01-02"),
		"request_message": "four day city tour",
	}

	resp := requester.POST(t, "/api/v1/holds", createBody)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201 creating hold, got %d: %s", resp.StatusCode, resp.Body)
	}

	var created struct {
		Data struct {
			ID     string `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
	}
	resp.DecodeJSON(t, &created)
	if created.Data.Status != "pending" {
		t.Fatalf("expected pending hold, got %q", created.Data.Status)
	}
	holdID := created.Data.ID

	t.Run("holdee inbox lists the hold", func(t *testing.T) {
		resp := holdee.GET(t, "/api/v1/holds?holdee_id="+holdeeID+"&holdee_type=guide")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 listing holds, got %d", resp.StatusCode)
		}

		var list struct {
			Data       []map[string]any `json:"data"`
			TotalCount int64            `json:"total_count"`
		}
		resp.DecodeJSON(t, &list)
		if list.TotalCount < 1 {
			t.Fatalf("expected at least one hold in the inbox, got %d", list.TotalCount)
		}
	})

	t.Run("calendar shows the pending request", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/calendar/guide/%s?from=%s&to=%s",
			holdeeID, start.Format("2006-01-02"), end.Format("2006-01-02"))
		resp := requester.GET(t, path)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 from calendar, got %d", resp.StatusCode)
		}

		var view struct {
			Data []struct {
				Date   string `json:"date"`
				Status string `json:"status"`
			} `json:"data"`
		}
		resp.DecodeJSON(t, &view)
		for _, cell := range view.Data {
			if cell.Status != "has-requests" {
				t.Fatalf("expected has-requests on %s, got %q", cell.Date, cell.Status)
			}
		}
	})

	t.Run("requester cannot respond", func(t *testing.T) {
		resp := requester.POST(t, "/api/v1/holds/id/"+holdID+"/respond", map[string]any{"decision": "accepted"})
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403, got %d: %s", resp.StatusCode, resp.Body)
		}
	})

	t.Run("holdee accepts", func(t *testing.T) {
		resp := holdee.POST(t, "/api/v1/holds/id/"+holdID+"/respond", map[string]any{"decision": "accepted", "notes": "looking forward"})
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 accepting hold, got %d: %s", resp.StatusCode, resp.Body)
		}

		var accepted struct {
			Data struct {
				Status string `json:"status"`
			} `json:"data"`
		}
		resp.DecodeJSON(t, &accepted)
		if accepted.Data.Status != "accepted" {
			t.Fatalf("expected accepted, got %q", accepted.Data.Status)
		}
	})

	t.Run("second response is already resolved", func(t *testing.T) {
		resp := holdee.POST(t, "/api/v1/holds/id/"+holdID+"/respond", map[string]any{"decision": "declined"})
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409, got %d: %s", resp.StatusCode, resp.Body)
		}
	})

	t.Run("calendar shows the range blocked", func(t *testing.T) {
		path := fmt.Sprintf("/api/v1/calendar/guide/%s?from=%s&to=%s",
			holdeeID, start.Format("2006-01-02"), end.Format("2006-01-02"))
		resp := requester.GET(t, path)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 from calendar, got %d", resp.StatusCode)
		}

		var view struct {
			Data []struct {
				Date   string `json:"date"`
				Status string `json:"status"`
			} `json:"data"`
		}
		resp.DecodeJSON(t, &view)
		for _, cell := range view.Data {
			if cell.Status != "blocked" {
				t.Fatalf("expected blocked on %s, got %q", cell.Date, cell.Status)
			}
		}
	})

	t.Run("overlapping hold is rejected", func(t *testing.T) {
		resp := requester.POST(t, "/api/v1/holds", createBody)
		if resp.StatusCode != http.StatusConflict {
			t.Fatalf("expected 409 for overlapping hold, got %d: %s", resp.StatusCode, resp.Body)
		}
	})
}
