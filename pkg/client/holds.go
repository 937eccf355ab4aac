package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"guidecal/pkg/model"
)

// HoldsClient is a typed client for the holds service. The sweeper uses it to
// trigger expiry runs; requester- and provider-facing services use it for the
// hold lifecycle.
type HoldsClient struct {
	httpClient *HttpClient
}

func NewHoldsClient(baseURL string) *HoldsClient {
	return &HoldsClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *HoldsClient) Create(ctx context.Context, actorID, actorRole string, body any) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, "/api/v1/holds", body, actorHeaders(actorID, actorRole))
}

func (c *HoldsClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/holds/id/"+url.PathEscape(id))
}

func (c *HoldsClient) ListForHoldee(ctx context.Context, holdeeID, holdeeType string, limit int, offset int64) (*Response, error) {
	q := url.Values{}
	q.Set("holdee_id", holdeeID)
	q.Set("holdee_type", holdeeType)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("offset", fmt.Sprintf("%d", offset))
	return c.httpClient.GET(ctx, "/api/v1/holds?"+q.Encode())
}

func (c *HoldsClient) Respond(ctx context.Context, id, actorID, actorRole string, decision model.HoldDecision) (*Response, error) {
	path := "/api/v1/holds/id/" + url.PathEscape(id) + "/respond"
	return c.httpClient.POSTWithHeaders(ctx, path, decision, actorHeaders(actorID, actorRole))
}

func (c *HoldsClient) Cancel(ctx context.Context, id, actorID, actorRole string) (*Response, error) {
	path := "/api/v1/holds/id/" + url.PathEscape(id) + "/cancel"
	return c.httpClient.POSTWithHeaders(ctx, path, struct{}{}, actorHeaders(actorID, actorRole))
}

// ExpireStale triggers an expiry sweep and returns the newly expired holds.
func (c *HoldsClient) ExpireStale(ctx context.Context) ([]*model.AvailabilityHold, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/holds/expire", struct{}{})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("expire sweep failed: %s", GetErrorMessage(resp))
	}
	return c.DecodeHolds(resp)
}

// ExpireStaleBookingRequests runs the same sweep over the job-keyed booking
// requests.
func (c *HoldsClient) ExpireStaleBookingRequests(ctx context.Context) ([]*model.BookingRequest, error) {
	resp, err := c.httpClient.POST(ctx, "/api/v1/booking-requests/expire", struct{}{})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("booking request expire sweep failed: %s", GetErrorMessage(resp))
	}

	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode booking request wrapper: %w", err)
	}

	var requests []*model.BookingRequest
	if len(wrapper.Data) > 0 {
		if err := json.Unmarshal(wrapper.Data, &requests); err != nil {
			return nil, fmt.Errorf("could not decode booking request list: %w", err)
		}
	}
	return requests, nil
}

func (c *HoldsClient) DecodeHold(resp *Response) (*model.AvailabilityHold, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode hold wrapper: %w", err)
	}

	var hold model.AvailabilityHold
	if err := json.Unmarshal(wrapper.Data, &hold); err != nil {
		return nil, fmt.Errorf("could not decode hold json: %w", err)
	}
	return &hold, nil
}

func (c *HoldsClient) DecodeHolds(resp *Response) ([]*model.AvailabilityHold, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode holds wrapper: %w", err)
	}

	var holds []*model.AvailabilityHold
	if len(wrapper.Data) > 0 {
		if err := json.Unmarshal(wrapper.Data, &holds); err != nil {
			return nil, fmt.Errorf("could not decode hold list: %w", err)
		}
	}
	return holds, nil
}

func actorHeaders(actorID, actorRole string) map[string]string {
	return map[string]string{
		"X-Actor-Id":   actorID,
		"X-Actor-Role": actorRole,
	}
}
