package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"guidecal/pkg/model"
)

type AvailabilityClient struct {
	httpClient *HttpClient
}

func NewAvailabilityClient(baseURL string) *AvailabilityClient {
	return &AvailabilityClient{
		httpClient: NewHttpClient(baseURL),
	}
}

func (c *AvailabilityClient) ListSlots(ctx context.Context, ownerType, ownerID, from, to string) (*Response, error) {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	path := fmt.Sprintf("/api/v1/availability/owner/%s/%s", url.PathEscape(ownerType), url.PathEscape(ownerID))
	if encoded := q.Encode(); encoded != "" {
		path += "?" + encoded
	}
	return c.httpClient.GET(ctx, path)
}

func (c *AvailabilityClient) CreateSlot(ctx context.Context, ownerType, ownerID, actorID, actorRole string, body any) (*Response, error) {
	path := fmt.Sprintf("/api/v1/availability/owner/%s/%s", url.PathEscape(ownerType), url.PathEscape(ownerID))
	return c.httpClient.POSTWithHeaders(ctx, path, body, actorHeaders(actorID, actorRole))
}

func (c *AvailabilityClient) UpdateSlotStatus(ctx context.Context, slotID string, body any) (*Response, error) {
	return c.httpClient.PATCH(ctx, "/api/v1/availability/slot/"+url.PathEscape(slotID), body)
}

func (c *AvailabilityClient) DeleteSlot(ctx context.Context, slotID string) (*Response, error) {
	return c.httpClient.DELETE(ctx, "/api/v1/availability/slot/"+url.PathEscape(slotID))
}

func (c *AvailabilityClient) DecodeSlot(resp *Response) (*model.AvailabilitySlot, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode slot wrapper: %w", err)
	}

	var slot model.AvailabilitySlot
	if err := json.Unmarshal(wrapper.Data, &slot); err != nil {
		return nil, fmt.Errorf("could not decode slot json: %w", err)
	}
	return &slot, nil
}

func (c *AvailabilityClient) DecodeSlots(resp *Response) ([]*model.AvailabilitySlot, error) {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return nil, fmt.Errorf("could not decode slots wrapper: %w", err)
	}

	var slots []*model.AvailabilitySlot
	if len(wrapper.Data) > 0 {
		if err := json.Unmarshal(wrapper.Data, &slots); err != nil {
			return nil, fmt.Errorf("could not decode slot list: %w", err)
		}
	}
	return slots, nil
}
