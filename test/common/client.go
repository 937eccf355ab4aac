package common

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"
)

// Client is a thin HTTP wrapper for integration tests that talks to a running
// service and fails the test on transport errors.
type Client struct {
	baseURL string
	http    *http.Client
	headers map[string]string
}

type Response struct {
	StatusCode int
	Body       []byte
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		headers: map[string]string{},
	}
}

// WithActor returns a client copy that sends the given actor identity headers
// on every request.
func (c *Client) WithActor(actorID, actorRole string) *Client {
	headers := map[string]string{
		"X-Actor-Id":   actorID,
		"X-Actor-Role": actorRole,
	}
	for k, v := range c.headers {
		headers[k] = v
	}
	return &Client{baseURL: c.baseURL, http: c.http, headers: headers}
}

func (c *Client) GET(t *testing.T, path string) *Response {
	t.Helper()
	return c.do(t, http.MethodGet, path, nil)
}

func (c *Client) POST(t *testing.T, path string, body any) *Response {
	t.Helper()
	return c.do(t, http.MethodPost, path, body)
}

func (c *Client) PATCH(t *testing.T, path string, body any) *Response {
	t.Helper()
	return c.do(t, http.MethodPatch, path, body)
}

func (c *Client) DELETE(t *testing.T, path string) *Response {
	t.Helper()
	return c.do(t, http.MethodDelete, path, nil)
}

func (c *Client) do(t *testing.T, method, path string, body any) *Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}
}

func (r *Response) DecodeJSON(t *testing.T, v any) {
	t.Helper()
	if err := json.Unmarshal(r.Body, v); err != nil {
		t.Fatalf("failed to decode response: %v\nbody: %s", err, r.Body)
	}
}
