package common

import (
	"os"
	"testing"
)

// IntegrationTestSuite wires a test client against a running service. Tests
// skip unless TEST_SERVER_URL points at a deployed instance, so the suite
// never runs accidentally in unit-test CI.
type IntegrationTestSuite struct {
	HTTPClient *Client
	ServerURL  string
}

func NewIntegrationTestSuite(t *testing.T) *IntegrationTestSuite {
	t.Helper()

	serverURL := os.Getenv("TEST_SERVER_URL")
	if serverURL == "" {
		t.Skip("TEST_SERVER_URL not set, skipping integration test")
	}

	return &IntegrationTestSuite{
		HTTPClient: NewClient(serverURL),
		ServerURL:  serverURL,
	}
}
