package adapters

import (
	"bytes"
	"fmt"
	"net/http"
)

// NetHTTPBeaconAdapter is the standard beacon implementation using the
// net/http package. The response status and body are discarded.
type NetHTTPBeaconAdapter struct {
	client *http.Client
}

// Ensure NetHTTPBeaconAdapter implements BeaconAdapter interface
var _ BeaconAdapter = (*NetHTTPBeaconAdapter)(nil)

// NewNetHTTPBeaconAdapter creates a new NetHTTPBeaconAdapter instance.
func NewNetHTTPBeaconAdapter() BeaconAdapter {
	return &NetHTTPBeaconAdapter{
		client: &http.Client{},
	}
}

// Send posts the payload to the endpoint and closes the response unread.
func (h *NetHTTPBeaconAdapter) Send(endpoint string, body []byte) error {
	req, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	// Fire-and-forget: acknowledge nothing, not even the status code.
	resp.Body.Close()
	return nil
}
