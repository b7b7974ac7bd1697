package adapters

// BeaconAdapter is an interface for the fire-and-forget transport.
// Implement this interface to use a custom submission channel.
//
// Submissions are at-most-once: implementations must not retain, retry or
// reorder payloads, and callers never consume a response body. A returned
// error is informational only and never resubmitted.
type BeaconAdapter interface {
	// Send submits one payload to the endpoint.
	//
	// Parameters:
	//   - endpoint: the collector URL
	//   - body: the JSON-encoded payload
	Send(endpoint string, body []byte) error
}
