package adapters

// NoOpBeaconAdapter is a beacon adapter that drops every payload.
// Useful when the tracker should run without any network activity.
type NoOpBeaconAdapter struct{}

// NewNoOpBeaconAdapter creates a new NoOpBeaconAdapter instance.
func NewNoOpBeaconAdapter() *NoOpBeaconAdapter {
	return &NoOpBeaconAdapter{}
}

// Send does nothing and always returns nil.
func (n *NoOpBeaconAdapter) Send(endpoint string, body []byte) error {
	return nil
}
