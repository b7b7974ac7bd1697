package adapters

import "time"

// Cookie is a single persisted cookie entry.
type Cookie struct {
	Name    string
	Value   string
	Expires time.Time // zero value means a session-lifetime cookie
	Path    string
	Secure  bool
}

// PerformanceRecord is a platform performance entry normalized to a plain,
// serializable form.
type PerformanceRecord struct {
	Name       string         `json:"name"` // subject URL of the measurement
	EntryType  string         `json:"entryType"`
	StartTime  float64        `json:"startTime"`
	Duration   float64        `json:"duration"`
	Attributes map[string]any `json:"attributes,omitempty"`
}
