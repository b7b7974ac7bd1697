package scout

import (
	"time"

	"github.com/scoutlabs/scout-go/adapters"
)

// Re-export adapter types for convenience
type (
	Cookie             = adapters.Cookie
	CookieAdapter      = adapters.CookieAdapter
	BeaconAdapter      = adapters.BeaconAdapter
	EnvironmentAdapter = adapters.EnvironmentAdapter
	PerformanceAdapter = adapters.PerformanceAdapter
	PerformanceRecord  = adapters.PerformanceRecord
	LoggerAdapter      = adapters.LoggerAdapter
	LogLevel           = adapters.LogLevel
)

// EventType discriminates the members of the queued-event union.
type EventType string

const (
	EventViewStart        EventType = "view-start"
	EventViewEnd          EventType = "view-end"
	EventPerformanceEntry EventType = "performance-entry"
)

// QueuedEvent is one entry of the ordered event queue. Type selects which
// of the optional fields are meaningful. TS always carries the page view's
// fixed capture time, never a per-event wall-clock read, so queueing delay
// shows up as enqueue order rather than timestamp skew.
type QueuedEvent struct {
	Type             EventType          `json:"type"`
	TS               int64              `json:"ts"`
	BrowserFirstSeen int64              `json:"browserFirstSeen,omitempty"`
	SessionFirstSeen int64              `json:"sessionFirstSeen,omitempty"`
	Title            string             `json:"title,omitempty"`
	URL              string             `json:"url,omitempty"`
	PerfEntry        *PerformanceRecord `json:"perfEntry,omitempty"`
}

// Envelope is the batched payload submitted per beacon.
type Envelope struct {
	BrowserID        string        `json:"browserID"`
	SessionID        string        `json:"sessionID"`
	SessionViewCount int           `json:"sessionViewCount"`
	Events           []QueuedEvent `json:"events"`
	TS               int64         `json:"ts"`
}

// Config configures a Tracker.
//
// Identifiers are uniform random integers of IDBits bits rendered as
// decimal strings. The default of 34 bits keeps the collision odds for
// roughly a thousand concurrent visitors over the browser cookie's
// multi-day window in lottery territory; raise it if traffic assumptions
// change.
type Config struct {
	TrackingEndpoint string
	ErrorEndpoint    string

	PageURL   string
	PageTitle string

	CookiePrefix  string        // default "_scout_"
	FlushInterval time.Duration // default 30s
	BrowserWindow time.Duration // default 30 days, sliding
	SessionWindow time.Duration // default 1 hour, sliding
	IDBits        uint          // default 34

	Scheduler Scheduler

	// Now supplies the capture clock; nil defaults to time.Now. The
	// tracker reads it exactly once, at Start.
	Now func() time.Time

	Adapters struct {
		Environment EnvironmentAdapter
		Cookies     CookieAdapter
		Beacon      BeaconAdapter
		Performance PerformanceAdapter
		Logger      LoggerAdapter
	}
}

// DispatcherConfig configures a Dispatcher independently of a Tracker.
type DispatcherConfig struct {
	Endpoint      string
	FlushInterval time.Duration
}
