package scout

import (
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/scoutlabs/scout-go/adapters"
)

// defaultCookiePrefix namespaces every cookie the tracker writes.
const defaultCookiePrefix = "_scout_"

// ErrNotStarted is returned by operations that need a running page view.
var ErrNotStarted = errors.New("scout: tracker not started")

// Tracker is the top-level telemetry agent for one page view. It resolves
// the runtime configuration and both identities, queues the view-start
// event, flushes it immediately, subscribes to performance signals and
// submits the final envelope on Unload.
type Tracker struct {
	config Config
	logger adapters.LoggerAdapter

	ctx        RuntimeContext
	identity   *IdentityManager
	dispatcher *Dispatcher
	collector  *PerformanceCollector
	reporter   *ErrorReporter

	browser Identity
	session Identity

	mu       sync.Mutex
	started  bool
	unloaded bool
}

// New creates a new Tracker.
func New(config Config) (*Tracker, error) {
	// Validate required fields
	if config.TrackingEndpoint == "" {
		return nil, errors.New("TrackingEndpoint is required")
	}
	if config.ErrorEndpoint == "" {
		return nil, errors.New("ErrorEndpoint is required")
	}

	// Set defaults
	if config.CookiePrefix == "" {
		config.CookiePrefix = defaultCookiePrefix
	}
	if config.FlushInterval == 0 {
		config.FlushInterval = 30 * time.Second
	}
	if config.BrowserWindow == 0 {
		config.BrowserWindow = 30 * 24 * time.Hour
	}
	if config.SessionWindow == 0 {
		config.SessionWindow = time.Hour
	}
	if config.IDBits == 0 {
		config.IDBits = 34
	}
	if config.Adapters.Beacon == nil {
		config.Adapters.Beacon = adapters.NewNetHTTPBeaconAdapter()
	}
	if config.Scheduler == nil {
		config.Scheduler = NewTickerScheduler()
	}

	tracker := &Tracker{config: config}
	if config.Adapters.Logger != nil {
		tracker.logger = config.Adapters.Logger
	} else {
		tracker.logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	return tracker, nil
}

// Start runs the page-load sequence: detect runtime configuration, resolve
// identities, queue the view-start event, flush it immediately so the
// first beacon is not held for the batch interval, then start performance
// collection. Identity resolution failure aborts the page view (nothing is
// collected); performance collection failure only disables that feature.
func (t *Tracker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil
	}

	t.ctx = Detect(t.config.Adapters.Environment, t.config.Adapters.Cookies, t.config.CookiePrefix, t.config.Now)
	t.reporter = NewErrorReporter(t.config.ErrorEndpoint, t.config.Adapters.Beacon, t.logger)
	t.identity = NewIdentityManager(
		&t.ctx,
		t.config.Adapters.Cookies,
		t.logger,
		t.reporter.Report,
		t.config.CookiePrefix,
		t.config.IDBits,
		t.config.BrowserWindow,
		t.config.SessionWindow,
	)

	browser, err := t.identity.Resolve(BrowserIdentity)
	if err != nil {
		return err
	}
	session, err := t.identity.Resolve(SessionIdentity)
	if err != nil {
		return err
	}
	t.browser = browser
	t.session = session

	t.dispatcher = NewDispatcher(
		DispatcherConfig{Endpoint: t.config.TrackingEndpoint, FlushInterval: t.config.FlushInterval},
		t.config.Adapters.Beacon,
		t.config.Scheduler,
		t.logger,
		browser,
		session,
		t.ctx.Clock(),
	)
	t.started = true

	t.dispatcher.Enqueue(QueuedEvent{
		Type:             EventViewStart,
		TS:               t.ctx.Clock(),
		BrowserFirstSeen: browser.FirstSeen,
		SessionFirstSeen: session.FirstSeen,
		Title:            t.config.PageTitle,
		URL:              ScrubURL(t.config.PageURL),
	})
	t.dispatcher.Flush()

	t.collector = NewPerformanceCollector(
		&t.ctx,
		t.config.Adapters.Performance,
		t.dispatcher,
		t.logger,
		[]string{t.config.TrackingEndpoint, t.config.ErrorEndpoint},
	)
	if err := t.collector.Start(); err != nil {
		// Collection is independent of dispatch; keep going without it.
		t.reporter.Report(fmt.Errorf("scout: performance collection unavailable: %w", err))
	}

	t.logger.Info("tracker started")
	return nil
}

// TrackPerformance lets the embedder feed a performance record directly,
// bypassing the platform source. The record passes through the same
// normalization and endpoint filter as subscribed records.
func (t *Tracker) TrackPerformance(record PerformanceRecord) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || t.unloaded {
		return ErrNotStarted
	}
	t.collector.observe(record)
	return nil
}

// Flush submits whatever is queued right now.
func (t *Tracker) Flush() {
	t.mu.Lock()
	started := t.started
	t.mu.Unlock()

	if !started {
		t.logger.Warn("Flush called before Start")
		return
	}
	t.dispatcher.Flush()
}

// Unload mirrors the page-unload signal: it queues the view-end event,
// forces the final flush and stops the timer. Idempotent; nothing is
// submitted after the first call returns.
func (t *Tracker) Unload() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started || t.unloaded {
		return
	}
	t.unloaded = true

	t.dispatcher.Enqueue(QueuedEvent{Type: EventViewEnd, TS: t.ctx.Clock()})
	t.dispatcher.Close()
	t.logger.Info("tracker unloaded")
}

// Context returns the runtime configuration resolved at Start.
func (t *Tracker) Context() RuntimeContext {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.ctx
}

// BrowserIdentity returns the resolved browser identity.
func (t *Tracker) BrowserIdentity() Identity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.browser
}

// SessionIdentity returns the resolved session identity.
func (t *Tracker) SessionIdentity() Identity {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Report exposes the error side-channel to embedders.
func (t *Tracker) Report(err error) {
	t.mu.Lock()
	reporter := t.reporter
	t.mu.Unlock()

	if reporter == nil {
		t.logger.Error("%v", err)
		return
	}
	reporter.Report(err)
}

// ScrubURL reduces a page URL to scheme, host and path. Query strings and
// fragments never leave the page.
func ScrubURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u.User = nil
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
