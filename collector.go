package scout

import (
	"strings"

	"github.com/scoutlabs/scout-go/adapters"
)

// PerformanceCollector subscribes to the platform's performance-signal
// stream and enqueues each record as a performance-entry event. Records
// whose subject is one of the tracker's own endpoints are filtered out, so
// monitoring the monitor cannot generate recurring traffic.
type PerformanceCollector struct {
	ctx        *RuntimeContext
	source     adapters.PerformanceAdapter
	dispatcher *Dispatcher
	logger     adapters.LoggerAdapter
	excluded   []string
}

// NewPerformanceCollector creates a new PerformanceCollector. excluded
// lists endpoint URLs whose performance records must never be enqueued
// (the tracking and error endpoints).
func NewPerformanceCollector(ctx *RuntimeContext, source adapters.PerformanceAdapter, dispatcher *Dispatcher, logger adapters.LoggerAdapter, excluded []string) *PerformanceCollector {
	if logger == nil {
		logger = adapters.NewNoOpLoggerAdapter()
	}
	return &PerformanceCollector{
		ctx:        ctx,
		source:     source,
		dispatcher: dispatcher,
		logger:     logger,
		excluded:   excluded,
	}
}

// Start drains the records the platform buffered before subscription, then
// subscribes for live records. A nil source disables the feature silently.
func (c *PerformanceCollector) Start() error {
	if c.source == nil {
		c.logger.Debug("performance signals unavailable, collection disabled")
		return nil
	}
	for _, record := range c.source.Buffered() {
		c.observe(record)
	}
	return c.source.Subscribe(c.observe)
}

// observe normalizes one record and enqueues it. It runs inside platform
// callbacks, so a panic stops at local logging.
func (c *PerformanceCollector) observe(record adapters.PerformanceRecord) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("performance record dropped: %v", r)
		}
	}()

	if c.excludedSubject(record.Name) {
		c.logger.Debug("skipping performance record for tracking endpoint")
		return
	}

	entry := record
	c.dispatcher.Enqueue(QueuedEvent{
		Type:      EventPerformanceEntry,
		TS:        c.ctx.Clock(),
		PerfEntry: &entry,
	})
}

// excludedSubject matches the record's subject URL against the tracker's
// own endpoints. Prefix match, so beacon URLs carrying query strings are
// still caught.
func (c *PerformanceCollector) excludedSubject(subject string) bool {
	if subject == "" {
		return false
	}
	for _, endpoint := range c.excluded {
		if endpoint != "" && strings.HasPrefix(subject, endpoint) {
			return true
		}
	}
	return false
}
