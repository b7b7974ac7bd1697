package scout

import (
	"encoding/json"
	"sync"

	"github.com/scoutlabs/scout-go/adapters"
)

// Dispatcher batches queued events and submits them to the collector as a
// single envelope per flush. Delivery is at-most-once: there is no
// acknowledgment path and no retry, so a dropped envelope loses its events
// rather than holding page state hostage to network reliability.
type Dispatcher struct {
	config    DispatcherConfig
	queue     *Queue
	beacon    adapters.BeaconAdapter
	scheduler Scheduler
	logger    adapters.LoggerAdapter

	browser Identity
	session Identity
	clock   int64

	flushMutex *Mutex
	timerMu    sync.Mutex
	timerArmed bool
	closed     bool
}

// NewDispatcher creates a Dispatcher bound to the page view's resolved
// identities and fixed capture clock.
func NewDispatcher(config DispatcherConfig, beacon adapters.BeaconAdapter, scheduler Scheduler, logger adapters.LoggerAdapter, browser, session Identity, clock int64) *Dispatcher {
	if logger == nil {
		logger = adapters.NewPrintLoggerAdapter(adapters.LogLevelWarn)
	}
	return &Dispatcher{
		config:     config,
		queue:      NewQueue(),
		beacon:     beacon,
		scheduler:  scheduler,
		logger:     logger,
		browser:    browser,
		session:    session,
		clock:      clock,
		flushMutex: NewMutex(),
	}
}

// Enqueue appends an event and arms the flush timer if it is not already
// running. The append and the arm happen under the same lock as the flush's
// drain-and-disarm, so an event landing during a concurrent flush either
// joins the drained batch or re-arms the timer; it is never stranded in the
// queue with no timer running. Events enqueued after Close are dropped.
func (d *Dispatcher) Enqueue(event QueuedEvent) {
	d.timerMu.Lock()
	defer d.timerMu.Unlock()
	if d.closed {
		d.logger.Warn("event dropped: dispatcher closed")
		return
	}
	d.queue.Enqueue(event)
	if !d.timerArmed {
		d.scheduler.Arm(d.config.FlushInterval, d.Flush)
		d.timerArmed = true
	}
}

func (d *Dispatcher) disarmTimer() {
	d.timerMu.Lock()
	defer d.timerMu.Unlock()
	if !d.timerArmed {
		return
	}
	d.scheduler.Disarm()
	d.timerArmed = false
}

// Flush drains the whole queue into one envelope and hands it to the
// beacon. No-op on an empty queue. The drain and the timer disarm form one
// atomic step, mutually exclusive with Enqueue's append-and-arm, so a timer
// firing mid-flush never observes a half-cleared queue and a concurrent
// enqueue cannot slip between the drain and the disarm.
func (d *Dispatcher) Flush() {
	d.flushMutex.RunAtomic(func() {
		d.timerMu.Lock()
		if d.queue.IsEmpty() {
			d.timerMu.Unlock()
			return
		}
		events := d.queue.DrainAll()
		if d.timerArmed {
			d.scheduler.Disarm()
			d.timerArmed = false
		}
		d.timerMu.Unlock()

		envelope := Envelope{
			BrowserID:        d.browser.ID,
			SessionID:        d.session.ID,
			SessionViewCount: d.session.ViewCount,
			Events:           events,
			TS:               d.clock,
		}
		body, err := json.Marshal(envelope)
		if err != nil {
			d.logger.Error("failed to serialize envelope: %v", err)
			return
		}

		d.logger.Debug("submitting envelope with %d events", len(events))
		if err := d.beacon.Send(d.config.Endpoint, body); err != nil {
			// At-most-once: the events are gone either way.
			d.logger.Warn("envelope submission failed: %v", err)
		}
	})
}

// Close performs the forced unload flush and disarms the timer for good.
// Safe to call more than once; nothing is submitted after it returns.
func (d *Dispatcher) Close() {
	d.Flush()
	d.disarmTimer()
	d.timerMu.Lock()
	d.closed = true
	d.timerMu.Unlock()
}

// Len reports the number of events currently queued.
func (d *Dispatcher) Len() int {
	return d.queue.Len()
}
