package scout

import (
	"testing"
	"time"

	"github.com/scoutlabs/scout-go/adapters"
)

const (
	testTrackingEndpoint = "http://collect.test/api/v1/analytics"
	testErrorEndpoint    = "http://collect.test/api/v1/errors"
)

func newTestCollector(source adapters.PerformanceAdapter, dispatcher *Dispatcher) *PerformanceCollector {
	ctx := &RuntimeContext{CapturedAt: time.UnixMilli(1700000000000)}
	return NewPerformanceCollector(ctx, source, dispatcher, adapters.NewNoOpLoggerAdapter(), []string{testTrackingEndpoint, testErrorEndpoint})
}

func TestPerformanceCollector_DrainsBufferedRecords(t *testing.T) {
	source := adapters.NewBufferedPerformanceSource()
	source.Emit(adapters.PerformanceRecord{Name: "https://example.com/a.css", EntryType: "resource", Duration: 10})
	source.Emit(adapters.PerformanceRecord{Name: "https://example.com/b.js", EntryType: "resource", Duration: 20})

	dispatcher := newTestDispatcher(&mockBeacon{}, &manualScheduler{})
	collector := newTestCollector(source, dispatcher)

	if err := collector.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	events := dispatcher.queue.ToSlice()
	if len(events) != 2 {
		t.Fatalf("expected 2 buffered records enqueued, got %d", len(events))
	}
	if events[0].PerfEntry.Name != "https://example.com/a.css" {
		t.Fatal("buffered records must be enqueued in observation order")
	}
}

func TestPerformanceCollector_EnqueuesLiveRecords(t *testing.T) {
	source := adapters.NewBufferedPerformanceSource()
	dispatcher := newTestDispatcher(&mockBeacon{}, &manualScheduler{})
	collector := newTestCollector(source, dispatcher)

	if err := collector.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	source.Emit(adapters.PerformanceRecord{Name: "first-contentful-paint", EntryType: "paint", StartTime: 120})

	events := dispatcher.queue.ToSlice()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	event := events[0]
	if event.Type != EventPerformanceEntry {
		t.Fatalf("expected performance-entry event, got %q", event.Type)
	}
	if event.TS != 1700000000000 {
		t.Fatalf("event must carry the shared clock, got %d", event.TS)
	}
	if event.PerfEntry == nil || event.PerfEntry.EntryType != "paint" {
		t.Fatalf("record not carried through: %+v", event.PerfEntry)
	}
}

func TestPerformanceCollector_FiltersOwnEndpoints(t *testing.T) {
	source := adapters.NewBufferedPerformanceSource()
	dispatcher := newTestDispatcher(&mockBeacon{}, &manualScheduler{})
	collector := newTestCollector(source, dispatcher)

	if err := collector.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Records about the monitor itself must never feed back into the queue.
	source.Emit(adapters.PerformanceRecord{Name: testTrackingEndpoint, EntryType: "resource"})
	source.Emit(adapters.PerformanceRecord{Name: testErrorEndpoint, EntryType: "resource"})
	source.Emit(adapters.PerformanceRecord{Name: testTrackingEndpoint + "?cb=123", EntryType: "resource"})

	if n := dispatcher.Len(); n != 0 {
		t.Fatalf("expected all self-referential records filtered, got %d queued", n)
	}

	source.Emit(adapters.PerformanceRecord{Name: "https://example.com/app.js", EntryType: "resource"})
	if n := dispatcher.Len(); n != 1 {
		t.Fatalf("expected the ordinary record to pass, got %d queued", n)
	}
}

func TestPerformanceCollector_NilSourceDisablesFeature(t *testing.T) {
	dispatcher := newTestDispatcher(&mockBeacon{}, &manualScheduler{})
	collector := newTestCollector(nil, dispatcher)

	if err := collector.Start(); err != nil {
		t.Fatalf("a missing performance source must disable the feature silently, got %v", err)
	}
}
