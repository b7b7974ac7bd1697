package scout

import (
	"testing"
	"time"

	"github.com/scoutlabs/scout-go/adapters"
)

// Benchmark the cookie codec
func BenchmarkEncodeCookieValue(b *testing.B) {
	payload := `{"id":"8589934592","vc":12,"fs":1700000000000}`
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeCookieValue(payload)
	}
}

func BenchmarkDecodeCookieValue(b *testing.B) {
	token := EncodeCookieValue(`{"id":"8589934592","vc":12,"fs":1700000000000}`)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeCookieValue(token)
	}
}

// Benchmark identifier generation
func BenchmarkRandomIdentifier(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = randomIdentifier(34)
	}
}

// Benchmark the enqueue path
func BenchmarkDispatcherEnqueue(b *testing.B) {
	dispatcher := NewDispatcher(
		DispatcherConfig{Endpoint: "http://collect.test", FlushInterval: time.Hour},
		adapters.NewNoOpBeaconAdapter(),
		&manualScheduler{},
		adapters.NewNoOpLoggerAdapter(),
		Identity{ID: "1"},
		Identity{ID: "2", ViewCount: 1},
		1700000000000,
	)
	event := QueuedEvent{Type: EventPerformanceEntry, TS: 1700000000000}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dispatcher.Enqueue(event)
		if i%1024 == 0 {
			dispatcher.Flush()
		}
	}
}
