package adapters

import "sync"

// PerformanceAdapter is the platform's performance-signal stream: a lazy,
// append-only sequence of performance records.
type PerformanceAdapter interface {
	// Buffered returns the records observed before Subscribe was called,
	// in observation order.
	Buffered() []PerformanceRecord

	// Subscribe registers fn to receive every record observed from now
	// on. At most one subscriber is supported.
	Subscribe(fn func(PerformanceRecord)) error
}

// BufferedPerformanceSource is the default PerformanceAdapter. Embedders
// push records through Emit; records emitted before a subscriber is
// registered are buffered and replayed via Buffered.
type BufferedPerformanceSource struct {
	mu     sync.Mutex
	buffer []PerformanceRecord
	fn     func(PerformanceRecord)
}

// Ensure BufferedPerformanceSource implements PerformanceAdapter interface
var _ PerformanceAdapter = (*BufferedPerformanceSource)(nil)

// NewBufferedPerformanceSource creates a new BufferedPerformanceSource instance.
func NewBufferedPerformanceSource() *BufferedPerformanceSource {
	return &BufferedPerformanceSource{}
}

// Emit delivers a record to the subscriber, or buffers it if none is
// registered yet.
func (s *BufferedPerformanceSource) Emit(record PerformanceRecord) {
	s.mu.Lock()
	fn := s.fn
	if fn == nil {
		s.buffer = append(s.buffer, record)
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()
	fn(record)
}

// Buffered returns a copy of the records emitted before subscription.
func (s *BufferedPerformanceSource) Buffered() []PerformanceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PerformanceRecord, len(s.buffer))
	copy(out, s.buffer)
	return out
}

// Subscribe registers the handler for records emitted from now on.
func (s *BufferedPerformanceSource) Subscribe(fn func(PerformanceRecord)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fn = fn
	return nil
}
