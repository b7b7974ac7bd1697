package scout

import (
	"sync"
	"time"
)

// Scheduler owns the periodic flush timer. The dispatcher arms it on the
// first enqueue and disarms it whenever a flush drains the queue, so idle
// timer activity is bounded to zero. Tests inject a manual implementation
// to trigger fires without wall-clock waits.
type Scheduler interface {
	// Arm starts firing fn every interval. No-op if already armed.
	Arm(interval time.Duration, fn func())
	// Disarm stops the timer. No fires occur after Disarm returns
	// (a fire already in flight may still complete). No-op if not armed.
	Disarm()
}

// TickerScheduler is the production Scheduler backed by time.Ticker.
type TickerScheduler struct {
	mu     sync.Mutex
	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
}

// Ensure TickerScheduler implements Scheduler interface
var _ Scheduler = (*TickerScheduler)(nil)

// NewTickerScheduler creates a new TickerScheduler instance.
func NewTickerScheduler() *TickerScheduler {
	return &TickerScheduler{}
}

func (s *TickerScheduler) Arm(interval time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		return
	}
	s.ticker = time.NewTicker(interval)
	s.stop = make(chan struct{})
	ticker, stop := s.ticker, s.stop
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case <-ticker.C:
				fn()
			case <-stop:
				return
			}
		}
	}()
}

func (s *TickerScheduler) Disarm() {
	s.mu.Lock()
	if s.ticker == nil {
		s.mu.Unlock()
		return
	}
	s.ticker.Stop()
	close(s.stop)
	s.ticker = nil
	s.stop = nil
	s.mu.Unlock()
}
