package scout

import "sync"

// Mutex provides mutual exclusion for the flush critical section
type Mutex struct {
	mu sync.Mutex
}

// NewMutex creates a new mutex
func NewMutex() *Mutex {
	return &Mutex{}
}

// RunAtomic executes a task with exclusive lock, so "swap the queue and
// disarm the timer" happens as one logical step.
func (m *Mutex) RunAtomic(task func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	task()
}
