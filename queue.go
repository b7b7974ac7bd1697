package scout

import (
	"container/list"
	"sync"
)

// Queue represents a thread-safe FIFO queue for QueuedEvent items.
type Queue struct {
	mu   sync.Mutex
	list *list.List
}

// NewQueue creates and returns a new empty Queue.
func NewQueue() *Queue {
	return &Queue{list: list.New()}
}

// Enqueue adds a QueuedEvent to the end of the queue.
func (q *Queue) Enqueue(event QueuedEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.list.PushBack(event)
}

// IsEmpty reports whether the queue has no elements.
func (q *Queue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len() == 0
}

// Len returns the number of QueuedEvents currently in the queue.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.list.Len()
}

// DrainAll removes and returns every QueuedEvent in insertion order, under
// a single lock acquisition. The queue is empty afterwards; there is no
// partially drained state.
func (q *Queue) DrainAll() []QueuedEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := make([]QueuedEvent, 0, q.list.Len())
	for e := q.list.Front(); e != nil; e = e.Next() {
		events = append(events, e.Value.(QueuedEvent))
	}
	q.list.Init()
	return events
}

// ToSlice returns all QueuedEvents in the queue as a slice, preserving order.
func (q *Queue) ToSlice() []QueuedEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	events := make([]QueuedEvent, 0, q.list.Len())
	for e := q.list.Front(); e != nil; e = e.Next() {
		events = append(events, e.Value.(QueuedEvent))
	}
	return events
}
