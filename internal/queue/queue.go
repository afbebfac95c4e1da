// Package queue provides the FIFO buffer between the event listener
// and the review workers. Capacity is unbounded so the listener never
// blocks on processing pressure; consumers poll with a timeout so they
// can observe the stop signal while idle.
package queue

import (
	"sync"
	"time"

	"reviewer/internal/models"
)

type EventQueue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items []models.Event
}

func New() *EventQueue {
	q := &EventQueue{}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push appends an event. It never blocks and never drops.
func (q *EventQueue) Push(event models.Event) {
	q.mu.Lock()
	q.items = append(q.items, event)
	q.mu.Unlock()
	q.cond.Signal()
}

// Pop removes and returns the oldest event. It blocks until an event
// is available or the timeout elapses; the second return value reports
// whether an event was delivered. With a single consumer delivery is
// strictly FIFO; with several consumers it is first available, first
// served.
func (q *EventQueue) Pop(timeout time.Duration) (models.Event, bool) {
	deadline := time.Now().Add(timeout)

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return models.Event{}, false
		}
		// sync.Cond has no timed wait, so a timer broadcast wakes
		// waiters when the deadline passes and the loop re-checks.
		timer := time.AfterFunc(remaining, q.cond.Broadcast)
		q.cond.Wait()
		timer.Stop()
	}

	event := q.items[0]
	q.items = q.items[1:]
	return event, true
}

// Len returns the current queue depth.
func (q *EventQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
