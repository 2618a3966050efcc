package event

import (
	"sync"
	"sync/atomic"
)

// Handler receives events as they are published.
// Handlers run synchronously on the publisher's goroutine and must not
// block for long.
type Handler func(Event)

// Subscription represents an active subscription on a Trail.
type Subscription struct {
	trail *Trail
	id    int64
}

// Unsubscribe removes the subscription. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.trail.mu.Lock()
	defer s.trail.mu.Unlock()
	delete(s.trail.handlers, s.id)
}

// Trail is an append-only record of job events with live subscriptions.
// Safe for concurrent use.
type Trail struct {
	mu       sync.RWMutex
	byJob    map[string][]Event
	handlers map[int64]Handler
	nextID   atomic.Int64
}

// NewTrail creates an empty event trail.
func NewTrail() *Trail {
	return &Trail{
		byJob:    make(map[string][]Event),
		handlers: make(map[int64]Handler),
	}
}

// Publish appends an event to the trail and delivers it to all
// subscribers.
func (t *Trail) Publish(evt Event) {
	t.mu.Lock()
	t.byJob[evt.JobID] = append(t.byJob[evt.JobID], evt)
	handlers := make([]Handler, 0, len(t.handlers))
	for _, h := range t.handlers {
		handlers = append(handlers, h)
	}
	t.mu.Unlock()

	for _, h := range handlers {
		h(evt)
	}
}

// Subscribe registers a handler for all published events.
func (t *Trail) Subscribe(h Handler) *Subscription {
	id := t.nextID.Add(1)
	t.mu.Lock()
	t.handlers[id] = h
	t.mu.Unlock()
	return &Subscription{trail: t, id: id}
}

// Events returns a copy of all events recorded for a job, in publish
// order. Returns nil if the job has no events.
func (t *Trail) Events(jobID string) []Event {
	t.mu.RLock()
	defer t.mu.RUnlock()

	evts := t.byJob[jobID]
	if len(evts) == 0 {
		return nil
	}
	out := make([]Event, len(evts))
	copy(out, evts)
	return out
}

// Jobs returns the IDs of all jobs with recorded events.
func (t *Trail) Jobs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	jobs := make([]string, 0, len(t.byJob))
	for id := range t.byJob {
		jobs = append(jobs, id)
	}
	return jobs
}

// DropJob removes all events recorded for a job.
func (t *Trail) DropJob(jobID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.byJob, jobID)
}
