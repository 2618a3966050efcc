// Package event records the progress of pipeline jobs.
//
// The runner publishes an event for every significant transition
// (job started, stage completed, fan-out dispatched, job finished).
// Consumers either subscribe for live delivery or read the trail
// after the fact. The trail is append-only; events are never mutated
// or removed while the job is retained.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the pipeline runner.
const (
	TypeJobStarted   = "job.started"
	TypeJobCompleted = "job.completed"
	TypeJobFailed    = "job.failed"
	TypeJobCancelled = "job.cancelled"
	TypeStageStarted = "stage.started"
	TypeStageDone    = "stage.done"
	TypeStageFailed  = "stage.failed"
	TypeFanOut       = "fanout.dispatched"
	TypeCheckpoint   = "checkpoint.saved"
	TypeRepairCycle  = "repair.cycle"
)

// Event is a single progress record for a job.
type Event struct {
	// ID uniquely identifies this event.
	ID string `json:"id"`

	// Type is one of the Type constants.
	Type string `json:"type"`

	// JobID identifies the pipeline job this event belongs to.
	JobID string `json:"job_id"`

	// Node is the graph node the event refers to, if any.
	Node string `json:"node,omitempty"`

	// Timestamp is when the event was recorded (UTC).
	Timestamp time.Time `json:"timestamp"`

	// Message is a human-readable description.
	Message string `json:"message,omitempty"`

	// Fields carries event-specific values (branch counts, durations,
	// error strings). Values must be JSON-serializable.
	Fields map[string]any `json:"fields,omitempty"`
}

// New creates an event with a generated ID and current timestamp.
func New(eventType, jobID string) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		JobID:     jobID,
		Timestamp: time.Now().UTC(),
	}
}

// WithNode sets the node the event refers to.
func (e Event) WithNode(node string) Event {
	e.Node = node
	return e
}

// WithMessage sets the human-readable description.
func (e Event) WithMessage(msg string) Event {
	e.Message = msg
	return e
}

// WithField adds an event-specific value.
func (e Event) WithField(key string, value any) Event {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}
