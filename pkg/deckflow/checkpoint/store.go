// Package checkpoint provides persistent checkpoint storage for crash recovery.
package checkpoint

import (
	"errors"
	"time"
)

// Store persists checkpoints for crash recovery.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save stores a checkpoint for a job at a specific node.
	// Overwrites if checkpoint for (jobID, nodeID) already exists.
	Save(jobID, nodeID string, data []byte) error

	// Load retrieves a checkpoint.
	// Returns ErrNotFound if checkpoint doesn't exist.
	Load(jobID, nodeID string) ([]byte, error)

	// List returns all checkpoints for a job, ordered by sequence.
	// Returns empty slice (not error) if job has no checkpoints.
	List(jobID string) ([]Info, error)

	// Delete removes a specific checkpoint.
	// Returns nil if checkpoint doesn't exist.
	Delete(jobID, nodeID string) error

	// DeleteJob removes all checkpoints for a job.
	// Returns nil if job has no checkpoints.
	DeleteJob(jobID string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Info provides metadata without loading full state.
type Info struct {
	JobID     string
	NodeID    string
	Sequence  int
	Timestamp time.Time
	Size      int64
}

// Sentinel errors for checkpoint operations.
var (
	// ErrNotFound indicates a checkpoint doesn't exist.
	ErrNotFound = errors.New("checkpoint not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("checkpoint store closed")
)
