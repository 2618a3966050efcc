package deckflow

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/randalmurphal/deckflow/pkg/deckflow/checkpoint"
)

// Context provides execution context to stages.
// It extends context.Context with deckflow-specific services and metadata.
//
// Context is immutable after creation. The executor creates derived contexts
// for each node with updated NodeID and enriched logger.
type Context interface {
	context.Context

	// Services

	// Logger returns the configured logger, enriched with job and node
	// context. Never returns nil - defaults to slog.Default() if not
	// configured.
	Logger() *slog.Logger

	// Checkpointer returns the checkpoint store, or nil if not configured.
	// Stages should check for nil before using.
	Checkpointer() checkpoint.Store

	// Metadata

	// JobID returns the unique identifier for this pipeline job.
	// Auto-generated if not configured.
	JobID() string

	// NodeID returns the current node being executed.
	// Empty string before execution starts.
	NodeID() string

	// Attempt returns the retry attempt number (1 = first attempt).
	Attempt() int
}

// executionContext is the concrete Context used by the executor.
type executionContext struct {
	context.Context

	logger       *slog.Logger
	checkpointer checkpoint.Store
	jobID        string
	nodeID       string
	attempt      int
}

// Logger returns the configured logger.
func (c *executionContext) Logger() *slog.Logger {
	return c.logger
}

// Checkpointer returns the checkpoint store.
func (c *executionContext) Checkpointer() checkpoint.Store {
	return c.checkpointer
}

// JobID returns the job identifier.
func (c *executionContext) JobID() string {
	return c.jobID
}

// NodeID returns the current node identifier.
func (c *executionContext) NodeID() string {
	return c.nodeID
}

// Attempt returns the retry attempt number.
func (c *executionContext) Attempt() int {
	return c.attempt
}

// ContextOption configures a Context.
type ContextOption func(*executionContext)

// WithLogger sets the logger for the context.
// The logger will be enriched with job_id, node_id, and attempt during execution.
func WithLogger(logger *slog.Logger) ContextOption {
	return func(c *executionContext) {
		c.logger = logger
	}
}

// WithCheckpointer sets the checkpoint store for the context.
func WithCheckpointer(store checkpoint.Store) ContextOption {
	return func(c *executionContext) {
		c.checkpointer = store
	}
}

// WithContextJobID sets the job identifier for the context.
// If not set, a UUID will be auto-generated.
// This is used for logging and tracing. For checkpointing, use
// WithJobID() as a RunOption with Run().
func WithContextJobID(id string) ContextOption {
	return func(c *executionContext) {
		c.jobID = id
	}
}

// NewContext creates an execution context from a standard context.
// The returned Context wraps the provided context.Context and adds
// deckflow-specific services and metadata.
//
// Example:
//
//	ctx := deckflow.NewContext(context.Background(),
//	    deckflow.WithLogger(myLogger),
//	    deckflow.WithContextJobID("job-123"))
func NewContext(ctx context.Context, opts ...ContextOption) Context {
	ec := &executionContext{
		Context: ctx,
		logger:  slog.Default(),
		jobID:   uuid.New().String(),
		attempt: 1,
	}

	for _, opt := range opts {
		opt(ec)
	}

	return ec
}

// withNodeID returns a new context with the given node ID set.
// Used internally by the executor to enrich the context per-node.
func (c *executionContext) withNodeID(nodeID string) *executionContext {
	return &executionContext{
		Context:      c.Context,
		logger:       c.logger.With("job_id", c.jobID, "node_id", nodeID, "attempt", c.attempt),
		checkpointer: c.checkpointer,
		jobID:        c.jobID,
		nodeID:       nodeID,
		attempt:      c.attempt,
	}
}
