package deckflow

import (
	"log/slog"

	"github.com/randalmurphal/deckflow/pkg/deckflow/checkpoint"
	"github.com/randalmurphal/deckflow/pkg/deckflow/observability"
)

// FanOutConfig configures fan-out branch execution.
// All fields have sensible defaults (zero values are valid).
type FanOutConfig struct {
	// MaxConcurrency limits the number of branches executing simultaneously.
	// 0 = unlimited (all branches start immediately).
	// Use this to prevent resource exhaustion with many branches.
	MaxConcurrency int

	// FailFast cancels remaining branches when any branch fails.
	// false = wait for all branches to complete (default).
	FailFast bool
}

// DefaultFanOutConfig returns the default configuration:
// unlimited concurrency, wait for all branches.
func DefaultFanOutConfig() FanOutConfig {
	return FanOutConfig{}
}

// runConfig holds configuration for graph execution.
type runConfig struct {
	maxIterations int

	// Checkpointing
	checkpointStore        checkpoint.Store
	jobID                  string
	sequence               int
	checkpointFailureFatal bool

	// Observability
	logger         *slog.Logger
	metrics        observability.MetricsRecorder
	spans          observability.SpanManager
	tracingEnabled bool
}

// defaultRunConfig returns the default execution configuration.
func defaultRunConfig() runConfig {
	return runConfig{
		maxIterations: 1000,
		metrics:       observability.NoopMetrics{},
		spans:         observability.NoopSpanManager{},
	}
}

// RunOption configures execution behavior.
type RunOption func(*runConfig)

// WithMaxIterations sets the maximum number of node executions.
// Default: 1000
//
// This prevents infinite loops from hanging forever. If a graph
// exceeds this limit, Run returns ErrMaxIterations.
//
// Example:
//
//	result, err := compiled.Run(ctx, state, deckflow.WithMaxIterations(100))
func WithMaxIterations(n int) RunOption {
	return func(c *runConfig) {
		if n > 0 {
			c.maxIterations = n
		}
	}
}

// WithCheckpointStore enables checkpointing to the given store.
// A checkpoint is persisted after every node execution so the run can be
// resumed after a crash. Requires WithJobID.
func WithCheckpointStore(store checkpoint.Store) RunOption {
	return func(c *runConfig) {
		c.checkpointStore = store
	}
}

// WithJobID sets the job identifier used to namespace checkpoints.
func WithJobID(id string) RunOption {
	return func(c *runConfig) {
		c.jobID = id
	}
}

// WithCheckpointFailureFatal makes checkpoint save failures abort the run.
// By default checkpoint failures are logged and execution continues.
func WithCheckpointFailureFatal() RunOption {
	return func(c *runConfig) {
		c.checkpointFailureFatal = true
	}
}

// WithRunLogger sets the logger used for run-level observability.
func WithRunLogger(logger *slog.Logger) RunOption {
	return func(c *runConfig) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder for the run.
func WithMetrics(m observability.MetricsRecorder) RunOption {
	return func(c *runConfig) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracing enables OTel span creation using the given span manager.
func WithTracing(spans observability.SpanManager) RunOption {
	return func(c *runConfig) {
		if spans != nil {
			c.spans = spans
			c.tracingEnabled = true
		}
	}
}

// resumeConfig holds configuration for resume operations.
type resumeConfig[S any] struct {
	replayNode    bool
	stateOverride func(S) S
	validateState func(S) error
}

// ResumeOption configures resume behavior.
type ResumeOption[S any] func(*resumeConfig[S])

// WithReplayNode re-executes the checkpointed node rather than continuing
// from its successor. Useful when the node's effects were lost in the crash.
func WithReplayNode[S any]() ResumeOption[S] {
	return func(c *resumeConfig[S]) {
		c.replayNode = true
	}
}

// WithStateOverride transforms the deserialized state before resuming.
func WithStateOverride[S any](fn func(S) S) ResumeOption[S] {
	return func(c *resumeConfig[S]) {
		c.stateOverride = fn
	}
}

// WithStateValidation validates the deserialized state before resuming.
func WithStateValidation[S any](fn func(S) error) ResumeOption[S] {
	return func(c *resumeConfig[S]) {
		c.validateState = fn
	}
}
