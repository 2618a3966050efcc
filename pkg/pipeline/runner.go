package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/randalmurphal/deckflow/pkg/deckflow"
	"github.com/randalmurphal/deckflow/pkg/deckflow/checkpoint"
	"github.com/randalmurphal/deckflow/pkg/deckflow/event"
)

// Runner executes pipeline jobs: it ties a compiled graph to a
// checkpoint store and event trail, and tracks per-job cancellation.
// Safe for concurrent use; each job gets its own cancellable context.
type Runner struct {
	graph  *deckflow.CompiledGraph[State]
	store  checkpoint.Store
	trail  *event.Trail
	logger *slog.Logger

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithStore enables checkpointing through the given store.
func WithStore(store checkpoint.Store) RunnerOption {
	return func(r *Runner) { r.store = store }
}

// WithTrail sets the event trail jobs publish progress to.
func WithTrail(trail *event.Trail) RunnerOption {
	return func(r *Runner) { r.trail = trail }
}

// WithRunnerLogger sets the runner's logger.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a runner for the given compiled graph.
func NewRunner(graph *deckflow.CompiledGraph[State], opts ...RunnerOption) *Runner {
	r := &Runner{
		graph:   graph,
		trail:   event.NewTrail(),
		logger:  slog.Default(),
		cancels: make(map[string]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Trail returns the runner's event trail.
func (r *Runner) Trail() *event.Trail {
	return r.trail
}

// Run executes the graph for a job. Progress events are published as
// stages complete; on failure the error is appended to the state's
// error list and a terminal failed event is recorded. Cancellation via
// Cancel surfaces as a cancelled terminal event with the partial state.
func (r *Runner) Run(ctx context.Context, jobID string, initial State) (State, error) {
	jobCtx, err := r.register(ctx, jobID)
	if err != nil {
		return initial, err
	}
	defer r.unregister(jobID)

	r.publish(event.New(event.TypeJobStarted, jobID).
		WithMessage("job started").
		WithField("document", initial.Document.Name))

	final, err := r.graph.Run(r.execContext(jobCtx, jobID), initial, r.runOptions(jobID)...)
	return r.finish(jobID, final, err)
}

// Resume continues a job from its latest checkpoint.
func (r *Runner) Resume(ctx context.Context, jobID string) (State, error) {
	if r.store == nil {
		return State{}, fmt.Errorf("resume %s: no checkpoint store configured", jobID)
	}

	jobCtx, err := r.register(ctx, jobID)
	if err != nil {
		return State{}, err
	}
	defer r.unregister(jobID)

	r.publish(event.New(event.TypeJobStarted, jobID).WithMessage("job resumed"))

	final, err := r.graph.Resume(r.execContext(jobCtx, jobID), r.store, jobID)
	return r.finish(jobID, final, err)
}

// Cancel requests cancellation of a running job. The executor stops at
// the next stage boundary; in-flight model calls are not preempted.
// Returns false if the job is not currently running.
func (r *Runner) Cancel(jobID string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[jobID]
	r.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Running reports whether the job is currently executing.
func (r *Runner) Running(jobID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.cancels[jobID]
	return ok
}

func (r *Runner) register(ctx context.Context, jobID string) (context.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, running := r.cancels[jobID]; running {
		return nil, fmt.Errorf("job %s is already running", jobID)
	}
	jobCtx, cancel := context.WithCancel(ctx)
	r.cancels[jobID] = cancel
	return jobCtx, nil
}

func (r *Runner) unregister(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[jobID]; ok {
		cancel()
		delete(r.cancels, jobID)
	}
}

func (r *Runner) execContext(ctx context.Context, jobID string) deckflow.Context {
	opts := []deckflow.ContextOption{
		deckflow.WithContextJobID(jobID),
		deckflow.WithLogger(r.logger),
	}
	if r.store != nil {
		opts = append(opts, deckflow.WithCheckpointer(r.store))
	}
	return deckflow.NewContext(ctx, opts...)
}

func (r *Runner) runOptions(jobID string) []deckflow.RunOption {
	opts := []deckflow.RunOption{
		deckflow.WithRunLogger(r.logger),
		deckflow.WithMetrics(&trailRecorder{trail: r.trail, jobID: jobID}),
	}
	if r.store != nil {
		opts = append(opts, deckflow.WithCheckpointStore(r.store), deckflow.WithJobID(jobID))
	}
	return opts
}

// finish records the terminal event and folds run errors into the
// state's error list so partial progress stays inspectable.
func (r *Runner) finish(jobID string, final State, err error) (State, error) {
	switch {
	case err == nil:
		r.publish(event.New(event.TypeJobCompleted, jobID).
			WithMessage("job completed").
			WithField("cards", len(final.Exported)).
			WithField("claims", len(final.Claims)))
		return final, nil

	case isCancellation(err):
		final = final.AddError(err.Error())
		r.publish(event.New(event.TypeJobCancelled, jobID).
			WithMessage("job cancelled").
			WithField("step", final.Step))
		return final, err

	default:
		final = final.AddError(err.Error())
		r.publish(event.New(event.TypeJobFailed, jobID).
			WithMessage(err.Error()).
			WithField("step", final.Step))
		return final, err
	}
}

func (r *Runner) publish(evt event.Event) {
	if r.trail != nil {
		r.trail.Publish(evt)
	}
}

func isCancellation(err error) bool {
	var cancelled *deckflow.CancellationError
	return errors.As(err, &cancelled)
}

// trailRecorder adapts the executor's metrics hook into trail events,
// giving callers a per-stage progress stream without touching the
// executor itself.
type trailRecorder struct {
	trail *event.Trail
	jobID string
}

func (t *trailRecorder) RecordNodeExecution(_ context.Context, nodeID string, duration time.Duration, err error) {
	if t.trail == nil {
		return
	}
	evt := event.New(event.TypeStageDone, t.jobID)
	if err != nil {
		evt = event.New(event.TypeStageFailed, t.jobID).WithField("error", err.Error())
	}
	t.trail.Publish(evt.WithNode(nodeID).
		WithField("duration_ms", duration.Milliseconds()))
}

func (t *trailRecorder) RecordGraphRun(_ context.Context, success bool, duration time.Duration) {
}

func (t *trailRecorder) RecordFanOut(_ context.Context, nodeID string, branches int) {
	if t.trail == nil {
		return
	}
	t.trail.Publish(event.New(event.TypeFanOut, t.jobID).
		WithNode(nodeID).
		WithField("branches", branches))
}

func (t *trailRecorder) RecordCheckpoint(_ context.Context, nodeID string, sizeBytes int64) {
	if t.trail == nil {
		return
	}
	t.trail.Publish(event.New(event.TypeCheckpoint, t.jobID).
		WithNode(nodeID).
		WithField("size_bytes", sizeBytes))
}
