package deckflow

import (
	"context"
	"log/slog"
	"sync"

	"github.com/randalmurphal/deckflow/pkg/deckflow/checkpoint"
	"github.com/randalmurphal/deckflow/pkg/deckflow/observability"
)

// branchContext wraps a cancellable std context while delegating
// deckflow services and metadata to the parent execution context.
type branchContext struct {
	context.Context
	parent Context
}

func (c *branchContext) Logger() *slog.Logger           { return c.parent.Logger() }
func (c *branchContext) Checkpointer() checkpoint.Store { return c.parent.Checkpointer() }
func (c *branchContext) JobID() string                  { return c.parent.JobID() }
func (c *branchContext) NodeID() string                 { return c.parent.NodeID() }
func (c *branchContext) Attempt() int                   { return c.parent.Attempt() }

// branchResult carries the outcome of a single fan-out branch.
type branchResult[S any] struct {
	index int
	state S
	err   error
}

// executeFanOut dispatches branches for a fan-out node, executes them
// concurrently, and merges the results into the parent state.
//
// Each Send starts an independent branch at Send.Node with Send.State.
// A branch runs node-by-node until it reaches the join node, END, or a
// node with no outgoing edges.
// Successful branch states are folded into the parent state with the
// graph's merger; failed branches are reported via FanOutError but do
// not discard the work of branches that succeeded.
//
// Returns the merged state, the number of branches that completed
// successfully, and any error.
func (cg *CompiledGraph[S]) executeFanOut(ctx Context, nodeID string, state S, cfg *runConfig) (S, int, error) {
	fo, exists := cg.getFanOut(nodeID)
	if !exists {
		// Callers check IsFanOut first; this is a safety net.
		return state, 0, &FanOutError{
			FanOutNodeID: nodeID,
			Err:          ErrNodeNotFound,
		}
	}

	dispatchCtx := ctx
	if ec, ok := ctx.(*executionContext); ok {
		dispatchCtx = ec.withNodeID(nodeID)
	}

	sends := fo.dispatch(dispatchCtx, state)

	// Zero branches is a valid dispatch: proceed to the join node with
	// the parent state unchanged.
	if len(sends) == 0 {
		observability.LogFanOut(cfg.logger, nodeID, 0)
		return state, 0, nil
	}

	// Validate all targets before starting any branch.
	for _, send := range sends {
		if send.Node == END {
			continue
		}
		if _, ok := cg.getNode(send.Node); !ok {
			return state, 0, &FanOutError{
				FanOutNodeID: nodeID,
				BranchNode:   send.Node,
				Err:          ErrDispatchTargetNotFound,
			}
		}
	}

	observability.LogFanOut(cfg.logger, nodeID, len(sends))
	cfg.metrics.RecordFanOut(ctx, nodeID, len(sends))

	// Cancellable context so FailFast can stop in-flight branches.
	branchStd, cancel := context.WithCancel(ctx)
	defer cancel()
	bctx := &branchContext{Context: branchStd, parent: ctx}

	// Bounded concurrency via buffered-channel semaphore.
	var sem chan struct{}
	if cg.fanOutConfig.MaxConcurrency > 0 {
		sem = make(chan struct{}, cg.fanOutConfig.MaxConcurrency)
	}

	results := make([]branchResult[S], len(sends))
	var wg sync.WaitGroup

	for i, send := range sends {
		wg.Add(1)
		go func(idx int, send Send[S]) {
			defer wg.Done()

			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-branchStd.Done():
					results[idx] = branchResult[S]{
						index: idx,
						state: send.State,
						err: &CancellationError{
							NodeID:       send.Node,
							State:        send.State,
							Cause:        branchStd.Err(),
							WasExecuting: false,
						},
					}
					return
				}
			}

			final, err := cg.executeBranch(bctx, send.Node, send.State, fo.join, cfg)
			results[idx] = branchResult[S]{index: idx, state: final, err: err}

			if err != nil && cg.fanOutConfig.FailFast {
				cancel()
			}
		}(i, send)
	}

	wg.Wait()

	// Fold successful branches into the parent state in dispatch order.
	// The merger is required to be commutative, so order does not affect
	// the result; folding in order keeps iteration deterministic anyway.
	merged := state
	nodeCount := 0
	var firstErr *FanOutError
	for i, res := range results {
		if res.err != nil {
			if firstErr == nil {
				firstErr = &FanOutError{
					FanOutNodeID: nodeID,
					BranchNode:   sends[i].Node,
					Branch:       i,
					Err:          res.err,
				}
			}
			continue
		}
		merged = cg.merger(merged, res.state)
		nodeCount++
	}

	if firstErr != nil {
		return merged, nodeCount, firstErr
	}
	return merged, nodeCount, nil
}

// executeBranch runs a single fan-out branch from startNode until it
// reaches the join node, END, or a leaf node with no outgoing edges.
// Branch interiors are never checkpointed;
// the merged state is checkpointed at the fan-out node by the caller.
func (cg *CompiledGraph[S]) executeBranch(ctx Context, startNode string, state S, join string, cfg *runConfig) (S, error) {
	current := startNode
	iterations := 0

	for current != join && current != END {
		iterations++
		if iterations > cfg.maxIterations {
			return state, &MaxIterationsError{
				Max:        cfg.maxIterations,
				LastNodeID: current,
				State:      state,
			}
		}

		select {
		case <-ctx.Done():
			return state, &CancellationError{
				NodeID:       current,
				State:        state,
				Cause:        ctx.Err(),
				WasExecuting: false,
			}
		default:
		}

		var err error
		state, err = cg.executeNode(ctx, current, state)
		if err != nil {
			return state, err
		}

		// Nested fan-out inside a branch runs the same way.
		if cg.IsFanOut(current) {
			var fanErr error
			state, _, fanErr = cg.executeFanOut(ctx, current, state, cfg)
			if fanErr != nil {
				return state, fanErr
			}
			current = cg.JoinNode(current)
			continue
		}

		// Dispatch targets are usually leaf nodes with no outgoing edges.
		// A branch that runs out of edges is complete; its state flows to
		// the join via the merger.
		if _, hasRouter := cg.getRouter(current); !hasRouter && len(cg.getEdges(current)) == 0 {
			return state, nil
		}

		next, err := cg.nextNode(ctx, state, current)
		if err != nil {
			return state, err
		}
		current = next
	}

	return state, nil
}
