package deckflow

import (
	"encoding/json"
	"fmt"

	"github.com/randalmurphal/deckflow/pkg/deckflow/checkpoint"
)

// Resume continues execution from the last checkpoint for a job.
// It loads the latest checkpoint and starts execution from the next node.
//
// Example:
//
//	// Previous run crashed after the verify stage.
//	// Resume continues from the next stage with verify's checkpointed state.
//	result, err := compiled.Resume(ctx, store, "job-123")
func (cg *CompiledGraph[S]) Resume(ctx Context, store checkpoint.Store, jobID string, opts ...ResumeOption[S]) (S, error) {
	var zero S

	if ctx == nil {
		return zero, ErrNilContext
	}

	cfg := resumeConfig[S]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	// Find latest checkpoint
	infos, err := store.List(jobID)
	if err != nil {
		return zero, fmt.Errorf("list checkpoints: %w", err)
	}
	if len(infos) == 0 {
		return zero, fmt.Errorf("%w: %s", ErrNoCheckpoints, jobID)
	}

	// Load the latest checkpoint (last in sequence)
	latest := infos[len(infos)-1]
	data, err := store.Load(jobID, latest.NodeID)
	if err != nil {
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}

	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cp.Version != checkpoint.Version {
		return zero, fmt.Errorf("%w: got %d, expected %d",
			ErrCheckpointVersionMismatch, cp.Version, checkpoint.Version)
	}

	var state S
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cfg.stateOverride != nil {
		state = cfg.stateOverride(state)
	}

	if cfg.validateState != nil {
		if err := cfg.validateState(state); err != nil {
			return state, fmt.Errorf("state validation failed: %w", err)
		}
	}

	startNode := cp.NextNode
	if cfg.replayNode {
		// Re-execute the checkpointed node
		startNode = cp.NodeID
	}

	runCfg := defaultRunConfig()
	runCfg.checkpointStore = store
	runCfg.jobID = jobID
	runCfg.sequence = cp.Sequence

	return cg.runFrom(ctx, state, startNode, &runCfg)
}

// ResumeFrom continues execution from a specific checkpoint.
// Unlike Resume, this loads the checkpoint at a specific node rather
// than the latest.
//
// Example:
//
//	// Retry from the verify stage
//	result, err := compiled.ResumeFrom(ctx, store, "job-123", "verify")
func (cg *CompiledGraph[S]) ResumeFrom(ctx Context, store checkpoint.Store, jobID, nodeID string, opts ...ResumeOption[S]) (S, error) {
	var zero S

	if ctx == nil {
		return zero, ErrNilContext
	}

	cfg := resumeConfig[S]{}
	for _, opt := range opts {
		opt(&cfg)
	}

	data, err := store.Load(jobID, nodeID)
	if err != nil {
		if err == checkpoint.ErrNotFound {
			return zero, fmt.Errorf("%w: %s at node %s", ErrNoCheckpoints, jobID, nodeID)
		}
		return zero, fmt.Errorf("load checkpoint: %w", err)
	}

	cp, err := checkpoint.Unmarshal(data)
	if err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cp.Version != checkpoint.Version {
		return zero, fmt.Errorf("%w: got %d, expected %d",
			ErrCheckpointVersionMismatch, cp.Version, checkpoint.Version)
	}

	var state S
	if err := json.Unmarshal(cp.State, &state); err != nil {
		return zero, fmt.Errorf("%w: %v", ErrDeserializeState, err)
	}

	if cfg.stateOverride != nil {
		state = cfg.stateOverride(state)
	}

	if cfg.validateState != nil {
		if err := cfg.validateState(state); err != nil {
			return state, fmt.Errorf("state validation failed: %w", err)
		}
	}

	startNode := cp.NextNode
	if cfg.replayNode {
		// Re-execute the checkpointed node
		startNode = nodeID
	}

	// Validate start node exists (unless it's END)
	if startNode != END && !cg.HasNode(startNode) {
		return zero, fmt.Errorf("%w: %s", ErrInvalidResumeNode, startNode)
	}

	runCfg := defaultRunConfig()
	runCfg.checkpointStore = store
	runCfg.jobID = jobID
	runCfg.sequence = cp.Sequence

	return cg.runFrom(ctx, state, startNode, &runCfg)
}
