package deckflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNodeError(t *testing.T) {
	inner := errors.New("model call failed")
	err := &NodeError{NodeID: "extract", Op: "execute", Err: inner}

	assert.Equal(t, "node extract: execute: model call failed", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestPanicError(t *testing.T) {
	err := &PanicError{NodeID: "verify", Value: "nil deref", Stack: "goroutine 1..."}
	assert.Equal(t, "node verify panicked: nil deref", err.Error())

	// Non-string panic values format via %v.
	err = &PanicError{NodeID: "verify", Value: 42}
	assert.Equal(t, "node verify panicked: 42", err.Error())
}

func TestCancellationError(t *testing.T) {
	before := &CancellationError{NodeID: "segment", Cause: context.Canceled}
	assert.Equal(t, "cancelled before node segment: context canceled", before.Error())
	assert.ErrorIs(t, before, context.Canceled)

	during := &CancellationError{NodeID: "segment", Cause: context.DeadlineExceeded, WasExecuting: true}
	assert.Equal(t, "cancelled during node segment: context deadline exceeded", during.Error())
	assert.ErrorIs(t, during, context.DeadlineExceeded)
}

func TestRouterError(t *testing.T) {
	err := &RouterError{FromNode: "verify", Returned: "repiar", Err: ErrRouterTargetNotFound}

	assert.Equal(t, `router from verify returned "repiar": router returned unknown node`, err.Error())
	assert.ErrorIs(t, err, ErrRouterTargetNotFound)
}

func TestFanOutError(t *testing.T) {
	inner := errors.New("branch boom")
	err := &FanOutError{FanOutNodeID: "segment", BranchNode: "extract", Branch: 2, Err: inner}

	assert.Equal(t, "fan-out from segment: branch 2 (extract): branch boom", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestMaxIterationsError(t *testing.T) {
	err := &MaxIterationsError{Max: 10, LastNodeID: "repair", State: Counter{Value: 10}}

	assert.Equal(t, "exceeded maximum iterations (10) at node repair", err.Error())
	assert.ErrorIs(t, err, ErrMaxIterations)

	// State is inspectable via type assertion.
	state, ok := err.State.(Counter)
	assert.True(t, ok)
	assert.Equal(t, 10, state.Value)
}

func TestCheckpointError(t *testing.T) {
	inner := errors.New("disk full")
	err := &CheckpointError{NodeID: "verify", Op: "save", Err: inner}

	assert.Equal(t, "checkpoint save at node verify: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
}
