package deckflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestRun_LinearFlow tests basic linear execution.
func TestRun_LinearFlow(t *testing.T) {
	graph := NewGraph[Counter]().
		AddNode("inc1", increment).
		AddNode("inc2", increment).
		AddNode("inc3", increment).
		AddEdge("inc1", "inc2").
		AddEdge("inc2", "inc3").
		AddEdge("inc3", END).
		SetEntry("inc1")

	compiled, err := graph.Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), Counter{Value: 0})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Value)
}

// TestRun_StatePassedBetweenNodes tests state flows correctly.
func TestRun_StatePassedBetweenNodes(t *testing.T) {
	var nodeAState, nodeBState State

	nodeA := func(ctx Context, s State) (State, error) {
		nodeAState = s
		s.Step = 1
		return s, nil
	}
	nodeB := func(ctx Context, s State) (State, error) {
		nodeBState = s
		s.Step = 2
		return s, nil
	}

	graph := NewGraph[State]().
		AddNode("a", nodeA).
		AddNode("b", nodeB).
		AddEdge("a", "b").
		AddEdge("b", END).
		SetEntry("a")

	compiled, err := graph.Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), State{Initial: "test"})

	require.NoError(t, err)
	assert.Equal(t, "test", nodeAState.Initial) // A received initial state
	assert.Equal(t, 1, nodeBState.Step)         // B received A's output
	assert.Equal(t, 2, result.Step)             // Final result has B's changes
}

// TestRun_ConditionalEdge tests conditional routing.
func TestRun_ConditionalEdge(t *testing.T) {
	router := func(ctx Context, s State) string {
		if s.GoLeft {
			return "left"
		}
		return "right"
	}

	build := func(tracker *[]string) *CompiledGraph[State] {
		compiled, err := NewGraph[State]().
			AddNode("start", makeTrackingNode("start", tracker)).
			AddNode("left", makeTrackingNode("left", tracker)).
			AddNode("right", makeTrackingNode("right", tracker)).
			AddConditionalEdge("start", router).
			AddEdge("left", END).
			AddEdge("right", END).
			SetEntry("start").
			Compile()
		require.NoError(t, err)
		return compiled
	}

	t.Run("left", func(t *testing.T) {
		var executed []string
		_, err := build(&executed).Run(testCtx(), State{GoLeft: true})
		require.NoError(t, err)
		assert.Equal(t, []string{"start", "left"}, executed)
	})

	t.Run("right", func(t *testing.T) {
		var executed []string
		_, err := build(&executed).Run(testCtx(), State{GoLeft: false})
		require.NoError(t, err)
		assert.Equal(t, []string{"start", "right"}, executed)
	})
}

// TestRun_ConditionalEdge_ToEND tests router returning END directly.
func TestRun_ConditionalEdge_ToEND(t *testing.T) {
	router := func(ctx Context, s State) string { return END }

	compiled, err := NewGraph[State]().
		AddNode("only", passthrough[State]).
		AddConditionalEdge("only", router).
		SetEntry("only").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), State{})
	require.NoError(t, err)
}

// TestRun_Loop tests a bounded loop with conditional exit.
func TestRun_Loop(t *testing.T) {
	work := func(ctx Context, s Counter) (Counter, error) {
		s.Value++
		return s, nil
	}
	router := func(ctx Context, s Counter) string {
		if s.Value >= 5 {
			return END
		}
		return "work"
	}

	compiled, err := NewGraph[Counter]().
		AddNode("work", work).
		AddConditionalEdge("work", router).
		SetEntry("work").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), Counter{Value: 0})

	require.NoError(t, err)
	assert.Equal(t, 5, result.Value)
}

// TestRun_NodeError_WrapsWithNodeID tests error wrapping includes node ID.
func TestRun_NodeError_WrapsWithNodeID(t *testing.T) {
	boom := errors.New("boom")

	compiled, err := NewGraph[State]().
		AddNode("ok", passthrough[State]).
		AddNode("fails", makeFailingNode(boom)).
		AddEdge("ok", "fails").
		AddEdge("fails", END).
		SetEntry("ok").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), State{})

	require.Error(t, err)
	var nodeErr *NodeError
	require.ErrorAs(t, err, &nodeErr)
	assert.Equal(t, "fails", nodeErr.NodeID)
	assert.ErrorIs(t, err, boom)
}

// TestRun_NodeError_StatePreserved tests state at failure point is returned.
func TestRun_NodeError_StatePreserved(t *testing.T) {
	step := func(ctx Context, s State) (State, error) {
		s.Step = 7
		return s, nil
	}
	failing := func(ctx Context, s State) (State, error) {
		return s, errors.New("boom")
	}

	compiled, err := NewGraph[State]().
		AddNode("step", step).
		AddNode("fails", failing).
		AddEdge("step", "fails").
		AddEdge("fails", END).
		SetEntry("step").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), State{})

	require.Error(t, err)
	assert.Equal(t, 7, result.Step)
}

// TestRun_PanicRecovery tests that panics become PanicError.
func TestRun_PanicRecovery(t *testing.T) {
	compiled, err := NewGraph[State]().
		AddNode("panics", makePanicNode("something broke")).
		AddEdge("panics", END).
		SetEntry("panics").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), State{})

	require.Error(t, err)
	var panicErr *PanicError
	require.ErrorAs(t, err, &panicErr)
	assert.Equal(t, "panics", panicErr.NodeID)
	assert.Equal(t, "something broke", panicErr.Value)
	assert.NotEmpty(t, panicErr.Stack)
}

// TestRun_CancellationBetweenNodes tests cancellation at node boundaries.
func TestRun_CancellationBetweenNodes(t *testing.T) {
	baseCtx, cancel := context.WithCancel(context.Background())

	first := func(ctx Context, s State) (State, error) {
		cancel() // cancel while the first node runs
		s.Step = 1
		return s, nil
	}

	compiled, err := NewGraph[State]().
		AddNode("first", first).
		AddNode("second", passthrough[State]).
		AddEdge("first", "second").
		AddEdge("second", END).
		SetEntry("first").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(NewContext(baseCtx), State{})

	require.Error(t, err)
	var cancelErr *CancellationError
	require.ErrorAs(t, err, &cancelErr)
	assert.Equal(t, "second", cancelErr.NodeID)
	assert.False(t, cancelErr.WasExecuting)
	assert.Equal(t, 1, result.Step) // first node's output preserved
}

// TestRun_Timeout tests deadline propagation.
func TestRun_Timeout(t *testing.T) {
	baseCtx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	slow := func(ctx Context, s State) (State, error) {
		time.Sleep(50 * time.Millisecond)
		return s, nil
	}

	compiled, err := NewGraph[State]().
		AddNode("slow", slow).
		AddNode("after", passthrough[State]).
		AddEdge("slow", "after").
		AddEdge("after", END).
		SetEntry("slow").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(NewContext(baseCtx), State{})

	require.Error(t, err)
	var cancelErr *CancellationError
	assert.ErrorAs(t, err, &cancelErr)
}

// TestRun_MaxIterations_PreventsInfiniteLoop tests the iteration guard.
func TestRun_MaxIterations_PreventsInfiniteLoop(t *testing.T) {
	router := func(ctx Context, s Counter) string { return "loop" } // never exits

	compiled, err := NewGraph[Counter]().
		AddNode("loop", increment).
		AddConditionalEdge("loop", router).
		SetEntry("loop").
		Compile()
	require.NoError(t, err)

	result, err := compiled.Run(testCtx(), Counter{}, WithMaxIterations(10))

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMaxIterations)
	var maxErr *MaxIterationsError
	require.ErrorAs(t, err, &maxErr)
	assert.Equal(t, 10, maxErr.Max)
	assert.Equal(t, "loop", maxErr.LastNodeID)
	assert.Equal(t, 10, result.Value) // state at the point the guard fired
}

// TestRun_NilContext_Error tests nil context handling.
func TestRun_NilContext_Error(t *testing.T) {
	compiled, err := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", END).
		SetEntry("a").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(nil, Counter{})
	assert.ErrorIs(t, err, ErrNilContext)
}

// TestRun_RouterReturnsEmpty_Error tests empty router result.
func TestRun_RouterReturnsEmpty_Error(t *testing.T) {
	router := func(ctx Context, s State) string { return "" }

	compiled, err := NewGraph[State]().
		AddNode("start", passthrough[State]).
		AddConditionalEdge("start", router).
		SetEntry("start").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), State{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidRouterResult)
	var routerErr *RouterError
	require.ErrorAs(t, err, &routerErr)
	assert.Equal(t, "start", routerErr.FromNode)
}

// TestRun_RouterReturnsUnknown_Error tests router returning unknown node.
func TestRun_RouterReturnsUnknown_Error(t *testing.T) {
	router := func(ctx Context, s State) string { return "nonexistent" }

	compiled, err := NewGraph[State]().
		AddNode("start", passthrough[State]).
		AddConditionalEdge("start", router).
		SetEntry("start").
		Compile()
	require.NoError(t, err)

	_, err = compiled.Run(testCtx(), State{})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRouterTargetNotFound)
}

// TestRun_ContextPropagated tests that nodes see job metadata.
func TestRun_ContextPropagated(t *testing.T) {
	var seenJobID, seenNodeID string

	node := func(ctx Context, s State) (State, error) {
		seenJobID = ctx.JobID()
		seenNodeID = ctx.NodeID()
		return s, nil
	}

	compiled, err := NewGraph[State]().
		AddNode("observe", node).
		AddEdge("observe", END).
		SetEntry("observe").
		Compile()
	require.NoError(t, err)

	ctx := NewContext(context.Background(), WithContextJobID("job-42"))
	_, err = compiled.Run(ctx, State{})

	require.NoError(t, err)
	assert.Equal(t, "job-42", seenJobID)
	assert.Equal(t, "observe", seenNodeID)
}

// TestRun_ReusableCompiledGraph tests a compiled graph runs repeatedly.
func TestRun_ReusableCompiledGraph(t *testing.T) {
	compiled, err := NewGraph[Counter]().
		AddNode("inc", increment).
		AddEdge("inc", END).
		SetEntry("inc").
		Compile()
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		result, err := compiled.Run(testCtx(), Counter{Value: i})
		require.NoError(t, err)
		assert.Equal(t, i+1, result.Value)
	}
}

// TestContext_DefaultValues tests NewContext defaults.
func TestContext_DefaultValues(t *testing.T) {
	ctx := NewContext(context.Background())

	assert.NotNil(t, ctx.Logger())
	assert.Nil(t, ctx.Checkpointer())
	assert.NotEmpty(t, ctx.JobID()) // auto-generated UUID
	assert.Empty(t, ctx.NodeID())
	assert.Equal(t, 1, ctx.Attempt())
}

// TestContext_CancellationPropagates tests standard context behavior.
func TestContext_CancellationPropagates(t *testing.T) {
	baseCtx, cancel := context.WithCancel(context.Background())
	ctx := NewContext(baseCtx)

	cancel()

	assert.Error(t, ctx.Err())
	select {
	case <-ctx.Done():
	default:
		t.Fatal("Done channel should be closed")
	}
}
