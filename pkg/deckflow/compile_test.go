package deckflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCompile_LinearGraph tests successful compilation of a linear graph.
func TestCompile_LinearGraph(t *testing.T) {
	graph := NewGraph[Counter]().
		AddNode("a", increment).
		AddNode("b", increment).
		AddNode("c", increment).
		AddEdge("a", "b").
		AddEdge("b", "c").
		AddEdge("c", END).
		SetEntry("a")

	compiled, err := graph.Compile()

	require.NoError(t, err)
	assert.NotNil(t, compiled)
	assert.Equal(t, "a", compiled.EntryPoint())
	assert.ElementsMatch(t, []string{"a", "b", "c"}, compiled.NodeIDs())
}

// TestCompile_BranchingGraph tests graph with conditional branching.
func TestCompile_BranchingGraph(t *testing.T) {
	router := func(ctx Context, s State) string {
		if s.GoLeft {
			return "left"
		}
		return "right"
	}

	graph := NewGraph[State]().
		AddNode("start", passthrough[State]).
		AddNode("left", passthrough[State]).
		AddNode("right", passthrough[State]).
		AddNode("join", passthrough[State]).
		AddConditionalEdge("start", router).
		AddEdge("left", "join").
		AddEdge("right", "join").
		AddEdge("join", END).
		SetEntry("start")

	compiled, err := graph.Compile()

	require.NoError(t, err)
	assert.True(t, compiled.IsConditional("start"))
	assert.False(t, compiled.IsConditional("left"))
}

// TestCompile_ValidCycle tests that cycles with conditional exit compile.
func TestCompile_ValidCycle(t *testing.T) {
	router := func(ctx Context, s State) string {
		if s.Done {
			return END
		}
		return "process"
	}

	graph := NewGraph[State]().
		AddNode("check", passthrough[State]).
		AddNode("process", passthrough[State]).
		AddConditionalEdge("check", router).
		AddEdge("process", "check").
		SetEntry("check")

	compiled, err := graph.Compile()

	require.NoError(t, err)
	assert.NotNil(t, compiled)
}

// TestCompile_FanOutGraph tests compilation with fan-out edges.
func TestCompile_FanOutGraph(t *testing.T) {
	dispatch := func(ctx Context, s State) []Send[State] { return nil }

	graph := NewGraph[State]().
		AddNode("source", passthrough[State]).
		AddNode("worker", passthrough[State]).
		AddNode("collect", passthrough[State]).
		AddFanOut("source", dispatch, "collect").
		AddEdge("worker", "collect").
		AddEdge("collect", END).
		SetMerger(mergeItems).
		SetEntry("source")

	compiled, err := graph.Compile()

	require.NoError(t, err)
	assert.True(t, compiled.IsFanOut("source"))
	assert.False(t, compiled.IsFanOut("worker"))
	assert.Equal(t, "collect", compiled.JoinNode("source"))
	assert.True(t, compiled.HasFanOut())
}

// TestCompile_FanOutToEND tests a fan-out that joins directly at END.
func TestCompile_FanOutToEND(t *testing.T) {
	dispatch := func(ctx Context, s State) []Send[State] { return nil }

	graph := NewGraph[State]().
		AddNode("source", passthrough[State]).
		AddNode("worker", passthrough[State]).
		AddFanOut("source", dispatch, END).
		AddEdge("worker", END).
		SetMerger(mergeItems).
		SetEntry("source")

	_, err := graph.Compile()
	require.NoError(t, err)
}

// TestCompile_FanOutWithoutMerger_Error tests that fan-out requires a merger.
func TestCompile_FanOutWithoutMerger_Error(t *testing.T) {
	dispatch := func(ctx Context, s State) []Send[State] { return nil }

	graph := NewGraph[State]().
		AddNode("source", passthrough[State]).
		AddNode("collect", passthrough[State]).
		AddFanOut("source", dispatch, "collect").
		AddEdge("collect", END).
		SetEntry("source")

	_, err := graph.Compile()

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNoMerger)
}

// TestCompile_FanOutMissingJoin_Error tests fan-out join referencing missing node.
func TestCompile_FanOutMissingJoin_Error(t *testing.T) {
	dispatch := func(ctx Context, s State) []Send[State] { return nil }

	graph := NewGraph[State]().
		AddNode("source", passthrough[State]).
		AddFanOut("source", dispatch, "nonexistent").
		SetMerger(mergeItems).
		SetEntry("source")

	_, err := graph.Compile()

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Contains(t, err.Error(), "nonexistent")
}

// TestCompile_FanOutAndConditional_Error tests the conflict between a fan-out
// and a conditional edge on the same node.
func TestCompile_FanOutAndConditional_Error(t *testing.T) {
	dispatch := func(ctx Context, s State) []Send[State] { return nil }
	router := func(ctx Context, s State) string { return END }

	graph := NewGraph[State]().
		AddNode("source", passthrough[State]).
		AddNode("collect", passthrough[State]).
		AddFanOut("source", dispatch, "collect").
		AddConditionalEdge("source", router).
		AddEdge("collect", END).
		SetMerger(mergeItems).
		SetEntry("source")

	_, err := graph.Compile()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "both a fan-out and a conditional edge")
}

// TestCompile_NoEntryPoint_Error tests missing entry point error.
func TestCompile_NoEntryPoint_Error(t *testing.T) {
	graph := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", END)
	// No SetEntry()

	_, err := graph.Compile()

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEntryPoint)
}

// TestCompile_EntryNotFound_Error tests entry point referencing missing node.
func TestCompile_EntryNotFound_Error(t *testing.T) {
	graph := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", END).
		SetEntry("nonexistent")

	_, err := graph.Compile()

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.Contains(t, err.Error(), "nonexistent")
}

// TestCompile_MissingEdgeTarget_Error tests edge to missing node.
func TestCompile_MissingEdgeTarget_Error(t *testing.T) {
	graph := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", "nonexistent").
		SetEntry("a")

	_, err := graph.Compile()

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Contains(t, err.Error(), "nonexistent")
}

// TestCompile_NoPathToEnd_Error tests dead-end node error.
func TestCompile_NoPathToEnd_Error(t *testing.T) {
	graph := NewGraph[Counter]().
		AddNode("a", increment).
		AddNode("b", increment).
		AddEdge("a", "b").
		// b has no outgoing edge - dead end
		SetEntry("a")

	_, err := graph.Compile()

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNoPathToEnd)
}

// TestCompile_MultipleErrors_AllReturned tests error aggregation.
func TestCompile_MultipleErrors_AllReturned(t *testing.T) {
	graph := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", "missing1").
		AddEdge("missing2", END)
	// No entry point

	_, err := graph.Compile()

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEntryPoint)
	assert.ErrorIs(t, err, ErrNodeNotFound)
	assert.Contains(t, err.Error(), "missing1")
	assert.Contains(t, err.Error(), "missing2")
}

// TestCompiledGraph_Introspection tests compiled graph introspection methods.
func TestCompiledGraph_Introspection(t *testing.T) {
	graph := NewGraph[Counter]().
		AddNode("start", increment).
		AddNode("middle", increment).
		AddNode("finish", increment).
		AddEdge("start", "middle").
		AddEdge("middle", "finish").
		AddEdge("finish", END).
		SetEntry("start")

	compiled, err := graph.Compile()
	require.NoError(t, err)

	assert.Equal(t, "start", compiled.EntryPoint())
	assert.ElementsMatch(t, []string{"start", "middle", "finish"}, compiled.NodeIDs())

	assert.True(t, compiled.HasNode("start"))
	assert.False(t, compiled.HasNode("nonexistent"))

	assert.Equal(t, []string{"middle"}, compiled.Successors("start"))
	assert.Equal(t, []string{END}, compiled.Successors("finish"))
	assert.Nil(t, compiled.Successors("nonexistent"))

	assert.Equal(t, []string{"start"}, compiled.Predecessors("middle"))
	assert.Nil(t, compiled.Predecessors("start")) // Entry has no predecessors

	assert.False(t, compiled.HasFanOut())
	assert.Equal(t, "", compiled.JoinNode("start"))
}

// TestCompile_RecompilingDoesNotAffectPrevious tests immutability.
func TestCompile_RecompilingDoesNotAffectPrevious(t *testing.T) {
	graph := NewGraph[Counter]().
		AddNode("a", increment).
		AddEdge("a", END).
		SetEntry("a")

	compiled1, err := graph.Compile()
	require.NoError(t, err)

	// Modify the builder
	graph.AddNode("b", increment).
		AddEdge("a", "b").
		AddEdge("b", END)

	compiled2, err := graph.Compile()
	require.NoError(t, err)

	// compiled1 should be unchanged
	assert.Equal(t, 1, len(compiled1.NodeIDs()))
	assert.Equal(t, 2, len(compiled2.NodeIDs()))
}

// TestCompile_EmptyGraph_Error tests compiling empty graph.
func TestCompile_EmptyGraph_Error(t *testing.T) {
	graph := NewGraph[Counter]()

	_, err := graph.Compile()

	assert.Error(t, err)
	assert.ErrorIs(t, err, ErrNoEntryPoint)
}
