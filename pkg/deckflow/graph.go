package deckflow

import (
	"fmt"
	"strings"
	"sync"
)

// Graph is a mutable builder for creating execution graphs.
// Use NewGraph to create a new graph, then chain AddNode, AddEdge,
// AddConditionalEdge, AddFanOut, and SetEntry calls to define the pipeline.
//
// Graph is NOT thread-safe during building. Construct the graph from a
// single goroutine, then call Compile() to create an immutable CompiledGraph
// that can be safely shared.
//
// Example:
//
//	graph := deckflow.NewGraph[PipelineState]().
//	    AddNode("ingest", ingest).
//	    AddNode("render", render).
//	    AddEdge("ingest", "render").
//	    AddEdge("render", deckflow.END).
//	    SetEntry("ingest")
//
//	compiled, err := graph.Compile()
type Graph[S any] struct {
	mu               sync.RWMutex
	nodes            map[string]NodeFunc[S]
	edges            map[string][]string
	conditionalEdges map[string]RouterFunc[S]
	fanOuts          map[string]fanOutEdge[S]
	merger           MergeFunc[S]
	fanOutConfig     FanOutConfig
	entryPoint       string
}

// fanOutEdge pairs a dispatch function with the node all branches converge on.
type fanOutEdge[S any] struct {
	dispatch DispatchFunc[S]
	join     string
}

// NewGraph creates a new graph builder for state type S.
// The type parameter S defines the state that flows through the graph.
func NewGraph[S any]() *Graph[S] {
	return &Graph[S]{
		nodes:            make(map[string]NodeFunc[S]),
		edges:            make(map[string][]string),
		conditionalEdges: make(map[string]RouterFunc[S]),
		fanOuts:          make(map[string]fanOutEdge[S]),
		fanOutConfig:     DefaultFanOutConfig(),
	}
}

// AddNode adds a named node to the graph.
// Returns the graph for method chaining.
//
// Panics if:
//   - id is empty
//   - id is the reserved word "END" or "__end__" (case-insensitive)
//   - id contains whitespace (space, tab, newline)
//   - fn is nil
//   - id already exists in the graph
func (g *Graph[S]) AddNode(id string, fn NodeFunc[S]) *Graph[S] {
	if id == "" {
		panic("deckflow: node ID cannot be empty")
	}

	idLower := strings.ToLower(id)
	if idLower == "end" || idLower == "__end__" {
		panic("deckflow: node ID cannot be reserved word 'END'")
	}

	if strings.ContainsAny(id, " \t\n\r") {
		panic("deckflow: node ID cannot contain whitespace")
	}

	if fn == nil {
		panic("deckflow: node function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.nodes[id]; exists {
		panic(fmt.Sprintf("deckflow: duplicate node ID: %s", id))
	}

	g.nodes[id] = fn
	return g
}

// AddGraphNode adds a compiled subgraph as a single node.
// Running the node runs the subgraph to completion over the node's input
// state. This is how fan-out worker subgraphs (per-slide, per-region) are
// embedded in a parent pipeline.
func (g *Graph[S]) AddGraphNode(id string, sub *CompiledGraph[S]) *Graph[S] {
	if sub == nil {
		panic("deckflow: subgraph cannot be nil")
	}
	return g.AddNode(id, func(ctx Context, state S) (S, error) {
		return sub.Run(ctx, state)
	})
}

// AddEdge adds an unconditional edge from one node to another.
// The target can be a node ID or deckflow.END.
// Returns the graph for method chaining.
//
// Edge validation happens at Compile() time, not here.
// This allows edges to be added in any order.
func (g *Graph[S]) AddEdge(from, to string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.edges[from] = append(g.edges[from], to)
	return g
}

// AddConditionalEdge adds a conditional edge where a RouterFunc
// determines the next node at runtime based on state.
// Returns the graph for method chaining.
//
// The router function should return a valid node ID or deckflow.END.
// Returning an empty string or unknown node ID will cause a runtime error.
//
// A node can have either simple edges or a conditional edge, not both.
// If both are present, the conditional edge takes precedence.
func (g *Graph[S]) AddConditionalEdge(from string, router RouterFunc[S]) *Graph[S] {
	if router == nil {
		panic("deckflow: router function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.conditionalEdges[from] = router
	return g
}

// AddFanOut adds a fan-out edge: after the from node completes, dispatch is
// called over the post-node state and every returned Send is executed as an
// independent concurrent branch. Branch results are folded into the parent
// state with the graph's MergeFunc (see SetMerger), and execution continues
// at join.
//
// join can be a node ID or deckflow.END. Zero dispatched Sends is valid and
// proceeds to join with the unmerged parent state.
//
// The merge base is the parent state as it left the from node. A node that
// repartitions a field into Sends must move that field aside before
// dispatch, or the pre-dispatch values are merged alongside the branch
// output.
func (g *Graph[S]) AddFanOut(from string, dispatch DispatchFunc[S], join string) *Graph[S] {
	if dispatch == nil {
		panic("deckflow: dispatch function cannot be nil")
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	g.fanOuts[from] = fanOutEdge[S]{dispatch: dispatch, join: join}
	return g
}

// SetMerger sets the merge function used to fold fan-out branch states into
// the parent state. Required for any graph with fan-out edges whose branches
// produce results the parent should see.
//
// The merge must be commutative and associative; see MergeFunc.
func (g *Graph[S]) SetMerger(merge MergeFunc[S]) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.merger = merge
	return g
}

// SetFanOutConfig overrides fan-out execution behavior (branch concurrency
// bound, fail-fast). Applies to every fan-out edge in the graph.
func (g *Graph[S]) SetFanOutConfig(cfg FanOutConfig) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.fanOutConfig = cfg
	return g
}

// SetEntry designates the entry point node.
// This must be called before Compile().
// Returns the graph for method chaining.
//
// Entry point validation happens at Compile() time.
func (g *Graph[S]) SetEntry(id string) *Graph[S] {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.entryPoint = id
	return g
}
