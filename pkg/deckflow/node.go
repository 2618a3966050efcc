package deckflow

// END is the terminal node identifier.
// Use this as an edge target to indicate the graph should terminate.
const END = "__end__"

// NodeFunc is the signature for all stage functions.
// A stage receives the execution context and the current state, and returns
// the updated state (or the same state) and any error.
//
// The state parameter is passed by value. Stages should build and return a
// new state value, not rely on pointer mutation: the executor may hand the
// same input state to checkpointing and fan-out cloning.
//
// Example:
//
//	func render(ctx deckflow.Context, s PipelineState) (PipelineState, error) {
//	    s.Slides = rasterize(s.Document)
//	    return s, nil
//	}
type NodeFunc[S any] func(ctx Context, state S) (S, error)

// RouterFunc determines the next node based on state.
// It is used for conditional edges where the next node depends on runtime
// state. Routers must be pure and total: always return a valid node ID or
// deckflow.END. Returning an empty string or an unknown node ID causes a
// runtime error.
type RouterFunc[S any] func(ctx Context, state S) string

// Send names a fan-out target and carries the child state fragment that the
// target branch starts from. The fragment is owned by the branch until it is
// merged back into the parent.
type Send[S any] struct {
	// Node is the branch entry node, typically a subgraph node.
	Node string

	// State is the independent child state fragment for this branch.
	State S
}

// DispatchFunc computes the fan-out for a node: zero or more Sends, each
// executed as an independent concurrent branch. Returning no Sends is valid
// and means "skip": execution proceeds to the join node with the unmerged
// parent state.
type DispatchFunc[S any] func(ctx Context, state S) []Send[S]

// MergeFunc folds one completed branch state into the parent state.
//
// Branch completion order is unconstrained, so the merge must be commutative
// and associative for the final state to be deterministic. Field policies
// like AppendDedupe and Max satisfy this; LatestNonEmpty is the one
// intentionally order-sensitive policy and should only back fields where
// staleness is acceptable (see reduce.go).
type MergeFunc[S any] func(parent S, branch S) S
