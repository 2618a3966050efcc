/*
Package deckflow provides graph-based orchestration for model-assisted
document pipelines.

# Overview

deckflow is a Go library for building and executing directed graphs
where nodes perform work and edges define flow. It was built to drive
slide-deck-to-flashcard pipelines, where stages call language and
vision models, fan out over slides and regions, and loop through
verify/repair cycles, but the executor itself is generic over any
mergeable state type.

Core features:
  - Type-safe generics for state management
  - Compile-time validation of graph structure
  - Explicit fan-out with bounded concurrency and commutative merging
  - Built-in crash recovery via checkpointing
  - OpenTelemetry integration for observability

# Basic Usage

Create a graph with nodes and edges, then compile and run:

	type State struct {
	    Input  string
	    Output string
	}

	func process(ctx deckflow.Context, s State) (State, error) {
	    s.Output = "Processed: " + s.Input
	    return s, nil
	}

	func main() {
	    graph := deckflow.NewGraph[State]().
	        AddNode("process", process).
	        AddEdge("process", deckflow.END).
	        SetEntry("process")

	    compiled, err := graph.Compile()
	    if err != nil {
	        log.Fatal(err)
	    }

	    ctx := deckflow.NewContext(context.Background())
	    result, err := compiled.Run(ctx, State{Input: "hello"})
	    if err != nil {
	        log.Fatal(err)
	    }
	    fmt.Println(result.Output) // "Processed: hello"
	}

# Conditional Branching

Use conditional edges for decision points:

	graph.AddConditionalEdge("verify", func(ctx deckflow.Context, s State) string {
	    if s.NeedsRepair && s.Attempt < s.MaxAttempts {
	        return "repair"
	    }
	    return "export"
	})

The router function returns the ID of the next node to execute.
Invalid return values (referencing non-existent nodes) cause runtime errors.

# Loops

Create loops by having conditional edges that return to earlier nodes:

	graph := deckflow.NewGraph[RepairState]().
	    AddNode("verify", verifyClaims).
	    AddNode("repair", repairClaims).
	    AddNode("export", exportCards).
	    AddConditionalEdge("verify", func(ctx deckflow.Context, s RepairState) string {
	        if s.NeedsRepair && s.Attempt < s.MaxAttempts {
	            return "repair"
	        }
	        return "export"
	    }).
	    AddEdge("repair", "verify").
	    AddEdge("export", deckflow.END).
	    SetEntry("verify")

Loops are protected by max iterations (default 1000) to prevent infinite loops.
Configure with WithMaxIterations.

# Fan-Out

Fan-out runs independent branches concurrently and merges their results.
Register a dispatch function on the source node and a commutative merger
on the graph:

	graph.AddNode("ingest", ingest).
	    AddNode("slide", processSlide).
	    AddNode("collect", collect).
	    AddFanOut("ingest", func(ctx deckflow.Context, s DeckState) []deckflow.Send[DeckState] {
	        sends := make([]deckflow.Send[DeckState], 0, len(s.Slides))
	        for _, slide := range s.Slides {
	            sends = append(sends, deckflow.Send[DeckState]{
	                Node:  "slide",
	                State: s.ForSlide(slide),
	            })
	        }
	        return sends
	    }, "collect").
	    SetMerger(mergeDeckStates)

Each Send starts a branch at its target node with its own state copy.
Branches run until they reach the join node (or END), then their final
states are folded into the parent state with the merger. Because branch
completion order is nondeterministic, the merger must be commutative;
the reduce helpers (AppendDedupe, Max, First, LatestNonEmpty) cover the
common per-field policies. Bound concurrency with SetFanOutConfig.

# Checkpointing

Enable crash recovery with checkpointing:

	store, err := checkpoint.NewSQLiteStore("./checkpoints.db")
	if err != nil {
	    log.Fatal(err)
	}
	defer store.Close()

	result, err := compiled.Run(ctx, state,
	    deckflow.WithCheckpointStore(store),
	    deckflow.WithJobID("job-123"))

	// Resume after crash
	result, err = compiled.Resume(ctx, store, "job-123")

Checkpoints are saved after each successful node execution. Fan-out
branch interiors are not checkpointed; the merged state is checkpointed
once at the fan-out node. When resuming, execution continues from the
node after the last checkpoint.

# Observability

Enable logging, metrics, and tracing:

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	result, err := compiled.Run(ctx, state,
	    deckflow.WithRunLogger(logger),
	    deckflow.WithMetrics(observability.NewMetricsRecorder()),
	    deckflow.WithTracing(observability.NewSpanManager()),
	    deckflow.WithJobID("job-123"))

Logs include structured fields: job_id, node_id, duration_ms, attempt.
OpenTelemetry metrics: deckflow.node.executions, deckflow.node.latency_ms, etc.
OpenTelemetry tracing: deckflow.run > deckflow.node.{id} spans.

# Error Handling

Errors include context about which node failed:

	result, err := compiled.Run(ctx, state)
	var nodeErr *deckflow.NodeError
	if errors.As(err, &nodeErr) {
	    log.Printf("Node %s failed: %v", nodeErr.NodeID, nodeErr.Err)
	}

	var fanErr *deckflow.FanOutError
	if errors.As(err, &fanErr) {
	    // result still holds the merge of the branches that succeeded
	    log.Printf("Branch %d (%s) failed: %v", fanErr.Branch, fanErr.BranchNode, fanErr.Err)
	}

Panics in nodes are recovered and converted to PanicError with stack trace.

# Thread Safety

  - Graph[S] is NOT safe for concurrent use during construction
  - CompiledGraph[S] IS safe for concurrent use (immutable)
  - Context IS safe for concurrent use
  - checkpoint.Store implementations are safe for concurrent use

# Subpackages

  - checkpoint: Checkpoint storage (memory, SQLite)
  - errors: Error taxonomy and retry helpers for model-calling stages
  - limit: Concurrency limiting for shared model backends
  - event: Append-only job event trail
  - observability: Logging, metrics, and tracing helpers
  - config: Pipeline configuration loading
*/
package deckflow
