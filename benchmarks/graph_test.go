package benchmarks

import (
	"testing"

	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

// DeckState is a small pipeline-shaped state for benchmarks.
type DeckState struct {
	Slides int
	Claims []string
}

// noopStage does minimal work to measure framework overhead.
func noopStage(ctx deckflow.Context, s DeckState) (DeckState, error) {
	return s, nil
}

// BenchmarkNewGraph measures graph creation overhead.
func BenchmarkNewGraph(b *testing.B) {
	for i := 0; i < b.N; i++ {
		deckflow.NewGraph[DeckState]()
	}
}

// BenchmarkAddNode measures node addition overhead.
func BenchmarkAddNode(b *testing.B) {
	for i := 0; i < b.N; i++ {
		graph := deckflow.NewGraph[DeckState]()
		graph.AddNode("stage", noopStage)
	}
}

// BenchmarkAddNode_10 measures adding 10 nodes.
func BenchmarkAddNode_10(b *testing.B) {
	for i := 0; i < b.N; i++ {
		graph := deckflow.NewGraph[DeckState]()
		for j := 0; j < 10; j++ {
			graph.AddNode(nodeID(j), noopStage)
		}
	}
}

// BenchmarkAddNode_100 measures adding 100 nodes.
func BenchmarkAddNode_100(b *testing.B) {
	for i := 0; i < b.N; i++ {
		graph := deckflow.NewGraph[DeckState]()
		for j := 0; j < 100; j++ {
			graph.AddNode(nodeID(j), noopStage)
		}
	}
}

// BenchmarkCompile_Linear_5 compiles a 5-stage linear graph.
func BenchmarkCompile_Linear_5(b *testing.B) {
	graph := buildLinearGraph(5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = graph.Compile()
	}
}

// BenchmarkCompile_Linear_10 compiles a 10-stage linear graph.
func BenchmarkCompile_Linear_10(b *testing.B) {
	graph := buildLinearGraph(10)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = graph.Compile()
	}
}

// BenchmarkCompile_Linear_50 compiles a 50-stage linear graph.
func BenchmarkCompile_Linear_50(b *testing.B) {
	graph := buildLinearGraph(50)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = graph.Compile()
	}
}

// BenchmarkCompile_Linear_100 compiles a 100-stage linear graph.
func BenchmarkCompile_Linear_100(b *testing.B) {
	graph := buildLinearGraph(100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = graph.Compile()
	}
}

// BenchmarkCompile_Branching compiles a graph with conditional edges.
func BenchmarkCompile_Branching(b *testing.B) {
	graph := buildBranchingGraph()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = graph.Compile()
	}
}

// Helper functions

func nodeID(n int) string {
	return string(rune('a'+n%26)) + string(rune('0'+n/26%10))
}

func buildLinearGraph(n int) *deckflow.Graph[DeckState] {
	graph := deckflow.NewGraph[DeckState]()
	for i := 0; i < n; i++ {
		graph.AddNode(nodeID(i), noopStage)
	}
	for i := 0; i < n-1; i++ {
		graph.AddEdge(nodeID(i), nodeID(i+1))
	}
	graph.AddEdge(nodeID(n-1), deckflow.END)
	graph.SetEntry(nodeID(0))
	return graph
}

func buildBranchingGraph() *deckflow.Graph[DeckState] {
	router := func(ctx deckflow.Context, s DeckState) string {
		if s.Slides < 20 {
			return "fast"
		}
		return "thorough"
	}

	return deckflow.NewGraph[DeckState]().
		AddNode("ingest", noopStage).
		AddNode("fast", noopStage).
		AddNode("thorough", noopStage).
		AddNode("export", noopStage).
		AddConditionalEdge("ingest", router).
		AddEdge("fast", "export").
		AddEdge("thorough", "export").
		AddEdge("export", deckflow.END).
		SetEntry("ingest")
}
