package benchmarks

import (
	"context"
	"testing"

	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

// BenchmarkRun_Linear_5 runs a 5-stage linear graph.
func BenchmarkRun_Linear_5(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(5))
	ctx := deckflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, DeckState{})
	}
}

// BenchmarkRun_Linear_10 runs a 10-stage linear graph.
func BenchmarkRun_Linear_10(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(10))
	ctx := deckflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, DeckState{})
	}
}

// BenchmarkRun_Linear_50 runs a 50-stage linear graph.
func BenchmarkRun_Linear_50(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(50))
	ctx := deckflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, DeckState{})
	}
}

// BenchmarkRun_Linear_100 runs a 100-stage linear graph.
func BenchmarkRun_Linear_100(b *testing.B) {
	compiled := mustCompile(buildLinearGraph(100))
	ctx := deckflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, DeckState{})
	}
}

// BenchmarkRun_Branching runs a graph with conditional edges.
func BenchmarkRun_Branching(b *testing.B) {
	compiled := mustCompile(buildBranchingGraph())
	ctx := deckflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, DeckState{Slides: i % 40})
	}
}

// BenchmarkRun_RepairLoop runs a looping graph (3 rounds).
func BenchmarkRun_RepairLoop(b *testing.B) {
	compiled := mustCompile(buildRepairLoopGraph(3))
	ctx := deckflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, DeckState{})
	}
}

// BenchmarkRun_RepairLoop_10 runs a looping graph (10 rounds).
func BenchmarkRun_RepairLoop_10(b *testing.B) {
	compiled := mustCompile(buildRepairLoopGraph(10))
	ctx := deckflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, DeckState{})
	}
}

// BenchmarkRun_FanOut_10 dispatches and merges 10 parallel branches.
func BenchmarkRun_FanOut_10(b *testing.B) {
	compiled := mustCompile(buildFanOutGraph(10))
	ctx := deckflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, DeckState{})
	}
}

// BenchmarkRun_FanOut_100 dispatches and merges 100 parallel branches.
func BenchmarkRun_FanOut_100(b *testing.B) {
	compiled := mustCompile(buildFanOutGraph(100))
	ctx := deckflow.NewContext(context.Background())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = compiled.Run(ctx, DeckState{})
	}
}

// BenchmarkContextCreation measures context creation overhead.
func BenchmarkContextCreation(b *testing.B) {
	bg := context.Background()
	for i := 0; i < b.N; i++ {
		deckflow.NewContext(bg)
	}
}

// Helper functions

func mustCompile(g *deckflow.Graph[DeckState]) *deckflow.CompiledGraph[DeckState] {
	compiled, err := g.Compile()
	if err != nil {
		panic(err)
	}
	return compiled
}

func buildRepairLoopGraph(maxRounds int) *deckflow.Graph[DeckState] {
	rounds := 0
	repair := func(ctx deckflow.Context, s DeckState) (DeckState, error) {
		s.Slides++
		return s, nil
	}

	router := func(ctx deckflow.Context, s DeckState) string {
		rounds++
		if rounds >= maxRounds {
			rounds = 0 // reset for the next run
			return "export"
		}
		return "repair"
	}

	return deckflow.NewGraph[DeckState]().
		AddNode("repair", repair).
		AddNode("export", noopStage).
		AddConditionalEdge("repair", router).
		AddEdge("export", deckflow.END).
		SetEntry("repair")
}

func buildFanOutGraph(branches int) *deckflow.Graph[DeckState] {
	dispatch := func(ctx deckflow.Context, s DeckState) []deckflow.Send[DeckState] {
		sends := make([]deckflow.Send[DeckState], branches)
		for i := range sends {
			sends[i] = deckflow.Send[DeckState]{Node: "extract", State: s}
		}
		return sends
	}
	extract := func(ctx deckflow.Context, s DeckState) (DeckState, error) {
		s.Claims = append(s.Claims, "claim")
		return s, nil
	}
	merge := func(parent, branch DeckState) DeckState {
		parent.Claims = append(parent.Claims, branch.Claims...)
		return parent
	}

	return deckflow.NewGraph[DeckState]().
		AddNode("segment", noopStage).
		AddNode("extract", extract).
		AddNode("collect", noopStage).
		AddFanOut("segment", dispatch, "collect").
		AddEdge("collect", deckflow.END).
		SetEntry("segment").
		SetMerger(merge)
}
