package pipeline

import (
	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

// BuildRegionGraph compiles the per-region worker: extraction followed
// by a bounded verify-repair loop.
//
//	extract_region -> (end | verify_claims) -> (repair_claims -> verify_claims)* -> end
func (s *Stages) BuildRegionGraph() (*deckflow.CompiledGraph[State], error) {
	return deckflow.NewGraph[State]().
		AddNode(StageExtractRegion, s.ExtractRegion).
		AddNode(StageVerifyClaims, s.VerifyClaims).
		AddNode(StageRepairClaims, s.RepairClaims).
		AddConditionalEdge(StageExtractRegion, s.ExtractRouter).
		AddConditionalEdge(StageVerifyClaims, s.VerifyRouter).
		AddEdge(StageRepairClaims, StageVerifyClaims).
		SetEntry(StageExtractRegion).
		Compile()
}

// BuildSlideGraph compiles the per-slide worker: segmentation followed
// by a fan-out over the slide's regions.
func (s *Stages) BuildSlideGraph() (*deckflow.CompiledGraph[State], error) {
	regionGraph, err := s.BuildRegionGraph()
	if err != nil {
		return nil, err
	}

	return deckflow.NewGraph[State]().
		AddNode(StageSegment, s.Segment).
		AddGraphNode(nodeRegionWorker, regionGraph).
		AddNode(StageCollect, s.Collect).
		AddFanOut(StageSegment, s.DispatchRegions(nodeRegionWorker), StageCollect).
		AddEdge(StageCollect, deckflow.END).
		SetMerger(MergeStates).
		SetFanOutConfig(deckflow.FanOutConfig{MaxConcurrency: s.opts.MaxConcurrency}).
		SetEntry(StageSegment).
		Compile()
}

// BuildCardGraph compiles the full card pipeline: ingest, render,
// a fan-out over slides into the region-segmenting slide worker, then
// card writing with the bounded critique-repair loop, dedupe, and
// export.
func (s *Stages) BuildCardGraph() (*deckflow.CompiledGraph[State], error) {
	slideGraph, err := s.BuildSlideGraph()
	if err != nil {
		return nil, err
	}
	return s.buildCardGraph(slideGraph)
}

// BuildSimpleCardGraph is the non-region variant: each slide branch
// extracts claims from the whole slide image, skipping segmentation.
func (s *Stages) BuildSimpleCardGraph() (*deckflow.CompiledGraph[State], error) {
	slideGraph, err := deckflow.NewGraph[State]().
		AddNode(nodeExtractSlide, s.ExtractRegion).
		AddNode(StageVerifyClaims, s.VerifyClaims).
		AddNode(StageRepairClaims, s.RepairClaims).
		AddConditionalEdge(nodeExtractSlide, s.ExtractRouter).
		AddConditionalEdge(StageVerifyClaims, s.VerifyRouter).
		AddEdge(StageRepairClaims, StageVerifyClaims).
		SetEntry(nodeExtractSlide).
		Compile()
	if err != nil {
		return nil, err
	}
	return s.buildCardGraph(slideGraph)
}

func (s *Stages) buildCardGraph(slideGraph *deckflow.CompiledGraph[State]) (*deckflow.CompiledGraph[State], error) {
	return deckflow.NewGraph[State]().
		AddNode(StageIngest, s.Ingest).
		AddNode(StageRender, s.Render).
		AddGraphNode(nodeSlideWorker, slideGraph).
		AddNode(StageCollect, s.Collect).
		AddNode(StageWriteCards, s.WriteCards).
		AddNode(StageCritique, s.Critique).
		AddNode(StageRepairCards, s.RepairCards).
		AddNode(StageDedupe, s.Dedupe).
		AddNode(StageExport, s.Export).
		AddEdge(StageIngest, StageRender).
		AddFanOut(StageRender, s.DispatchSlides(nodeSlideWorker), StageCollect).
		AddEdge(StageCollect, StageWriteCards).
		AddEdge(StageWriteCards, StageCritique).
		AddConditionalEdge(StageCritique, s.CritiqueRouter).
		AddEdge(StageRepairCards, StageCritique).
		AddEdge(StageDedupe, StageExport).
		AddEdge(StageExport, deckflow.END).
		SetMerger(MergeStates).
		SetFanOutConfig(deckflow.FanOutConfig{MaxConcurrency: s.opts.MaxConcurrency}).
		SetEntry(StageIngest).
		Compile()
}

// BuildHolisticGraph compiles the chunked knowledge-base pipeline:
// sequential document extraction with chapter detection and a final
// assembled markdown document.
func (s *Stages) BuildHolisticGraph() (*deckflow.CompiledGraph[State], error) {
	return deckflow.NewGraph[State]().
		AddNode(StageIngest, s.Ingest).
		AddNode(StageRender, s.Render).
		AddNode(StageExtractImages, s.ExtractImages).
		AddNode(StageClassifyImages, s.ClassifyImages).
		AddNode(StageTranscribeImages, s.TranscribeImages).
		AddNode(StageExtractDocument, s.ExtractDocument).
		AddNode(StageDetectChapters, s.DetectChapters).
		AddNode(StageAssembleMarkdown, s.AssembleMarkdown).
		AddEdge(StageIngest, StageRender).
		AddEdge(StageRender, StageExtractImages).
		AddEdge(StageExtractImages, StageClassifyImages).
		AddEdge(StageClassifyImages, StageTranscribeImages).
		AddEdge(StageTranscribeImages, StageExtractDocument).
		AddEdge(StageExtractDocument, StageDetectChapters).
		AddEdge(StageDetectChapters, StageAssembleMarkdown).
		AddEdge(StageAssembleMarkdown, deckflow.END).
		SetEntry(StageIngest).
		Compile()
}
