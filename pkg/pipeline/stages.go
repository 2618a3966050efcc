package pipeline

import (
	"fmt"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
	"github.com/randalmurphal/deckflow/pkg/model"
)

// Stage node ids shared by the graph builders and routers.
const (
	StageIngest           = "ingest"
	StageRender           = "render"
	StageCollect          = "collect"
	StageSegment          = "segment"
	StageExtractRegion    = "extract_region"
	StageVerifyClaims     = "verify_claims"
	StageRepairClaims     = "repair_claims"
	StageWriteCards       = "write_cards"
	StageCritique         = "critique"
	StageRepairCards      = "repair_cards"
	StageDedupe           = "dedupe"
	StageExport           = "export"
	StageExtractImages    = "extract_images"
	StageClassifyImages   = "classify_images"
	StageTranscribeImages = "transcribe_images"
	StageExtractDocument  = "extract_document"
	StageDetectChapters   = "detect_chapters"
	StageAssembleMarkdown = "assemble_markdown"
	StageBuildMarkdown    = "build_markdown"

	nodeSlideWorker  = "slide_worker"
	nodeRegionWorker = "region_worker"
	nodeExtractSlide = "extract_slide"
)

// Stages bundles the pipeline stage functions with their collaborators.
// Every method with a NodeFunc signature is a graph node.
type Stages struct {
	client    model.Client
	renderer  Renderer
	extractor ImageExtractor
	opts      Options
}

// StagesOption configures optional collaborators.
type StagesOption func(*Stages)

// WithImageExtractor sets the extractor used by the chunked-document
// path. Without one, image extraction is skipped.
func WithImageExtractor(ex ImageExtractor) StagesOption {
	return func(s *Stages) { s.extractor = ex }
}

// NewStages creates the stage set.
func NewStages(client model.Client, renderer Renderer, opts Options, extra ...StagesOption) *Stages {
	s := &Stages{
		client:   client,
		renderer: renderer,
		opts:     opts.Normalize(),
	}
	for _, opt := range extra {
		opt(s)
	}
	return s
}

// Ingest validates the job input. Malformed input is fatal: there is
// nothing downstream that can recover a missing document.
func (s *Stages) Ingest(ctx deckflow.Context, st State) (State, error) {
	if !st.Document.HasSource() && len(st.Document.Slides) == 0 {
		return st, fmt.Errorf("ingest: document %q has no source", st.Document.Name)
	}
	if st.MaxAttempts == 0 {
		st.MaxAttempts = s.opts.MaxVerifyAttempts
	}
	if !st.FastMode {
		st.FastMode = s.opts.FastMode
	}

	ctx.Logger().Info("document ingested",
		"document", st.Document.Name,
		"pages", st.Document.PageCount)
	return st.At(StageIngest), nil
}

// Render rasterizes the document into slides. Pre-rendered documents
// pass through unchanged.
func (s *Stages) Render(ctx deckflow.Context, st State) (State, error) {
	if len(st.Document.Slides) > 0 {
		return st.At(StageRender), nil
	}

	slides, err := s.renderer.Render(ctx, st.Document)
	if err != nil {
		return st, fmt.Errorf("render: %w", err)
	}
	if len(slides) == 0 {
		return st, fmt.Errorf("render: document %q produced no slides", st.Document.Name)
	}

	st.Document.Slides = slides
	st.Document.PageCount = len(slides)

	ctx.Logger().Info("document rendered", "slides", len(slides))
	return st.At(StageRender), nil
}

// Collect is the join node after slide fan-out. The merged claims are
// already in place; it only records progress.
func (s *Stages) Collect(ctx deckflow.Context, st State) (State, error) {
	ctx.Logger().Info("slide branches collected", "claims", len(st.Claims))
	return st.At(StageCollect), nil
}

// DispatchSlides fans the document out into one branch per slide. Each
// branch owns a copy of the state with its slide set as branch-local.
func (s *Stages) DispatchSlides(target string) deckflow.DispatchFunc[State] {
	return func(ctx deckflow.Context, st State) []deckflow.Send[State] {
		sends := make([]deckflow.Send[State], 0, len(st.Document.Slides))
		for i := range st.Document.Slides {
			branch := st
			branch.Slide = &st.Document.Slides[i]
			branch.Claims = nil
			branch.Errors = nil
			sends = append(sends, deckflow.Send[State]{Node: target, State: branch})
		}
		return sends
	}
}

// DispatchRegions fans a slide branch out into one branch per region.
func (s *Stages) DispatchRegions(target string) deckflow.DispatchFunc[State] {
	return func(ctx deckflow.Context, st State) []deckflow.Send[State] {
		sends := make([]deckflow.Send[State], 0, len(st.Regions))
		for i := range st.Regions {
			branch := st
			branch.Region = &st.Regions[i]
			branch.Claims = nil
			branch.Errors = nil
			branch.FailedClaims = nil
			branch.Suggestions = nil
			branch.Attempt = 0
			sends = append(sends, deckflow.Send[State]{Node: target, State: branch})
		}
		return sends
	}
}

// claimFromRecord validates a backend claim record and converts it,
// attaching evidence for the given slide. Region-local evidence boxes
// are projected into slide coordinates.
func claimFromRecord(rec model.ClaimRecord, slideIndex int, region *deck.Region) (deck.Claim, bool) {
	if rec.Statement == "" {
		return deck.Claim{}, false
	}

	kind := deck.ClaimKind(rec.Kind)
	switch kind {
	case deck.ClaimDefinition, deck.ClaimFact, deck.ClaimProcess,
		deck.ClaimRelationship, deck.ClaimExample, deck.ClaimFormula:
	default:
		kind = deck.ClaimOther
	}

	conf := rec.Confidence
	if conf < 0 {
		conf = 0
	}
	if conf > 1 {
		conf = 1
	}

	ev := deck.Evidence{SlideIndex: slideIndex}
	if rec.Evidence != nil {
		ev.TextSnippet = rec.Evidence.TextSnippet
		if rec.Evidence.BBox != nil {
			box := *rec.Evidence.BBox
			if region != nil {
				box = box.ToSlide(region.BBox)
			}
			ev.BBox = &box
		}
	} else if region != nil {
		box := region.BBox
		ev.BBox = &box
	}

	return deck.Claim{
		Kind:       kind,
		Statement:  rec.Statement,
		Confidence: conf,
		Evidence:   ev,
	}, true
}
