package pipeline

import (
	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

// Section is one structural section of the assembled document, keyed by
// its heading marker. Sections remember which slides produced them so
// chapter detection can assign slide ranges.
type Section struct {
	// Marker is the heading line that opens the section.
	Marker string `json:"marker"`
	// Body is the section content without the marker.
	Body string `json:"body"`
	// StartSlide is the first slide of the chunk that produced the section.
	StartSlide int `json:"start_slide"`
	// EndSlide is the last slide of the chunk that produced the section.
	EndSlide int `json:"end_slide"`
}

// ChunkContext is the running summary carried from one chunk to the
// next in sequential document extraction.
type ChunkContext struct {
	MainTopic   string   `json:"main_topic,omitempty"`
	KeyConcepts []string `json:"key_concepts,omitempty"`
}

// State is the pipeline state threaded through every stage. It is
// JSON-serializable so the executor can checkpoint it after each node.
//
// Fields fall into three groups: job inputs set once before the run,
// mergeable outputs that fan-out branches contribute through Merge,
// and branch-local working fields that never leave their branch.
type State struct {
	// Inputs.

	// Document is the source document.
	Document deck.Document `json:"document"`
	// FastMode skips claim verification entirely.
	FastMode bool `json:"fast_mode,omitempty"`
	// MaxAttempts bounds the verify-repair and critique-repair loops.
	MaxAttempts int `json:"max_attempts,omitempty"`

	// Branch-local working set.

	// Slide is the slide owned by the current fan-out branch.
	Slide *deck.Slide `json:"slide,omitempty"`
	// Region is the region owned by the current region worker.
	Region *deck.Region `json:"region,omitempty"`
	// Regions holds the segmented regions of the branch's slide.
	Regions []deck.Region `json:"regions,omitempty"`
	// FailedClaims holds indices into Claims flagged by verification.
	FailedClaims []int `json:"failed_claims,omitempty"`
	// Suggestions maps failed claim indices to suggested rewrites.
	Suggestions map[int]string `json:"suggestions,omitempty"`
	// Attempt counts completed repair cycles in the verify-repair loop.
	Attempt int `json:"attempt,omitempty"`

	// Mergeable outputs.

	// Claims holds all extracted claims.
	Claims []deck.Claim `json:"claims,omitempty"`
	// Cards holds all generated card drafts, duplicates included.
	Cards []deck.CardDraft `json:"cards,omitempty"`
	// UniqueCards holds the dedupe survivors.
	UniqueCards []deck.CardDraft `json:"unique_cards,omitempty"`
	// Exported holds the final non-rejected cards.
	Exported []deck.CardDraft `json:"exported,omitempty"`
	// RepairAttempts counts completed critique-repair cycles.
	RepairAttempts int `json:"repair_attempts,omitempty"`

	// Chunked-document path.

	// Images holds raw images extracted from the document.
	Images []deck.ExtractedImage `json:"images,omitempty"`
	// Processed holds classified and transcribed images.
	Processed []deck.ProcessedImage `json:"processed_images,omitempty"`
	// Chunks is the overlapping window plan for the document.
	Chunks []deck.DocumentChunk `json:"chunks,omitempty"`
	// Sections holds deduplicated per-chunk output sections.
	Sections []Section `json:"sections,omitempty"`
	// ChunkContext is the running topic summary during extraction.
	ChunkContext ChunkContext `json:"chunk_context,omitempty"`
	// Outline is the detected chapter structure.
	Outline deck.ChapterOutline `json:"outline,omitempty"`
	// Blocks holds the assembled markdown blocks.
	Blocks []deck.MarkdownBlock `json:"blocks,omitempty"`
	// Markdown is the final assembled document.
	Markdown string `json:"markdown,omitempty"`

	// Progress tracking.

	// Step names the last completed stage.
	Step string `json:"step,omitempty"`
	// Progress is a monotonically increasing completion counter.
	Progress int `json:"progress,omitempty"`
	// Errors accumulates non-fatal stage errors.
	Errors []string `json:"errors,omitempty"`
}

func cardKey(c deck.CardDraft) string {
	return c.Front + "\x00" + c.Back
}

// MergeStates combines a completed branch's state into the parent and
// is the MergeFunc used by every pipeline graph. Mergeable fields use
// order-independent policies so the result does not depend on branch
// completion order; branch-local fields keep the parent's values. Step
// is the one intentionally order-sensitive field: with concurrent
// branches the surviving value is whichever merge ran last.
func MergeStates(parent, branch State) State {
	merged := parent
	merged.Claims = deckflow.AppendDedupeFunc(parent.Claims, branch.Claims, deck.Claim.Key)
	merged.Cards = deckflow.AppendDedupeFunc(parent.Cards, branch.Cards, cardKey)
	merged.Blocks = deckflow.AppendDedupeFunc(parent.Blocks, branch.Blocks,
		func(b deck.MarkdownBlock) string { return b.AnchorID })
	merged.Errors = deckflow.AppendDedupe(parent.Errors, branch.Errors)
	merged.Step = deckflow.LatestNonEmpty(parent.Step, branch.Step)
	merged.Progress = deckflow.Max(parent.Progress, branch.Progress)
	merged.MaxAttempts = deckflow.First(parent.MaxAttempts, branch.MaxAttempts)
	merged.FastMode = deckflow.First(parent.FastMode, branch.FastMode)
	return merged
}

// AddError appends a non-fatal error message and returns the state.
func (s State) AddError(msg string) State {
	s.Errors = append(s.Errors, msg)
	return s
}

// At records the completed stage and bumps progress.
func (s State) At(step string) State {
	s.Step = step
	s.Progress++
	return s
}
