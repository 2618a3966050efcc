package pipeline

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/deckflow/pkg/deck"
)

// Prompts sent to the model backend. Wording is not contractual; every
// stage parses responses tolerantly and degrades on mismatch.

const extractClaimsPrompt = `Extract every atomic factual claim from this slide image.
Return JSON: {"claims": [{"kind": "definition|fact|process|relationship|example|formula|other", "statement": "...", "confidence": 0.0}]}`

const extractTextClaimsPrompt = `Extract every atomic factual claim from the slide text below.
Return JSON: {"claims": [{"kind": "definition|fact|process|relationship|example|formula|other", "statement": "...", "confidence": 0.0}]}

Slide text:
`

const segmentPrompt = `Segment this slide image into content regions.
Return JSON: {"regions": [{"kind": "title|bullets|table|equation|diagram|image|other", "bbox": {"x": 0.0, "y": 0.0, "width": 0.0, "height": 0.0}, "confidence": 0.0}]}
Coordinates are normalized to the slide (0-1).`

const generateCardsPrompt = `Write flashcards from the claims below. One card per distinct idea, question on the front, concise answer on the back.
Return JSON: {"cards": [{"front": "...", "back": "...", "tags": [], "confidence": 0.0}]}`

const critiqueCardsPrompt = `Review the flashcards below for quality problems: ambiguity, excessive length, missing context.
Return JSON with only the cards needing work: {"critiques": [{"index": 0, "flags": ["ambiguous"], "critique": "...", "suggested_front": "", "suggested_back": ""}]}`

const classifyImagePrompt = `Classify this image from a slide.
Return JSON: {"image_type": "formula|diagram|chart|code|table|photo|logo|decorative|unknown", "confidence": 0.0, "should_embed": false}`

const transcribeImagePrompt = `Transcribe this image exactly: LaTeX for formulas, plain code for code, a markdown table for tables.
Return JSON: {"transcription": "..."}`

const describeImagePrompt = `Describe what this image conveys in one or two sentences.
Return JSON: {"description": "..."}`

// verifyPrompt lists the claims under review against the region image.
func verifyPrompt(claims []deck.Claim, indices []int) string {
	var sb strings.Builder
	sb.WriteString(`Check each claim below against the slide image. For claims that are wrong or unverifiable, suggest a corrected statement when one is visible.
Return JSON: {"verifications": [{"index": 0, "verdict": "supported|unsupported|unclear", "reason": "...", "suggested_statement": ""}]}

Claims:
`)
	for _, i := range indices {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i, claims[i].Kind, claims[i].Statement)
	}
	return sb.String()
}

// repairPrompt asks for rewrites of the failed claims only.
func repairPrompt(claims []deck.Claim, failed []int, suggestions map[int]string) string {
	var sb strings.Builder
	sb.WriteString(`Rewrite each claim below so it is supported by the slide image. Return an empty statement for claims that cannot be supported.
Return JSON: {"repairs": [{"index": 0, "statement": "..."}]}

Claims:
`)
	for _, i := range failed {
		fmt.Fprintf(&sb, "%d. %s\n", i, claims[i].Statement)
		if sugg := suggestions[i]; sugg != "" {
			fmt.Fprintf(&sb, "   suggested: %s\n", sugg)
		}
	}
	return sb.String()
}

// repairCardsPrompt asks for rewrites of the flagged cards only.
func repairCardsPrompt(cards []deck.CardDraft, flagged []int) string {
	var sb strings.Builder
	sb.WriteString(`Rewrite each flashcard below to fix the noted problems. Keep the core idea.
Return JSON: {"cards": [{"index": 0, "front": "...", "back": "..."}]}

Cards:
`)
	for _, i := range flagged {
		c := cards[i]
		fmt.Fprintf(&sb, "%d. Q: %s\n   A: %s\n", i, c.Front, c.Back)
		if c.Critique != "" {
			fmt.Fprintf(&sb, "   problem: %s\n", c.Critique)
		}
		if len(c.Flags) > 0 {
			flags := make([]string, len(c.Flags))
			for j, f := range c.Flags {
				flags[j] = string(f)
			}
			fmt.Fprintf(&sb, "   flags: %s\n", strings.Join(flags, ", "))
		}
	}
	return sb.String()
}

// extractChunkPrompt asks for markdown extraction over a slide window,
// seeded with the previous window's running summary.
func extractChunkPrompt(chunk deck.DocumentChunk, slides []deck.Slide, prev ChunkContext) string {
	var sb strings.Builder
	sb.WriteString(`Convert the slide content below into structured markdown with "## " section headings.
Return JSON: {"markdown": "...", "main_topic": "...", "key_concepts": []}
`)
	if prev.MainTopic != "" {
		fmt.Fprintf(&sb, "\nDocument topic so far: %s\n", prev.MainTopic)
	}
	if len(prev.KeyConcepts) > 0 {
		fmt.Fprintf(&sb, "Key concepts so far: %s\n", strings.Join(prev.KeyConcepts, ", "))
	}
	fmt.Fprintf(&sb, "\nSlides %d-%d:\n", chunk.StartSlide, chunk.EndSlide)
	for _, idx := range chunk.SlideIndices {
		if idx < 0 || idx >= len(slides) {
			continue
		}
		fmt.Fprintf(&sb, "\n--- slide %d ---\n%s\n", idx, slides[idx].ExtractedText)
	}
	return sb.String()
}
