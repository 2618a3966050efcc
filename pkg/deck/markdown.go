package deck

import (
	"crypto/sha256"
	"encoding/hex"
)

// MarkdownBlock is a structured piece of the canonical knowledge base
// with evidence and ordering.
type MarkdownBlock struct {
	// AnchorID is the stable content-derived identifier for the block.
	AnchorID string `json:"anchor_id"`
	// Kind is the block type (definition, fact, formula, section, ...).
	Kind string `json:"kind"`
	// Content is the markdown content.
	Content string `json:"content"`
	// Evidence holds source references for the block.
	Evidence []Evidence `json:"evidence,omitempty"`
	// PositionIndex orders blocks within their chapter.
	PositionIndex int `json:"position_index"`
	// ChapterTitle is the chapter the block belongs to.
	ChapterTitle string `json:"chapter_title"`
}

// AnchorID derives the stable anchor for a block from its kind and
// content: the first 12 hex characters of SHA-256("kind:content").
// Identical input always yields an identical anchor, which makes
// re-extraction over unchanged documents idempotent.
func AnchorID(kind, content string) string {
	sum := sha256.Sum256([]byte(kind + ":" + content))
	return hex.EncodeToString(sum[:])[:12]
}

// NewMarkdownBlock builds a block with its anchor derived from kind
// and content.
func NewMarkdownBlock(kind, content, chapterTitle string, position int) MarkdownBlock {
	return MarkdownBlock{
		AnchorID:      AnchorID(kind, content),
		Kind:          kind,
		Content:       content,
		PositionIndex: position,
		ChapterTitle:  chapterTitle,
	}
}
