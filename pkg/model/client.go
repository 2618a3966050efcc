// Package model defines the pluggable model-backend client used by the
// pipeline: four capabilities (claim extraction, structured generation,
// card generation, card critique), a CLI-backed implementation, a mock
// for tests, and decorators for rate limiting, retries, and fallback.
package model

import (
	"context"
	"encoding/json"

	"github.com/randalmurphal/deckflow/pkg/deck"
)

// EvidenceRecord is the evidence payload a backend may attach to a claim.
type EvidenceRecord struct {
	BBox        *deck.BoundingBox `json:"bbox,omitempty"`
	TextSnippet string            `json:"text_snippet,omitempty"`
}

// ClaimRecord is one claim as returned by a backend, before it is
// validated and converted into a deck.Claim.
type ClaimRecord struct {
	Kind       string          `json:"kind"`
	Statement  string          `json:"statement"`
	Confidence float64         `json:"confidence"`
	Evidence   *EvidenceRecord `json:"evidence,omitempty"`
}

// CardRecord is one flashcard draft as returned by a backend.
type CardRecord struct {
	Front      string   `json:"front"`
	Back       string   `json:"back"`
	Tags       []string `json:"tags,omitempty"`
	Confidence float64  `json:"confidence"`
}

// CritiqueRecord is one critique item as returned by a backend.
// Only cards that need improvement are included.
type CritiqueRecord struct {
	Index          int      `json:"index"`
	Flags          []string `json:"flags,omitempty"`
	Critique       string   `json:"critique,omitempty"`
	SuggestedFront string   `json:"suggested_front,omitempty"`
	SuggestedBack  string   `json:"suggested_back,omitempty"`
}

// VerificationRecord is one verdict from the claim verification stage.
type VerificationRecord struct {
	Index              int    `json:"index"`
	Verdict            string `json:"verdict"`
	Reason             string `json:"reason,omitempty"`
	SuggestedStatement string `json:"suggested_statement,omitempty"`
}

// Claim verdicts.
const (
	VerdictSupported   = "supported"
	VerdictUnsupported = "unsupported"
	VerdictUnclear     = "unclear"
)

// RepairRecord is one rewritten claim statement from the repair stage.
// An empty statement means the claim could not be supported.
type RepairRecord struct {
	Index     int    `json:"index"`
	Statement string `json:"statement"`
}

// CardRepairRecord is one rewritten card from the card repair stage.
type CardRepairRecord struct {
	Index int    `json:"index"`
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Client is the model-backend capability set the pipeline consumes.
// Every call is fallible and safe to retry; implementations must honor
// context cancellation.
type Client interface {
	// ExtractClaims extracts claims from a slide or region image.
	ExtractClaims(ctx context.Context, image []byte, prompt string) ([]ClaimRecord, error)

	// GenerateStructured returns the raw JSON payload for a prompt that
	// specifies its own output format. Callers parse it tolerantly.
	GenerateStructured(ctx context.Context, prompt string, image []byte) (json.RawMessage, error)

	// GenerateCards turns claims into flashcard drafts.
	GenerateCards(ctx context.Context, claims []deck.Claim, prompt string) ([]CardRecord, error)

	// CritiqueCards reviews card drafts and flags quality issues.
	CritiqueCards(ctx context.Context, cards []deck.CardDraft, prompt string) ([]CritiqueRecord, error)
}
