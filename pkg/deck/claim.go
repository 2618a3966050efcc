package deck

import "fmt"

// ClaimKind classifies an extracted claim.
type ClaimKind string

const (
	ClaimDefinition   ClaimKind = "definition"
	ClaimFact         ClaimKind = "fact"
	ClaimProcess      ClaimKind = "process"
	ClaimRelationship ClaimKind = "relationship"
	ClaimExample      ClaimKind = "example"
	ClaimFormula      ClaimKind = "formula"
	ClaimOther        ClaimKind = "other"
)

// Evidence links a claim or card back to its source location.
type Evidence struct {
	// DocumentID optionally identifies the source document in
	// multi-document projects.
	DocumentID string `json:"document_id,omitempty"`
	// SlideIndex is the source slide's 0-based page index.
	SlideIndex int `json:"slide_index"`
	// BBox optionally narrows the evidence to a slide region.
	BBox *BoundingBox `json:"bbox,omitempty"`
	// TextSnippet optionally carries the relevant text excerpt.
	TextSnippet string `json:"text_snippet,omitempty"`
}

// Claim is an atomic piece of knowledge extracted from a slide.
// Repair and verification produce new Claim values rather than mutating
// in place, so branch-local state stays isolated until merge.
type Claim struct {
	// Kind is the claim classification.
	Kind ClaimKind `json:"kind"`
	// Statement is the claim text.
	Statement string `json:"statement"`
	// Confidence is the extraction confidence in [0, 1]. Verification
	// and repair re-bound it: supported >= 0.6, failed <= 0.4,
	// repaired within [0.5, 0.7].
	Confidence float64 `json:"confidence"`
	// Evidence is the source evidence for the claim.
	Evidence Evidence `json:"evidence"`
}

// Key returns a stable dedupe identity for the claim.
func (c Claim) Key() string {
	return fmt.Sprintf("%s:%s:%d", c.Kind, c.Statement, c.Evidence.SlideIndex)
}
