// Package deck defines the domain model for slide-deck processing:
// documents and slides, segmented regions, extracted claims with evidence,
// flashcard drafts, markdown blocks with stable anchors, chapter outlines,
// and the chunking scheme used for large documents.
package deck
