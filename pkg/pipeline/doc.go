// Package pipeline implements the slide-deck to flashcard pipeline on
// top of the deckflow executor: stage functions over a shared State,
// graph builders for the card and holistic document paths, and a job
// runner with checkpoint, resume, and cancellation.
//
// Stages are pure transformations from State to State. Branch-local
// fields (the current slide, region, and repair bookkeeping) stay
// inside their fan-out branch; only the mergeable fields flow back to
// the parent through State.Merge.
package pipeline
