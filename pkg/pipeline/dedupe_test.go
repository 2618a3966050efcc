package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/model"
)

func card(front, back string) deck.CardDraft {
	return deck.CardDraft{Front: front, Back: back, Status: deck.StatusPending}
}

func TestJaccard(t *testing.T) {
	a := wordSet(normalizeFront("What is the capital of France?"))
	b := wordSet(normalizeFront("What's the capital of France"))
	c := wordSet(normalizeFront("What is 2+2?"))

	assert.Greater(t, jaccard(a, b), 0.85)
	assert.Less(t, jaccard(a, c), 0.5)
	assert.InDelta(t, 1.0, jaccard(a, a), 1e-9)
	assert.Zero(t, jaccard(a, wordSet("")))
}

func TestDedupe_JaccardThreshold(t *testing.T) {
	stages := NewStages(model.NewMock(), &FakeRenderer{}, Options{})

	st := State{Cards: []deck.CardDraft{
		card("What is the capital of France?", "Paris"),
		card("What's the capital of France", "Paris"),
		card("What is 2+2?", "4"),
	}}

	out, err := stages.Dedupe(testCtx(), st)
	require.NoError(t, err)

	// The near-duplicate is flagged and rejected but never deleted.
	require.Len(t, out.Cards, 3)
	assert.False(t, out.Cards[0].HasFlag(deck.FlagDuplicate))
	assert.True(t, out.Cards[1].HasFlag(deck.FlagDuplicate))
	assert.Equal(t, deck.StatusRejected, out.Cards[1].Status)
	assert.False(t, out.Cards[2].HasFlag(deck.FlagDuplicate))

	require.Len(t, out.UniqueCards, 2)
	assert.Equal(t, "What is the capital of France?", out.UniqueCards[0].Front)
	assert.Equal(t, "What is 2+2?", out.UniqueCards[1].Front)
}

func TestDedupe_ExactNormalizedMatch(t *testing.T) {
	stages := NewStages(model.NewMock(), &FakeRenderer{}, Options{})

	st := State{Cards: []deck.CardDraft{
		card("Define entropy.", "A measure of disorder"),
		card("  define ENTROPY  ", "Another answer"),
	}}

	out, err := stages.Dedupe(testCtx(), st)
	require.NoError(t, err)
	assert.Len(t, out.UniqueCards, 1)
	assert.True(t, out.Cards[1].HasFlag(deck.FlagDuplicate))
}

func TestDedupe_FirstOccurrenceWins(t *testing.T) {
	stages := NewStages(model.NewMock(), &FakeRenderer{}, Options{})

	st := State{Cards: []deck.CardDraft{
		card("What is X?", "first"),
		card("What is X?", "second"),
		card("What is X?", "third"),
	}}

	out, err := stages.Dedupe(testCtx(), st)
	require.NoError(t, err)
	require.Len(t, out.UniqueCards, 1)
	assert.Equal(t, "first", out.UniqueCards[0].Back)
}

func TestExport_FiltersRejected(t *testing.T) {
	stages := NewStages(model.NewMock(), &FakeRenderer{}, Options{})

	rejected := card("dup", "x")
	rejected.Status = deck.StatusRejected
	approved := card("good", "y")
	approved.Status = deck.StatusApproved

	st := State{Cards: []deck.CardDraft{card("pending", "z"), rejected, approved}}

	out, err := stages.Export(testCtx(), st)
	require.NoError(t, err)
	require.Len(t, out.Exported, 2)
	assert.Equal(t, "pending", out.Exported[0].Front)
	assert.Equal(t, "good", out.Exported[1].Front)
}

func TestDedupeThenExport_DuplicatesExcluded(t *testing.T) {
	stages := NewStages(model.NewMock(), &FakeRenderer{}, Options{})

	st := State{Cards: []deck.CardDraft{
		card("What is the capital of France?", "Paris"),
		card("What's the capital of France", "Paris"),
	}}

	st, err := stages.Dedupe(testCtx(), st)
	require.NoError(t, err)
	st, err = stages.Export(testCtx(), st)
	require.NoError(t, err)

	require.Len(t, st.Exported, 1)
	assert.Len(t, st.Cards, 2)
}
