package pipeline

import (
	"fmt"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
	"github.com/randalmurphal/deckflow/pkg/model"
)

// WriteCards turns the collected claims into card drafts. Claims that
// never recovered from verification stay out of the card input.
func (s *Stages) WriteCards(ctx deckflow.Context, st State) (State, error) {
	input := make([]deck.Claim, 0, len(st.Claims))
	for _, c := range st.Claims {
		if c.Confidence >= 0.5 {
			input = append(input, c)
		}
	}
	if len(input) == 0 {
		ctx.Logger().Warn("no claims eligible for card writing")
		return st.At(StageWriteCards), nil
	}

	records, err := s.client.GenerateCards(ctx, input, generateCardsPrompt)
	if err != nil {
		return st, fmt.Errorf("write cards: %w", err)
	}

	for _, rec := range records {
		if rec.Front == "" || rec.Back == "" {
			continue
		}
		st.Cards = append(st.Cards, deck.CardDraft{
			Front:      rec.Front,
			Back:       rec.Back,
			Tags:       rec.Tags,
			Confidence: rec.Confidence,
			Status:     deck.StatusPending,
		})
	}

	ctx.Logger().Info("cards written",
		"claims", len(input), "cards", len(st.Cards))
	return st.At(StageWriteCards), nil
}

// Critique reviews the drafts and records flags and critique text on
// the cards needing work. Suggested rewrites from the critic are
// applied immediately; anything else waits for the repair stage.
func (s *Stages) Critique(ctx deckflow.Context, st State) (State, error) {
	if len(st.Cards) == 0 {
		return st.At(StageCritique), nil
	}

	records, err := s.client.CritiqueCards(ctx, st.Cards, critiqueCardsPrompt)
	if err != nil {
		return st, fmt.Errorf("critique: %w", err)
	}

	flagged := 0
	for _, rec := range records {
		if rec.Index < 0 || rec.Index >= len(st.Cards) {
			continue
		}
		card := &st.Cards[rec.Index]
		for _, f := range rec.Flags {
			card.AddFlag(deck.CardFlag(f))
		}
		if rec.Critique != "" {
			card.Critique = rec.Critique
		}
		if rec.SuggestedFront != "" {
			card.Front = rec.SuggestedFront
		}
		if rec.SuggestedBack != "" {
			card.Back = rec.SuggestedBack
		}
		flagged++
	}

	ctx.Logger().Debug("cards critiqued",
		"cards", len(st.Cards),
		"flagged", flagged,
		"attempt", st.RepairAttempts)
	return st.At(StageCritique), nil
}

// CritiqueRouter routes after critique: clean decks and exhausted
// repair budgets go to dedupe, flagged cards with budget left go to
// repair.
func (s *Stages) CritiqueRouter(ctx deckflow.Context, st State) string {
	if st.RepairAttempts >= s.opts.MaxCritiqueAttempts {
		return StageDedupe
	}
	for i := range st.Cards {
		if st.Cards[i].NeedsRepair() {
			return StageRepairCards
		}
	}
	return StageDedupe
}

// RepairCards rewrites only the flagged cards. A rewrite counts only
// when both sides come back non-empty; it replaces the card text and
// clears the repair state so the critique loop can converge. Failed
// rewrites leave the card as-is for the next critique round, up to the
// attempt ceiling.
func (s *Stages) RepairCards(ctx deckflow.Context, st State) (State, error) {
	var flagged []int
	for i := range st.Cards {
		if st.Cards[i].NeedsRepair() {
			flagged = append(flagged, i)
		}
	}
	if len(flagged) == 0 {
		st.RepairAttempts++
		return st.At(StageRepairCards), nil
	}

	raw, err := s.client.GenerateStructured(ctx, repairCardsPrompt(st.Cards, flagged), nil)
	if err != nil {
		return st, fmt.Errorf("repair cards: %w", err)
	}

	repaired := 0
	for _, rec := range model.ParseRecords[model.CardRepairRecord](raw, "cards") {
		if rec.Index < 0 || rec.Index >= len(st.Cards) {
			continue
		}
		if rec.Front == "" || rec.Back == "" {
			continue
		}
		card := &st.Cards[rec.Index]
		card.Front = rec.Front
		card.Back = rec.Back
		card.ClearRepairState()
		repaired++
	}

	st.RepairAttempts++

	ctx.Logger().Debug("cards repaired",
		"flagged", len(flagged),
		"repaired", repaired,
		"attempt", st.RepairAttempts)
	return st.At(StageRepairCards), nil
}
