package pipeline

import (
	"strings"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

// contractions maps common interrogative contractions to their
// expansions so trivially rephrased fronts compare as equal.
var contractions = strings.NewReplacer(
	"what's", "what is",
	"who's", "who is",
	"where's", "where is",
	"when's", "when is",
	"how's", "how is",
	"that's", "that is",
	"it's", "it is",
)

// normalizeFront prepares a card front for duplicate comparison:
// lowercase, trimmed, contractions expanded, punctuation stripped.
func normalizeFront(front string) string {
	s := strings.ToLower(strings.TrimSpace(front))
	s = contractions.Replace(s)
	var sb strings.Builder
	for _, r := range s {
		switch r {
		case '?', '!', '.', ',', ';', ':', '\'', '"':
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// wordSet splits a normalized front into its unique words.
func wordSet(s string) map[string]struct{} {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(s) {
		words[w] = struct{}{}
	}
	return words
}

// jaccard computes word-set Jaccard similarity between two normalized
// fronts. Empty inputs have similarity 0.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for w := range a {
		if _, ok := b[w]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}

// Dedupe flags duplicate cards. A card duplicates an earlier accepted
// card when its normalized front matches exactly or the word-set
// Jaccard similarity exceeds the threshold. Duplicates are flagged and
// rejected so export drops them, but never deleted; the flag stays on
// the record for audit.
func (s *Stages) Dedupe(ctx deckflow.Context, st State) (State, error) {
	type accepted struct {
		norm  string
		words map[string]struct{}
	}

	var kept []accepted
	st.UniqueCards = nil
	duplicates := 0

	for i := range st.Cards {
		card := &st.Cards[i]
		norm := normalizeFront(card.Front)
		words := wordSet(norm)

		isDup := false
		for _, prev := range kept {
			if prev.norm == norm || jaccard(prev.words, words) > s.opts.JaccardThreshold {
				isDup = true
				break
			}
		}

		if isDup {
			card.AddFlag(deck.FlagDuplicate)
			card.Status = deck.StatusRejected
			duplicates++
			continue
		}
		kept = append(kept, accepted{norm: norm, words: words})
		st.UniqueCards = append(st.UniqueCards, *card)
	}

	ctx.Logger().Info("cards deduplicated",
		"cards", len(st.Cards),
		"unique", len(st.UniqueCards),
		"duplicates", duplicates)
	return st.At(StageDedupe), nil
}

// Export filters to non-rejected cards. This is the single authoritative
// filter for what ships.
func (s *Stages) Export(ctx deckflow.Context, st State) (State, error) {
	st.Exported = nil
	for _, card := range st.Cards {
		if card.Status != deck.StatusRejected {
			st.Exported = append(st.Exported, card)
		}
	}

	ctx.Logger().Info("cards exported",
		"exported", len(st.Exported),
		"total", len(st.Cards))
	return st.At(StageExport), nil
}
