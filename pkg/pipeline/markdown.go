package pipeline

import (
	"sort"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

// BuildMarkdown turns the collected claims into markdown blocks grouped
// by source slide, in slide order. Anchor ids are content-derived, so
// re-running over unchanged input produces identical blocks and the
// merge into persisted state is idempotent.
func (s *Stages) BuildMarkdown(ctx deckflow.Context, st State) (State, error) {
	bySlide := make(map[int][]deck.Claim)
	for _, c := range st.Claims {
		bySlide[c.Evidence.SlideIndex] = append(bySlide[c.Evidence.SlideIndex], c)
	}

	slideIndices := make([]int, 0, len(bySlide))
	for idx := range bySlide {
		slideIndices = append(slideIndices, idx)
	}
	sort.Ints(slideIndices)

	position := 0
	var blocks []deck.MarkdownBlock
	for _, idx := range slideIndices {
		chapterTitle := ""
		if ch := st.Outline.ChapterForSlide(idx); ch != nil {
			chapterTitle = ch.Title
		}
		for _, c := range bySlide[idx] {
			block := deck.NewMarkdownBlock(string(c.Kind), c.Statement, chapterTitle, position)
			block.Evidence = []deck.Evidence{c.Evidence}
			blocks = append(blocks, block)
			position++
		}
	}

	st.Blocks = blocks

	ctx.Logger().Info("markdown blocks built", "blocks", len(blocks))
	return st.At(StageBuildMarkdown), nil
}
