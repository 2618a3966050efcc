package pipeline

import (
	"fmt"
	"strings"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

// AssembleMarkdown builds the final knowledge-base document from the
// deduplicated sections and processed images. Each section becomes a
// markdown block with a content-derived anchor; images are inserted
// into the section whose slide range covers their source slide.
func (s *Stages) AssembleMarkdown(ctx deckflow.Context, st State) (State, error) {
	var blocks []deck.MarkdownBlock
	var sb strings.Builder

	if st.Document.Name != "" {
		fmt.Fprintf(&sb, "# %s\n\n", st.Document.Name)
	}

	placed := make(map[string]bool, len(st.Processed))

	for i, sec := range st.Sections {
		content := sec.Body
		if sec.Marker != "" {
			content = sec.Marker + "\n\n" + sec.Body
		}

		// Pull in images whose slide falls inside this section's range.
		for j := range st.Processed {
			img := &st.Processed[j]
			if placed[img.ImageID] {
				continue
			}
			if img.SlideIndex < sec.StartSlide || img.SlideIndex > sec.EndSlide {
				continue
			}
			if rendered := img.ToMarkdown(); rendered != "" {
				content += "\n\n" + rendered
				placed[img.ImageID] = true
			}
		}

		chapterTitle := ""
		if ch := st.Outline.ChapterForSlide(sec.StartSlide); ch != nil {
			chapterTitle = ch.Title
		}

		block := deck.NewMarkdownBlock("section", content, chapterTitle, i)
		block.Evidence = []deck.Evidence{{SlideIndex: sec.StartSlide}}
		blocks = append(blocks, block)

		fmt.Fprintf(&sb, "<!-- block:%s -->\n%s\n\n", block.AnchorID, content)
	}

	// Images that matched no section go at the end rather than vanishing.
	var orphans []string
	for j := range st.Processed {
		img := &st.Processed[j]
		if placed[img.ImageID] {
			continue
		}
		if rendered := img.ToMarkdown(); rendered != "" {
			orphans = append(orphans, rendered)
		}
	}
	if len(orphans) > 0 {
		content := "## Extracted Figures\n\n" + strings.Join(orphans, "\n\n")
		block := deck.NewMarkdownBlock("section", content, "", len(blocks))
		blocks = append(blocks, block)
		fmt.Fprintf(&sb, "<!-- block:%s -->\n%s\n\n", block.AnchorID, content)
	}

	st.Blocks = blocks
	st.Markdown = strings.TrimSpace(sb.String()) + "\n"

	ctx.Logger().Info("markdown assembled",
		"blocks", len(blocks),
		"bytes", len(st.Markdown))
	return st.At(StageAssembleMarkdown), nil
}
