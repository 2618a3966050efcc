package pipeline

import (
	"strings"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

// tocMarkers identify a table-of-contents slide.
var tocMarkers = []string{"table of contents", "contents", "agenda", "outline"}

// DetectChapters builds the chapter outline. A table-of-contents slide
// near the front of the deck wins when one exists; otherwise top-level
// headings from the extracted sections define the chapters. Decks with
// neither get a single chapter covering everything.
func (s *Stages) DetectChapters(ctx deckflow.Context, st State) (State, error) {
	total := len(st.Document.Slides)
	if total == 0 {
		total = st.Document.PageCount
	}

	chapters := chaptersFromTOC(st.Document.Slides)
	source := "toc"
	if len(chapters) == 0 {
		chapters = chaptersFromSections(st.Sections)
		source = "headings"
	}
	if len(chapters) == 0 {
		chapters = []deck.Chapter{{
			ChapterID:  deck.ChapterID(0, st.Document.Name),
			Title:      st.Document.Name,
			StartSlide: 0,
			EndSlide:   max(total-1, 0),
		}}
		source = "fallback"
	}

	// Close each chapter's range at the next chapter's start.
	for i := range chapters {
		chapters[i].Order = i
		if i+1 < len(chapters) {
			chapters[i].EndSlide = chapters[i+1].StartSlide - 1
			if chapters[i].EndSlide < chapters[i].StartSlide {
				chapters[i].EndSlide = chapters[i].StartSlide
			}
		} else if total > 0 {
			chapters[i].EndSlide = total - 1
		}
	}

	st.Outline = deck.ChapterOutline{
		DocumentName: st.Document.Name,
		Chapters:     chapters,
		TotalSlides:  total,
	}

	ctx.Logger().Info("chapters detected",
		"chapters", len(chapters), "source", source)
	return st.At(StageDetectChapters), nil
}

// chaptersFromTOC scans the first slides for a table-of-contents page
// and lifts its entries into chapters. Entry slide positions are found
// by locating each title in later slide text.
func chaptersFromTOC(slides []deck.Slide) []deck.Chapter {
	limit := len(slides)
	if limit > 5 {
		limit = 5
	}

	tocIndex := -1
	var titles []string
	for i := 0; i < limit; i++ {
		text := strings.ToLower(slides[i].ExtractedText)
		for _, marker := range tocMarkers {
			if strings.Contains(text, marker) {
				tocIndex = i
				titles = tocEntries(slides[i].ExtractedText)
				break
			}
		}
		if tocIndex >= 0 {
			break
		}
	}
	if len(titles) == 0 {
		return nil
	}

	var chapters []deck.Chapter
	searchFrom := tocIndex + 1
	for _, title := range titles {
		start := findSlideWithTitle(slides, title, searchFrom)
		if start < 0 {
			continue
		}
		searchFrom = start + 1
		chapters = append(chapters, deck.Chapter{
			ChapterID:  deck.ChapterID(len(chapters), title),
			Title:      title,
			StartSlide: start,
		})
	}
	return chapters
}

// tocEntries extracts candidate chapter titles from a TOC slide: every
// non-empty line after the heading, stripped of list bullets and
// numbering.
func tocEntries(text string) []string {
	var entries []string
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == 0 {
			// The heading line itself.
			continue
		}
		entry := strings.TrimSpace(line)
		entry = strings.TrimLeft(entry, "-*•0123456789. \t")
		if entry == "" || len(entry) < 3 {
			continue
		}
		entries = append(entries, entry)
	}
	return entries
}

// findSlideWithTitle locates the first slide at or after from whose
// text contains the title (case-insensitive).
func findSlideWithTitle(slides []deck.Slide, title string, from int) int {
	needle := strings.ToLower(title)
	for i := from; i < len(slides); i++ {
		if strings.Contains(strings.ToLower(slides[i].ExtractedText), needle) {
			return i
		}
	}
	return -1
}

// chaptersFromSections derives chapters from top-level "# " and "## "
// section headings, using each section's source chunk to place it.
func chaptersFromSections(sections []Section) []deck.Chapter {
	var chapters []deck.Chapter
	for _, sec := range sections {
		if !strings.HasPrefix(sec.Marker, "# ") && !strings.HasPrefix(sec.Marker, "## ") {
			continue
		}
		title := strings.TrimSpace(strings.TrimLeft(sec.Marker, "# "))
		if title == "" {
			continue
		}
		chapters = append(chapters, deck.Chapter{
			ChapterID:  deck.ChapterID(len(chapters), title),
			Title:      title,
			StartSlide: sec.StartSlide,
			EndSlide:   sec.EndSlide,
		})
	}
	return chapters
}
