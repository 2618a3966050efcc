package deck

import "strconv"

// ChapterID derives a stable chapter identifier from the chapter's
// position and title, so re-detection over an unchanged document yields
// identical ids. Same derivation as AnchorID.
func ChapterID(order int, title string) string {
	return AnchorID("chapter", strconv.Itoa(order)+":"+title)
}

// Chapter is a logical section of the document, detected from explicit
// headings, topic transitions, or a table of contents.
type Chapter struct {
	// ChapterID uniquely identifies the chapter.
	ChapterID string `json:"chapter_id"`
	// Title is the chapter title.
	Title string `json:"title"`
	// Order is the 0-based position in the chapter sequence.
	Order int `json:"order"`
	// StartSlide is the first slide index belonging to the chapter.
	StartSlide int `json:"start_slide"`
	// EndSlide is the last slide index belonging to the chapter.
	EndSlide int `json:"end_slide"`
	// Summary optionally describes the chapter content.
	Summary string `json:"summary,omitempty"`
	// ParentChapterID links nested sections to their parent.
	ParentChapterID string `json:"parent_chapter_id,omitempty"`
}

// ChapterOutline is the complete chapter structure for a document.
type ChapterOutline struct {
	// DocumentName is the source document name.
	DocumentName string `json:"document_name"`
	// Chapters holds the ordered chapter list.
	Chapters []Chapter `json:"chapters,omitempty"`
	// TotalSlides is the number of slides in the document.
	TotalSlides int `json:"total_slides"`
}

// ChapterForSlide finds the chapter containing the given slide index.
// Returns nil if no chapter covers it.
func (o *ChapterOutline) ChapterForSlide(slideIndex int) *Chapter {
	for i := range o.Chapters {
		ch := &o.Chapters[i]
		if ch.StartSlide <= slideIndex && slideIndex <= ch.EndSlide {
			return ch
		}
	}
	return nil
}

// ChapterByID finds a chapter by its identifier.
// Returns nil if no chapter matches.
func (o *ChapterOutline) ChapterByID(chapterID string) *Chapter {
	for i := range o.Chapters {
		if o.Chapters[i].ChapterID == chapterID {
			return &o.Chapters[i]
		}
	}
	return nil
}
