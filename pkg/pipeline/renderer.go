package pipeline

import (
	"context"
	"fmt"

	"github.com/randalmurphal/deckflow/pkg/deck"
)

// Renderer rasterizes a document into slides. PDF rasterization needs
// an external binary, so the pipeline treats it as a collaborator.
type Renderer interface {
	// Render returns the document's pages as slides, in page order.
	Render(ctx context.Context, doc deck.Document) ([]deck.Slide, error)
}

// ImageExtractor pulls embedded images out of a document for the
// chunked knowledge-base path.
type ImageExtractor interface {
	// ExtractImages returns every embedded image with its slide position
	// and occurrence count across slides.
	ExtractImages(ctx context.Context, doc deck.Document) ([]deck.ExtractedImage, error)
}

// FakeRenderer is a Renderer for tests and examples. It fabricates one
// text-only slide per page using the configured page texts, or
// PageCount blank slides when no texts are given.
type FakeRenderer struct {
	// PageTexts supplies per-page extracted text. When set, its length
	// determines the page count.
	PageTexts []string
	// Width and Height are applied to every slide.
	Width  int
	Height int
	// Err, when set, is returned by Render.
	Err error
}

// Render implements Renderer.
func (f *FakeRenderer) Render(_ context.Context, doc deck.Document) ([]deck.Slide, error) {
	if f.Err != nil {
		return nil, f.Err
	}

	count := len(f.PageTexts)
	if count == 0 {
		count = doc.PageCount
	}
	if count == 0 {
		return nil, fmt.Errorf("render %q: no pages", doc.Name)
	}

	width, height := f.Width, f.Height
	if width == 0 {
		width = 1280
	}
	if height == 0 {
		height = 720
	}

	slides := make([]deck.Slide, count)
	for i := range slides {
		slides[i] = deck.Slide{
			PageIndex:  i,
			Width:      width,
			Height:     height,
			IsTextOnly: true,
		}
		if i < len(f.PageTexts) {
			slides[i].ExtractedText = f.PageTexts[i]
		}
	}
	return slides, nil
}

// FakeImageExtractor is an ImageExtractor for tests and examples.
type FakeImageExtractor struct {
	Images []deck.ExtractedImage
	Err    error
}

// ExtractImages implements ImageExtractor.
func (f *FakeImageExtractor) ExtractImages(_ context.Context, _ deck.Document) ([]deck.ExtractedImage, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Images, nil
}
