package deck

// Slide is a single rendered page of a document.
// Slides are created by the render stage and immutable thereafter.
type Slide struct {
	// PageIndex is the 0-based page index in the source document.
	PageIndex int `json:"page_index"`
	// ImageData holds the rasterized page as PNG bytes, if rendered.
	ImageData []byte `json:"image_data,omitempty"`
	// Width is the image width in pixels.
	Width int `json:"width"`
	// Height is the image height in pixels.
	Height int `json:"height"`
	// IsTextOnly marks pages with no meaningful images or diagrams.
	// Text-only slides take the text extraction path and skip verification.
	IsTextOnly bool `json:"is_text_only"`
	// ExtractedText holds text pulled directly from the document for
	// text-only pages.
	ExtractedText string `json:"extracted_text,omitempty"`
}

// Document is a source document being processed into cards.
type Document struct {
	// Name is the document or deck name.
	Name string `json:"name"`
	// PDFPath is the path to the source PDF, if loaded from disk.
	PDFPath string `json:"pdf_path,omitempty"`
	// PDFData holds raw PDF bytes, if supplied directly.
	PDFData []byte `json:"pdf_data,omitempty"`
	// PageCount is the number of pages in the document.
	PageCount int `json:"page_count"`
	// Slides holds the rendered slides in page order.
	Slides []Slide `json:"slides,omitempty"`
}

// HasSource reports whether the document carries any usable input.
func (d *Document) HasSource() bool {
	return d.PDFPath != "" || len(d.PDFData) > 0
}
