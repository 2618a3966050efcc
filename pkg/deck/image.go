package deck

// ImageType classifies extracted image content and routes it to the
// appropriate processing: formulas, code, and tables are transcribed,
// diagrams, charts, and photos are described, logos and decorative
// images are skipped.
type ImageType string

const (
	ImageFormula    ImageType = "formula"
	ImageDiagram    ImageType = "diagram"
	ImageChart      ImageType = "chart"
	ImageCode       ImageType = "code"
	ImageTable      ImageType = "table"
	ImagePhoto      ImageType = "photo"
	ImageLogo       ImageType = "logo"
	ImageDecorative ImageType = "decorative"
	ImageUnknown    ImageType = "unknown"
)

// Skippable reports whether images of this type carry no knowledge
// content and can be dropped before transcription.
func (t ImageType) Skippable() bool {
	return t == ImageLogo || t == ImageDecorative
}

// ImagePosition locates an image on a slide in 0-1 normalized
// coordinates, enabling position-based filtering of headers and footers.
type ImagePosition struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns the image area as a fraction of the slide area.
func (p ImagePosition) Area() float64 {
	return p.Width * p.Height
}

// CenterY returns the vertical center position in [0, 1].
func (p ImagePosition) CenterY() float64 {
	return p.Y + p.Height/2
}

// InHeader reports whether the image center falls in the top threshold
// fraction of the slide.
func (p ImagePosition) InHeader(threshold float64) bool {
	return p.CenterY() < threshold
}

// InFooter reports whether the image center falls in the bottom
// threshold fraction of the slide.
func (p ImagePosition) InFooter(threshold float64) bool {
	return p.CenterY() > 1.0-threshold
}

// ExtractedImage is a raw image pulled from a slide before
// classification.
type ExtractedImage struct {
	// ImageID uniquely identifies the image.
	ImageID string `json:"image_id"`
	// SlideIndex is the source slide's 0-based page index.
	SlideIndex int `json:"slide_index"`
	// Position is the image location on the slide.
	Position ImagePosition `json:"position"`
	// ImageData holds the raw PNG bytes.
	ImageData []byte `json:"image_data"`
	// OccurrenceCount is the number of slides the image appears on.
	// Images repeated on many slides are likely logos or templates.
	OccurrenceCount int `json:"occurrence_count"`
}

// ProcessedImage is a classified and transcribed or described image
// ready for markdown embedding.
type ProcessedImage struct {
	// ImageID matches the source ExtractedImage.
	ImageID string `json:"image_id"`
	// SlideIndex is the source slide's 0-based page index.
	SlideIndex int `json:"slide_index"`
	// Type is the classified image type.
	Type ImageType `json:"image_type"`
	// Position is the image location on the slide.
	Position ImagePosition `json:"position"`
	// Transcription holds transcribed content: LaTeX for formulas, code
	// for code blocks, markdown for tables.
	Transcription string `json:"transcription,omitempty"`
	// Description holds a natural-language description for diagrams,
	// charts, and photos.
	Description string `json:"description,omitempty"`
	// ShouldEmbed marks images whose original bytes belong in the markdown.
	ShouldEmbed bool `json:"should_embed"`
	// ImageData holds the original bytes, only when ShouldEmbed is set.
	ImageData []byte `json:"image_data,omitempty"`
	// Confidence is the classification confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// ToMarkdown renders the image's content as markdown: display math for
// formulas, fenced blocks for code, the transcription itself for tables,
// and the description (italicized as a caption when embedding) otherwise.
func (p *ProcessedImage) ToMarkdown() string {
	switch {
	case p.Type == ImageFormula && p.Transcription != "":
		return "$$\n" + p.Transcription + "\n$$"
	case p.Type == ImageCode && p.Transcription != "":
		return "```\n" + p.Transcription + "\n```"
	case p.Type == ImageTable && p.Transcription != "":
		return p.Transcription
	case p.Description != "":
		if p.ShouldEmbed {
			return "*" + p.Description + "*"
		}
		return p.Description
	}
	return ""
}
