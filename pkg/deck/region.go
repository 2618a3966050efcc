package deck

// RegionKind classifies a segmented slide region.
type RegionKind string

const (
	RegionTitle    RegionKind = "title"
	RegionBullets  RegionKind = "bullets"
	RegionTable    RegionKind = "table"
	RegionEquation RegionKind = "equation"
	RegionDiagram  RegionKind = "diagram"
	RegionImage    RegionKind = "image"
	RegionOther    RegionKind = "other"
)

// Region is a segmented area within one slide. Regions are scoped to a
// single slide's extraction subtree and are never merged across slides.
type Region struct {
	// Kind is the region classification.
	Kind RegionKind `json:"kind"`
	// BBox is the region's bounding box in slide-normalized coordinates.
	BBox BoundingBox `json:"bbox"`
	// Confidence is the segmentation confidence in [0, 1].
	Confidence float64 `json:"confidence"`
	// TextSnippet optionally describes the region content.
	TextSnippet string `json:"text_snippet,omitempty"`
}

// FullSlideRegion returns the fallback region covering the whole slide.
// Used when segmentation fails or returns nothing.
func FullSlideRegion() Region {
	return Region{
		Kind:       RegionOther,
		BBox:       BoundingBox{X: 0, Y: 0, Width: 1, Height: 1},
		Confidence: 1.0,
	}
}
