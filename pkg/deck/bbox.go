package deck

// BoundingBox is a rectangular region on a slide with coordinates
// normalized to the 0-1 range relative to the slide dimensions.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NormalizeBBox converts pixel coordinates to normalized coordinates.
func NormalizeBBox(x, y, width, height, imageWidth, imageHeight int) BoundingBox {
	return BoundingBox{
		X:      float64(x) / float64(imageWidth),
		Y:      float64(y) / float64(imageHeight),
		Width:  float64(width) / float64(imageWidth),
		Height: float64(height) / float64(imageHeight),
	}
}

// Denormalize converts the box back to pixel coordinates.
func (b BoundingBox) Denormalize(imageWidth, imageHeight int) (x, y, width, height int) {
	return int(b.X * float64(imageWidth)),
		int(b.Y * float64(imageHeight)),
		int(b.Width * float64(imageWidth)),
		int(b.Height * float64(imageHeight))
}

// ToSlide converts a box expressed in region-local coordinates (relative
// to a cropped region image) into slide-normalized coordinates using the
// region's own bounding box on the slide.
func (b BoundingBox) ToSlide(region BoundingBox) BoundingBox {
	return BoundingBox{
		X:      region.X + b.X*region.Width,
		Y:      region.Y + b.Y*region.Height,
		Width:  b.Width * region.Width,
		Height: b.Height * region.Height,
	}
}

// Valid reports whether the box has positive extent within bounds.
func (b BoundingBox) Valid() bool {
	return b.Width > 0 && b.Height > 0 &&
		b.X >= 0 && b.Y >= 0 &&
		b.X+b.Width <= 1 && b.Y+b.Height <= 1
}
