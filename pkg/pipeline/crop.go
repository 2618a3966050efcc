package pipeline

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/randalmurphal/deckflow/pkg/deck"
)

// cropRegion cuts the region's bounding box out of the slide image and
// returns it re-encoded as PNG. Callers fall back to the full slide
// image when cropping fails.
func cropRegion(slideImage []byte, bbox deck.BoundingBox) ([]byte, error) {
	if len(slideImage) == 0 {
		return nil, fmt.Errorf("crop: empty slide image")
	}
	if !bbox.Valid() {
		return nil, fmt.Errorf("crop: invalid bbox %+v", bbox)
	}

	src, _, err := image.Decode(bytes.NewReader(slideImage))
	if err != nil {
		return nil, fmt.Errorf("crop: decode: %w", err)
	}

	bounds := src.Bounds()
	x, y, w, h := bbox.Denormalize(bounds.Dx(), bounds.Dy())
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("crop: degenerate region %dx%d", w, h)
	}

	rect := image.Rect(bounds.Min.X+x, bounds.Min.Y+y, bounds.Min.X+x+w, bounds.Min.Y+y+h)
	rect = rect.Intersect(bounds)
	if rect.Empty() {
		return nil, fmt.Errorf("crop: region outside image bounds")
	}

	out := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	for py := 0; py < rect.Dy(); py++ {
		for px := 0; px < rect.Dx(); px++ {
			out.Set(px, py, src.At(rect.Min.X+px, rect.Min.Y+py))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("crop: encode: %w", err)
	}
	return buf.Bytes(), nil
}
