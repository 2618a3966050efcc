package pipeline

import (
	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
	"github.com/randalmurphal/deckflow/pkg/model"
)

// regionRecord is the segmentation payload shape.
type regionRecord struct {
	Kind       string           `json:"kind"`
	BBox       deck.BoundingBox `json:"bbox"`
	Confidence float64          `json:"confidence"`
	Snippet    string           `json:"text_snippet,omitempty"`
}

// Segment asks the model to split the branch's slide into regions.
// Any failure, including no usable regions, falls back to a single
// full-slide region so extraction always has something to work on.
func (s *Stages) Segment(ctx deckflow.Context, st State) (State, error) {
	slide := st.Slide
	if slide == nil {
		return st, errMissingSlide(StageSegment)
	}

	// Text-only slides have nothing to segment visually.
	if slide.IsTextOnly || len(slide.ImageData) == 0 {
		st.Regions = []deck.Region{deck.FullSlideRegion()}
		return st.At(StageSegment), nil
	}

	raw, err := s.client.GenerateStructured(ctx, segmentPrompt, slide.ImageData)
	if err != nil {
		ctx.Logger().Warn("segmentation failed, using full slide",
			"slide", slide.PageIndex, "error", err)
		st = st.AddError("segment slide " + itoa(slide.PageIndex) + ": " + err.Error())
		st.Regions = []deck.Region{deck.FullSlideRegion()}
		return st.At(StageSegment), nil
	}

	records := model.ParseRecords[regionRecord](raw, "regions")
	regions := make([]deck.Region, 0, len(records))
	for _, rec := range records {
		if !rec.BBox.Valid() {
			continue
		}
		kind := deck.RegionKind(rec.Kind)
		switch kind {
		case deck.RegionTitle, deck.RegionBullets, deck.RegionTable,
			deck.RegionEquation, deck.RegionDiagram, deck.RegionImage:
		default:
			kind = deck.RegionOther
		}
		regions = append(regions, deck.Region{
			Kind:        kind,
			BBox:        rec.BBox,
			Confidence:  rec.Confidence,
			TextSnippet: rec.Snippet,
		})
	}

	if len(regions) == 0 {
		regions = []deck.Region{deck.FullSlideRegion()}
	}
	st.Regions = regions

	ctx.Logger().Debug("slide segmented",
		"slide", slide.PageIndex, "regions", len(regions))
	return st.At(StageSegment), nil
}
