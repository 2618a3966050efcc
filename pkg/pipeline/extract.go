package pipeline

import (
	"fmt"
	"strconv"

	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

func itoa(n int) string { return strconv.Itoa(n) }

func errMissingSlide(stage string) error {
	return fmt.Errorf("%s: no slide in branch state", stage)
}

// ExtractRegion pulls claims from the branch's region. Text-only slides
// take the text prompt path; image slides are cropped to the region,
// falling back to the full slide image when the crop fails.
func (s *Stages) ExtractRegion(ctx deckflow.Context, st State) (State, error) {
	slide := st.Slide
	if slide == nil {
		return st, errMissingSlide(StageExtractRegion)
	}

	if slide.IsTextOnly || len(slide.ImageData) == 0 {
		return s.extractFromText(ctx, st)
	}

	image := slide.ImageData
	region := st.Region
	if region != nil {
		cropped, err := cropRegion(slide.ImageData, region.BBox)
		if err != nil {
			ctx.Logger().Warn("region crop failed, using full slide",
				"slide", slide.PageIndex, "error", err)
			st = st.AddError("crop slide " + itoa(slide.PageIndex) + ": " + err.Error())
		} else {
			image = cropped
		}
	}

	records, err := s.client.ExtractClaims(ctx, image, extractClaimsPrompt)
	if err != nil {
		return st, fmt.Errorf("extract slide %d: %w", slide.PageIndex, err)
	}

	for _, rec := range records {
		if claim, ok := claimFromRecord(rec, slide.PageIndex, region); ok {
			st.Claims = append(st.Claims, claim)
		}
	}

	ctx.Logger().Debug("claims extracted",
		"slide", slide.PageIndex, "claims", len(st.Claims))
	return st.At(StageExtractRegion), nil
}

// extractFromText is the text path for slides with no usable image.
func (s *Stages) extractFromText(ctx deckflow.Context, st State) (State, error) {
	slide := st.Slide
	if slide.ExtractedText == "" {
		// Nothing to extract from; not an error.
		return st.At(StageExtractRegion), nil
	}

	records, err := s.client.ExtractClaims(ctx, nil, extractTextClaimsPrompt+slide.ExtractedText)
	if err != nil {
		return st, fmt.Errorf("extract slide %d text: %w", slide.PageIndex, err)
	}

	for _, rec := range records {
		if claim, ok := claimFromRecord(rec, slide.PageIndex, nil); ok {
			st.Claims = append(st.Claims, claim)
		}
	}
	return st.At(StageExtractRegion), nil
}

// ExtractRouter routes after extraction: fast mode and text-only slides
// skip verification.
func (s *Stages) ExtractRouter(ctx deckflow.Context, st State) string {
	if st.FastMode || (st.Slide != nil && st.Slide.IsTextOnly) || len(st.Claims) == 0 {
		return deckflow.END
	}
	return StageVerifyClaims
}
