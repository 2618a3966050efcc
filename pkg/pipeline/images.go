package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

// ExtractImages pulls embedded images from the document and filters
// out the ones that cannot carry knowledge content: header and footer
// art, images repeated across many slides (logos, template art), and
// images too small to matter.
func (s *Stages) ExtractImages(ctx deckflow.Context, st State) (State, error) {
	if s.extractor == nil {
		ctx.Logger().Debug("no image extractor configured, skipping")
		return st.At(StageExtractImages), nil
	}

	images, err := s.extractor.ExtractImages(ctx, st.Document)
	if err != nil {
		ctx.Logger().Warn("image extraction failed", "error", err)
		return st.AddError("extract images: " + err.Error()).At(StageExtractImages), nil
	}

	kept := make([]deck.ExtractedImage, 0, len(images))
	for _, img := range images {
		if img.OccurrenceCount >= s.opts.MaxImageOccurrence {
			continue
		}
		if img.Position.Area() < s.opts.MinImageArea {
			continue
		}
		if img.Position.InHeader(s.opts.HeaderFooterThreshold) ||
			img.Position.InFooter(s.opts.HeaderFooterThreshold) {
			continue
		}
		kept = append(kept, img)
	}
	st.Images = kept

	ctx.Logger().Info("images extracted",
		"found", len(images), "kept", len(kept))
	return st.At(StageExtractImages), nil
}

// classificationRecord is the image classification payload shape.
type classificationRecord struct {
	ImageType   string  `json:"image_type"`
	Confidence  float64 `json:"confidence"`
	ShouldEmbed bool    `json:"should_embed"`
}

// ClassifyImages classifies each surviving image. Skippable types
// (logos, decorative art) are dropped here; classification failures
// degrade to unknown rather than failing the run.
func (s *Stages) ClassifyImages(ctx deckflow.Context, st State) (State, error) {
	st.Processed = nil
	for _, img := range st.Images {
		raw, err := s.client.GenerateStructured(ctx, classifyImagePrompt, img.ImageData)
		if err != nil {
			return st, fmt.Errorf("classify image %s: %w", img.ImageID, err)
		}

		var rec classificationRecord
		if raw != nil {
			// Tolerant parse: a mismatched payload leaves the zero record.
			_ = json.Unmarshal(raw, &rec)
		}

		imgType := deck.ImageType(rec.ImageType)
		switch imgType {
		case deck.ImageFormula, deck.ImageDiagram, deck.ImageChart, deck.ImageCode,
			deck.ImageTable, deck.ImagePhoto, deck.ImageLogo, deck.ImageDecorative:
		default:
			imgType = deck.ImageUnknown
		}
		if imgType.Skippable() {
			continue
		}

		processed := deck.ProcessedImage{
			ImageID:     img.ImageID,
			SlideIndex:  img.SlideIndex,
			Type:        imgType,
			Position:    img.Position,
			ShouldEmbed: rec.ShouldEmbed,
			Confidence:  rec.Confidence,
		}
		if rec.ShouldEmbed {
			processed.ImageData = img.ImageData
		}
		st.Processed = append(st.Processed, processed)
	}

	ctx.Logger().Info("images classified",
		"input", len(st.Images), "kept", len(st.Processed))
	return st.At(StageClassifyImages), nil
}

// transcriptionRecord is the transcription/description payload shape.
type transcriptionRecord struct {
	Transcription string `json:"transcription,omitempty"`
	Description   string `json:"description,omitempty"`
}

// TranscribeImages fills in content for each classified image: exact
// transcription for formulas, code, and tables, a prose description for
// diagrams, charts, and photos. Empty model output leaves the image
// without content, which ToMarkdown renders as nothing.
func (s *Stages) TranscribeImages(ctx deckflow.Context, st State) (State, error) {
	for i := range st.Processed {
		img := &st.Processed[i]

		prompt := describeImagePrompt
		switch img.Type {
		case deck.ImageFormula, deck.ImageCode, deck.ImageTable:
			prompt = transcribeImagePrompt
		}

		source := imageDataFor(st.Images, img.ImageID)
		raw, err := s.client.GenerateStructured(ctx, prompt, source)
		if err != nil {
			return st, fmt.Errorf("transcribe image %s: %w", img.ImageID, err)
		}

		var rec transcriptionRecord
		if raw != nil {
			_ = json.Unmarshal(raw, &rec)
		}
		img.Transcription = rec.Transcription
		img.Description = rec.Description
	}

	ctx.Logger().Info("images transcribed", "images", len(st.Processed))
	return st.At(StageTranscribeImages), nil
}

func imageDataFor(images []deck.ExtractedImage, imageID string) []byte {
	for i := range images {
		if images[i].ImageID == imageID {
			return images[i].ImageData
		}
	}
	return nil
}
