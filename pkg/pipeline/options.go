package pipeline

import (
	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow/config"
)

// Options holds the pipeline tuning knobs. Zero values are filled in
// by Normalize; DefaultOptions returns the fully populated defaults.
type Options struct {
	// FastMode skips claim verification.
	FastMode bool
	// MaxVerifyAttempts bounds the verify-repair loop per region.
	MaxVerifyAttempts int
	// MaxCritiqueAttempts bounds the critique-repair loop.
	MaxCritiqueAttempts int
	// MaxConcurrency bounds concurrent fan-out branches.
	MaxConcurrency int
	// JaccardThreshold is the word-set similarity above which a card
	// front counts as a duplicate.
	JaccardThreshold float64
	// DedupePrefixLen is the number of leading characters used to key
	// chunk-overlap section dedupe.
	DedupePrefixLen int
	// HeaderFooterThreshold is the slide fraction at the top and bottom
	// treated as header/footer when filtering extracted images.
	HeaderFooterThreshold float64
	// MaxImageOccurrence drops images repeated on at least this many
	// slides; such images are almost always logos or template art.
	MaxImageOccurrence int
	// MinImageArea drops images smaller than this fraction of the slide.
	MinImageArea float64
	// Chunking controls document windowing.
	Chunking deck.ChunkingConfig
}

// DefaultOptions returns the default pipeline options.
func DefaultOptions() Options {
	return Options{
		MaxVerifyAttempts:     2,
		MaxCritiqueAttempts:   2,
		MaxConcurrency:        4,
		JaccardThreshold:      0.85,
		DedupePrefixLen:       80,
		HeaderFooterThreshold: 0.1,
		MaxImageOccurrence:    3,
		MinImageArea:          0.005,
		Chunking:              deck.DefaultChunkingConfig(),
	}
}

// Normalize fills unset fields with their defaults.
func (o Options) Normalize() Options {
	def := DefaultOptions()
	if o.MaxVerifyAttempts <= 0 {
		o.MaxVerifyAttempts = def.MaxVerifyAttempts
	}
	if o.MaxCritiqueAttempts <= 0 {
		o.MaxCritiqueAttempts = def.MaxCritiqueAttempts
	}
	if o.MaxConcurrency <= 0 {
		o.MaxConcurrency = def.MaxConcurrency
	}
	if o.JaccardThreshold <= 0 {
		o.JaccardThreshold = def.JaccardThreshold
	}
	if o.DedupePrefixLen <= 0 {
		o.DedupePrefixLen = def.DedupePrefixLen
	}
	if o.HeaderFooterThreshold <= 0 {
		o.HeaderFooterThreshold = def.HeaderFooterThreshold
	}
	if o.MaxImageOccurrence <= 0 {
		o.MaxImageOccurrence = def.MaxImageOccurrence
	}
	if o.MinImageArea <= 0 {
		o.MinImageArea = def.MinImageArea
	}
	if o.Chunking.TargetChunkSize <= 0 {
		o.Chunking = def.Chunking
	}
	return o
}

// OptionsFromConfig builds Options from a loaded configuration,
// reading the "pipeline" and "pipeline.chunking" sections.
func OptionsFromConfig(cfg config.Config) Options {
	def := DefaultOptions()
	p := cfg.Sub("pipeline")
	chunking := p.Sub("chunking")
	return Options{
		FastMode:              p.Bool("fast_mode", false),
		MaxVerifyAttempts:     p.Int("max_verify_attempts", def.MaxVerifyAttempts),
		MaxCritiqueAttempts:   p.Int("max_critique_attempts", def.MaxCritiqueAttempts),
		MaxConcurrency:        p.Int("max_concurrency", def.MaxConcurrency),
		JaccardThreshold:      p.Float("jaccard_threshold", def.JaccardThreshold),
		DedupePrefixLen:       p.Int("dedupe_prefix_len", def.DedupePrefixLen),
		HeaderFooterThreshold: p.Float("header_footer_threshold", def.HeaderFooterThreshold),
		MaxImageOccurrence:    p.Int("max_image_occurrence", def.MaxImageOccurrence),
		MinImageArea:          p.Float("min_image_area", def.MinImageArea),
		Chunking: deck.ChunkingConfig{
			TargetChunkSize: chunking.Int("target_chunk_size", def.Chunking.TargetChunkSize),
			OverlapRatio:    chunking.Float("overlap_ratio", def.Chunking.OverlapRatio),
		},
	}
}
