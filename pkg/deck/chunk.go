package deck

// DocumentChunk is a contiguous, possibly overlapping window of slides
// processed as one unit. Consecutive chunks' non-overlap regions
// partition the slide sequence exactly once; overlap slides legitimately
// appear in two adjacent chunks and are reconciled at merge time.
type DocumentChunk struct {
	// Index is the 0-based position in the chunk sequence.
	Index int `json:"chunk_index"`
	// StartSlide is the first slide index in the chunk.
	StartSlide int `json:"start_slide"`
	// EndSlide is the last slide index in the chunk.
	EndSlide int `json:"end_slide"`
	// SlideIndices holds all slide indices in the chunk, ascending.
	SlideIndices []int `json:"slide_indices"`
	// IsFirst marks the first chunk.
	IsFirst bool `json:"is_first"`
	// IsLast marks the last chunk.
	IsLast bool `json:"is_last"`
	// OverlapStart is the number of slides shared with the previous chunk.
	OverlapStart int `json:"overlap_start"`
	// OverlapEnd is the number of slides shared with the next chunk.
	OverlapEnd int `json:"overlap_end"`
}

// Size returns the number of slides in the chunk.
func (c *DocumentChunk) Size() int {
	return len(c.SlideIndices)
}

// ChunkingConfig controls how large documents are split into overlapping
// chunks for model processing.
type ChunkingConfig struct {
	// TargetChunkSize is the target number of slides per chunk.
	TargetChunkSize int `json:"target_chunk_size"`
	// OverlapRatio is the fraction of chunk size shared between adjacent
	// chunks, in [0, 0.5].
	OverlapRatio float64 `json:"overlap_ratio"`
}

// DefaultChunkingConfig returns the default chunking parameters.
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		TargetChunkSize: 10,
		OverlapRatio:    0.15,
	}
}

// Overlap returns the number of slides shared between adjacent chunks.
// At least 1 when the overlap ratio is positive.
func (cfg ChunkingConfig) Overlap() int {
	overlap := int(float64(cfg.TargetChunkSize) * cfg.OverlapRatio)
	if cfg.OverlapRatio > 0 && overlap < 1 {
		overlap = 1
	}
	return overlap
}

// CreateChunks splits totalSlides into overlapping windows. Documents
// no larger than the target size become a single chunk. Otherwise
// windows of TargetChunkSize advance by TargetChunkSize minus the
// overlap, with first and last chunks flagged and overlap counts set
// to 0 at the open ends.
func (cfg ChunkingConfig) CreateChunks(totalSlides int) []DocumentChunk {
	if totalSlides <= 0 {
		return nil
	}

	if totalSlides <= cfg.TargetChunkSize {
		return []DocumentChunk{{
			Index:        0,
			StartSlide:   0,
			EndSlide:     totalSlides - 1,
			SlideIndices: slideRange(0, totalSlides-1),
			IsFirst:      true,
			IsLast:       true,
		}}
	}

	overlap := cfg.Overlap()
	step := cfg.TargetChunkSize - overlap
	if step < 1 {
		step = 1
	}

	var chunks []DocumentChunk
	index := 0
	start := 0

	for start < totalSlides {
		end := start + cfg.TargetChunkSize - 1
		if end > totalSlides-1 {
			end = totalSlides - 1
		}

		overlapStart := overlap
		if start == 0 {
			overlapStart = 0
		}
		overlapEnd := overlap
		if end >= totalSlides-1 {
			overlapEnd = 0
		}

		chunks = append(chunks, DocumentChunk{
			Index:        index,
			StartSlide:   start,
			EndSlide:     end,
			SlideIndices: slideRange(start, end),
			IsFirst:      start == 0,
			IsLast:       end >= totalSlides-1,
			OverlapStart: overlapStart,
			OverlapEnd:   overlapEnd,
		})

		next := start + step
		if next <= start {
			break
		}
		start = next
		index++
	}

	return chunks
}

func slideRange(start, end int) []int {
	indices := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		indices = append(indices, i)
	}
	return indices
}
