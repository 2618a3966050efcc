package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/randalmurphal/deckflow/pkg/deck"
	"github.com/randalmurphal/deckflow/pkg/deckflow"
)

// chunkRecord is the per-chunk extraction payload shape.
type chunkRecord struct {
	Markdown    string   `json:"markdown"`
	MainTopic   string   `json:"main_topic,omitempty"`
	KeyConcepts []string `json:"key_concepts,omitempty"`
}

// ExtractDocument converts the document into structured markdown one
// chunk at a time. Chunks run sequentially, each seeded with the
// previous chunk's topic summary, which costs latency but keeps the
// output coherent across window boundaries. Overlap regions appear in
// two adjacent chunks; splitSections plus dedupeSections reconcile the
// duplicated content afterwards.
func (s *Stages) ExtractDocument(ctx deckflow.Context, st State) (State, error) {
	slides := st.Document.Slides
	if len(slides) == 0 {
		return st, fmt.Errorf("extract document: no slides")
	}

	st.Chunks = s.opts.Chunking.CreateChunks(len(slides))

	var sections []Section
	for _, chunk := range st.Chunks {
		if err := ctx.Err(); err != nil {
			return st, err
		}

		raw, err := s.client.GenerateStructured(ctx,
			extractChunkPrompt(chunk, slides, st.ChunkContext), nil)
		if err != nil {
			return st, fmt.Errorf("extract chunk %d: %w", chunk.Index, err)
		}

		var rec chunkRecord
		if raw != nil {
			_ = json.Unmarshal(raw, &rec)
		}
		if rec.Markdown == "" {
			ctx.Logger().Warn("chunk produced no markdown", "chunk", chunk.Index)
			st = st.AddError(fmt.Sprintf("chunk %d: empty extraction", chunk.Index))
			continue
		}

		sections = append(sections, splitSections(rec.Markdown, chunk)...)

		// Carry the running summary into the next chunk.
		if rec.MainTopic != "" {
			st.ChunkContext.MainTopic = rec.MainTopic
		}
		if len(rec.KeyConcepts) > 0 {
			st.ChunkContext.KeyConcepts = rec.KeyConcepts
		}

		ctx.Logger().Debug("chunk extracted",
			"chunk", chunk.Index,
			"slides", chunk.Size(),
			"topic", st.ChunkContext.MainTopic)
	}

	st.Sections = dedupeSections(sections, s.opts.DedupePrefixLen)

	ctx.Logger().Info("document extracted",
		"chunks", len(st.Chunks),
		"sections", len(st.Sections))
	return st.At(StageExtractDocument), nil
}

// splitSections breaks chunk markdown into sections at heading lines.
// Content before the first heading becomes a section with an empty
// marker, so nothing is lost.
func splitSections(markdown string, chunk deck.DocumentChunk) []Section {
	var sections []Section
	current := Section{StartSlide: chunk.StartSlide, EndSlide: chunk.EndSlide}
	var body []string

	flush := func() {
		current.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if current.Marker != "" || current.Body != "" {
			sections = append(sections, current)
		}
		body = nil
	}

	for _, line := range strings.Split(markdown, "\n") {
		if strings.HasPrefix(line, "#") {
			flush()
			current = Section{
				Marker:     strings.TrimSpace(line),
				StartSlide: chunk.StartSlide,
				EndSlide:   chunk.EndSlide,
			}
			continue
		}
		body = append(body, line)
	}
	flush()

	return sections
}

// dedupeSections drops overlap-introduced duplicates: sections whose
// (marker, leading content prefix) key was already seen keep only their
// first occurrence. The prefix key is a deliberate heuristic carried
// over from the original design; keying on too little leading content
// can drop unique sections that share an opening, so prefixLen should
// stay generous.
func dedupeSections(sections []Section, prefixLen int) []Section {
	seen := make(map[string]struct{}, len(sections))
	out := make([]Section, 0, len(sections))

	for _, sec := range sections {
		prefix := sec.Body
		if len(prefix) > prefixLen {
			prefix = prefix[:prefixLen]
		}
		key := sec.Marker + "\x00" + prefix
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, sec)
	}
	return out
}
