package pipeline

import (
	"fmt"

	"github.com/randalmurphal/deckflow/pkg/deckflow"
	"github.com/randalmurphal/deckflow/pkg/model"
)

// RepairClaims rewrites only the claims flagged by verification. The
// verifier's suggested statement is the starting point; a model rewrite
// overrides it when present, including an explicit empty rewrite, which
// means the claim cannot be supported. Repaired claims get a new
// statement with confidence clamped into [0.5, 0.7]; unfixable claims
// keep their lowered confidence rather than being dropped. Each pass
// bumps the attempt counter exactly once.
func (s *Stages) RepairClaims(ctx deckflow.Context, st State) (State, error) {
	slide := st.Slide
	if slide == nil {
		return st, errMissingSlide(StageRepairClaims)
	}
	if len(st.FailedClaims) == 0 {
		st.Attempt++
		return st.At(StageRepairClaims), nil
	}

	repairs := make(map[int]string, len(st.FailedClaims))
	for _, idx := range st.FailedClaims {
		if sugg, ok := st.Suggestions[idx]; ok {
			repairs[idx] = sugg
		}
	}

	raw, err := s.client.GenerateStructured(ctx,
		repairPrompt(st.Claims, st.FailedClaims, st.Suggestions), slide.ImageData)
	if err != nil {
		return st, fmt.Errorf("repair slide %d: %w", slide.PageIndex, err)
	}
	for _, rec := range model.ParseRecords[model.RepairRecord](raw, "repairs") {
		if rec.Index < 0 || rec.Index >= len(st.Claims) {
			continue
		}
		repairs[rec.Index] = rec.Statement
	}

	repaired := 0
	for _, idx := range st.FailedClaims {
		statement, ok := repairs[idx]
		if !ok || statement == "" {
			continue
		}
		claim := st.Claims[idx]
		claim.Statement = statement
		conf := claim.Confidence
		if conf < 0.5 {
			conf = 0.5
		}
		if conf > 0.7 {
			conf = 0.7
		}
		claim.Confidence = conf
		st.Claims[idx] = claim
		repaired++
	}

	st.Attempt++
	st.FailedClaims = nil
	st.Suggestions = nil

	ctx.Logger().Debug("claims repaired",
		"slide", slide.PageIndex,
		"repaired", repaired,
		"attempt", st.Attempt)
	return st.At(StageRepairClaims), nil
}
