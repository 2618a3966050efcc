package pipeline

import (
	"fmt"

	"github.com/randalmurphal/deckflow/pkg/deckflow"
	"github.com/randalmurphal/deckflow/pkg/model"
)

// VerifyClaims checks every claim in the branch against the region
// image. Supported claims have their confidence raised to at least 0.6;
// unsupported and unclear claims are lowered to at most 0.4 and
// recorded for repair along with any suggested rewrite.
func (s *Stages) VerifyClaims(ctx deckflow.Context, st State) (State, error) {
	slide := st.Slide
	if slide == nil {
		return st, errMissingSlide(StageVerifyClaims)
	}
	if len(st.Claims) == 0 {
		return st.At(StageVerifyClaims), nil
	}

	indices := make([]int, len(st.Claims))
	for i := range indices {
		indices[i] = i
	}

	raw, err := s.client.GenerateStructured(ctx, verifyPrompt(st.Claims, indices), slide.ImageData)
	if err != nil {
		return st, fmt.Errorf("verify slide %d: %w", slide.PageIndex, err)
	}

	st.FailedClaims = nil
	st.Suggestions = nil

	records := model.ParseRecords[model.VerificationRecord](raw, "verifications")
	for _, rec := range records {
		if rec.Index < 0 || rec.Index >= len(st.Claims) {
			continue
		}
		claim := st.Claims[rec.Index]

		switch rec.Verdict {
		case model.VerdictSupported:
			if claim.Confidence < 0.6 {
				claim.Confidence = 0.6
			}
		case model.VerdictUnsupported, model.VerdictUnclear:
			if claim.Confidence > 0.4 {
				claim.Confidence = 0.4
			}
			st.FailedClaims = append(st.FailedClaims, rec.Index)
			if rec.SuggestedStatement != "" {
				if st.Suggestions == nil {
					st.Suggestions = make(map[int]string)
				}
				st.Suggestions[rec.Index] = rec.SuggestedStatement
			}
		default:
			// Unknown verdict: leave the claim untouched.
			continue
		}
		st.Claims[rec.Index] = claim
	}

	ctx.Logger().Debug("claims verified",
		"slide", slide.PageIndex,
		"claims", len(st.Claims),
		"failed", len(st.FailedClaims),
		"attempt", st.Attempt)
	return st.At(StageVerifyClaims), nil
}

// VerifyRouter routes after verification: failed claims with attempts
// remaining go to repair, everything else terminates the branch. The
// attempt counter is strictly increasing, so the loop always ends.
func (s *Stages) VerifyRouter(ctx deckflow.Context, st State) string {
	if len(st.FailedClaims) > 0 && st.Attempt < st.MaxAttempts {
		return StageRepairClaims
	}
	return deckflow.END
}
