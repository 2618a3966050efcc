package deck

// CardFlag marks a quality issue on a card draft.
type CardFlag string

const (
	FlagAmbiguous      CardFlag = "ambiguous"
	FlagTooLong        CardFlag = "too_long"
	FlagMissingContext CardFlag = "missing_context"
	FlagDuplicate      CardFlag = "duplicate"
	FlagLowConfidence  CardFlag = "low_confidence"
	FlagNeedsReview    CardFlag = "needs_review"
)

// CardStatus is the review status of a card draft.
type CardStatus string

const (
	StatusPending  CardStatus = "pending"
	StatusApproved CardStatus = "approved"
	StatusRejected CardStatus = "rejected"
)

// CardDraft is a generated flashcard. Drafts are created by the
// card-writing stage, mutated only within the bounded critique-repair
// loop, and finalized by dedupe and export.
type CardDraft struct {
	// Front is the question or prompt side.
	Front string `json:"front"`
	// Back is the answer side.
	Back string `json:"back"`
	// Tags holds card tags.
	Tags []string `json:"tags,omitempty"`
	// Confidence is the generation confidence in [0, 1].
	Confidence float64 `json:"confidence"`
	// Flags holds quality flags raised by critique or dedupe.
	Flags []CardFlag `json:"flags,omitempty"`
	// Evidence links the card to its source slides.
	Evidence []Evidence `json:"evidence,omitempty"`
	// Status is the review status.
	Status CardStatus `json:"status"`
	// Critique holds critique feedback, cleared on successful repair.
	Critique string `json:"critique,omitempty"`
}

// HasFlag reports whether the card carries the given flag.
func (c *CardDraft) HasFlag(flag CardFlag) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// AddFlag adds a flag if not already present.
func (c *CardDraft) AddFlag(flag CardFlag) {
	if !c.HasFlag(flag) {
		c.Flags = append(c.Flags, flag)
	}
}

// NeedsRepair reports whether the card carries any flag or critique text.
func (c *CardDraft) NeedsRepair() bool {
	return len(c.Flags) > 0 || c.Critique != ""
}

// ClearRepairState removes flags and critique after a successful rewrite
// so the critique-repair loop can converge.
func (c *CardDraft) ClearRepairState() {
	c.Flags = nil
	c.Critique = ""
}
