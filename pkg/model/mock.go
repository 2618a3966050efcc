package model

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/randalmurphal/deckflow/pkg/deck"
)

// Call records one invocation of a Mock capability.
type Call struct {
	// Method is the capability name.
	Method string
	// Prompt is the prompt the caller supplied.
	Prompt string
	// HasImage reports whether image bytes were supplied.
	HasImage bool
	// Claims lists the claim statements passed to GenerateCards.
	Claims []string
}

// Mock is a scripted Client for tests. Scripted responses cycle when
// exhausted; every invocation is captured for inspection.
type Mock struct {
	mu sync.Mutex

	claims     [][]ClaimRecord
	structured []json.RawMessage
	cards      [][]CardRecord
	critiques  [][]CritiqueRecord
	err        error

	claimsIdx     int
	structuredIdx int
	cardsIdx      int
	critiquesIdx  int

	calls []Call
}

// NewMock creates an empty scripted client. Unscripted capabilities
// return empty results.
func NewMock() *Mock {
	return &Mock{}
}

// WithClaims scripts sequential ExtractClaims responses.
func (m *Mock) WithClaims(responses ...[]ClaimRecord) *Mock {
	m.claims = responses
	return m
}

// WithStructured scripts sequential GenerateStructured responses.
func (m *Mock) WithStructured(responses ...json.RawMessage) *Mock {
	m.structured = responses
	return m
}

// WithCards scripts sequential GenerateCards responses.
func (m *Mock) WithCards(responses ...[]CardRecord) *Mock {
	m.cards = responses
	return m
}

// WithCritiques scripts sequential CritiqueCards responses.
func (m *Mock) WithCritiques(responses ...[]CritiqueRecord) *Mock {
	m.critiques = responses
	return m
}

// WithError makes every capability return err.
func (m *Mock) WithError(err error) *Mock {
	m.err = err
	return m
}

// ExtractClaims implements Client.
func (m *Mock) ExtractClaims(ctx context.Context, image []byte, prompt string) ([]ClaimRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Method: "ExtractClaims", Prompt: prompt, HasImage: len(image) > 0})
	if m.err != nil {
		return nil, m.err
	}
	if len(m.claims) == 0 {
		return nil, nil
	}
	resp := m.claims[m.claimsIdx%len(m.claims)]
	m.claimsIdx++
	return resp, nil
}

// GenerateStructured implements Client.
func (m *Mock) GenerateStructured(ctx context.Context, prompt string, image []byte) (json.RawMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Method: "GenerateStructured", Prompt: prompt, HasImage: len(image) > 0})
	if m.err != nil {
		return nil, m.err
	}
	if len(m.structured) == 0 {
		return nil, nil
	}
	resp := m.structured[m.structuredIdx%len(m.structured)]
	m.structuredIdx++
	return resp, nil
}

// GenerateCards implements Client.
func (m *Mock) GenerateCards(ctx context.Context, claims []deck.Claim, prompt string) ([]CardRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	stmts := make([]string, len(claims))
	for i, cl := range claims {
		stmts[i] = cl.Statement
	}
	m.calls = append(m.calls, Call{Method: "GenerateCards", Prompt: prompt, Claims: stmts})
	if m.err != nil {
		return nil, m.err
	}
	if len(m.cards) == 0 {
		return nil, nil
	}
	resp := m.cards[m.cardsIdx%len(m.cards)]
	m.cardsIdx++
	return resp, nil
}

// CritiqueCards implements Client.
func (m *Mock) CritiqueCards(ctx context.Context, cards []deck.CardDraft, prompt string) ([]CritiqueRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, Call{Method: "CritiqueCards", Prompt: prompt})
	if m.err != nil {
		return nil, m.err
	}
	if len(m.critiques) == 0 {
		return nil, nil
	}
	resp := m.critiques[m.critiquesIdx%len(m.critiques)]
	m.critiquesIdx++
	return resp, nil
}

// Calls returns a copy of all recorded invocations.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns the number of invocations of the named method,
// or of all methods when name is empty.
func (m *Mock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if method == "" {
		return len(m.calls)
	}
	n := 0
	for _, c := range m.calls {
		if c.Method == method {
			n++
		}
	}
	return n
}
