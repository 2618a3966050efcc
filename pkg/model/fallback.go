package model

import (
	"context"
	"encoding/json"

	"github.com/randalmurphal/deckflow/pkg/deck"
	fgerrors "github.com/randalmurphal/deckflow/pkg/deckflow/errors"
)

// Fallback chains a primary client with a stronger fallback. When the
// primary fails with an escalatable error, typically malformed output
// that a more capable model might get right, the same request is issued
// to the fallback. All other failures are returned directly.
type Fallback struct {
	primary  Client
	fallback Client
}

// NewFallback creates an escalation chain from primary to fallback.
func NewFallback(primary, fallback Client) *Fallback {
	return &Fallback{primary: primary, fallback: fallback}
}

func fallbackCall[T any](ctx context.Context, f *Fallback, fn func(context.Context, Client) (T, error)) (T, error) {
	out, err := fn(ctx, f.primary)
	if err == nil || !fgerrors.IsEscalatable(err) || ctx.Err() != nil {
		return out, err
	}
	return fn(ctx, f.fallback)
}

// ExtractClaims implements Client.
func (f *Fallback) ExtractClaims(ctx context.Context, image []byte, prompt string) ([]ClaimRecord, error) {
	return fallbackCall(ctx, f, func(ctx context.Context, c Client) ([]ClaimRecord, error) {
		return c.ExtractClaims(ctx, image, prompt)
	})
}

// GenerateStructured implements Client.
func (f *Fallback) GenerateStructured(ctx context.Context, prompt string, image []byte) (json.RawMessage, error) {
	return fallbackCall(ctx, f, func(ctx context.Context, c Client) (json.RawMessage, error) {
		return c.GenerateStructured(ctx, prompt, image)
	})
}

// GenerateCards implements Client.
func (f *Fallback) GenerateCards(ctx context.Context, claims []deck.Claim, prompt string) ([]CardRecord, error) {
	return fallbackCall(ctx, f, func(ctx context.Context, c Client) ([]CardRecord, error) {
		return c.GenerateCards(ctx, claims, prompt)
	})
}

// CritiqueCards implements Client.
func (f *Fallback) CritiqueCards(ctx context.Context, cards []deck.CardDraft, prompt string) ([]CritiqueRecord, error) {
	return fallbackCall(ctx, f, func(ctx context.Context, c Client) ([]CritiqueRecord, error) {
		return c.CritiqueCards(ctx, cards, prompt)
	})
}
