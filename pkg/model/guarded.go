package model

import (
	"context"
	"encoding/json"

	"github.com/randalmurphal/deckflow/pkg/deck"
	fgerrors "github.com/randalmurphal/deckflow/pkg/deckflow/errors"
	"github.com/randalmurphal/deckflow/pkg/deckflow/limit"
)

// Guarded wraps a Client with a shared concurrency limiter and retry.
// The retry loop wraps the limiter acquire as well as the call itself,
// so a call backing off does not hold a slot that another branch could
// be using.
type Guarded struct {
	inner   Client
	limiter *limit.Limiter
	retry   fgerrors.RetryConfig
}

// GuardedOption configures a Guarded client.
type GuardedOption func(*Guarded)

// WithRetry overrides the retry configuration.
// The default is ModelCallRetry.
func WithRetry(cfg fgerrors.RetryConfig) GuardedOption {
	return func(g *Guarded) { g.retry = cfg }
}

// NewGuarded wraps inner with limiter and retries.
// limiter may be nil, which disables concurrency limiting.
func NewGuarded(inner Client, limiter *limit.Limiter, opts ...GuardedOption) *Guarded {
	g := &Guarded{
		inner:   inner,
		limiter: limiter,
		retry:   fgerrors.ModelCallRetry,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func guardedCall[T any](ctx context.Context, g *Guarded, fn func(context.Context) (T, error)) (T, error) {
	res := fgerrors.WithRetryContext(ctx, g.retry, func(ctx context.Context) (T, error) {
		if g.limiter == nil {
			return fn(ctx)
		}
		var out T
		err := g.limiter.Do(ctx, func(ctx context.Context) error {
			var callErr error
			out, callErr = fn(ctx)
			return callErr
		})
		return out, err
	})
	return res.Value, res.Err
}

// ExtractClaims implements Client.
func (g *Guarded) ExtractClaims(ctx context.Context, image []byte, prompt string) ([]ClaimRecord, error) {
	return guardedCall(ctx, g, func(ctx context.Context) ([]ClaimRecord, error) {
		return g.inner.ExtractClaims(ctx, image, prompt)
	})
}

// GenerateStructured implements Client.
func (g *Guarded) GenerateStructured(ctx context.Context, prompt string, image []byte) (json.RawMessage, error) {
	return guardedCall(ctx, g, func(ctx context.Context) (json.RawMessage, error) {
		return g.inner.GenerateStructured(ctx, prompt, image)
	})
}

// GenerateCards implements Client.
func (g *Guarded) GenerateCards(ctx context.Context, claims []deck.Claim, prompt string) ([]CardRecord, error) {
	return guardedCall(ctx, g, func(ctx context.Context) ([]CardRecord, error) {
		return g.inner.GenerateCards(ctx, claims, prompt)
	})
}

// CritiqueCards implements Client.
func (g *Guarded) CritiqueCards(ctx context.Context, cards []deck.CardDraft, prompt string) ([]CritiqueRecord, error) {
	return guardedCall(ctx, g, func(ctx context.Context) ([]CritiqueRecord, error) {
		return g.inner.CritiqueCards(ctx, cards, prompt)
	})
}
