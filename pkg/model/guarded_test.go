package model

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/deckflow/pkg/deck"
	fgerrors "github.com/randalmurphal/deckflow/pkg/deckflow/errors"
	"github.com/randalmurphal/deckflow/pkg/deckflow/limit"
)

// countingClient fails a fixed number of times before succeeding, and
// tracks peak concurrency.
type countingClient struct {
	mu        sync.Mutex
	failures  int
	calls     int
	failWith  error
	inFlight  atomic.Int32
	peak      atomic.Int32
	callDelay time.Duration
}

func (c *countingClient) track() func() {
	cur := c.inFlight.Add(1)
	for {
		p := c.peak.Load()
		if cur <= p || c.peak.CompareAndSwap(p, cur) {
			break
		}
	}
	if c.callDelay > 0 {
		time.Sleep(c.callDelay)
	}
	return func() { c.inFlight.Add(-1) }
}

func (c *countingClient) next() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.calls <= c.failures {
		return c.failWith
	}
	return nil
}

func (c *countingClient) ExtractClaims(ctx context.Context, image []byte, prompt string) ([]ClaimRecord, error) {
	defer c.track()()
	if err := c.next(); err != nil {
		return nil, err
	}
	return []ClaimRecord{{Statement: "ok"}}, nil
}

func (c *countingClient) GenerateStructured(ctx context.Context, prompt string, image []byte) (json.RawMessage, error) {
	defer c.track()()
	if err := c.next(); err != nil {
		return nil, err
	}
	return json.RawMessage(`{}`), nil
}

func (c *countingClient) GenerateCards(ctx context.Context, claims []deck.Claim, prompt string) ([]CardRecord, error) {
	defer c.track()()
	if err := c.next(); err != nil {
		return nil, err
	}
	return []CardRecord{{Front: "q", Back: "a"}}, nil
}

func (c *countingClient) CritiqueCards(ctx context.Context, cards []deck.CardDraft, prompt string) ([]CritiqueRecord, error) {
	defer c.track()()
	if err := c.next(); err != nil {
		return nil, err
	}
	return nil, nil
}

func fastRetry(attempts int) fgerrors.RetryConfig {
	return fgerrors.RetryConfig{
		MaxAttempts:    attempts,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     time.Millisecond,
		BackoffFactor:  1.0,
	}
}

func TestGuarded_RetriesTransient(t *testing.T) {
	inner := &countingClient{
		failures: 2,
		failWith: fgerrors.Transient(errors.New("rate limited"), "extract"),
	}
	g := NewGuarded(inner, nil, WithRetry(fastRetry(5)))

	claims, err := g.ExtractClaims(context.Background(), nil, "p")
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, 3, inner.calls)
}

func TestGuarded_PermanentNotRetried(t *testing.T) {
	inner := &countingClient{
		failures: 10,
		failWith: fgerrors.Permanent(errors.New("bad api key"), "extract"),
	}
	g := NewGuarded(inner, nil, WithRetry(fastRetry(5)))

	_, err := g.ExtractClaims(context.Background(), nil, "p")
	require.Error(t, err)
	assert.Equal(t, 1, inner.calls)
}

func TestGuarded_ExhaustsAttempts(t *testing.T) {
	inner := &countingClient{
		failures: 10,
		failWith: fgerrors.Transient(errors.New("overloaded"), "cards"),
	}
	g := NewGuarded(inner, nil, WithRetry(fastRetry(3)))

	_, err := g.GenerateCards(context.Background(), nil, "p")
	require.Error(t, err)
	assert.Equal(t, 3, inner.calls)
}

func TestGuarded_LimiterBoundsConcurrency(t *testing.T) {
	inner := &countingClient{callDelay: 10 * time.Millisecond}
	g := NewGuarded(inner, limit.New(2), WithRetry(fgerrors.NoRetry))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := g.GenerateStructured(context.Background(), "p", nil)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, inner.peak.Load(), int32(2))
	assert.Equal(t, 8, inner.calls)
}

func TestGuarded_CancelledContext(t *testing.T) {
	inner := &countingClient{}
	g := NewGuarded(inner, limit.New(1), WithRetry(fastRetry(3)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.CritiqueCards(ctx, nil, "p")
	require.Error(t, err)
	assert.Equal(t, 0, inner.calls)
}

func TestGuarded_NilLimiter(t *testing.T) {
	inner := &countingClient{}
	g := NewGuarded(inner, nil)

	cards, err := g.GenerateCards(context.Background(), nil, "p")
	require.NoError(t, err)
	assert.Len(t, cards, 1)
}
