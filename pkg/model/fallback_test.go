package model

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	fgerrors "github.com/randalmurphal/deckflow/pkg/deckflow/errors"
)

func TestFallback_PrimarySucceeds(t *testing.T) {
	primary := NewMock().WithClaims([]ClaimRecord{{Statement: "from primary"}})
	secondary := NewMock().WithClaims([]ClaimRecord{{Statement: "from fallback"}})
	f := NewFallback(primary, secondary)

	claims, err := f.ExtractClaims(context.Background(), nil, "p")
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "from primary", claims[0].Statement)
	assert.Equal(t, 0, secondary.CallCount(""))
}

func TestFallback_EscalatesOnEscalatable(t *testing.T) {
	primary := NewMock().WithError(
		fgerrors.Escalatable(errors.New("malformed output"), "cards"))
	secondary := NewMock().WithCards([]CardRecord{{Front: "q", Back: "a"}})
	f := NewFallback(primary, secondary)

	cards, err := f.GenerateCards(context.Background(), nil, "p")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "q", cards[0].Front)
	assert.Equal(t, 1, primary.CallCount("GenerateCards"))
	assert.Equal(t, 1, secondary.CallCount("GenerateCards"))
}

func TestFallback_EscalatesOnParseError(t *testing.T) {
	// OutputParseError categorizes as escalatable without explicit wrapping.
	primary := NewMock().WithError(&fgerrors.OutputParseError{
		Input:   "not json",
		Message: "invalid character",
	})
	secondary := NewMock().WithCritiques([]CritiqueRecord{{Index: 0}})
	f := NewFallback(primary, secondary)

	critiques, err := f.CritiqueCards(context.Background(), nil, "p")
	require.NoError(t, err)
	assert.Len(t, critiques, 1)
}

func TestFallback_PermanentNotEscalated(t *testing.T) {
	boom := fgerrors.Permanent(errors.New("auth failed"), "extract")
	primary := NewMock().WithError(boom)
	secondary := NewMock()
	f := NewFallback(primary, secondary)

	_, err := f.ExtractClaims(context.Background(), nil, "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, secondary.CallCount(""))
}

func TestFallback_TransientNotEscalated(t *testing.T) {
	primary := NewMock().WithError(
		fgerrors.Transient(errors.New("rate limited"), "structured"))
	secondary := NewMock()
	f := NewFallback(primary, secondary)

	_, err := f.GenerateStructured(context.Background(), "p", nil)
	require.Error(t, err)
	assert.Equal(t, 0, secondary.CallCount(""))
}

func TestFallback_FallbackFailurePropagates(t *testing.T) {
	primary := NewMock().WithError(
		fgerrors.Escalatable(errors.New("malformed"), "cards"))
	fallbackErr := errors.New("fallback also down")
	secondary := NewMock().WithError(fallbackErr)
	f := NewFallback(primary, secondary)

	_, err := f.GenerateCards(context.Background(), nil, "p")
	assert.ErrorIs(t, err, fallbackErr)
}

func TestFallback_CancelledContextNotEscalated(t *testing.T) {
	primary := NewMock().WithError(
		fgerrors.Escalatable(errors.New("malformed"), "cards"))
	secondary := NewMock().WithCards([]CardRecord{{Front: "q"}})
	f := NewFallback(primary, secondary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.GenerateCards(ctx, nil, "p")
	require.Error(t, err)
	assert.Equal(t, 0, secondary.CallCount(""))
}
