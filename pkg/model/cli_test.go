package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/deckflow/pkg/deck"
	fgerrors "github.com/randalmurphal/deckflow/pkg/deckflow/errors"
)

// stubBinary writes an executable shell script standing in for the
// model CLI and returns its path.
func stubBinary(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stub requires a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "model-stub")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755))
	return path
}

func TestCLI_ExtractClaims(t *testing.T) {
	bin := stubBinary(t, `echo '{"claims": [{"kind": "definition", "statement": "a monad is a monoid", "confidence": 0.8}]}'`)
	c := NewCLI(WithPath(bin))

	claims, err := c.ExtractClaims(context.Background(), nil, "extract claims")
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "definition", claims[0].Kind)
	assert.Equal(t, "a monad is a monoid", claims[0].Statement)
}

func TestCLI_GenerateStructured_FencedOutput(t *testing.T) {
	bin := stubBinary(t, "printf '```json\\n{\"main_topic\": \"calculus\"}\\n```\\n'")
	c := NewCLI(WithPath(bin))

	raw, err := c.GenerateStructured(context.Background(), "summarize", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"main_topic": "calculus"}`, string(raw))
}

func TestCLI_GenerateCards(t *testing.T) {
	bin := stubBinary(t, `echo '{"cards": [{"front": "What is X?", "back": "Y", "confidence": 0.9}]}'`)
	c := NewCLI(WithPath(bin))

	cards, err := c.GenerateCards(context.Background(), []deck.Claim{
		{Kind: deck.ClaimDefinition, Statement: "X is Y"},
	}, "make cards")
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "What is X?", cards[0].Front)
}

func TestCLI_TransientStderr(t *testing.T) {
	bin := stubBinary(t, `echo "error: rate limit exceeded" >&2; exit 1`)
	c := NewCLI(WithPath(bin))

	_, err := c.ExtractClaims(context.Background(), nil, "p")
	require.Error(t, err)

	var catErr *fgerrors.CategorizedError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, fgerrors.CategoryTransient, catErr.Category)
	assert.True(t, fgerrors.IsRetryable(err))
}

func TestCLI_PermanentStderr(t *testing.T) {
	bin := stubBinary(t, `echo "error: invalid API key" >&2; exit 1`)
	c := NewCLI(WithPath(bin))

	_, err := c.GenerateStructured(context.Background(), "p", nil)
	require.Error(t, err)

	var catErr *fgerrors.CategorizedError
	require.ErrorAs(t, err, &catErr)
	assert.Equal(t, fgerrors.CategoryPermanent, catErr.Category)
	assert.False(t, fgerrors.IsRetryable(err))
}

func TestCLI_Timeout(t *testing.T) {
	bin := stubBinary(t, `sleep 5`)
	c := NewCLI(WithPath(bin), WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := c.GenerateStructured(context.Background(), "p", nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 2*time.Second)

	var timeoutErr *fgerrors.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Equal(t, "generate_structured", timeoutErr.Operation)
	assert.True(t, fgerrors.IsRetryable(err))
}

func TestCLI_Cancellation(t *testing.T) {
	bin := stubBinary(t, `sleep 5`)
	c := NewCLI(WithPath(bin))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err := c.GenerateStructured(ctx, "p", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCLI_ImageWrittenToTempFile(t *testing.T) {
	// The stub copies the --image argument's contents to stdout wrapped
	// in a claims payload so the test can verify the bytes arrived.
	bin := stubBinary(t, `
while [ $# -gt 0 ]; do
  if [ "$1" = "--image" ]; then
    img="$2"
    shift
  fi
  shift
done
content=$(cat "$img")
echo "{\"claims\": [{\"statement\": \"$content\"}]}"
`)
	c := NewCLI(WithPath(bin))

	claims, err := c.ExtractClaims(context.Background(), []byte("fake-png-bytes"), "p")
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "fake-png-bytes", claims[0].Statement)
}

func TestCLI_ModelFlag(t *testing.T) {
	bin := stubBinary(t, `
model=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--model" ]; then
    model="$2"
    shift
  fi
  shift
done
echo "{\"claims\": [{\"statement\": \"$model\"}]}"
`)
	c := NewCLI(WithPath(bin), WithModel("opus"))

	claims, err := c.ExtractClaims(context.Background(), nil, "p")
	require.NoError(t, err)
	require.Len(t, claims, 1)
	assert.Equal(t, "opus", claims[0].Statement)
}

func TestCLI_UnparseableOutput(t *testing.T) {
	bin := stubBinary(t, `echo "no json here, sorry"`)
	c := NewCLI(WithPath(bin))

	claims, err := c.ExtractClaims(context.Background(), nil, "p")
	require.NoError(t, err)
	assert.Empty(t, claims)
}
