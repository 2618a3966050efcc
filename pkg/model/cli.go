package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/randalmurphal/deckflow/pkg/deck"
	fgerrors "github.com/randalmurphal/deckflow/pkg/deckflow/errors"
)

// CLI implements Client by shelling out to a local model CLI binary.
// Assumes "claude" is available in PATH unless overridden with WithPath.
type CLI struct {
	path    string
	model   string
	workdir string
	timeout time.Duration
}

// CLIOption configures CLI.
type CLIOption func(*CLI)

// NewCLI creates a CLI-backed model client.
func NewCLI(opts ...CLIOption) *CLI {
	c := &CLI{
		path:    "claude",
		timeout: 5 * time.Minute,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithPath sets the path to the model binary.
func WithPath(path string) CLIOption {
	return func(c *CLI) { c.path = path }
}

// WithModel sets the model name passed to the binary.
func WithModel(model string) CLIOption {
	return func(c *CLI) { c.model = model }
}

// WithWorkdir sets the working directory for model commands.
func WithWorkdir(dir string) CLIOption {
	return func(c *CLI) { c.workdir = dir }
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) CLIOption {
	return func(c *CLI) { c.timeout = d }
}

// ExtractClaims implements Client.
func (c *CLI) ExtractClaims(ctx context.Context, image []byte, prompt string) ([]ClaimRecord, error) {
	out, err := c.run(ctx, "extract_claims", prompt, image)
	if err != nil {
		return nil, err
	}
	return ParseRecords[ClaimRecord](ExtractJSON(out), "claims"), nil
}

// GenerateStructured implements Client.
func (c *CLI) GenerateStructured(ctx context.Context, prompt string, image []byte) (json.RawMessage, error) {
	out, err := c.run(ctx, "generate_structured", prompt, image)
	if err != nil {
		return nil, err
	}
	return ExtractJSON(out), nil
}

// GenerateCards implements Client.
func (c *CLI) GenerateCards(ctx context.Context, claims []deck.Claim, prompt string) ([]CardRecord, error) {
	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nClaims:\n")
	for i, claim := range claims {
		fmt.Fprintf(&sb, "%d. [%s] %s\n", i, claim.Kind, claim.Statement)
	}

	out, err := c.run(ctx, "generate_cards", sb.String(), nil)
	if err != nil {
		return nil, err
	}
	return ParseRecords[CardRecord](ExtractJSON(out), "cards"), nil
}

// CritiqueCards implements Client.
func (c *CLI) CritiqueCards(ctx context.Context, cards []deck.CardDraft, prompt string) ([]CritiqueRecord, error) {
	var sb strings.Builder
	sb.WriteString(prompt)
	sb.WriteString("\n\nCards:\n")
	for i, card := range cards {
		fmt.Fprintf(&sb, "%d. Q: %s\n   A: %s\n", i, card.Front, card.Back)
	}

	out, err := c.run(ctx, "critique_cards", sb.String(), nil)
	if err != nil {
		return nil, err
	}
	return ParseRecords[CritiqueRecord](ExtractJSON(out), "critiques"), nil
}

// run invokes the model binary once and returns its stdout.
// Image bytes are written to a temp file passed via --image.
func (c *CLI) run(ctx context.Context, op, prompt string, image []byte) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"--print"}
	if c.model != "" {
		args = append(args, "--model", c.model)
	}

	if len(image) > 0 {
		imgPath, cleanup, err := writeTempImage(image)
		if err != nil {
			return "", fmt.Errorf("%s: write image: %w", op, err)
		}
		defer cleanup()
		args = append(args, "--image", imgPath)
	}

	args = append(args, "-p", prompt)

	cmd := exec.CommandContext(ctx, c.path, args...)
	// Without a wait delay, Run blocks past the deadline whenever a
	// grandchild process inherits and holds the stdout/stderr pipes.
	cmd.WaitDelay = time.Second
	if c.workdir != "" {
		cmd.Dir = c.workdir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", &fgerrors.TimeoutError{Operation: op, Duration: c.timeout.String()}
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		errMsg := strings.TrimSpace(stderr.String())
		callErr := fmt.Errorf("%w: %s", err, errMsg)
		if isRetryableStderr(errMsg) {
			return "", fgerrors.Transient(callErr, op)
		}
		return "", fgerrors.Permanent(callErr, op)
	}

	return stdout.String(), nil
}

// isRetryableStderr checks whether stderr output indicates a transient
// backend condition.
func isRetryableStderr(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "connection") ||
		strings.Contains(lower, "503") ||
		strings.Contains(lower, "529")
}

func writeTempImage(data []byte) (string, func(), error) {
	f, err := os.CreateTemp("", "deckflow-slide-*.png")
	if err != nil {
		return "", nil, err
	}
	path := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, err
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, err
	}
	return path, func() { os.Remove(filepath.Clean(path)) }, nil
}
