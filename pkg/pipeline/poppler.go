package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/randalmurphal/deckflow/pkg/deck"
)

// PopplerRenderer rasterizes PDFs with the poppler utilities: pdftoppm
// for page images and pdftotext for per-page text. Both binaries must
// be on PATH (or configured explicitly).
type PopplerRenderer struct {
	pdftoppm  string
	pdftotext string
	dpi       int
	timeout   time.Duration
}

// PopplerOption configures PopplerRenderer.
type PopplerOption func(*PopplerRenderer)

// WithPopplerPaths sets the pdftoppm and pdftotext binary paths.
func WithPopplerPaths(pdftoppm, pdftotext string) PopplerOption {
	return func(r *PopplerRenderer) {
		r.pdftoppm = pdftoppm
		r.pdftotext = pdftotext
	}
}

// WithDPI sets the rasterization resolution.
func WithDPI(dpi int) PopplerOption {
	return func(r *PopplerRenderer) { r.dpi = dpi }
}

// WithRenderTimeout sets the per-document rendering timeout.
func WithRenderTimeout(d time.Duration) PopplerOption {
	return func(r *PopplerRenderer) { r.timeout = d }
}

// NewPopplerRenderer creates a poppler-backed renderer.
func NewPopplerRenderer(opts ...PopplerOption) *PopplerRenderer {
	r := &PopplerRenderer{
		pdftoppm:  "pdftoppm",
		pdftotext: "pdftotext",
		dpi:       150,
		timeout:   5 * time.Minute,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render implements Renderer.
func (r *PopplerRenderer) Render(ctx context.Context, doc deck.Document) ([]deck.Slide, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	pdfPath, cleanup, err := materializePDF(doc)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	workdir, err := os.MkdirTemp("", "deckflow-render-*")
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	defer os.RemoveAll(workdir)

	prefix := filepath.Join(workdir, "page")
	cmd := exec.CommandContext(ctx, r.pdftoppm,
		"-png", "-r", fmt.Sprintf("%d", r.dpi), pdfPath, prefix)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("render %q: pdftoppm: %w: %s",
			doc.Name, err, strings.TrimSpace(stderr.String()))
	}

	pages, err := filepath.Glob(prefix + "*.png")
	if err != nil || len(pages) == 0 {
		return nil, fmt.Errorf("render %q: no pages produced", doc.Name)
	}
	// pdftoppm zero-pads page numbers, so lexical order is page order.
	sort.Strings(pages)

	texts := r.pageTexts(ctx, pdfPath, len(pages))

	slides := make([]deck.Slide, 0, len(pages))
	for i, page := range pages {
		data, err := os.ReadFile(page)
		if err != nil {
			return nil, fmt.Errorf("render %q: read page %d: %w", doc.Name, i, err)
		}
		slide := deck.Slide{PageIndex: i, ImageData: data}
		if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
			slide.Width = cfg.Width
			slide.Height = cfg.Height
		}
		if i < len(texts) {
			slide.ExtractedText = texts[i]
		}
		slides = append(slides, slide)
	}
	return slides, nil
}

// pageTexts extracts per-page text. Text extraction failing is not
// fatal; slides fall back to image-only processing.
func (r *PopplerRenderer) pageTexts(ctx context.Context, pdfPath string, pageCount int) []string {
	texts := make([]string, 0, pageCount)
	for page := 1; page <= pageCount; page++ {
		cmd := exec.CommandContext(ctx, r.pdftotext,
			"-f", fmt.Sprintf("%d", page), "-l", fmt.Sprintf("%d", page),
			pdfPath, "-")
		out, err := cmd.Output()
		if err != nil {
			return texts
		}
		texts = append(texts, strings.TrimSpace(string(out)))
	}
	return texts
}

// materializePDF returns a filesystem path for the document, writing
// raw bytes to a temp file when no path is set.
func materializePDF(doc deck.Document) (string, func(), error) {
	if doc.PDFPath != "" {
		return doc.PDFPath, func() {}, nil
	}
	if len(doc.PDFData) == 0 {
		return "", nil, fmt.Errorf("render %q: document has no source", doc.Name)
	}

	f, err := os.CreateTemp("", "deckflow-*.pdf")
	if err != nil {
		return "", nil, fmt.Errorf("render: %w", err)
	}
	path := f.Name()
	if _, err := f.Write(doc.PDFData); err != nil {
		f.Close()
		os.Remove(path)
		return "", nil, fmt.Errorf("render: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", nil, fmt.Errorf("render: %w", err)
	}
	return path, func() { os.Remove(path) }, nil
}
