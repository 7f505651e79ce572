// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"image"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/pdiddy/layoutmd/internal/layout"
	"github.com/pdiddy/layoutmd/internal/pdfdoc"
	"github.com/pdiddy/layoutmd/pkg/types"
)

// DefaultDPI is the page rendering resolution when none is configured.
const DefaultDPI = 150

// pageSeparator joins the Markdown of consecutive pages.
const pageSeparator = "\n\n---\n\n"

// pointsPerInch converts PDF points to raster pixels at a given DPI.
const pointsPerInch = 72

// Opener opens a PDF for page-level access.
type Opener func(path string) (pdfdoc.Source, error)

// LayoutConverter converts a PDF by detecting regions on each rendered page
// and reading their text from the native text layer.
type LayoutConverter struct {
	open     Opener
	detector layout.RegionDetector
	cfg      types.LayoutConfig
	logger   *slog.Logger
}

// Option configures a LayoutConverter.
type Option func(*LayoutConverter)

// WithDetector replaces the default LayoutDetector.
func WithDetector(d layout.RegionDetector) Option {
	return func(c *LayoutConverter) { c.detector = d }
}

// WithOpener replaces pdfdoc.Open, for tests and alternative readers.
func WithOpener(open Opener) Option {
	return func(c *LayoutConverter) { c.open = open }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *LayoutConverter) { c.logger = l }
}

// NewLayoutConverter returns a converter using cfg. A zero DPI means
// DefaultDPI and an empty Format means paragraphs.
func NewLayoutConverter(cfg types.LayoutConfig, opts ...Option) *LayoutConverter {
	if cfg.DPI <= 0 {
		cfg.DPI = DefaultDPI
	}
	if cfg.Format == "" {
		cfg.Format = types.FormatParagraphs
	}
	c := &LayoutConverter{
		open:     openDocument,
		detector: layout.NewLayoutDetector(),
		cfg:      cfg,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func openDocument(path string) (pdfdoc.Source, error) {
	d, err := pdfdoc.Open(path)
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Convert implements Converter. Pages that produce no Markdown are left out
// of the output; the rest are joined with a horizontal rule.
func (c *LayoutConverter) Convert(pdfPath string) (string, error) {
	src, err := c.open(pdfPath)
	if err != nil {
		return "", err
	}
	defer src.Close()

	var pages []string
	for i := 0; i < src.NumPages(); i++ {
		md, err := c.convertPage(src, pdfPath, i)
		if err != nil {
			return "", fmt.Errorf("converting page %d: %w", i+1, err)
		}
		if md != "" {
			pages = append(pages, md)
		}
	}
	return strings.Join(pages, pageSeparator), nil
}

func (c *LayoutConverter) convertPage(src pdfdoc.Source, pdfPath string, page int) (string, error) {
	img, err := src.Render(page, c.cfg.DPI)
	if err != nil {
		return "", err
	}
	spans, err := src.Spans(page)
	if err != nil {
		return "", err
	}
	scale := c.cfg.DPI / pointsPerInch
	pixels := toPixels(spans, scale)

	detected := c.detector.Detect(img)
	if c.cfg.Format == types.FormatLayout && len(pixels) > 0 {
		c.writeDebugImage(pdfPath, page, img, assignText(page, detected, pixels), pixels)
		return renderLayout(pixels, max(1, int(scale*layoutLineTolerance))), nil
	}
	if len(detected) == 0 {
		c.logger.Debug("no regions detected, using page text",
			"pdf", pdfPath, "page", page+1)
		c.writeDebugImage(pdfPath, page, img, nil, pixels)

		text, err := src.PlainText(page)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	}

	regions := assignText(page, detected, pixels)
	c.logger.Debug("page analyzed",
		"pdf", pdfPath, "page", page+1,
		"detected", len(detected), "regions", len(regions), "spans", len(spans))
	c.writeDebugImage(pdfPath, page, img, regions, pixels)

	return renderPage(regions, medianFontSize(spans)), nil
}

// writeDebugImage saves an annotated page overlay when debug images are
// enabled. Failures are logged and do not affect conversion.
func (c *LayoutConverter) writeDebugImage(pdfPath string, page int, img image.Image, regions []layout.Region, spans []pixelSpan) {
	if !c.cfg.DebugImages {
		return
	}
	dir := c.cfg.DebugDir
	if dir == "" {
		dir = filepath.Dir(pdfPath)
	}
	path := filepath.Join(dir, DebugImageName(pdfPath, page))
	if err := writePNG(path, annotate(img, regions, spans)); err != nil {
		c.logger.Warn("debug image not written", "path", path, "error", err)
		return
	}
	c.logger.Debug("debug image written", "path", path)
}

// DebugImageName returns the overlay file name for a 0-indexed page.
func DebugImageName(pdfPath string, page int) string {
	return fmt.Sprintf("%s_page%d_debug.png", Stem(pdfPath), page+1)
}
