// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfdoc gives page-level access to a PDF: raster rendering,
// positioned spans from the native text layer, and raw page text.
//
// Three libraries share the work. pdfcpu validates the file and reports
// page sizes, go-fitz (MuPDF) renders pages and returns raw text, and
// ledongthuc/pdf reads glyph positions from content streams.
package pdfdoc

import (
	"errors"
	"fmt"
	"image"
	"os"

	"github.com/gen2brain/go-fitz"
	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
)

// ErrUnreadable marks input errors: the file is missing, is not a PDF, or
// cannot be parsed.
var ErrUnreadable = errors.New("unreadable PDF")

// Span is a run of native text on one page. Coordinates are PDF points with
// the origin at the top-left corner of the page.
type Span struct {
	Text     string
	X, Y     float64
	W, H     float64
	FontSize float64
}

// Source is page-level access to an open document. Pages are 0-indexed.
type Source interface {
	NumPages() int
	Render(page int, dpi float64) (image.Image, error)
	Spans(page int) ([]Span, error)
	PlainText(page int) (string, error)
	Close() error
}

// Document is a Source backed by a PDF file on disk.
type Document struct {
	path   string
	dims   []pdftypes.Dim
	raster *fitz.Document
	file   *os.File
	text   *pdf.Reader
}

// Open validates the PDF at path and opens it for rendering and text
// extraction. Failures wrap ErrUnreadable.
func Open(path string) (*Document, error) {
	dims, err := pageDims(path)
	if err != nil {
		return nil, err
	}

	raster, err := fitz.New(path)
	if err != nil {
		return nil, fmt.Errorf("%w: rendering %s: %v", ErrUnreadable, path, err)
	}

	f, r, err := pdf.Open(path)
	if err != nil {
		raster.Close()
		return nil, fmt.Errorf("%w: reading text layer of %s: %v", ErrUnreadable, path, err)
	}

	return &Document{
		path:   path,
		dims:   dims,
		raster: raster,
		file:   f,
		text:   r,
	}, nil
}

// pageDims reads page sizes with pdfcpu in relaxed validation mode.
func pageDims(path string) ([]pdftypes.Dim, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	defer f.Close()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	dims, err := api.PageDims(f, conf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}
	if len(dims) == 0 {
		return nil, fmt.Errorf("%w: %s has no pages", ErrUnreadable, path)
	}
	return dims, nil
}

// NumPages returns the page count.
func (d *Document) NumPages() int {
	return len(d.dims)
}

// PageSize returns the page width and height in points.
func (d *Document) PageSize(page int) (w, h float64) {
	dim := d.dims[page]
	return dim.Width, dim.Height
}

// Render rasterizes a page at the given resolution.
func (d *Document) Render(page int, dpi float64) (image.Image, error) {
	img, err := d.raster.ImageDPI(page, dpi)
	if err != nil {
		return nil, fmt.Errorf("rendering page %d of %s: %w", page+1, d.path, err)
	}
	return img, nil
}

// PlainText returns the page's full native text.
func (d *Document) PlainText(page int) (string, error) {
	text, err := d.raster.Text(page)
	if err != nil {
		return "", fmt.Errorf("reading text of page %d of %s: %w", page+1, d.path, err)
	}
	return text, nil
}

// Spans returns the page's positioned text runs in reading order.
func (d *Document) Spans(page int) (spans []Span, err error) {
	p := d.text.Page(page + 1)
	if p.V.IsNull() {
		return nil, nil
	}

	// Content panics on malformed content streams.
	defer func() {
		if r := recover(); r != nil {
			spans = nil
			err = fmt.Errorf("%w: content stream of page %d of %s: %v", ErrUnreadable, page+1, d.path, r)
		}
	}()

	_, height := d.PageSize(page)
	return buildSpans(p.Content().Text, height), nil
}

// Close releases both underlying readers.
func (d *Document) Close() error {
	err := d.raster.Close()
	if cerr := d.file.Close(); err == nil {
		err = cerr
	}
	return err
}
